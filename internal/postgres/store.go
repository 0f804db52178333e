// Package postgres implements the service.Store interface on PostgreSQL via
// pgx. One queries type carries every statement; Store runs them on the pool
// and hands transactional callers the same type bound to a pgx.Tx.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/dukerupert/sindri/internal/service"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	db querier
}

// Store is the pooled entry point. Its embedded queries run in autocommit
// mode; RunInTx rebinds them to a single transaction.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
	queries
}

var _ service.Store = (*Store)(nil)

// NewStore connects to the database and verifies the connection.
func NewStore(ctx context.Context, databaseURL string, logger zerolog.Logger) (*Store, error) {
	const op = "postgres.new_store"

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, domain.Internal(err, op, "Invalid database URL")
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, domain.Internal(err, op, "Unable to reach the database")
	}

	return &Store{
		pool:    pool,
		logger:  logger.With().Str("component", "postgres").Logger(),
		queries: queries{db: pool},
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// RunInTx runs fn inside one transaction, committing when fn returns nil.
// Domain errors from fn pass through untouched so callers keep their codes.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx service.Tx) error) error {
	const op = "postgres.run_in_tx"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "Unable to begin transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error().Err(rbErr).Msg("transaction rollback failed")
		}
	}()

	if err := fn(ctx, &queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "Unable to commit transaction")
	}
	return nil
}
