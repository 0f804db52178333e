package postgres

import (
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/dukerupert/sindri/migrations"
)

// Migrate applies any pending schema migrations.
func Migrate(databaseURL string, logger zerolog.Logger) error {
	const op = "postgres.migrate"

	db, err := goose.OpenDBWithDriver("pgx", databaseURL)
	if err != nil {
		return domain.Internal(err, op, "Unable to open migration connection")
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return domain.Internal(err, op, "Unable to set migration dialect")
	}
	if err := goose.Up(db, "."); err != nil {
		return domain.Internal(err, op, "Unable to apply migrations")
	}

	logger.Info().Msg("database migrations up to date")
	return nil
}
