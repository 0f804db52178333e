package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/dukerupert/sindri/internal/notify"
)

// OrderService reads orders and moves them through their lifecycle.
type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Events(ctx context.Context, orderID uuid.UUID) ([]domain.OrderEvent, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, note string) (*domain.Order, error)
}

type orderService struct {
	store     Store
	publisher notify.Publisher
	logger    zerolog.Logger

	// allowCancelAfterShip opens the policy-gated Shipped -> Cancelled edge.
	allowCancelAfterShip bool

	now func() time.Time
}

func NewOrderService(store Store, publisher notify.Publisher, allowCancelAfterShip bool, logger zerolog.Logger) OrderService {
	return &orderService{
		store:                store,
		publisher:            publisher,
		logger:               logger.With().Str("service", "order").Logger(),
		allowCancelAfterShip: allowCancelAfterShip,
		now:                  time.Now,
	}
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *orderService) Events(ctx context.Context, orderID uuid.UUID) ([]domain.OrderEvent, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.ListOrderEvents(ctx, orderID)
}

// AdvanceStatus applies one transition of the order state machine and appends
// the corresponding event. Cancelling before shipment restocks every line;
// goods already shipped come back through a return instead.
func (s *orderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, note string) (*domain.Order, error) {
	const op = "order.advance_status"

	if !domain.ValidOrderStatus(to) {
		return nil, domain.Invalid(op, fmt.Sprintf("Unknown order status %q", to))
	}

	now := s.now()
	var order *domain.Order

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		from := order.Status
		if !domain.CanTransition(from, to, s.allowCancelAfterShip) {
			return domain.WrapError(domain.ErrInvalidTransition, domain.ECONFLICT, op,
				fmt.Sprintf("INVALID_TRANSITION: %s -> %s not permitted", from, to))
		}

		if to == domain.OrderCancelled && from != domain.OrderShipped {
			for _, l := range order.Lines {
				if err := tx.IncrementStock(ctx, l.ProductID, l.VariantID, l.Quantity); err != nil {
					return err
				}
			}
		}

		if err := tx.UpdateOrderStatus(ctx, orderID, to); err != nil {
			return err
		}
		order.Status = to

		return tx.CreateOrderEvent(ctx, &domain.OrderEvent{
			ID:        uuid.New(),
			OrderID:   orderID,
			Status:    to,
			Note:      note,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(to)).
		Msg("order status advanced")

	switch to {
	case domain.OrderConfirmed:
		s.publishEvent(ctx, notify.SubjectOrderConfirmed, order)
	case domain.OrderCancelled:
		s.publishEvent(ctx, notify.SubjectOrderCancelled, order)
	}
	return order, nil
}

func (s *orderService) publishEvent(ctx context.Context, subject string, order *domain.Order) {
	if err := s.publisher.Publish(ctx, subject, order); err != nil {
		s.logger.Warn().Err(err).
			Str("order_id", order.ID.String()).
			Str("subject", subject).
			Msg("order event not published")
	}
}
