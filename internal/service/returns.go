package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/dukerupert/sindri/internal/gateway"
	"github.com/dukerupert/sindri/internal/notify"
	"github.com/dukerupert/sindri/internal/telemetry"
)

// ReturnsService handles customer return requests and their admin resolution.
type ReturnsService interface {
	RequestReturn(ctx context.Context, orderID uuid.UUID, lines []domain.ReturnLine, reason string) (*domain.ReturnRequest, error)
	ResolveReturn(ctx context.Context, returnID uuid.UUID, decision domain.ReturnDecision) (*domain.ReturnRequest, error)
}

type returnsService struct {
	store     Store
	gateway   gateway.Provider
	publisher notify.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    zerolog.Logger

	// returnWindow is how long after delivery a return may be requested.
	returnWindow time.Duration
	currency     string

	now func() time.Time
}

func NewReturnsService(store Store, provider gateway.Provider, publisher notify.Publisher, metrics *telemetry.BusinessMetrics, returnWindowDays int, currency string, logger zerolog.Logger) ReturnsService {
	return &returnsService{
		store:        store,
		gateway:      provider,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger.With().Str("service", "returns").Logger(),
		returnWindow: time.Duration(returnWindowDays) * 24 * time.Hour,
		currency:     currency,
		now:          time.Now,
	}
}

// RequestReturn opens a return for part or all of a delivered order. The
// refund amount is computed here, from the order lines' frozen prices and
// discount shares, and stored on the request; resolution never re-prices.
func (s *returnsService) RequestReturn(ctx context.Context, orderID uuid.UUID, lines []domain.ReturnLine, reason string) (*domain.ReturnRequest, error) {
	const op = "returns.request"

	if len(lines) == 0 {
		return nil, domain.Invalid(op, "At least one line must be returned")
	}

	now := s.now()
	var req *domain.ReturnRequest

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderDelivered {
			return domain.ErrReturnNotDelivered
		}

		delivered, err := deliveredAt(ctx, tx, order)
		if err != nil {
			return err
		}
		if now.After(delivered.Add(s.returnWindow)) {
			return domain.ErrReturnWindowClosed
		}

		open, err := tx.OpenReturnExists(ctx, orderID)
		if err != nil {
			return err
		}
		if open {
			return domain.ErrReturnAlreadyExists
		}

		var refund int64
		for _, rl := range lines {
			ol := findOrderLine(order, rl.OrderLineID)
			if ol == nil {
				return domain.Invalid(op, "Return references a line that is not on this order")
			}
			if rl.Quantity <= 0 || rl.Quantity > ol.Quantity {
				return domain.Invalid(op, fmt.Sprintf("Return quantity for line %s must be between 1 and %d", rl.OrderLineID, ol.Quantity))
			}
			refund += lineRefund(ol, rl.Quantity)
		}

		req = &domain.ReturnRequest{
			ID:          uuid.New(),
			OrderID:     orderID,
			Lines:       lines,
			Reason:      reason,
			Status:      domain.ReturnPending,
			RefundCents: refund,
			CreatedAt:   now,
		}
		return tx.CreateReturnRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReturnsRequested.Inc()
	s.logger.Info().
		Str("return_id", req.ID.String()).
		Str("order_id", orderID.String()).
		Int64("refund_cents", req.RefundCents).
		Msg("return requested")
	return req, nil
}

// ResolveReturn applies an admin decision. Approving restocks the returned
// units; refunding issues the gateway refund and closes the request. The
// gateway call runs outside the transaction with an idempotency key derived
// from the return id, so a crash between the provider call and the status
// update can be retried without double-refunding.
func (s *returnsService) ResolveReturn(ctx context.Context, returnID uuid.UUID, decision domain.ReturnDecision) (*domain.ReturnRequest, error) {
	const op = "returns.resolve"

	switch decision {
	case domain.DecisionApprove, domain.DecisionReject:
		return s.resolveInTx(ctx, returnID, decision)
	case domain.DecisionRefund:
		return s.refund(ctx, returnID)
	default:
		return nil, domain.Invalid(op, fmt.Sprintf("Unknown return decision %q", decision))
	}
}

func (s *returnsService) resolveInTx(ctx context.Context, returnID uuid.UUID, decision domain.ReturnDecision) (*domain.ReturnRequest, error) {
	const op = "returns.resolve"

	now := s.now()
	var req *domain.ReturnRequest

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		req, err = tx.GetReturnRequestForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if req.Status != domain.ReturnPending {
			return domain.Conflict(op, fmt.Sprintf("Return is %s and can no longer be approved or rejected", req.Status))
		}

		if decision == domain.DecisionApprove {
			order, err := tx.GetOrder(ctx, req.OrderID)
			if err != nil {
				return err
			}
			for _, rl := range req.Lines {
				ol := findOrderLine(order, rl.OrderLineID)
				if ol == nil {
					return domain.Invariant(op, "return line no longer matches an order line")
				}
				if err := tx.IncrementStock(ctx, ol.ProductID, ol.VariantID, rl.Quantity); err != nil {
					return err
				}
			}
			req.Status = domain.ReturnApproved
		} else {
			req.Status = domain.ReturnRejected
			req.ResolvedAt = &now
		}
		return tx.UpdateReturnRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("return_id", returnID.String()).
		Str("status", string(req.Status)).
		Msg("return resolved")

	if req.Status == domain.ReturnApproved {
		if err := s.publisher.Publish(ctx, notify.SubjectReturnApproved, req); err != nil {
			s.logger.Warn().Err(err).Str("return_id", returnID.String()).Msg("return approval event not published")
		}
	}
	return req, nil
}

func (s *returnsService) refund(ctx context.Context, returnID uuid.UUID) (*domain.ReturnRequest, error) {
	const op = "returns.refund"

	req, err := s.store.GetReturnRequest(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.ReturnApproved {
		return nil, domain.Conflict(op, fmt.Sprintf("Return is %s, only approved returns can be refunded", req.Status))
	}

	order, err := s.store.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	// Pay-on-delivery orders have no gateway charge to reverse; the refund
	// is settled out of band and only recorded here.
	if order.PaymentReference != "" {
		_, err := s.gateway.RefundByAmount(ctx, gateway.RefundParams{
			PaymentReference: order.PaymentReference,
			AmountCents:      req.RefundCents,
			Currency:         s.currency,
			IdempotencyKey:   "return-refund-" + req.ID.String(),
			Reason:           req.Reason,
		})
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		req, err = tx.GetReturnRequestForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if req.Status != domain.ReturnApproved {
			return domain.Conflict(op, "Return was resolved concurrently")
		}
		req.Status = domain.ReturnRefunded
		req.ResolvedAt = &now
		return tx.UpdateReturnRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RefundsIssued.Inc()
	s.metrics.RefundCents.Add(float64(req.RefundCents))
	s.logger.Info().
		Str("return_id", returnID.String()).
		Int64("refund_cents", req.RefundCents).
		Msg("return refunded")

	if err := s.publisher.Publish(ctx, notify.SubjectReturnRefunded, req); err != nil {
		s.logger.Warn().Err(err).Str("return_id", returnID.String()).Msg("refund event not published")
	}
	return req, nil
}

// lineRefund computes the refund for returning qty units of an order line:
// the line's net total (frozen price minus its frozen discount share) scaled
// by the returned fraction, rounded down. The customer never gets back more
// than was paid for those units.
func lineRefund(ol *domain.OrderLine, qty int32) int64 {
	net := ol.UnitPriceCents*int64(ol.Quantity) - ol.DiscountCents
	return net * int64(qty) / int64(ol.Quantity)
}

func findOrderLine(order *domain.Order, lineID uuid.UUID) *domain.OrderLine {
	for i := range order.Lines {
		if order.Lines[i].ID == lineID {
			return &order.Lines[i]
		}
	}
	return nil
}

// deliveredAt finds when the order reached Delivered from its event trail.
func deliveredAt(ctx context.Context, tx Tx, order *domain.Order) (time.Time, error) {
	events, err := tx.ListOrderEvents(ctx, order.ID)
	if err != nil {
		return time.Time{}, err
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Status == domain.OrderDelivered {
			return events[i].CreatedAt, nil
		}
	}
	return time.Time{}, domain.Invariant("returns.delivered_at", "delivered order has no delivery event")
}
