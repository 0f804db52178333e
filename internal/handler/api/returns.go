package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/sindri/internal/domain"
)

type returnLineRequest struct {
	OrderLineID uuid.UUID `json:"order_line_id" validate:"required"`
	Quantity    int32     `json:"quantity" validate:"required,gt=0"`
}

type requestReturnRequest struct {
	OrderID uuid.UUID           `json:"order_id" validate:"required"`
	Lines   []returnLineRequest `json:"lines" validate:"required,min=1,dive"`
	Reason  string              `json:"reason,omitempty"`
}

type returnLineResponse struct {
	OrderLineID uuid.UUID `json:"order_line_id"`
	Quantity    int32     `json:"quantity"`
}

type returnResponse struct {
	ID          uuid.UUID            `json:"id"`
	OrderID     uuid.UUID            `json:"order_id"`
	Status      string               `json:"status"`
	Reason      string               `json:"reason,omitempty"`
	RefundCents int64                `json:"refund_cents"`
	Lines       []returnLineResponse `json:"lines"`
	CreatedAt   time.Time            `json:"created_at"`
	ResolvedAt  *time.Time           `json:"resolved_at,omitempty"`
}

func toReturnResponse(req *domain.ReturnRequest) returnResponse {
	resp := returnResponse{
		ID:          req.ID,
		OrderID:     req.OrderID,
		Status:      string(req.Status),
		Reason:      req.Reason,
		RefundCents: req.RefundCents,
		CreatedAt:   req.CreatedAt,
		ResolvedAt:  req.ResolvedAt,
	}
	for _, l := range req.Lines {
		resp.Lines = append(resp.Lines, returnLineResponse{OrderLineID: l.OrderLineID, Quantity: l.Quantity})
	}
	return resp
}

func (h *Handler) requestReturn(c echo.Context) error {
	var req requestReturnRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	lines := make([]domain.ReturnLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, domain.ReturnLine{OrderLineID: l.OrderLineID, Quantity: l.Quantity})
	}

	ret, err := h.returns.RequestReturn(c.Request().Context(), req.OrderID, lines, req.Reason)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toReturnResponse(ret))
}

type resolveReturnRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject refund"`
}

func (h *Handler) resolveReturn(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.writeError(c, err)
	}

	var req resolveReturnRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ret, err := h.returns.ResolveReturn(c.Request().Context(), id, domain.ReturnDecision(req.Decision))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReturnResponse(ret))
}
