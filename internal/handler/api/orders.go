package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/sindri/internal/domain"
)

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domain.Invalid("api.parse_id", "Invalid id in URL")
	}
	return id, nil
}

func (h *Handler) getOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.writeError(c, err)
	}

	order, err := h.orders.Get(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

type orderEventResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) getOrderEvents(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.writeError(c, err)
	}

	events, err := h.orders.Events(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}

	resp := make([]orderEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, orderEventResponse{
			Status:    string(e.Status),
			Note:      e.Note,
			CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type advanceStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note,omitempty"`
}

func (h *Handler) advanceOrderStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.writeError(c, err)
	}

	var req advanceStatusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orders.AdvanceStatus(c.Request().Context(), id, domain.OrderStatus(req.Status), req.Note)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}
