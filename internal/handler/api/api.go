// Package api exposes the checkout core over HTTP with echo.
package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/dukerupert/sindri/internal/service"
)

// Handler holds the services behind the API routes.
type Handler struct {
	checkout service.CheckoutService
	coupons  service.CouponService
	orders   service.OrderService
	returns  service.ReturnsService
	logger   zerolog.Logger
}

func NewHandler(checkout service.CheckoutService, coupons service.CouponService, orders service.OrderService, returns service.ReturnsService, logger zerolog.Logger) *Handler {
	return &Handler{
		checkout: checkout,
		coupons:  coupons,
		orders:   orders,
		returns:  returns,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Register mounts the API routes on e and installs the request validator.
func (h *Handler) Register(e *echo.Echo) {
	e.Validator = &requestValidator{validate: validator.New()}

	api := e.Group("/api")
	api.POST("/promotions/quote", h.quotePromotions)
	api.POST("/coupons/apply", h.applyCoupon)
	api.POST("/checkout", h.placeOrder)
	api.GET("/orders/:id", h.getOrder)
	api.GET("/orders/:id/events", h.getOrderEvents)
	api.POST("/orders/:id/status", h.advanceOrderStatus)
	api.POST("/returns", h.requestReturn)
	api.POST("/returns/:id/resolve", h.resolveReturn)
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeError maps domain error codes onto HTTP statuses. Conflicts come back
// as 409 so clients know a retry with fresh data may succeed.
func (h *Handler) writeError(c echo.Context, err error) error {
	code := domain.ErrorCode(err)

	status := http.StatusInternalServerError
	switch code {
	case domain.EINVALID:
		status = http.StatusBadRequest
	case domain.ENOTFOUND:
		status = http.StatusNotFound
	case domain.ECONFLICT:
		status = http.StatusConflict
	case domain.EEXTERNAL:
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("op", domain.ErrorOp(err)).Msg("request failed")
	}

	return c.JSON(status, errorResponse{Error: errorBody{
		Code:    code,
		Message: domain.ErrorMessage(err),
	}})
}
