package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/dukerupert/sindri/internal/service"
)

type quoteRequest struct {
	Items []service.CartItem `json:"items" validate:"required,min=1,dive"`
}

type offerResponse struct {
	PromotionID     uuid.UUID   `json:"promotion_id"`
	Name            string      `json:"name"`
	DiscountCents   int64       `json:"discount_cents"`
	Reason          string      `json:"reason"`
	AffectedLineIDs []uuid.UUID `json:"affected_line_ids,omitempty"`
}

type quoteResponse struct {
	SubtotalCents int64           `json:"subtotal_cents"`
	Offers        []offerResponse `json:"offers"`
	Best          *offerResponse  `json:"best,omitempty"`
}

func (h *Handler) quotePromotions(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.checkout.QuotePromotions(c.Request().Context(), req.Items)
	if err != nil {
		return h.writeError(c, err)
	}

	resp := quoteResponse{SubtotalCents: result.SubtotalCents, Offers: []offerResponse{}}
	for _, o := range result.Offers {
		resp.Offers = append(resp.Offers, offerResponse{
			PromotionID:     o.Promotion.ID,
			Name:            o.Promotion.Name,
			DiscountCents:   o.Quote.DiscountCents,
			Reason:          o.Quote.Reason,
			AffectedLineIDs: o.Quote.AffectedLineIDs,
		})
	}
	if len(resp.Offers) > 0 {
		resp.Best = &resp.Offers[0]
	}
	return c.JSON(http.StatusOK, resp)
}

type applyCouponRequest struct {
	Code  string             `json:"code" validate:"required"`
	Items []service.CartItem `json:"items" validate:"required,min=1,dive"`
}

type couponResponse struct {
	Valid         bool       `json:"valid"`
	FailureCode   string     `json:"failure_code,omitempty"`
	Message       string     `json:"message,omitempty"`
	CouponID      *uuid.UUID `json:"coupon_id,omitempty"`
	DiscountCents int64      `json:"discount_cents"`
	TotalCents    int64      `json:"total_cents"`
}

func (h *Handler) applyCoupon(c echo.Context) error {
	var req applyCouponRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.coupons.Validate(c.Request().Context(), req.Code, req.Items)
	if err != nil {
		return h.writeError(c, err)
	}

	resp := couponResponse{
		Valid:         result.Valid,
		FailureCode:   result.FailureCode,
		Message:       result.Message,
		DiscountCents: result.DiscountCents,
		TotalCents:    result.TotalCents,
	}
	if result.CouponID != uuid.Nil {
		resp.CouponID = &result.CouponID
	}
	return c.JSON(http.StatusOK, resp)
}

type orderLineResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Quantity       int32      `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	DiscountCents  int64      `json:"discount_cents"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        string              `json:"status"`
	SubtotalCents int64               `json:"subtotal_cents"`
	DiscountCents int64               `json:"discount_cents"`
	TotalCents    int64               `json:"total_cents"`
	CouponID      *uuid.UUID          `json:"coupon_id,omitempty"`
	PaymentMethod string              `json:"payment_method"`
	Lines         []orderLineResponse `json:"lines"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toOrderResponse(order *domain.Order) orderResponse {
	resp := orderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		TotalCents:    order.TotalCents,
		CouponID:      order.CouponID,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	}
	for _, l := range order.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ID:             l.ID,
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			DiscountCents:  l.DiscountCents,
		})
	}
	return resp
}

func (h *Handler) placeOrder(c echo.Context) error {
	var params service.PlaceOrderParams
	if err := c.Bind(&params); err != nil {
		return err
	}
	if err := c.Validate(&params); err != nil {
		return err
	}

	order, err := h.checkout.PlaceOrder(c.Request().Context(), params)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}
