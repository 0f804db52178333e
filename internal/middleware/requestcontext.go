package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/sindri/internal/domain"
)

// userIDHeader is set by the identity layer in front of this service.
const userIDHeader = "X-User-ID"

// RequestContext copies the caller's identity and any marketing attribution
// (source, medium, campaign, utm_* query params) onto the request context,
// where checkout picks them up. Attribution is stored verbatim and never
// interpreted.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if raw := c.Request().Header.Get(userIDHeader); raw != "" {
				if id, err := uuid.Parse(raw); err == nil {
					ctx = domain.NewContextWithUserID(ctx, id)
				}
			}

			attr := domain.Attribution{}
			for name, values := range c.QueryParams() {
				if len(values) == 0 {
					continue
				}
				switch {
				case strings.HasPrefix(name, "utm_"):
					attr[name] = values[0]
				case name == "source" || name == "medium" || name == "campaign":
					attr[name] = values[0]
				}
			}
			if len(attr) > 0 {
				ctx = domain.NewContextWithAttribution(ctx, attr)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
