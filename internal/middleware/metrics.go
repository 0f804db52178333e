package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics records request counts and latency per route. The route
// template is used as the path label so ids do not explode cardinality.
func HTTPMetrics(reg prometheus.Registerer, namespace string) echo.MiddlewareFunc {
	factory := promauto.With(reg)

	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests processed, by method, route and status.",
	}, []string{"method", "path", "status"})

	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			method := c.Request().Method
			path := c.Path()
			requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
