package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/sindri/internal/config"
	"github.com/dukerupert/sindri/internal/gateway"
	"github.com/dukerupert/sindri/internal/handler/api"
	"github.com/dukerupert/sindri/internal/logger"
	"github.com/dukerupert/sindri/internal/middleware"
	"github.com/dukerupert/sindri/internal/notify"
	"github.com/dukerupert/sindri/internal/postgres"
	"github.com/dukerupert/sindri/internal/service"
	"github.com/dukerupert/sindri/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sindri: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	log.Info().Str("env", cfg.Env).Msg("starting checkout core")

	if err := postgres.Migrate(cfg.DatabaseURL, log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := notify.NewNatsPublisher(cfg.NatsURL, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	provider := gateway.NewStripeProvider(cfg.StripeSecretKey, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewBusinessMetrics(registry, cfg.MetricsNamespace)

	checkout := service.NewCheckoutService(store, publisher, metrics, log)
	coupons := service.NewCouponService(store, metrics)
	orders := service.NewOrderService(store, publisher, cfg.AllowCancelAfterShip, log)
	returns := service.NewReturnsService(store, provider, publisher, metrics, cfg.ReturnWindowDays, cfg.Currency, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.HTTPMetrics(registry, cfg.MetricsNamespace))
	e.Use(middleware.RequestContext())

	api.NewHandler(checkout, coupons, orders, returns, log).Register(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
