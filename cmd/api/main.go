package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-simulator/internal/attempt"
	"crm-simulator/internal/config"
	"crm-simulator/internal/customer"
	"crm-simulator/internal/httpapi"
	"crm-simulator/internal/observability"
	"crm-simulator/internal/state"
	"crm-simulator/internal/webhook"
	"crm-simulator/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Shared process state: seeded records, webhook target, both logs.
	// Everything lives in memory for the process lifetime only.
	repo := customer.NewMemoryRepo(customer.Seed()...)
	settings := webhook.NewSettings(cfg.Webhook.URL)
	webhookLog := attempt.NewLog[attempt.WebhookAttempt](attempt.WebhookLogCapacity)
	inboundLog := attempt.NewLog[attempt.InboundAttempt](attempt.InboundLogCapacity)
	metrics := observability.NewMetrics()

	notifier := webhook.NewNotifier(settings, webhookLog, log, cfg.Webhook.Timeout, metrics)
	customers := customer.NewService(repo, notifier)
	stateSvc := state.NewService(repo, settings, webhookLog, inboundLog)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(metrics.Middleware())
	// Tracking must run before CORS: the CORS layer rejects mutations
	// from untrusted origins, and those are exactly the requests the
	// inbound log exists to capture.
	r.Use(httpapi.TrackInbound(inboundLog, cfg.Frontend.Origins, nil))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Frontend.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
	}))

	h := httpapi.Handlers{
		Customers: customers,
		Settings:  settings,
		State:     stateSvc,
	}
	registerRoutes(r, h, metrics)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "webhook_url", cfg.Webhook.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
