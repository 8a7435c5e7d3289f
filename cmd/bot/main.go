package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"davomat/internal/access"
	"davomat/internal/attendance"
	attendancesvc "davomat/internal/attendance/service"
	attendancestore "davomat/internal/attendance/store"
	"davomat/internal/notify"
	"davomat/internal/platform/config"
	"davomat/internal/platform/httpserver"
	"davomat/internal/platform/logger"
	"davomat/internal/platform/metrics"
	"davomat/internal/platform/postgres"
	platformredis "davomat/internal/platform/redis"
	"davomat/internal/report"
	"davomat/internal/roster"
	"davomat/internal/schedule"
	"davomat/internal/settings"
	"davomat/internal/telegram"
	httptransport "davomat/internal/transport/http"
)

// main wires stores, services, the chat transport, and the scheduler, then
// runs until interrupted. Business logic lives in the internal packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthChecks := map[string]httptransport.HealthCheck{}

	// Stores: postgres when configured, in-memory otherwise.
	var (
		attStore attendancestore.Store = attendancestore.NewInMemory()
		rosStore roster.Store          = roster.NewInMemory()
		accStore access.Store          = access.NewInMemory()
		setStore settings.Store        = settings.NewInMemory()
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Bootstrap(ctx, db); err != nil {
			log.Error("schema bootstrap failed", "error", err)
			os.Exit(1)
		}
		attStore = attendancestore.NewPostgres(db)
		rosStore = roster.NewPostgres(db)
		accStore = access.NewPostgres(db)
		setStore = settings.NewPostgres(db)
		healthChecks["postgres"] = db.PingContext
		log.Info("postgres connected")
	} else {
		log.Warn("DATABASE_URL not set, state will not survive restarts")
	}

	var dedupe telegram.Deduper = telegram.NewMemoryDeduper()
	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		dedupe = telegram.NewRedisDeduper(rdb)
		healthChecks["redis"] = rdb.Health
		log.Info("redis connected")
	}

	classes := attendance.ClassList(cfg.Classes)
	attService := attendancesvc.New(log, attStore, rosStore, classes, loc, m)
	reportService := report.NewService(log, attStore, classes)
	accessService := access.NewService(log, accStore)
	settingsService := settings.NewService(setStore)

	client, err := telegram.NewClient(cfg.BotToken)
	if err != nil {
		log.Error("telegram client failed", "error", err)
		os.Exit(1)
	}
	log.Info("telegram authenticated", "bot", client.Username())

	notifier := notify.New(log, client, m)
	handler := telegram.NewHandler(
		log, client, attService, reportService, accessService, settingsService,
		notifier, dedupe, m,
		telegram.HandlerConfig{
			OwnerID:        cfg.OwnerID,
			AllowedGroupID: cfg.AllowedGroupID,
			ActiveWindow:   cfg.ActiveWindow,
			SummaryTimes:   cfg.SummaryTimes,
			EndOfDay:       cfg.EndOfDay,
			Location:       loc,
		},
	)

	scheduler := schedule.New(log,
		schedule.Config{
			SummaryTimes:  cfg.SummaryTimes,
			ReminderTimes: cfg.ReminderTimes,
			EndOfDay:      cfg.EndOfDay,
			Location:      loc,
		},
		reportService, accessService, settingsService, notifier, m,
	)
	if err := scheduler.Start(); err != nil {
		log.Error("scheduler failed", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	router := httptransport.NewRouter(log,
		httptransport.Config{BotToken: cfg.BotToken, AdminJWTKey: cfg.AdminJWTKey},
		httptransport.NewWebhookHandler(log, handler),
		httptransport.NewAdminHandler(log, reportService, accessService, loc),
		healthChecks,
	)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	// Webhook when a public URL is configured, long polling otherwise.
	if cfg.WebhookURL != "" {
		url := cfg.WebhookURL + "/webhook/" + cfg.BotToken
		if err := client.SetWebhook(url); err != nil {
			log.Error("webhook registration failed", "error", err)
			os.Exit(1)
		}
		log.Info("webhook registered")
	} else {
		updates := client.Updates()
		go func() {
			for upd := range updates {
				handler.ProcessUpdate(ctx, upd)
			}
		}()
		defer client.StopPolling()
		log.Info("long polling started")
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
