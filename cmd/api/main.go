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

	"github.com/campushq/labops/internal/config"
	"github.com/campushq/labops/internal/db"
	"github.com/campushq/labops/internal/notify"
	"github.com/campushq/labops/internal/repo"
	"github.com/campushq/labops/internal/scheduler"
)

func main() {
	cfg := config.Load()

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		slog.Error("JWT_SECRET must be set in prod")
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)
	if err != nil {
		slog.Error("database connect", "err", err)
		os.Exit(1)
	}
	defer database.Close()
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	slog.Info("database connected", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		slog.Error("migrations", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	senders := []notify.Sender{
		&notify.StoreSink{Repo: repo.NewNotificationRepo(database)},
	}
	if cfg.SMTPAddr != "" {
		senders = append(senders, &notify.EmailSender{
			Addr: cfg.SMTPAddr,
			From: cfg.SMTPFrom,
			To:   cfg.SMTPTo,
		})
	}
	if cfg.WhatsAppWebhookURL != "" {
		senders = append(senders, &notify.WhatsAppSender{
			WebhookURL: cfg.WhatsAppWebhookURL,
			Client:     &http.Client{Timeout: 10 * time.Second},
		})
	}
	dispatcher := notify.NewDispatcher(cfg.NotifyBuffer, logger, senders...)
	go dispatcher.Run(ctx)

	reminders := &scheduler.Reminders{
		Maintenance: repo.NewMaintenanceRepo(database),
		Events:      repo.NewEventRepo(database),
		Dispatcher:  dispatcher,
	}
	cronRunner, err := reminders.Start(cfg.ReminderCron)
	if err != nil {
		slog.Error("scheduler", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg, dispatcher),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
	<-cronRunner.Stop().Done()
}
