package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/config"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/dispute"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/natsbus"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/notify"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/reminder"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/store"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/telegram"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/telemetry"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the maritime collision service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("starting maritime collision service", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()
	if cfg.Tracing.Endpoint == "" {
		slog.Warn("tracing endpoint not set, tracing disabled")
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	slog.Info("catalog loaded", "source", engine.Catalog.Source(), "questions", engine.Catalog.Len(),
		"arrest_bar_answer", cfg.Rules.ArrestBarAnswer)

	// SQLite store
	db, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()
	slog.Info("store initialized", "path", cfg.Store.Path)

	// Embedded NATS
	bus, err := natsbus.New(cfg.NATS)
	if err != nil {
		return fmt.Errorf("init nats: %w", err)
	}
	defer bus.Close()
	slog.Info("nats started", "url", bus.ClientURL())

	natsClient, err := natsbus.NewClient(bus)
	if err != nil {
		return fmt.Errorf("init nats client: %w", err)
	}
	defer natsClient.Close()

	svc := dispute.NewService(db, engine, notify.NewPublisher(natsClient), cfg.Web.BaseURL)

	// Reminders
	if cfg.Reminders.Schedule != "" {
		go reminder.New(svc, cfg.Reminders).Start(ctx)
	} else {
		slog.Warn("reminder schedule not set, reminders disabled")
	}

	// Telegram bot
	if cfg.Telegram.Token != "" {
		bot, err := telegram.NewBot(cfg.Telegram, natsClient)
		if err != nil {
			return fmt.Errorf("init telegram bot: %w", err)
		}
		go func() {
			if err := bot.Start(ctx); err != nil {
				slog.Error("telegram bot error", "error", err)
			}
		}()
		slog.Info("telegram bot started", "chats", len(cfg.Telegram.Chats))
	} else {
		slog.Warn("telegram token not set, bot disabled")
	}

	// Web API
	if cfg.Web.Enabled {
		srv := web.NewServer(svc, bus, cfg.Web, version)
		go func() {
			if err := srv.Start(ctx); err != nil {
				slog.Error("web server error", "error", err)
			}
		}()
		slog.Info("web server started", "port", cfg.Web.Port)
	} else {
		slog.Warn("web server disabled")
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig)
	cancel()
	return nil
}
