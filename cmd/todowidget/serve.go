package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/TodoWidget/internal/api"
	"github.com/Kerhoff/TodoWidget/internal/events"
	"github.com/Kerhoff/TodoWidget/internal/handlers"
	"github.com/Kerhoff/TodoWidget/internal/metrics"
	"github.com/Kerhoff/TodoWidget/internal/repository/postgres"
	"github.com/Kerhoff/TodoWidget/internal/service"
	"github.com/Kerhoff/TodoWidget/internal/telegram"
	"github.com/Kerhoff/TodoWidget/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the database and serve the widget API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	cmd.Flags().String("http-addr", "", "listen address (default 127.0.0.1:8080)")
	return cmd
}

func runServe(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	l, logFile, err := logger.NewWithFile(a.cfg.LogLevel, a.cfg.LogDir)
	if err != nil {
		a.logger.WithError(err).Warn("File logging disabled")
		l = a.logger
	} else {
		defer logFile.Close()
	}
	a.rebind(l)

	l.Info("Starting todo widget backend...")
	l.Infof("Log directory: %s", a.cfg.LogDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// A failed initial connect leaves the widget running without a database;
	// the user can fix the settings through PUT /api/db/config.
	if err := a.manager.Connect(ctx); err != nil {
		l.WithError(err).Warn("Database unavailable, continuing without it")
	} else {
		l.Infof("Connected to %s", a.manager.CurrentConfig())
	}
	m.SetConnected(a.manager.DB() != nil)
	defer a.manager.Close()

	broadcaster := events.NewBroadcaster(l)
	defer broadcaster.Close()

	svc := service.New(a.manager, l, m, broadcaster,
		postgres.NewDailyTodoRepository(a.manager),
		postgres.NewMidtermTodoRepository(a.manager),
	)

	if a.cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(a.cfg.TelegramToken, a.cfg.TelegramChatID, l, m)
		if err != nil {
			return fmt.Errorf("failed to create Telegram bot: %w", err)
		}
		handlers.Register(bot, svc, l)

		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
		go notifyReconnects(ctx, broadcaster, bot, a.cfg.TelegramChatID, l)
	}

	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           api.NewServer(svc, broadcaster, m, l).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Infof("HTTP server listening on %s", a.cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		l.Info("Received shutdown signal...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	// Event streams never finish on their own; close them before draining.
	broadcaster.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	l.Info("Todo widget backend stopped")
	return nil
}

// messageSender is the part of *telegram.Bot notifyReconnects uses.
type messageSender interface {
	SendMessage(chatID int64, text string) error
}

// notifyReconnects tells the Telegram chat when the database was switched.
func notifyReconnects(ctx context.Context, broadcaster *events.Broadcaster, bot messageSender, chatID int64, l *logrus.Logger) {
	ch, cancel := broadcaster.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event == events.DBReconnected {
				if err := bot.SendMessage(chatID, "🔄 Database connection changed, lists reloaded."); err != nil {
					l.WithError(err).Warn("Failed to send reconnect notice")
				}
			}
		}
	}
}
