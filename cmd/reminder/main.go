package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/notifications"
	"github.com/codelens/taskhub/internal/observability"
	"github.com/codelens/taskhub/internal/reminder"
	"github.com/codelens/taskhub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	tasksRepo := postgres.NewTasksRepo(prom)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	scanner := reminder.New(reminder.Config{
		PollInterval: cfg.ReminderPollInterval,
		Window:       cfg.ReminderWindow,
	}, pool, tasksRepo, notifier, prom, log)

	// admin server: probes + metrics on a side port
	var shuttingDown atomic.Bool

	adminMux := reminder.AdminHandler(pool, shuttingDown.Load)
	adminMux.Handle("/metrics", promhttp.Handler())

	adminSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port+1),
		Handler:           adminMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("reminder admin server starting", "port", cfg.Port+1)
		err := adminSrv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("admin server failed", "err", err)
		}
	}()

	log.Info("reminder scanner starting",
		"poll_interval", cfg.ReminderPollInterval.String(),
		"window", cfg.ReminderWindow.String(),
	)

	if err := scanner.Run(ctx); err != nil {
		log.Error("reminder scanner stopped with error", "err", err)
	}

	shuttingDown.Store(true)

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "err", err)
	}

	log.Info("reminder shutdown complete")
}
