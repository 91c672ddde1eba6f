package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codelens/taskhub/internal/auth"
	"github.com/codelens/taskhub/internal/cache"
	"github.com/codelens/taskhub/internal/cache/redisclient"
	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/db"
	httpx "github.com/codelens/taskhub/internal/http"
	"github.com/codelens/taskhub/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is opt-in, dev setups rarely run a collector
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "taskhub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()

				if err := shutdownTracer(ctx); err != nil {
					log.Error("tracer shutdown failed", "err", err)
				}
			}()
		}
	}

	if err := db.Migrate(cfg.DBURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if cfg.SeedDemoData {
		seedCtx, cancel := config.WithTimeout(10 * time.Second)
		err := db.SeedDemoData(seedCtx, pool, cfg)
		cancel()

		if err != nil {
			log.Error("demo data seeding failed", "err", err)
			os.Exit(1)
		}

		log.Info("demo data seeded")
	}

	// redis is optional, the analytics cache degrades to pass-through
	var analyticsCache *cache.AnalyticsCache

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)
		err := rdb.Ping(pingCtx)
		cancel()

		if err != nil {
			log.Error("redis unreachable, analytics cache disabled", "err", err)
		} else {
			defer rdb.Close()
			analyticsCache = cache.NewAnalyticsCache(rdb.Raw(), cfg.AnalyticsCacheTTL)
		}
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL)

	router := httpx.NewRouter(log, pool, cfg, prom, jwtManager, analyticsCache)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
