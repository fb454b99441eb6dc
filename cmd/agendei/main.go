package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"agendei/internal/api"
	"agendei/internal/audit"
	"agendei/internal/booking"
	"agendei/internal/config"
	"agendei/internal/metrics"
	"agendei/internal/sheetdb"
	"agendei/internal/store"
	"agendei/internal/syncer"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("AGENDEI_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	clients := make(map[string]*sheetdb.Client, len(cfg.Tenants))
	for tenantID, endpoint := range cfg.Tenants {
		c := sheetdb.NewClient(endpoint, cfg.StoreTimeout(), &logger)
		if rdb != nil {
			c.UseRedisCache(rdb, cfg.CacheTTL())
		}
		clients[tenantID] = c
	}

	var journal *audit.Journal
	if cfg.Audit.Enabled {
		journal, err = audit.Open(cfg.Audit.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("open audit journal error")
		}
		defer journal.Close()
	}

	st := store.New()

	mgr := syncer.NewManager(st, func(tenantID string) (syncer.RecordStore, error) {
		c, ok := clients[tenantID]
		if !ok {
			return nil, fmt.Errorf("unknown tenant %s", tenantID)
		}
		return c, nil
	}, cfg.PollInterval(), &logger)

	writers := func(tenantID string) booking.StoreWriter {
		c, ok := clients[tenantID]
		if !ok {
			return nil
		}
		return c
	}
	var journalIface booking.AuditLog
	if journal != nil {
		journalIface = journal
	}
	svc := booking.NewService(st, writers, journalIface, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trigger := booking.NewClockTrigger(svc, mgr.Current, &logger)
	if err := trigger.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start clock trigger error")
	}
	defer trigger.Stop()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(st, svc, mgr, &logger)
	logger.Info().Int("port", cfg.API.Port).Int("tenants", len(cfg.Tenants)).Msg("scheduling engine started")
	if err := server.Run(ctx, cfg.API.Port); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
	mgr.Deselect()
}

func startHealthServer(ctx context.Context, port int, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if rdb != nil {
			ctxPing, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
