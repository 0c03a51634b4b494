package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vihabhat/Promotion-rule-engine/internal/api"
	"github.com/vihabhat/Promotion-rule-engine/internal/config"
	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
	"github.com/vihabhat/Promotion-rule-engine/internal/logging"
	"github.com/vihabhat/Promotion-rule-engine/internal/store"
	"github.com/vihabhat/Promotion-rule-engine/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("dev", "info")
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := store.NewSource(ctx, store.Config{
		Type: cfg.SourceType,
		Path: cfg.RulesPath,
		DSN:  cfg.DatabaseDSN,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create rules source")
	}
	defer src.Close()

	// The initial load is fatal: there is no previous snapshot to fall
	// back to yet.
	res, err := src.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("initial rules load failed")
	}

	met := telemetry.New()
	matcher := engine.New()
	srv := api.NewServer(matcher, src, met, log, cfg.AdminAPIKey, cfg.RateLimitPerIP)

	version := srv.ApplyLoad(res)
	log.Info().Int("rules", len(res.Rules)).Int("dropped", len(res.Dropped)).
		Uint64("version", version).Msg("rules loaded")

	if cfg.WatchRules {
		if fs, ok := src.(*store.FileSource); ok {
			go func() {
				if err := fs.Watch(ctx, func(res *store.LoadResult) { srv.ApplyLoad(res) }); err != nil {
					log.Error().Err(err).Msg("rules watcher stopped")
				}
			}()
		}
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", met.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("source", cfg.SourceType).Msg("listening")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
	_ = metricsSrv.Shutdown(shutCtx)
	log.Info().Msg("stopped")
}
