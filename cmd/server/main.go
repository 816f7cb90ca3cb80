package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/config"
	"github.com/gabrielle-jeco/personal-performance-app/internal/infra"
	"github.com/gabrielle-jeco/personal-performance-app/internal/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	evidence, err := infra.NewDiskEvidenceStore(cfg.EvidenceStoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init evidence storage")
	}

	// Attendance/metrics provider: real HTTP upstream behind a circuit
	// breaker when configured, built-in mock otherwise.
	var external infra.ExternalDataProvider
	if cfg.ExternalMetricsURL != "" {
		cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
		external = infra.NewHTTPDataProvider(cfg.ExternalMetricsURL, cb)
		log.Info().Str("url", cfg.ExternalMetricsURL).Msg("using external metrics provider")
	} else {
		external = infra.NewMockDataProvider()
		log.Info().Msg("using mock metrics provider")
	}

	r := router.New(cfg, db, rdb, evidence, external)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("performance backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
