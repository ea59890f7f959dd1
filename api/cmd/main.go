package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loefbijter/loefsys/internal/audit"
	"github.com/loefbijter/loefsys/internal/config"
	"github.com/loefbijter/loefsys/internal/infrastructure/postgres"
	"github.com/loefbijter/loefsys/internal/infrastructure/redis"
	"github.com/loefbijter/loefsys/internal/pkg/logger"
	"github.com/loefbijter/loefsys/internal/security"
	"github.com/loefbijter/loefsys/internal/service"
	"github.com/loefbijter/loefsys/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "loefsys").
		Str("env", cfg.AppEnv).
		Logger()

	// Root ctx with signal cancellation
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	dbPool, err := pgxpool.New(rootCtx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres pool create failed")
	}
	defer dbPool.Close()

	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		defer cancel()

		if err := dbPool.Ping(pingCtx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping failed")
		}
		log.Info().Msg("postgres connected")
	}

	eventRepo := postgres.NewEventRepo(dbPool)
	registrationRepo := postgres.NewRegistrationRepo(dbPool)
	contactRepo := postgres.NewContactRepo(dbPool)
	membershipRepo := postgres.NewMembershipRepo(dbPool)
	groupRepo := postgres.NewGroupRepo(dbPool)
	reservationRepo := postgres.NewReservationRepo(dbPool)

	// ---- Redis ----
	cache := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		defer cancel()

		// Best-effort ping; the service runs degraded without redis.
		if err := cache.Client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Msg("redis connected")
		}
	}

	// ---- Application services ----
	auditLog := audit.New(log)
	eventSvc := service.NewEventService(eventRepo, cache)
	registrationSvc := service.NewRegistrationService(registrationRepo, eventRepo, cache, auditLog)
	membershipSvc := service.NewMembershipService(membershipRepo, auditLog)
	reservationSvc := service.NewReservationService(reservationRepo, auditLog)
	groupSvc := service.NewGroupService(groupRepo)
	contactSvc := service.NewContactService(contactRepo)

	h := rest.NewHandler(eventSvc, registrationSvc, membershipSvc, reservationSvc, groupSvc, contactSvc)

	// ---- JWT verifier ----
	verifier := security.NewHS256Verifier(cfg.JWTSecret)

	// ---- Router ----
	httpHandler := rest.NewRouter(rest.RouterDeps{
		Cache:            cache,
		Handler:          h,
		Verifier:         verifier,
		JWTIssuer:        cfg.JWTIssuer,
		RateLimitEnabled: cfg.RLEnabled,
		RateLimit:        cfg.RLLimit,
		RateLimitWindow:  cfg.RLWindow,
	})

	// ---- Outbox worker (outbound registration.*/reservation.* events) ----
	if cfg.OutboxEnabled {
		postgres.NewOutboxWorker(dbPool).Start(rootCtx, cfg.RabbitURL, cfg.RabbitExchange)
		log.Info().Msg("outbox worker started")
	}

	// ---- HTTP server ----
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
