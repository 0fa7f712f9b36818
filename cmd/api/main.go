package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"slicehub/api/internal/cache"
	"slicehub/api/internal/config"
	"slicehub/api/internal/database"
	"slicehub/api/internal/factory"
	"slicehub/api/internal/handlers"
	"slicehub/api/internal/ids"
	"slicehub/api/internal/jobs"
	"slicehub/api/internal/log"
	"slicehub/api/internal/models"
	"slicehub/api/internal/repository"
	"slicehub/api/internal/security"
	"slicehub/api/internal/server"
	"slicehub/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}

	factoryClient := factory.NewClient(cfg.Factory)

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, objectStore, factoryClient, cfg)

	if err := seedAdmin(ctx, logger, dbPool, cfg); err != nil {
		logger.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, handlerSet.Sessions())

	scheduler := jobs.NewScheduler(handlerSet.Sessions(), handlerSet.Orders(), logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

// seedAdmin creates the initial admin account when the user table is empty,
// so a fresh deployment is reachable without manual SQL.
func seedAdmin(ctx context.Context, logger zerolog.Logger, dbPool *pgxpool.Pool, cfg *config.AppConfig) error {
	users := repository.NewUserRepository(dbPool)

	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := security.HashPassword(cfg.Bootstrap.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		ID:           ids.New(),
		Name:         cfg.Bootstrap.AdminName,
		Email:        cfg.Bootstrap.AdminEmail,
		PasswordHash: passwordHash,
		Roles:        []models.RoleAssignment{{Role: models.RoleAdmin}},
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info().Str("email", admin.Email).Msg("seeded admin account")
	return nil
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
