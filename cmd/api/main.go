package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/njprem/Joestate_APP_BackEnd/internal/config"
	"github.com/njprem/Joestate_APP_BackEnd/internal/logging"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/minio"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/postgres"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/redis"
	"github.com/njprem/Joestate_APP_BackEnd/internal/service"
	transport "github.com/njprem/Joestate_APP_BackEnd/internal/transport/http"
	"github.com/njprem/Joestate_APP_BackEnd/internal/util"
)

func main() {
	cfg := config.Load()

	logger, logCloser, err := logging.New(logging.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		LogstashAddr: cfg.LogstashTCPAddr,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	slog.SetDefault(logger)

	code := 0
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		code = 1
	}
	// os.Exit skips deferred calls, so flush queued log records first.
	_ = logCloser.Close()
	os.Exit(code)
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	minioClient, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		return fmt.Errorf("connect minio: %w", err)
	}
	storage := minio.NewStorage(minioClient, cfg.MinIOPublicURL)
	if err := storage.EnsureBuckets(ctx, cfg.MinIOBucketListings, cfg.MinIOBucketAvatars); err != nil {
		return fmt.Errorf("ensure buckets: %w", err)
	}

	var locationCache ports.LocationCache
	if cfg.RedisAddr != "" {
		client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, location suggestions are not cached", slog.String("error", err.Error()))
		} else {
			defer client.Close()
			locationCache = redis.NewLocationCache(client, cfg.LocationCacheTTL)
		}
	}

	uow := postgres.NewUnitOfWork(db)
	userRepo := postgres.NewUserRepo(db)
	listingRepo := postgres.NewListingRepo(db)
	imageRepo := postgres.NewListingImageRepo(db)
	favoriteRepo := postgres.NewFavoriteRepo(db)

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo, storage, cfg.MinIOBucketAvatars, logger)
	favoriteService := service.NewFavoriteService(favoriteRepo, listingRepo, userRepo, uow)
	associator := service.NewImageAssociator(imageRepo, storage, service.ImageAssociatorConfig{
		Bucket:        cfg.MinIOBucketListings,
		MaxImages:     cfg.ListingMaxImages,
		MaxImageBytes: cfg.ListingImageMaxBytes,
		Logger:        logger,
	})
	listingService := service.NewListingService(listingRepo, imageRepo, userRepo, favoriteService, associator, uow, locationCache, logger)

	e := transport.NewRouter(cfg.AllowOrigins, logger)
	transport.RegisterAuth(e, authService)
	transport.RegisterListings(e, authService, listingService)
	transport.RegisterFavorites(e, authService, favoriteService, listingService)
	transport.RegisterUsers(e, authService, userService, listingService)
	transport.RegisterSwagger(e)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
