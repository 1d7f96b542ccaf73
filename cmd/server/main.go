// Package main runs the classifieds board HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/classifieds-board/backend/config"
	"github.com/classifieds-board/backend/internal/ads"
	"github.com/classifieds-board/backend/internal/auth"
	"github.com/classifieds-board/backend/internal/categories"
	"github.com/classifieds-board/backend/internal/users"
	"github.com/classifieds-board/backend/pkg/database"
	"github.com/classifieds-board/backend/pkg/queue"
	"github.com/classifieds-board/backend/pkg/redis"
	"github.com/classifieds-board/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Replaced images are deleted inline when Redis is unavailable.
	var cleanup ads.CleanupQueue
	var cache Pinger
	rdb, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Warn("redis disabled, image cleanup runs inline", zap.Error(err))
	} else {
		defer rdb.Close()
		cleanup = queue.NewQueue(rdb.Client, logger)
		cache = rdb
	}

	var images ads.ImageStore
	mediaRoot := ""
	if cfg.Storage.UsesS3() {
		s3Client, err := storage.NewS3(ctx, s3Config(cfg), logger)
		if err != nil {
			logger.Warn("s3 disabled, image upload unavailable", zap.Error(err))
		} else {
			images = s3Client
		}
	} else {
		local, err := storage.NewLocal(cfg.Storage.MediaRoot, cfg.Storage.MediaURL, logger)
		if err != nil {
			logger.Warn("local media disabled, image upload unavailable", zap.Error(err))
		} else {
			images = local
			mediaRoot = local.Root()
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	userRepo := users.NewRepository(pool)

	router := newRouter(routes{
		categories: categories.NewHandler(categories.NewRepository(pool), logger),
		ads: ads.NewHandler(ads.NewRepository(pool), images, cleanup, ads.Options{
			PageSize:      cfg.Pagination.PageSize,
			MaxImageBytes: cfg.Storage.MaxImageBytes,
		}, logger),
		users:      users.NewHandler(userRepo, logger),
		auth:       auth.NewHandler(userRepo, jwtService, logger),
		validate:   jwtService.ValidateUser,
		db:         pool,
		redis:      cache,
		corsOrigin: cfg.Server.CORSAllowedOrigins,
		mediaURL:   cfg.Storage.MediaURL,
		mediaRoot:  mediaRoot,
		maxUpload:  cfg.Storage.MaxImageBytes,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func s3Config(cfg *config.Config) storage.S3Config {
	return storage.S3Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Bucket:          cfg.AWS.ImagesBucket,
		PublicBaseURL:   cfg.AWS.PublicBaseURL,
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
