// Package main runs the background worker that removes replaced ad images.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/classifieds-board/backend/config"
	"github.com/classifieds-board/backend/internal/worker"
	"github.com/classifieds-board/backend/pkg/queue"
	"github.com/classifieds-board/backend/pkg/redis"
	"github.com/classifieds-board/backend/pkg/storage"
)

// requeueSchedule gives dead-lettered jobs another chance every night.
const requeueSchedule = "0 3 * * *"

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var images worker.ObjectDeleter
	if cfg.Storage.UsesS3() {
		images, err = storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Bucket:          cfg.AWS.ImagesBucket,
			PublicBaseURL:   cfg.AWS.PublicBaseURL,
		}, logger)
	} else {
		images, err = storage.NewLocal(cfg.Storage.MediaRoot, cfg.Storage.MediaURL, logger)
	}
	if err != nil {
		logger.Fatal("image storage", zap.Error(err))
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	cleaner := worker.NewImageCleaner(images, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(requeueSchedule, func() {
		if _, err := jobQueue.RequeueDead(workerCtx); err != nil {
			logger.Error("requeue dead jobs", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("schedule requeue", zap.Error(err))
	}
	scheduler.Start()

	done := make(chan struct{})
	go func() {
		cleaner.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started", zap.String("requeue_schedule", requeueSchedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-scheduler.Stop().Done()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn("worker did not stop in time")
	}
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
