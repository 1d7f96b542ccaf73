package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/classifieds-board/backend/pkg/queue"
)

// JobSource is the queue the cleaner drains; *queue.Queue implements it.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ObjectDeleter removes stored image objects (storage.S3 or storage.Local).
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// ImageCleaner removes ad images that were replaced by a newer upload.
type ImageCleaner struct {
	images  ObjectDeleter
	jobs    JobSource
	backoff time.Duration
	logger  *zap.Logger
}

// NewImageCleaner creates an image cleanup processor.
func NewImageCleaner(images ObjectDeleter, jobs JobSource, logger *zap.Logger) *ImageCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageCleaner{images: images, jobs: jobs, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one image delete job.
func (p *ImageCleaner) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeImageDelete {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ImageDeletePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.Key == "" {
		return fmt.Errorf("job %s has no image key", job.ID)
	}
	if err := p.images.Delete(ctx, payload.Key); err != nil {
		return fmt.Errorf("delete %s: %w", payload.Key, err)
	}
	p.logger.Info("image deleted", zap.Int64("ad_id", payload.AdID), zap.String("key", payload.Key))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ImageCleaner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("image worker stopping")
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.wait(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.jobs.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.wait(ctx)
		}
	}
}

func (p *ImageCleaner) wait(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
