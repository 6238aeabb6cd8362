package setup

import (
	"context"
	"fmt"

	"github.com/picwall-dev/picwall/internal/config"
	"github.com/picwall-dev/picwall/internal/handler"
	internal_jwt "github.com/picwall-dev/picwall/internal/jwt"
	"github.com/picwall-dev/picwall/internal/service"
	"github.com/picwall-dev/picwall/internal/storage/fs"
	"github.com/picwall-dev/picwall/internal/storage/pg"
	"github.com/picwall-dev/picwall/internal/storage/s3"
	"github.com/picwall-dev/picwall/internal/taskqueue"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Storage  *pg.Storage
	Blobs    service.BlobStorage
	Queue    taskqueue.Queue
	Consumer taskqueue.Consumer
	Images   service.ImageService
	Pictures service.PictureService
	Collages service.CollageService
	Handler  *handler.Handler
	Jwt      internal_jwt.JwtService
	GC       *service.BlobGarbageCollector

	closers []func() error
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{Storage: storage}
	deps.closers = append(deps.closers, storage.Cleanup)

	deps.Blobs, err = newBlobStorage(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}

	if err := newTaskQueue(deps, cfg); err != nil {
		deps.Close()
		return nil, err
	}

	jwtService := internal_jwt.New(cfg.Private.JwtKey, cfg.JwtTTL())

	images := service.NewImages(storage, deps.Blobs, deps.Queue, service.DefaultThumbnailSize)
	pictures := service.NewPictures(storage, images)
	collages := service.NewCollages(storage, storage)
	auth := service.NewAuth(storage)

	deps.Images = images
	deps.Pictures = pictures
	deps.Collages = collages
	deps.Jwt = jwtService
	deps.Handler = handler.New(auth, pictures, collages, deps.Blobs, storage, jwtService, cfg)

	if gcBlobs, ok := deps.Blobs.(service.GCBlobStorage); ok && cfg.GCInterval() > 0 {
		deps.GC = service.NewBlobGarbageCollector(storage, gcBlobs, cfg.GCMinBlobAge())
	}

	return deps, nil
}

func newBlobStorage(ctx context.Context, cfg *config.Config) (service.BlobStorage, error) {
	switch cfg.Public.BlobBackend {
	case "", "fs":
		blobs, err := fs.New(cfg.Public.MediaRoot)
		if err != nil {
			return nil, err
		}
		return blobs, nil
	case "s3":
		blobs, err := s3.New(ctx, s3.Config{
			Endpoint:  cfg.Private.S3.Endpoint,
			AccessKey: cfg.Private.S3.AccessKey,
			SecretKey: cfg.Private.S3.SecretKey,
			Bucket:    cfg.Private.S3.Bucket,
			UseSSL:    cfg.Private.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return blobs, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Public.BlobBackend)
	}
}

func newTaskQueue(deps *Dependencies, cfg *config.Config) error {
	switch cfg.Public.QueueBackend {
	case "", "memory":
		memory := taskqueue.NewMemory(0)
		deps.Queue = memory
		deps.Consumer = memory
	case "redis":
		redisQueue, err := taskqueue.NewRedis(taskqueue.RedisConfig{
			Addr:     cfg.Private.Redis.Addr,
			Password: cfg.Private.Redis.Password,
			DB:       cfg.Private.Redis.DB,
		})
		if err != nil {
			return err
		}
		deps.Queue = redisQueue
		deps.Consumer = redisQueue
		deps.closers = append(deps.closers, redisQueue.Close)
	default:
		return fmt.Errorf("unknown queue backend %q", cfg.Public.QueueBackend)
	}
	return nil
}

// ThumbnailWorker builds the task handler that drives the thumbnail
// pipeline off the queue.
func (d *Dependencies) ThumbnailWorker() *service.ThumbnailWorker {
	return service.NewThumbnailWorker(d.Images)
}

// Close releases held resources in reverse acquisition order.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}
