package service

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/picwall-dev/picwall/internal/taskqueue"
)

var (
	thumbnailTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picwall_thumbnail_tasks_total",
			Help: "Thumbnail task deliveries by outcome",
		},
		[]string{"outcome"},
	)
)

// ThumbnailWorker turns task-queue deliveries into registry calls and
// decides which failures are retryable.
type ThumbnailWorker struct {
	images ImageService
	logger *slog.Logger
}

func NewThumbnailWorker(images ImageService) *ThumbnailWorker {
	return &ThumbnailWorker{images: images, logger: slog.Default()}
}

// Handle processes one delivery. Decode failures are terminal: the image
// stays thumbnail-less until manually remediated, and retrying would fail
// the same way, so the task is acknowledged. Everything else (blob store
// hiccups, database errors) is returned for redelivery.
func (w *ThumbnailWorker) Handle(ctx context.Context, task taskqueue.Task) error {
	if task.Name != taskqueue.TaskMakeThumbnail {
		w.logger.Error("unknown task, acking", "task", task.Name)
		thumbnailTasksTotal.WithLabelValues("unknown").Inc()
		return nil
	}

	err := w.images.MakeThumbnailNow(ctx, task.ImageId)
	if err == nil {
		thumbnailTasksTotal.WithLabelValues("ok").Inc()
		return nil
	}

	if internal_errors.Is[*internal_errors.DecodeError](err) {
		w.logger.Error("thumbnail source undecodable, giving up", "image_id", task.ImageId, "error", err)
		thumbnailTasksTotal.WithLabelValues("decode_failed").Inc()
		return nil
	}
	if isNotFound(err) {
		// The row vanished between scheduling and execution. Deletion is
		// guarded against in-flight thumbnails, so this indicates a bug; it
		// is still not retryable.
		w.logger.Error("thumbnail task for missing image", "image_id", task.ImageId, "error", err)
		thumbnailTasksTotal.WithLabelValues("missing").Inc()
		return nil
	}

	thumbnailTasksTotal.WithLabelValues("retry").Inc()
	return err
}
