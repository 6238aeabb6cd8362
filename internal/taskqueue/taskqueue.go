// Package taskqueue carries fire-and-forget background tasks between the API
// process and the thumbnail workers with at-least-once delivery. Handlers
// must therefore be idempotent.
package taskqueue

import (
	"context"

	"github.com/picwall-dev/picwall/internal/domain"
)

// TaskMakeThumbnail asks a worker to generate the thumbnail for one image.
// The task carries only the image id; the worker re-reads the original from
// the blob store at execution time.
const TaskMakeThumbnail = "images.make_thumbnail"

type Task struct {
	Name    string         `json:"name"`
	ImageId domain.ImageId `json:"image_id"`
}

// Queue submits tasks. Results are ignored by the producer.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
}

// Handler processes one task delivery. A nil return acknowledges the task;
// an error leaves it eligible for redelivery.
type Handler func(ctx context.Context, task Task) error

// Consumer drains a queue until its context is cancelled.
type Consumer interface {
	Run(ctx context.Context, handle Handler) error
}
