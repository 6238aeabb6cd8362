package taskqueue

import (
	"context"
	"log/slog"
	"time"
)

// Memory is an in-process queue backed by a buffered channel. It is used in
// tests and in single-process deployments where no Redis address is
// configured. Redelivery of failed tasks is simulated by re-enqueueing after
// a short delay, which preserves the at-least-once contract workers are
// written against.
type Memory struct {
	tasks      chan Task
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 128
	}
	return &Memory{
		tasks:      make(chan Task, buffer),
		retryDelay: time.Second,
		logger:     slog.Default(),
	}
}

func (m *Memory) Enqueue(ctx context.Context, task Task) error {
	select {
	case m.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Run(ctx context.Context, handle Handler) error {
	for {
		select {
		case task := <-m.tasks:
			if err := handle(ctx, task); err != nil {
				m.logger.Warn("task failed, requeueing", "task", task.Name, "image_id", task.ImageId, "error", err)
				m.requeue(ctx, task)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Memory) requeue(ctx context.Context, task Task) {
	go func() {
		select {
		case <-time.After(m.retryDelay):
		case <-ctx.Done():
			return
		}
		if err := m.Enqueue(ctx, task); err != nil {
			m.logger.Error("dropping task after failed requeue", "task", task.Name, "image_id", task.ImageId, "error", err)
		}
	}()
}
