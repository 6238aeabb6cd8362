package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const taskField = "task"

// RedisConfig configures the Redis Streams queue implementation.
type RedisConfig struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	Stream       string
	Group        string
	Consumer     string
	BlockTimeout time.Duration
	MinIdle      time.Duration
	Logger       *slog.Logger
}

// Redis is a task queue backed by a Redis Stream with one consumer group.
// Messages are acknowledged only after the handler returns nil; unacked
// messages are reclaimed from dead consumers after MinIdle, giving
// at-least-once delivery across worker processes.
type Redis struct {
	client       redis.UniversalClient
	stream       string
	group        string
	consumer     string
	blockTimeout time.Duration
	minIdle      time.Duration
	logger       *slog.Logger
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = "picwall:tasks"
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "thumbnail-workers"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		host, _ := os.Hostname()
		consumer = host + "-" + uuid.NewString()
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:      []string{addr},
		Username:   strings.TrimSpace(cfg.Username),
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: 2,
	})

	q := &Redis{
		client:       client,
		stream:       stream,
		group:        group,
		consumer:     consumer,
		blockTimeout: cfg.BlockTimeout,
		minIdle:      cfg.MinIdle,
		logger:       cfg.Logger,
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	if q.blockTimeout <= 0 {
		q.blockTimeout = 2 * time.Second
	}
	if q.minIdle <= 0 {
		q.minIdle = time.Minute
	}

	if err := q.ensureGroup(context.Background()); err != nil {
		client.Close()
		return nil, err
	}
	return q, nil
}

func (q *Redis) ensureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on %s: %w", q.group, q.stream, err)
	}
	return nil
}

func (q *Redis) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{taskField: payload},
	}).Err()
}

// Run consumes tasks until ctx is cancelled. Each iteration first reclaims
// messages stuck pending on dead consumers, then blocks for new ones.
func (q *Redis) Run(ctx context.Context, handle Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		q.reclaim(ctx, handle)

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: q.consumer,
			Streams:  []string{q.stream, ">"},
			Count:    1,
			Block:    q.blockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			q.logger.Error("task queue read failed", "stream", q.stream, "error", err)
			time.Sleep(q.blockTimeout)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				q.process(ctx, msg, handle)
			}
		}
	}
}

func (q *Redis) reclaim(ctx context.Context, handle Handler) {
	msgs, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  q.minIdle,
		Start:    "0-0",
		Count:    8,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		if !errors.Is(err, context.Canceled) {
			q.logger.Error("task queue reclaim failed", "stream", q.stream, "error", err)
		}
		return
	}
	for _, msg := range msgs {
		q.process(ctx, msg, handle)
	}
}

func (q *Redis) process(ctx context.Context, msg redis.XMessage, handle Handler) {
	raw, ok := msg.Values[taskField].(string)
	if !ok {
		q.logger.Error("malformed task message, acking", "id", msg.ID)
		q.ack(ctx, msg.ID)
		return
	}

	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		q.logger.Error("undecodable task message, acking", "id", msg.ID, "error", err)
		q.ack(ctx, msg.ID)
		return
	}

	if err := handle(ctx, task); err != nil {
		// No ack: the message stays pending and is redelivered via reclaim.
		q.logger.Warn("task failed, leaving pending", "task", task.Name, "image_id", task.ImageId, "error", err)
		return
	}
	q.ack(ctx, msg.ID)
}

func (q *Redis) ack(ctx context.Context, id string) {
	if err := q.client.XAck(ctx, q.stream, q.group, id).Err(); err != nil && !errors.Is(err, context.Canceled) {
		q.logger.Error("task ack failed", "id", id, "error", err)
	}
}

func (q *Redis) Close() error {
	return q.client.Close()
}
