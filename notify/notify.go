// Package notify fans review task events out to other processes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"doc-governance/logger"
)

const (
	EventTaskCreated = "task.created"
	EventTasksClosed = "tasks.closed"
)

type TaskEvent struct {
	Event        string    `json:"event"`
	ProjectID    uint      `json:"project_id"`
	VersionID    uint      `json:"version_id"`
	TaskID       uint      `json:"task_id,omitempty"`
	StepNo       int       `json:"step_no,omitempty"`
	RequiredRole string    `json:"required_role,omitempty"`
	Title        string    `json:"title,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt TaskEvent) error
	Close() error
}

type nopPublisher struct{}

func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, TaskEvent) error { return nil }
func (nopPublisher) Close() error                             { return nil }

type redisPublisher struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisPublisher connects to addr and pings it. An empty addr yields a
// no-op publisher so local runs need no Redis.
func NewRedisPublisher(log *logger.Logger, addr, channel string) (Publisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		log.Info("REDIS_ADDR not set, task notifications disabled")
		return NewNopPublisher(), nil
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "review-tasks"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisPublisherFromClient(log, rdb, channel), nil
}

func NewRedisPublisherFromClient(log *logger.Logger, rdb *goredis.Client, channel string) Publisher {
	return &redisPublisher{
		log:     log.With("service", "RedisTaskPublisher"),
		rdb:     rdb,
		channel: channel,
	}
}

func (p *redisPublisher) Publish(ctx context.Context, evt TaskEvent) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis task publisher not initialized")
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		p.log.Warn("publish task event failed", "event", evt.Event, "version_id", evt.VersionID, "error", err)
		return err
	}
	return nil
}

func (p *redisPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
