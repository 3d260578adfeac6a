// Package cache keeps the project list hot in Redis and publishes change
// notifications to Redis Pub/Sub.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

const (
	projectListKey  = "crm:proyectos:all" // JSON array of every project
	EventsChannel   = "crm:events:proyectos"
	DigestChannel   = "crm:acciones:digest"
	defaultCacheTTL = 2 * time.Minute
)

// ProjectCache stores the full project list under a single key.
type ProjectCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProjectCache(client *redis.Client, ttl time.Duration) *ProjectCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ProjectCache{client: client, ttl: ttl}
}

// GetList returns the cached list; ok is false on a miss.
func (c *ProjectCache) GetList(ctx context.Context) ([]domain.Project, bool, error) {
	data, err := c.client.Get(ctx, projectListKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read project cache: %w", err)
	}

	var items []domain.Project
	if err := json.Unmarshal(data, &items); err != nil {
		// A corrupt entry behaves like a miss and gets overwritten.
		return nil, false, nil
	}
	return items, true, nil
}

func (c *ProjectCache) SetList(ctx context.Context, items []domain.Project) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal project cache: %w", err)
	}
	if err := c.client.Set(ctx, projectListKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write project cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached list after any write.
func (c *ProjectCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, projectListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate project cache: %w", err)
	}
	return nil
}

// Publisher sends JSON payloads to Redis Pub/Sub channels.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}
