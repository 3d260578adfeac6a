package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestProjectCache(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	c := NewProjectCache(client, time.Minute)

	t.Run("miss on empty cache", func(t *testing.T) {
		items, ok, err := c.GetList(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, items)
	})

	t.Run("round trip and ttl", func(t *testing.T) {
		due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
		require.NoError(t, c.SetList(ctx, []domain.Project{{ID: "a", Name: "Torre Sur", FollowUpDate: &due}}))

		items, ok, err := c.GetList(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, items, 1)
		assert.Equal(t, "Torre Sur", items[0].Name)
		assert.True(t, due.Equal(*items[0].FollowUpDate))

		assert.Equal(t, time.Minute, mr.TTL(projectListKey))
		mr.FastForward(2 * time.Minute)

		_, ok, err = c.GetList(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate", func(t *testing.T) {
		require.NoError(t, c.SetList(ctx, []domain.Project{{ID: "a", Name: "x"}}))
		require.NoError(t, c.Invalidate(ctx))
		assert.False(t, mr.Exists(projectListKey))
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		require.NoError(t, mr.Set(projectListKey, "{not json"))
		_, ok, err := c.GetList(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)

	sub := client.Subscribe(ctx, EventsChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, NewPublisher(client).Publish(ctx, EventsChannel, map[string]string{"action": "created"}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &payload))
	assert.Equal(t, "created", payload["action"])
}
