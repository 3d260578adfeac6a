package digest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crm-obras-2n/crm-obras-backend/internal/acciones"
	"github.com/crm-obras-2n/crm-obras-backend/internal/cache"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

var madrid, _ = time.LoadLocation("Europe/Madrid")

type stubSource struct {
	projects []domain.Project
	err      error
}

func (s stubSource) Now() time.Time { return time.Date(2026, 10, 18, 7, 0, 0, 0, madrid) }

func (s stubSource) Actions(context.Context) ([]acciones.Action, acciones.Buckets, error) {
	if s.err != nil {
		return nil, acciones.Buckets{}, s.err
	}
	all := acciones.Build(s.projects)
	return all, acciones.Partition(all, s.Now()), nil
}

func day(offset int) *time.Time {
	d := time.Date(2026, 10, 18, 0, 0, 0, 0, madrid).AddDate(0, 0, offset)
	return &d
}

func TestRunOnce_Publishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, cache.DigestChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	src := stubSource{projects: []domain.Project{
		{ID: "1", Name: "A", FollowUpDate: day(-3)},
		{ID: "2", Name: "B", FollowUpDate: day(0)},
		{ID: "3", Name: "C", FollowUpDate: day(2)},
		{ID: "4", Name: "D", FollowUpDate: day(20)},
	}}
	s := NewScheduler(src, cache.NewPublisher(client), Options{Channel: cache.DigestChannel, Location: madrid})

	d, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", d.Date)
	assert.Equal(t, 1, d.Overdue)
	assert.Equal(t, 1, d.Today)
	assert.Equal(t, 1, d.Upcoming)
	assert.Equal(t, 4, d.Pending)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var got Digest
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, d.Date, got.Date)
	assert.Equal(t, 1, got.Overdue)
}

func TestRunOnce_SourceError(t *testing.T) {
	s := NewScheduler(stubSource{err: errors.New("firestore down")}, nil, Options{})
	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler(stubSource{}, nil, Options{Spec: "not a cron"})
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(stubSource{}, nil, Options{Location: madrid})
	require.NoError(t, s.Start())
	s.Stop()
}
