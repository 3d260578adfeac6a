package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crm-obras-2n/crm-obras-backend/internal/activity"
	"github.com/crm-obras-2n/crm-obras-backend/internal/cache"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/repository"
)

type fakeRecorder struct {
	mu      sync.Mutex
	entries []activity.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, e activity.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return f.err
}

type fakePublisher struct {
	events []Event
}

func (f *fakePublisher) Publish(_ context.Context, _ string, payload any) error {
	f.events = append(f.events, payload.(Event))
	return nil
}

// countingRepo counts List calls to observe cache hits.
type countingRepo struct {
	repository.Repository
	lists int
}

func (c *countingRepo) List(ctx context.Context) ([]domain.Project, error) {
	c.lists++
	return c.Repository.List(ctx)
}

var madrid, _ = time.LoadLocation("Europe/Madrid")

func fixedNow() time.Time {
	return time.Date(2026, 10, 18, 12, 0, 0, 0, madrid)
}

func newService(t *testing.T) (*ProjectService, *countingRepo, *fakeRecorder, *fakePublisher) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingRepo{Repository: repository.NewMemoryRepository()}
	rec := &fakeRecorder{}
	pub := &fakePublisher{}
	svc := NewProjectService(repo, Options{
		Cache:         cache.NewProjectCache(client, time.Minute),
		Activity:      rec,
		Events:        pub,
		EventsChannel: cache.EventsChannel,
		Location:      madrid,
		Now:           fixedNow,
	})
	return svc, repo, rec, pub
}

func TestProjectService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	svc, repo, rec, pub := newService(t)

	_, err := svc.Create(ctx, "uid-1", domain.Project{Name: " "})
	assert.ErrorIs(t, err, domain.ErrNameRequired)
	assert.Empty(t, rec.entries)

	_, err = svc.Create(ctx, "uid-1", domain.Project{Name: "Torre Sur", City: "Madrid", Segment: "Lujo"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "uid-1", domain.Project{Name: "Parque", City: "Sevilla", Phase: "Construcción", Segment: "BTR"})
	require.NoError(t, err)

	items, err := svc.List(ctx, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Parque", items[0].Name)

	// second read is a cache hit
	items, err = svc.List(ctx, domain.Filter{Search: "madrid"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Torre Sur", items[0].Name)
	assert.Equal(t, 1, repo.lists)

	require.Len(t, rec.entries, 2)
	assert.Equal(t, activity.ActionCreated, rec.entries[0].Action)
	assert.Equal(t, "uid-1", rec.entries[0].Actor)
	require.Len(t, pub.events, 2)
	assert.Equal(t, fixedNow(), pub.events[0].At)
}

func TestProjectService_WritesInvalidateCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newService(t)

	p, err := svc.Create(ctx, "uid", domain.Project{Name: "Torre Sur"})
	require.NoError(t, err)

	_, err = svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	city := "Valencia"
	_, err = svc.Update(ctx, "uid", p.ID, domain.Patch{City: &city})
	require.NoError(t, err)

	items, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
	assert.Equal(t, "Valencia", items[0].City)
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _, rec, _ := newService(t)

	blank := ""
	_, err := svc.Update(ctx, "uid", "whatever", domain.Patch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	city := "Bilbao"
	_, err = svc.Update(ctx, "uid", "missing", domain.Patch{City: &city})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, rec.entries)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _, rec, pub := newService(t)

	a, err := svc.Create(ctx, "uid", domain.Project{Name: "A"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, "uid", domain.Project{Name: "B"})
	require.NoError(t, err)
	rec.entries = nil
	pub.events = nil

	_, err = svc.Delete(ctx, "uid", []string{" ", ""})
	assert.ErrorIs(t, err, domain.ErrNoIDs)

	n, err := svc.Delete(ctx, "uid", []string{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.Len(t, rec.entries, 2)
	require.Len(t, pub.events, 1)
	assert.Equal(t, activity.ActionDeleted, pub.events[0].Action)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, pub.events[0].IDs)
}

func TestProjectService_ActivityFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	svc, _, rec, _ := newService(t)
	rec.err = errors.New("db down")

	_, err := svc.Create(ctx, "uid", domain.Project{Name: "Torre"})
	assert.NoError(t, err)
}

func TestProjectService_Actions(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newService(t)

	at := func(days int) *time.Time {
		d := domain.Day(fixedNow()).AddDate(0, 0, days)
		return &d
	}
	_, err := svc.Create(ctx, "uid", domain.Project{Name: "atrasada", FollowUpDate: at(-2)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "uid", domain.Project{Name: "hoy", TaskDate: at(0), TaskComment: "llamar"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "uid", domain.Project{Name: "lejana", FollowUpDate: at(30)})
	require.NoError(t, err)

	all, buckets, err := svc.Actions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Len(t, buckets.Overdue, 1)
	assert.Len(t, buckets.Today, 1)
	assert.Empty(t, buckets.Upcoming)
}

func TestProjectService_NilOptions(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(repository.NewMemoryRepository(), Options{})

	p, err := svc.Create(ctx, "", domain.Project{Name: "Solo"})
	require.NoError(t, err)
	n, err := svc.Delete(ctx, "", []string{p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, time.Local, svc.Location())
}
