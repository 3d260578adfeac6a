package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

// MemoryRepository keeps projects in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Project
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]domain.Project),
		now:   time.Now,
	}
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Project, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Phase != out[j].Phase {
			return out[i].Phase < out[j].Phase
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) Create(_ context.Context, p domain.Project) (*domain.Project, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = uuid.New().String()
	now := r.now()
	p.CreatedAt = &now
	r.items[p.ID] = p
	return &p, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	patch.Apply(&p)
	r.items[id] = p
	return &p, nil
}

// DeleteMany removes all ids at once; unknown ids are ignored like Firestore deletes.
func (r *MemoryRepository) DeleteMany(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return domain.ErrNoIDs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.items, id)
	}
	return nil
}
