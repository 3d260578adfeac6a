package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/internal/acciones"
	"github.com/crm-obras-2n/crm-obras-backend/internal/activity"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/repository"
)

// ListCache holds the full project list between writes.
type ListCache interface {
	GetList(ctx context.Context) ([]domain.Project, bool, error)
	SetList(ctx context.Context, items []domain.Project) error
	Invalidate(ctx context.Context) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, e activity.Entry) error
}

type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Event is published after every successful write.
type Event struct {
	Action string    `json:"accion"`
	IDs    []string  `json:"ids"`
	Actor  string    `json:"usuario"`
	At     time.Time `json:"fecha"`
}

// Options wires the optional collaborators. Nil members are skipped.
type Options struct {
	Cache         ListCache
	Activity      ActivityRecorder
	Events        EventPublisher
	EventsChannel string
	Logger        *zap.Logger
	Location      *time.Location
	Now           func() time.Time
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo    repository.Repository
	cache   ListCache
	records ActivityRecorder
	events  EventPublisher
	channel string
	log     *zap.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(repo repository.Repository, opts Options) *ProjectService {
	s := &ProjectService{
		repo:    repo,
		cache:   opts.Cache,
		records: opts.Activity,
		events:  opts.Events,
		channel: opts.EventsChannel,
		log:     opts.Logger,
		loc:     opts.Location,
		now:     opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Now is the current time in the service's location; "today" derives from it.
func (s *ProjectService) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *ProjectService) Location() *time.Location {
	return s.loc
}

// All returns every project, served from the cache when warm.
func (s *ProjectService) All(ctx context.Context) ([]domain.Project, error) {
	if s.cache != nil {
		items, ok, err := s.cache.GetList(ctx)
		if err != nil {
			s.log.Warn("project cache read failed", zap.Error(err))
		} else if ok {
			return items, nil
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetList(ctx, items); err != nil {
			s.log.Warn("project cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// List applies the filter and orders by phase then name.
func (s *ProjectService) List(ctx context.Context, f domain.Filter) ([]domain.Project, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := f.Apply(items)
	domain.SortByPhaseAndName(out)
	return out, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new project on behalf of actor.
func (s *ProjectService) Create(ctx context.Context, actor string, p domain.Project) (*domain.Project, error) {
	return s.create(ctx, actor, p, activity.ActionCreated)
}

// Import stores a project coming from a spreadsheet row.
func (s *ProjectService) Import(ctx context.Context, actor string, p domain.Project) (*domain.Project, error) {
	return s.create(ctx, actor, p, activity.ActionImported)
}

func (s *ProjectService) create(ctx context.Context, actor string, p domain.Project, action string) (*domain.Project, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, action, actor, created.Name, created.ID)
	return created, nil
}

// Update overwrites the fields present in patch.
func (s *ProjectService) Update(ctx context.Context, actor, id string, patch domain.Patch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, activity.ActionUpdated, actor, "", id)
	return updated, nil
}

// Delete removes the given projects in one batch. Blank and repeated ids are dropped.
func (s *ProjectService) Delete(ctx context.Context, actor string, ids []string) (int, error) {
	clean := uniqueIDs(ids)
	if len(clean) == 0 {
		return 0, domain.ErrNoIDs
	}

	if err := s.repo.DeleteMany(ctx, clean); err != nil {
		return 0, err
	}

	s.afterWrite(ctx, activity.ActionDeleted, actor, "", clean...)
	return len(clean), nil
}

// Actions builds the action panel for the current day.
func (s *ProjectService) Actions(ctx context.Context) ([]acciones.Action, acciones.Buckets, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, acciones.Buckets{}, err
	}
	all := acciones.Build(items)
	return all, acciones.Partition(all, s.Now()), nil
}

// afterWrite runs the side effects of a successful write. None of them can
// fail the write itself; problems are logged.
func (s *ProjectService) afterWrite(ctx context.Context, action, actor, detail string, ids ...string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("project cache invalidation failed", zap.Error(err))
		}
	}

	if s.records != nil {
		for _, id := range ids {
			err := s.records.Record(ctx, activity.Entry{ProjectID: id, Action: action, Actor: actor, Detail: detail})
			if err != nil {
				s.log.Warn("activity record failed", zap.String("project_id", id), zap.Error(err))
			}
		}
	}

	if s.events != nil && s.channel != "" {
		ev := Event{Action: action, IDs: ids, Actor: actor, At: s.Now()}
		if err := s.events.Publish(ctx, s.channel, ev); err != nil {
			s.log.Warn("project event publish failed", zap.Error(err))
		}
	}

	s.log.Info("project write",
		zap.String("action", action),
		zap.Strings("ids", ids),
		zap.String("actor", actor),
	)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
