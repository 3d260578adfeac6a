// Package digest runs the daily job that summarises pending actions and
// publishes them for the notification workers.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/internal/acciones"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

const DefaultSpec = "0 0 7 * * *"

type Source interface {
	Actions(ctx context.Context) ([]acciones.Action, acciones.Buckets, error)
	Now() time.Time
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Digest is the payload published once per run.
type Digest struct {
	Date     string           `json:"fecha"`
	Overdue  int              `json:"atrasadas"`
	Today    int              `json:"hoy"`
	Upcoming int              `json:"proximas"`
	Pending  int              `json:"pendientes"`
	Actions  acciones.Buckets `json:"acciones"`
}

type Options struct {
	Spec     string
	Channel  string
	Location *time.Location
	Timeout  time.Duration
	Logger   *zap.Logger
}

type Scheduler struct {
	cron    *cron.Cron
	src     Source
	pub     Publisher
	spec    string
	channel string
	timeout time.Duration
	log     *zap.Logger
}

func NewScheduler(src Source, pub Publisher, opts Options) *Scheduler {
	if opts.Spec == "" {
		opts.Spec = DefaultSpec
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(opts.Location)),
		src:     src,
		pub:     pub,
		spec:    opts.Spec,
		channel: opts.Channel,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("action digest failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digest %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("digest scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce builds today's digest and publishes it when a publisher is set.
func (s *Scheduler) RunOnce(ctx context.Context) (*Digest, error) {
	all, b, err := s.src.Actions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load actions: %w", err)
	}

	now := s.src.Now()
	d := &Digest{
		Date:     domain.Day(now).Format(domain.DateLayout),
		Overdue:  len(b.Overdue),
		Today:    len(b.Today),
		Upcoming: len(b.Upcoming),
		Pending:  len(all),
		Actions:  b,
	}

	s.log.Info("action digest",
		zap.String("date", d.Date),
		zap.Int("overdue", d.Overdue),
		zap.Int("today", d.Today),
		zap.Int("upcoming", d.Upcoming),
	)

	if s.pub != nil && s.channel != "" {
		if err := s.pub.Publish(ctx, s.channel, d); err != nil {
			return d, fmt.Errorf("publish digest: %w", err)
		}
	}
	return d, nil
}
