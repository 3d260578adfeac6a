// Package acciones derives the upcoming-actions panel from project follow-up
// and task dates.
package acciones

import (
	"sort"
	"strings"
	"time"

	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

const (
	TypeFollowUp = "Seguimiento"
	TypeTask     = "Tarea"

	// UpcomingDays is the inclusive window after today covered by the Upcoming bucket.
	UpcomingDays = 7
)

// Action is a reminder extracted from one of a project's date fields.
type Action struct {
	Type        string    `json:"tipo"`
	Date        time.Time `json:"fecha"`
	ProjectID   string    `json:"proyecto_id"`
	Project     string    `json:"proyecto"`
	Client      string    `json:"cliente"`
	City        string    `json:"ciudad"`
	Phase       string    `json:"estado"`
	Description string    `json:"descripcion"`
}

// Buckets is the action list split by due day relative to today.
type Buckets struct {
	Overdue  []Action `json:"atrasadas"`
	Today    []Action `json:"hoy"`
	Upcoming []Action `json:"proximas"`
}

// Total counts the actions that landed in any bucket.
func (b Buckets) Total() int {
	return len(b.Overdue) + len(b.Today) + len(b.Upcoming)
}

// Build extracts every pending action from the projects, sorted by date
// ascending. Actions sharing a date keep project order.
func Build(projects []domain.Project) []Action {
	out := make([]Action, 0, len(projects))

	for _, p := range projects {
		base := Action{
			ProjectID: p.ID,
			Project:   domain.NameOrDefault(p.Name),
			Client:    domain.Display(p.Promoter),
			City:      domain.Display(p.City),
			Phase:     p.Phase,
		}
		if base.Phase == "" {
			base.Phase = domain.DefaultPhase
		}

		if p.FollowUpDate != nil {
			a := base
			a.Type = TypeFollowUp
			a.Date = *p.FollowUpDate
			a.Description = p.FollowUpComment
			out = append(out, a)
		}

		// The single legacy task only counts once it has been described.
		if p.TaskDate != nil && strings.TrimSpace(p.TaskComment) != "" {
			a := base
			a.Type = TypeTask
			a.Date = *p.TaskDate
			a.Description = p.TaskComment
			out = append(out, a)
		}

		for _, t := range p.Tasks {
			if t.Completed || t.Deadline == nil {
				continue
			}
			a := base
			a.Type = TypeTask
			if strings.TrimSpace(t.Type) != "" {
				a.Type = t.Type
			}
			a.Date = *t.Deadline
			a.Description = t.Title
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Partition classifies actions against the day of now, in now's location.
// Actions due more than UpcomingDays after today are dropped.
func Partition(actions []Action, now time.Time) Buckets {
	today := domain.Day(now)
	limit := today.AddDate(0, 0, UpcomingDays)

	var b Buckets
	for _, a := range actions {
		d := domain.Day(a.Date.In(now.Location()))
		switch {
		case d.Before(today):
			b.Overdue = append(b.Overdue, a)
		case d.Equal(today):
			b.Today = append(b.Today, a)
		case !d.After(limit):
			b.Upcoming = append(b.Upcoming, a)
		}
	}
	return b
}

// Panel builds and partitions in one step.
func Panel(projects []domain.Project, now time.Time) Buckets {
	return Partition(Build(projects), now)
}
