// Package panel derives the read-only views shown on the CRM home page and
// dashboards from the project list.
package panel

import (
	"sort"
	"strings"
	"time"

	"github.com/crm-obras-2n/crm-obras-backend/internal/acciones"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

const (
	RecentLimit       = 5
	DefaultTopN       = 10
	ImportantMinimum  = 50000.0
	OtherStatesColumn = "Otros"
)

// Pipeline is the commercial pipeline, in funnel order.
var Pipeline = []string{
	"Detectado",
	"Seguimiento",
	"En Prescripción",
	"Oferta Enviada",
	"Negociación",
	"Ganado",
	"Perdido",
	"Paralizado",
}

var (
	advancedPhases = set("Construcción", "Entregado")
	followUpPhases = set("Detectado", "Seguimiento", "En Prescripción", "Oferta Enviada", "Negociación", "En comercialización")
	inactivePhases = set("Perdido", "Paralizado")
)

const wonPhase = "Ganado"

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[s] = struct{}{}
	}
	return m
}

func in(m map[string]struct{}, s string) bool {
	_, ok := m[s]
	return ok
}

func phaseOf(p domain.Project) string {
	if s := strings.TrimSpace(p.Phase); s != "" {
		return s
	}
	return domain.DefaultPhase
}

// SummaryView is the home page: headline counters, latest projects and the action panel.
type SummaryView struct {
	Total          int              `json:"total"`
	InFollowUp     int              `json:"en_seguimiento"`
	Advanced       int              `json:"avanzados"`
	TotalPotential float64          `json:"potencial_total"`
	Recent         []domain.Project `json:"recientes"`
	Actions        acciones.Buckets `json:"acciones"`
}

func Summary(projects []domain.Project, now time.Time) SummaryView {
	v := SummaryView{Total: len(projects)}
	for _, p := range projects {
		phase := phaseOf(p)
		if phase != domain.DefaultPhase {
			v.InFollowUp++
		}
		if in(advancedPhases, phase) {
			v.Advanced++
		}
		v.TotalPotential += p.Potential
	}
	v.Recent = Recent(projects, RecentLimit)
	v.Actions = acciones.Panel(projects, now)
	return v
}

// Recent returns up to n projects, newest CreatedAt first. Projects without a
// creation time sort last.
func Recent(projects []domain.Project, n int) []domain.Project {
	out := make([]domain.Project, len(projects))
	copy(out, projects)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type StateCount struct {
	State    string `json:"estado"`
	Projects int    `json:"proyectos"`
}

type Aggregate struct {
	Key       string  `json:"clave"`
	Projects  int     `json:"proyectos"`
	Potential float64 `json:"potencial"`
}

type PriorityCount struct {
	Priority string `json:"prioridad"`
	Projects int    `json:"proyectos"`
}

type DashboardView struct {
	Total          int             `json:"total_proyectos"`
	TotalPotential float64         `json:"total_potencial"`
	MeanTicket     float64         `json:"ticket_medio"`
	Active         int             `json:"proyectos_activos"`
	WonRatio       float64         `json:"ratio_ganados"`
	Funnel         []StateCount    `json:"funnel"`
	ByProvince     []Aggregate     `json:"por_provincia"`
	TopPromoters   []Aggregate     `json:"ranking_promotoras"`
	Priorities     []PriorityCount `json:"prioridades"`
}

// Dashboard computes the KPIs. WonRatio is a percentage.
func Dashboard(projects []domain.Project, topN int) DashboardView {
	if topN <= 0 {
		topN = DefaultTopN
	}
	v := DashboardView{
		Total:        len(projects),
		Funnel:       []StateCount{},
		ByProvince:   []Aggregate{},
		TopPromoters: []Aggregate{},
		Priorities:   []PriorityCount{},
	}

	states := map[string]int{}
	priorities := map[string]int{}
	var prioOrder []string
	won := 0
	for _, p := range projects {
		phase := phaseOf(p)
		states[phase]++
		if !in(inactivePhases, phase) {
			v.Active++
		}
		if phase == wonPhase {
			won++
		}
		v.TotalPotential += p.Potential

		prio := strings.TrimSpace(p.Priority)
		if prio == "" {
			prio = domain.DefaultPriority
		}
		if _, ok := priorities[prio]; !ok {
			prioOrder = append(prioOrder, prio)
		}
		priorities[prio]++
	}
	if v.Total > 0 {
		v.MeanTicket = v.TotalPotential / float64(v.Total)
		v.WonRatio = float64(won) / float64(v.Total) * 100
	}

	for _, s := range Pipeline {
		v.Funnel = append(v.Funnel, StateCount{State: s, Projects: states[s]})
	}

	sort.Strings(prioOrder)
	for _, prio := range prioOrder {
		v.Priorities = append(v.Priorities, PriorityCount{Priority: prio, Projects: priorities[prio]})
	}

	v.ByProvince = aggregate(projects, func(p domain.Project) string { return p.Province })
	v.TopPromoters = aggregate(projects, func(p domain.Project) string { return p.Promoter })
	if len(v.TopPromoters) > topN {
		v.TopPromoters = v.TopPromoters[:topN]
	}
	return v
}

// aggregate groups by key, dropping blank keys, sorted by potential descending
// then key ascending.
func aggregate(projects []domain.Project, key func(domain.Project) string) []Aggregate {
	idx := map[string]int{}
	out := []Aggregate{}
	for _, p := range projects {
		k := strings.TrimSpace(key(p))
		if k == "" {
			continue
		}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Aggregate{Key: k})
		}
		out[i].Projects++
		out[i].Potential += p.Potential
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Potential != out[j].Potential {
			return out[i].Potential > out[j].Potential
		}
		return out[i].Key < out[j].Key
	})
	return out
}

type Column struct {
	State    string           `json:"estado"`
	Projects []domain.Project `json:"proyectos"`
}

// Kanban groups projects into one column per pipeline state. Projects in a
// state outside the pipeline go to a trailing "Otros" column, present only
// when non-empty.
func Kanban(projects []domain.Project) []Column {
	cols := make([]Column, len(Pipeline))
	pos := make(map[string]int, len(Pipeline))
	for i, s := range Pipeline {
		cols[i] = Column{State: s, Projects: []domain.Project{}}
		pos[s] = i
	}
	other := Column{State: OtherStatesColumn, Projects: []domain.Project{}}

	for _, p := range projects {
		if i, ok := pos[phaseOf(p)]; ok {
			cols[i].Projects = append(cols[i].Projects, p)
			continue
		}
		other.Projects = append(other.Projects, p)
	}
	if len(other.Projects) > 0 {
		cols = append(cols, other)
	}
	return cols
}

// IsImportant reports whether a project is in a follow-up phase and either
// high priority or above the potential threshold.
func IsImportant(p domain.Project) bool {
	if !in(followUpPhases, phaseOf(p)) {
		return false
	}
	return strings.TrimSpace(p.Priority) == domain.PriorityHigh || p.Potential >= ImportantMinimum
}

// Important keeps the important projects, input order preserved.
func Important(projects []domain.Project) []domain.Project {
	out := []domain.Project{}
	for _, p := range projects {
		if IsImportant(p) {
			out = append(out, p)
		}
	}
	return out
}
