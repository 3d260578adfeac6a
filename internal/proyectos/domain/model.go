package domain

import (
	"strings"
	"time"
)

const (
	DefaultPhase    = "Detectado"
	DefaultPriority = "Media"
	PriorityHigh    = "Alta"
)

// Task is one entry of the project's task list.
type Task struct {
	Title     string     `json:"titulo"`
	Type      string     `json:"tipo"`
	Deadline  *time.Time `json:"fecha_limite,omitempty"`
	Completed bool       `json:"completado"`
}

// Project is a tracked construction project. It is storage-agnostic; the
// repository maps it to and from Firestore documents.
type Project struct {
	ID                string     `json:"id"`
	Name              string     `json:"proyecto"`
	City              string     `json:"ciudad,omitempty"`
	Province          string     `json:"provincia,omitempty"`
	ProjectType       string     `json:"tipo_proyecto,omitempty"`
	Segment           string     `json:"segmento,omitempty"`
	Homes             int        `json:"num_viviendas_aprox,omitempty"`
	Promoter          string     `json:"promotora_fondo,omitempty"`
	Architecture      string     `json:"arquitectura,omitempty"`
	Engineering       string     `json:"ingenieria,omitempty"`
	Phase             string     `json:"fase_proyecto"`
	Priority          string     `json:"prioridad"`
	Potential         float64    `json:"potencial"`
	EstimatedStart    *time.Time `json:"fecha_inicio_estimada,omitempty"`
	EstimatedDelivery *time.Time `json:"fecha_entrega_estimada,omitempty"`
	SourceURL         string     `json:"fuente_url,omitempty"`
	Notes             string     `json:"notas,omitempty"`
	FollowUpDate      *time.Time `json:"seguimiento_fecha,omitempty"`
	FollowUpComment   string     `json:"seguimiento_comentario,omitempty"`
	TaskDate          *time.Time `json:"tarea_fecha,omitempty"`
	TaskComment       string     `json:"tarea_comentario,omitempty"`
	Tasks             []Task     `json:"tareas,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

// Validate checks the only hard invariant of a project: a non-blank name.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Normalize trims free-text fields and fills the phase and priority defaults.
func (p *Project) Normalize() {
	for _, s := range []*string{
		&p.Name, &p.City, &p.Province, &p.ProjectType, &p.Segment, &p.Promoter,
		&p.Architecture, &p.Engineering, &p.Phase, &p.Priority, &p.SourceURL,
		&p.Notes, &p.FollowUpComment, &p.TaskComment,
	} {
		*s = strings.TrimSpace(*s)
	}
	if p.Phase == "" {
		p.Phase = DefaultPhase
	}
	if p.Priority == "" {
		p.Priority = DefaultPriority
	}
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name              *string
	City              *string
	Province          *string
	ProjectType       *string
	Segment           *string
	Homes             *int
	Promoter          *string
	Architecture      *string
	Engineering       *string
	Phase             *string
	Priority          *string
	Potential         *float64
	EstimatedStart    **time.Time
	EstimatedDelivery **time.Time
	SourceURL         *string
	Notes             *string
	FollowUpDate      **time.Time
	FollowUpComment   *string
	TaskDate          **time.Time
	TaskComment       *string
	Tasks             *[]Task
}

// Validate rejects a patch that would blank the project name.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply overwrites the fields present in the patch.
func (p Patch) Apply(dst *Project) {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setDate := func(dst **time.Time, v **time.Time) {
		if v != nil {
			*dst = *v
		}
	}

	setStr(&dst.Name, p.Name)
	setStr(&dst.City, p.City)
	setStr(&dst.Province, p.Province)
	setStr(&dst.ProjectType, p.ProjectType)
	setStr(&dst.Segment, p.Segment)
	setStr(&dst.Promoter, p.Promoter)
	setStr(&dst.Architecture, p.Architecture)
	setStr(&dst.Engineering, p.Engineering)
	setStr(&dst.Phase, p.Phase)
	setStr(&dst.Priority, p.Priority)
	setStr(&dst.SourceURL, p.SourceURL)
	setStr(&dst.Notes, p.Notes)
	setStr(&dst.FollowUpComment, p.FollowUpComment)
	setStr(&dst.TaskComment, p.TaskComment)
	setDate(&dst.EstimatedStart, p.EstimatedStart)
	setDate(&dst.EstimatedDelivery, p.EstimatedDelivery)
	setDate(&dst.FollowUpDate, p.FollowUpDate)
	setDate(&dst.TaskDate, p.TaskDate)
	if p.Homes != nil {
		dst.Homes = *p.Homes
	}
	if p.Potential != nil {
		dst.Potential = *p.Potential
	}
	if p.Tasks != nil {
		dst.Tasks = append([]Task(nil), (*p.Tasks)...)
	}
	if dst.Phase == "" {
		dst.Phase = DefaultPhase
	}
}
