package http

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/internal/activity"
	"github.com/crm-obras-2n/crm-obras-backend/internal/excel"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/service"
)

// ActivityLister reads the mutation log of a project.
type ActivityLister interface {
	ListByProject(ctx context.Context, projectID string, limit int) ([]activity.Entry, error)
}

// Importer loads projects from an uploaded workbook.
type Importer interface {
	Import(ctx context.Context, r io.Reader, actor string, today time.Time) (*excel.ImportResult, error)
}

// Handler bundles the dependencies for project HTTP endpoints.
type Handler struct {
	svc      *service.ProjectService
	activity ActivityLister
	importer Importer
	log      *zap.Logger
}

// New builds the handler. activity and importer may be nil; their routes
// then answer with an empty log and 503 respectively.
func New(svc *service.ProjectService, activity ActivityLister, importer Importer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, activity: activity, importer: importer, log: log}
}

type taskReq struct {
	Title     string `json:"titulo"`
	Type      string `json:"tipo"`
	Deadline  string `json:"fecha_limite"`
	Completed bool   `json:"completado"`
}

// projectReq is the create body. Dates are calendar days as strings
// (yyyy-mm-dd or dd/mm/yyyy).
type projectReq struct {
	Name              string    `json:"proyecto"`
	City              string    `json:"ciudad"`
	Province          string    `json:"provincia"`
	ProjectType       string    `json:"tipo_proyecto"`
	Segment           string    `json:"segmento"`
	Homes             int       `json:"num_viviendas_aprox"`
	Promoter          string    `json:"promotora_fondo"`
	Architecture      string    `json:"arquitectura"`
	Engineering       string    `json:"ingenieria"`
	Phase             string    `json:"fase_proyecto"`
	Priority          string    `json:"prioridad"`
	Potential         float64   `json:"potencial"`
	EstimatedStart    string    `json:"fecha_inicio_estimada"`
	EstimatedDelivery string    `json:"fecha_entrega_estimada"`
	SourceURL         string    `json:"fuente_url"`
	Notes             string    `json:"notas"`
	FollowUpDate      string    `json:"seguimiento_fecha"`
	FollowUpComment   string    `json:"seguimiento_comentario"`
	TaskDate          string    `json:"tarea_fecha"`
	TaskComment       string    `json:"tarea_comentario"`
	Tasks             []taskReq `json:"tareas"`
}

func (r projectReq) toProject(loc *time.Location) (domain.Project, error) {
	var err error
	date := func(v string) *time.Time {
		d, perr := domain.ParseDateInput(v, loc)
		if perr != nil && err == nil {
			err = perr
		}
		return d
	}

	p := domain.Project{
		Name:              r.Name,
		City:              r.City,
		Province:          r.Province,
		ProjectType:       r.ProjectType,
		Segment:           r.Segment,
		Homes:             r.Homes,
		Promoter:          r.Promoter,
		Architecture:      r.Architecture,
		Engineering:       r.Engineering,
		Phase:             r.Phase,
		Priority:          r.Priority,
		Potential:         r.Potential,
		EstimatedStart:    date(r.EstimatedStart),
		EstimatedDelivery: date(r.EstimatedDelivery),
		SourceURL:         r.SourceURL,
		Notes:             r.Notes,
		FollowUpDate:      date(r.FollowUpDate),
		FollowUpComment:   r.FollowUpComment,
		TaskDate:          date(r.TaskDate),
		TaskComment:       r.TaskComment,
	}
	if err != nil {
		return domain.Project{}, err
	}
	tasks, err := toTasks(r.Tasks, loc)
	if err != nil {
		return domain.Project{}, err
	}
	p.Tasks = tasks
	return p, nil
}

func toTasks(in []taskReq, loc *time.Location) ([]domain.Task, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]domain.Task, 0, len(in))
	for _, t := range in {
		deadline, err := domain.ParseDateInput(t.Deadline, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Task{
			Title:     t.Title,
			Type:      t.Type,
			Deadline:  deadline,
			Completed: t.Completed,
		})
	}
	return out, nil
}

// patchReq is the PATCH body. Absent fields are left alone; an empty date
// string clears the date and an unparseable one is rejected.
type patchReq struct {
	Name              *string    `json:"proyecto"`
	City              *string    `json:"ciudad"`
	Province          *string    `json:"provincia"`
	ProjectType       *string    `json:"tipo_proyecto"`
	Segment           *string    `json:"segmento"`
	Homes             *int       `json:"num_viviendas_aprox"`
	Promoter          *string    `json:"promotora_fondo"`
	Architecture      *string    `json:"arquitectura"`
	Engineering       *string    `json:"ingenieria"`
	Phase             *string    `json:"fase_proyecto"`
	Priority          *string    `json:"prioridad"`
	Potential         *float64   `json:"potencial"`
	EstimatedStart    *string    `json:"fecha_inicio_estimada"`
	EstimatedDelivery *string    `json:"fecha_entrega_estimada"`
	SourceURL         *string    `json:"fuente_url"`
	Notes             *string    `json:"notas"`
	FollowUpDate      *string    `json:"seguimiento_fecha"`
	FollowUpComment   *string    `json:"seguimiento_comentario"`
	TaskDate          *string    `json:"tarea_fecha"`
	TaskComment       *string    `json:"tarea_comentario"`
	Tasks             *[]taskReq `json:"tareas"`
}

func (r patchReq) toPatch(loc *time.Location) (domain.Patch, error) {
	var err error
	date := func(v *string) **time.Time {
		if v == nil {
			return nil
		}
		d, perr := domain.ParseDateInput(*v, loc)
		if perr != nil && err == nil {
			err = perr
		}
		return &d
	}

	p := domain.Patch{
		Name:              r.Name,
		City:              r.City,
		Province:          r.Province,
		ProjectType:       r.ProjectType,
		Segment:           r.Segment,
		Homes:             r.Homes,
		Promoter:          r.Promoter,
		Architecture:      r.Architecture,
		Engineering:       r.Engineering,
		Phase:             r.Phase,
		Priority:          r.Priority,
		Potential:         r.Potential,
		EstimatedStart:    date(r.EstimatedStart),
		EstimatedDelivery: date(r.EstimatedDelivery),
		SourceURL:         r.SourceURL,
		Notes:             r.Notes,
		FollowUpDate:      date(r.FollowUpDate),
		FollowUpComment:   r.FollowUpComment,
		TaskDate:          date(r.TaskDate),
		TaskComment:       r.TaskComment,
	}
	if err != nil {
		return domain.Patch{}, err
	}
	if r.Tasks != nil {
		tasks, err := toTasks(*r.Tasks, loc)
		if err != nil {
			return domain.Patch{}, err
		}
		if tasks == nil {
			tasks = []domain.Task{}
		}
		p.Tasks = &tasks
	}
	return p, nil
}

type deleteReq struct {
	IDs []string `json:"ids"`
}
