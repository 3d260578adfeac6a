package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

// Firestore field names. Several revisions of the front end wrote different
// names for the same attribute; reads accept the legacy ones as fallbacks.
const (
	FieldName              = "Proyecto"
	FieldCity              = "Ciudad"
	FieldProvince          = "Provincia"
	FieldProjectType       = "Tipo_Proyecto"
	FieldSegment           = "Segmento"
	FieldHomes             = "Num_viviendas_aprox"
	FieldPromoter          = "Promotora_Fondo"
	FieldArchitecture      = "Arquitectura"
	FieldEngineering       = "Ingenieria"
	FieldPhase             = "Fase_proyecto"
	FieldState             = "estado"
	FieldPriority          = "prioridad"
	FieldPotential         = "Potencial_2N"
	FieldPotentialEUR      = "potencial_eur"
	FieldEstimatedStart    = "Fecha_Inicio_Estimada"
	FieldEstimatedDelivery = "Fecha_Entrega_Estimada"
	FieldSourceURL         = "Fuente_URL"
	FieldNotes             = "Notas"
	FieldFollowUpDate      = "seguimiento_fecha"
	FieldFollowUpComment   = "seguimiento_comentario"
	FieldTaskDate          = "tarea_fecha"
	FieldTaskComment       = "tarea_comentario"
	FieldTasks             = "tareas"
	FieldCreatedAt         = "created_at"
)

var legacyFields = map[string][]string{
	FieldName:              {"nombre_obra"},
	FieldCity:              {"ciudad"},
	FieldProvince:          {"provincia"},
	FieldProjectType:       {"tipo_proyecto"},
	FieldPromoter:          {"promotora", "cliente_principal"},
	FieldArchitecture:      {"arquitectura"},
	FieldEngineering:       {"ingenieria"},
	FieldPhase:             {FieldState},
	FieldPotential:         {FieldPotentialEUR},
	FieldEstimatedStart:    {"fecha_inicio"},
	FieldEstimatedDelivery: {"fecha_entrega"},
	FieldNotes:             {"notas_seguimiento"},
	FieldFollowUpDate:      {"fecha_seguimiento"},
	FieldCreatedAt:         {"fecha_creacion"},
}

// fieldUpdate is a storage-neutral single-field write.
type fieldUpdate struct {
	Path  string
	Value interface{}
}

// lookup returns the first non-empty value among the field and its legacy names.
func lookup(data map[string]interface{}, field string) interface{} {
	if v, ok := data[field]; ok && !isEmpty(v) {
		return v
	}
	for _, alt := range legacyFields[field] {
		if v, ok := data[alt]; ok && !isEmpty(v) {
			return v
		}
	}
	return nil
}

func isEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// fromDocument decodes a Firestore document into a project. Dates are read in loc.
func fromDocument(id string, data map[string]interface{}, loc *time.Location) domain.Project {
	p := domain.Project{
		ID:                id,
		Name:              asString(lookup(data, FieldName)),
		City:              asString(lookup(data, FieldCity)),
		Province:          asString(lookup(data, FieldProvince)),
		ProjectType:       asString(lookup(data, FieldProjectType)),
		Segment:           asString(lookup(data, FieldSegment)),
		Homes:             int(asFloat(lookup(data, FieldHomes))),
		Promoter:          asString(lookup(data, FieldPromoter)),
		Architecture:      asString(lookup(data, FieldArchitecture)),
		Engineering:       asString(lookup(data, FieldEngineering)),
		Phase:             asString(lookup(data, FieldPhase)),
		Priority:          asString(lookup(data, FieldPriority)),
		Potential:         asFloat(lookup(data, FieldPotential)),
		EstimatedStart:    domain.ParseDate(lookup(data, FieldEstimatedStart), loc),
		EstimatedDelivery: domain.ParseDate(lookup(data, FieldEstimatedDelivery), loc),
		SourceURL:         asString(lookup(data, FieldSourceURL)),
		Notes:             asString(lookup(data, FieldNotes)),
		FollowUpDate:      domain.ParseDate(lookup(data, FieldFollowUpDate), loc),
		FollowUpComment:   asString(lookup(data, FieldFollowUpComment)),
		TaskDate:          domain.ParseDate(lookup(data, FieldTaskDate), loc),
		TaskComment:       asString(lookup(data, FieldTaskComment)),
		Tasks:             asTasks(data[FieldTasks], loc),
	}

	if ts, ok := lookup(data, FieldCreatedAt).(time.Time); ok && !ts.IsZero() {
		ts = ts.In(loc)
		p.CreatedAt = &ts
	} else {
		p.CreatedAt = domain.ParseDate(lookup(data, FieldCreatedAt), loc)
	}

	p.Normalize()
	return p
}

// toDocument encodes every writable field. created_at is left to the caller.
func toDocument(p domain.Project) map[string]interface{} {
	return map[string]interface{}{
		FieldName:              p.Name,
		FieldCity:              nullable(p.City),
		FieldProvince:          nullable(p.Province),
		FieldProjectType:       nullable(p.ProjectType),
		FieldSegment:           nullable(p.Segment),
		FieldHomes:             p.Homes,
		FieldPromoter:          nullable(p.Promoter),
		FieldArchitecture:      nullable(p.Architecture),
		FieldEngineering:       nullable(p.Engineering),
		FieldPhase:             p.Phase,
		FieldState:             p.Phase,
		FieldPriority:          p.Priority,
		FieldPotential:         p.Potential,
		FieldEstimatedStart:    dateValue(p.EstimatedStart),
		FieldEstimatedDelivery: dateValue(p.EstimatedDelivery),
		FieldSourceURL:         nullable(p.SourceURL),
		FieldNotes:             nullable(p.Notes),
		FieldFollowUpDate:      dateValue(p.FollowUpDate),
		FieldFollowUpComment:   nullable(p.FollowUpComment),
		FieldTaskDate:          dateValue(p.TaskDate),
		FieldTaskComment:       nullable(p.TaskComment),
		FieldTasks:             tasksValue(p.Tasks),
	}
}

// patchUpdates lists the field writes for a partial update. A phase change is
// mirrored into the legacy estado field read by older panels.
func patchUpdates(patch domain.Patch) []fieldUpdate {
	var out []fieldUpdate
	str := func(path string, v *string) {
		if v != nil {
			out = append(out, fieldUpdate{Path: path, Value: nullable(strings.TrimSpace(*v))})
		}
	}
	date := func(path string, v **time.Time) {
		if v != nil {
			out = append(out, fieldUpdate{Path: path, Value: dateValue(*v)})
		}
	}

	if patch.Name != nil {
		out = append(out, fieldUpdate{Path: FieldName, Value: strings.TrimSpace(*patch.Name)})
	}
	str(FieldCity, patch.City)
	str(FieldProvince, patch.Province)
	str(FieldProjectType, patch.ProjectType)
	str(FieldSegment, patch.Segment)
	if patch.Homes != nil {
		out = append(out, fieldUpdate{Path: FieldHomes, Value: *patch.Homes})
	}
	str(FieldPromoter, patch.Promoter)
	str(FieldArchitecture, patch.Architecture)
	str(FieldEngineering, patch.Engineering)
	if patch.Phase != nil {
		phase := strings.TrimSpace(*patch.Phase)
		if phase == "" {
			phase = domain.DefaultPhase
		}
		out = append(out,
			fieldUpdate{Path: FieldPhase, Value: phase},
			fieldUpdate{Path: FieldState, Value: phase},
		)
	}
	str(FieldPriority, patch.Priority)
	if patch.Potential != nil {
		out = append(out, fieldUpdate{Path: FieldPotential, Value: *patch.Potential})
	}
	date(FieldEstimatedStart, patch.EstimatedStart)
	date(FieldEstimatedDelivery, patch.EstimatedDelivery)
	str(FieldSourceURL, patch.SourceURL)
	str(FieldNotes, patch.Notes)
	date(FieldFollowUpDate, patch.FollowUpDate)
	str(FieldFollowUpComment, patch.FollowUpComment)
	date(FieldTaskDate, patch.TaskDate)
	str(FieldTaskComment, patch.TaskComment)
	if patch.Tasks != nil {
		out = append(out, fieldUpdate{Path: FieldTasks, Value: tasksValue(*patch.Tasks)})
	}
	return out
}

func nullable(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func dateValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return domain.ISODate(t)
}

func tasksValue(tasks []domain.Task) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, map[string]interface{}{
			"titulo":       t.Title,
			"tipo":         t.Type,
			"fecha_limite": dateValue(t.Deadline),
			"completado":   t.Completed,
		})
	}
	return out
}

func asString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

func asFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func asTasks(v interface{}, loc *time.Location) []domain.Task {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]domain.Task, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		done, _ := m["completado"].(bool)
		out = append(out, domain.Task{
			Title:     asString(m["titulo"]),
			Type:      asString(m["tipo"]),
			Deadline:  domain.ParseDate(m["fecha_limite"], loc),
			Completed: done,
		})
	}
	return out
}
