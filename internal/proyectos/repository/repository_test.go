package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

func TestFromDocument(t *testing.T) {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("current field names", func(t *testing.T) {
		p := fromDocument("abc", map[string]interface{}{
			FieldName:            " Torre Sur ",
			FieldCity:            "Madrid",
			FieldSegment:         "Lujo",
			FieldHomes:           int64(120),
			FieldPhase:           "Construcción",
			FieldPotential:       int64(85000),
			FieldFollowUpDate:    "2026-10-20",
			FieldFollowUpComment: "llamar",
			FieldTaskDate:        nil,
			FieldCreatedAt:       created,
			FieldTasks: []interface{}{
				map[string]interface{}{"titulo": "demo", "tipo": "Reunión", "fecha_limite": "21/10/2026", "completado": false},
				map[string]interface{}{"titulo": "hecha", "completado": true},
				"garbage",
			},
		}, time.UTC)

		assert.Equal(t, "abc", p.ID)
		assert.Equal(t, "Torre Sur", p.Name)
		assert.Equal(t, 120, p.Homes)
		assert.Equal(t, 85000.0, p.Potential)
		assert.Equal(t, domain.DefaultPriority, p.Priority)
		require.NotNil(t, p.FollowUpDate)
		assert.Equal(t, "2026-10-20", domain.ISODate(p.FollowUpDate))
		assert.Nil(t, p.TaskDate)
		require.NotNil(t, p.CreatedAt)
		assert.True(t, created.Equal(*p.CreatedAt))
		require.Len(t, p.Tasks, 2)
		assert.Equal(t, "2026-10-21", domain.ISODate(p.Tasks[0].Deadline))
		assert.True(t, p.Tasks[1].Completed)
	})

	t.Run("legacy field names", func(t *testing.T) {
		p := fromDocument("old", map[string]interface{}{
			"nombre_obra":       "Residencial Mar",
			"ciudad":            "Málaga",
			"cliente_principal": "Acme",
			FieldState:          "Seguimiento",
			FieldPotentialEUR:   "50000",
			"fecha_seguimiento": "01/11/26",
			"fecha_creacion":    "2025-06-01",
		}, time.UTC)

		assert.Equal(t, "Residencial Mar", p.Name)
		assert.Equal(t, "Málaga", p.City)
		assert.Equal(t, "Acme", p.Promoter)
		assert.Equal(t, "Seguimiento", p.Phase)
		assert.Equal(t, 50000.0, p.Potential)
		assert.Equal(t, "2026-11-01", domain.ISODate(p.FollowUpDate))
		assert.Equal(t, "2025-06-01", domain.ISODate(p.CreatedAt))
	})

	t.Run("current name wins over legacy", func(t *testing.T) {
		p := fromDocument("x", map[string]interface{}{
			FieldName:         "Nuevo",
			"nombre_obra":     "Viejo",
			FieldPotential:    float64(0),
			FieldPotentialEUR: float64(900),
		}, time.UTC)
		assert.Equal(t, "Nuevo", p.Name)
		assert.Equal(t, 0.0, p.Potential)
	})
}

func TestToDocument(t *testing.T) {
	due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	doc := toDocument(domain.Project{
		Name:         "Torre Sur",
		Phase:        "Básico",
		FollowUpDate: &due,
		Tasks:        []domain.Task{{Title: "demo", Deadline: &due}},
	})

	assert.Equal(t, "Torre Sur", doc[FieldName])
	assert.Equal(t, "Básico", doc[FieldPhase])
	assert.Equal(t, "Básico", doc[FieldState])
	assert.Nil(t, doc[FieldCity])
	assert.Nil(t, doc[FieldTaskDate])
	assert.Equal(t, "2026-10-20", doc[FieldFollowUpDate])

	tasks, ok := doc[FieldTasks].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2026-10-20", tasks[0]["fecha_limite"])
	assert.NotContains(t, doc, FieldCreatedAt)
}

func TestPatchUpdates(t *testing.T) {
	name := " Torre Norte "
	phase := ""
	city := ""
	var cleared *time.Time

	updates := patchUpdates(domain.Patch{Name: &name, Phase: &phase, City: &city, FollowUpDate: &cleared})

	got := map[string]interface{}{}
	for _, u := range updates {
		got[u.Path] = u.Value
	}
	assert.Equal(t, map[string]interface{}{
		FieldName:         "Torre Norte",
		FieldPhase:        domain.DefaultPhase,
		FieldState:        domain.DefaultPhase,
		FieldCity:         nil,
		FieldFollowUpDate: nil,
	}, got)

	assert.Empty(t, patchUpdates(domain.Patch{}))
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Create(ctx, domain.Project{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	a, err := repo.Create(ctx, domain.Project{Name: "Torre Sur", Phase: "Detectado"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.NotNil(t, a.CreatedAt)

	b, err := repo.Create(ctx, domain.Project{Name: "Parque", Phase: "Básico"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Parque", list[0].Name)

	city := "Sevilla"
	updated, err := repo.Update(ctx, a.ID, domain.Patch{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Sevilla", updated.City)
	assert.Equal(t, "Torre Sur", updated.Name)

	_, err = repo.Update(ctx, "missing", domain.Patch{City: &city})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	blank := ""
	_, err = repo.Update(ctx, a.ID, domain.Patch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	assert.ErrorIs(t, repo.DeleteMany(ctx, nil), domain.ErrNoIDs)
	require.NoError(t, repo.DeleteMany(ctx, []string{a.ID, b.ID, "unknown"}))

	_, err = repo.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
