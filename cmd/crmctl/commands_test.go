package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/crm-obras-2n/crm-obras-backend/internal/acciones"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

func TestPrintBuckets(t *testing.T) {
	d := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printBuckets(&buf, acciones.Buckets{
		Today: []acciones.Action{{Type: acciones.TypeFollowUp, Date: d, Project: "Torre Sur", Client: "Acme", Description: "llamar"}},
	})

	out := buf.String()
	assert.Contains(t, out, "Atrasadas (0)")
	assert.Contains(t, out, "Hoy (1)")
	assert.Contains(t, out, "18/10/2026")
	assert.Contains(t, out, "Torre Sur")
	assert.Contains(t, out, "llamar")
}

func TestPrintImportant(t *testing.T) {
	var buf bytes.Buffer
	printImportant(&buf, []domain.Project{
		{Name: "Torre Sur", Promoter: "Acme", Phase: "Negociación", Priority: "Alta", Potential: 1250000},
		{Name: "Hotel", Phase: "Detectado", Priority: "Media", Potential: 60000},
	})

	out := buf.String()
	assert.Contains(t, out, "Torre Sur")
	assert.Contains(t, out, "1.250.000 €")
	assert.Contains(t, out, "60.000 €")
	assert.Contains(t, out, "Total (2)")
	assert.Contains(t, out, "1.310.000 €")
}
