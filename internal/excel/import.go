// Package excel imports projects from spreadsheets and exports the
// "important projects" report.
package excel

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/internal/clientes"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

// FollowUpDays is how many days after the import the first follow-up falls.
const FollowUpDays = 7

// Column headers recognised in the first row.
const (
	colName         = "proyecto"
	colCity         = "ciudad"
	colProvince     = "provincia"
	colProjectType  = "tipo_proyecto"
	colSegment      = "segmento"
	colState        = "estado"
	colPromoter     = "promotora_fondo"
	colArchitecture = "arquitectura"
	colEngineering  = "ingenieria"
	colStart        = "fecha_inicio_estimada"
	colDelivery     = "fecha_entrega_estimada"
	colNotes        = "notas"
	colSourceURL    = "fuente_url"
)

// Row is one spreadsheet row turned into a project. Line is 1-based, header included.
type Row struct {
	Line    int
	Project domain.Project
}

type RowError struct {
	Line  int    `json:"fila"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created        int        `json:"creados"`
	Skipped        int        `json:"omitidos"`
	ClientsCreated int        `json:"clientes_creados"`
	Errors         []RowError `json:"errores,omitempty"`
}

// ReadProjects parses the first sheet of an xlsx workbook. Rows without a
// project name are skipped and counted. today anchors the initial follow-up date.
func ReadProjects(r io.Reader, today time.Time) ([]Row, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("error leyendo el Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, fmt.Errorf("error leyendo la hoja %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, col string) string {
		i, ok := header[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	loc := today.Location()
	followUp := domain.Day(today).AddDate(0, 0, FollowUpDays)

	var out []Row
	skipped := 0
	for i, row := range rows[1:] {
		name := cell(row, colName)
		if name == "" {
			skipped++
			continue
		}

		segment := cell(row, colSegment)
		priority := domain.DefaultPriority
		if s := strings.ToLower(segment); strings.Contains(s, "ultra") || strings.Contains(s, "lujo") {
			priority = domain.PriorityHigh
		}

		notes := cell(row, colNotes)
		source := cell(row, colSourceURL)
		if source != "" {
			if notes != "" {
				notes += "\n"
			}
			notes += "Fuente: " + source
		}

		due := followUp
		p := domain.Project{
			Name:              name,
			City:              cell(row, colCity),
			Province:          cell(row, colProvince),
			ProjectType:       cell(row, colProjectType),
			Segment:           segment,
			Phase:             cell(row, colState),
			Priority:          priority,
			Promoter:          cell(row, colPromoter),
			Architecture:      cell(row, colArchitecture),
			Engineering:       cell(row, colEngineering),
			EstimatedStart:    cellDate(cell(row, colStart), loc),
			EstimatedDelivery: cellDate(cell(row, colDelivery), loc),
			SourceURL:         source,
			Notes:             notes,
			FollowUpDate:      &due,
		}
		p.Normalize()
		out = append(out, Row{Line: i + 2, Project: p})
	}
	return out, skipped, nil
}

// cellDate reads a date cell that is either text or an Excel serial number.
func cellDate(v string, loc *time.Location) *time.Time {
	if v == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		y, m, d := t.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return &day
	}
	return domain.ParseDate(v, loc)
}

// ProjectImporter stores an imported project.
type ProjectImporter interface {
	Import(ctx context.Context, actor string, p domain.Project) (*domain.Project, error)
}

type Importer struct {
	projects ProjectImporter
	clients  clientes.Repository
	log      *zap.Logger
}

func NewImporter(projects ProjectImporter, clients clientes.Repository, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{projects: projects, clients: clients, log: log}
}

// Import reads the workbook and stores every valid row. A failing row is
// reported and the import carries on.
func (im *Importer) Import(ctx context.Context, r io.Reader, actor string, today time.Time) (*ImportResult, error) {
	rows, skipped, err := ReadProjects(r, today)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Skipped: skipped}
	for _, row := range rows {
		p := row.Project

		if im.clients != nil {
			for _, c := range []struct{ company, kind string }{
				{p.Promoter, clientes.TypePromoter},
				{p.Architecture, clientes.TypeArchitecture},
				{p.Engineering, clientes.TypeEngineering},
			} {
				created, err := im.clients.EnsureBasic(ctx, c.company, c.kind)
				if err != nil {
					im.log.Warn("ensure client failed", zap.String("empresa", c.company), zap.Error(err))
					continue
				}
				if created {
					res.ClientsCreated++
				}
			}
		}

		if _, err := im.projects.Import(ctx, actor, p); err != nil {
			im.log.Warn("import row failed", zap.Int("fila", row.Line), zap.Error(err))
			res.Errors = append(res.Errors, RowError{Line: row.Line, Error: err.Error()})
			continue
		}
		res.Created++
	}

	im.log.Info("excel import finished",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}
