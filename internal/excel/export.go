package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/crm-obras-2n/crm-obras-backend/internal/panel"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

const ImportantSheet = "Obras_importantes"

var exportHeader = []interface{}{
	"nombre_obra",
	"cliente_principal",
	"ciudad",
	"provincia",
	"segmento",
	"estado",
	"prioridad",
	"potencial_eur",
	"fecha_seguimiento",
	"fecha_inicio",
	"fecha_entrega",
}

// ExportImportant writes the important projects into a single-sheet workbook.
// With no qualifying project the workbook still has its header row.
func ExportImportant(projects []domain.Project) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ImportantSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(ImportantSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, p := range panel.Important(projects) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			p.Name,
			p.Promoter,
			p.City,
			p.Province,
			p.Segment,
			p.Phase,
			p.Priority,
			p.Potential,
			domain.ISODate(p.FollowUpDate),
			domain.ISODate(p.EstimatedStart),
			domain.ISODate(p.EstimatedDelivery),
		}
		if err := f.SetSheetRow(ImportantSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
