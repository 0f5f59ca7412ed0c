// Package report exports classification and landed cost results to Excel
// workbooks for brokers who live in spreadsheets.
package report

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/comexar/despacho/internal/model"
	"github.com/comexar/despacho/internal/tax"
)

const classificationsSheet = "Clasificaciones"
const costsSheet = "Costos"

// ExcelWriter writes despacho reports as .xlsx workbooks.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates an Excel report writer.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

// WriteClassifications writes a classification report to path.
func (w *ExcelWriter) WriteClassifications(path string, classifications []model.Classification) error {
	if len(classifications) == 0 {
		return fmt.Errorf("nothing to report")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", classificationsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []string{
		"Fecha", "Producto", "Código NCM", "Descripción", "Fuente", "Confianza",
		"AEC %", "Tasa Estadística %", "Intervenciones", "Advertencia", "Revisión manual",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(classificationsSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(classificationsSheet, "A1", lastHeader, headerStyle)
	}

	for i, c := range classifications {
		rowNum := i + 2
		review := ""
		if c.RequiresManualReview {
			review = "SI"
		}
		values := []any{
			c.ClassifiedAt.Format(time.DateOnly),
			c.Input,
			c.Code,
			c.Description,
			string(c.Source),
			string(c.Confidence),
			c.Duty.DutyRate,
			c.Duty.StatisticalTax,
			strings.Join(c.Interventions, ", "),
			c.Warning,
			review,
		}
		for col, v := range values {
			cell, cellErr := excelize.CoordinatesToCellName(col+1, rowNum)
			if cellErr != nil {
				return fmt.Errorf("failed to build cell: %w", cellErr)
			}
			if err := f.SetCellValue(classificationsSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowNum, err)
			}
		}
	}

	_ = f.SetColWidth(classificationsSheet, "B", "B", 42)
	_ = f.SetColWidth(classificationsSheet, "D", "D", 48)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("classification report written", "path", path, "rows", len(classifications))
	return nil
}

// WriteLandedCost appends a landed cost breakdown sheet to a new workbook.
func (w *ExcelWriter) WriteLandedCost(path string, c model.Classification, b tax.Breakdown) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", costsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	lines := [][]any{
		{"Producto", c.Input},
		{"Código NCM", c.Code},
		{"", ""},
		{"Valor CIF (USD)", b.CIF},
		{"Derechos de importación", b.Duty},
		{"Derechos específicos", b.SpecificDuty},
		{"Tasa estadística", b.Statistical},
		{"Base imponible", b.TaxBase},
		{"IVA", b.VAT},
		{"Percepción IVA", b.VATPerception},
		{"Percepción Ganancias", b.IncomePerception},
		{"IIBB", b.GrossReceipts},
		{"", ""},
		{"Total impuestos", b.TotalTaxes},
		{"Costo final en destino", b.LandedCost},
		{"Incidencia impositiva (%)", b.Incidence()},
	}
	if b.Estimated {
		lines = append(lines, []any{"", ""}, []any{"ADVERTENCIA", "arancel estimado, posición pendiente de verificación"})
	}

	for i, line := range lines {
		for col, v := range line {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(costsSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write breakdown: %w", err)
			}
		}
	}

	_ = f.SetColWidth(costsSheet, "A", "A", 30)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("landed cost report written", "path", path)
	return nil
}
