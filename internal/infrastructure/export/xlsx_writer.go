package export

import (
	"fmt"
	"io"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// FormatXLSX nombre del formato Excel.
const FormatXLSX = "xlsx"

// XLSXWriter escribe la tabla en una hoja con encabezado en negrilla y fijo.
// Las celdas numéricas se guardan como número para que la hoja permita sumar.
type XLSXWriter struct{}

func NewXLSXWriter() *XLSXWriter { return &XLSXWriter{} }

func (w *XLSXWriter) Format() string { return FormatXLSX }
func (w *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *XLSXWriter) Write(out io.Writer, t ports.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx: nombre de hoja: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: encabezados: %w", err)
	}
	if len(t.Columns) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00467F"}},
		})
		if err != nil {
			return fmt.Errorf("xlsx: estilo: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("xlsx: estilo encabezado: %w", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("xlsx: fijar encabezado: %w", err)
		}
	}

	for i, r := range t.Rows {
		if len(r) > len(t.Columns) {
			return fmt.Errorf("xlsx: fila %d tiene %d celdas para %d columnas", i+1, len(r), len(t.Columns))
		}
		values := make([]any, len(r))
		for j, cell := range r {
			values[j] = cellValue(cell)
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("xlsx: fila %d: %w", i+1, err)
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("xlsx: escribir: %w", err)
	}
	return nil
}

// cellValue convierte a número las celdas decimales (sin ceros a la izquierda, p. ej. SKU "007").
func cellValue(s string) any {
	if s == "" || (len(s) > 1 && s[0] == '0' && s[1] != '.') {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	f, _ := d.Float64()
	return f
}

// sheetName Excel limita el nombre a 31 caracteres y prohíbe algunos símbolos.
func sheetName(name string) string {
	if name == "" {
		return "Datos"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			r = '_'
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	return string(out)
}
