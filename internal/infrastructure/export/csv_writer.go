package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jhoicas/erp-api/internal/application/ports"
)

// FormatCSV nombre del formato CSV.
const FormatCSV = "csv"

// CSVWriter escribe la tabla como CSV con fila de encabezados.
type CSVWriter struct {
	// BOM antepone la marca UTF-8 para que Excel respete tildes.
	BOM bool
}

// NewCSVWriter CSV con BOM UTF-8.
func NewCSVWriter() *CSVWriter { return &CSVWriter{BOM: true} }

func (w *CSVWriter) Format() string      { return FormatCSV }
func (w *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// Write escribe encabezados y filas; una fila con más celdas que columnas es un error.
func (w *CSVWriter) Write(out io.Writer, t ports.Table) error {
	if w.BOM {
		if _, err := out.Write([]byte("\xEF\xBB\xBF")); err != nil {
			return fmt.Errorf("csv: escribir BOM: %w", err)
		}
	}
	cw := csv.NewWriter(out)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("csv: encabezados: %w", err)
	}
	for i, r := range t.Rows {
		if len(r) > len(t.Columns) {
			return fmt.Errorf("csv: fila %d tiene %d celdas para %d columnas", i+1, len(r), len(t.Columns))
		}
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("csv: fila %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
