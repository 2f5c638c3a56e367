// Package export serializa tablas de reportes a CSV y XLSX.
package export

import (
	"fmt"
	"strings"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
)

// Writers formatos soportados indexados por nombre.
func Writers() map[string]ports.TableWriter {
	return map[string]ports.TableWriter{
		FormatCSV:  NewCSVWriter(),
		FormatXLSX: NewXLSXWriter(),
	}
}

// ForFormat devuelve el writer del formato; vacío = csv.
func ForFormat(format string) (ports.TableWriter, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = FormatCSV
	}
	w, ok := Writers()[f]
	if !ok {
		return nil, fmt.Errorf("%w: formato de exportación %q no soportado", domain.ErrInvalidInput, format)
	}
	return w, nil
}
