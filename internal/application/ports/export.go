package ports

import "io"

// Table datos tabulares listos para exportar; todas las celdas ya formateadas como texto.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// TableWriter serializa una Table en un formato de archivo (csv, xlsx).
type TableWriter interface {
	Format() string
	ContentType() string
	Write(w io.Writer, t Table) error
}
