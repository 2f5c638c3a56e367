package repository

import "context"

// DumpRepository volcado lógico por empresa: una fila JSON por registro, tablas en orden de FKs.
type DumpRepository interface {
	// Tables tablas incluidas en el volcado, en orden de inserción.
	Tables() []string
	ExportTable(ctx context.Context, table, companyID string, fn func(row []byte) error) (int, error)
	// ImportRow inserta la fila si no existe; inserted=false cuando ya estaba.
	ImportRow(ctx context.Context, table string, row []byte) (inserted bool, err error)
}

// DumpRunner ejecuta fn con un DumpRepository atado a una transacción.
type DumpRunner interface {
	RunDump(ctx context.Context, fn func(d DumpRepository) error) error
}
