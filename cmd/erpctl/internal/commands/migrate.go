package commands

import (
	"errors"
	"fmt"

	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
)

// MigrateCmd aplica o revierte las migraciones embebidas.
type MigrateCmd struct {
	Up      MigrateUpCmd      `cmd:"" help:"Aplicar migraciones pendientes"`
	Down    MigrateDownCmd    `cmd:"" help:"Revertir migraciones"`
	Version MigrateVersionCmd `cmd:"" help:"Mostrar la versión actual"`
}

type MigrateUpCmd struct{}

func (c *MigrateUpCmd) Run(globals *Globals) error {
	return withMigrator(globals, func(m *postgres.Migrator) error { return m.Up() })
}

type MigrateDownCmd struct {
	Steps int  `help:"Migraciones a revertir." default:"1"`
	All   bool `help:"Revertir todas (borra el esquema)."`
}

func (c *MigrateDownCmd) Run(globals *Globals) error {
	if c.All {
		return withMigrator(globals, func(m *postgres.Migrator) error { return m.Down(0) })
	}
	if c.Steps < 1 {
		return errors.New("--steps debe ser al menos 1")
	}
	return withMigrator(globals, func(m *postgres.Migrator) error { return m.Down(c.Steps) })
}

type MigrateVersionCmd struct{}

func (c *MigrateVersionCmd) Run(globals *Globals) error {
	return withMigrator(globals, func(m *postgres.Migrator) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(globals.out(), "version=%d dirty=%t\n", v, dirty)
		return nil
	})
}

func withMigrator(globals *Globals, fn func(m *postgres.Migrator) error) (err error) {
	m, err := postgres.NewMigrator(globals.Config.DB.ConnectionString(), globals.Log.Zerolog())
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, m.Close()) }()
	return fn(m)
}
