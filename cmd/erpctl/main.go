// erpctl tareas de operación: migraciones, volcados por empresa y datos iniciales.
//
// Uso:
//
//	erpctl migrate up
//	erpctl dump export --company <uuid>
//	erpctl dump import dumps/<uuid>/20250715T120000Z.jsonl.zst
//	erpctl seed --company-name "Demo" --nit 900000001 --email admin@demo.co --password ********
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/jhoicas/erp-api/cmd/erpctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Migrate commands.MigrateCmd `cmd:"" help:"Migraciones de esquema"`
		Dump    commands.DumpCmd    `cmd:"" help:"Volcados lógicos por empresa"`
		Seed    commands.SeedCmd    `cmd:"" help:"Crear empresa y usuario administrador"`
		Debug   bool                `help:"Log en nivel debug."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("erpctl"),
		kong.Description("Herramientas de operación de la ERP API."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	globals, err := commands.NewGlobals(cli.Debug, version)
	cmd.FatalIfErrorf(err)
	err = cmd.Run(globals)
	cmd.FatalIfErrorf(err)
}
