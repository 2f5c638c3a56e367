package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/jhoicas/erp-api/internal/application/backup"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-api/internal/infrastructure/storage"
)

// DumpCmd exporta, importa y lista volcados en el almacenamiento configurado (STORAGE_DRIVER).
type DumpCmd struct {
	Export DumpExportCmd `cmd:"" help:"Volcar una empresa"`
	Import DumpImportCmd `cmd:"" help:"Restaurar un volcado"`
	List   DumpListCmd   `cmd:"" help:"Listar volcados"`
}

type DumpExportCmd struct {
	Company string `help:"UUID de la empresa." required:""`
	JSON    bool   `help:"Salida JSON."`
}

func (c *DumpExportCmd) Run(ctx context.Context, globals *Globals) error {
	return withBackup(ctx, globals, func(uc *backup.UseCase) error {
		res, err := uc.Export(ctx, c.Company)
		if err != nil {
			return err
		}
		return printResult(globals, res, c.JSON)
	})
}

type DumpImportCmd struct {
	Key     string `arg:"" help:"Llave del volcado (dumps/<empresa>/...)."`
	Company string `help:"Restringe la importación a esta empresa."`
	JSON    bool   `help:"Salida JSON."`
}

func (c *DumpImportCmd) Run(ctx context.Context, globals *Globals) error {
	return withBackup(ctx, globals, func(uc *backup.UseCase) error {
		res, err := uc.Import(ctx, c.Company, c.Key)
		if err != nil {
			return err
		}
		return printResult(globals, res, c.JSON)
	})
}

type DumpListCmd struct {
	Company string `help:"Solo los volcados de esta empresa."`
}

func (c *DumpListCmd) Run(ctx context.Context, globals *Globals) error {
	return withBackup(ctx, globals, func(uc *backup.UseCase) error {
		res, err := uc.List(ctx, c.Company)
		if err != nil {
			return err
		}
		if len(res.Keys) == 0 {
			fmt.Fprintln(globals.out(), "No hay volcados.")
			return nil
		}
		for _, k := range res.Keys {
			fmt.Fprintln(globals.out(), k)
		}
		return nil
	})
}

func withBackup(ctx context.Context, globals *Globals, fn func(uc *backup.UseCase) error) error {
	blobs, err := storage.New(ctx, globals.Config.Storage)
	if err != nil {
		return err
	}
	pool, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(backup.NewUseCase(postgres.NewTxRunner(pool), blobs))
}

func printResult(globals *Globals, res *dto.DumpResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(globals.out())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintf(globals.out(), "%s (%s)\n", res.Key, res.FinishedAt.Format("2006-01-02 15:04:05"))
	tables := make([]string, 0, len(res.Rows))
	for t := range res.Rows {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLA\tFILAS\tOMITIDAS")
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%d\t%d\n", t, res.Rows[t], res.Skipped[t])
	}
	return w.Flush()
}
