package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-api/pkg/config"
	"github.com/jhoicas/erp-api/pkg/logger"
)

// Globals configuración y logger compartidos por los subcomandos.
type Globals struct {
	Debug   bool
	Version string
	Config  *config.Config
	Log     *logger.Logger
	Out     io.Writer
}

// NewGlobals carga la configuración desde el entorno.
func NewGlobals(debug bool, version string) (*Globals, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	level := cfg.App.LogLevel
	if debug {
		level = "debug"
	}
	return &Globals{
		Debug:   debug,
		Version: version,
		Config:  cfg,
		Log:     logger.New(logger.Config{Env: cfg.App.Env, Level: level}).Component("erpctl"),
	}, nil
}

func (g *Globals) connect(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := postgres.Connect(ctx, g.Config.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return pool, nil
}

func (g *Globals) out() io.Writer {
	if g.Out != nil {
		return g.Out
	}
	return os.Stdout
}
