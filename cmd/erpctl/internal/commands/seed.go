package commands

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
)

// SeedCmd crea una empresa con todos los módulos y su primer administrador.
type SeedCmd struct {
	CompanyName string `help:"Razón social." required:""`
	NIT         string `name:"nit" help:"NIT de la empresa." required:""`
	Email       string `help:"Email del administrador." required:""`
	Password    string `help:"Contraseña del administrador (mínimo 8)." required:"" env:"ERP_SEED_PASSWORD"`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	if len(c.Password) < 8 {
		return fmt.Errorf("la contraseña debe tener al menos 8 caracteres")
	}
	pool, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	company, err := usecase.NewCompanyUseCase(store, postgres.NewTxRunner(pool)).
		Create(ctx, "", dto.CreateCompanyRequest{Name: c.CompanyName, NIT: c.NIT})
	if err != nil {
		return fmt.Errorf("crear empresa: %w", err)
	}
	authUC := auth.NewAuthUseCase(store.Users(), store.Companies(), auth.JWTConfig{})
	user, err := authUC.RegisterUser(ctx, dto.RegisterRequest{
		Email:     c.Email,
		Password:  c.Password,
		CompanyID: company.ID,
		Name:      "Administrador",
		Role:      entity.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("crear administrador: %w", err)
	}
	globals.Log.Info().Str("company_id", company.ID).Str("user_id", user.ID).Msg("empresa creada")
	fmt.Fprintf(globals.out(), "company_id=%s\nuser_id=%s\n", company.ID, user.ID)
	return nil
}
