package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// CompanyRepository empresas y su contratación de módulos.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByNIT(ctx context.Context, nit string) (*entity.Company, error)
	// ActivateModules activa o reactiva; expiresAt nil = sin vencimiento.
	ActivateModules(ctx context.Context, companyID string, modules []string, expiresAt *time.Time) error
	// DeactivateModule domain.ErrNotFound si la empresa nunca tuvo el módulo.
	DeactivateModule(ctx context.Context, companyID, module string) error
	// ListModules todas las filas de company_modules, vigentes o no.
	ListModules(ctx context.Context, companyID string) ([]entity.CompanyModule, error)
}
