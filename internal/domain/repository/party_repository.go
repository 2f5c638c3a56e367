package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// ClientRepository clientes con borrado lógico: GetByID y List nunca devuelven registros borrados.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByTaxID(ctx context.Context, companyID, taxID string) (*entity.Client, error)
	List(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Client, int, error)
	Update(ctx context.Context, client *entity.Client) error
	SoftDelete(ctx context.Context, id string) error
}

// SupplierRepository proveedores con borrado lógico.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetByTaxID(ctx context.Context, companyID, taxID string) (*entity.Supplier, error)
	List(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Supplier, int, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	SoftDelete(ctx context.Context, id string) error
}
