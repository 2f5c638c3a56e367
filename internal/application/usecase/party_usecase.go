package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// ClientUseCase clientes con borrado lógico.
type ClientUseCase struct {
	store repository.Store
	tx    repository.TxRunner
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(store repository.Store, tx repository.TxRunner) *ClientUseCase {
	return &ClientUseCase{store: store, tx: tx}
}

// Create crea un cliente; el NIT es único entre clientes activos de la empresa.
func (uc *ClientUseCase) Create(ctx context.Context, companyID, userID string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	taxID := strings.TrimSpace(in.TaxID)
	existing, err := uc.store.Clients().GetByTaxID(ctx, companyID, taxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	c := &entity.Client{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		TaxID:     taxID,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Clients().Create(ctx, c); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "client", EntityID: c.ID,
			Action: entity.AuditCreate, After: toClientResponse(c), At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// GetByID cliente activo de la empresa; nil si no existe, está borrado o es de otra empresa.
func (uc *ClientUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ClientResponse, error) {
	c, err := uc.store.Clients().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, nil
	}
	return toClientResponse(c), nil
}

// List clientes activos; search filtra por nombre o NIT.
func (uc *ClientUseCase) List(ctx context.Context, companyID, search string, limit, offset int) (*dto.ClientListResponse, error) {
	list, total, err := uc.store.Clients().List(ctx, companyID, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toClientResponse(c))
	}
	return &dto.ClientListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset, Total: total}}, nil
}

// Update reemplaza los datos del cliente.
func (uc *ClientUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	c, err := uc.store.Clients().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	taxID := strings.TrimSpace(in.TaxID)
	if taxID != c.TaxID {
		other, err := uc.store.Clients().GetByTaxID(ctx, companyID, taxID)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, domain.ErrDuplicate
		}
	}
	before := toClientResponse(c)
	c.Name, c.TaxID, c.Email, c.Phone, c.Address = strings.TrimSpace(in.Name), taxID, in.Email, in.Phone, in.Address
	c.UpdatedAt = time.Now()
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Clients().Update(ctx, c); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "client", EntityID: c.ID,
			Action: entity.AuditUpdate, Before: before, After: toClientResponse(c), At: c.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Delete borrado lógico.
func (uc *ClientUseCase) Delete(ctx context.Context, companyID, userID, id string) error {
	c, err := uc.store.Clients().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil || c.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Clients().SoftDelete(ctx, id); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "client", EntityID: id,
			Action: entity.AuditDelete, Before: toClientResponse(c),
		})
	})
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// SupplierUseCase proveedores con borrado lógico.
type SupplierUseCase struct {
	store repository.Store
	tx    repository.TxRunner
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(store repository.Store, tx repository.TxRunner) *SupplierUseCase {
	return &SupplierUseCase{store: store, tx: tx}
}

// Create crea un proveedor; el NIT es único entre proveedores activos de la empresa.
func (uc *SupplierUseCase) Create(ctx context.Context, companyID, userID string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	taxID := strings.TrimSpace(in.TaxID)
	existing, err := uc.store.Suppliers().GetByTaxID(ctx, companyID, taxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	sp := &entity.Supplier{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		Name:             strings.TrimSpace(in.Name),
		TaxID:            taxID,
		Email:            in.Email,
		Phone:            in.Phone,
		Address:          in.Address,
		PaymentTermsDays: in.PaymentTermsDays,
		LeadTimeDays:     in.LeadTimeDays,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Suppliers().Create(ctx, sp); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "supplier", EntityID: sp.ID,
			Action: entity.AuditCreate, After: toSupplierResponse(sp), At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(sp), nil
}

// GetByID proveedor activo de la empresa.
func (uc *SupplierUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SupplierResponse, error) {
	sp, err := uc.store.Suppliers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil || sp.CompanyID != companyID {
		return nil, nil
	}
	return toSupplierResponse(sp), nil
}

// List proveedores activos.
func (uc *SupplierUseCase) List(ctx context.Context, companyID, search string, limit, offset int) (*dto.SupplierListResponse, error) {
	list, total, err := uc.store.Suppliers().List(ctx, companyID, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, sp := range list {
		items = append(items, *toSupplierResponse(sp))
	}
	return &dto.SupplierListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset, Total: total}}, nil
}

// Update reemplaza los datos del proveedor.
func (uc *SupplierUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	sp, err := uc.store.Suppliers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil || sp.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	taxID := strings.TrimSpace(in.TaxID)
	if taxID != sp.TaxID {
		other, err := uc.store.Suppliers().GetByTaxID(ctx, companyID, taxID)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, domain.ErrDuplicate
		}
	}
	before := toSupplierResponse(sp)
	sp.Name, sp.TaxID, sp.Email, sp.Phone, sp.Address = strings.TrimSpace(in.Name), taxID, in.Email, in.Phone, in.Address
	sp.PaymentTermsDays, sp.LeadTimeDays = in.PaymentTermsDays, in.LeadTimeDays
	sp.UpdatedAt = time.Now()
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Suppliers().Update(ctx, sp); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "supplier", EntityID: sp.ID,
			Action: entity.AuditUpdate, Before: before, After: toSupplierResponse(sp), At: sp.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(sp), nil
}

// Delete borrado lógico.
func (uc *SupplierUseCase) Delete(ctx context.Context, companyID, userID, id string) error {
	sp, err := uc.store.Suppliers().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sp == nil || sp.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Suppliers().SoftDelete(ctx, id); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "supplier", EntityID: id,
			Action: entity.AuditDelete, Before: toSupplierResponse(sp),
		})
	})
}

func toSupplierResponse(sp *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:               sp.ID,
		CompanyID:        sp.CompanyID,
		Name:             sp.Name,
		TaxID:            sp.TaxID,
		Email:            sp.Email,
		Phone:            sp.Phone,
		Address:          sp.Address,
		PaymentTermsDays: sp.PaymentTermsDays,
		LeadTimeDays:     sp.LeadTimeDays,
		CreatedAt:        sp.CreatedAt,
		UpdatedAt:        sp.UpdatedAt,
	}
}
