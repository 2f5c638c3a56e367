package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	store repository.Store
	tx    repository.TxRunner
	now   func() time.Time
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(store repository.Store, tx repository.TxRunner) *CompanyUseCase {
	return &CompanyUseCase{store: store, tx: tx, now: time.Now}
}

// Create crea una nueva empresa con todos los módulos activos. Devuelve domain.ErrDuplicate si el NIT ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, userID string, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	existing, err := uc.store.Companies().GetByNIT(ctx, strings.TrimSpace(in.NIT))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		NIT:       strings.TrimSpace(in.NIT),
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Companies().Create(ctx, company); err != nil {
			return err
		}
		if err := s.Companies().ActivateModules(ctx, company.ID, entity.AllModules, nil); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: company.ID, UserID: userID, EntityType: "company", EntityID: company.ID,
			Action: entity.AuditCreate, After: entityToCompanyResponse(company, nil), At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company, entity.AllModules), nil
}

// GetByID empresa con sus módulos; nil si no existe.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.store.Companies().GetByID(ctx, id)
	if err != nil || company == nil {
		return nil, err
	}
	mods, err := uc.store.Companies().ListModules(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := entityToCompanyResponse(company, entity.ActiveModuleNames(mods, now))
	for _, m := range mods {
		out.ModuleDetails = append(out.ModuleDetails, dto.CompanyModuleResponse{
			Module: m.ModuleName, Active: m.ActiveAt(now), ActivatedAt: m.ActivatedAt, ExpiresAt: m.ExpiresAt,
		})
	}
	return out, nil
}

// List empresas visibles para el usuario: solo la suya. Mantiene la forma paginada del listado.
func (uc *CompanyUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.CompanyListResponse, error) {
	items := []dto.CompanyResponse{}
	if offset == 0 {
		company, err := uc.store.Companies().GetByID(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if company != nil {
			items = append(items, *entityToCompanyResponse(company, nil))
		}
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ActivateModules activa o renueva módulos; expires_at, si viene, debe ser futuro.
func (uc *CompanyUseCase) ActivateModules(ctx context.Context, companyID, userID string, in dto.ActivateModulesRequest) (*dto.CompanyResponse, error) {
	if err := uc.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}
	for _, m := range in.Modules {
		if !entity.IsModule(m) {
			return nil, fmt.Errorf("%w: módulo %q desconocido", domain.ErrInvalidInput, m)
		}
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(uc.now()) {
		return nil, domain.NewValidationError(domain.Issue{Code: "VALIDATION", Field: "expires_at", Message: "debe ser una fecha futura"})
	}
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Companies().ActivateModules(ctx, companyID, in.Modules, in.ExpiresAt); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "company_modules", EntityID: companyID,
			Action: entity.AuditUpdate, After: in,
		})
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID)
}

// DeactivateModule corta el acceso al módulo sin borrar su historial de contratación.
func (uc *CompanyUseCase) DeactivateModule(ctx context.Context, companyID, userID, module string) (*dto.CompanyResponse, error) {
	if !entity.IsModule(module) {
		return nil, fmt.Errorf("%w: módulo %q desconocido", domain.ErrInvalidInput, module)
	}
	if err := uc.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Companies().DeactivateModule(ctx, companyID, module); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "company_modules", EntityID: companyID,
			Action: entity.AuditUpdate, After: map[string]any{"module": module, "active": false},
		})
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID)
}

func (uc *CompanyUseCase) ensureCompany(ctx context.Context, companyID string) error {
	company, err := uc.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return domain.ErrNotFound
	}
	return nil
}

func entityToCompanyResponse(c *entity.Company, modules []string) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		NIT:       c.NIT,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		Modules:   modules,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
