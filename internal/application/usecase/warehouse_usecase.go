package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// WarehouseUseCase casos de uso para bodegas.
type WarehouseUseCase struct {
	store repository.Store
	tx    repository.TxRunner
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(store repository.Store, tx repository.TxRunner) *WarehouseUseCase {
	return &WarehouseUseCase{store: store, tx: tx}
}

const summaryPageSize = 500

// Create código duplicado en la empresa llega como ErrDuplicate desde el repositorio.
func (uc *WarehouseUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Code:      in.Code,
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	warehouse.Normalize()
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Warehouses().Create(ctx, warehouse); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "warehouse", EntityID: warehouse.ID,
			Action: entity.AuditCreate, After: toWarehouseResponse(warehouse), At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID nil si no existe o es de otra empresa.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.owned(ctx, companyID, id)
	if err != nil || warehouse == nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// Summary totales de existencias de la bodega; nil si no pertenece a la empresa.
func (uc *WarehouseUseCase) Summary(ctx context.Context, companyID, id string) (*dto.WarehouseSummaryResponse, error) {
	warehouse, err := uc.owned(ctx, companyID, id)
	if err != nil || warehouse == nil {
		return nil, err
	}
	var totals entity.WarehouseTotals
	for offset := 0; ; offset += summaryPageSize {
		levels, err := uc.store.Levels().ListByWarehouse(ctx, companyID, id, summaryPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, l := range levels {
			totals.Add(*l)
		}
		if len(levels) < summaryPageSize {
			break
		}
	}
	return &dto.WarehouseSummaryResponse{
		Warehouse:     *toWarehouseResponse(warehouse),
		SKUCount:      totals.SKUs,
		OnHandQty:     totals.OnHand,
		QuarantineQty: totals.Quarantine,
		AvailableQty:  totals.Available(),
		Valuation:     totals.Valuation.Round(2),
	}, nil
}

func (uc *WarehouseUseCase) owned(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	warehouse, err := uc.store.Warehouses().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil || warehouse.CompanyID != companyID {
		return nil, nil
	}
	return warehouse, nil
}

func (uc *WarehouseUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.WarehouseListResponse, error) {
	list, err := uc.store.Warehouses().ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID: w.ID, CompanyID: w.CompanyID, Code: w.Code, Name: w.Name, Address: w.Address,
		CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt,
	}
}
