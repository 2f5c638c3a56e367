package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReplenishmentItem producto cuya posición (stock + pedido en OCs abiertas) quedó bajo el punto de reorden.
type ReplenishmentItem struct {
	ProductID    string
	SKU          string
	ProductName  string
	CurrentStock decimal.Decimal
	OnOrder      decimal.Decimal // pendiente de OCs CONFIRMED / PARTIALLY_RECEIVED
	ReorderPoint decimal.Decimal
	UnitCost     decimal.Decimal
	Price        decimal.Decimal
}

// Position stock disponible más lo ya pedido.
func (i ReplenishmentItem) Position() decimal.Decimal { return i.CurrentStock.Add(i.OnOrder) }

// InventoryLevelRepository lecturas de stock consolidado.
type InventoryLevelRepository interface {
	ListByWarehouse(ctx context.Context, companyID, warehouseID string, limit, offset int) ([]*entity.InventoryLevel, error)
	// BelowReorderPoint warehouseID vacío = todas las bodegas; orden por déficit descendente.
	BelowReorderPoint(ctx context.Context, companyID, warehouseID string) ([]ReplenishmentItem, error)
}
