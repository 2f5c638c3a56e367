package inventory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const salesWindowDays = 90

var (
	idealFactor = decimal.RequireFromString("1.5")
	hundred     = decimal.NewFromInt(100)
)

// ReplenishmentUseCase lista de reposición: SKUs bajo su punto de reorden priorizados por margen y rotación.
type ReplenishmentUseCase struct {
	store repository.Store
	now   func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso.
func NewReplenishmentUseCase(store repository.Store) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{store: store, now: time.Now}
}

// GenerateReplenishmentList warehouseID vacío considera todas las bodegas.
// Lo pendiente de OCs confirmadas se descuenta de la cantidad sugerida.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID, warehouseID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.store.Levels().BelowReorderPoint(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	end := uc.now()
	margins, err := uc.store.Analytics().GetSKUMargins(ctx, companyID, end.AddDate(0, 0, -salesWindowDays), end, 0)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string]repository.SKUMarginResult, len(margins))
	for _, m := range margins {
		byProduct[m.ProductID] = m
	}

	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(items))
	for _, it := range items {
		m, sold := byProduct[it.ProductID]
		out = append(out, suggest(it, m, sold))
	}
	rank(out)
	return out, nil
}

// suggest cantidad a pedir para llegar a 1.5× el punto de reorden. Sin ventas en la ventana
// el margen se estima con precio y costo actuales.
func suggest(it repository.ReplenishmentItem, m repository.SKUMarginResult, sold bool) dto.ReplenishmentSuggestionDTO {
	ideal := it.ReorderPoint.Mul(idealFactor)
	qty := ideal.Sub(it.Position())
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	var marginPct, units decimal.Decimal
	switch {
	case sold:
		units = m.UnitsSold
		if m.GrossRevenue.IsPositive() {
			marginPct = m.GrossProfit.Div(m.GrossRevenue).Mul(hundred).Round(2)
		}
	case it.Price.IsPositive():
		marginPct = it.Price.Sub(it.UnitCost).Div(it.Price).Mul(hundred).Round(2)
	}
	return dto.ReplenishmentSuggestionDTO{
		ProductID:           it.ProductID,
		SKU:                 it.SKU,
		ProductName:         it.ProductName,
		CurrentStock:        it.CurrentStock,
		OnOrderQty:          it.OnOrder,
		ReorderPoint:        it.ReorderPoint,
		IdealStock:          ideal,
		SuggestedOrderQty:   qty,
		UnitCost:            it.UnitCost,
		EstimatedOrderCost:  qty.Mul(it.UnitCost).Round(2),
		GrossMarginPct:      marginPct,
		UnitsSoldLast90Days: units,
	}
}

// rank margen desc, unidades vendidas desc, déficit desc; Priority 1 = más urgente.
func rank(list []dto.ReplenishmentSuggestionDTO) {
	slices.SortStableFunc(list, func(a, b dto.ReplenishmentSuggestionDTO) int {
		if c := b.GrossMarginPct.Cmp(a.GrossMarginPct); c != 0 {
			return c
		}
		if c := b.UnitsSoldLast90Days.Cmp(a.UnitsSoldLast90Days); c != 0 {
			return c
		}
		return b.SuggestedOrderQty.Cmp(a.SuggestedOrderQty)
	})
	for i := range list {
		list[i].Priority = i + 1
	}
}
