package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// Cost es promedio ponderado calculado desde movimientos; el stock se maneja por bodega y por lote.
type Product struct {
	ID                 string
	CompanyID          string
	SKU                string // código único por empresa
	Name               string
	Description        string
	Price              decimal.Decimal // precio de venta
	Cost               decimal.Decimal // costo promedio ponderado (inicia en 0)
	TaxRate            decimal.Decimal // porcentaje: 0, 5, 19
	UnitMeasure        string
	ReorderPoint       decimal.Decimal
	TrackBatches       bool // exige número de lote en recepciones
	RequiresInspection bool // los lotes recibidos entran en cuarentena
	ShelfLifeDays      int  // 0 = sin vencimiento
	WeightKg           decimal.Decimal
	Attributes         json.RawMessage
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TaxFraction devuelve la tasa como fracción (19 -> 0.19). Acepta valores ya expresados como fracción.
func (p *Product) TaxFraction() decimal.Decimal {
	if p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return p.TaxRate.Div(decimal.NewFromInt(100))
	}
	return p.TaxRate
}
