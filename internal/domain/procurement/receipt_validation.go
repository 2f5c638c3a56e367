// Package procurement contiene las reglas de recepción contra órdenes de compra:
// validación OC-GRN, prorrateo de costos de internación y conciliación.
package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Códigos de error y advertencia de la validación OC-GRN.
const (
	CodePONotReceivable       = "PO_NOT_RECEIVABLE"
	CodeEmptyReceipt          = "EMPTY_RECEIPT"
	CodeDuplicateLine         = "DUPLICATE_LINE"
	CodeLineNotInPO           = "LINE_NOT_IN_PO"
	CodeInvalidQuantity       = "INVALID_QUANTITY"
	CodeQtySplitMismatch      = "QTY_SPLIT_MISMATCH"
	CodeOverReceipt           = "OVER_RECEIPT"
	CodeOverReceiptTolerated  = "OVER_RECEIPT_TOLERATED"
	CodePriceVariance         = "PRICE_VARIANCE"
	CodeInvalidUnitCost       = "INVALID_UNIT_COST"
	CodeBatchRequired         = "BATCH_REQUIRED"
	CodeInvalidDates          = "INVALID_DATES"
	CodeExpiredOnReceipt      = "EXPIRED_ON_RECEIPT"
	CodeInvalidCharge         = "INVALID_CHARGE"
	CodeWarehouseMismatch     = "WAREHOUSE_MISMATCH"
	CodeReceivedBeforeOrdered = "RECEIVED_BEFORE_ORDER"
)

var hundred = decimal.NewFromInt(100)

// Policy tolerancias de la validación (porcentajes).
type Policy struct {
	OverTolerancePct  decimal.Decimal
	PriceTolerancePct decimal.Decimal
	StrictPrice       bool
}

// DefaultPolicy 5% de sobre-recepción y 10% de variación de precio, solo advertencia.
func DefaultPolicy() Policy {
	return Policy{
		OverTolerancePct:  decimal.NewFromInt(5),
		PriceTolerancePct: decimal.NewFromInt(10),
	}
}

// ReceiptLineInput línea recibida tal como llega en la solicitud.
type ReceiptLineInput struct {
	POLineID       string
	ReceivedQty    decimal.Decimal
	AcceptedQty    decimal.Decimal
	RejectedQty    decimal.Decimal
	UnitCost       *decimal.Decimal // nil = costo de la OC
	BatchNumber    string
	ManufacturedAt *time.Time
	ExpiresAt      *time.Time
}

// ChargeInput cargo adicional de la recepción.
type ChargeInput struct {
	Type        string
	Basis       string
	Amount      decimal.Decimal
	Description string
}

// ReceiptInput recepción a validar.
type ReceiptInput struct {
	WarehouseID string
	ReceivedAt  time.Time
	Lines       []ReceiptLineInput
	Charges     []ChargeInput
}

// ValidatedLine línea aceptada por la validación con sus valores resueltos.
type ValidatedLine struct {
	Input     ReceiptLineInput
	POLine    *entity.PurchaseOrderLine
	Product   *entity.Product
	UnitCost  decimal.Decimal
	ExpiresAt *time.Time
}

// ValidationResult errores (bloquean) y advertencias (permiten registrar).
type ValidationResult struct {
	Errors   []domain.Issue
	Warnings []domain.Issue
	Lines    []ValidatedLine
	Charges  []ChargeInput
}

// Valid informa si no hay errores.
func (r *ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// Err devuelve domain.ErrReceiptRejected con los issues, o nil si es válida.
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return domain.NewReceiptRejected(r.Errors...)
}

// WarningCodes códigos de advertencia sin repetir, en orden de aparición.
func (r *ValidationResult) WarningCodes() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, w := range r.Warnings {
		if !seen[w.Code] {
			seen[w.Code] = true
			out = append(out, w.Code)
		}
	}
	return out
}

func (r *ValidationResult) fail(code, field, format string, args ...any) {
	r.Errors = append(r.Errors, domain.Issue{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(code, field, format string, args ...any) {
	r.Warnings = append(r.Warnings, domain.Issue{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateReceipt valida una recepción contra la OC. Las líneas de po deben traer los
// acumulados (ReceivedQty, AcceptedQty) de recepciones anteriores, leídos con la OC bloqueada.
// products se indexa por ID de producto.
func ValidateReceipt(po *entity.PurchaseOrder, products map[string]*entity.Product, in ReceiptInput, policy Policy, now time.Time) *ValidationResult {
	res := &ValidationResult{}
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}

	if !po.CanReceive() {
		res.fail(CodePONotReceivable, "purchase_order_id", "la orden %s está en estado %s", po.Number, po.Status)
	}
	if in.WarehouseID != "" && po.WarehouseID != "" && in.WarehouseID != po.WarehouseID {
		res.fail(CodeWarehouseMismatch, "warehouse_id", "la bodega no corresponde a la de la orden")
	}
	if receivedAt.Before(truncateDay(po.OrderDate)) {
		res.fail(CodeReceivedBeforeOrdered, "received_at", "fecha de recepción anterior a la orden")
	}
	if len(in.Lines) == 0 {
		res.fail(CodeEmptyReceipt, "lines", "la recepción no tiene líneas")
	}

	seen := make(map[string]bool, len(in.Lines))
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if seen[l.POLineID] {
			res.fail(CodeDuplicateLine, field, "la línea %s aparece más de una vez", l.POLineID)
			continue
		}
		seen[l.POLineID] = true

		pol := po.Line(l.POLineID)
		if pol == nil {
			res.fail(CodeLineNotInPO, field, "la línea %s no pertenece a la orden", l.POLineID)
			continue
		}
		product := products[pol.ProductID]
		if product == nil {
			product = &entity.Product{ID: pol.ProductID}
		}

		lineErrs := len(res.Errors)
		validateQuantities(res, field, l, pol, policy)
		unitCost := validateCost(res, field, l, pol, policy)
		expiresAt := validateBatch(res, field, l, product, receivedAt, now)
		if len(res.Errors) > lineErrs {
			continue
		}
		res.Lines = append(res.Lines, ValidatedLine{
			Input:     l,
			POLine:    pol,
			Product:   product,
			UnitCost:  unitCost,
			ExpiresAt: expiresAt,
		})
	}

	validateCharges(res, in)
	return res
}

func validateQuantities(res *ValidationResult, field string, l ReceiptLineInput, pol *entity.PurchaseOrderLine, policy Policy) {
	if !l.ReceivedQty.GreaterThan(decimal.Zero) {
		res.fail(CodeInvalidQuantity, field+".received_qty", "la cantidad recibida debe ser mayor a cero")
		return
	}
	if l.AcceptedQty.IsNegative() || l.RejectedQty.IsNegative() {
		res.fail(CodeInvalidQuantity, field, "aceptado y rechazado no pueden ser negativos")
		return
	}
	if !l.AcceptedQty.Add(l.RejectedQty).Equal(l.ReceivedQty) {
		res.fail(CodeQtySplitMismatch, field, "aceptado (%s) + rechazado (%s) debe ser igual a recibido (%s)",
			l.AcceptedQty, l.RejectedQty, l.ReceivedQty)
		return
	}

	cumulative := pol.AcceptedQty.Add(l.AcceptedQty)
	limit := pol.Quantity.Mul(decimal.NewFromInt(1).Add(policy.OverTolerancePct.Div(hundred)))
	switch {
	case cumulative.GreaterThan(limit):
		res.fail(CodeOverReceipt, field+".accepted_qty", "acumulado aceptado %s supera lo ordenado %s más la tolerancia (%s%%)",
			cumulative, pol.Quantity, policy.OverTolerancePct)
	case cumulative.GreaterThan(pol.Quantity):
		res.warn(CodeOverReceiptTolerated, field+".accepted_qty", "acumulado aceptado %s supera lo ordenado %s dentro de la tolerancia",
			cumulative, pol.Quantity)
	}
}

func validateCost(res *ValidationResult, field string, l ReceiptLineInput, pol *entity.PurchaseOrderLine, policy Policy) decimal.Decimal {
	if l.UnitCost == nil {
		return pol.UnitCost
	}
	cost := *l.UnitCost
	if cost.IsNegative() {
		res.fail(CodeInvalidUnitCost, field+".unit_cost", "el costo unitario no puede ser negativo")
		return cost
	}
	if cost.Equal(pol.UnitCost) {
		return cost
	}
	var exceeded bool
	var pct decimal.Decimal
	if pol.UnitCost.IsZero() {
		exceeded = true
	} else {
		pct = cost.Sub(pol.UnitCost).Abs().Div(pol.UnitCost).Mul(hundred).Round(2)
		exceeded = pct.GreaterThan(policy.PriceTolerancePct)
	}
	if !exceeded {
		return cost
	}
	msg := fmt.Sprintf("costo %s difiere del de la orden %s (%s%%)", cost, pol.UnitCost, pct)
	if policy.StrictPrice {
		res.fail(CodePriceVariance, field+".unit_cost", "%s", msg)
	} else {
		res.warn(CodePriceVariance, field+".unit_cost", "%s", msg)
	}
	return cost
}

// validateBatch el lote no puede estar vencido ni al recibirlo ni hoy; una recepción con fecha
// pasada no deja entrar mercancía ya vencida.
func validateBatch(res *ValidationResult, field string, l ReceiptLineInput, p *entity.Product, receivedAt, now time.Time) *time.Time {
	if p.TrackBatches && l.AcceptedQty.GreaterThan(decimal.Zero) && strings.TrimSpace(l.BatchNumber) == "" {
		res.fail(CodeBatchRequired, field+".batch_number", "el producto %s exige número de lote", p.SKU)
	}
	if l.ManufacturedAt != nil && l.ManufacturedAt.After(receivedAt) {
		res.fail(CodeInvalidDates, field+".manufactured_at", "fecha de fabricación posterior a la recepción")
	}
	expiresAt := l.ExpiresAt
	if expiresAt == nil && p.ShelfLifeDays > 0 {
		base := receivedAt
		if l.ManufacturedAt != nil {
			base = *l.ManufacturedAt
		}
		exp := base.AddDate(0, 0, p.ShelfLifeDays)
		expiresAt = &exp
	}
	if expiresAt == nil {
		return nil
	}
	if l.ManufacturedAt != nil && !expiresAt.After(*l.ManufacturedAt) {
		res.fail(CodeInvalidDates, field+".expires_at", "el vencimiento debe ser posterior a la fabricación")
		return expiresAt
	}
	if !expiresAt.After(receivedAt) || !expiresAt.After(now) {
		res.fail(CodeExpiredOnReceipt, field+".expires_at", "el lote llega vencido (%s)", expiresAt.Format(time.DateOnly))
	}
	return expiresAt
}

func validateCharges(res *ValidationResult, in ReceiptInput) {
	hasAccepted := false
	for _, l := range res.Lines {
		if l.Input.AcceptedQty.GreaterThan(decimal.Zero) {
			hasAccepted = true
			break
		}
	}
	for i, c := range in.Charges {
		field := fmt.Sprintf("charges[%d]", i)
		c.Type = strings.ToUpper(strings.TrimSpace(c.Type))
		c.Basis = strings.ToUpper(strings.TrimSpace(c.Basis))
		if c.Basis == "" {
			c.Basis = entity.BasisValue
		}
		switch {
		case c.Amount.IsNegative():
			res.fail(CodeInvalidCharge, field+".amount", "el monto no puede ser negativo")
			continue
		case !validChargeType(c.Type):
			res.fail(CodeInvalidCharge, field+".type", "tipo de cargo %q desconocido", c.Type)
			continue
		case !validBasis(c.Basis):
			res.fail(CodeInvalidCharge, field+".basis", "base de prorrateo %q desconocida", c.Basis)
			continue
		case c.Amount.GreaterThan(decimal.Zero) && !hasAccepted && len(in.Lines) > 0:
			res.fail(CodeInvalidCharge, field, "no hay cantidades aceptadas sobre las cuales prorratear el cargo")
			continue
		}
		res.Charges = append(res.Charges, c)
	}
}

func validChargeType(t string) bool {
	switch t {
	case entity.ChargeFreight, entity.ChargeDuty, entity.ChargeInsurance, entity.ChargeHandling, entity.ChargeOther:
		return true
	}
	return false
}

func validBasis(b string) bool {
	switch b {
	case entity.BasisValue, entity.BasisQuantity, entity.BasisWeight:
		return true
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
