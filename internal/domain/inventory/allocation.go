package inventory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Strategy estrategia de salida de lotes.
type Strategy string

const (
	StrategyFIFO      Strategy = "FIFO"      // primero en entrar (received_at)
	StrategyFEFO      Strategy = "FEFO"      // primero en vencer
	StrategySpecified Strategy = "SPECIFIED" // lotes indicados por el usuario
	StrategySmart     Strategy = "SMART"     // puntaje vencimiento/antigüedad/ajuste
)

// ParseStrategy normaliza el nombre; vacío devuelve def.
func ParseStrategy(s string, def Strategy) (Strategy, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	switch st := Strategy(strings.ToUpper(strings.TrimSpace(s))); st {
	case StrategyFIFO, StrategyFEFO, StrategySpecified, StrategySmart:
		return st, nil
	}
	return "", fmt.Errorf("%w: estrategia %q desconocida", domain.ErrInvalidInput, s)
}

// Weights pesos del puntaje SMART.
type Weights struct {
	Expiry float64
	Age    float64
	Fit    float64
}

// DefaultWeights 0.5 vencimiento, 0.3 antigüedad, 0.2 ajuste de cantidad.
func DefaultWeights() Weights {
	return Weights{Expiry: 0.5, Age: 0.3, Fit: 0.2}
}

// SpecifiedBatch lote y cantidad elegidos manualmente (estrategia SPECIFIED).
type SpecifiedBatch struct {
	BatchID  string
	Quantity decimal.Decimal
}

// AllocationRequest parámetros de una asignación.
type AllocationRequest struct {
	Quantity              decimal.Decimal
	Strategy              Strategy
	Specified             []SpecifiedBatch
	AllowPartial          bool
	MinRemainingShelfDays int
	HorizonDays           int // horizonte de urgencia de vencimiento (SMART); 0 = 90
	Weights               Weights
	Now                   time.Time
}

// Deduction cantidad tomada de un lote.
type Deduction struct {
	BatchID     string          `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Score       *float64        `json:"score,omitempty"`
}

// AllocationResult resultado de la asignación (no modifica los lotes).
type AllocationResult struct {
	Strategy            Strategy        `json:"strategy"`
	Requested           decimal.Decimal `json:"requested"`
	Deductions          []Deduction     `json:"deductions"`
	TotalAllocated      decimal.Decimal `json:"total_allocated"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
	Shortage            decimal.Decimal `json:"shortage"`
	FullyFulfilled      bool            `json:"fully_fulfilled"`
}

// Allocate reparte la cantidad solicitada entre los lotes candidatos según la estrategia.
// Solo considera lotes RELEASED, con cantidad y sin vencer; con MinRemainingShelfDays > 0
// descarta además los que vencen antes de ese plazo.
// Si no alcanza y AllowPartial es falso devuelve domain.ErrInsufficientStock.
func Allocate(batches []*entity.Batch, req AllocationRequest) (*AllocationResult, error) {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	if req.Strategy == StrategySpecified {
		return allocateSpecified(batches, req)
	}
	if !req.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}

	candidates := filterAllocatable(batches, req)
	var picks []Deduction
	switch req.Strategy {
	case StrategyFIFO:
		sortFIFO(candidates)
		picks = takeInOrder(candidates, req.Quantity)
	case StrategyFEFO, "":
		req.Strategy = StrategyFEFO
		sortFEFO(candidates)
		picks = takeInOrder(candidates, req.Quantity)
	case StrategySmart:
		picks = takeSmart(candidates, req)
	default:
		return nil, fmt.Errorf("%w: estrategia %q desconocida", domain.ErrInvalidInput, req.Strategy)
	}
	return finish(req, picks)
}

func filterAllocatable(batches []*entity.Batch, req AllocationRequest) []*entity.Batch {
	out := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		if b == nil || !b.IsAllocatable(req.Now) {
			continue
		}
		if req.MinRemainingShelfDays > 0 {
			if days, ok := b.DaysToExpiry(req.Now); ok && days < float64(req.MinRemainingShelfDays) {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

func sortFIFO(bs []*entity.Batch) {
	sort.SliceStable(bs, func(i, j int) bool {
		if !bs[i].ReceivedAt.Equal(bs[j].ReceivedAt) {
			return bs[i].ReceivedAt.Before(bs[j].ReceivedAt)
		}
		return bs[i].BatchNumber < bs[j].BatchNumber
	})
}

func sortFEFO(bs []*entity.Batch) {
	sort.SliceStable(bs, func(i, j int) bool {
		return expiryLess(bs[i], bs[j])
	})
}

// expiryLess vencimiento más próximo primero (sin vencimiento al final), luego recepción y número.
func expiryLess(a, b *entity.Batch) bool {
	switch {
	case a.ExpiresAt != nil && b.ExpiresAt == nil:
		return true
	case a.ExpiresAt == nil && b.ExpiresAt != nil:
		return false
	case a.ExpiresAt != nil && b.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
		return a.ExpiresAt.Before(*b.ExpiresAt)
	}
	if !a.ReceivedAt.Equal(b.ReceivedAt) {
		return a.ReceivedAt.Before(b.ReceivedAt)
	}
	return a.BatchNumber < b.BatchNumber
}

func takeInOrder(bs []*entity.Batch, qty decimal.Decimal) []Deduction {
	remaining := qty
	var out []Deduction
	for _, b := range bs {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(b.QtyAvailable, remaining)
		out = append(out, newDeduction(b, take))
		remaining = remaining.Sub(take)
	}
	return out
}

// takeSmart elige en cada paso el lote de mayor puntaje respecto a la cantidad pendiente.
func takeSmart(bs []*entity.Batch, req AllocationRequest) []Deduction {
	w := req.Weights
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	horizon := float64(req.HorizonDays)
	if horizon <= 0 {
		horizon = 90
	}
	maxAge := 0.0
	for _, b := range bs {
		maxAge = math.Max(maxAge, ageDays(b, req.Now))
	}

	pool := append([]*entity.Batch(nil), bs...)
	remaining := req.Quantity
	var out []Deduction
	for remaining.GreaterThan(decimal.Zero) && len(pool) > 0 {
		best, bestScore := -1, 0.0
		for i, b := range pool {
			s := smartScore(b, remaining, req.Now, horizon, maxAge, w)
			if best == -1 || s > bestScore+1e-9 || (math.Abs(s-bestScore) <= 1e-9 && expiryLess(b, pool[best])) {
				best, bestScore = i, s
			}
		}
		b := pool[best]
		take := decimal.Min(b.QtyAvailable, remaining)
		ded := newDeduction(b, take)
		score := math.Round(bestScore*10000) / 10000
		ded.Score = &score
		out = append(out, ded)
		remaining = remaining.Sub(take)
		pool = append(pool[:best], pool[best+1:]...)
	}
	return out
}

func smartScore(b *entity.Batch, remaining decimal.Decimal, now time.Time, horizon, maxAge float64, w Weights) float64 {
	expiry := 0.0
	if days, ok := b.DaysToExpiry(now); ok {
		expiry = clamp01(1 - days/horizon)
	}
	age := 0.0
	if maxAge > 0 {
		age = ageDays(b, now) / maxAge
	}
	fit := 1.0
	if b.QtyAvailable.GreaterThan(remaining) {
		fit, _ = remaining.Div(b.QtyAvailable).Float64()
	}
	return w.Expiry*expiry + w.Age*age + w.Fit*fit
}

func ageDays(b *entity.Batch, now time.Time) float64 {
	d := now.Sub(b.ReceivedAt).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func allocateSpecified(batches []*entity.Batch, req AllocationRequest) (*AllocationResult, error) {
	if len(req.Specified) == 0 {
		return nil, fmt.Errorf("%w: la estrategia SPECIFIED requiere lotes", domain.ErrInvalidInput)
	}
	byID := make(map[string]*entity.Batch, len(batches))
	for _, b := range batches {
		if b != nil {
			byID[b.ID] = b
		}
	}
	var issues []domain.Issue
	var picks []Deduction
	total := decimal.Zero
	seen := make(map[string]bool, len(req.Specified))
	for i, sp := range req.Specified {
		field := fmt.Sprintf("batches[%d]", i)
		b, ok := byID[sp.BatchID]
		switch {
		case seen[sp.BatchID]:
			issues = append(issues, domain.Issue{Code: "DUPLICATE_BATCH", Field: field, Message: "lote repetido"})
			continue
		case !ok:
			issues = append(issues, domain.Issue{Code: "BATCH_NOT_FOUND", Field: field, Message: "lote no pertenece al producto/bodega"})
			continue
		case !b.IsAllocatable(req.Now):
			issues = append(issues, domain.Issue{Code: "BATCH_NOT_AVAILABLE", Field: field, Message: "lote no liberado, vencido o sin saldo"})
			continue
		case !sp.Quantity.GreaterThan(decimal.Zero):
			issues = append(issues, domain.Issue{Code: "INVALID_QUANTITY", Field: field, Message: "cantidad debe ser mayor a cero"})
			continue
		case sp.Quantity.GreaterThan(b.QtyAvailable):
			issues = append(issues, domain.Issue{Code: "INSUFFICIENT_BATCH_QTY", Field: field,
				Message: fmt.Sprintf("lote %s tiene %s disponible", b.BatchNumber, b.QtyAvailable)})
			continue
		}
		seen[sp.BatchID] = true
		picks = append(picks, newDeduction(b, sp.Quantity))
		total = total.Add(sp.Quantity)
	}
	if len(issues) > 0 {
		return nil, domain.NewValidationError(issues...)
	}
	if req.Quantity.IsZero() {
		req.Quantity = total
	}
	if total.GreaterThan(req.Quantity) {
		return nil, domain.NewValidationError(domain.Issue{Code: "OVER_ALLOCATION", Field: "batches",
			Message: "la suma de lotes supera la cantidad solicitada"})
	}
	return finish(req, picks)
}

func newDeduction(b *entity.Batch, qty decimal.Decimal) Deduction {
	return Deduction{
		BatchID:     b.ID,
		BatchNumber: b.BatchNumber,
		Quantity:    qty,
		UnitCost:    b.UnitCost,
		TotalCost:   qty.Mul(b.UnitCost).Round(4),
		ExpiresAt:   b.ExpiresAt,
	}
}

func finish(req AllocationRequest, picks []Deduction) (*AllocationResult, error) {
	res := &AllocationResult{
		Strategy:   req.Strategy,
		Requested:  req.Quantity,
		Deductions: picks,
	}
	for _, p := range picks {
		res.TotalAllocated = res.TotalAllocated.Add(p.Quantity)
		res.TotalCost = res.TotalCost.Add(p.TotalCost)
	}
	if res.TotalAllocated.GreaterThan(decimal.Zero) {
		res.WeightedAverageCost = res.TotalCost.Div(res.TotalAllocated).Round(4)
	}
	res.Shortage = req.Quantity.Sub(res.TotalAllocated)
	if res.Shortage.LessThan(decimal.Zero) {
		res.Shortage = decimal.Zero
	}
	res.FullyFulfilled = res.Shortage.IsZero()
	if !res.FullyFulfilled && !req.AllowPartial {
		return nil, fmt.Errorf("%w: solicitado %s, asignable %s", domain.ErrInsufficientStock, req.Quantity, res.TotalAllocated)
	}
	if res.Deductions == nil {
		res.Deductions = []Deduction{}
	}
	return res, nil
}
