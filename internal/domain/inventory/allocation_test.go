package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func batch(id string, qty, cost string, receivedDaysAgo, expiresInDays int) *entity.Batch {
	b := &entity.Batch{
		ID:           id,
		BatchNumber:  "L-" + id,
		ReceivedAt:   now.AddDate(0, 0, -receivedDaysAgo),
		QtyReceived:  d(qty),
		QtyAvailable: d(qty),
		UnitCost:     d(cost),
		Status:       entity.BatchStatusReleased,
	}
	if expiresInDays != 0 {
		exp := now.AddDate(0, 0, expiresInDays)
		b.ExpiresAt = &exp
	}
	return b
}

func ids(res *AllocationResult) []string {
	out := make([]string, 0, len(res.Deductions))
	for _, dd := range res.Deductions {
		out = append(out, dd.BatchID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// FIFO / FEFO
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_FEFO_VencimientoMasProximoPrimero(t *testing.T) {
	bs := []*entity.Batch{
		batch("a", "10", "5", 30, 90),
		batch("b", "10", "5", 5, 20),
		batch("c", "10", "5", 10, 0), // sin vencimiento: al final
	}
	res, err := Allocate(bs, AllocationRequest{Quantity: d("25"), Strategy: StrategyFEFO, Now: now})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, ids(res))
	assert.True(t, res.Deductions[2].Quantity.Equal(d("5")))
	assert.True(t, res.FullyFulfilled)
	assert.True(t, res.Shortage.IsZero())
}

func TestAllocate_FIFO_PorFechaDeRecepcion(t *testing.T) {
	bs := []*entity.Batch{
		batch("nuevo", "10", "5", 1, 5),
		batch("viejo", "10", "5", 40, 200),
	}
	res, err := Allocate(bs, AllocationRequest{Quantity: d("12"), Strategy: StrategyFIFO, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{"viejo", "nuevo"}, ids(res))
}

func TestAllocate_ExcluyeCuarentenaVencidosYAgotados(t *testing.T) {
	quarantine := batch("q", "50", "1", 1, 100)
	quarantine.Status = entity.BatchStatusQuarantine
	expired := batch("x", "50", "1", 100, -1)
	empty := batch("e", "0", "1", 10, 100)
	ok := batch("ok", "5", "1", 10, 100)

	res, err := Allocate([]*entity.Batch{quarantine, expired, empty, ok},
		AllocationRequest{Quantity: d("5"), Strategy: StrategyFEFO, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, ids(res))
}

func TestAllocate_MinRemainingShelfDays(t *testing.T) {
	bs := []*entity.Batch{
		batch("corto", "10", "1", 1, 3),
		batch("largo", "10", "1", 1, 40),
	}
	res, err := Allocate(bs, AllocationRequest{
		Quantity: d("5"), Strategy: StrategyFEFO, MinRemainingShelfDays: 7, Now: now,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"largo"}, ids(res))
}

func TestAllocate_StockInsuficiente(t *testing.T) {
	bs := []*entity.Batch{batch("a", "3", "2", 1, 10)}

	_, err := Allocate(bs, AllocationRequest{Quantity: d("5"), Strategy: StrategyFEFO, Now: now})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	res, err := Allocate(bs, AllocationRequest{Quantity: d("5"), Strategy: StrategyFEFO, AllowPartial: true, Now: now})
	require.NoError(t, err)
	assert.False(t, res.FullyFulfilled)
	assert.True(t, res.Shortage.Equal(d("2")))
	assert.True(t, res.TotalAllocated.Equal(d("3")))
}

func TestAllocate_CantidadInvalida(t *testing.T) {
	_, err := Allocate(nil, AllocationRequest{Quantity: decimal.Zero, Strategy: StrategyFIFO, Now: now})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// SMART
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_Smart_UrgenciaYCostoPromedio(t *testing.T) {
	bs := []*entity.Batch{
		batch("lejano", "100", "12", 0, 60),
		batch("urgente", "5", "10", 0, 10),
	}
	res, err := Allocate(bs, AllocationRequest{Quantity: d("20"), Strategy: StrategySmart, Now: now})
	require.NoError(t, err)

	assert.Equal(t, []string{"urgente", "lejano"}, ids(res))
	assert.True(t, res.Deductions[0].Quantity.Equal(d("5")))
	assert.True(t, res.Deductions[1].Quantity.Equal(d("15")))
	// (5*10 + 15*12) / 20 = 11.5
	assert.True(t, res.TotalCost.Equal(d("230")), "total %s", res.TotalCost)
	assert.True(t, res.WeightedAverageCost.Equal(d("11.5")), "wac %s", res.WeightedAverageCost)
	require.NotNil(t, res.Deductions[0].Score)
}

func TestAllocate_Smart_PrefiereVaciarLoteChico(t *testing.T) {
	// FEFO tomaría "grande" (vence antes); SMART prefiere "chico" que se agota completo.
	bs := []*entity.Batch{
		batch("grande", "50", "1", 0, 30),
		batch("chico", "10", "1", 0, 35),
	}
	fefo, err := Allocate(bs, AllocationRequest{Quantity: d("10"), Strategy: StrategyFEFO, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{"grande"}, ids(fefo))

	smart, err := Allocate(bs, AllocationRequest{Quantity: d("10"), Strategy: StrategySmart, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{"chico"}, ids(smart))
}

func TestAllocate_Smart_AntiguedadConPesoSoloEdad(t *testing.T) {
	bs := []*entity.Batch{
		batch("reciente", "10", "1", 2, 0),
		batch("antiguo", "10", "1", 50, 0),
	}
	res, err := Allocate(bs, AllocationRequest{
		Quantity: d("5"), Strategy: StrategySmart, Now: now,
		Weights: Weights{Age: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"antiguo"}, ids(res))
}

func TestAllocate_Smart_DesempateConPuntajeIgual(t *testing.T) {
	y, x := batch("y", "10", "1", 3, 0), batch("x", "10", "1", 4, 0)
	y.BatchNumber, x.BatchNumber = "L-1", "L-1"

	tests := []struct {
		name string
		bs   []*entity.Batch
		want []string
	}{
		{
			name: "vencimiento más próximo",
			bs:   []*entity.Batch{batch("tarde", "10", "1", 5, 40), batch("pronto", "10", "1", 5, 10)},
			want: []string{"pronto", "tarde"},
		},
		{
			name: "mismo vencimiento, recibido antes",
			bs:   []*entity.Batch{batch("nuevo", "10", "1", 2, 30), batch("viejo", "10", "1", 8, 30)},
			want: []string{"viejo", "nuevo"},
		},
		{
			name: "mismas fechas, número de lote",
			bs:   []*entity.Batch{batch("b", "10", "1", 5, 30), batch("a", "10", "1", 5, 30)},
			want: []string{"a", "b"},
		},
		{
			name: "con vencimiento antes que sin vencimiento",
			bs:   []*entity.Batch{batch("sin", "10", "1", 20, 0), batch("con", "10", "1", 1, 60)},
			want: []string{"con", "sin"},
		},
		{
			name: "ambos sin vencimiento y mismo número, recibido antes",
			bs:   []*entity.Batch{y, x},
			want: []string{"x", "y"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// solo pesa el ajuste: ambos lotes cubren lo mismo y empatan en puntaje
			res, err := Allocate(tt.bs, AllocationRequest{
				Quantity: d("15"), Strategy: StrategySmart, Now: now,
				Weights: Weights{Fit: 1},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res))
			require.NotNil(t, res.Deductions[0].Score)
			require.NotNil(t, res.Deductions[1].Score)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// SPECIFIED
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_Specified(t *testing.T) {
	bs := []*entity.Batch{batch("a", "10", "2", 1, 10), batch("b", "10", "3", 1, 20)}
	res, err := Allocate(bs, AllocationRequest{
		Strategy:  StrategySpecified,
		Specified: []SpecifiedBatch{{BatchID: "b", Quantity: d("4")}, {BatchID: "a", Quantity: d("1")}},
		Now:       now,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(res))
	assert.True(t, res.Requested.Equal(d("5")))
	assert.True(t, res.TotalCost.Equal(d("14")))
}

func TestAllocate_Specified_Errores(t *testing.T) {
	q := batch("q", "10", "1", 1, 10)
	q.Status = entity.BatchStatusQuarantine
	bs := []*entity.Batch{batch("a", "3", "1", 1, 10), q}

	_, err := Allocate(bs, AllocationRequest{
		Strategy: StrategySpecified,
		Specified: []SpecifiedBatch{
			{BatchID: "a", Quantity: d("5")},
			{BatchID: "q", Quantity: d("1")},
			{BatchID: "zz", Quantity: d("1")},
		},
		Now: now,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	codes := []string{}
	for _, is := range verr.Issues {
		codes = append(codes, is.Code)
	}
	assert.Equal(t, []string{"INSUFFICIENT_BATCH_QTY", "BATCH_NOT_AVAILABLE", "BATCH_NOT_FOUND"}, codes)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" fefo ", StrategySmart)
	require.NoError(t, err)
	assert.Equal(t, StrategyFEFO, s)

	s, err = ParseStrategy("", StrategySmart)
	require.NoError(t, err)
	assert.Equal(t, StrategySmart, s)

	_, err = ParseStrategy("LIFO", StrategySmart)
	assert.Error(t, err)
}
