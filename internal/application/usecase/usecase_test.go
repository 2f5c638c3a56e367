package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompany_CreateActivaModulos(t *testing.T) {
	s := memstore.New()
	uc := NewCompanyUseCase(s, s)
	ctx := context.Background()

	c, err := uc.Create(ctx, "u1", dto.CreateCompanyRequest{Name: " ACME ", NIT: "900123"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", c.Name)
	assert.ElementsMatch(t, entity.AllModules, c.Modules)

	ok, err := NewModuleService(s.Companies()).HasActiveModule(ctx, c.ID, entity.ModuleQuality)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = uc.Create(ctx, "u1", dto.CreateCompanyRequest{Name: "Otra", NIT: "900123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.ActivateModules(ctx, c.ID, "u1", dto.ActivateModulesRequest{Modules: []string{"crm"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompany_ListSoloLaPropia(t *testing.T) {
	s := memstore.New()
	uc := NewCompanyUseCase(s, s)
	ctx := context.Background()

	a, err := uc.Create(ctx, "u1", dto.CreateCompanyRequest{Name: "ACME", NIT: "900111"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "u2", dto.CreateCompanyRequest{Name: "Beta", NIT: "900222"})
	require.NoError(t, err)

	out, err := uc.List(ctx, a.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "ACME", out.Items[0].Name)

	none, err := uc.List(ctx, "no-existe", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}

func TestCompany_VencimientoYDesactivacion(t *testing.T) {
	s := memstore.New()
	uc := NewCompanyUseCase(s, s)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	c, err := uc.Create(ctx, "u1", dto.CreateCompanyRequest{Name: "ACME", NIT: "900999"})
	require.NoError(t, err)

	past := now.Add(-time.Hour)
	_, err = uc.ActivateModules(ctx, c.ID, "u1", dto.ActivateModulesRequest{Modules: []string{entity.ModuleSales}, ExpiresAt: &past})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	until := now.AddDate(0, 1, 0)
	out, err := uc.ActivateModules(ctx, c.ID, "u1", dto.ActivateModulesRequest{Modules: []string{entity.ModuleSales}, ExpiresAt: &until})
	require.NoError(t, err)
	assert.Contains(t, out.Modules, entity.ModuleSales)

	now = until.Add(time.Minute)
	out, err = uc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.NotContains(t, out.Modules, entity.ModuleSales)
	assert.Len(t, out.ModuleDetails, len(entity.AllModules))

	out, err = uc.DeactivateModule(ctx, c.ID, "u1", entity.ModuleQuality)
	require.NoError(t, err)
	assert.NotContains(t, out.Modules, entity.ModuleQuality)
	assert.Contains(t, out.Modules, entity.ModuleInventory)

	_, err = uc.DeactivateModule(ctx, c.ID, "u1", "crm")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.DeactivateModule(ctx, "otra", "u1", entity.ModuleQuality)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_CreateUpdate(t *testing.T) {
	s := memstore.New()
	uc := NewProductUseCase(s, s)
	ctx := context.Background()

	p, err := uc.Create(ctx, "c1", "u1", dto.CreateProductRequest{
		SKU: "SKU-1", Name: "Harina", Price: d("5000"), TaxRate: d("19"), TrackBatches: true, ShelfLifeDays: 180,
	})
	require.NoError(t, err)
	assert.True(t, p.Cost.IsZero())
	assert.Equal(t, "UND", p.UnitMeasure)

	_, err = uc.Create(ctx, "c1", "u1", dto.CreateProductRequest{SKU: "SKU-1", Name: "Otra", TaxRate: d("0")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, "c1", "u1", dto.CreateProductRequest{SKU: "SKU-2", Name: "Otra", TaxRate: d("7")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	inspect := true
	upd, err := uc.Update(ctx, "c1", "u1", p.ID, dto.UpdateProductRequest{RequiresInspection: &inspect})
	require.NoError(t, err)
	assert.True(t, upd.RequiresInspection)

	other, err := uc.GetByID(ctx, "c2", p.ID)
	require.NoError(t, err)
	assert.Nil(t, other)

	logs := s.AuditLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, entity.AuditUpdate, logs[1].Action)
	assert.Contains(t, string(logs[1].Before), `"requires_inspection":false`)
	assert.Contains(t, string(logs[1].After), `"requires_inspection":true`)
}

func TestProduct_AuditFallaRevierte(t *testing.T) {
	s := memstore.New()
	s.FailOn("Audit.Create", assert.AnError)
	uc := NewProductUseCase(s, s)

	_, err := uc.Create(context.Background(), "c1", "u1", dto.CreateProductRequest{SKU: "X", Name: "X", TaxRate: d("0")})
	require.ErrorIs(t, err, assert.AnError)

	got, err := s.Products().GetByCompanyAndSKU(context.Background(), "c1", "X")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, s.Rollbacks)
}

func TestClient_SoftDelete(t *testing.T) {
	s := memstore.New()
	uc := NewClientUseCase(s, s)
	ctx := context.Background()

	c, err := uc.Create(ctx, "c1", "u1", dto.ClientRequest{Name: "Tienda", TaxID: "800"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", "u1", dto.ClientRequest{Name: "Copia", TaxID: "800"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, uc.Delete(ctx, "c1", "u1", c.ID))

	got, err := uc.GetByID(ctx, "c1", c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := uc.List(ctx, "c1", "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	// el NIT queda libre tras el borrado
	again, err := uc.Create(ctx, "c1", "u1", dto.ClientRequest{Name: "Tienda 2", TaxID: "800"})
	require.NoError(t, err)
	assert.NotEqual(t, c.ID, again.ID)

	assert.ErrorIs(t, uc.Delete(ctx, "c1", "u1", c.ID), domain.ErrNotFound)
}

func TestSupplier_UpdateYBusqueda(t *testing.T) {
	s := memstore.New()
	uc := NewSupplierUseCase(s, s)
	ctx := context.Background()

	a, err := uc.Create(ctx, "c1", "u1", dto.SupplierRequest{Name: "Molinos SA", TaxID: "901", LeadTimeDays: 5})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", "u1", dto.SupplierRequest{Name: "Empaques", TaxID: "902"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, "c1", "u1", a.ID, dto.SupplierRequest{Name: "Molinos SA", TaxID: "902"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	upd, err := uc.Update(ctx, "c1", "u1", a.ID, dto.SupplierRequest{Name: "Molinos del Valle", TaxID: "901", PaymentTermsDays: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, upd.PaymentTermsDays)

	list, err := uc.List(ctx, "c1", "molinos", 20, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Total)
}

type fakeAnalytics struct{ rows []repository.SKUMarginResult }

func (f fakeAnalytics) GetSKUMargins(context.Context, string, time.Time, time.Time, int) ([]repository.SKUMarginResult, error) {
	return f.rows, nil
}

func TestAnalytics_Pareto(t *testing.T) {
	uc := NewAnalyticsUseCase(fakeAnalytics{rows: []repository.SKUMarginResult{
		{ProductID: "a", SKU: "A", GrossRevenue: d("700"), TotalCOGS: d("400"), GrossProfit: d("300"), UnitsSold: d("7")},
		{ProductID: "b", SKU: "B", GrossRevenue: d("200"), TotalCOGS: d("100"), GrossProfit: d("100"), UnitsSold: d("2")},
		{ProductID: "c", SKU: "C", GrossRevenue: d("100"), TotalCOGS: d("90"), GrossProfit: d("10"), UnitsSold: d("1")},
	}})
	uc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	rep, err := uc.GetMarginsReport(context.Background(), "c1", dto.MarginsReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", rep.Period.StartDate)
	require.Len(t, rep.SKURanking, 3)
	assert.True(t, rep.SKURanking[0].MarginPct.Equal(d("42.86")))
	assert.True(t, rep.SKURanking[1].CumulativeRevPct.Equal(d("90")))
	// A (70%) y B (cruza el 80%) forman el grupo Pareto
	assert.Len(t, rep.ParetoSKUs, 2)
	assert.True(t, rep.TotalProfit.Equal(d("410")))
	assert.True(t, rep.MarginPct.Equal(d("41")))

	_, err = uc.GetMarginsReport(context.Background(), "c1", dto.MarginsReportRequest{StartDate: "2026-04-01", EndDate: "2026-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAudit_ListFiltros(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	for i, et := range []string{"product", "purchase_order", "product"} {
		require.NoError(t, s.Audit().Create(ctx, &entity.AuditLog{
			CompanyID: "c1", EntityType: et, EntityID: "e", Action: entity.AuditCreate, CreatedAt: base.AddDate(0, 0, i),
		}))
	}
	uc := NewAuditUseCase(s.Audit())

	res, err := uc.List(ctx, "c1", dto.AuditQuery{EntityType: "product"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].CreatedAt.After(res.Items[1].CreatedAt))

	res, err = uc.List(ctx, "c1", dto.AuditQuery{From: "2026-01-11", To: "2026-01-11"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "purchase_order", res.Items[0].EntityType)

	_, err = uc.List(ctx, "c1", dto.AuditQuery{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWarehouse_ResumenValorizado(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	uc := NewWarehouseUseCase(s, s)

	wh, err := uc.Create(ctx, "c1", "u1", dto.CreateWarehouseRequest{Code: " sur ", Name: "Bodega Sur "})
	require.NoError(t, err)
	assert.Equal(t, "SUR", wh.Code)
	assert.Equal(t, "Bodega Sur", wh.Name)

	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", SKU: "A", Name: "A", Cost: d("100")}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p2", CompanyID: "c1", SKU: "B", Name: "B", Cost: d("2.5")}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p3", CompanyID: "c1", SKU: "C", Name: "C", Cost: d("7")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "p1", WarehouseID: wh.ID, Quantity: d("10")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "p2", WarehouseID: wh.ID, Quantity: d("4")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "p3", WarehouseID: wh.ID, Quantity: d("0")}))
	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{
		ID: "b1", CompanyID: "c1", ProductID: "p1", WarehouseID: wh.ID, BatchNumber: "L1",
		QtyReceived: d("3"), QtyAvailable: d("3"), UnitCost: d("100"), Status: entity.BatchStatusQuarantine,
	}))

	sum, err := uc.Summary(ctx, "c1", wh.ID)
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 2, sum.SKUCount)
	assert.True(t, sum.OnHandQty.Equal(d("14")))
	assert.True(t, sum.QuarantineQty.Equal(d("3")))
	assert.True(t, sum.AvailableQty.Equal(d("11")))
	assert.True(t, sum.Valuation.Equal(d("1010")), sum.Valuation.String())

	other, err := uc.Summary(ctx, "c2", wh.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
}

type countingCompanies struct {
	repository.CompanyRepository
	lists int
}

func (c *countingCompanies) ListModules(ctx context.Context, companyID string) ([]entity.CompanyModule, error) {
	c.lists++
	return c.CompanyRepository.ListModules(ctx, companyID)
}

func TestModuleService_CacheYVencimiento(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Companies().ActivateModules(ctx, "c1", []string{entity.ModuleSales}, nil))
	repo := &countingCompanies{CompanyRepository: s.Companies()}
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	svc := NewModuleService(repo)
	svc.now = func() time.Time { return now }

	ok, err := svc.HasActiveModule(ctx, "c1", entity.ModuleSales)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.HasActiveModule(ctx, "c1", entity.ModuleManufacturing)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, repo.lists)

	yesterday := now.Add(-24 * time.Hour)
	s.SetModule(entity.CompanyModule{CompanyID: "c1", ModuleName: entity.ModuleSales, IsActive: true, ExpiresAt: &yesterday})
	ok, _ = svc.HasActiveModule(ctx, "c1", entity.ModuleSales)
	assert.True(t, ok, "sigue en caché")

	svc.Forget("c1")
	ok, err = svc.HasActiveModule(ctx, "c1", entity.ModuleSales)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, repo.lists)

	now = now.Add(DefaultModuleCacheTTL)
	_, _ = svc.HasActiveModule(ctx, "c1", entity.ModuleSales)
	assert.Equal(t, 3, repo.lists)

	_, err = svc.HasActiveModule(ctx, "c1", "crm")
	assert.Error(t, err)
}
