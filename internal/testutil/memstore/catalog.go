package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ── companies ─────────────────────────────────────────────────────────────────

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.d.companies {
		if e.NIT == c.NIT {
			return domain.ErrDuplicate
		}
	}
	r.s.d.companies[c.ID] = *c
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.d.companies[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r companyRepo) GetByNIT(_ context.Context, nit string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.d.companies {
		if c.NIT == nit {
			return &c, nil
		}
	}
	return nil, nil
}

func (r companyRepo) ActivateModules(_ context.Context, companyID string, modules []string, expiresAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.d.modules[companyID] == nil {
		r.s.d.modules[companyID] = map[string]entity.CompanyModule{}
	}
	now := time.Now()
	for _, m := range modules {
		cm, ok := r.s.d.modules[companyID][m]
		if !ok {
			cm = entity.CompanyModule{ID: m, CompanyID: companyID, ModuleName: m, CreatedAt: now}
		}
		cm.IsActive, cm.ExpiresAt, cm.ActivatedAt, cm.UpdatedAt = true, expiresAt, now, now
		r.s.d.modules[companyID][m] = cm
	}
	return nil
}

func (r companyRepo) DeactivateModule(_ context.Context, companyID, module string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cm, ok := r.s.d.modules[companyID][module]
	if !ok {
		return domain.ErrNotFound
	}
	cm.IsActive, cm.UpdatedAt = false, time.Now()
	r.s.d.modules[companyID][module] = cm
	return nil
}

// SetModule reemplaza la fila del módulo (vencimientos en tests).
func (s *Store) SetModule(m entity.CompanyModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.d.modules[m.CompanyID] == nil {
		s.d.modules[m.CompanyID] = map[string]entity.CompanyModule{}
	}
	s.d.modules[m.CompanyID][m.ModuleName] = m
}

func (r companyRepo) ListModules(_ context.Context, companyID string) ([]entity.CompanyModule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.CompanyModule, 0, len(r.s.d.modules[companyID]))
	for _, m := range r.s.d.modules[companyID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleName < out[j].ModuleName })
	return out, nil
}

// ── users ─────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.d.users {
		if strings.EqualFold(e.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.d.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.d.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) GetByEmailAndCompany(_ context.Context, email, companyID string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if strings.EqualFold(u.Email, email) && u.CompanyID == companyID {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.d.users {
		if u.CompanyID == companyID {
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}

func (r userRepo) UpdateStatus(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.d.users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status, cur.UpdatedAt = u.Status, u.UpdatedAt
	r.s.d.users[u.ID] = cur
	return nil
}

// ── warehouses ────────────────────────────────────────────────────────────────

type warehouseRepo struct{ s *Store }

func (r warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.warehouses[w.ID] = *w
	return nil
}

func (r warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if w, ok := r.s.d.warehouses[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (r warehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Warehouse
	for _, w := range r.s.d.warehouses {
		if w.CompanyID == companyID {
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ── products ──────────────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.d.products {
		if e.CompanyID == p.CompanyID && e.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.d.products[p.ID] = *p
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.d.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r productRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.d.products {
		if p.CompanyID == companyID && p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.products[p.ID] = *p
	return nil
}

func (r productRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	r.s.d.products[productID] = p
	return nil
}

func (r productRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.d.products {
		if p.CompanyID == companyID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}

// ── stock, movimientos, niveles ───────────────────────────────────────────────

type stockRepo struct{ s *Store }

func (r stockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.d.stock[stockKey{productID, warehouseID}]; ok {
		return &st, nil
	}
	return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
}

func (r stockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r stockRepo) Upsert(_ context.Context, st *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Stock.Upsert"); err != nil {
		return err
	}
	r.s.d.stock[stockKey{st.ProductID, st.WarehouseID}] = *st
	return nil
}

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Movements.Create"); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.s.d.movements = append(r.s.d.movements, *m)
	return nil
}

func (r movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	for i := len(r.s.d.movements) - 1; i >= 0; i-- {
		if m := r.s.d.movements[i]; m.ProductID == productID {
			out = append(out, &m)
		}
	}
	return page(out, limit, offset), nil
}

func (r movementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.s.d.movements {
		if m.TransactionID == transactionID {
			out = append(out, &m)
		}
	}
	return out, nil
}

type levelRepo struct{ s *Store }

func (r levelRepo) ListByWarehouse(_ context.Context, companyID, warehouseID string, limit, offset int) ([]*entity.InventoryLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryLevel
	for k, st := range r.s.d.stock {
		p, ok := r.s.d.products[k.product]
		if !ok || p.CompanyID != companyID || k.warehouse != warehouseID {
			continue
		}
		quarantine := decimal.Zero
		for _, b := range r.s.d.batches {
			if b.ProductID == p.ID && b.WarehouseID == warehouseID && b.Status == entity.BatchStatusQuarantine {
				quarantine = quarantine.Add(b.QtyAvailable)
			}
		}
		out = append(out, &entity.InventoryLevel{
			CompanyID: companyID, WarehouseID: warehouseID, ProductID: p.ID, SKU: p.SKU, ProductName: p.Name,
			Quantity: st.Quantity, QuarantineQty: quarantine, UnitCost: p.Cost, UpdatedAt: st.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}

func (r levelRepo) BelowReorderPoint(_ context.Context, companyID, warehouseID string) ([]repository.ReplenishmentItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	onOrder := map[string]decimal.Decimal{}
	for _, po := range r.s.d.pos {
		if po.CompanyID != companyID || !po.CanReceive() || (warehouseID != "" && po.WarehouseID != warehouseID) {
			continue
		}
		for _, l := range po.Lines {
			onOrder[l.ProductID] = onOrder[l.ProductID].Add(l.PendingQty())
		}
	}
	var out []repository.ReplenishmentItem
	for _, p := range r.s.d.products {
		if p.CompanyID != companyID || !p.ReorderPoint.GreaterThan(decimal.Zero) {
			continue
		}
		qty := decimal.Zero
		for k, st := range r.s.d.stock {
			if k.product == p.ID && (warehouseID == "" || k.warehouse == warehouseID) {
				qty = qty.Add(st.Quantity)
			}
		}
		it := repository.ReplenishmentItem{
			ProductID: p.ID, SKU: p.SKU, ProductName: p.Name, CurrentStock: qty, OnOrder: onOrder[p.ID],
			ReorderPoint: p.ReorderPoint, UnitCost: p.Cost, Price: p.Price,
		}
		if it.Position().LessThan(p.ReorderPoint) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].ReorderPoint.Sub(out[i].Position()), out[j].ReorderPoint.Sub(out[j].Position())
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

type analyticsRepo struct{ s *Store }

func (r analyticsRepo) GetSKUMargins(_ context.Context, companyID string, start, end time.Time, limit int) ([]repository.SKUMarginResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc := map[string]*repository.SKUMarginResult{}
	for _, d := range r.s.d.details {
		inv, ok := r.s.d.invoices[d.InvoiceID]
		if !ok || inv.CompanyID != companyID || inv.Status == entity.InvoiceStatusVoid ||
			inv.Date.Before(start) || inv.Date.After(end) {
			continue
		}
		m, ok := acc[d.ProductID]
		if !ok {
			p := r.s.d.products[d.ProductID]
			m = &repository.SKUMarginResult{ProductID: p.ID, SKU: p.SKU, ProductName: p.Name}
			acc[d.ProductID] = m
		}
		m.UnitsSold = m.UnitsSold.Add(d.Quantity)
		m.GrossRevenue = m.GrossRevenue.Add(d.Subtotal)
		m.TotalCOGS = m.TotalCOGS.Add(d.CostTotal)
		m.GrossProfit = m.GrossRevenue.Sub(m.TotalCOGS)
	}
	out := make([]repository.SKUMarginResult, 0, len(acc))
	for _, m := range acc {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrossProfit.GreaterThan(out[j].GrossProfit) })
	return page(out, limit, 0), nil
}
