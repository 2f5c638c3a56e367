package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ── lotes ─────────────────────────────────────────────────────────────────────

type batchRepo struct{ s *Store }

func (r batchRepo) Create(_ context.Context, b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Batches.Create"); err != nil {
		return err
	}
	r.s.d.batches[b.ID] = *b
	return nil
}

func (r batchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.d.batches[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (r batchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r batchRepo) Update(_ context.Context, b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.batches[b.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.batches[b.ID] = *b
	return nil
}

// candidatos en el mismo orden que el adaptador SQL: vencimiento (nulos al final), recepción, id.
func (r batchRepo) ListCandidates(_ context.Context, productID, warehouseID string, _ bool) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Batch
	for _, b := range r.s.d.batches {
		if b.ProductID == productID && b.WarehouseID == warehouseID && b.QtyAvailable.GreaterThan(decimal.Zero) {
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt != nil:
			return false
		case a.ExpiresAt != nil && b.ExpiresAt == nil:
			return true
		case a.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		case !a.ReceivedAt.Equal(b.ReceivedAt):
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r batchRepo) List(_ context.Context, f repository.BatchFilter) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Batch
	for _, b := range r.s.d.batches {
		if b.CompanyID != f.CompanyID ||
			(f.ProductID != "" && b.ProductID != f.ProductID) ||
			(f.WarehouseID != "" && b.WarehouseID != f.WarehouseID) ||
			(f.Status != "" && b.Status != f.Status) {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.After(out[j].ReceivedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r batchRepo) Count(ctx context.Context, f repository.BatchFilter) (int, error) {
	f.Limit, f.Offset = 0, 0
	list, err := r.List(ctx, f)
	return len(list), err
}

func (r batchRepo) ListExpiring(_ context.Context, companyID string, after, before time.Time) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Batch
	for _, b := range r.s.d.batches {
		if b.CompanyID == companyID && b.Status == entity.BatchStatusReleased &&
			b.QtyAvailable.GreaterThan(decimal.Zero) && b.ExpiresAt != nil && b.ExpiresAt.Before(before) &&
			(after.IsZero() || b.ExpiresAt.After(after)) {
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(*out[j].ExpiresAt) })
	return out, nil
}

// ── compras ───────────────────────────────────────────────────────────────────

type poRepo struct{ s *Store }

func (r poRepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.pos[po.ID] = clonePO(*po)
	return nil
}

func (r poRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if po, ok := r.s.d.pos[id]; ok {
		po = clonePO(po)
		return &po, nil
	}
	return nil, nil
}

func (r poRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r poRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PurchaseOrder
	for _, po := range r.s.d.pos {
		if po.CompanyID == companyID && (status == "" || po.Status == status) {
			po = clonePO(po)
			out = append(out, &po)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, limit, offset), nil
}

func (r poRepo) UpdateStatus(_ context.Context, po *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.d.pos[po.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status, cur.UpdatedAt = po.Status, po.UpdatedAt
	r.s.d.pos[po.ID] = cur
	return nil
}

func (r poRepo) UpdateLineReceipt(_ context.Context, line *entity.PurchaseOrderLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	po, ok := r.s.d.pos[line.PurchaseOrderID]
	if !ok {
		return domain.ErrNotFound
	}
	po = clonePO(po)
	for i := range po.Lines {
		if po.Lines[i].ID == line.ID {
			po.Lines[i].ReceivedQty = line.ReceivedQty
			po.Lines[i].AcceptedQty = line.AcceptedQty
			po.Lines[i].RejectedQty = line.RejectedQty
			r.s.d.pos[po.ID] = po
			return nil
		}
	}
	return domain.ErrNotFound
}

type receiptRepo struct{ s *Store }

func (r receiptRepo) Create(_ context.Context, g *entity.GoodsReceipt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Receipts.Create"); err != nil {
		return err
	}
	r.s.d.receipts[g.ID] = cloneReceipt(*g)
	return nil
}

func (r receiptRepo) GetByID(_ context.Context, id string) (*entity.GoodsReceipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g, ok := r.s.d.receipts[id]; ok {
		g = cloneReceipt(g)
		return &g, nil
	}
	return nil, nil
}

func (r receiptRepo) ListByPurchaseOrder(_ context.Context, purchaseOrderID string) ([]*entity.GoodsReceipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.GoodsReceipt
	for _, g := range r.s.d.receipts {
		if g.PurchaseOrderID == purchaseOrderID {
			g = cloneReceipt(g)
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r receiptRepo) List(_ context.Context, companyID string, limit, offset int) ([]*entity.GoodsReceipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.GoodsReceipt
	for _, g := range r.s.d.receipts {
		if g.CompanyID == companyID {
			g = cloneReceipt(g)
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, limit, offset), nil
}

type inspectionRepo struct{ s *Store }

func (r inspectionRepo) Create(_ context.Context, in *entity.QualityInspection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.inspections = append(r.s.d.inspections, *in)
	return nil
}

func (r inspectionRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.QualityInspection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.QualityInspection
	for _, in := range r.s.d.inspections {
		if in.BatchID == batchID {
			out = append(out, &in)
		}
	}
	return out, nil
}

// ── ventas ────────────────────────────────────────────────────────────────────

type estimationRepo struct{ s *Store }

func (r estimationRepo) Create(_ context.Context, e *entity.Estimation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.estimations[e.ID] = cloneEstimation(*e)
	return nil
}

func (r estimationRepo) GetByID(_ context.Context, id string) (*entity.Estimation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.d.estimations[id]; ok {
		e = cloneEstimation(e)
		return &e, nil
	}
	return nil, nil
}

func (r estimationRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.Estimation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Estimation
	for _, e := range r.s.d.estimations {
		if e.CompanyID == companyID && (status == "" || e.Status == status) {
			e = cloneEstimation(e)
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, limit, offset), nil
}

func (r estimationRepo) UpdateStatus(_ context.Context, e *entity.Estimation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.d.estimations[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status, cur.InvoiceID, cur.UpdatedAt = e.Status, e.InvoiceID, e.UpdatedAt
	r.s.d.estimations[e.ID] = cur
	return nil
}

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Invoices.Create"); err != nil {
		return err
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	r.s.d.invoices[inv.ID] = *inv
	return nil
}

func (r invoiceRepo) CreateDetail(_ context.Context, d *entity.InvoiceDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	r.s.d.details = append(r.s.d.details, *d)
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv, ok := r.s.d.invoices[id]; ok {
		return &inv, nil
	}
	return nil, nil
}

func (r invoiceRepo) GetDetails(_ context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InvoiceDetail
	for _, d := range r.s.d.details {
		if d.InvoiceID == invoiceID {
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r invoiceRepo) List(_ context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.d.invoices {
		if inv.CompanyID == companyID {
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, limit, offset), nil
}

// ── producción ────────────────────────────────────────────────────────────────

type bomRepo struct{ s *Store }

func (r bomRepo) Create(_ context.Context, b *entity.BOM) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.boms[b.ID] = cloneBOM(*b)
	return nil
}

func (r bomRepo) GetByID(_ context.Context, id string) (*entity.BOM, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.d.boms[id]; ok {
		b = cloneBOM(b)
		return &b, nil
	}
	return nil, nil
}

func (r bomRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.BOM, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.BOM
	for _, b := range r.s.d.boms {
		if b.CompanyID == companyID {
			b = cloneBOM(b)
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

type workOrderRepo struct{ s *Store }

func (r workOrderRepo) Create(_ context.Context, w *entity.WorkOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.workOrders[w.ID] = *w
	return nil
}

func (r workOrderRepo) GetByID(_ context.Context, id string) (*entity.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if w, ok := r.s.d.workOrders[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (r workOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

func (r workOrderRepo) Update(_ context.Context, w *entity.WorkOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.workOrders[w.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.workOrders[w.ID] = *w
	return nil
}

func (r workOrderRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.WorkOrder
	for _, w := range r.s.d.workOrders {
		if w.CompanyID == companyID && (status == "" || w.Status == status) {
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, limit, offset), nil
}

// ── auditoría y consecutivos ──────────────────────────────────────────────────

type auditRepo struct{ s *Store }

func (r auditRepo) Create(_ context.Context, l *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Audit.Create"); err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	r.s.d.audit = append(r.s.d.audit, *l)
	return nil
}

func (r auditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AuditLog
	for i := len(r.s.d.audit) - 1; i >= 0; i-- {
		l := r.s.d.audit[i]
		if l.CompanyID != f.CompanyID ||
			(f.EntityType != "" && l.EntityType != f.EntityType) ||
			(f.EntityID != "" && l.EntityID != f.EntityID) ||
			(f.From != nil && l.CreatedAt.Before(*f.From)) ||
			(f.To != nil && l.CreatedAt.After(*f.To)) {
			continue
		}
		out = append(out, &l)
	}
	return page(out, f.Limit, f.Offset), nil
}

type sequenceRepo struct{ s *Store }

func (r sequenceRepo) Next(_ context.Context, companyID, docType string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := fmt.Sprintf("%s/%s", companyID, docType)
	r.s.d.sequences[key]++
	return r.s.d.sequences[key], nil
}
