// Package memstore implementa en memoria todos los puertos de repository para pruebas de casos de uso.
// Run toma una copia de los datos y la restaura si el callback falla, igual que un Rollback.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var (
	_ repository.Store      = (*Store)(nil)
	_ repository.TxRunner   = (*Store)(nil)
	_ repository.DumpRunner = (*Store)(nil)
)

type stockKey struct{ product, warehouse string }

type data struct {
	companies   map[string]entity.Company
	modules     map[string]map[string]entity.CompanyModule
	users       map[string]entity.User
	warehouses  map[string]entity.Warehouse
	products    map[string]entity.Product
	stock       map[stockKey]entity.Stock
	movements   []entity.InventoryMovement
	clients     map[string]entity.Client
	suppliers   map[string]entity.Supplier
	batches     map[string]entity.Batch
	pos         map[string]entity.PurchaseOrder
	receipts    map[string]entity.GoodsReceipt
	inspections []entity.QualityInspection
	estimations map[string]entity.Estimation
	invoices    map[string]entity.Invoice
	details     []entity.InvoiceDetail
	boms        map[string]entity.BOM
	workOrders  map[string]entity.WorkOrder
	audit       []entity.AuditLog
	sequences   map[string]int64
}

func newData() *data {
	return &data{
		companies:   map[string]entity.Company{},
		modules:     map[string]map[string]entity.CompanyModule{},
		users:       map[string]entity.User{},
		warehouses:  map[string]entity.Warehouse{},
		products:    map[string]entity.Product{},
		stock:       map[stockKey]entity.Stock{},
		clients:     map[string]entity.Client{},
		suppliers:   map[string]entity.Supplier{},
		batches:     map[string]entity.Batch{},
		pos:         map[string]entity.PurchaseOrder{},
		receipts:    map[string]entity.GoodsReceipt{},
		estimations: map[string]entity.Estimation{},
		invoices:    map[string]entity.Invoice{},
		boms:        map[string]entity.BOM{},
		workOrders:  map[string]entity.WorkOrder{},
		sequences:   map[string]int64{},
	}
}

func cloneMap[K comparable, V any](m map[K]V, cp func(V) V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		if cp != nil {
			v = cp(v)
		}
		out[k] = v
	}
	return out
}

func (d *data) clone() *data {
	modules := make(map[string]map[string]entity.CompanyModule, len(d.modules))
	for k, v := range d.modules {
		modules[k] = cloneMap(v, nil)
	}
	return &data{
		companies:   cloneMap(d.companies, nil),
		modules:     modules,
		users:       cloneMap(d.users, nil),
		warehouses:  cloneMap(d.warehouses, nil),
		products:    cloneMap(d.products, nil),
		stock:       cloneMap(d.stock, nil),
		movements:   slices.Clone(d.movements),
		clients:     cloneMap(d.clients, nil),
		suppliers:   cloneMap(d.suppliers, nil),
		batches:     cloneMap(d.batches, nil),
		pos:         cloneMap(d.pos, clonePO),
		receipts:    cloneMap(d.receipts, cloneReceipt),
		inspections: slices.Clone(d.inspections),
		estimations: cloneMap(d.estimations, cloneEstimation),
		invoices:    cloneMap(d.invoices, nil),
		details:     slices.Clone(d.details),
		boms:        cloneMap(d.boms, cloneBOM),
		workOrders:  cloneMap(d.workOrders, nil),
		audit:       slices.Clone(d.audit),
		sequences:   cloneMap(d.sequences, nil),
	}
}

func clonePO(po entity.PurchaseOrder) entity.PurchaseOrder {
	po.Lines = slices.Clone(po.Lines)
	return po
}

func cloneReceipt(g entity.GoodsReceipt) entity.GoodsReceipt {
	g.Lines = slices.Clone(g.Lines)
	g.Charges = slices.Clone(g.Charges)
	g.Warnings = slices.Clone(g.Warnings)
	return g
}

func cloneEstimation(e entity.Estimation) entity.Estimation {
	e.Lines = slices.Clone(e.Lines)
	return e
}

func cloneBOM(b entity.BOM) entity.BOM {
	b.Components = slices.Clone(b.Components)
	return b
}

// Store guarda los datos en mapas. Es a la vez Store, TxRunner y DumpRunner.
type Store struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	d     *data
	fails map[string]error
	// Commits transacciones confirmadas; Rollbacks transacciones revertidas.
	Commits   int
	Rollbacks int
}

// New crea un store vacío.
func New() *Store {
	return &Store{d: newData(), fails: map[string]error{}}
}

// FailOn hace que la operación op (p. ej. "Audit.Create") devuelva err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[op] = err
}

func (s *Store) fail(op string) error {
	return s.fails[op]
}

// Run ejecuta fn con transacciones serializadas; si fn falla se restaura la copia previa.
func (s *Store) Run(ctx context.Context, fn func(st repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.d.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.d = snap
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.Commits++
	s.mu.Unlock()
	return nil
}

// RunDump igual que Run pero con el repositorio de volcado.
func (s *Store) RunDump(ctx context.Context, fn func(d repository.DumpRepository) error) error {
	return s.Run(ctx, func(repository.Store) error {
		return fn(dumpRepo{s})
	})
}

func (s *Store) Companies() repository.CompanyRepository { return companyRepo{s} }
func (s *Store) Users() repository.UserRepository { return userRepo{s} }
func (s *Store) Warehouses() repository.WarehouseRepository { return warehouseRepo{s} }
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }
func (s *Store) Stock() repository.StockRepository { return stockRepo{s} }
func (s *Store) Movements() repository.InventoryMovementRepository { return movementRepo{s} }
func (s *Store) Levels() repository.InventoryLevelRepository { return levelRepo{s} }
func (s *Store) Analytics() repository.AnalyticsRepository { return analyticsRepo{s} }
func (s *Store) Clients() repository.ClientRepository { return clientRepo{s} }
func (s *Store) Suppliers() repository.SupplierRepository { return supplierRepo{s} }
func (s *Store) Batches() repository.BatchRepository { return batchRepo{s} }
func (s *Store) PurchaseOrders() repository.PurchaseOrderRepository { return poRepo{s} }
func (s *Store) Receipts() repository.GoodsReceiptRepository { return receiptRepo{s} }
func (s *Store) Inspections() repository.QualityInspectionRepository { return inspectionRepo{s} }
func (s *Store) Estimations() repository.EstimationRepository { return estimationRepo{s} }
func (s *Store) Invoices() repository.InvoiceRepository { return invoiceRepo{s} }
func (s *Store) BOMs() repository.BOMRepository { return bomRepo{s} }
func (s *Store) WorkOrders() repository.WorkOrderRepository { return workOrderRepo{s} }
func (s *Store) Audit() repository.AuditLogRepository { return auditRepo{s} }
func (s *Store) Sequences() repository.SequenceRepository { return sequenceRepo{s} }

// AuditLogs copia del log de auditoría, para aserciones.
func (s *Store) AuditLogs() []entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.d.audit)
}

// AllMovements copia del kardex completo.
func (s *Store) AllMovements() []entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.d.movements)
}
