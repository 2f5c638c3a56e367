package postgres

import "github.com/jhoicas/erp-api/internal/domain/repository"

var _ repository.Store = (*Store)(nil)

// Store expone todos los repositorios sobre un mismo Querier (pool o tx).
type Store struct {
	q Querier
}

// NewStore construye el store. Pasar el pool para lecturas o una tx para escrituras atómicas.
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Companies() repository.CompanyRepository { return NewCompanyRepository(s.q) }
func (s *Store) Users() repository.UserRepository { return NewUserRepository(s.q) }
func (s *Store) Warehouses() repository.WarehouseRepository { return NewWarehouseRepository(s.q) }
func (s *Store) Products() repository.ProductRepository { return NewProductRepository(s.q) }
func (s *Store) Stock() repository.StockRepository { return NewStockRepository(s.q) }
func (s *Store) Movements() repository.InventoryMovementRepository {
	return NewInventoryMovementRepository(s.q)
}
func (s *Store) Levels() repository.InventoryLevelRepository { return NewInventoryLevelRepository(s.q) }
func (s *Store) Analytics() repository.AnalyticsRepository { return NewAnalyticsRepository(s.q) }
func (s *Store) Clients() repository.ClientRepository { return NewClientRepository(s.q) }
func (s *Store) Suppliers() repository.SupplierRepository { return NewSupplierRepository(s.q) }
func (s *Store) Batches() repository.BatchRepository { return NewBatchRepository(s.q) }
func (s *Store) PurchaseOrders() repository.PurchaseOrderRepository {
	return NewPurchaseOrderRepository(s.q)
}
func (s *Store) Receipts() repository.GoodsReceiptRepository { return NewGoodsReceiptRepository(s.q) }
func (s *Store) Inspections() repository.QualityInspectionRepository {
	return NewQualityInspectionRepository(s.q)
}
func (s *Store) Estimations() repository.EstimationRepository { return NewEstimationRepository(s.q) }
func (s *Store) Invoices() repository.InvoiceRepository { return NewInvoiceRepository(s.q) }
func (s *Store) BOMs() repository.BOMRepository { return NewBOMRepository(s.q) }
func (s *Store) WorkOrders() repository.WorkOrderRepository { return NewWorkOrderRepository(s.q) }
func (s *Store) Audit() repository.AuditLogRepository { return NewAuditLogRepository(s.q) }
func (s *Store) Sequences() repository.SequenceRepository { return NewSequenceRepository(s.q) }
