package repository

import "context"

// Store agrupa los repositorios atados a una misma conexión o transacción.
type Store interface {
	Companies() CompanyRepository
	Users() UserRepository
	Warehouses() WarehouseRepository
	Products() ProductRepository
	Stock() StockRepository
	Movements() InventoryMovementRepository
	Levels() InventoryLevelRepository
	Analytics() AnalyticsRepository
	Clients() ClientRepository
	Suppliers() SupplierRepository
	Batches() BatchRepository
	PurchaseOrders() PurchaseOrderRepository
	Receipts() GoodsReceiptRepository
	Inspections() QualityInspectionRepository
	Estimations() EstimationRepository
	Invoices() InvoiceRepository
	BOMs() BOMRepository
	WorkOrders() WorkOrderRepository
	Audit() AuditLogRepository
	Sequences() SequenceRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en cualquier error.
type TxRunner interface {
	Run(ctx context.Context, fn func(s Store) error) error
}
