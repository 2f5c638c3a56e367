package dto

// ExportQuery parámetros de GET /api/exports/:dataset.
type ExportQuery struct {
	Format      string `query:"format" validate:"omitempty,oneof=csv xlsx CSV XLSX"`
	POID        string `query:"po_id"`
	WarehouseID string `query:"warehouse_id"`
	Status      string `query:"status"`
	EntityType  string `query:"entity_type"`
	From        string `query:"from"`
	To          string `query:"to"`
}
