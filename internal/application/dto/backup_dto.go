package dto

import "time"

// DumpResult resumen de un volcado exportado o importado.
type DumpResult struct {
	Key        string         `json:"key"`
	CompanyID  string         `json:"company_id"`
	Rows       map[string]int `json:"rows"`
	Skipped    map[string]int `json:"skipped,omitempty"` // filas que ya existían (import)
	FinishedAt time.Time      `json:"finished_at"`
}

// DumpImportRequest body de POST /api/admin/dumps/import.
type DumpImportRequest struct {
	Key string `json:"key" validate:"required"`
}

// DumpListResponse llaves de volcados disponibles.
type DumpListResponse struct {
	Keys []string `json:"keys"`
}
