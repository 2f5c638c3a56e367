package dto

import (
	"encoding/json"
	"time"
)

// AuditQuery filtros de GET /api/audit-logs. From/To en RFC3339 o YYYY-MM-DD.
type AuditQuery struct {
	EntityType string `query:"entity_type"`
	EntityID   string `query:"entity_id"`
	From       string `query:"from"`
	To         string `query:"to"`
	PageRequest
}

// AuditLogResponse entrada de auditoría.
type AuditLogResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Before     json.RawMessage `json:"before,omitempty" swaggertype:"object"`
	After      json.RawMessage `json:"after,omitempty" swaggertype:"object"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditLogListResponse entradas de auditoría.
type AuditLogListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
