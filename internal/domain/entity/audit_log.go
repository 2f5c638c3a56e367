package entity

import (
	"encoding/json"
	"time"
)

// Acciones registradas en auditoría.
const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
	AuditStatus = "status"
)

// AuditLog registro de auditoría con el estado antes/después de la entidad.
type AuditLog struct {
	ID         string
	CompanyID  string
	UserID     string
	EntityType string
	EntityID   string
	Action     string
	Before     json.RawMessage
	After      json.RawMessage
	CreatedAt  time.Time
}
