// Package shared reúne utilidades comunes de los casos de uso: auditoría y consecutivos.
package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// AuditEntry datos de una entrada de auditoría. Before/After se serializan a JSON.
type AuditEntry struct {
	CompanyID  string
	UserID     string
	EntityType string
	EntityID   string
	Action     string
	Before     any
	After      any
	At         time.Time
}

// Record escribe la entrada con los repositorios de s (la misma transacción del caller).
func Record(ctx context.Context, s repository.Store, e AuditEntry) error {
	before, err := snapshot(e.Before)
	if err != nil {
		return fmt.Errorf("audit before: %w", err)
	}
	after, err := snapshot(e.After)
	if err != nil {
		return fmt.Errorf("audit after: %w", err)
	}
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	return s.Audit().Create(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		CompanyID:  e.CompanyID,
		UserID:     e.UserID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		Before:     before,
		After:      after,
		CreatedAt:  at,
	})
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(b, []byte("null")) {
		return nil, nil
	}
	return b, nil
}
