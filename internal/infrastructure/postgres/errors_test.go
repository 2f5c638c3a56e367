package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "products_company_id_sku_key"}, domain.ErrDuplicate},
		{"fk", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, domain.ErrNotFound},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, domain.ErrInvalidInput},
		{"serialization", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, domain.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPostgresError("op", tt.err)
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
		})
	}

	assert.NoError(t, mapPostgresError("op", nil))
	plain := errors.New("boom")
	assert.True(t, errors.Is(mapPostgresError("op", plain), plain))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.CheckViolation}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
	assert.True(t, isNoRows(pgx.ErrNoRows))
}

func TestRetryable(t *testing.T) {
	serialization := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	assert.True(t, retryable(serialization))
	assert.True(t, retryable(mapPostgresError("update batch", &pgconn.PgError{Code: pgerrcode.DeadlockDetected})))
	assert.False(t, retryable(&pgconn.PgError{Code: pgerrcode.LockNotAvailable}))
	assert.False(t, retryable(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, retryable(errors.New("40001")))
}
