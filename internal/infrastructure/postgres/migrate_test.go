package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/erp?sslmode=disable", migrateURL("postgres://u:p@db:5432/erp?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/erp", migrateURL("postgresql://u@db/erp"))
	assert.Equal(t, "pgx5://ya", migrateURL("pgx5://ya"))
}

func TestMigrationsEmbebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	assert.True(t, names["000001_init_schema.up.sql"])
	assert.True(t, names["000001_init_schema.down.sql"])
}
