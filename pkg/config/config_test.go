package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 5.0, cfg.Receipt.OverTolerancePct)
	assert.Equal(t, 10.0, cfg.Receipt.PriceTolerancePct)
	assert.False(t, cfg.Receipt.StrictPrice)
	assert.Equal(t, "SMART", cfg.Allocation.DefaultStrategy)
	assert.Equal(t, 0.5, cfg.Allocation.WeightExpiry)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_OverridesDesdeStrings(t *testing.T) {
	v := viper.New()
	v.Set("DB_PORT", "6543")
	v.Set("RECEIPT_OVER_TOLERANCE_PCT", "2.5")
	v.Set("RECEIPT_STRICT_PRICE", "true")
	v.Set("ALLOCATION_DEFAULT_STRATEGY", "fefo")
	v.Set("STORAGE_DRIVER", "s3")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 2.5, cfg.Receipt.OverTolerancePct)
	assert.True(t, cfg.Receipt.StrictPrice)
	assert.Equal(t, "FEFO", cfg.Allocation.DefaultStrategy)
	assert.Equal(t, "s3", cfg.Storage.Driver)
}

func TestFromViper_ValorInvalidoUsaDefault(t *testing.T) {
	v := viper.New()
	v.Set("DB_PORT", "no-es-numero")
	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.DB.Port)
}

func TestFromViper_ProduccionSinSecret(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	_, err := FromViper(v)
	assert.Error(t, err)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "ftp")
	_, err := FromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "erp", Password: "p@ss:word", DBName: "erp", SSLMode: "disable"}
	assert.Equal(t, "postgres://erp:p%40ss%3Aword@db:5432/erp?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
