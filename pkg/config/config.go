package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App        AppConfig
	DB         DBConfig
	JWT        JWTConfig
	HTTP       HTTPConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Receipt    ReceiptConfig
	Allocation AllocationConfig
	Telemetry  TelemetryConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL    string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	ConnectRetries int
	TxRetries      int // reintentos ante serialization_failure / deadlock
	AutoMigrate    bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión a Redis para llaves de idempotencia. Addr vacío = almacén en memoria.
type RedisConfig struct {
	Addr                  string
	Password              string
	DB                    int
	IdempotencyTTLMinutes int
}

// StorageConfig destino de los respaldos (dumps). Driver: "local" o "s3".
type StorageConfig struct {
	Driver       string
	LocalDir     string
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// ReceiptConfig tolerancias de la validación OC-recepción (porcentajes).
type ReceiptConfig struct {
	OverTolerancePct  float64
	PriceTolerancePct float64
	StrictPrice       bool
}

// AllocationConfig parámetros de la asignación de lotes.
type AllocationConfig struct {
	DefaultStrategy   string
	ExpiryHorizonDays int
	WeightExpiry      float64
	WeightAge         float64
	WeightFit         float64
}

// TelemetryConfig trazas OTLP y métricas Prometheus.
type TelemetryConfig struct {
	OTLPEndpoint   string
	MetricsEnabled bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración a partir de una instancia de Viper ya poblada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "erp-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:    getString(v, "DATABASE_URL", ""),
			Host:           getString(v, "DB_HOST", "localhost"),
			Port:           getInt(v, "DB_PORT", 5432),
			User:           getString(v, "DB_USER", "postgres"),
			Password:       getString(v, "DB_PASSWORD", ""),
			DBName:         getString(v, "DB_NAME", "erp"),
			SSLMode:        getString(v, "DB_SSLMODE", "disable"),
			MaxConns:       getInt(v, "DB_MAX_CONNS", 25),
			ConnectRetries: getInt(v, "DB_CONNECT_RETRIES", 5),
			TxRetries:      getInt(v, "DB_TX_RETRIES", 3),
			AutoMigrate:    getBool(v, "DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "erp-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:                  getString(v, "REDIS_ADDR", ""),
			Password:              getString(v, "REDIS_PASSWORD", ""),
			DB:                    getInt(v, "REDIS_DB", 0),
			IdempotencyTTLMinutes: getInt(v, "IDEMPOTENCY_TTL_MINUTES", 1440),
		},
		Storage: StorageConfig{
			Driver:       getString(v, "STORAGE_DRIVER", "local"),
			LocalDir:     getString(v, "STORAGE_LOCAL_DIR", "./dumps"),
			Endpoint:     getString(v, "S3_ENDPOINT", ""),
			Region:       getString(v, "S3_REGION", "us-east-1"),
			Bucket:       getString(v, "S3_BUCKET", ""),
			AccessKey:    getString(v, "S3_ACCESS_KEY", ""),
			SecretKey:    getString(v, "S3_SECRET_KEY", ""),
			UsePathStyle: getBool(v, "S3_USE_PATH_STYLE", true),
		},
		Receipt: ReceiptConfig{
			OverTolerancePct:  getFloat(v, "RECEIPT_OVER_TOLERANCE_PCT", 5),
			PriceTolerancePct: getFloat(v, "RECEIPT_PRICE_TOLERANCE_PCT", 10),
			StrictPrice:       getBool(v, "RECEIPT_STRICT_PRICE", false),
		},
		Allocation: AllocationConfig{
			DefaultStrategy:   strings.ToUpper(getString(v, "ALLOCATION_DEFAULT_STRATEGY", "SMART")),
			ExpiryHorizonDays: getInt(v, "ALLOCATION_EXPIRY_HORIZON_DAYS", 90),
			WeightExpiry:      getFloat(v, "ALLOCATION_WEIGHT_EXPIRY", 0.5),
			WeightAge:         getFloat(v, "ALLOCATION_WEIGHT_AGE", 0.3),
			WeightFit:         getFloat(v, "ALLOCATION_WEIGHT_FIT", 0.2),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint:   getString(v, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			MetricsEnabled: getBool(v, "METRICS_ENABLED", true),
		},
	}

	if cfg.App.Env == "production" && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio en producción")
	}
	if cfg.Storage.Driver != "local" && cfg.Storage.Driver != "s3" {
		return nil, fmt.Errorf("config: STORAGE_DRIVER inválido %q", cfg.Storage.Driver)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		if s, ok := v.Get(key).(string); ok {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return def
			}
			return f
		}
		return v.GetFloat64(key)
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		if s, ok := v.Get(key).(string); ok {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return def
			}
			return b
		}
		return v.GetBool(key)
	}
	return def
}
