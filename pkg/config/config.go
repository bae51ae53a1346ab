package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	Cache     CacheConfig
	GCP       GCPConfig
	BigQuery  BigQueryConfig
	Warehouse WarehouseConfig
	Locations LocationsConfig
	Cron      CronConfig
	PubSub    PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Warehouse.validate(cfg.GCP); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RETAILDASH_APP_ENV" required:"true"`
	Port         string `envconfig:"RETAILDASH_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RETAILDASH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RETAILDASH_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the dashboard front-ends allowed to call the API.
	CORSOrigins []string `envconfig:"RETAILDASH_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"RETAILDASH_SERVICE_KIND" default:"api"`
}

// DBConfig describes the row store (sales facts + location lookup).
type DBConfig struct {
	DSN    string `envconfig:"RETAILDASH_DB_DSN"`
	Driver string `envconfig:"RETAILDASH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RETAILDASH_DB_HOST"`
	LegacyPort     int    `envconfig:"RETAILDASH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RETAILDASH_DB_USER"`
	LegacyPassword string `envconfig:"RETAILDASH_DB_PASSWORD"`
	LegacyName     string `envconfig:"RETAILDASH_DB_NAME"`
	LegacySSLMode  string `envconfig:"RETAILDASH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RETAILDASH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RETAILDASH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RETAILDASH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RETAILDASH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	QueryTimeout    time.Duration `envconfig:"RETAILDASH_DB_QUERY_TIMEOUT" default:"30s"`
	// SlowQueryThreshold logs row-store queries at warn once they run this long.
	SlowQueryThreshold time.Duration `envconfig:"RETAILDASH_DB_SLOW_QUERY" default:"2s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RETAILDASH_REDIS_URL"`
	Address      string        `envconfig:"RETAILDASH_REDIS_ADDR"`
	Password     string        `envconfig:"RETAILDASH_REDIS_PASSWORD"`
	DB           int           `envconfig:"RETAILDASH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RETAILDASH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RETAILDASH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RETAILDASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RETAILDASH_REDIS_READ_TIMEOUT" default:"2s"`
	WriteTimeout time.Duration `envconfig:"RETAILDASH_REDIS_WRITE_TIMEOUT" default:"2s"`
}

// Configured reports whether any redis endpoint was supplied.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// CacheConfig controls the metrics cache in front of both data stores.
type CacheConfig struct {
	Driver          string        `envconfig:"RETAILDASH_CACHE_DRIVER" default:"redis"`
	Enabled         bool          `envconfig:"RETAILDASH_CACHE_ENABLED" default:"true"`
	Coalesce        bool          `envconfig:"RETAILDASH_CACHE_COALESCE" default:"true"`
	DefaultTTL      time.Duration `envconfig:"RETAILDASH_CACHE_DEFAULT_TTL" default:"15m"`
	OverviewTTL     time.Duration `envconfig:"RETAILDASH_CACHE_OVERVIEW_TTL" default:"10m"`
	BreakdownTTL    time.Duration `envconfig:"RETAILDASH_CACHE_BREAKDOWN_TTL" default:"30m"`
	TrendTTL        time.Duration `envconfig:"RETAILDASH_CACHE_TREND_TTL" default:"1h"`
	WatchtowerTTL   time.Duration `envconfig:"RETAILDASH_CACHE_WATCHTOWER_TTL" default:"30m"`
	BreakerFailures uint32        `envconfig:"RETAILDASH_CACHE_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"RETAILDASH_CACHE_BREAKER_TIMEOUT" default:"30s"`
	OpTimeout       time.Duration `envconfig:"RETAILDASH_CACHE_OP_TIMEOUT" default:"500ms"`
	RedialInterval  time.Duration `envconfig:"RETAILDASH_CACHE_REDIAL_INTERVAL" default:"5s"`
}

// DriverName returns the normalized cache driver (redis/memory/none).
func (c CacheConfig) DriverName() string {
	driver := strings.TrimSpace(strings.ToLower(c.Driver))
	if !c.Enabled || driver == "" {
		return CacheDriverNone
	}
	return driver
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RETAILDASH_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"RETAILDASH_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"RETAILDASH_GOOGLE_APPLICATION_CREDENTIALS"`
}

type BigQueryConfig struct {
	Dataset       string `envconfig:"RETAILDASH_BIGQUERY_DATASET" default:"retail_dashboard"`
	PlatformTable string `envconfig:"RETAILDASH_BIGQUERY_PLATFORM_TABLE" default:"platform_daily"`
	Location      string `envconfig:"RETAILDASH_BIGQUERY_LOCATION"`
	// MaxBytesBilled fails a query that would scan more; zero leaves the project default.
	MaxBytesBilled int64 `envconfig:"RETAILDASH_BIGQUERY_MAX_BYTES_BILLED" default:"0"`
}

// WarehouseConfig selects the column store backend.
type WarehouseConfig struct {
	Driver     string        `envconfig:"RETAILDASH_WAREHOUSE_DRIVER" default:"bigquery"`
	DuckDBPath string        `envconfig:"RETAILDASH_DUCKDB_PATH" default:""`
	Table      string        `envconfig:"RETAILDASH_DUCKDB_TABLE" default:"platform_daily"`
	Timeout    time.Duration `envconfig:"RETAILDASH_WAREHOUSE_TIMEOUT" default:"60s"`
}

// DriverName returns the normalized warehouse driver.
func (w WarehouseConfig) DriverName() string {
	driver := strings.TrimSpace(strings.ToLower(w.Driver))
	if driver == "" {
		return WarehouseDriverBigQuery
	}
	return driver
}

func (w WarehouseConfig) validate(gcp GCPConfig) error {
	switch w.DriverName() {
	case WarehouseDriverBigQuery:
		if strings.TrimSpace(gcp.ProjectID) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvGCPProjectID, EnvWarehouseDriver, WarehouseDriverBigQuery)
		}
		return nil
	case WarehouseDriverDuckDB:
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvWarehouseDriver, w.Driver)
	}
}

type LocationsConfig struct {
	RefreshInterval time.Duration `envconfig:"RETAILDASH_LOCATIONS_REFRESH" default:"1h"`
}

type CronConfig struct {
	Interval      time.Duration `envconfig:"RETAILDASH_CRON_INTERVAL" default:"15m"`
	LockTTL       time.Duration `envconfig:"RETAILDASH_CRON_LOCK_TTL" default:"14m"`
	WarmPlatforms []string      `envconfig:"RETAILDASH_CRON_WARM_PLATFORMS"`
}

type PubSubConfig struct {
	InvalidationSubscription string `envconfig:"RETAILDASH_PUBSUB_INVALIDATION_SUBSCRIPTION"`
	MaxOutstandingMessages   int    `envconfig:"RETAILDASH_PUBSUB_MAX_OUTSTANDING" default:"10"`
	NumGoroutines            int    `envconfig:"RETAILDASH_PUBSUB_GOROUTINES" default:"1"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
