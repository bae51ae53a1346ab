package config

// EnvPrefix is handed to envconfig; every field carries its full name via tags.
const EnvPrefix = "RETAILDASH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
	CacheDriverNone   = "none"

	WarehouseDriverBigQuery = "bigquery"
	WarehouseDriverDuckDB   = "duckdb"
)

const (
	EnvAppEnv   = "RETAILDASH_APP_ENV"
	EnvPort     = "RETAILDASH_APP_PORT"
	EnvLogLevel = "RETAILDASH_LOG_LEVEL"
	EnvCORS     = "RETAILDASH_CORS_ORIGINS"

	EnvDBDSN  = "RETAILDASH_DB_DSN"
	EnvDBHost = "RETAILDASH_DB_HOST"
	EnvDBUser = "RETAILDASH_DB_USER"
	EnvDBName = "RETAILDASH_DB_NAME"

	EnvRedisURL = "RETAILDASH_REDIS_URL"

	EnvCacheDriver  = "RETAILDASH_CACHE_DRIVER"
	EnvCacheEnabled = "RETAILDASH_CACHE_ENABLED"
	EnvCacheTTL     = "RETAILDASH_CACHE_DEFAULT_TTL"

	EnvGCPProjectID     = "RETAILDASH_GCP_PROJECT_ID"
	EnvWarehouseDriver  = "RETAILDASH_WAREHOUSE_DRIVER"
	EnvDuckDBPath       = "RETAILDASH_DUCKDB_PATH"
	EnvCronInterval     = "RETAILDASH_CRON_INTERVAL"
	EnvCronWarmPlatform = "RETAILDASH_CRON_WARM_PLATFORMS"

	EnvPubSubInvalidationSub = "RETAILDASH_PUBSUB_INVALIDATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
