package config

const EnvPrefix = "ASSETLEND"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv     = "ASSETLEND_APP_ENV"
	EnvPort       = "ASSETLEND_APP_PORT"
	EnvLogLevel   = "ASSETLEND_LOG_LEVEL"
	EnvDBDSN      = "ASSETLEND_DB_DSN"
	EnvDBDriver   = "ASSETLEND_DB_DRIVER"
	EnvDBHost     = "ASSETLEND_DB_HOST"
	EnvDBPort     = "ASSETLEND_DB_PORT"
	EnvDBUser     = "ASSETLEND_DB_USER"
	EnvDBPassword = "ASSETLEND_DB_PASSWORD"
	EnvDBName     = "ASSETLEND_DB_NAME"
	EnvRedisURL   = "ASSETLEND_REDIS_URL"
	EnvJWTSecret  = "ASSETLEND_JWT_SECRET"
	EnvJWTIssuer  = "ASSETLEND_JWT_ISSUER"
	EnvJWTExpMins = "ASSETLEND_JWT_EXPIRATION_MINUTES"
	EnvCORSOrigin = "ASSETLEND_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
