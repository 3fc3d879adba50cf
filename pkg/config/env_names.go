package config

// EnvPrefix scopes every environment variable consumed by envconfig.
const EnvPrefix = "HAPPYCART"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "HAPPYCART_APP_ENV"
	EnvPort       = "HAPPYCART_APP_PORT"
	EnvDBDSN      = "HAPPYCART_DB_DSN"
	EnvDBHost     = "HAPPYCART_DB_HOST"
	EnvDBUser     = "HAPPYCART_DB_USER"
	EnvDBName     = "HAPPYCART_DB_NAME"
	EnvRedisURL   = "HAPPYCART_REDIS_URL"
	EnvJWTSecret  = "HAPPYCART_JWT_SECRET"
	EnvJWTIssuer  = "HAPPYCART_JWT_ISSUER"
	EnvJWTExpMins = "HAPPYCART_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
