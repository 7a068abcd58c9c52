package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "greencart"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "GREENCART_APP_ENV"
	EnvPort       = "GREENCART_APP_PORT"
	EnvDBDSN      = "GREENCART_DB_DSN"
	EnvDBHost     = "GREENCART_DB_HOST"
	EnvDBUser     = "GREENCART_DB_USER"
	EnvDBName     = "GREENCART_DB_NAME"
	EnvRedisURL   = "GREENCART_REDIS_URL"
	EnvJWTSecret  = "GREENCART_JWT_SECRET"
	EnvJWTIssuer  = "GREENCART_JWT_ISSUER"
	EnvJWTExpMins = "GREENCART_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
