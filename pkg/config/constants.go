package config

// EnvPrefix is intentionally empty: every field carries its fully-qualified
// VENDORHUB_ variable name in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "VENDORHUB_APP_ENV"
	EnvAppPort = "VENDORHUB_APP_PORT"

	EnvDBDSN  = "VENDORHUB_DB_DSN"
	EnvDBHost = "VENDORHUB_DB_HOST"
	EnvDBUser = "VENDORHUB_DB_USER"
	EnvDBName = "VENDORHUB_DB_NAME"

	EnvRedisURL = "VENDORHUB_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
