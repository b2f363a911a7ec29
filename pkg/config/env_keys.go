package config

// EnvPrefix is applied by envconfig when struct tags are absent.
const EnvPrefix = "RAWISES"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "RAWISES_APP_ENV"
	EnvAppPort = "RAWISES_APP_PORT"
	EnvDBDSN   = "RAWISES_DB_DSN"
	EnvDBHost  = "RAWISES_DB_HOST"
	EnvDBUser  = "RAWISES_DB_USER"
	EnvDBName  = "RAWISES_DB_NAME"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
