package config

// EnvPrefix is the envconfig prefix applied to every variable.
const EnvPrefix = "bazarly"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv = "BAZARLY_APP_ENV"
	EnvPort   = "BAZARLY_APP_PORT"

	EnvDBDSN  = "BAZARLY_DB_DSN"
	EnvDBHost = "BAZARLY_DB_HOST"
	EnvDBUser = "BAZARLY_DB_USER"
	EnvDBName = "BAZARLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
