package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "DUKKAN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DUKKAN_DB_DSN"
	EnvDBHost = "DUKKAN_DB_HOST"
	EnvDBUser = "DUKKAN_DB_USER"
	EnvDBName = "DUKKAN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
