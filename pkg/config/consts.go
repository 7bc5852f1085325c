package config

const (
	EnvPrefix = "homechef"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv      = "HOMECHEF_APP_ENV"
	EnvPort        = "HOMECHEF_APP_PORT"
	EnvDBDSN       = "HOMECHEF_DB_DSN"
	EnvDBHost      = "HOMECHEF_DB_HOST"
	EnvDBUser      = "HOMECHEF_DB_USER"
	EnvDBName      = "HOMECHEF_DB_NAME"
	EnvRedisURL    = "HOMECHEF_REDIS_URL"
	EnvRealtimeURL = "HOMECHEF_REALTIME_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
