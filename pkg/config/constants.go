package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "channelstock"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv  = "CHANNELSTOCK_APP_ENV"
	EnvAppPort = "CHANNELSTOCK_APP_PORT"

	EnvDBDSN  = "CHANNELSTOCK_DB_DSN"
	EnvDBHost = "CHANNELSTOCK_DB_HOST"
	EnvDBUser = "CHANNELSTOCK_DB_USER"
	EnvDBName = "CHANNELSTOCK_DB_NAME"

	EnvRedisURL     = "CHANNELSTOCK_REDIS_URL"
	EnvJWTSecret    = "CHANNELSTOCK_JWT_SECRET"
	EnvJWTIssuer    = "CHANNELSTOCK_JWT_ISSUER"
	EnvGCPProjectID = "CHANNELSTOCK_GCP_PROJECT_ID"
	EnvPubSubSync   = "CHANNELSTOCK_PUBSUB_SYNC_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
