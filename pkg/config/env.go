package config

// EnvPrefix is handed to envconfig; every field also carries its full
// variable name so lookups fall back to the literal DENTAL_* key.
const EnvPrefix = "DENTAL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "DENTAL_APP_ENV"
	EnvPort     = "DENTAL_APP_PORT"
	EnvLogLevel = "DENTAL_LOG_LEVEL"

	EnvDBDSN  = "DENTAL_DB_DSN"
	EnvDBHost = "DENTAL_DB_HOST"
	EnvDBPort = "DENTAL_DB_PORT"
	EnvDBUser = "DENTAL_DB_USER"
	EnvDBPass = "DENTAL_DB_PASSWORD"
	EnvDBName = "DENTAL_DB_NAME"

	EnvRedisURL = "DENTAL_REDIS_URL"

	EnvJWTSecret               = "DENTAL_JWT_SECRET"
	EnvJWTIssuer               = "DENTAL_JWT_ISSUER"
	EnvJWTExpMins              = "DENTAL_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "DENTAL_REFRESH_TOKEN_TTL_MINUTES"
	EnvWriteRateLimitPerSecond = "DENTAL_WRITE_RATE_LIMIT_PER_SECOND"

	EnvGCPProjectID           = "DENTAL_GCP_PROJECT_ID"
	EnvPubSubNotifyTopic      = "DENTAL_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotifySub        = "DENTAL_PUBSUB_NOTIFICATION_SUBSCRIPTION"
	EnvSMTPHost               = "DENTAL_SMTP_HOST"
	EnvCORSAllowedOrigins     = "DENTAL_CORS_ALLOWED_ORIGINS"
	EnvOutboxPublishBatchSize = "DENTAL_OUTBOX_PUBLISH_BATCH_SIZE"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
