package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvWebhookAppSecret = "WEBHOOK_APP_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMaxDailyAttacks    = "RAID_MAX_DAILY_ATTACKS"
	EnvLeftoverMinSeconds = "RAID_LEFTOVER_MIN_SECONDS"
	EnvLeftoverMaxSeconds = "RAID_LEFTOVER_MAX_SECONDS"

	EnvDisplayBaseURL     = "DISPLAY_BASE_URL"
	EnvCorrelationSealKey = "CORRELATION_SEAL_KEY"
)
