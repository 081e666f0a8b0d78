package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvStorageBaseURL = "STORAGE_BASE_URL"
	EnvStorageToken   = "STORAGE_TOKEN"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvPlatformFeePercent = "PLATFORM_FEE_PERCENT"
	EnvDefaultCity        = "DEFAULT_CITY"
	EnvDefaultSlotPrice   = "DEFAULT_SLOT_PRICE"
	EnvSeedDefaultSlots   = "SEED_DEFAULT_SLOTS"

	EnvKafkaEnabled      = "KAFKA_ENABLED"
	EnvBookingEventTopic = "BOOKING_EVENT_TOPIC"
)
