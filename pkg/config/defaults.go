package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "locomotion"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024  // 1MB
	DefaultMaxUploadSize  = 10 * 1024 * 1024 // 10MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPlatformFeePercent = 10
	DefaultDefaultCity        = "Austin"
	DefaultDefaultSlotPrice   = 50.0
	DefaultSeedDefaultSlots   = true

	DefaultBookingEventTopic = "booking-events"

	DefaultPaginationLimit = 100
)

// Onboarding seeds one slot per content type this many days out.
var DefaultSeedSlotOffsets = []int{2, 4, 6}
