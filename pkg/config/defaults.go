package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "raidledger"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Product rule, not an engine invariant: how many non-carry attacks a
	// participant may settle per period day.
	DefaultMaxDailyAttacks = 3

	// Leftover time window for a confirmed kill, in seconds.
	DefaultLeftoverMinSeconds = 20
	DefaultLeftoverMaxSeconds = 90

	// Development fallback only; production deployments set
	// CORRELATION_SEAL_KEY to a dedicated 32-byte key.
	DefaultCorrelationSealKey = "fY3k1Zb8pQW7vNxT2sLr5mCeJhA9dRgB0uKoPnEiMtU="
)
