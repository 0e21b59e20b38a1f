package redis

import "time"

// Config holds Redis connection settings for the shared snapshot cache
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Namespace prefixes every key written by the store
	Namespace string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// DialTimeout bounds each connection attempt
	DialTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		Namespace:    keyPrefix,
		PoolSize:     2,
		MinIdleConns: 0,
		DialTimeout:  5 * time.Second,
	}
}
