// Package redis caches fetched partitions in Redis so repeated reads of the
// same query skip the archive entirely.
package redis

import "errors"

// Static errors for cache configuration
var (
	// ErrAddressRequired is returned when no Redis address is configured
	ErrAddressRequired = errors.New("redis address is required")
)

// defaultPrefix namespaces cache keys when the configuration leaves the
// prefix empty.
const defaultPrefix = "chronoplan"

// Config holds the Redis connection settings for the partition cache.
type Config struct {
	// Address is the host:port of the Redis server
	Address string `yaml:"address"`
	// Prefix namespaces every key written by this instance
	Prefix string `yaml:"prefix"`
}

// Validate checks the configuration and fills the key prefix default.
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrAddressRequired
	}

	if c.Prefix == "" {
		c.Prefix = defaultPrefix
	}

	return nil
}

// PrefixKey namespaces a cache key with the configured prefix.
func (c *Config) PrefixKey(key string) string {
	if c.Prefix == "" {
		return key
	}

	return c.Prefix + ":" + key
}
