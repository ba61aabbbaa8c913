// Package archive provides the HTTP client toward the remote archive
// backend. The planner hands it fully-resolved requests; retries and
// authentication policy live on the backend side, never here.
package archive

import (
	"errors"
	"time"
)

// Static errors for configuration validation
var (
	ErrURLRequired = errors.New("archive URL is required")
)

// Config contains archive backend connection settings
type Config struct {
	URL          string        `yaml:"url" validate:"required,url"`
	QueryTimeout time.Duration `yaml:"queryTimeout"`
	KeepAlive    time.Duration `yaml:"keepAlive"`
	Document     string        `yaml:"document,omitempty"`
	Debug        bool          `yaml:"debug"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrURLRequired
	}

	return nil
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 60 * time.Second
	}

	if c.KeepAlive == 0 {
		c.KeepAlive = 30 * time.Second
	}
}
