// Package engine provides the chronoplan engine service
package engine

import (
	"errors"
	"fmt"

	"github.com/Predictia/chronoplan/pkg/api"
	"github.com/Predictia/chronoplan/pkg/archive"
	"github.com/Predictia/chronoplan/pkg/redis"
	"github.com/Predictia/chronoplan/pkg/source"
	"github.com/Predictia/chronoplan/pkg/tasks"
	"github.com/Predictia/chronoplan/pkg/worker"
)

var (
	// ErrQueryNameRequired is returned when a configured query has no name
	ErrQueryNameRequired = errors.New("query name is required")
	// ErrDuplicateQueryName is returned when two queries share a name
	ErrDuplicateQueryName = errors.New("duplicate query name")
)

// Config represents the complete engine configuration
type Config struct {
	// Core settings
	Logging         string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`
	MetricsAddr     string `yaml:"metricsAddr" default:":9091"`
	HealthCheckAddr string `yaml:"healthCheckAddr"`
	PProfAddr       string `yaml:"pprofAddr"`

	// Dependencies
	Archive archive.Config `yaml:"archive"`
	Redis   redis.Config   `yaml:"redis"`

	// Worker specific settings
	Worker worker.Config `yaml:"worker"`

	// API service configuration
	API api.Config `yaml:"api"`

	// Prefetch refresh scheduling
	Prefetch PrefetchConfig `yaml:"prefetch"`

	// Queries registered at startup
	Queries []*source.Config `yaml:"queries"`
}

// PrefetchConfig controls the periodic cache-warming loop
type PrefetchConfig struct {
	Enabled  bool   `yaml:"enabled" default:"false"`
	Schedule string `yaml:"schedule" default:"@every 30m"`
}

// Validate validates the prefetch configuration
func (c *PrefetchConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	_, err := tasks.ParseScheduleInterval(c.Schedule)

	return err
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Archive.Validate(); err != nil {
		return err
	}

	if err := c.Redis.Validate(); err != nil {
		return err
	}

	if err := c.Worker.Validate(); err != nil {
		return err
	}

	if err := c.API.Validate(); err != nil {
		return err
	}

	if err := c.Prefetch.Validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Queries))
	for i, query := range c.Queries {
		if query.Name == "" {
			return fmt.Errorf("%w: query %d", ErrQueryNameRequired, i)
		}
		if seen[query.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateQueryName, query.Name)
		}
		seen[query.Name] = true

		if err := query.Validate(); err != nil {
			return fmt.Errorf("query %q: %w", query.Name, err)
		}
	}

	return nil
}
