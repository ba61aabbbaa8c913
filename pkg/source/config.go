// Package source exposes a retrieval query as a lazily-partitioned dataset:
// it reports the partition count up front and fetches partitions on demand,
// each through its own privately-cloned archive request.
package source

import (
	"errors"
	"time"

	"github.com/Predictia/chronoplan/pkg/calendar"
	"github.com/Predictia/chronoplan/pkg/timeaxis"
)

// Static errors for source configuration
var (
	// ErrUnknownMode is returned for an addressing mode other than date or step
	ErrUnknownMode = errors.New("addressing mode must be date or step")
	// ErrAggregationRequired is returned when date mode has no aggregation frequency to fall back on
	ErrAggregationRequired = errors.New("aggregation frequency is required in date mode")
	// ErrStepConfigRequired is returned when step mode lacks a base time or step seconds
	ErrStepConfigRequired = errors.New("step mode requires baseDate and stepSeconds")
)

// Config describes one retrieval query: the window, the addressing mode and
// the immutable request template seed.
type Config struct {
	// Name identifies the query in the registry and the partition cache.
	// Optional; unnamed queries get a generated ID.
	Name string `yaml:"name,omitempty"`

	// Mode selects date or step addressing
	Mode string `yaml:"mode" default:"date"`

	// Window is the requested time window against the archive
	Window timeaxis.TimeSpec `yaml:"window"`

	// DataEnd optionally names the archive's last available record; when
	// set, the requested window must fall inside the archive bounds
	DataEnd string `yaml:"dataEnd,omitempty"`

	// Aggregation is the per-partition period size in date mode; defaults
	// to the window's chunk frequency
	Aggregation string `yaml:"aggregation,omitempty"`

	// BaseDate/BaseTime anchor step addressing; StepSeconds is the step grid
	BaseDate    string `yaml:"baseDate,omitempty"`
	BaseTime    string `yaml:"baseTime,omitempty"`
	StepSeconds int64  `yaml:"stepSeconds,omitempty"`

	// Param optionally overrides the archive's catalog default parameter
	Param string `yaml:"param,omitempty"`

	// Request seeds the immutable request template
	Request map[string]string `yaml:"request,omitempty"`

	// Concurrency bounds parallel partition fetches during a full read
	Concurrency int `yaml:"concurrency" default:"4"`

	// CacheTTL bounds how long fetched partitions stay cached
	CacheTTL time.Duration `yaml:"cacheTTL" default:"1h"`
}

// Validate checks the configuration is a usable query.
func (c *Config) Validate() error {
	switch c.Mode {
	case "", "date":
		c.Mode = "date"
		if c.Aggregation == "" {
			c.Aggregation = c.Window.ChunkFreq
		}
		if c.Aggregation == "" {
			c.Aggregation = c.Window.Timestep
		}
		if c.Aggregation == "" {
			return ErrAggregationRequired
		}
		if c.DataEnd != "" {
			if err := calendar.ValidateWindow(
				c.Window.RequestStart, c.Window.DataStart,
				c.Window.RequestEnd, c.DataEnd,
			); err != nil {
				return err
			}
		}
	case "step":
		if c.BaseDate == "" || c.StepSeconds == 0 {
			return ErrStepConfigRequired
		}
		if c.BaseTime == "" {
			// A combined baseDate token carries its own clock.
			c.BaseDate, c.BaseTime = calendar.SplitDateTime(c.BaseDate, "0000")
		}
	default:
		return ErrUnknownMode
	}

	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}

	return nil
}
