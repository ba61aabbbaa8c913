package request

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Predictia/chronoplan/pkg/timeaxis"
)

// Builder derives the concrete request for a partition index. Builders are
// immutable after construction and safe for concurrent use.
type Builder struct {
	template    Template
	start       time.Time
	aggregation timeaxis.Freq
	timestep    timeaxis.Freq
	wire        WireFormatter
	steps       []int
	count       int
	param       string
	stepMode    bool
}

// NewDateBuilder returns a builder that addresses partitions by calendar
// date: partition i covers the i-th aggregation period from start. An empty
// param leaves the archive's catalog default in place.
func NewDateBuilder(template Template, start time.Time, count int, aggregation, timestep timeaxis.Freq, wire WireFormatter, param string) (*Builder, error) {
	if wire == nil {
		return nil, ErrNilFormatter
	}

	return &Builder{
		template:    template,
		start:       start,
		count:       count,
		aggregation: aggregation,
		timestep:    timestep,
		wire:        wire,
		param:       param,
	}, nil
}

// NewStepBuilder returns a builder that addresses partitions by integer
// step offset from the archive's base reference time.
func NewStepBuilder(template Template, steps []int, param string) *Builder {
	return &Builder{
		template: template,
		steps:    steps,
		count:    len(steps),
		param:    param,
		stepMode: true,
	}
}

// Partitions returns how many partition indices the builder accepts.
func (b *Builder) Partitions() int {
	return b.count
}

// Build returns the resolved request for partition i. The result is a
// private clone of the template; repeated calls for the same i are
// equivalent.
func (b *Builder) Build(i int) (Request, error) {
	if i < 0 || i >= b.count {
		return nil, fmt.Errorf("%w: %d of %d", ErrPartitionOutOfRange, i, b.count)
	}

	req := b.template.Clone()

	if b.stepMode {
		req[KeyStep] = strconv.Itoa(b.steps[i])
	} else {
		at := b.aggregation.Add(b.start, i)
		dateField, timeField, err := b.wire.Format(at.Format("20060102"), at.Format("1504"), b.aggregation, b.timestep)
		if err != nil {
			return nil, err
		}
		req[KeyDate] = dateField
		req[KeyTime] = timeField
	}

	if b.param != "" {
		req[KeyParam] = b.param
	}

	return req, nil
}
