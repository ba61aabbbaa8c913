// Package partition plans how a retrieval window splits into
// independently-fetchable partitions, either as a count of
// aggregation-sized periods or as an explicit list of integer steps from a
// base reference time.
package partition

import (
	"errors"
	"fmt"
	"time"

	"github.com/Predictia/chronoplan/pkg/calendar"
	"github.com/Predictia/chronoplan/pkg/timeaxis"
)

// Static errors for partition planning
var (
	// ErrNonPositiveStep is returned when the step interval is zero or negative
	ErrNonPositiveStep = errors.New("step interval must be positive")
	// ErrInvertedStepWindow is returned when the step window end precedes its start
	ErrInvertedStepWindow = errors.New("step window end precedes start")
	// ErrStartBeforeData is returned when the requested start precedes the archive data start
	ErrStartBeforeData = errors.New("requested start precedes archive data start")
	// ErrInvertedWindow is returned when the requested window is inverted
	ErrInvertedWindow = errors.New("requested start is after requested end")
)

// Mode selects how partitions address the archive.
type Mode string

const (
	// ModeDate addresses partitions by calendar date/time
	ModeDate Mode = "date"
	// ModeStep addresses partitions by integer step offset from a base time
	ModeStep Mode = "step"
)

// Plan is the partitioning decision for one query: a partition count in
// date mode, or the explicit ordered step list in step mode.
type Plan struct {
	Mode  Mode  `json:"mode"`
	Count int   `json:"count"`
	Steps []int `json:"steps,omitempty"`
}

// Partitions returns how many partitions the plan addresses.
func (p *Plan) Partitions() int {
	if p.Mode == ModeStep {
		return len(p.Steps)
	}
	return p.Count
}

// Count computes the number of aggregation-sized periods spanning the
// requested window. The host framework needs this before any data is
// touched.
func Count(dataStart, requestStart, requestEnd string, aggregation timeaxis.Freq) (int, error) {
	ds, err := calendar.ToTimestamp(dataStart)
	if err != nil {
		return 0, err
	}
	rs, err := calendar.ToTimestamp(requestStart)
	if err != nil {
		return 0, err
	}
	re, err := calendar.ToTimestamp(requestEnd)
	if err != nil {
		return 0, err
	}

	if rs.Before(ds) {
		return 0, fmt.Errorf("%w: %s < %s", ErrStartBeforeData, requestStart, dataStart)
	}
	if re.Before(rs) {
		return 0, fmt.Errorf("%w: %s > %s", ErrInvertedWindow, requestStart, requestEnd)
	}

	return timeaxis.CountTicks(rs, re, aggregation), nil
}

// StepRange computes the inclusive integer step list covering
// [requestStart, requestEnd] on a dtSeconds grid anchored at base, using
// floor division on elapsed seconds. Steps before the base are negative.
// An inverted window is rejected rather than producing a reversed list.
func StepRange(base, requestStart, requestEnd time.Time, dtSeconds int64) ([]int, error) {
	if dtSeconds <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositiveStep, dtSeconds)
	}
	if requestEnd.Before(requestStart) {
		return nil, fmt.Errorf("%w: %s > %s",
			ErrInvertedStepWindow, requestStart.Format(time.RFC3339), requestEnd.Format(time.RFC3339))
	}

	step0 := floorDiv(requestStart.Unix()-base.Unix(), dtSeconds)
	step1 := floorDiv(requestEnd.Unix()-base.Unix(), dtSeconds)

	steps := make([]int, 0, int(step1-step0+1))
	for s := step0; s <= step1; s++ {
		steps = append(steps, int(s))
	}

	return steps, nil
}

// StepRangeTokens is StepRange over unparsed date/time tokens: a base date
// with a separate base time field, and combined window tokens.
func StepRangeTokens(baseDate, baseTime, requestStart, requestEnd string, dtSeconds int64) ([]int, error) {
	base, err := calendar.Combine(baseDate, baseTime)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	rs, err := calendar.ToTimestamp(requestStart)
	if err != nil {
		return nil, fmt.Errorf("request start: %w", err)
	}
	re, err := calendar.ToTimestamp(requestEnd)
	if err != nil {
		return nil, fmt.Errorf("request end: %w", err)
	}

	return StepRange(base, rs, re, dtSeconds)
}

// floorDiv rounds toward negative infinity, unlike Go's integer division.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
