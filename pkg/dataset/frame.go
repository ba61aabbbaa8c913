// Package dataset holds retrieved archive data in memory: an ordered time
// index with one value column per variable.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Static errors for frame assembly
var (
	// ErrVariableMismatch is returned when concatenated frames carry different variable sets
	ErrVariableMismatch = errors.New("frames carry different variable sets")
	// ErrLengthMismatch is returned when a variable column length differs from the time index
	ErrLengthMismatch = errors.New("variable column length differs from time index")
)

// Frame is one retrieved slab of archive data. Times is the time index in
// ascending order; Series maps variable names to value columns of the same
// length.
type Frame struct {
	Times  []time.Time          `json:"times"`
	Series map[string][]float64 `json:"series"`
}

// Len returns the number of time records in the frame.
func (f *Frame) Len() int {
	return len(f.Times)
}

// Variables returns the frame's variable names in sorted order.
func (f *Frame) Variables() []string {
	vars := make([]string, 0, len(f.Series))
	for name := range f.Series {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

// Validate checks that every value column matches the time index length.
func (f *Frame) Validate() error {
	for name, col := range f.Series {
		if len(col) != len(f.Times) {
			return fmt.Errorf("%w: %s has %d values for %d times",
				ErrLengthMismatch, name, len(col), len(f.Times))
		}
	}
	return nil
}

// ConcatTime concatenates frames along the time dimension in the order
// given. All frames must carry the same variable set; nil frames are
// skipped.
func ConcatTime(frames ...*Frame) (*Frame, error) {
	out := &Frame{Series: make(map[string][]float64)}

	var first *Frame
	for _, f := range frames {
		if f == nil {
			continue
		}

		if err := f.Validate(); err != nil {
			return nil, err
		}

		if first == nil {
			first = f
			for name := range f.Series {
				out.Series[name] = nil
			}
		} else if !sameVariables(first, f) {
			return nil, fmt.Errorf("%w: %v vs %v",
				ErrVariableMismatch, first.Variables(), f.Variables())
		}

		out.Times = append(out.Times, f.Times...)
		for name, col := range f.Series {
			out.Series[name] = append(out.Series[name], col...)
		}
	}

	return out, nil
}

func sameVariables(a, b *Frame) bool {
	if len(a.Series) != len(b.Series) {
		return false
	}
	for name := range a.Series {
		if _, ok := b.Series[name]; !ok {
			return false
		}
	}
	return true
}
