package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestConcatTime(t *testing.T) {
	a := &Frame{
		Times:  []time.Time{day(1), day(2)},
		Series: map[string][]float64{"t2m": {271.1, 272.3}},
	}
	b := &Frame{
		Times:  []time.Time{day(3)},
		Series: map[string][]float64{"t2m": {270.4}},
	}

	got, err := ConcatTime(a, b)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Len())
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, got.Times)
	assert.Equal(t, []float64{271.1, 272.3, 270.4}, got.Series["t2m"])
}

func TestConcatTimeSkipsNil(t *testing.T) {
	a := &Frame{Times: []time.Time{day(1)}, Series: map[string][]float64{"t2m": {271.1}}}

	got, err := ConcatTime(nil, a, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestConcatTimeVariableMismatch(t *testing.T) {
	a := &Frame{Times: []time.Time{day(1)}, Series: map[string][]float64{"t2m": {271.1}}}
	b := &Frame{Times: []time.Time{day(2)}, Series: map[string][]float64{"tp": {0.2}}}

	_, err := ConcatTime(a, b)
	require.ErrorIs(t, err, ErrVariableMismatch)
}

func TestValidateLengthMismatch(t *testing.T) {
	f := &Frame{
		Times:  []time.Time{day(1), day(2)},
		Series: map[string][]float64{"t2m": {271.1}},
	}

	require.ErrorIs(t, f.Validate(), ErrLengthMismatch)
}

func TestVariablesSorted(t *testing.T) {
	f := &Frame{Series: map[string][]float64{"tp": nil, "t2m": nil, "u10": nil}}
	assert.Equal(t, []string{"t2m", "tp", "u10"}, f.Variables())
}
