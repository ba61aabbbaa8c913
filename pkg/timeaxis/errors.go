// Package timeaxis builds uniform time grids and chunk tables for archive
// retrieval windows.
package timeaxis

import "errors"

// Static errors for time axis configuration
var (
	// ErrUnknownFrequency is returned when a frequency token matches no known unit
	ErrUnknownFrequency = errors.New("unknown frequency")
	// ErrNoFrequency is returned when timestep, save and chunk frequency are all empty
	ErrNoFrequency = errors.New("at least one of timestep, save or chunk frequency is required")
	// ErrShiftRequiresMonthly is returned when shift-month is combined with a non-monthly save frequency
	ErrShiftRequiresMonthly = errors.New("shift month requires monthly save frequency")
	// ErrStartBeforeData is returned when the requested start precedes the archive data start
	ErrStartBeforeData = errors.New("requested start precedes archive data start")
	// ErrInvertedWindow is returned when the requested window is inverted
	ErrInvertedWindow = errors.New("requested start is after requested end")
)
