// Package calendar provides pure date and time arithmetic for archive
// retrieval planning: token parsing, window validation, and offset math.
package calendar

import "errors"

// Static errors for date parsing and window validation
var (
	// ErrUnparseableTime is returned when a date/time token matches no known layout
	ErrUnparseableTime = errors.New("unparseable date/time token")
	// ErrStartBeforeData is returned when the requested start precedes the archive start
	ErrStartBeforeData = errors.New("requested start precedes archive start")
	// ErrEndAfterData is returned when the requested end exceeds the archive end
	ErrEndAfterData = errors.New("requested end exceeds archive end")
	// ErrInvertedWindow is returned when the requested start is after the requested end
	ErrInvertedWindow = errors.New("requested start is after requested end")
	// ErrInvertedArchive is returned when the archive bounds themselves are inverted
	ErrInvertedArchive = errors.New("archive start is after archive end")
	// ErrUnsupportedUnit is returned when an offset unit other than hour or day is requested
	ErrUnsupportedUnit = errors.New("offset unit must be hour or day")
)
