package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Combined token layouts accepted by ToTimestamp, tried in order. All
// timestamps are UTC; archive requests carry no zone information.
//
//nolint:gochecknoglobals // Static layout table
var dateTimeLayouts = []string{
	"20060102T1504",
	"20060102T150405",
	"2006-01-02T1504",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"20060102 1504",
	"2006-01-02 15:04",
	"20060102",
	"2006-01-02",
}

// SplitDateTime splits a combined date/time token on the first "T" or space
// into a date part and a time part. A missing time part is filled with
// timeDefault. It never fails; validation belongs to ToTimestamp.
func SplitDateTime(stamp, timeDefault string) (datePart, timePart string) {
	sep := strings.IndexAny(stamp, "T ")
	if sep < 0 {
		return stamp, timeDefault
	}

	datePart = stamp[:sep]
	timePart = stamp[sep+1:]
	if timePart == "" {
		timePart = timeDefault
	}

	return datePart, timePart
}

// ToTimestamp parses a date-like token (date only, or combined date/time)
// into a UTC timestamp.
func ToTimestamp(stamp string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, stamp, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, stamp)
}

// Combine joins separate date and time fields into a single timestamp.
// An empty time field is treated as midnight. The time field may be
// "HH", "HHMM", or "HH:MM".
func Combine(datePart, timePart string) (time.Time, error) {
	d, err := ToTimestamp(datePart)
	if err != nil {
		return time.Time{}, err
	}

	if timePart == "" {
		return d, nil
	}

	clock, err := parseClock(timePart)
	if err != nil {
		return time.Time{}, err
	}

	return d.Add(clock), nil
}

func parseClock(timePart string) (time.Duration, error) {
	for _, layout := range []string{"1504", "15:04", "15", "150405"} {
		if t, err := time.ParseInLocation(layout, timePart, time.UTC); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, timePart)
}

// ValidateWindow checks a requested window against the archive bounds.
// Date-only tokens are normalized to midnight before comparison so mixed
// granularity bounds compare correctly.
func ValidateWindow(reqStart, dataStart, reqEnd, dataEnd string) error {
	rs, err := ToTimestamp(reqStart)
	if err != nil {
		return err
	}
	ds, err := ToTimestamp(dataStart)
	if err != nil {
		return err
	}
	re, err := ToTimestamp(reqEnd)
	if err != nil {
		return err
	}
	de, err := ToTimestamp(dataEnd)
	if err != nil {
		return err
	}

	switch {
	case ds.After(de):
		return fmt.Errorf("%w: %s > %s", ErrInvertedArchive, dataStart, dataEnd)
	case rs.After(re):
		return fmt.Errorf("%w: %s > %s", ErrInvertedWindow, reqStart, reqEnd)
	case rs.Before(ds):
		return fmt.Errorf("%w: %s < %s", ErrStartBeforeData, reqStart, dataStart)
	case re.After(de):
		return fmt.Errorf("%w: %s > %s", ErrEndAfterData, reqEnd, dataEnd)
	}

	return nil
}

// OffsetUnit is the closed set of units accepted by ApplyOffset.
type OffsetUnit int

const (
	// UnitHour advances offsets in hours
	UnitHour OffsetUnit = iota
	// UnitDay advances offsets in days
	UnitDay
)

// ParseOffsetUnit normalizes an offset unit token into the closed set.
func ParseOffsetUnit(unit string) (OffsetUnit, error) {
	switch strings.ToLower(unit) {
	case "h", "hour", "hours", "hourly":
		return UnitHour, nil
	case "d", "day", "days", "daily":
		return UnitDay, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, unit)
	}
}

// ApplyOffset adds ticks units to base. When notBefore is non-zero the
// result is clamped to be not earlier than it.
func ApplyOffset(base time.Time, ticks int, unit OffsetUnit, notBefore time.Time) (time.Time, error) {
	var shifted time.Time

	switch unit {
	case UnitHour:
		shifted = base.Add(time.Duration(ticks) * time.Hour)
	case UnitDay:
		shifted = base.AddDate(0, 0, ticks)
	default:
		return time.Time{}, fmt.Errorf("%w: %d", ErrUnsupportedUnit, unit)
	}

	if !notBefore.IsZero() && shifted.Before(notBefore) {
		return notBefore, nil
	}

	return shifted, nil
}

// MonthBegin returns the first instant of the month containing t.
func MonthBegin(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonthBegin returns the first instant of the month after the one
// containing t.
func NextMonthBegin(t time.Time) time.Time {
	return MonthBegin(t).AddDate(0, 1, 0)
}

// PrevMonthBegin returns the first instant of the month before the one
// containing t.
func PrevMonthBegin(t time.Time) time.Time {
	return MonthBegin(t).AddDate(0, -1, 0)
}
