package timeaxis

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the closed set of grid cadences. All internal logic switches on
// this enumeration; frequency tokens are normalized once by ParseFreq at
// the boundary.
type Unit int

const (
	// UnitSubHourly is a fixed sub-hourly tick spacing (the Freq carries the step)
	UnitSubHourly Unit = iota
	// UnitHourly is one tick per hour
	UnitHourly
	// UnitDaily is one tick per day
	UnitDaily
	// UnitMonthly is one tick per calendar month
	UnitMonthly
	// UnitYearly is one tick per calendar year
	UnitYearly
)

// Freq is a normalized grid cadence. Step is set only for sub-hourly
// cadences. The zero Freq is invalid; use ParseFreq.
type Freq struct {
	Unit Unit
	Step time.Duration
}

// ParseFreq normalizes a frequency token. Accepted forms are single-letter
// pandas-style codes ("H", "D", "M", "Y"), spelled-out cadences ("hourly",
// "daily", "monthly", "yearly") and sub-hourly durations ("30m", "15min").
func ParseFreq(token string) (Freq, error) {
	switch strings.ToLower(token) {
	case "h", "1h", "hour", "hourly":
		return Freq{Unit: UnitHourly}, nil
	case "d", "1d", "day", "daily":
		return Freq{Unit: UnitDaily}, nil
	case "m", "1m", "mon", "month", "monthly":
		return Freq{Unit: UnitMonthly}, nil
	case "y", "1y", "year", "yearly", "annual":
		return Freq{Unit: UnitYearly}, nil
	}

	// Sub-hourly duration, e.g. "30m" would collide with monthly above so
	// only "min"/"minute" suffixed and second-level tokens are accepted.
	normalized := strings.ToLower(token)
	normalized = strings.ReplaceAll(normalized, "minutes", "m")
	normalized = strings.ReplaceAll(normalized, "minute", "m")
	normalized = strings.ReplaceAll(normalized, "min", "m")

	if step, err := time.ParseDuration(normalized); err == nil {
		if step > 0 && step < time.Hour {
			return Freq{Unit: UnitSubHourly, Step: step}, nil
		}
	}

	return Freq{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, token)
}

// String returns the canonical token for the frequency.
func (f Freq) String() string {
	switch f.Unit {
	case UnitSubHourly:
		return f.Step.String()
	case UnitHourly:
		return "hourly"
	case UnitDaily:
		return "daily"
	case UnitMonthly:
		return "monthly"
	case UnitYearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// Next returns the tick immediately after t on a grid anchored at t.
func (f Freq) Next(t time.Time) time.Time {
	return f.Add(t, 1)
}

// Prev returns the tick immediately before t on a grid anchored at t.
func (f Freq) Prev(t time.Time) time.Time {
	return f.Add(t, -1)
}

// Add advances t by n ticks.
func (f Freq) Add(t time.Time, n int) time.Time {
	switch f.Unit {
	case UnitSubHourly:
		return t.Add(time.Duration(n) * f.Step)
	case UnitHourly:
		return t.Add(time.Duration(n) * time.Hour)
	case UnitDaily:
		return t.AddDate(0, 0, n)
	case UnitMonthly:
		return t.AddDate(0, n, 0)
	case UnitYearly:
		return t.AddDate(n, 0, 0)
	default:
		return t
	}
}

// Truncate returns the begin of the period of cadence f containing t.
func (f Freq) Truncate(t time.Time) time.Time {
	switch f.Unit {
	case UnitSubHourly:
		return t.Truncate(f.Step)
	case UnitHourly:
		return t.Truncate(time.Hour)
	case UnitDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case UnitMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case UnitYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// CountTicks counts the inclusive ticks of a uniform grid at cadence f
// anchored at from and ending at the last tick not after to. A grid whose
// anchor and end coincide has one tick.
func CountTicks(from, to time.Time, f Freq) int {
	if to.Before(from) {
		return 0
	}

	switch f.Unit {
	case UnitSubHourly:
		return int(to.Sub(from)/f.Step) + 1
	case UnitHourly:
		return int(to.Sub(from)/time.Hour) + 1
	case UnitDaily:
		return int(to.Sub(from)/(24*time.Hour)) + 1
	case UnitMonthly:
		months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
		if monthDayTime(to) < monthDayTime(from) {
			months--
		}
		return months + 1
	case UnitYearly:
		years := to.Year() - from.Year()
		if yearDayTime(to) < yearDayTime(from) {
			years--
		}
		return years + 1
	default:
		return 0
	}
}

// monthDayTime orders instants within a month, for partial-period checks.
func monthDayTime(t time.Time) int64 {
	return int64(t.Day())*86400 + int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
}

// yearDayTime orders instants within a year.
func yearDayTime(t time.Time) int64 {
	return int64(t.YearDay())*86400 + int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
}
