package request

import (
	"fmt"
	"time"

	"github.com/Predictia/chronoplan/pkg/calendar"
	"github.com/Predictia/chronoplan/pkg/timeaxis"
)

// WireFormatter expands a partition's (date, time) pair into the
// archive-specific date and time-range selector strings.
type WireFormatter interface {
	Format(datePart, timePart string, aggregation, timestep timeaxis.Freq) (dateField, timeField string, err error)
}

// MarsFormatter produces MARS-style range selectors: "YYYYMMDD/to/YYYYMMDD"
// date ranges when the aggregation period spans multiple days, and
// "HHMM/to/HHMM/by/HHMM" time ranges when the timestep is sub-daily.
type MarsFormatter struct{}

// Format implements WireFormatter.
func (MarsFormatter) Format(datePart, timePart string, aggregation, timestep timeaxis.Freq) (string, string, error) {
	start, err := calendar.Combine(datePart, timePart)
	if err != nil {
		return "", "", err
	}

	// Last tick of the aggregation period beginning at start.
	last := timestep.Prev(aggregation.Next(start))

	dateField := start.Format("20060102")
	if !sameDay(start, last) {
		dateField = fmt.Sprintf("%s/to/%s", dateField, last.Format("20060102"))
	}

	var timeField string
	switch timestep.Unit {
	case timeaxis.UnitSubHourly, timeaxis.UnitHourly:
		step := time.Hour
		if timestep.Unit == timeaxis.UnitSubHourly {
			step = timestep.Step
		}
		lastClock := time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - step)
		timeField = fmt.Sprintf("%s/to/%s/by/%s",
			start.Format("1504"), lastClock.Format("1504"), clockString(step))
	default:
		timeField = start.Format("1504")
	}

	return dateField, timeField, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func clockString(d time.Duration) string {
	return fmt.Sprintf("%02d%02d", int(d.Hours()), int(d.Minutes())%60)
}
