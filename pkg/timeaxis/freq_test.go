package timeaxis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFreq(t *testing.T) {
	tests := []struct {
		token string
		want  Freq
	}{
		{token: "H", want: Freq{Unit: UnitHourly}},
		{token: "hourly", want: Freq{Unit: UnitHourly}},
		{token: "D", want: Freq{Unit: UnitDaily}},
		{token: "daily", want: Freq{Unit: UnitDaily}},
		{token: "M", want: Freq{Unit: UnitMonthly}},
		{token: "monthly", want: Freq{Unit: UnitMonthly}},
		{token: "Y", want: Freq{Unit: UnitYearly}},
		{token: "yearly", want: Freq{Unit: UnitYearly}},
		{token: "30min", want: Freq{Unit: UnitSubHourly, Step: 30 * time.Minute}},
		{token: "15minutes", want: Freq{Unit: UnitSubHourly, Step: 15 * time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseFreq(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown token fails", func(t *testing.T) {
		_, err := ParseFreq("fortnightly")
		require.ErrorIs(t, err, ErrUnknownFrequency)
	})

	t.Run("super-hourly duration fails", func(t *testing.T) {
		_, err := ParseFreq("90min")
		require.ErrorIs(t, err, ErrUnknownFrequency)
	})
}

func TestFreqAddTruncate(t *testing.T) {
	mid := time.Date(2020, 2, 14, 12, 30, 0, 0, time.UTC)

	t.Run("monthly", func(t *testing.T) {
		f := Freq{Unit: UnitMonthly}
		assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), f.Truncate(mid))
		assert.Equal(t, time.Date(2020, 3, 14, 12, 30, 0, 0, time.UTC), f.Next(mid))
		assert.Equal(t, time.Date(2020, 1, 14, 12, 30, 0, 0, time.UTC), f.Prev(mid))
	})

	t.Run("daily", func(t *testing.T) {
		f := Freq{Unit: UnitDaily}
		assert.Equal(t, time.Date(2020, 2, 14, 0, 0, 0, 0, time.UTC), f.Truncate(mid))
		assert.Equal(t, mid.AddDate(0, 0, 3), f.Add(mid, 3))
	})

	t.Run("yearly", func(t *testing.T) {
		f := Freq{Unit: UnitYearly}
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), f.Truncate(mid))
	})

	t.Run("sub-hourly", func(t *testing.T) {
		f := Freq{Unit: UnitSubHourly, Step: 30 * time.Minute}
		assert.Equal(t, mid, f.Truncate(mid))
		assert.Equal(t, mid.Add(time.Hour), f.Add(mid, 2))
	})
}

func TestCountTicks(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		f    Freq
		want int
	}{
		{name: "same instant daily", from: day(2020, 1, 1), to: day(2020, 1, 1), f: Freq{Unit: UnitDaily}, want: 1},
		{name: "quarter daily leap year", from: day(2020, 1, 1), to: day(2020, 3, 31), f: Freq{Unit: UnitDaily}, want: 91},
		{name: "six hourly ticks", from: day(2020, 1, 1), to: day(2020, 1, 1).Add(5 * time.Hour), f: Freq{Unit: UnitHourly}, want: 6},
		{name: "three months", from: day(2020, 1, 1), to: day(2020, 3, 1), f: Freq{Unit: UnitMonthly}, want: 3},
		{name: "partial month not counted", from: day(2020, 1, 15), to: day(2020, 3, 1), f: Freq{Unit: UnitMonthly}, want: 2},
		{name: "two years", from: day(2019, 1, 1), to: day(2020, 1, 1), f: Freq{Unit: UnitYearly}, want: 2},
		{name: "inverted range", from: day(2020, 2, 1), to: day(2020, 1, 1), f: Freq{Unit: UnitDaily}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountTicks(tt.from, tt.to, tt.f))
		})
	}
}
