package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDateTime(t *testing.T) {
	tests := []struct {
		name     string
		stamp    string
		def      string
		wantDate string
		wantTime string
	}{
		{name: "combined with T", stamp: "20200101T0600", def: "0000", wantDate: "20200101", wantTime: "0600"},
		{name: "combined with space", stamp: "2020-01-01 0600", def: "0000", wantDate: "2020-01-01", wantTime: "0600"},
		{name: "date only gets default", stamp: "20200101", def: "1200", wantDate: "20200101", wantTime: "1200"},
		{name: "trailing separator gets default", stamp: "20200101T", def: "0000", wantDate: "20200101", wantTime: "0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDate, gotTime := SplitDateTime(tt.stamp, tt.def)
			assert.Equal(t, tt.wantDate, gotDate)
			assert.Equal(t, tt.wantTime, gotTime)
		})
	}
}

func TestToTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		stamp string
		want  time.Time
	}{
		{name: "compact date", stamp: "20200101", want: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "dashed date", stamp: "2020-03-31", want: time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC)},
		{name: "compact date time", stamp: "20200101T0600", want: time.Date(2020, 1, 1, 6, 0, 0, 0, time.UTC)},
		{name: "dashed date time", stamp: "2020-01-01T06:30", want: time.Date(2020, 1, 1, 6, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToTimestamp(tt.stamp)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}

	t.Run("garbage fails", func(t *testing.T) {
		_, err := ToTimestamp("not-a-date")
		require.ErrorIs(t, err, ErrUnparseableTime)
	})
}

func TestCombine(t *testing.T) {
	t.Run("empty time is midnight", func(t *testing.T) {
		got, err := Combine("20200101", "")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("compact clock", func(t *testing.T) {
		got, err := Combine("2020-01-01", "0630")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2020, 1, 1, 6, 30, 0, 0, time.UTC), got)
	})

	t.Run("hour only clock", func(t *testing.T) {
		got, err := Combine("2020-01-01", "06")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2020, 1, 1, 6, 0, 0, 0, time.UTC), got)
	})

	t.Run("bad clock fails", func(t *testing.T) {
		_, err := Combine("2020-01-01", "noon")
		require.ErrorIs(t, err, ErrUnparseableTime)
	})
}

func TestValidateWindow(t *testing.T) {
	tests := []struct {
		name      string
		reqStart  string
		dataStart string
		reqEnd    string
		dataEnd   string
		wantErr   error
	}{
		{
			name:     "window inside archive",
			reqStart: "2020-01-01", dataStart: "2019-01-01",
			reqEnd: "2020-06-01", dataEnd: "2021-01-01",
		},
		{
			name:     "start one tick before archive",
			reqStart: "2019-12-31T2300", dataStart: "2020-01-01T0000",
			reqEnd: "2020-06-01", dataEnd: "2021-01-01",
			wantErr: ErrStartBeforeData,
		},
		{
			name:     "end beyond archive",
			reqStart: "2020-01-01", dataStart: "2020-01-01",
			reqEnd: "2021-01-02", dataEnd: "2021-01-01",
			wantErr: ErrEndAfterData,
		},
		{
			name:     "inverted request window",
			reqStart: "2020-06-01", dataStart: "2020-01-01",
			reqEnd: "2020-01-01", dataEnd: "2021-01-01",
			wantErr: ErrInvertedWindow,
		},
		{
			name:     "inverted archive bounds",
			reqStart: "2020-01-01", dataStart: "2021-01-01",
			reqEnd: "2020-06-01", dataEnd: "2020-01-01",
			wantErr: ErrInvertedArchive,
		},
		{
			// Date-only bound must compare as midnight, so a request
			// starting at the archive's first day with an explicit
			// midnight time is still in range.
			name:     "mixed granularity not a false positive",
			reqStart: "2020-01-01T0000", dataStart: "2020-01-01",
			reqEnd: "2020-06-01", dataEnd: "2021-01-01T0000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWindow(tt.reqStart, tt.dataStart, tt.reqEnd, tt.dataEnd)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseOffsetUnit(t *testing.T) {
	for _, token := range []string{"h", "H", "hour", "hours"} {
		got, err := ParseOffsetUnit(token)
		require.NoError(t, err)
		assert.Equal(t, UnitHour, got)
	}

	for _, token := range []string{"d", "D", "day", "daily"} {
		got, err := ParseOffsetUnit(token)
		require.NoError(t, err)
		assert.Equal(t, UnitDay, got)
	}

	_, err := ParseOffsetUnit("month")
	require.ErrorIs(t, err, ErrUnsupportedUnit)
}

func TestApplyOffset(t *testing.T) {
	base := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("hours", func(t *testing.T) {
		got, err := ApplyOffset(base, 6, UnitHour, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, base.Add(6*time.Hour), got)
	})

	t.Run("days", func(t *testing.T) {
		got, err := ApplyOffset(base, -3, UnitDay, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2020, 1, 7, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("clamped to floor", func(t *testing.T) {
		floor := time.Date(2020, 1, 9, 0, 0, 0, 0, time.UTC)
		got, err := ApplyOffset(base, -5, UnitDay, floor)
		require.NoError(t, err)
		assert.Equal(t, floor, got)
	})
}

func TestMonthBoundaries(t *testing.T) {
	mid := time.Date(2020, 2, 14, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), MonthBegin(mid))
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), NextMonthBegin(mid))
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), PrevMonthBegin(mid))

	// Year rollover
	dec := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), NextMonthBegin(dec))
}
