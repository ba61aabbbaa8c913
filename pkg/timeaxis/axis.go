package timeaxis

import (
	"fmt"
	"time"

	"github.com/Predictia/chronoplan/pkg/calendar"
)

// Build turns a TimeSpec into the per-tick time axis and its chunk table.
//
// The returned ticks span the requested window at timestep granularity,
// reduced to one representative per save-frequency period when the archive
// stores at a different cadence. Chunk indices are offset into physical
// archive coordinates: index 0 is the archive's first record, not the
// window's first tick.
func Build(spec TimeSpec) ([]Tick, []ChunkEntry, error) {
	rs, err := spec.resolve()
	if err != nil {
		return nil, nil, err
	}

	if rs.requestStart.Before(rs.dataStart) {
		return nil, nil, fmt.Errorf("%w: %s < %s", ErrStartBeforeData, spec.RequestStart, spec.DataStart)
	}
	if rs.requestEnd.Before(rs.requestStart) {
		return nil, nil, fmt.Errorf("%w: %s > %s", ErrInvertedWindow, spec.RequestStart, spec.RequestEnd)
	}

	// Ticks between archive start and window start, minus the shared start
	// tick. The archive is addressed by record offset, so every chunk index
	// is later shifted by this amount.
	offset := CountTicks(rs.dataStart, rs.requestStart, rs.timestep) - 1

	end := rs.requestEnd
	if rs.shiftMonth {
		// Monthly accumulations are tagged with the following month's first
		// tick, so one extra month is fetched to recover the last period.
		end = calendar.NextMonthBegin(end)
	}
	if rs.skipLast {
		end = rs.timestep.Prev(end)
	}

	grid := buildGrid(rs.requestStart, end, rs.timestep)

	series := reduceToSavePeriods(grid, rs)
	chunks := chunkSeries(series, rs.chunkFreq)

	for i := range chunks {
		chunks[i].StartIndex += offset
		chunks[i].EndIndex += offset
	}

	return series, chunks, nil
}

// buildGrid produces the raw uniform tick grid over [start, end] with
// 0-based sequential indices.
func buildGrid(start, end time.Time, f Freq) []Tick {
	var grid []Tick
	for i, t := 0, start; !t.After(end); i, t = i+1, f.Next(t) {
		grid = append(grid, Tick{Index: i, Date: t})
	}
	return grid
}

// reduceToSavePeriods groups the raw grid by save-frequency periods and
// keeps one representative tick per period. Without shift-month the
// representative is a period's first tick with its own date. With
// shift-month the index comes from the following period's first tick
// (matching the archive's forward-tagged storage) while the date stays the
// true accounting period's begin; the synthetic trailing period introduced
// by the extended end only supplies that label and is dropped, even when
// empty.
func reduceToSavePeriods(grid []Tick, rs *resolvedSpec) []Tick {
	if rs.timestep == rs.saveFreq && !rs.shiftMonth {
		return grid
	}

	type group struct {
		first Tick
	}

	var groups []group
	var lastKey time.Time
	for i, tick := range grid {
		key := rs.saveFreq.Truncate(tick.Date)
		if i == 0 || !key.Equal(lastKey) {
			groups = append(groups, group{first: tick})
			lastKey = key
		}
	}

	if !rs.shiftMonth {
		series := make([]Tick, len(groups))
		for i, g := range groups {
			series[i] = g.first
		}
		return series
	}

	series := make([]Tick, 0, len(groups))
	for i := 0; i+1 < len(groups); i++ {
		series = append(series, Tick{
			Index: groups[i+1].first.Index,
			Date:  groups[i].first.Date,
		})
	}
	return series
}

// chunkSeries re-chunks the reduced series by chunk frequency. Every chunk
// records the min and max grid index it covers, its first and last tick
// dates, and its tick count.
func chunkSeries(series []Tick, chunkFreq Freq) []ChunkEntry {
	var chunks []ChunkEntry
	var lastKey time.Time

	for i, tick := range series {
		key := chunkFreq.Truncate(tick.Date)
		if i == 0 || !key.Equal(lastKey) {
			chunks = append(chunks, ChunkEntry{
				StartIndex: tick.Index,
				StartDate:  tick.Date,
				EndIndex:   tick.Index,
				EndDate:    tick.Date,
				Size:       1,
			})
			lastKey = key
			continue
		}

		last := &chunks[len(chunks)-1]
		if tick.Index < last.StartIndex {
			last.StartIndex = tick.Index
		}
		if tick.Index > last.EndIndex {
			last.EndIndex = tick.Index
		}
		last.EndDate = tick.Date
		last.Size++
	}

	return chunks
}
