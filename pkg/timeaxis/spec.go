package timeaxis

import (
	"fmt"
	"time"

	"github.com/Predictia/chronoplan/pkg/calendar"
)

// TimeSpec describes a requested retrieval window against an archive whose
// records begin at DataStart. Timestep, SaveFreq and ChunkFreq default to
// each other when omitted: save from timestep, timestep from save, chunk
// from timestep, in that order. A TimeSpec is created once per query and
// never mutated afterwards.
type TimeSpec struct {
	DataStart    string `yaml:"dataStart" json:"data_start"`
	RequestStart string `yaml:"requestStart" json:"request_start"`
	RequestEnd   string `yaml:"requestEnd" json:"request_end"`
	Timestep     string `yaml:"timestep,omitempty" json:"timestep,omitempty"`
	SaveFreq     string `yaml:"saveFreq,omitempty" json:"save_freq,omitempty"`
	ChunkFreq    string `yaml:"chunkFreq,omitempty" json:"chunk_freq,omitempty"`
	ShiftMonth   bool   `yaml:"shiftMonth,omitempty" json:"shift_month,omitempty"`
	SkipLast     bool   `yaml:"skipLast,omitempty" json:"skip_last,omitempty"`
}

// resolvedSpec is a TimeSpec after token parsing and the ordered frequency
// defaulting pass.
type resolvedSpec struct {
	dataStart    time.Time
	requestStart time.Time
	requestEnd   time.Time
	timestep     Freq
	saveFreq     Freq
	chunkFreq    Freq
	shiftMonth   bool
	skipLast     bool
}

// resolve parses the spec tokens, applies the layered frequency defaulting
// and checks configuration invariants. It does not touch window bounds;
// Build enforces those.
func (s TimeSpec) resolve() (*resolvedSpec, error) {
	// Single ordered defaulting pass: save from timestep, timestep from
	// save, chunk from timestep.
	timestep, saveFreq, chunkFreq := s.Timestep, s.SaveFreq, s.ChunkFreq
	if saveFreq == "" {
		saveFreq = timestep
	}
	if timestep == "" {
		timestep = saveFreq
	}
	if chunkFreq == "" {
		chunkFreq = timestep
	}

	if timestep == "" {
		return nil, ErrNoFrequency
	}

	rs := &resolvedSpec{shiftMonth: s.ShiftMonth, skipLast: s.SkipLast}

	var err error
	if rs.timestep, err = ParseFreq(timestep); err != nil {
		return nil, fmt.Errorf("timestep: %w", err)
	}
	if rs.saveFreq, err = ParseFreq(saveFreq); err != nil {
		return nil, fmt.Errorf("save frequency: %w", err)
	}
	if rs.chunkFreq, err = ParseFreq(chunkFreq); err != nil {
		return nil, fmt.Errorf("chunk frequency: %w", err)
	}

	if rs.shiftMonth && rs.saveFreq.Unit != UnitMonthly {
		return nil, ErrShiftRequiresMonthly
	}

	if rs.dataStart, err = calendar.ToTimestamp(s.DataStart); err != nil {
		return nil, fmt.Errorf("data start: %w", err)
	}
	if rs.requestStart, err = calendar.ToTimestamp(s.RequestStart); err != nil {
		return nil, fmt.Errorf("request start: %w", err)
	}
	if rs.requestEnd, err = calendar.ToTimestamp(s.RequestEnd); err != nil {
		return nil, fmt.Errorf("request end: %w", err)
	}

	return rs, nil
}

// Frequencies returns the spec's effective timestep, save and chunk
// frequencies after the ordered defaulting pass.
func (s TimeSpec) Frequencies() (timestep, saveFreq, chunkFreq Freq, err error) {
	rs, err := s.resolve()
	if err != nil {
		return Freq{}, Freq{}, Freq{}, err
	}
	return rs.timestep, rs.saveFreq, rs.chunkFreq, nil
}

// Tick is one sample instant on the time axis, tagged with its grid index.
type Tick struct {
	Index int       `json:"index"`
	Date  time.Time `json:"date"`
}

// ChunkEntry is one contiguous retrieval chunk at chunk frequency
// granularity. Indices are expressed in physical archive coordinates.
type ChunkEntry struct {
	StartIndex int       `json:"start_index"`
	StartDate  time.Time `json:"start_date"`
	EndIndex   int       `json:"end_index"`
	EndDate    time.Time `json:"end_date"`
	Size       int       `json:"size"`
}
