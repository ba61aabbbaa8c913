package request

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Predictia/chronoplan/pkg/timeaxis"
)

var (
	daily   = timeaxis.Freq{Unit: timeaxis.UnitDaily}
	hourly  = timeaxis.Freq{Unit: timeaxis.UnitHourly}
	monthly = timeaxis.Freq{Unit: timeaxis.UnitMonthly}
)

func TestTemplateCloneIsPrivate(t *testing.T) {
	fields := map[string]string{"class": "ea", "levtype": "sfc"}
	tmpl := NewTemplate(fields)

	// Mutating the source map after construction must not leak in.
	fields["class"] = "mutated"

	a := tmpl.Clone()
	b := tmpl.Clone()
	a["class"] = "od"

	assert.Equal(t, "ea", b["class"])
	assert.Equal(t, "ea", tmpl.Clone()["class"])
}

func TestDateBuilder(t *testing.T) {
	tmpl := NewTemplate(map[string]string{"class": "ea"})
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	b, err := NewDateBuilder(tmpl, start, 3, monthly, daily, MarsFormatter{}, "")
	require.NoError(t, err)
	require.Equal(t, 3, b.Partitions())

	req, err := b.Build(1)
	require.NoError(t, err)

	assert.Equal(t, "ea", req["class"])
	assert.Equal(t, "20200201/to/20200229", req[KeyDate])
	assert.Equal(t, "0000", req[KeyTime])
	_, hasParam := req[KeyParam]
	assert.False(t, hasParam, "no override leaves the catalog default")
}

func TestDateBuilderParamOverride(t *testing.T) {
	b, err := NewDateBuilder(NewTemplate(nil), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		1, daily, daily, MarsFormatter{}, "t2m")
	require.NoError(t, err)

	req, err := b.Build(0)
	require.NoError(t, err)
	assert.Equal(t, "t2m", req[KeyParam])
}

func TestDateBuilderRequiresFormatter(t *testing.T) {
	_, err := NewDateBuilder(NewTemplate(nil), time.Time{}, 1, daily, daily, nil, "")
	require.ErrorIs(t, err, ErrNilFormatter)
}

func TestStepBuilder(t *testing.T) {
	b := NewStepBuilder(NewTemplate(map[string]string{"class": "od"}), []int{6, 7, 8}, "")
	require.Equal(t, 3, b.Partitions())

	req, err := b.Build(2)
	require.NoError(t, err)
	assert.Equal(t, "8", req[KeyStep])
	assert.Equal(t, "od", req["class"])
}

func TestBuildOutOfRange(t *testing.T) {
	b := NewStepBuilder(NewTemplate(nil), []int{1, 2}, "")

	_, err := b.Build(2)
	require.ErrorIs(t, err, ErrPartitionOutOfRange)
	_, err = b.Build(-1)
	require.ErrorIs(t, err, ErrPartitionOutOfRange)
}

func TestBuildIdempotentAndConcurrent(t *testing.T) {
	b := NewStepBuilder(NewTemplate(map[string]string{"class": "ea"}), []int{1, 2, 3, 4}, "")

	first, err := b.Build(1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, buildErr := b.Build(1)
			assert.NoError(t, buildErr)
			assert.Equal(t, first, req)
			// Mutation stays local to this clone.
			req["class"] = "local"
		}()
	}
	wg.Wait()

	again, err := b.Build(1)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestMarsFormatter(t *testing.T) {
	tests := []struct {
		name        string
		datePart    string
		timePart    string
		aggregation timeaxis.Freq
		timestep    timeaxis.Freq
		wantDate    string
		wantTime    string
	}{
		{
			name:     "daily aggregation hourly steps",
			datePart: "20200101", timePart: "0000",
			aggregation: daily, timestep: hourly,
			wantDate: "20200101", wantTime: "0000/to/2300/by/0100",
		},
		{
			name:     "monthly aggregation daily steps",
			datePart: "20200201", timePart: "0000",
			aggregation: monthly, timestep: daily,
			wantDate: "20200201/to/20200229", wantTime: "0000",
		},
		{
			name:     "matching cadence",
			datePart: "20200115", timePart: "1200",
			aggregation: daily, timestep: daily,
			wantDate: "20200115", wantTime: "1200",
		},
		{
			name:     "half hourly steps",
			datePart: "20200101", timePart: "0000",
			aggregation: daily, timestep: timeaxis.Freq{Unit: timeaxis.UnitSubHourly, Step: 30 * time.Minute},
			wantDate: "20200101", wantTime: "0000/to/2330/by/0030",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDate, gotTime, err := MarsFormatter{}.Format(tt.datePart, tt.timePart, tt.aggregation, tt.timestep)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, gotDate)
			assert.Equal(t, tt.wantTime, gotTime)
		})
	}
}

func TestRenderDefaultDocument(t *testing.T) {
	req := Request{"class": "ea", "date": "20200101", "param": "t2m"}

	doc, err := NewEngine().Render(DefaultDocument, req)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "retrieve,"))
	assert.Contains(t, doc, "class=ea,")
	assert.Contains(t, doc, "date=20200101,")
	// Key-sorted iteration keeps the document deterministic.
	assert.Less(t, strings.Index(doc, "class="), strings.Index(doc, "date="))
}

func TestRenderSprigFunctions(t *testing.T) {
	doc, err := NewEngine().Render(`param={{ .request.param | upper }}`, Request{"param": "t2m"})
	require.NoError(t, err)
	assert.Equal(t, "param=T2M", doc)
}

func TestRenderBadTemplate(t *testing.T) {
	_, err := NewEngine().Render(`{{ .request.param`, Request{})
	require.Error(t, err)
}
