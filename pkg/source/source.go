package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Predictia/chronoplan/pkg/archive"
	"github.com/Predictia/chronoplan/pkg/calendar"
	"github.com/Predictia/chronoplan/pkg/dataset"
	"github.com/Predictia/chronoplan/pkg/observability"
	"github.com/Predictia/chronoplan/pkg/partition"
	"github.com/Predictia/chronoplan/pkg/request"
	"github.com/Predictia/chronoplan/pkg/timeaxis"
)

// Cache is the partition cache consumed by the source. A nil Cache
// disables caching.
type Cache interface {
	Get(ctx context.Context, queryID string, index int) (*dataset.Frame, error)
	Set(ctx context.Context, queryID string, index int, frame *dataset.Frame) error
	Invalidate(ctx context.Context, queryID string) error
}

// Source is a lazily-partitioned view over one retrieval query. It is
// constructed once per query; the partition count is fixed at construction
// and partition pulls are idempotent and safe to issue concurrently.
type Source struct {
	log     logrus.FieldLogger
	cfg     *Config
	client  archive.ClientInterface
	cache   Cache
	builder *request.Builder
	plan    *partition.Plan
	ticks   []timeaxis.Tick
	chunks  []timeaxis.ChunkEntry
	queryID string
}

// New resolves the query's partition plan and request builder. This is the
// only planning step; everything after is per-partition.
func New(log logrus.FieldLogger, cfg *Config, client archive.ClientInterface, cache Cache) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// A configured name gives the query a stable cache namespace across
	// restarts; anonymous queries get a fresh one.
	queryID := cfg.Name
	if queryID == "" {
		queryID = uuid.NewString()
	}

	s := &Source{
		log:     log.WithField("component", "source"),
		cfg:     cfg,
		client:  client,
		cache:   cache,
		queryID: queryID,
	}

	tmpl := request.NewTemplate(cfg.Request)

	switch cfg.Mode {
	case "date":
		if err := s.planDateMode(tmpl); err != nil {
			return nil, err
		}
	case "step":
		if err := s.planStepMode(tmpl); err != nil {
			return nil, err
		}
	}

	observability.RecordPlan(cfg.Mode, s.plan.Partitions(), len(s.chunks))

	s.log.WithFields(logrus.Fields{
		"query_id":   s.queryID,
		"mode":       cfg.Mode,
		"partitions": s.plan.Partitions(),
		"chunks":     len(s.chunks),
	}).Info("Resolved partition plan")

	return s, nil
}

func (s *Source) planDateMode(tmpl request.Template) error {
	aggregation, err := timeaxis.ParseFreq(s.cfg.Aggregation)
	if err != nil {
		return fmt.Errorf("aggregation: %w", err)
	}

	ticks, chunks, err := timeaxis.Build(s.cfg.Window)
	if err != nil {
		return err
	}
	s.ticks = ticks
	s.chunks = chunks

	count, err := partition.Count(s.cfg.Window.DataStart, s.cfg.Window.RequestStart, s.cfg.Window.RequestEnd, aggregation)
	if err != nil {
		return err
	}
	s.plan = &partition.Plan{Mode: partition.ModeDate, Count: count}

	timestep, _, _, err := s.cfg.Window.Frequencies()
	if err != nil {
		return err
	}

	start, err := calendar.ToTimestamp(s.cfg.Window.RequestStart)
	if err != nil {
		return err
	}

	s.builder, err = request.NewDateBuilder(tmpl, start, count, aggregation, timestep, request.MarsFormatter{}, s.cfg.Param)

	return err
}

func (s *Source) planStepMode(tmpl request.Template) error {
	steps, err := partition.StepRangeTokens(
		s.cfg.BaseDate, s.cfg.BaseTime,
		s.cfg.Window.RequestStart, s.cfg.Window.RequestEnd,
		s.cfg.StepSeconds,
	)
	if err != nil {
		return err
	}

	s.plan = &partition.Plan{Mode: partition.ModeStep, Steps: steps}
	s.builder = request.NewStepBuilder(tmpl, steps, s.cfg.Param)

	return nil
}

// QueryID returns the query's unique identifier, used as the cache and
// prefetch key namespace.
func (s *Source) QueryID() string {
	return s.queryID
}

// PartitionCount reports how many partitions the query splits into.
func (s *Source) PartitionCount() int {
	return s.plan.Partitions()
}

// Plan returns the resolved partition plan.
func (s *Source) Plan() *partition.Plan {
	return s.plan
}

// Chunks returns the chunk table in physical archive coordinates. Empty in
// step mode.
func (s *Source) Chunks() []timeaxis.ChunkEntry {
	return s.chunks
}

// Ticks returns the resolved time axis. Empty in step mode.
func (s *Source) Ticks() []timeaxis.Tick {
	return s.ticks
}

// InvalidateCache drops every cached partition of this query. A source
// without a cache has nothing to drop.
func (s *Source) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.Invalidate(ctx, s.queryID)
}

// GetPartition fetches partition i. Repeated calls for the same index
// return equivalent results; with a cache attached, repeats are served
// without touching the archive.
func (s *Source) GetPartition(ctx context.Context, i int) (*dataset.Frame, error) {
	if cached, ok := s.cacheGet(ctx, i); ok {
		return cached, nil
	}

	req, err := s.builder.Build(i)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	frame, err := s.client.Retrieve(ctx, req)
	if err != nil {
		observability.RecordFetch(s.cfg.Mode, fetchStatus(err), time.Since(started).Seconds())
		return nil, fmt.Errorf("partition %d: %w", i, err)
	}
	observability.RecordFetch(s.cfg.Mode, "success", time.Since(started).Seconds())

	s.cacheSet(ctx, i, frame)

	return frame, nil
}

// ReadAll fetches every partition in parallel and concatenates the results
// along the time dimension in ascending partition order, regardless of
// completion order.
func (s *Source) ReadAll(ctx context.Context) (*dataset.Frame, error) {
	n := s.PartitionCount()
	frames := make([]*dataset.Frame, n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, s.cfg.Concurrency)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			frame, err := s.GetPartition(ctx, i)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			frames[i] = frame
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return dataset.ConcatTime(frames...)
}

func (s *Source) cacheGet(ctx context.Context, i int) (*dataset.Frame, bool) {
	if s.cache == nil {
		return nil, false
	}

	frame, err := s.cache.Get(ctx, s.queryID, i)
	switch {
	case err != nil:
		observability.RecordCacheLookup("error")
		s.log.WithError(err).WithField("partition", i).Warn("Partition cache lookup failed")
		return nil, false
	case frame == nil:
		observability.RecordCacheLookup("miss")
		return nil, false
	default:
		observability.RecordCacheLookup("hit")
		return frame, true
	}
}

func (s *Source) cacheSet(ctx context.Context, i int, frame *dataset.Frame) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, s.queryID, i, frame); err != nil {
		s.log.WithError(err).WithField("partition", i).Warn("Partition cache store failed")
	}
}

func fetchStatus(err error) string {
	switch {
	case errors.Is(err, archive.ErrRequestRejected):
		return "rejected"
	case errors.Is(err, archive.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
