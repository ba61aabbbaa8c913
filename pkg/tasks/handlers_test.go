package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Predictia/chronoplan/pkg/dataset"
	"github.com/Predictia/chronoplan/pkg/request"
)

// fakeFetcher records the indices it was asked to fetch.
type fakeFetcher struct {
	partitions int
	fetched    []int
	failWith   error
}

func (f *fakeFetcher) GetPartition(_ context.Context, i int) (*dataset.Frame, error) {
	if i < 0 || i >= f.partitions {
		return nil, request.ErrPartitionOutOfRange
	}
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.fetched = append(f.fetched, i)
	return &dataset.Frame{}, nil
}

func (f *fakeFetcher) PartitionCount() int {
	return f.partitions
}

// fakeCachingFetcher additionally records cache invalidations.
type fakeCachingFetcher struct {
	fakeFetcher
	invalidated bool
}

func (f *fakeCachingFetcher) InvalidateCache(_ context.Context) error {
	f.invalidated = true
	return nil
}

func prefetchTask(t *testing.T, payload PrefetchPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TypePartitionPrefetch, data)
}

func TestHandlePrefetch(t *testing.T) {
	registry := NewRegistry()
	fetcher := &fakeFetcher{partitions: 3}
	registry.Register("query-1", fetcher)

	handler := NewPrefetchHandler(registry)

	task := prefetchTask(t, PrefetchPayload{QueryID: "query-1", Partition: 1, EnqueuedAt: time.Now()})
	err := handler.HandlePrefetch(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, fetcher.fetched)
}

func TestHandlePrefetchUnknownQuery(t *testing.T) {
	handler := NewPrefetchHandler(NewRegistry())

	task := prefetchTask(t, PrefetchPayload{QueryID: "gone", Partition: 0})
	err := handler.HandlePrefetch(context.Background(), task)

	require.ErrorIs(t, err, ErrUnknownQuery)
	// Dropped queries must not be retried.
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePrefetchOutOfRange(t *testing.T) {
	registry := NewRegistry()
	registry.Register("query-1", &fakeFetcher{partitions: 3})
	handler := NewPrefetchHandler(registry)

	task := prefetchTask(t, PrefetchPayload{QueryID: "query-1", Partition: 99})
	err := handler.HandlePrefetch(context.Background(), task)

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePrefetchFetchError(t *testing.T) {
	wantErr := errors.New("archive unreachable")
	registry := NewRegistry()
	registry.Register("query-1", &fakeFetcher{partitions: 3, failWith: wantErr})
	handler := NewPrefetchHandler(registry)

	task := prefetchTask(t, PrefetchPayload{QueryID: "query-1", Partition: 0})
	err := handler.HandlePrefetch(context.Background(), task)

	require.ErrorIs(t, err, wantErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePrefetchMalformedPayload(t *testing.T) {
	handler := NewPrefetchHandler(NewRegistry())

	task := asynq.NewTask(TypePartitionPrefetch, []byte("not json"))
	err := handler.HandlePrefetch(context.Background(), task)

	require.Error(t, err)
}

func TestRoutes(t *testing.T) {
	handler := NewPrefetchHandler(NewRegistry())
	routes := handler.Routes()

	require.Contains(t, routes, TypePartitionPrefetch)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	fetcher := &fakeFetcher{partitions: 2}

	_, ok := registry.Lookup("q")
	assert.False(t, ok)

	registry.Register("q", fetcher)
	got, ok := registry.Lookup("q")
	require.True(t, ok)
	assert.Equal(t, 2, got.PartitionCount())
	assert.Equal(t, []string{"q"}, registry.QueryIDs())

	require.NoError(t, registry.Unregister(context.Background(), "q"))
	_, ok = registry.Lookup("q")
	assert.False(t, ok)
}

func TestRegistryUnregisterInvalidatesCache(t *testing.T) {
	registry := NewRegistry()
	fetcher := &fakeCachingFetcher{fakeFetcher: fakeFetcher{partitions: 2}}
	registry.Register("q", fetcher)

	require.NoError(t, registry.Unregister(context.Background(), "q"))
	assert.True(t, fetcher.invalidated)

	// Unknown IDs are a no-op.
	require.NoError(t, registry.Unregister(context.Background(), "missing"))
}
