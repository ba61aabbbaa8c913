package tasks

import (
	"context"
	"sync"
)

// CacheInvalidator drops a query's cached partitions. Sources that cache
// implement it; the registry invalidates on unregister so stale partitions
// don't outlive their query.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// Registry is an in-memory SourceRegistry keyed by query ID.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]PartitionFetcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]PartitionFetcher),
	}
}

// Register makes a source resolvable by its query ID. Registering the same
// ID again replaces the previous source.
func (r *Registry) Register(queryID string, source PartitionFetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[queryID] = source
}

// Unregister drops a source and invalidates its cached partitions when the
// source supports it. Prefetch tasks still in flight for the query will be
// skipped.
func (r *Registry) Unregister(ctx context.Context, queryID string) error {
	r.mu.Lock()
	source, ok := r.sources[queryID]
	delete(r.sources, queryID)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	if invalidator, ok := source.(CacheInvalidator); ok {
		return invalidator.InvalidateCache(ctx)
	}

	return nil
}

// Lookup resolves a query ID to its source.
func (r *Registry) Lookup(queryID string) (PartitionFetcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[queryID]
	return source, ok
}

// QueryIDs returns the registered query IDs.
func (r *Registry) QueryIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	return ids
}
