package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Predictia/chronoplan/pkg/dataset"
	"github.com/Predictia/chronoplan/pkg/observability"
	"github.com/Predictia/chronoplan/pkg/request"
)

var (
	// ErrUnknownQuery is returned when no registered source matches the payload
	ErrUnknownQuery = errors.New("unknown query id")
)

// PartitionFetcher fetches single partitions of a planned query
type PartitionFetcher interface {
	GetPartition(ctx context.Context, i int) (*dataset.Frame, error)
	PartitionCount() int
}

// SourceRegistry resolves query IDs to live sources
type SourceRegistry interface {
	Lookup(queryID string) (PartitionFetcher, bool)
}

// PrefetchHandler handles partition prefetch tasks
type PrefetchHandler struct {
	registry SourceRegistry
	log      logrus.FieldLogger
}

// NewPrefetchHandler creates a new prefetch handler
func NewPrefetchHandler(registry SourceRegistry) *PrefetchHandler {
	return &PrefetchHandler{
		registry: registry,
		log:      logrus.WithField("component", "prefetch-handler"),
	}
}

// HandlePrefetch handles a single partition prefetch task. Fetching warms
// the partition cache; the frame itself is discarded.
func (h *PrefetchHandler) HandlePrefetch(ctx context.Context, t *asynq.Task) error {
	var payload PrefetchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		observability.RecordPrefetch("failed")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log := h.log.WithFields(logrus.Fields{
		"query_id":  payload.QueryID,
		"partition": payload.Partition,
	})

	source, ok := h.registry.Lookup(payload.QueryID)
	if !ok {
		// The query was dropped between enqueue and execution. Retrying
		// cannot succeed.
		log.Warn("No registered source for query")
		observability.RecordPrefetch("skipped")
		return fmt.Errorf("%w: %s: %w", ErrUnknownQuery, payload.QueryID, asynq.SkipRetry)
	}

	started := time.Now()

	if _, err := source.GetPartition(ctx, payload.Partition); err != nil {
		if errors.Is(err, request.ErrPartitionOutOfRange) {
			log.Warn("Partition index outside plan")
			observability.RecordPrefetch("skipped")
			return fmt.Errorf("partition %d: %w", payload.Partition, asynq.SkipRetry)
		}

		log.WithError(err).Error("Prefetch failed")
		observability.RecordPrefetch("failed")
		return fmt.Errorf("prefetch partition %d: %w", payload.Partition, err)
	}

	observability.RecordPrefetch("success")

	log.WithField("duration", time.Since(started)).Info("Partition prefetched")

	return nil
}

// Routes returns the task handler routes for Asynq
func (h *PrefetchHandler) Routes() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypePartitionPrefetch: h.HandlePrefetch,
	}
}
