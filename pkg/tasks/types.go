// Package tasks provides partition prefetch queuing using Asynq
package tasks

import (
	"fmt"
	"time"
)

const (
	// TypePartitionPrefetch is the task type for partition prefetches
	TypePartitionPrefetch = "partition:prefetch"

	// QueuePrefetch is the queue prefetch tasks are routed to
	QueuePrefetch = "prefetch"
)

// PrefetchPayload represents the payload for a partition prefetch task
type PrefetchPayload struct {
	QueryID    string    `json:"query_id"`
	Partition  int       `json:"partition"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// UniqueID returns a unique identifier for this task. A query's partition
// is only ever prefetched once at a time; re-enqueueing the same partition
// while one is in flight is a no-op.
func (p PrefetchPayload) UniqueID() string {
	return fmt.Sprintf("%s:%d", p.QueryID, p.Partition)
}

// QueueName returns the queue name for this task payload
func (p PrefetchPayload) QueueName() string {
	return QueuePrefetch
}
