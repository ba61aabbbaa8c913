package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler periodically re-enqueues prefetch tasks for every partition of
// every registered query, keeping the partition cache warm across TTL expiry.
type Scheduler struct {
	log      logrus.FieldLogger
	queue    *QueueManager
	registry *Registry
	interval time.Duration
	done     chan struct{}
}

// NewScheduler creates a scheduler that refreshes on the given cron schedule.
func NewScheduler(log logrus.FieldLogger, queue *QueueManager, registry *Registry, schedule string) (*Scheduler, error) {
	interval, err := ParseScheduleInterval(schedule)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		log:      log.WithField("component", "prefetch-scheduler"),
		queue:    queue,
		registry: registry,
		interval: interval,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the refresh loop. Blocks until the context is canceled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.log.WithField("interval", s.interval).Info("Starting prefetch scheduler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			s.refresh()
		}
	}
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.log.Info("Stopping prefetch scheduler")
	close(s.done)
	return nil
}

func (s *Scheduler) refresh() {
	now := time.Now().UTC()

	for _, queryID := range s.registry.QueryIDs() {
		source, ok := s.registry.Lookup(queryID)
		if !ok {
			continue
		}

		for i := range source.PartitionCount() {
			payload := PrefetchPayload{
				QueryID:    queryID,
				Partition:  i,
				EnqueuedAt: now,
			}

			err := s.queue.EnqueuePrefetch(payload)
			if err != nil {
				// An in-flight task for the same partition is fine.
				if errors.Is(err, asynq.ErrTaskIDConflict) {
					continue
				}

				s.log.WithError(err).WithFields(logrus.Fields{
					"query_id":  queryID,
					"partition": i,
				}).Error("Failed to enqueue prefetch")
			}
		}
	}
}

// ParseScheduleInterval converts a cron schedule string to a duration.
// Supports @every format ("@every 30s") and standard five-field cron
// expressions, for which the interval between consecutive runs is used.
func ParseScheduleInterval(schedule string) (time.Duration, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule format: %w", err)
	}

	if strings.HasPrefix(schedule, "@every ") {
		duration, err := time.ParseDuration(strings.TrimPrefix(schedule, "@every "))
		if err != nil {
			return 0, fmt.Errorf("failed to parse @every duration: %w", err)
		}
		return duration, nil
	}

	now := time.Now()
	next1 := sched.Next(now)
	next2 := sched.Next(next1)

	return next2.Sub(next1), nil
}
