package handlers

import (
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Predictia/chronoplan/pkg/tasks"
)

// QuerySummary describes one registered query.
type QuerySummary struct {
	QueryID    string `json:"query_id"`
	Partitions int    `json:"partitions"`
}

// PrefetchResponse reports how many partitions were enqueued.
type PrefetchResponse struct {
	QueryID  string `json:"query_id"`
	Enqueued int    `json:"enqueued"`
	Skipped  int    `json:"skipped"`
}

// ListQueries returns the currently registered queries.
func (s *Server) ListQueries(c fiber.Ctx) error {
	summaries := []QuerySummary{}

	if s.registry != nil {
		ids := s.registry.QueryIDs()
		sort.Strings(ids)

		for _, id := range ids {
			source, ok := s.registry.Lookup(id)
			if !ok {
				continue
			}
			summaries = append(summaries, QuerySummary{
				QueryID:    id,
				Partitions: source.PartitionCount(),
			})
		}
	}

	return c.JSON(summaries)
}

// PrefetchQuery enqueues prefetch tasks for every partition of a query.
// Partitions already queued are counted as skipped.
func (s *Server) PrefetchQuery(c fiber.Ctx) error {
	if s.registry == nil || s.queue == nil {
		return ErrPrefetchUnavailable
	}

	queryID := c.Params("id")

	source, ok := s.registry.Lookup(queryID)
	if !ok {
		return ErrQueryNotFound
	}

	now := time.Now().UTC()
	enqueued, skipped := 0, 0

	for i := range source.PartitionCount() {
		payload := tasks.PrefetchPayload{
			QueryID:    queryID,
			Partition:  i,
			EnqueuedAt: now,
		}

		queued, err := s.queue.IsTaskPendingOrRunning(payload)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"query_id":  queryID,
				"partition": i,
			}).Warn("Failed to inspect queue state")
		}
		if queued {
			skipped++
			continue
		}

		if err := s.queue.EnqueuePrefetch(payload); err != nil {
			// Enqueued by someone else between the inspection and now.
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				skipped++
				continue
			}

			s.log.WithError(err).WithFields(logrus.Fields{
				"query_id":  queryID,
				"partition": i,
			}).Error("Failed to enqueue prefetch")

			return fiber.NewError(fiber.StatusInternalServerError, "failed to enqueue prefetch")
		}
		enqueued++
	}

	return c.Status(fiber.StatusAccepted).JSON(PrefetchResponse{
		QueryID:  queryID,
		Enqueued: enqueued,
		Skipped:  skipped,
	})
}

// DeleteQuery drops a registered query and its cached partitions. Prefetch
// tasks still queued for it are skipped when they execute.
func (s *Server) DeleteQuery(c fiber.Ctx) error {
	if s.registry == nil {
		return ErrQueryNotFound
	}

	queryID := c.Params("id")
	if _, ok := s.registry.Lookup(queryID); !ok {
		return ErrQueryNotFound
	}

	if err := s.registry.Unregister(c.Context(), queryID); err != nil {
		s.log.WithError(err).WithField("query_id", queryID).
			Warn("Failed to invalidate cached partitions")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// QueueStatusResponse summarizes the prefetch queue.
type QueueStatusResponse struct {
	Queue     string `json:"queue"`
	Size      int    `json:"size"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Retry     int    `json:"retry"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
}

// QueueStatus reports the current state of the prefetch queue.
func (s *Server) QueueStatus(c fiber.Ctx) error {
	if s.queue == nil {
		return ErrPrefetchUnavailable
	}

	info, err := s.queue.GetQueueStats(tasks.QueuePrefetch)
	if err != nil {
		s.log.WithError(err).Error("Failed to read queue stats")
		return fiber.NewError(fiber.StatusServiceUnavailable, "queue stats unavailable")
	}

	return c.JSON(QueueStatusResponse{
		Queue:     info.Queue,
		Size:      info.Size,
		Pending:   info.Pending,
		Active:    info.Active,
		Retry:     info.Retry,
		Completed: info.Completed,
		Failed:    info.Failed,
	})
}
