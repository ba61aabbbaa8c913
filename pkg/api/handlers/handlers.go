// Package handlers implements the request handlers for the plan API.
package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Predictia/chronoplan/pkg/tasks"
)

// Queue hands prefetch tasks to the task queue and reports its state
type Queue interface {
	EnqueuePrefetch(payload tasks.PrefetchPayload, opts ...asynq.Option) error
	IsTaskPendingOrRunning(payload tasks.PrefetchPayload) (bool, error)
	GetQueueStats(queueName string) (*asynq.QueueInfo, error)
}

// Server holds the handler dependencies
type Server struct {
	registry *tasks.Registry
	queue    Queue
	log      logrus.FieldLogger
}

// NewServer creates a new API server instance. registry and queue may be nil
// when the deployment only serves dry-run plans.
func NewServer(registry *tasks.Registry, queue Queue, log logrus.FieldLogger) *Server {
	return &Server{
		registry: registry,
		queue:    queue,
		log:      log.WithField("component", "api.handlers"),
	}
}

// Register mounts the handlers on the given router group.
func (s *Server) Register(router fiber.Router) {
	router.Get("/plan", s.GetPlan)
	router.Get("/queries", s.ListQueries)
	router.Post("/queries/:id/prefetch", s.PrefetchQuery)
	router.Delete("/queries/:id", s.DeleteQuery)
	router.Get("/queue", s.QueueStatus)
}
