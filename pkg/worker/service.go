package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Predictia/chronoplan/pkg/tasks"
)

// Service defines the public interface for the worker service
type Service interface {
	// Start initializes and starts the worker service
	Start(ctx context.Context) error

	// Stop gracefully shuts down the worker service
	Stop() error
}

// service consumes prefetch tasks and warms the partition cache
type service struct {
	config *Config
	log    logrus.FieldLogger

	done chan struct{}
	wg   sync.WaitGroup

	registry *tasks.Registry
	redisOpt asynq.RedisClientOpt

	server *asynq.Server
}

// NewService creates a new worker service
func NewService(log logrus.FieldLogger, cfg *Config, redisOpt asynq.RedisClientOpt, registry *tasks.Registry) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &service{
		log:      log.WithField("service", "worker"),
		config:   cfg,
		done:     make(chan struct{}),
		registry: registry,
		redisOpt: redisOpt,
	}, nil
}

// Start initializes and starts the worker service
func (s *service) Start(_ context.Context) error {
	handler := tasks.NewPrefetchHandler(s.registry)

	srv := asynq.NewServer(s.redisOpt, asynq.Config{
		Concurrency: s.config.Concurrency,
		Queues: map[string]int{
			tasks.QueuePrefetch: 10,
		},
	})

	mux := asynq.NewServeMux()
	for taskType, handlerFunc := range handler.Routes() {
		mux.HandleFunc(taskType, handlerFunc)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if runErr := srv.Run(mux); runErr != nil {
			s.log.WithError(runErr).Error("Worker server stopped with error")
		}
	}()

	s.server = srv

	s.log.WithField("concurrency", s.config.Concurrency).Info("Worker service started")

	return nil
}

// Stop gracefully shuts down the worker service
func (s *service) Stop() error {
	close(s.done)

	if s.server != nil {
		s.server.Shutdown()
	}

	s.wg.Wait()

	s.log.Info("Worker service stopped")

	return nil
}

// Ensure service implements the interface
var _ Service = (*service)(nil)
