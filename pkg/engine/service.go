package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // pprof is intentionally exposed when pprofAddr is configured
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Predictia/chronoplan/pkg/api"
	"github.com/Predictia/chronoplan/pkg/api/handlers"
	"github.com/Predictia/chronoplan/pkg/archive"
	"github.com/Predictia/chronoplan/pkg/observability"
	"github.com/Predictia/chronoplan/pkg/redis"
	"github.com/Predictia/chronoplan/pkg/source"
	"github.com/Predictia/chronoplan/pkg/tasks"
	"github.com/Predictia/chronoplan/pkg/worker"
)

// Service wires the archive client, query sources, prefetch queue and API
// into one process.
type Service struct {
	config *Config
	log    *logrus.Logger

	redisClient *goredis.Client
	archive     archive.ClientInterface
	registry    *tasks.Registry
	queue       *tasks.QueueManager
	scheduler   *tasks.Scheduler
	worker      worker.Service
	api         api.Service

	healthServer *http.Server
	pprofServer  *http.Server
}

// NewService creates a new engine service
func NewService(log *logrus.Logger, cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Address})
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	archiveClient, err := archive.NewClient(log, &cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}

	registry := tasks.NewRegistry()
	queue := tasks.NewQueueManager(&redisOpt)

	workerService, err := worker.NewService(log, &cfg.Worker, redisOpt, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker service: %w", err)
	}

	apiService := api.NewService(&cfg.API, handlers.NewServer(registry, queue, log), log)

	s := &Service{
		config:      cfg,
		log:         log,
		redisClient: redisClient,
		archive:     archiveClient,
		registry:    registry,
		queue:       queue,
		worker:      workerService,
		api:         apiService,
	}

	if cfg.Prefetch.Enabled {
		scheduler, err := tasks.NewScheduler(log, queue, registry, cfg.Prefetch.Schedule)
		if err != nil {
			return nil, fmt.Errorf("failed to create prefetch scheduler: %w", err)
		}
		s.scheduler = scheduler
	}

	return s, nil
}

// Start starts the engine and all its components
func (s *Service) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.archive.Start(); err != nil {
		return fmt.Errorf("archive unreachable: %w", err)
	}

	if err := s.registerQueries(); err != nil {
		return err
	}

	observability.StartMetricsServer(s.log, s.config.MetricsAddr)

	if err := s.worker.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	if err := s.api.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if s.scheduler != nil {
		g.Go(func() error {
			if err := s.scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if s.config.PProfAddr != "" {
		g.Go(func() error {
			if err := s.startPProf(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			<-ctx.Done()
			return nil
		})
	}

	if s.config.HealthCheckAddr != "" {
		g.Go(func() error {
			if err := s.startHealthCheck(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			<-ctx.Done()
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		// The current context is canceled; clean up on a fresh one.
		return s.stopComponents(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// registerQueries plans each configured query and makes it addressable by
// name through the registry, the API and the prefetch queue.
func (s *Service) registerQueries() error {
	for _, cfg := range s.config.Queries {
		cache := redis.NewPartitionCache(s.redisClient, &s.config.Redis, cfg.CacheTTL)

		src, err := source.New(s.log, cfg, s.archive, cache)
		if err != nil {
			return fmt.Errorf("query %q: %w", cfg.Name, err)
		}

		s.registry.Register(src.QueryID(), src)
	}

	return nil
}

func (s *Service) stopComponents(ctx context.Context) error {
	cleanupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.log.Info("Starting graceful shutdown...")

	if s.scheduler != nil {
		if err := s.scheduler.Stop(); err != nil {
			s.log.WithError(err).Error("failed to stop scheduler")
		}
	}

	if err := s.api.Stop(); err != nil {
		s.log.WithError(err).Error("failed to stop API")
	}

	if err := s.worker.Stop(); err != nil {
		s.log.WithError(err).Error("failed to stop worker")
	}

	if err := s.queue.Close(); err != nil {
		s.log.WithError(err).Error("failed to close queue")
	}

	if err := s.archive.Stop(); err != nil {
		s.log.WithError(err).Error("failed to stop archive client")
	}

	if err := s.redisClient.Close(); err != nil {
		s.log.WithError(err).Error("failed to close redis")
	}

	if s.pprofServer != nil {
		if err := s.pprofServer.Shutdown(cleanupCtx); err != nil {
			s.log.WithError(err).Error("failed to shutdown pprof server")
		}
	}

	if s.healthServer != nil {
		if err := s.healthServer.Shutdown(cleanupCtx); err != nil {
			s.log.WithError(err).Error("failed to shutdown health server")
		}
	}

	if err := observability.StopMetricsServer(cleanupCtx); err != nil {
		s.log.WithError(err).Error("failed to stop metrics server")
	}

	s.log.Info("Engine stopped gracefully")

	return nil
}

func (s *Service) startPProf() error {
	s.log.WithField("addr", s.config.PProfAddr).Info("Starting pprof server")

	s.pprofServer = &http.Server{
		Addr:              s.config.PProfAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	return s.pprofServer.ListenAndServe()
}

func (s *Service) startHealthCheck() error {
	s.log.WithField("addr", s.config.HealthCheckAddr).Info("Starting healthcheck server")

	s.healthServer = &http.Server{
		Addr:              s.config.HealthCheckAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	s.healthServer.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return s.healthServer.ListenAndServe()
}
