package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Predictia/chronoplan/pkg/archive"
	"github.com/Predictia/chronoplan/pkg/redis"
	"github.com/Predictia/chronoplan/pkg/source"
	"github.com/Predictia/chronoplan/pkg/tasks"
	"github.com/Predictia/chronoplan/pkg/worker"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	workerCfgFile string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start a standalone prefetch worker",
	Long: `The worker consumes partition prefetch tasks for the queries in the
shared configuration. Run it next to the engine to spread prefetch
load across processes.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().StringVar(&workerCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
}

func runWorker(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := loadEngineConfigFromFile(workerCfgFile)
	if err != nil {
		return err
	}

	if err := config.Validate(); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(config.Logging)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	logger.Info("Configuration loaded")

	archiveClient, err := archive.NewClient(logger, &config.Archive)
	if err != nil {
		return err
	}
	if err := archiveClient.Start(); err != nil {
		return err
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: config.Redis.Address})

	// The worker plans the same queries as the engine so prefetch payloads
	// resolve to identical partition indices.
	registry := tasks.NewRegistry()
	for _, qcfg := range config.Queries {
		cache := redis.NewPartitionCache(redisClient, &config.Redis, qcfg.CacheTTL)

		src, err := source.New(logger, qcfg, archiveClient, cache)
		if err != nil {
			return fmt.Errorf("query %q: %w", qcfg.Name, err)
		}

		registry.Register(src.QueryID(), src)
	}

	svc, err := worker.NewService(logger, &config.Worker, asynq.RedisClientOpt{Addr: config.Redis.Address}, registry)
	if err != nil {
		return err
	}

	if err := svc.Start(cmd.Context()); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := svc.Stop(); err != nil {
		return err
	}

	if err := archiveClient.Stop(); err != nil {
		return err
	}

	return redisClient.Close()
}
