package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Predictia/chronoplan/pkg/engine"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	serveCfgFile string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chronoplan engine service",
	Long: `The engine service registers the configured queries, serves the plan
API and runs the prefetch queue.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := loadEngineConfigFromFile(serveCfgFile)
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(config.Logging)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	logger.Info("Configuration loaded")

	svc, err := engine.NewService(logger, config)
	if err != nil {
		return err
	}

	// Blocks until SIGINT/SIGTERM, then shuts components down.
	return svc.Start(cmd.Context())
}
