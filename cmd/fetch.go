package cmd

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Predictia/chronoplan/pkg/archive"
	"github.com/Predictia/chronoplan/pkg/dataset"
	"github.com/Predictia/chronoplan/pkg/redis"
	"github.com/Predictia/chronoplan/pkg/source"
)

var errQueryNotConfigured = errors.New("query not found in configuration")

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	fetchCfgFile   string
	fetchQueryName string
	fetchOutput    string
	fetchFormat    string
	fetchNoCache   bool
)

var errUnknownFormat = errors.New("output format must be csv or json")

//nolint:gochecknoglobals // Cobra commands are typically global
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a configured query's full window",
	Long: `Fetch pulls every partition of a configured query, concatenates them
along the time dimension and writes the result as CSV or JSON.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
	fetchCmd.Flags().StringVar(&fetchQueryName, "query", "", "name of the query to fetch (required)")
	fetchCmd.Flags().StringVar(&fetchOutput, "output", "-", "output file, - for stdout")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "csv", "output format: csv or json")
	fetchCmd.Flags().BoolVar(&fetchNoCache, "no-cache", false, "bypass the partition cache")

	_ = fetchCmd.MarkFlagRequired("query")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := loadEngineConfigFromFile(fetchCfgFile)
	if err != nil {
		return err
	}

	var queryCfg *source.Config
	for _, qcfg := range config.Queries {
		if qcfg.Name == fetchQueryName {
			queryCfg = qcfg
			break
		}
	}
	if queryCfg == nil {
		return fmt.Errorf("%w: %q", errQueryNotConfigured, fetchQueryName)
	}

	archiveClient, err := archive.NewClient(logger, &config.Archive)
	if err != nil {
		return err
	}
	if err := archiveClient.Start(); err != nil {
		return err
	}
	defer func() {
		if stopErr := archiveClient.Stop(); stopErr != nil {
			logger.WithError(stopErr).Warn("Failed to stop archive client")
		}
	}()

	var cache source.Cache
	if !fetchNoCache && config.Redis.Address != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: config.Redis.Address})
		defer func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				logger.WithError(closeErr).Warn("Failed to close redis client")
			}
		}()
		cache = redis.NewPartitionCache(redisClient, &config.Redis, queryCfg.CacheTTL)
	}

	src, err := source.New(logger, queryCfg, archiveClient, cache)
	if err != nil {
		return err
	}

	frame, err := src.ReadAll(cmd.Context())
	if err != nil {
		return err
	}

	return writeFrame(frame, fetchOutput, fetchFormat)
}

func writeFrame(frame *dataset.Frame, output, format string) error {
	out := os.Stdout
	if output != "-" {
		f, err := os.Create(output) //nolint:gosec // User-provided output path
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // flushed below
		out = f
	}

	switch format {
	case "csv":
		return writeCSV(frame, out)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(frame)
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

func writeCSV(frame *dataset.Frame, out io.Writer) error {
	w := csv.NewWriter(out)

	variables := frame.Variables()
	header := append([]string{"time"}, variables...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, ts := range frame.Times {
		row := make([]string, 0, len(variables)+1)
		row = append(row, ts.Format(time.RFC3339))
		for _, name := range variables {
			row = append(row, strconv.FormatFloat(frame.Series[name][i], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
