package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Predictia/chronoplan/pkg/partition"
	"github.com/Predictia/chronoplan/pkg/source"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	planQueryFile string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Resolve a query's partition plan without fetching",
	Long: `Plan reads a query definition, resolves its time axis and prints the
retrieval chunks and partition count. No archive request is issued.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planQueryFile, "query", "query.yaml", "query file (default is query.yaml)")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := loadQueryConfigFromFile(planQueryFile)
	if err != nil {
		return err
	}

	// Planning never touches the archive, so no client is needed.
	src, err := source.New(logger, config, nil, nil)
	if err != nil {
		return err
	}

	plan := src.Plan()

	fmt.Printf("mode:       %s\n", config.Mode)
	fmt.Printf("partitions: %d\n", plan.Partitions())

	if plan.Mode == partition.ModeStep {
		fmt.Printf("steps:      %v\n", plan.Steps)
		return nil
	}

	fmt.Printf("ticks:      %d\n\n", len(src.Ticks()))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHUNK\tSTART IDX\tSTART DATE\tEND IDX\tEND DATE\tSIZE")
	for i, chunk := range src.Chunks() {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\t%d\n",
			i,
			chunk.StartIndex, chunk.StartDate.Format("2006-01-02 15:04"),
			chunk.EndIndex, chunk.EndDate.Format("2006-01-02 15:04"),
			chunk.Size)
	}

	return w.Flush()
}
