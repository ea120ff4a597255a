package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

var (
	statsMetrics bool
	statsRuntime bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long: `Shows counts from every store component and how cleanly persisted state
was loaded. --metrics dumps the Prometheus instruments of this process in
text exposition format.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsMetrics, "metrics", false, "print Prometheus metrics")
	statsCmd.Flags().BoolVar(&statsRuntime, "runtime", false, "include Go runtime metrics with --metrics")
	rootCmd.AddCommand(statsCmd)
}

// statsOutput is the structured form of the stats command.
type statsOutput struct {
	Dir      string            `json:"dir"`
	Backend  string            `json:"backend"`
	Load     domain.LoadStatus `json:"load"`
	Problems []string          `json:"problems,omitempty"`
	domain.StoreStats
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.Store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsMetrics {
		return a.Metrics.WriteText(cmd.OutOrStdout(), statsRuntime)
	}

	report := a.Store.LoadReport()
	out := statsOutput{
		Dir:        a.Settings.Dir,
		Backend:    a.Settings.Backend,
		Load:       report.Status(),
		StoreStats: stats,
	}
	for _, p := range report.Problems {
		out.Problems = append(out.Problems, p.Error())
	}

	if ok, err := structured(cmd, out); ok {
		return err
	}

	cmd.Printf("Store: %s (%s)\n\n", out.Dir, out.Backend)
	cmd.Printf("  Documents:   %d\n", stats.Index.Documents)
	cmd.Printf("  Chunks:      %d\n", stats.Index.Chunks)
	cmd.Printf("  Facts:       %d\n", stats.Index.Facts)
	cmd.Printf("  Summaries:   %d\n", stats.Index.Summaries)
	cmd.Printf("  Tombstones:  %d\n", stats.Index.Tombstones)
	cmd.Printf("  Objects:     %d (%d bytes)\n", stats.Objects.Count, stats.Objects.TotalBytes)
	cmd.Printf("  Lexical:     %d chunks\n", stats.LexicalChunks)
	if stats.SemanticReady {
		cmd.Printf("  Semantic:    %d chunks\n", stats.SemanticCount)
	} else {
		cmd.Printf("  Semantic:    %s\n", style(cmd, dimStyle, "not ready"))
	}

	load := string(out.Load)
	if out.Load != domain.LoadClean {
		load = style(cmd, warnStyle, load)
	}
	cmd.Printf("  Load:        %s\n", load)
	for _, p := range out.Problems {
		cmd.Printf("    %s\n", p)
	}
	return nil
}
