package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the lexical and semantic indices",
	Long: `Drops both secondary indices and rebuilds them from the visible chunks
of visible documents. Use after a partial load or a failed index update.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Store.Reindex(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	if ok, err := structured(cmd, map[string]int{"indexed": n}); ok {
		return err
	}
	cmd.Printf("Reindexed %d chunks\n", n)
	return nil
}
