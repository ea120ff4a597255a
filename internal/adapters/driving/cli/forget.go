package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var forgetReason string

var forgetCmd = &cobra.Command{
	Use:   "forget [id]",
	Short: "Tombstone a document, chunk, fact or summary",
	Long: `Hides the entity with the given id from every read and search.
Forgetting a document also forgets each of its chunks. Nothing is removed
from disk and a forgotten id stays forgotten.`,
	Args: cobra.ExactArgs(1),
	RunE: runForget,
}

func init() {
	forgetCmd.Flags().StringVarP(&forgetReason, "reason", "r", "", "reason recorded on the tombstone")
	rootCmd.AddCommand(forgetCmd)
}

func runForget(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Store.Forget(cmd.Context(), args[0], forgetReason)
	if err != nil {
		return fmt.Errorf("forget failed: %w", err)
	}

	if ok, err := structured(cmd, res); ok {
		return err
	}
	if !res.Found() {
		cmd.Printf("Not found: %s\n", res.TargetID)
		return nil
	}
	cmd.Printf("Forgot %s %s (%d tombstones)\n", res.Kind, res.TargetID, len(res.Tombstones))
	return nil
}
