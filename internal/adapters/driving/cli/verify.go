package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-hash every stored object",
	Long: `Scans the object store and re-derives each object's hash from its bytes.
Exits with an error when any object no longer matches its address.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	failures, err := a.Store.VerifyObjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	if failures == nil {
		failures = []domain.IntegrityFailure{}
	}

	if ok, err := structured(cmd, failures); ok {
		if err != nil {
			return err
		}
	} else if len(failures) == 0 {
		cmd.Println(style(cmd, okStyle, "All objects verified."))
	} else {
		for _, f := range failures {
			cmd.Printf("  %s %s\n", style(cmd, errStyle, "corrupt"), f.Hash)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %d objects", domain.ErrIntegrity, len(failures))
	}
	return nil
}
