package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the store in an interactive terminal UI",
	Long: `Launch the interactive terminal browser.

Search in hybrid, keyword or lexical mode, then open a result to read its
document chunk by chunk with the matching chunk highlighted.

Controls:
  tab      - Cycle search mode
  ↑/k, ↓/j - Navigate results
  Enter    - Search / Open
  [ / ]    - Previous / next chunk
  Esc      - Back
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	browser, err := tui.NewApp(&tui.Ports{Retriever: a.Store, Store: a.Store})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := browser.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
