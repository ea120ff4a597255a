package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

var (
	factConfidence  float64
	factSourceChunk string
)

var factCmd = &cobra.Command{
	Use:   "fact",
	Short: "Record and list facts",
	Long:  `Facts are subject/predicate/object triples, optionally linked to the chunk they were drawn from.`,
}

var factAddCmd = &cobra.Command{
	Use:   "add [subject] [predicate] [object]",
	Short: "Record a fact",
	Args:  cobra.ExactArgs(3),
	RunE:  runFactAdd,
}

var factListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible facts",
	Args:  cobra.NoArgs,
	RunE:  runFactList,
}

func init() {
	factAddCmd.Flags().Float64VarP(&factConfidence, "confidence", "c", 1.0, "confidence between 0 and 1")
	factAddCmd.Flags().StringVar(&factSourceChunk, "source-chunk", "", "id of the chunk the fact came from")

	factCmd.AddCommand(factAddCmd)
	factCmd.AddCommand(factListCmd)
	rootCmd.AddCommand(factCmd)
}

func runFactAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fact, err := a.Store.PutFact(cmd.Context(), domain.Fact{
		Subject:       args[0],
		Predicate:     args[1],
		Object:        args[2],
		Confidence:    factConfidence,
		SourceChunkID: factSourceChunk,
	})
	if err != nil {
		return fmt.Errorf("failed to add fact: %w", err)
	}

	if ok, err := structured(cmd, fact); ok {
		return err
	}
	cmd.Printf("Added fact %s\n", fact.ID)
	return nil
}

func runFactList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	facts, err := a.Store.ListFacts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list facts: %w", err)
	}

	if ok, err := structured(cmd, facts); ok {
		return err
	}
	if len(facts) == 0 {
		cmd.Println("No facts found.")
		return nil
	}
	for i := range facts {
		f := &facts[i]
		cmd.Printf("  %s %s %s %s\n", f.Subject, style(cmd, titleStyle, f.Predicate), f.Object,
			style(cmd, scoreStyle, fmt.Sprintf("(%.2f)", f.Confidence)))
		cmd.Printf("    %s\n", style(cmd, dimStyle, f.ID))
	}
	return nil
}
