package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

var (
	summaryConversation string
	summaryDecisions    []string
	summaryTasks        []string
	summaryDefinitions  []string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Record and list conversation summaries",
}

var summaryAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Record a summary",
	Long: `Records a conversation summary. Decisions and tasks keep the order in
which they are given. Definitions are term=meaning pairs.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummaryAdd,
}

var summaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible summaries",
	Args:  cobra.NoArgs,
	RunE:  runSummaryList,
}

func init() {
	f := summaryAddCmd.Flags()
	f.StringVar(&summaryConversation, "conversation", "", "conversation id")
	f.StringArrayVar(&summaryDecisions, "decision", nil, "key decision (repeatable)")
	f.StringArrayVar(&summaryTasks, "task", nil, "open task (repeatable)")
	f.StringArrayVar(&summaryDefinitions, "define", nil, "definition as term=meaning (repeatable)")

	summaryCmd.AddCommand(summaryAddCmd)
	summaryCmd.AddCommand(summaryListCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runSummaryAdd(cmd *cobra.Command, args []string) error {
	defs, err := parseDefinitions(summaryDefinitions)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.Store.PutSummary(cmd.Context(), domain.Summary{
		ConversationID: summaryConversation,
		Text:           args[0],
		KeyDecisions:   summaryDecisions,
		OpenTasks:      summaryTasks,
		Definitions:    defs,
	})
	if err != nil {
		return fmt.Errorf("failed to add summary: %w", err)
	}

	if ok, err := structured(cmd, summary); ok {
		return err
	}
	cmd.Printf("Added summary %s\n", summary.ID)
	return nil
}

func parseDefinitions(pairs []string) (map[string]string, error) {
	defs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		term, meaning, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(term) == "" {
			return nil, fmt.Errorf("%w: definition %q must be term=meaning", domain.ErrInvalidInput, p)
		}
		defs[strings.TrimSpace(term)] = strings.TrimSpace(meaning)
	}
	return defs, nil
}

func runSummaryList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	summaries, err := a.Store.ListSummaries(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list summaries: %w", err)
	}

	if ok, err := structured(cmd, summaries); ok {
		return err
	}
	if len(summaries) == 0 {
		cmd.Println("No summaries found.")
		return nil
	}
	for i := range summaries {
		s := &summaries[i]
		header := s.ID
		if s.ConversationID != "" {
			header += " (" + s.ConversationID + ")"
		}
		cmd.Printf("  %s\n", style(cmd, titleStyle, header))
		cmd.Printf("    %s\n", snippet(s.Text, 100))
		for _, d := range s.KeyDecisions {
			cmd.Printf("    decision: %s\n", d)
		}
		for _, t := range s.OpenTasks {
			cmd.Printf("    task: %s\n", t)
		}
		cmd.Println()
	}
	return nil
}
