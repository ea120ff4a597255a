package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
)

// Search modes.
const (
	modeKeyword = "keyword"
	modeLexical = "lexical"
	modeHybrid  = "hybrid"
)

var (
	searchLimit int
	searchMode  string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored chunks",
	Long: `Ranks visible chunks against the query.

Modes:
  keyword  - raw term occurrence counts
  lexical  - TF-IDF cosine similarity
  hybrid   - keyword scores fused with semantic similarity, or with TF-IDF
             similarity when no embedding backend is available (default)`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", modeHybrid, "search mode: keyword, lexical or hybrid")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := search(cmd, a.Store, searchMode, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if ok, err := structured(cmd, results); ok {
		return err
	}
	return outputSearchTable(cmd, results)
}

func search(cmd *cobra.Command, r driving.Retriever, mode, query string, limit int) ([]domain.SearchResult, error) {
	ctx := cmd.Context()
	switch mode {
	case modeKeyword:
		return r.SearchKeyword(ctx, query, limit)
	case modeLexical:
		return r.SearchLexical(ctx, query, limit)
	case modeHybrid, "":
		return r.SearchHybrid(ctx, query, limit)
	default:
		return nil, fmt.Errorf("%w: search mode %q", domain.ErrInvalidInput, mode)
	}
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i := range results {
		r := &results[i]
		// Format: [N] doc#seq (score)
		cmd.Printf("  [%d] %s %s\n", i+1,
			style(cmd, titleStyle, fmt.Sprintf("%s#%d", r.DocID, r.Sequence)),
			style(cmd, scoreStyle, fmt.Sprintf("(%.4f)", r.Score)))
		cmd.Printf("      %s\n", snippet(r.Text, 100))
		cmd.Printf("      %s\n", style(cmd, dimStyle, "chunk "+r.ChunkID))
		cmd.Println()
	}
	return nil
}
