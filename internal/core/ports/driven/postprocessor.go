package driven

import "github.com/custodia-labs/lorekeep/internal/core/domain"

// Chunker splits text into spans. Implementations are pure: no storage,
// no shared state between calls.
type Chunker interface {
	// Name returns the strategy name for logging and configuration.
	Name() string

	// Split returns spans whose Length equals len(Text) and whose
	// offsets are non-decreasing.
	Split(text string) []domain.Span
}
