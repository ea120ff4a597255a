package semantic

import (
	"context"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
)

var _ driven.SemanticIndex = Null{}

// Null is the semantic index used when no embedding backend is available.
// Every operation succeeds and does nothing.
type Null struct {
	// Reason says why the backend is unavailable.
	Reason string
}

// IndexChunk does nothing.
func (Null) IndexChunk(context.Context, string, string) error { return nil }

// EnsureIndex indexes nothing.
func (Null) EnsureIndex(context.Context, []driven.IndexEntry) (int, error) { return 0, nil }

// Search returns no hits.
func (Null) Search(context.Context, string, int) ([]driven.SearchHit, error) { return nil, nil }

// Len is always zero.
func (Null) Len() int { return 0 }

// IsReady is always false.
func (Null) IsReady() bool { return false }

// Reset does nothing.
func (Null) Reset(context.Context) error { return nil }

// LoadReport is always clean.
func (Null) LoadReport() domain.LoadReport {
	return domain.LoadReport{Component: "semantic index"}
}
