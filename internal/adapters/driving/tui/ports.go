// Package tui provides an interactive terminal browser for the knowledge
// store: search in any mode, then open a hit to read its document chunk by
// chunk.
package tui

import (
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Retriever runs searches.
	Retriever driving.Retriever

	// Store loads documents and their chunks.
	Store driving.KnowledgeStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	if p.Store == nil {
		return ErrMissingStore
	}
	return nil
}
