package mcp

import (
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
type Ports struct {
	// Retriever backs the search and evidence tools.
	Retriever driving.Retriever

	// Store backs the write tools and the document resources. Without it
	// the server is read-only search.
	Store driving.KnowledgeStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}
