package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

// Search modes accepted by the search tool.
const (
	modeKeyword = "keyword"
	modeLexical = "lexical"
	modeHybrid  = "hybrid"
)

const (
	defaultSearchLimit   = 10
	defaultEvidenceLimit = 5
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Mode  string `json:"mode,omitempty" jsonschema:"keyword, lexical or hybrid (default hybrid)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// EvidenceInput is the input schema for the evidence_pack tool.
type EvidenceInput struct {
	Query string `json:"query" jsonschema:"the question the evidence should support"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of chunks (default 5)"`
}

// EvidenceOutput is the output schema for the evidence_pack tool.
type EvidenceOutput struct {
	Query       string         `json:"query"`
	Items       []EvidenceItem `json:"items"`
	AllVerified bool           `json:"all_verified"`
}

// EvidenceItem joins a chunk with its citation.
type EvidenceItem struct {
	Text     string          `json:"text"`
	Citation domain.Citation `json:"citation"`
}

// registerTools registers the read-only tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Rank stored chunks against a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "evidence_pack",
		Description: "Find chunks for a query with citations (document, byte range, content hash). " +
			"Each citation is re-verified against the object store.",
	}, s.handleEvidence)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var (
		results []domain.SearchResult
		err     error
	)
	switch input.Mode {
	case modeKeyword:
		results, err = s.ports.Retriever.SearchKeyword(ctx, input.Query, limit)
	case modeLexical:
		results, err = s.ports.Retriever.SearchLexical(ctx, input.Query, limit)
	case modeHybrid, "":
		results, err = s.ports.Retriever.SearchHybrid(ctx, input.Query, limit)
	default:
		err = fmt.Errorf("%w: search mode %q", domain.ErrInvalidInput, input.Mode)
	}
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

func (s *Server) handleEvidence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvidenceInput,
) (*mcp.CallToolResult, EvidenceOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultEvidenceLimit
	}

	pack, err := s.ports.Retriever.GetEvidencePack(ctx, input.Query, limit)
	if err != nil {
		return nil, EvidenceOutput{}, err
	}

	output := EvidenceOutput{
		Query:       pack.Query,
		Items:       make([]EvidenceItem, len(pack.Chunks)),
		AllVerified: pack.AllVerified(),
	}
	for i := range pack.Chunks {
		output.Items[i] = EvidenceItem{
			Text:     pack.Chunks[i].Text,
			Citation: pack.Citations[i],
		}
	}

	return nil, output, nil
}
