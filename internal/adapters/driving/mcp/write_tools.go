package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

// FactInput is the input schema for the record_fact tool.
type FactInput struct {
	Subject       string   `json:"subject"`
	Predicate     string   `json:"predicate"`
	Object        string   `json:"object"`
	Confidence    *float64 `json:"confidence,omitempty" jsonschema:"between 0 and 1 (default 1)"`
	SourceChunkID string   `json:"source_chunk_id,omitempty" jsonschema:"chunk the fact was drawn from"`
}

// SummaryInput is the input schema for the record_summary tool.
type SummaryInput struct {
	Text           string            `json:"text"`
	ConversationID string            `json:"conversation_id,omitempty"`
	KeyDecisions   []string          `json:"key_decisions,omitempty"`
	OpenTasks      []string          `json:"open_tasks,omitempty"`
	Definitions    map[string]string `json:"definitions,omitempty" jsonschema:"term to meaning"`
}

// RecordOutput reports the id assigned to a new record.
type RecordOutput struct {
	ID string `json:"id"`
}

// ForgetInput is the input schema for the forget tool.
type ForgetInput struct {
	ID     string `json:"id" jsonschema:"document, chunk, fact or summary id"`
	Reason string `json:"reason,omitempty"`
}

// ForgetOutput reports the outcome of a forget request.
type ForgetOutput struct {
	Status     domain.ForgetStatus `json:"status"`
	TargetID   string              `json:"target_id"`
	Kind       domain.TargetKind   `json:"kind,omitempty"`
	Tombstones int                 `json:"tombstones" jsonschema:"number of tombstones written"`
}

// registerWriteTools registers the tools that modify the store.
func (s *Server) registerWriteTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "record_fact",
		Description: "Store a subject/predicate/object fact, optionally citing a chunk",
	}, s.handleRecordFact)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "record_summary",
		Description: "Store a conversation summary with decisions, open tasks and definitions",
	}, s.handleRecordSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "forget",
		Description: "Hide a document, chunk, fact or summary from all reads and searches. Forgetting a document forgets its chunks.",
	}, s.handleForget)
}

func (s *Server) handleRecordFact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FactInput,
) (*mcp.CallToolResult, RecordOutput, error) {
	confidence := 1.0
	if input.Confidence != nil {
		confidence = *input.Confidence
	}

	fact, err := s.ports.Store.PutFact(ctx, domain.Fact{
		Subject:       input.Subject,
		Predicate:     input.Predicate,
		Object:        input.Object,
		Confidence:    confidence,
		SourceChunkID: input.SourceChunkID,
	})
	if err != nil {
		return nil, RecordOutput{}, err
	}
	return nil, RecordOutput{ID: fact.ID}, nil
}

func (s *Server) handleRecordSummary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummaryInput,
) (*mcp.CallToolResult, RecordOutput, error) {
	summary, err := s.ports.Store.PutSummary(ctx, domain.Summary{
		ConversationID: input.ConversationID,
		Text:           input.Text,
		KeyDecisions:   input.KeyDecisions,
		OpenTasks:      input.OpenTasks,
		Definitions:    input.Definitions,
	})
	if err != nil {
		return nil, RecordOutput{}, err
	}
	return nil, RecordOutput{ID: summary.ID}, nil
}

func (s *Server) handleForget(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ForgetInput,
) (*mcp.CallToolResult, ForgetOutput, error) {
	res, err := s.ports.Store.Forget(ctx, input.ID, input.Reason)
	if err != nil {
		return nil, ForgetOutput{}, err
	}
	return nil, ForgetOutput{
		Status:     res.Status,
		TargetID:   res.TargetID,
		Kind:       res.Kind,
		Tombstones: len(res.Tombstones),
	}, nil
}
