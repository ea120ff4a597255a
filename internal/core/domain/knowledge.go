package domain

import "time"

// Fact is a subject/predicate/object triple. Facts are usually written back
// by an answer-generation consumer after reading an evidence pack.
type Fact struct {
	ID        string `json:"id" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Predicate string `json:"predicate" validate:"required"`
	Object    string `json:"object"`

	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`

	// SourceChunkID is a weak reference; the chunk may since have been forgotten.
	SourceChunkID string `json:"source_chunk_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Summary condenses a conversation into decisions, tasks and definitions.
type Summary struct {
	ID             string `json:"id" validate:"required"`
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text" validate:"required"`

	// KeyDecisions keeps the order in which decisions were recorded.
	KeyDecisions []string          `json:"key_decisions"`
	OpenTasks    []string          `json:"open_tasks"`
	Definitions  map[string]string `json:"definitions"`

	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
