package domain

import "time"

// Document is an ingested source text. Its text lives in its chunks;
// the document row only carries descriptive metadata.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id" validate:"required"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// Source locates the original text (file path, URL, etc).
	Source string `json:"source"`

	// Kind classifies the document (e.g. "text", "markdown", "note").
	Kind string `json:"kind"`

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the document row was last written.
	UpdatedAt time.Time `json:"updated_at"`

	// ChunkCount is the number of chunks produced at ingest.
	ChunkCount int `json:"chunk_count" validate:"gte=0"`

	// TotalBytes is the UTF-8 byte size of the ingested text.
	TotalBytes int `json:"total_bytes" validate:"gte=0"`

	// Encoding names the text encoding of the source.
	Encoding string `json:"encoding"`

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Chunk is a segment of a document's text. Its ID is the content hash of
// Text, so byte-identical text always yields the same chunk ID even across
// documents.
type Chunk struct {
	// ID is the content hash of Text.
	ID string `json:"id" validate:"required"`

	// DocID links to the parent Document.
	DocID string `json:"doc_id" validate:"required"`

	// Sequence is the ordinal position within the document.
	Sequence int `json:"sequence" validate:"gte=0"`

	// Text is the chunk content.
	Text string `json:"text"`

	// ContentHash is the digest of Text (equal to ID).
	ContentHash string `json:"content_hash" validate:"required"`

	// ByteOffset is the offset of Text in the source, in bytes.
	ByteOffset int `json:"byte_offset" validate:"gte=0"`

	// ByteLength is the UTF-8 byte length of Text.
	ByteLength int `json:"byte_length" validate:"gte=0"`

	// CreatedAt is when the chunk row was written.
	CreatedAt time.Time `json:"created_at"`

	// ObjectHash addresses the chunk's record in the object store.
	ObjectHash string `json:"object_hash"`

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IngestRequest describes a text to be chunked and stored.
type IngestRequest struct {
	// DocID is optional; a random ID is generated when empty.
	DocID string

	Title    string
	Source   string
	Kind     string
	Encoding string
	Text     string
	Metadata map[string]any

	// Strategy selects the chunker ("fixed" or "paragraph").
	// Empty uses the store's configured strategy.
	Strategy string
}

// Span is one chunker output: a slice of source text and its byte position.
// Length always equals len(Text).
type Span struct {
	Text   string
	Offset int
	Length int
}
