package domain

// SearchResult is one ranked chunk.
type SearchResult struct {
	ChunkID  string `json:"chunk_id"`
	DocID    string `json:"doc_id"`
	Sequence int    `json:"sequence"`
	Text     string `json:"text"`

	// Score is the ranking score of the search that produced the result.
	Score float64 `json:"score"`

	// KeywordScore and VectorScore are the normalised components of a
	// hybrid score. Both are zero for single-signal searches.
	KeywordScore float64 `json:"keyword_score,omitempty"`
	VectorScore  float64 `json:"vector_score,omitempty"`
}

// EvidenceChunk is the prompt-facing half of an evidence pack.
type EvidenceChunk struct {
	ChunkID  string  `json:"chunk_id"`
	DocID    string  `json:"doc_id"`
	Sequence int     `json:"sequence"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// Citation is the provenance half of an evidence pack. Verified is
// recomputed from the object store at assembly time.
type Citation struct {
	DocID       string  `json:"doc_id"`
	DocTitle    string  `json:"doc_title"`
	DocSource   string  `json:"doc_source"`
	ChunkID     string  `json:"chunk_id"`
	ByteOffset  int     `json:"byte_offset"`
	ByteLength  int     `json:"byte_length"`
	ContentHash string  `json:"content_hash"`
	ObjectHash  string  `json:"object_hash"`
	Verified    bool    `json:"verified"`
	Score       float64 `json:"score"`
}

// EvidencePack bundles chunks and their citations. Chunks[i] and
// Citations[i] always describe the same hit.
type EvidencePack struct {
	Query     string          `json:"query"`
	Chunks    []EvidenceChunk `json:"chunks"`
	Citations []Citation      `json:"citations"`
}

// AllVerified returns true if every citation passed its integrity check.
func (p *EvidencePack) AllVerified() bool {
	for i := range p.Citations {
		if !p.Citations[i].Verified {
			return false
		}
	}
	return true
}
