package domain

// ObjectStats summarises the object store.
type ObjectStats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
}

// IndexStats counts visible rows in the metadata index.
type IndexStats struct {
	Documents  int `json:"documents"`
	Chunks     int `json:"chunks"`
	Facts      int `json:"facts"`
	Summaries  int `json:"summaries"`
	Tombstones int `json:"tombstones"`
}

// StoreStats aggregates the state of every store component.
type StoreStats struct {
	Index         IndexStats  `json:"index"`
	Objects       ObjectStats `json:"objects"`
	LexicalChunks int         `json:"lexical_chunks"`
	SemanticReady bool        `json:"semantic_ready"`
	SemanticCount int         `json:"semantic_chunks"`
}

// IntegrityFailure identifies an object whose bytes no longer hash to its address.
type IntegrityFailure struct {
	Hash   string `json:"hash"`
	Reason string `json:"reason"`
}
