package driving

import (
	"context"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

// Retriever ranks chunks and assembles cited evidence.
type Retriever interface {
	// SearchKeyword scores visible chunks by raw query-term occurrence counts.
	SearchKeyword(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// SearchLexical ranks visible chunks by TF-IDF cosine similarity.
	SearchLexical(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// SearchHybrid fuses keyword scores with semantic (or lexical) similarity.
	SearchHybrid(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// GetEvidencePack returns keyword hits with integrity-checked citations.
	GetEvidencePack(ctx context.Context, query string, limit int) (*domain.EvidencePack, error)
}
