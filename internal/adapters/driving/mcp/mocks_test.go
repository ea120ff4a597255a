package mcp

import (
	"context"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
)

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	results  []domain.SearchResult
	pack     *domain.EvidencePack
	err      error
	lastMode string
	lastN    int
}

func (m *mockRetriever) SearchKeyword(_ context.Context, _ string, limit int) ([]domain.SearchResult, error) {
	m.lastMode, m.lastN = "keyword", limit
	return m.results, m.err
}

func (m *mockRetriever) SearchLexical(_ context.Context, _ string, limit int) ([]domain.SearchResult, error) {
	m.lastMode, m.lastN = "lexical", limit
	return m.results, m.err
}

func (m *mockRetriever) SearchHybrid(_ context.Context, _ string, limit int) ([]domain.SearchResult, error) {
	m.lastMode, m.lastN = "hybrid", limit
	return m.results, m.err
}

func (m *mockRetriever) GetEvidencePack(_ context.Context, query string, limit int) (*domain.EvidencePack, error) {
	m.lastN = limit
	if m.err != nil {
		return nil, m.err
	}
	if m.pack == nil {
		return &domain.EvidencePack{Query: query, Chunks: []domain.EvidenceChunk{}, Citations: []domain.Citation{}}, nil
	}
	return m.pack, nil
}

// mockStore overrides the KnowledgeStore methods the server calls. The
// embedded interface is nil, so any other call panics.
type mockStore struct {
	driving.KnowledgeStore

	docs    []domain.Document
	chunks  []domain.Chunk
	stats   domain.StoreStats
	forget  domain.ForgetResult
	err     error
	fact    domain.Fact
	summary domain.Summary
}

func (m *mockStore) ListDocs(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockStore) GetDoc(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetChunksForDoc(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockStore) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockStore) Forget(_ context.Context, _, _ string) (domain.ForgetResult, error) {
	return m.forget, m.err
}

func (m *mockStore) PutFact(_ context.Context, fact domain.Fact) (*domain.Fact, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.fact = fact
	fact.ID = "fact-1"
	return &fact, nil
}

func (m *mockStore) PutSummary(_ context.Context, summary domain.Summary) (*domain.Summary, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.summary = summary
	summary.ID = "summary-1"
	return &summary, nil
}
