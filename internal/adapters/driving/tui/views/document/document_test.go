package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
)

// mockStore serves one document. The embedded interface is nil, so any
// method the view does not use panics.
type mockStore struct {
	driving.KnowledgeStore

	doc    *domain.Document
	chunks []domain.Chunk
	err    error
}

func (m *mockStore) GetDoc(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.doc == nil || m.doc.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.doc, nil
}

func (m *mockStore) GetChunksForDoc(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, nil
}

func testStore(n int) *mockStore {
	chunks := make([]domain.Chunk, n)
	offset := 0
	for i := range chunks {
		text := strings.Repeat("tide ", 4) + string(rune('a'+i))
		chunks[i] = domain.Chunk{
			ID:         "chunk" + string(rune('a'+i)),
			DocID:      "harbour",
			Sequence:   i,
			Text:       text,
			ByteOffset: offset,
			ByteLength: len(text),
		}
		offset += len(text)
	}
	return &mockStore{
		doc:    &domain.Document{ID: "harbour", Title: "Harbour Log", Kind: "text", Source: "notes/harbour.txt"},
		chunks: chunks,
	}
}

// load opens the document and feeds the loaded message back to the view.
func load(t *testing.T, v *View, docID, chunkID string) *View {
	t.Helper()
	cmd := v.Open(docID, chunkID)
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	v, _ = v.Update(cmd())
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, &mockStore{})

	require.NotNil(t, v)
	assert.Nil(t, v.Document())
	assert.Equal(t, -1, v.Focused())
	assert.Nil(t, v.Init())
}

func TestView_OpenLoadsDocumentAndFocusesChunk(t *testing.T) {
	v := NewView(styles.DefaultStyles(), testStore(3))
	v.SetDimensions(80, 40)

	v = load(t, v, "harbour", "chunkb")

	require.NoError(t, v.Err())
	assert.False(t, v.Loading())
	require.NotNil(t, v.Document())
	assert.Len(t, v.Chunks(), 3)
	assert.Equal(t, 1, v.Focused())

	out := v.View()
	assert.Contains(t, out, "Harbour Log")
	assert.Contains(t, out, "3 chunks")
	assert.Contains(t, out, "notes/harbour.txt")
	assert.Contains(t, out, "#1  offset")
}

func TestView_UnknownChunkLeavesNothingFocused(t *testing.T) {
	v := NewView(nil, testStore(2))

	v = load(t, v, "harbour", "missing")

	assert.Equal(t, -1, v.Focused())
	assert.Equal(t, 0, v.ScrollOffset())
}

func TestView_LoadError(t *testing.T) {
	v := NewView(nil, &mockStore{err: errors.New("disk gone")})

	v = load(t, v, "harbour", "")

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "disk gone")
}

func TestView_NotFound(t *testing.T) {
	v := NewView(nil, testStore(1))

	v = load(t, v, "ferry", "")

	assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
}

func TestView_NilStore(t *testing.T) {
	v := NewView(nil, nil)

	v = load(t, v, "harbour", "")

	assert.ErrorIs(t, v.Err(), ErrNoStore)
}

func TestView_StaleLoadIgnored(t *testing.T) {
	v := NewView(nil, testStore(2))
	stale := v.Open("harbour", "")
	v.Open("ferry", "")

	v, _ = v.Update(stale())

	assert.Nil(t, v.Document())
}

func TestView_EmptyDocument(t *testing.T) {
	store := testStore(0)
	v := NewView(nil, store)

	v = load(t, v, "harbour", "")

	assert.Contains(t, v.View(), "(No chunks)")
}

func TestView_Scrolling(t *testing.T) {
	v := NewView(nil, testStore(10))
	v.SetDimensions(80, 12)
	v = load(t, v, "harbour", "")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, v.ScrollOffset())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, v.ScrollOffset())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	bottom := v.ScrollOffset()
	assert.Positive(t, bottom)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, bottom, v.ScrollOffset())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Equal(t, 0, v.ScrollOffset())
}

func TestView_ChunkNavigation(t *testing.T) {
	v := NewView(nil, testStore(3))
	v = load(t, v, "harbour", "")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, 0, v.Focused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, 2, v.Focused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	assert.Equal(t, 1, v.Focused())
}

func TestView_EscReturnsToSearch(t *testing.T) {
	v := NewView(nil, testStore(1))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewSearch, msg.View)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrap("abcdefghij", 4))
	assert.Equal(t, []string{"éé", "éé", "é"}, wrap("ééééé", 2))
	assert.Equal(t, []string{""}, wrap("", 4))
}
