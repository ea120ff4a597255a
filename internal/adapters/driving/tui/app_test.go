package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Retriever: &mockRetriever{results: []domain.SearchResult{
			{ChunkID: "c1", DocID: "harbour", Text: "harbour lights", Score: 0.8},
		}},
		Store: &mockStore{
			doc: domain.Document{ID: "harbour", Title: "Harbour Log", Kind: "text"},
			chunks: []domain.Chunk{
				{ID: "c1", DocID: "harbour", Text: "harbour lights", ByteLength: 14},
			},
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// drive runs cmd and feeds its message back into the app.
func drive(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Retriever: &mockRetriever{}})
	assert.ErrorIs(t, err, ErrMissingStore)
	assert.Nil(t, app)

	app, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingRetriever)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.width)
	assert.Contains(t, app.View(), "lorekeep")
}

func TestApp_SearchThenOpenDocument(t *testing.T) {
	app := newTestApp(t)
	app.searchView.SetQuery("harbour")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drive(t, app, cmd)
	require.NoError(t, app.Err())
	assert.Contains(t, app.View(), "harbour #0")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, cmd = app.Update(cmd())
	assert.Equal(t, messages.ViewDocument, app.CurrentView())

	drive(t, app, cmd)
	assert.Contains(t, app.View(), "Harbour Log")
	assert.Equal(t, 0, app.documentView.Focused())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	drive(t, app, cmd)
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
}

func TestApp_Update_SearchCompleted_WithError(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.SearchCompleted{Query: "x", Err: errors.New("index offline")})

	require.Error(t, app.Err())
	assert.Contains(t, app.View(), "index offline")
}

func TestApp_Update_DocumentLoaded_WithError(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ResultSelected{Result: domain.SearchResult{DocID: "missing"}})

	app.Update(messages.DocumentLoaded{Err: domain.ErrNotFound})

	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)
	assert.Contains(t, app.View(), "not found")
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)
	testErr := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: testErr})

	assert.Equal(t, testErr, app.Err())
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Cycle mode")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
}

func TestApp_Update_KeyMsg_CtrlC(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_Quit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
