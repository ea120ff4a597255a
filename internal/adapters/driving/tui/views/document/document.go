// Package document provides the chunk-by-chunk document view for the TUI.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
)

// ErrNoStore indicates that the view has no store to load from.
var ErrNoStore = errors.New("knowledge store not available")

// line is one rendered row; chunk is the index of the chunk it belongs to.
type line struct {
	text   string
	chunk  int
	header bool
}

// View shows a document's chunks in sequence with one chunk focused.
type View struct {
	styles *styles.Styles
	store  driving.KnowledgeStore
	ctx    context.Context

	docID    string
	focusID  string
	document *domain.Document
	chunks   []domain.Chunk
	focused  int

	lines        []line
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a new document view.
func NewView(s *styles.Styles, store driving.KnowledgeStore) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		store:   store,
		ctx:     context.Background(),
		focused: -1,
		width:   80,
		height:  24,
	}
}

// WithContext sets the context loads run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open resets the view to the given document and returns the command
// that loads it. chunkID names the chunk to focus and may be empty.
func (v *View) Open(docID, chunkID string) tea.Cmd {
	v.docID = docID
	v.focusID = chunkID
	v.document = nil
	v.chunks = nil
	v.lines = nil
	v.focused = -1
	v.scrollOffset = 0
	v.err = nil
	v.loading = true

	ctx, store := v.ctx, v.store
	return func() tea.Msg {
		if store == nil {
			return messages.DocumentLoaded{Err: ErrNoStore}
		}
		doc, err := store.GetDoc(ctx, docID)
		if err != nil {
			return messages.DocumentLoaded{Err: err}
		}
		chunks, err := store.GetChunksForDoc(ctx, docID)
		return messages.DocumentLoaded{Document: doc, Chunks: chunks, Err: err}
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if msg.Document != nil && msg.Document.ID != v.docID {
			// A stale load for a document the user already left.
			return v, nil
		}
		v.document = msg.Document
		v.chunks = msg.Chunks
		v.focused = v.indexOf(v.focusID)
		v.layout()
		v.scrollToFocus()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.scrollTo(v.scrollOffset - 1)
	case "down", "j":
		v.scrollTo(v.scrollOffset + 1)
	case "pgup", "ctrl+u":
		v.scrollTo(v.scrollOffset - v.visibleLines())
	case "pgdown", "ctrl+d":
		v.scrollTo(v.scrollOffset + v.visibleLines())
	case "home", "g":
		v.scrollTo(0)
	case "end", "G":
		v.scrollTo(v.maxScrollOffset())
	case "]":
		v.moveFocus(1)
	case "[":
		v.moveFocus(-1)
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

func (v *View) indexOf(chunkID string) int {
	for i := range v.chunks {
		if v.chunks[i].ID == chunkID {
			return i
		}
	}
	return -1
}

func (v *View) moveFocus(delta int) {
	if len(v.chunks) == 0 {
		return
	}
	next := v.focused + delta
	if v.focused < 0 {
		next = 0
	}
	if next < 0 || next >= len(v.chunks) {
		return
	}
	v.focused = next
	v.layout()
	v.scrollToFocus()
}

// layout flattens the chunks into wrapped lines.
func (v *View) layout() {
	width := max(v.width-4, 20)
	v.lines = v.lines[:0]
	for i, c := range v.chunks {
		header := fmt.Sprintf("#%d  offset %d  length %d  %s", c.Sequence, c.ByteOffset, c.ByteLength, shortHash(c.ID))
		v.lines = append(v.lines, line{text: header, chunk: i, header: true})
		for _, raw := range strings.Split(c.Text, "\n") {
			for _, w := range wrap(raw, width) {
				v.lines = append(v.lines, line{text: w, chunk: i})
			}
		}
		v.lines = append(v.lines, line{chunk: i})
	}
}

func (v *View) scrollToFocus() {
	if v.focused < 0 {
		return
	}
	for i, l := range v.lines {
		if l.chunk == v.focused {
			v.scrollTo(i)
			return
		}
	}
}

func (v *View) scrollTo(offset int) {
	v.scrollOffset = min(max(offset, 0), v.maxScrollOffset())
}

// visibleLines is the height left after the header and footer.
func (v *View) visibleLines() int {
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the document view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading document..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n")
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No chunks)"))
		b.WriteString("\n")
	default:
		end := min(v.scrollOffset+v.visibleLines(), len(v.lines))
		for _, l := range v.lines[v.scrollOffset:end] {
			b.WriteString(v.renderLine(l))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [[/]] prev/next chunk  [esc] back"))
	return b.String()
}

func (v *View) renderHeader() string {
	if v.document == nil {
		return v.styles.Title.Render(v.docID) + "\n"
	}
	title := v.document.Title
	if title == "" {
		title = v.document.ID
	}
	meta := fmt.Sprintf("%s · %s · %d chunks", v.document.ID, v.document.Kind, len(v.chunks))
	if v.document.Source != "" {
		meta += " · " + v.document.Source
	}
	return v.styles.Title.Render(title) + "\n" + v.styles.Muted.Render(meta) + "\n"
}

func (v *View) renderLine(l line) string {
	switch {
	case l.header:
		return v.styles.Subtitle.Render(l.text)
	case l.chunk == v.focused:
		return v.styles.Focus.Render(l.text)
	default:
		return v.styles.Normal.Render(l.text)
	}
}

// wrap splits s into pieces of at most width runes.
func wrap(s string, width int) []string {
	if utf8.RuneCountInString(s) <= width {
		return []string{s}
	}
	var out []string
	runes := []rune(s)
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func shortHash(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.layout()
	v.scrollTo(v.scrollOffset)
}

// Document returns the loaded document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Chunks returns the loaded chunks.
func (v *View) Chunks() []domain.Chunk {
	return v.chunks
}

// Focused returns the index of the focused chunk, or -1.
func (v *View) Focused() int {
	return v.focused
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
