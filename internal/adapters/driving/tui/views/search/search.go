// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lorekeep/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
)

// Modes lists the search modes in the order tab cycles through them.
var Modes = []string{"hybrid", "keyword", "lexical"}

// DefaultLimit is the number of results requested per search.
const DefaultLimit = 20

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	retriever driving.Retriever
	ctx       context.Context
	mode      int
	limit     int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = navigating results
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retriever driving.Retriever) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewSearchInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		retriever:  retriever,
		ctx:        context.Background(),
		limit:      DefaultLimit,
		width:      80,
		height:     24,
		focusInput: true,
	}
	v.input.SetMode(v.Mode())
	return v
}

// WithContext sets the context searches run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyTab {
		v.CycleMode()
		return v, nil
	}

	if v.focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateSearching)
			return v, v.performSearch(query)
		case tea.KeyEsc:
			if v.list.Count() > 0 {
				v.focusResults()
			}
			return v, nil
		default:
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return v, cmd
		}
	}

	switch {
	case msg.Type == tea.KeyEnter:
		if r := v.list.SelectedResult(); r != nil {
			selected := *r
			return v, func() tea.Msg { return messages.ResultSelected{Result: selected} }
		}
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case keymap.Matches(msg.String(), v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// performSearch runs the query in the current mode off the update loop.
func (v *View) performSearch(query string) tea.Cmd {
	mode := v.Mode()
	ctx, r, limit := v.ctx, v.retriever, v.limit
	return func() tea.Msg {
		if r == nil {
			return messages.ErrorOccurred{Err: ErrNoRetriever}
		}

		var (
			results []domain.SearchResult
			err     error
		)
		switch mode {
		case "keyword":
			results, err = r.SearchKeyword(ctx, query, limit)
		case "lexical":
			results, err = r.SearchLexical(ctx, query, limit)
		default:
			results, err = r.SearchHybrid(ctx, query, limit)
		}
		return messages.SearchCompleted{Query: query, Mode: mode, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.statusbar.SetMessage(msg.Mode)
	if len(msg.Results) > 0 {
		v.focusResults()
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) focusResults() {
	v.focusInput = false
	v.input.Blur()
}

// CycleMode switches to the next search mode.
func (v *View) CycleMode() {
	v.mode = (v.mode + 1) % len(Modes)
	v.input.SetMode(v.Mode())
}

// Mode returns the current search mode.
func (v *View) Mode() string {
	return Modes[v.mode]
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("lorekeep"), "",
		v.input.View(), "",
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
