package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/query"
	"github.com/mmcdole/sift/internal/selection"
	"github.com/mmcdole/sift/internal/tui/components"
	"github.com/mmcdole/sift/internal/tui/styles"
)

// Layout constants
const (
	// Input, status, selection bar and help each take one line
	chromeLines = 4

	defaultListHeight = 10
	tickInterval      = 100 * time.Millisecond
)

// Searcher is the part of the query coordinator the selector drives
type Searcher interface {
	OnQueryTextChanged(text string)
	Retry() bool
	State() query.State
}

// Options configures the selector
type Options struct {
	Prompt       string
	InitialQuery string
	Overscan     int
	MaxHeight    int // maximum list rows, 0 fills the terminal
}

// Model is the Bubble Tea model for the interactive selector
type Model struct {
	searcher  Searcher
	selection *selection.Store
	states    <-chan query.State
	logger    *slog.Logger

	keys  KeyMap
	help  help.Model
	input textinput.Model
	list  components.ResultList
	bar   components.SelectionBar

	state     query.State
	listQuery string                 // query of the rows currently listed
	known     map[string]domain.Item // every item seen, for labelling the selection

	spinnerFrame int
	maxHeight    int
	width        int
	height       int

	accepted bool
	quitting bool
}

// NewModel creates the selector. states should carry every transition of
// searcher, typically from a ChannelObserver subscribed to the coordinator.
func NewModel(searcher Searcher, sel *selection.Store, states <-chan query.State, logger *slog.Logger, opts Options) Model {
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "type to search..."
	ti.Prompt = "> "
	if opts.Prompt != "" {
		ti.Prompt = opts.Prompt + " "
	}
	ti.PromptStyle = styles.PromptStyle
	ti.TextStyle = styles.InputTextStyle
	ti.PlaceholderStyle = styles.DimStyle
	ti.SetValue(opts.InitialQuery)
	ti.Focus()

	m := Model{
		searcher:  searcher,
		selection: sel,
		states:    states,
		logger:    logger,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		input:     ti,
		list:      components.NewResultList(opts.Overscan),
		state:     searcher.State(),
		known:     make(map[string]domain.Item),
		maxHeight: opts.MaxHeight,
	}
	m.list.SetSize(0, m.listHeight())
	return m
}

// Init issues the initial query and starts listening for transitions
func (m Model) Init() tea.Cmd {
	m.searcher.OnQueryTextChanged(m.input.Value())
	return tea.Batch(
		textinput.Blink,
		WaitForStateCmd(m.states),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case StateMsg:
		m.applyState(msg.State)
		return m, WaitForStateCmd(m.states)

	case TickMsg:
		m.spinnerFrame++
		return m, TickCmd(tickInterval)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Accept):
		if m.selection.Count() == 0 {
			if item, ok := m.list.Focused(); ok {
				m.selection.Toggle(item.ID)
			}
		}
		m.accepted = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.list.MoveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.list.MoveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.list.PageUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.list.PageDown()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if item, ok := m.list.Focused(); ok {
			m.selection.Toggle(item.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.SelectAll):
		if m.selection.Mode() == selection.Multiple {
			items := m.list.Items()
			ids := make([]string, len(items))
			for i, item := range items {
				ids[i] = item.ID
			}
			m.selection.SelectAll(ids)
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.selection.Clear()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.searcher.Retry() {
			m.logger.Debug("retrying query", "query", m.state.Query)
		}
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if text := m.input.Value(); text != prev {
		m.searcher.OnQueryTextChanged(text)
	}
	return m, cmd
}

// applyState records a coordinator transition. Pending and failed states keep
// the previous rows on screen.
func (m *Model) applyState(st query.State) {
	m.state = st
	if st.Status != query.StatusFulfilled {
		return
	}

	for _, item := range st.Items {
		m.known[item.ID] = item
	}
	reset := st.Query != m.listQuery
	m.listQuery = st.Query
	m.list.SetItems(st.Items, reset)
}

func (m *Model) updateLayout() {
	m.input.Width = max(m.width-len(m.input.Prompt)-1, 1)
	m.help.Width = m.width
	m.bar.SetWidth(m.width)
	m.list.SetSize(m.width, m.listHeight())
}

func (m Model) listHeight() int {
	h := defaultListHeight
	if m.height > 0 {
		h = max(m.height-chromeLines, 1)
	}
	if m.maxHeight > 0 && h > m.maxHeight {
		h = m.maxHeight
	}
	return h
}

// View renders the selector
func (m Model) View() string {
	if m.quitting || m.accepted {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.list.View(m.selection.IsSelected, m.selection.Mode() == selection.Multiple))
	b.WriteString("\n")
	b.WriteString(m.bar.View(m.selectedLabels()))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m Model) statusLine() string {
	st := m.state

	var line string
	switch st.Status {
	case query.StatusIdle:
		line = styles.DimStyle.Render("type to search")

	case query.StatusPending:
		line = styles.AccentStyle.Render(styles.Spinner(m.spinnerFrame)+" searching") +
			styles.DimStyle.Render(fmt.Sprintf(" %q", st.Query))

	case query.StatusFulfilled:
		n := len(st.Items)
		text := fmt.Sprintf("%d results", n)
		switch {
		case n == 0:
			text = "no matches"
		case st.Page().Truncated():
			text = fmt.Sprintf("%d of %d results", n, st.Total)
		}
		if st.FromCache {
			text += " (cached)"
		}
		line = styles.DimStyle.Render(text)

	case query.StatusFailed:
		switch st.Reason() {
		case domain.KindProviderRejected:
			line = styles.ErrorStyle.Render("query rejected: " + st.Err.Error())
		default:
			line = styles.ErrorStyle.Render("search unavailable") +
				styles.DimStyle.Render(" · "+m.keys.Retry.Help().Key+" to retry")
		}
	}

	if n := m.selection.Count(); n > 0 {
		line += styles.SuccessStyle.Render(fmt.Sprintf(" · %d selected", n))
	}
	return line
}

func (m Model) selectedLabels() []string {
	items := m.Selected()
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return labels
}

// Accepted reports whether the user confirmed the selection
func (m Model) Accepted() bool {
	return m.accepted
}

// Selected returns the chosen items ordered by id. Ids that never appeared in
// a result set are labelled with the id itself.
func (m Model) Selected() []domain.Item {
	ids := m.selection.Snapshot().IDs()
	items := make([]domain.Item, len(ids))
	for i, id := range ids {
		item, ok := m.known[id]
		if !ok {
			item = domain.Item{ID: id, Label: id}
		}
		items[i] = item
	}
	return items
}

// Query returns the current query text
func (m Model) Query() string {
	return m.input.Value()
}
