package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/query"
	"github.com/mmcdole/sift/internal/selection"
)

type fakeSearcher struct {
	texts   []string
	retries int
	state   query.State
}

func (f *fakeSearcher) OnQueryTextChanged(text string) { f.texts = append(f.texts, text) }
func (f *fakeSearcher) State() query.State             { return f.state }
func (f *fakeSearcher) Retry() bool {
	f.retries++
	return f.state.Status == query.StatusFailed
}

func newTestModel(mode selection.Mode) (Model, *fakeSearcher) {
	searcher := &fakeSearcher{}
	m := NewModel(searcher, selection.New(mode), nil, nil, Options{Overscan: 2})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 9})
	return next.(Model), searcher
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func fulfilled(q string, labels ...string) StateMsg {
	items := make([]domain.Item, len(labels))
	for i, l := range labels {
		items[i] = domain.Item{ID: "id-" + l, Label: l}
	}
	return StateMsg{State: queryState(q, items)}
}

func queryState(q string, items []domain.Item) query.State {
	return query.State{Status: query.StatusFulfilled, Query: q, Items: items, Total: len(items)}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTypingFeedsCoordinator(t *testing.T) {
	m, searcher := newTestModel(selection.Multiple)

	m, _ = send(t, m, runes("b"), runes("u"), tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Equal(t, []string{"b", "bu", "b"}, searcher.texts)
	assert.Equal(t, "b", m.Query())
}

func TestInitIssuesInitialQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	m := NewModel(searcher, selection.New(selection.Single), nil, nil, Options{InitialQuery: "epic"})

	assert.NotNil(t, m.Init())
	assert.Equal(t, []string{"epic"}, searcher.texts)
}

func TestStateMsgPopulatesList(t *testing.T) {
	m, _ := newTestModel(selection.Multiple)

	m, _ = send(t, m, fulfilled("", "Bug", "Story", "Epic"))
	assert.Equal(t, 3, m.list.Len())
	assert.Contains(t, m.View(), "Story")
	assert.Contains(t, m.View(), "3 results")
}

func TestPendingKeepsPreviousRows(t *testing.T) {
	m, _ := newTestModel(selection.Multiple)

	m, _ = send(t, m,
		fulfilled("", "Bug", "Story"),
		StateMsg{State: query.State{Status: query.StatusPending, Query: "s"}},
	)
	assert.Equal(t, 2, m.list.Len())
	assert.Contains(t, m.View(), "searching")
}

func TestCursorResetsOnNewQueryOnly(t *testing.T) {
	m, _ := newTestModel(selection.Multiple)

	m, _ = send(t, m,
		fulfilled("", "A", "B", "C"),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
	)
	assert.Equal(t, 2, m.list.Cursor())

	m, _ = send(t, m, fulfilled("", "A", "B"))
	assert.Equal(t, 1, m.list.Cursor(), "same query clamps")

	m, _ = send(t, m, fulfilled("a", "A", "B"))
	assert.Equal(t, 0, m.list.Cursor(), "new query resets")
}

func TestToggleAndClear(t *testing.T) {
	m, _ := newTestModel(selection.Multiple)

	m, _ = send(t, m,
		fulfilled("", "Bug", "Story"),
		tea.KeyMsg{Type: tea.KeyTab},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyTab},
	)
	assert.Equal(t, 2, m.selection.Count())
	assert.Contains(t, m.View(), "2 selected")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Equal(t, 0, m.selection.Count())
}

func TestSelectionSurvivesNewQuery(t *testing.T) {
	m, _ := newTestModel(selection.Multiple)

	m, _ = send(t, m,
		fulfilled("", "Bug", "Story"),
		tea.KeyMsg{Type: tea.KeyTab},
		fulfilled("st", "Story"),
	)

	require.Equal(t, []domain.Item{{ID: "id-Bug", Label: "Bug"}}, m.Selected())
	assert.Contains(t, m.View(), "Bug")
}

func TestSelectAllOnlyInMultipleMode(t *testing.T) {
	m, _ := newTestModel(selection.Single)
	m, _ = send(t, m, fulfilled("", "A", "B"), tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Equal(t, 0, m.selection.Count())

	m, _ = newTestModel(selection.Multiple)
	m, _ = send(t, m, fulfilled("", "A", "B"), tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Equal(t, 2, m.selection.Count())
}

func TestAcceptSelectsFocusedWhenEmpty(t *testing.T) {
	m, _ := newTestModel(selection.Single)

	m, cmd := send(t, m,
		fulfilled("", "Bug", "Story"),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Accepted())
	assert.Equal(t, []domain.Item{{ID: "id-Story", Label: "Story"}}, m.Selected())
}

func TestQuitDoesNotAccept(t *testing.T) {
	m, _ := newTestModel(selection.Single)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.False(t, m.Accepted())
}

func TestRetryAndFailureStatus(t *testing.T) {
	m, searcher := newTestModel(selection.Multiple)

	failed := query.State{
		Status: query.StatusFailed,
		Query:  "bug",
		Err:    domain.ErrProviderUnavailable,
	}
	searcher.state = failed
	m, _ = send(t, m, StateMsg{State: failed})
	assert.Contains(t, m.View(), "search unavailable")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, 1, searcher.retries)

	rejected := query.State{
		Status: query.StatusFailed,
		Query:  "(",
		Err:    errors.Join(domain.ErrProviderRejected, errors.New("bad syntax")),
	}
	m, _ = send(t, m, StateMsg{State: rejected})
	assert.Contains(t, m.View(), "query rejected")
}
