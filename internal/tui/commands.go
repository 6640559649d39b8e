package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/sift/internal/query"
)

// WaitForStateCmd blocks until the coordinator publishes a state. The model
// re-issues it after every StateMsg.
func WaitForStateCmd(states <-chan query.State) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return nil
		}
		return StateMsg{State: state}
	}
}

// TickCmd schedules the next spinner frame
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}
