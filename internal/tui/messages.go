package tui

import "github.com/mmcdole/sift/internal/query"

// Message types for the TUI

// StateMsg carries a coordinator transition
type StateMsg struct {
	State query.State
}

// TickMsg advances the loading spinner
type TickMsg struct{}
