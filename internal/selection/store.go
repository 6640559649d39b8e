// Package selection tracks which item ids a user has chosen, in single or
// multiple mode.
package selection

import (
	"sort"
	"sync"
)

// Mode determines how many ids a Store may hold
type Mode int

const (
	Single Mode = iota
	Multiple
)

// String returns a human-readable representation of the mode
func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// Set is an immutable snapshot of a selection
type Set struct {
	mode Mode
	ids  map[string]struct{}
}

// Mode returns the mode of the store the snapshot was taken from
func (s Set) Mode() Mode { return s.mode }

// Len returns the number of selected ids
func (s Set) Len() int { return len(s.ids) }

// Has reports whether id is selected
func (s Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// ID returns the selected id of a single-mode selection
func (s Set) ID() (string, bool) {
	for id := range s.ids {
		return id, true
	}
	return "", false
}

// IDs returns the selected ids in ascending order
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store holds the user's selection. It is independent of whatever is
// currently queried or windowed: ids stay selected until toggled or cleared.
//
// Surfaces that need to agree on a selection share one *Store.
type Store struct {
	mu       sync.RWMutex
	mode     Mode
	selected map[string]struct{}

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Set)
}

// New creates a store in mode, seeded with initial ids. A single-mode store
// keeps only the last initial id.
func New(mode Mode, initial ...string) *Store {
	s := &Store{
		mode:     mode,
		selected: make(map[string]struct{}),
	}
	for _, id := range initial {
		if mode == Single {
			clear(s.selected)
		}
		s.selected[id] = struct{}{}
	}
	return s
}

// Mode returns the store's mode
func (s *Store) Mode() Mode {
	return s.mode
}

// Toggle selects id if it is not selected and deselects it otherwise.
// In single mode selecting id replaces any previous selection.
func (s *Store) Toggle(id string) {
	s.mu.Lock()
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		if s.mode == Single {
			clear(s.selected)
		}
		s.selected[id] = struct{}{}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Clear deselects everything
func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return
	}
	s.selected = make(map[string]struct{})
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SelectAll adds ids to a multi-mode selection. In single mode only the last
// id is kept.
func (s *Store) SelectAll(ids []string) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	changed := false
	if s.mode == Single {
		last := ids[len(ids)-1]
		if _, ok := s.selected[last]; !ok || len(s.selected) != 1 {
			clear(s.selected)
			s.selected[last] = struct{}{}
			changed = true
		}
	} else {
		for _, id := range ids {
			if _, ok := s.selected[id]; !ok {
				s.selected[id] = struct{}{}
				changed = true
			}
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
}

// Remove deselects ids, e.g. when they no longer exist upstream
func (s *Store) Remove(ids ...string) {
	s.mu.Lock()
	changed := false
	for _, id := range ids {
		if _, ok := s.selected[id]; ok {
			delete(s.selected, id)
			changed = true
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
}

// IsSelected reports whether id is selected
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// Count returns the number of selected ids
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// Snapshot returns the current selection
func (s *Store) Snapshot() Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called synchronously after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Set)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) snapshotLocked() Set {
	ids := make(map[string]struct{}, len(s.selected))
	for id := range s.selected {
		ids[id] = struct{}{}
	}
	return Set{mode: s.mode, ids: ids}
}

func (s *Store) notify(snap Set) {
	s.subsMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}
