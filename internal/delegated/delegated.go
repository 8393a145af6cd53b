// Package delegated buffers the most recent positioning state produced while
// no viewer is attached, so a viewer that connects late still receives the
// current location, status or error.
package delegated

import (
	"sync"

	"github.com/wayfarerhq/mapbridge/types"
)

// Kind identifies which variant the slot currently holds.
type Kind int

const (
	// KindNone means nothing has been delegated since the last flush.
	KindNone Kind = iota
	KindLocation
	KindStatus
	KindError
)

// State is the buffered value. Exactly one of Location, Status or Error is
// meaningful, selected by Kind.
type State struct {
	Kind     Kind
	Location *types.Location
	Status   *types.LocationStatus
	Error    *types.LocationError
}

// Manager holds a single delegated slot. Each Set overwrites the previous
// value regardless of variant; the last write wins.
type Manager struct {
	mu    sync.Mutex
	state State
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// SetLocation stores a location, replacing whatever the slot held.
func (m *Manager) SetLocation(loc types.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{Kind: KindLocation, Location: &loc}
}

// SetStatus stores a status, replacing whatever the slot held.
func (m *Manager) SetStatus(status types.LocationStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{Kind: KindStatus, Status: &status}
}

// SetError stores an error, replacing whatever the slot held.
func (m *Manager) SetError(err types.LocationError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{Kind: KindError, Error: &err}
}

// Take returns the buffered state and clears the slot. The second return is
// false when nothing was buffered.
func (m *Manager) Take() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind == KindNone {
		return State{}, false
	}
	state := m.state
	m.state = State{}
	return state, true
}

// Peek returns the buffered state without clearing it.
func (m *Manager) Peek() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.state.Kind != KindNone
}

// Clear drops whatever the slot held.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{}
}
