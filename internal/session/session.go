// Package session runs the stateful flows that span several bridge calls:
// directions computation and the navigation lifecycle. A single manager owns
// both, because navigation always starts from a freshly computed route.
package session

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/internal/dispatcher"
	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/logger"
)

const (
	defaultDistanceToGoalThreshold = 4
	defaultOutsideRouteThreshold   = 5
)

// Manager coordinates directions and navigation against the native engine.
type Manager struct {
	native bridge.Native
	store  *store.Store
	disp   *dispatcher.Dispatcher

	// directionsBusy rejects overlapping directions computations instead of
	// queueing them.
	directionsBusy atomic.Bool

	navMu     sync.Mutex
	navActive bool
	// navGen changes on every start so a slow stop cannot clobber the state
	// of a session started after it.
	navGen uint64
}

// NewManager wires a session manager to the engine, the store and the
// dispatcher it reports synthetic errors through.
func NewManager(native bridge.Native, st *store.Store, disp *dispatcher.Dispatcher) *Manager {
	return &Manager{native: native, store: st, disp: disp}
}

// Navigating reports whether a navigation session is currently active.
func (m *Manager) Navigating() bool {
	m.navMu.Lock()
	defer m.navMu.Unlock()
	return m.navActive
}

func (m *Manager) log() *zap.SugaredLogger {
	return logger.GetLogger()
}
