// Package store holds the shared SDK state as a single immutable snapshot
// updated through actions. Subscribers observe a selected slice of the state
// and are notified only when that slice actually changes.
package store

import (
	"reflect"
	"sync"

	"github.com/wayfarerhq/mapbridge/types"
)

// State is the full snapshot. Values are replaced wholesale by actions;
// callers must not mutate slices or pointers they read from it.
type State struct {
	SDKInitialized     bool
	User               *types.User
	Location           *types.Location
	LocationStatus     *types.LocationStatus
	Buildings          []types.Building
	CurrentBuilding    *types.Building
	Pois               []types.Poi
	Directions         *types.Route
	Navigation         types.Navigation
	DestinationPoiID   int
	Error              *types.LocationError
	BuildingIdentifier string
}

// Action mutates a snapshot into its successor.
type Action interface {
	apply(s State) State
}

// Selector extracts the slice of state a subscriber cares about. The result
// is compared with reflect.DeepEqual between dispatches.
type Selector func(s State) any

// Listener receives the post-dispatch snapshot.
type Listener func(s State)

type subscriber struct {
	id       int
	selector Selector
	listener Listener
	last     any
}

// Store is safe for concurrent use. Dispatches are serialized; listeners run
// synchronously on the dispatching goroutine, in subscription order.
type Store struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   []*subscriber
}

// New returns a store holding the zero snapshot.
func New() *Store {
	return &Store{}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies the action and notifies subscribers whose selected value
// changed.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = action.apply(s.state)
	state := s.state

	type pending struct {
		listener Listener
	}
	var fire []pending
	for _, sub := range s.subs {
		selected := sub.selector(state)
		if reflect.DeepEqual(selected, sub.last) {
			continue
		}
		sub.last = selected
		fire = append(fire, pending{listener: sub.listener})
	}
	s.mu.Unlock()

	for _, p := range fire {
		p.listener(state)
	}
}

// Subscribe registers listener for changes of the value produced by selector.
// The listener is not called with the current state; only future changes are
// delivered. The returned function removes the subscription.
func (s *Store) Subscribe(selector Selector, listener Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub := &subscriber{
		id:       s.nextID,
		selector: selector,
		listener: listener,
		last:     selector(s.state),
	}
	s.subs = append(s.subs, sub)

	id := sub.id
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, cur := range s.subs {
			if cur.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
