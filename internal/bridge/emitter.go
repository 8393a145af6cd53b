package bridge

import (
	"sync"
)

// Listener consumes a single event payload.
type Listener func(payload any)

// Subscription is a handle to a registered listener.
type Subscription struct {
	emitter *Emitter
	name    EventName
	id      int
}

// Remove detaches the listener. Safe to call more than once.
func (s *Subscription) Remove() {
	if s == nil || s.emitter == nil {
		return
	}
	s.emitter.remove(s.name, s.id)
	s.emitter = nil
}

type listenerEntry struct {
	id int
	fn Listener
}

// Emitter delivers engine events to listeners. Delivery is synchronous and
// serialized, so events of one name observe emission order. Listeners must
// not block.
type Emitter struct {
	mu     sync.Mutex
	nextID int
	// listeners keeps registration order per event name.
	listeners map[EventName][]listenerEntry
	// dispatchMu serializes emissions so per-name ordering holds even when
	// events arrive from multiple goroutines.
	dispatchMu sync.Mutex
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[EventName][]listenerEntry),
	}
}

// AddListener registers fn for the given event name and returns its handle.
func (e *Emitter) AddListener(name EventName, fn Listener) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners[name] = append(e.listeners[name], listenerEntry{id: id, fn: fn})
	return &Subscription{emitter: e, name: name, id: id}
}

// RemoveAllListeners drops every listener registered for name.
func (e *Emitter) RemoveAllListeners(name EventName) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, name)
}

// Emit delivers payload to every listener of name, in registration order.
// Emissions are serialized: a listener re-emitting from its own callback
// would deadlock, which matches the single-threaded event-loop model this
// emitter stands in for.
func (e *Emitter) Emit(name EventName, payload any) {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()

	e.mu.Lock()
	entries := make([]listenerEntry, len(e.listeners[name]))
	copy(entries, e.listeners[name])
	e.mu.Unlock()

	for _, entry := range entries {
		entry.fn(payload)
	}
}

// ListenerCount returns the number of listeners registered for name.
func (e *Emitter) ListenerCount(name EventName) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[name])
}

func (e *Emitter) remove(name EventName, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.listeners[name]
	for i, entry := range entries {
		if entry.id == id {
			e.listeners[name] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(e.listeners[name]) == 0 {
		delete(e.listeners, name)
	}
}
