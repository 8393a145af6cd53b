// Package registry owns the native event subscriptions. Each event name has
// at most one handler: registering a handler for a name first removes every
// existing listener for that name, so repeated SDK initialization never
// results in duplicate delivery.
package registry

import (
	"sync"

	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/logger"
)

// Registry tracks the single active handler per native event name.
type Registry struct {
	mu      sync.Mutex
	emitter *bridge.Emitter
	subs    map[bridge.EventName]*bridge.Subscription
}

// New creates a registry bound to the given emitter.
func New(emitter *bridge.Emitter) *Registry {
	return &Registry{
		emitter: emitter,
		subs:    make(map[bridge.EventName]*bridge.Subscription),
	}
}

// Register installs handler as the only listener for name. Any previously
// registered handler for that name is removed first. Registration cannot
// fail; it is safe to call from concurrent goroutines.
func (r *Registry) Register(name bridge.EventName, handler func(payload any)) {
	log := logger.GetLogger()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.emitter.RemoveAllListeners(name)
	r.subs[name] = r.emitter.AddListener(name, handler)
	log.Debugw("Registered native event handler", "event", string(name))
}

// Unregister removes the handler for name, if any.
func (r *Registry) Unregister(name bridge.EventName) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub, ok := r.subs[name]; ok {
		sub.Remove()
		delete(r.subs, name)
	}
}

// UnregisterAll removes every handler the registry installed.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, sub := range r.subs {
		sub.Remove()
		delete(r.subs, name)
	}
}

// Registered reports whether a handler is installed for name.
func (r *Registry) Registered(name bridge.EventName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[name]
	return ok
}
