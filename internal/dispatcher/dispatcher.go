// Package dispatcher routes decoded native events to their three consumers
// in a fixed order: the shared store first, then the embedded viewer
// delegate, then the user-registered callback. The viewer delegate receives
// adapted values (status vocabulary reduction, error code mapping); the store
// and user callbacks receive the raw domain values, except errors, which are
// adapted once for everyone.
package dispatcher

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/internal/registry"
	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/types"
)

// Callbacks are the user-facing hooks. All fields are optional.
type Callbacks struct {
	OnLocationUpdate               func(types.Location)
	OnLocationStatus               func(types.StatusName)
	OnLocationError                func(types.LocationError)
	OnLocationStopped              func()
	OnNavigationStart              func(*types.Route)
	OnNavigationProgress           func(types.NavigationProgress)
	OnNavigationDestinationReached func(*types.Route)
	OnNavigationOutOfRoute         func()
	OnNavigationCancellation       func()
	OnNavigationError              func(types.LocationError)
	OnEnterGeofences               func([]types.Geofence)
	OnExitGeofences                func([]types.Geofence)
	OnRealTimeUpdate               func(types.RealTimeData)
	OnRealTimeError                func(types.LocationError)
}

// Dispatcher fans native events out to the store, the viewer delegate and
// user callbacks. It is safe for concurrent use; delivery order per event
// name follows the emitter's ordering guarantee.
type Dispatcher struct {
	store   *store.Store
	metrics *dispatcherMetrics

	mu        sync.RWMutex
	delegate  types.ViewerDelegate
	callbacks Callbacks

	// locationSink feeds position fixes into an active navigation session.
	locationSink func(types.Location)
}

// New creates a dispatcher bound to the store. The viewer delegate starts as
// a no-op so dispatch never has to nil-check it.
func New(st *store.Store) *Dispatcher {
	return &Dispatcher{
		store:    st,
		metrics:  getDispatcherMetrics(),
		delegate: func(types.InternalCall) {},
	}
}

// SetViewerDelegate installs the delegate receiving internal calls. A nil
// delegate restores the no-op.
func (d *Dispatcher) SetViewerDelegate(delegate types.ViewerDelegate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if delegate == nil {
		delegate = func(types.InternalCall) {}
	}
	d.delegate = delegate
}

// SetCallbacks replaces the user callback set.
func (d *Dispatcher) SetCallbacks(cb Callbacks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks = cb
}

// UpdateCallbacks applies fn to the current callback set under lock, so a
// single hook can be changed without clobbering the rest.
func (d *Dispatcher) UpdateCallbacks(fn func(*Callbacks)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.callbacks)
}

// SetLocationSink installs the hook that feeds locations into navigation.
func (d *Dispatcher) SetLocationSink(sink func(types.Location)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locationSink = sink
}

func (d *Dispatcher) snapshot() (types.ViewerDelegate, Callbacks, func(types.Location)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.delegate, d.callbacks, d.locationSink
}

// Attach installs the dispatcher's handler for every native event name. The
// registry guarantees a single handler per name, so Attach is idempotent.
func (d *Dispatcher) Attach(reg *registry.Registry) {
	reg.Register(bridge.EventLocationChanged, d.handleLocation)
	reg.Register(bridge.EventStatusChanged, d.handleStatus)
	reg.Register(bridge.EventLocationStopped, d.handleStopped)
	reg.Register(bridge.EventLocationError, d.handleError)
	reg.Register(bridge.EventNavigationStart, d.handleNavigationStart)
	reg.Register(bridge.EventNavigationProgress, d.handleNavigationProgress)
	reg.Register(bridge.EventNavigationDestinationReached, d.handleDestinationReached)
	reg.Register(bridge.EventNavigationOutOfRoute, d.handleOutOfRoute)
	reg.Register(bridge.EventNavigationCancellation, d.handleCancellation)
	// Retired event name still emitted by older engines; same semantics as
	// a cancellation.
	reg.Register(bridge.EventNavigationFinished, d.handleCancellation)
	reg.Register(bridge.EventNavigationError, d.handleNavigationError)
	reg.Register(bridge.EventRealtimeUpdated, d.handleRealTimeUpdate)
	reg.Register(bridge.EventRealtimeError, d.handleRealTimeError)
	reg.Register(bridge.EventEnterGeofences, d.handleEnterGeofences)
	reg.Register(bridge.EventExitGeofences, d.handleExitGeofences)
}

func (d *Dispatcher) observe(event string) *prometheus.Timer {
	d.metrics.eventsDispatched.WithLabelValues(event).Inc()
	return prometheus.NewTimer(d.metrics.dispatchLatency)
}

func (d *Dispatcher) discard(event bridge.EventName, payload any) {
	d.metrics.eventsDiscarded.WithLabelValues("bad_payload").Inc()
	logger.GetLogger().Warnw("Discarding native event with unexpected payload",
		"event", string(event),
		"payloadType", typeName(payload),
	)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case types.Location:
		return "Location"
	case types.LocationStatus:
		return "LocationStatus"
	case types.NativeError:
		return "NativeError"
	case *types.Route:
		return "*Route"
	case *types.NavigationProgress:
		return "*NavigationProgress"
	case types.RealTimeData:
		return "RealTimeData"
	case []types.Geofence:
		return "[]Geofence"
	default:
		return "unknown"
	}
}

func (d *Dispatcher) handleLocation(payload any) {
	loc, ok := payload.(types.Location)
	if !ok {
		d.discard(bridge.EventLocationChanged, payload)
		return
	}
	defer d.observe("locationChanged").ObserveDuration()

	d.store.Dispatch(store.SetLocation{Location: &loc})

	delegate, cb, sink := d.snapshot()
	if sink != nil {
		sink(loc)
	}
	delegate(types.InternalCall{Type: types.CallLocation, Data: loc})
	if cb.OnLocationUpdate != nil {
		cb.OnLocationUpdate(loc)
	}
}

func (d *Dispatcher) handleStatus(payload any) {
	status, ok := payload.(types.LocationStatus)
	if !ok {
		d.discard(bridge.EventStatusChanged, payload)
		return
	}
	defer d.observe("statusChanged").ObserveDuration()

	d.store.Dispatch(store.SetLocationStatus{Status: &status})

	delegate, cb, _ := d.snapshot()
	adapted := status.StatusName.AdaptForViewer()
	if adapted.ViewerVisible() {
		delegate(types.InternalCall{Type: types.CallLocationStatus, Data: adapted})
	}
	if cb.OnLocationStatus != nil {
		cb.OnLocationStatus(status.StatusName)
	}
}

func (d *Dispatcher) handleStopped(payload any) {
	defer d.observe("locationStopped").ObserveDuration()

	d.store.Dispatch(store.ResetLocation{})

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallLocationStopped})
	if cb.OnLocationStopped != nil {
		cb.OnLocationStopped()
	}
}

func (d *Dispatcher) handleError(payload any) {
	native, ok := payload.(types.NativeError)
	if !ok {
		d.discard(bridge.EventLocationError, payload)
		return
	}
	defer d.observe("locationError").ObserveDuration()

	adapted := AdaptNativeError(native)
	d.metrics.adaptedErrors.WithLabelValues(string(adapted.Code)).Inc()

	d.store.Dispatch(store.SetError{Error: &adapted})

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallLocationError, Data: adapted})
	if cb.OnLocationError != nil {
		cb.OnLocationError(adapted)
	}
}

func (d *Dispatcher) handleNavigationStart(payload any) {
	route, ok := payload.(*types.Route)
	if !ok {
		d.discard(bridge.EventNavigationStart, payload)
		return
	}
	defer d.observe("onNavigationStart").ObserveDuration()

	d.store.Dispatch(store.SetNavigation{Navigation: types.Navigation{
		Status: types.NavigationStart,
		Type:   types.NavigationTypeProgress,
		Route:  route,
	}})

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallNavigationStart, Data: route})
	if cb.OnNavigationStart != nil {
		cb.OnNavigationStart(route)
	}
}

func (d *Dispatcher) handleNavigationProgress(payload any) {
	progress, ok := payload.(*types.NavigationProgress)
	if !ok {
		d.discard(bridge.EventNavigationProgress, payload)
		return
	}
	defer d.observe("onNavigationProgress").ObserveDuration()

	nav := d.store.State().Navigation
	nav.Status = types.NavigationUpdate
	nav.Type = types.NavigationTypeProgress
	nav.CurrentIndication = progress.CurrentIndication
	nav.RouteStep = progress.RouteStep
	nav.DistanceToGoal = progress.DistanceToGoal
	nav.Points = progress.Points
	nav.Segments = progress.Segments
	d.store.Dispatch(store.SetNavigation{Navigation: nav})

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallNavigationProgress, Data: *progress})
	if cb.OnNavigationProgress != nil {
		cb.OnNavigationProgress(*progress)
	}
}

func (d *Dispatcher) handleDestinationReached(payload any) {
	route, ok := payload.(*types.Route)
	if !ok {
		d.discard(bridge.EventNavigationDestinationReached, payload)
		return
	}
	defer d.observe("onNavigationDestinationReached").ObserveDuration()

	nav := d.store.State().Navigation
	nav.Status = types.NavigationUpdate
	nav.Type = types.NavigationTypeDestinationReached
	if route != nil {
		nav.Route = route
	}
	d.store.Dispatch(store.SetNavigation{Navigation: nav})

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallNavigationDestinationReached, Data: route})
	if cb.OnNavigationDestinationReached != nil {
		cb.OnNavigationDestinationReached(route)
	}
}

func (d *Dispatcher) handleOutOfRoute(payload any) {
	defer d.observe("onUserOutsideRoute").ObserveDuration()

	nav := d.store.State().Navigation
	nav.Status = types.NavigationUpdate
	nav.Type = types.NavigationTypeOutOfRoute
	d.store.Dispatch(store.SetNavigation{Navigation: nav})

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallNavigationOutOfRoute})
	if cb.OnNavigationOutOfRoute != nil {
		cb.OnNavigationOutOfRoute()
	}
}

func (d *Dispatcher) handleCancellation(payload any) {
	defer d.observe("onNavigationCancellation").ObserveDuration()

	d.store.Dispatch(store.SetNavigation{Navigation: types.Navigation{
		Status: types.NavigationStop,
		Type:   types.NavigationTypeCancelled,
	}})
	d.store.Dispatch(store.SetDestinationPoiID{ID: 0})

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallNavigationCancellation})
	if cb.OnNavigationCancellation != nil {
		cb.OnNavigationCancellation()
	}
}

// EmitNavigationError delivers an already-adapted navigation error to the
// viewer delegate and the user callback. Used for failures detected on this
// side of the bridge, where no native event will arrive.
func (d *Dispatcher) EmitNavigationError(err types.LocationError) {
	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallNavigationError, Data: err})
	if cb.OnNavigationError != nil {
		cb.OnNavigationError(err)
	}
}

func (d *Dispatcher) handleNavigationError(payload any) {
	native, ok := payload.(types.NativeError)
	if !ok {
		d.discard(bridge.EventNavigationError, payload)
		return
	}
	defer d.observe("onNavigationError").ObserveDuration()

	adapted := AdaptNativeError(native)

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallNavigationError, Data: adapted})
	if cb.OnNavigationError != nil {
		cb.OnNavigationError(adapted)
	}
}

func (d *Dispatcher) handleRealTimeUpdate(payload any) {
	data, ok := payload.(types.RealTimeData)
	if !ok {
		d.discard(bridge.EventRealtimeUpdated, payload)
		return
	}
	defer d.observe("realtimeUpdated").ObserveDuration()

	_, cb, _ := d.snapshot()
	if cb.OnRealTimeUpdate != nil {
		cb.OnRealTimeUpdate(data)
	}
}

func (d *Dispatcher) handleRealTimeError(payload any) {
	native, ok := payload.(types.NativeError)
	if !ok {
		d.discard(bridge.EventRealtimeError, payload)
		return
	}
	defer d.observe("realtimeError").ObserveDuration()

	adapted := AdaptNativeError(native)
	_, cb, _ := d.snapshot()
	if cb.OnRealTimeError != nil {
		cb.OnRealTimeError(adapted)
	}
}

func (d *Dispatcher) handleEnterGeofences(payload any) {
	geofences, ok := payload.([]types.Geofence)
	if !ok {
		d.discard(bridge.EventEnterGeofences, payload)
		return
	}
	defer d.observe("onEnterGeofences").ObserveDuration()

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallGeofencesEnter, Data: geofences})
	if cb.OnEnterGeofences != nil {
		cb.OnEnterGeofences(geofences)
	}
}

func (d *Dispatcher) handleExitGeofences(payload any) {
	geofences, ok := payload.([]types.Geofence)
	if !ok {
		d.discard(bridge.EventExitGeofences, payload)
		return
	}
	defer d.observe("onExitGeofences").ObserveDuration()

	delegate, cb, _ := d.snapshot()
	delegate(types.InternalCall{Type: types.CallGeofencesExit, Data: geofences})
	if cb.OnExitGeofences != nil {
		cb.OnExitGeofences(geofences)
	}
}
