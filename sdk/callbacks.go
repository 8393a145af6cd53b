package sdk

import (
	"github.com/wayfarerhq/mapbridge/internal/delegated"
	"github.com/wayfarerhq/mapbridge/internal/dispatcher"
	"github.com/wayfarerhq/mapbridge/types"
)

// OnLocationUpdate registers the handler for position fixes. Registering
// again replaces the previous handler; nil removes it.
func (s *SDK) OnLocationUpdate(fn func(types.Location)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnLocationUpdate = fn })
}

// OnLocationStatus registers the handler for raw engine statuses.
func (s *SDK) OnLocationStatus(fn func(types.StatusName)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnLocationStatus = fn })
}

// OnLocationError registers the handler for adapted positioning errors.
func (s *SDK) OnLocationError(fn func(types.LocationError)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnLocationError = fn })
}

// OnLocationStopped registers the handler invoked when positioning ends.
func (s *SDK) OnLocationStopped(fn func()) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnLocationStopped = fn })
}

// OnNavigationStart registers the handler for session starts.
func (s *SDK) OnNavigationStart(fn func(*types.Route)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnNavigationStart = fn })
}

// OnNavigationProgress registers the handler for guidance progress.
func (s *SDK) OnNavigationProgress(fn func(types.NavigationProgress)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnNavigationProgress = fn })
}

// OnNavigationDestinationReached registers the handler for arrivals.
func (s *SDK) OnNavigationDestinationReached(fn func(*types.Route)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnNavigationDestinationReached = fn })
}

// OnNavigationOutOfRoute registers the handler for off-route detection.
func (s *SDK) OnNavigationOutOfRoute(fn func()) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnNavigationOutOfRoute = fn })
}

// OnNavigationCancellation registers the handler for cancelled sessions.
func (s *SDK) OnNavigationCancellation(fn func()) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnNavigationCancellation = fn })
}

// OnNavigationError registers the handler for navigation errors.
func (s *SDK) OnNavigationError(fn func(types.LocationError)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnNavigationError = fn })
}

// OnNavigationFinished registers a handler fired when a session ends for any
// reason, arrival or cancellation.
//
// Deprecated: use OnNavigationDestinationReached and
// OnNavigationCancellation instead.
func (s *SDK) OnNavigationFinished(fn func()) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) {
		if fn == nil {
			cb.OnNavigationCancellation = nil
			cb.OnNavigationDestinationReached = nil
			return
		}
		cb.OnNavigationCancellation = fn
		cb.OnNavigationDestinationReached = func(*types.Route) { fn() }
	})
}

// OnEnterGeofences registers the handler for geofence entries.
func (s *SDK) OnEnterGeofences(fn func([]types.Geofence)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnEnterGeofences = fn })
}

// OnExitGeofences registers the handler for geofence exits.
func (s *SDK) OnExitGeofences(fn func([]types.Geofence)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnExitGeofences = fn })
}

// OnRealTimeUpdate registers the handler for realtime device positions.
func (s *SDK) OnRealTimeUpdate(fn func(types.RealTimeData)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnRealTimeUpdate = fn })
}

// OnRealTimeError registers the handler for realtime subscription errors.
func (s *SDK) OnRealTimeError(fn func(types.LocationError)) {
	s.dispatcher.UpdateCallbacks(func(cb *dispatcher.Callbacks) { cb.OnRealTimeError = fn })
}

// SetViewerDelegate replaces the internal-call consumer. The default is the
// embedded viewer controller; callers embedding their own surface can divert
// the stream, and passing nil restores the controller. Positioning state
// buffered while no consumer was live is flushed to the new delegate, so it
// starts from the latest known fix rather than waiting for the next update.
func (s *SDK) SetViewerDelegate(delegate types.ViewerDelegate) {
	if delegate == nil {
		s.dispatcher.SetViewerDelegate(s.controller.HandleInternalCall)
		return
	}
	s.dispatcher.SetViewerDelegate(delegate)

	if state, ok := s.parked.Take(); ok {
		switch state.Kind {
		case delegated.KindLocation:
			delegate(types.InternalCall{Type: types.CallLocation, Data: *state.Location})
		case delegated.KindStatus:
			delegate(types.InternalCall{Type: types.CallLocationStatus, Data: state.Status.StatusName})
		case delegated.KindError:
			delegate(types.InternalCall{Type: types.CallLocationError, Data: *state.Error})
		}
	}
}
