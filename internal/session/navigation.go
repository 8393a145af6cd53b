package session

import (
	"context"

	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/types"
)

// StartNavigationRequest bundles the route to compute with the navigation
// tuning for the session that will follow it.
type StartNavigationRequest struct {
	Directions       types.DirectionsRequest
	Navigation       types.NavigationRequest
	DestinationPoiID int
}

// StartNavigation computes a route and begins guiding along it. An already
// running session is stopped first; only one session exists at a time. The
// computed route is returned so callers can render it immediately.
func (m *Manager) StartNavigation(ctx context.Context, req StartNavigationRequest) (*types.Route, error) {
	m.navMu.Lock()
	if m.navActive {
		m.navMu.Unlock()
		if err := m.StopNavigation(ctx); err != nil {
			m.log().Warnw("Failed to stop previous navigation session", "error", err)
		}
		m.navMu.Lock()
	}
	m.navGen++
	gen := m.navGen
	m.navMu.Unlock()

	// The route feeds the navigation state directly; the directions slot of
	// the store is left untouched.
	route, err := m.calculateRoute(ctx, req.Directions, false)
	if err != nil {
		return nil, err
	}

	navReq := req.Navigation
	if navReq.DistanceToGoalThreshold == 0 {
		navReq.DistanceToGoalThreshold = defaultDistanceToGoalThreshold
	}
	if navReq.OutsideRouteThreshold == 0 {
		navReq.OutsideRouteThreshold = defaultOutsideRouteThreshold
	}

	if err := m.native.RequestNavigationUpdates(ctx, navReq); err != nil {
		m.log().Errorw("Navigation start failed", "error", err)
		m.reportNavigationFailure(ctx)
		return nil, err
	}

	m.navMu.Lock()
	if m.navGen != gen {
		// A newer session raced past this one; do not touch its state.
		m.navMu.Unlock()
		return route, nil
	}
	m.navActive = true
	m.navMu.Unlock()

	m.store.Dispatch(store.SetNavigation{Navigation: types.Navigation{
		Status: types.NavigationStart,
		Type:   types.NavigationTypeProgress,
		Route:  route,
	}})
	m.store.Dispatch(store.SetDestinationPoiID{ID: req.DestinationPoiID})
	return route, nil
}

// StopNavigation ends the active session. Stopping when nothing is running
// is a no-op, not an error.
func (m *Manager) StopNavigation(ctx context.Context) error {
	m.navMu.Lock()
	if !m.navActive {
		m.navMu.Unlock()
		return nil
	}
	gen := m.navGen
	m.navMu.Unlock()

	err := m.native.RemoveNavigationUpdates(ctx)

	m.navMu.Lock()
	if m.navGen != gen {
		// A new session started while the engine call was in flight.
		m.navMu.Unlock()
		return err
	}
	m.navActive = false
	m.navMu.Unlock()

	m.store.Dispatch(store.SetNavigation{Navigation: types.Navigation{
		Status: types.NavigationStop,
		Type:   types.NavigationTypeCancelled,
	}})
	m.store.Dispatch(store.SetDestinationPoiID{ID: 0})
	return err
}

// UpdateWithLocation feeds a position fix to the guidance engine. Called for
// every location while a session is active; ignored otherwise.
func (m *Manager) UpdateWithLocation(ctx context.Context, loc types.Location) {
	if !m.Navigating() {
		return
	}
	if err := m.native.UpdateNavigationWithLocation(ctx, loc); err != nil {
		m.log().Errorw("Failed to update navigation with location", "error", err)
		m.reportNavigationFailure(ctx)
	}
}

// UpdateExternalState forwards a navigation state produced outside the
// engine, such as the viewer's own guidance, so the engine can track it.
func (m *Manager) UpdateExternalState(ctx context.Context, state map[string]any) error {
	return m.native.UpdateNavigationState(ctx, state)
}

// reportNavigationFailure surfaces a non-critical error and tears the
// session down so the viewer does not keep a dead progress bar.
func (m *Manager) reportNavigationFailure(ctx context.Context) {
	failure := types.LocationError{
		Code:    types.ErrUnknown,
		Message: "could not update navigation",
		Type:    types.SeverityNonCritical,
	}
	m.store.Dispatch(store.SetError{Error: &failure})
	m.disp.EmitNavigationError(failure)

	m.navMu.Lock()
	m.navActive = false
	m.navGen++
	m.navMu.Unlock()

	if err := m.native.RemoveNavigationUpdates(ctx); err != nil {
		m.log().Debugw("Cleanup of failed navigation session", "error", err)
	}
	m.store.Dispatch(store.SetNavigation{Navigation: types.Navigation{
		Status: types.NavigationStop,
		Type:   types.NavigationTypeCancelled,
	}})
	m.store.Dispatch(store.SetDestinationPoiID{ID: 0})
}
