package sdk

import (
	"context"

	"github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/internal/session"
	"github.com/wayfarerhq/mapbridge/types"
)

// StartPositioning begins location updates. A second call while positioning
// is running is rejected; stop first.
func (s *SDK) StartPositioning(ctx context.Context, req types.LocationRequest) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.positioning {
		s.mu.Unlock()
		return errors.New(errors.ValidationError, "positioning already running", "")
	}
	s.positioning = true
	s.mu.Unlock()

	if err := s.native.StartPositioning(ctx, req); err != nil {
		s.mu.Lock()
		s.positioning = false
		s.mu.Unlock()
		return err
	}
	s.log.Infow("Positioning started", "buildingId", req.BuildingIdentifier)
	return nil
}

// StopPositioning ends location updates. Stopping when nothing runs is a
// no-op.
func (s *SDK) StopPositioning(ctx context.Context) error {
	s.mu.Lock()
	if !s.positioning {
		s.mu.Unlock()
		return nil
	}
	s.positioning = false
	s.mu.Unlock()

	if err := s.native.StopPositioning(ctx); err != nil {
		return err
	}
	s.log.Infow("Positioning stopped")
	return nil
}

// Positioning reports whether location updates are running.
func (s *SDK) Positioning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positioning
}

// RequestRealTimeUpdates subscribes to positions of other devices. One
// subscription at a time.
func (s *SDK) RequestRealTimeUpdates(ctx context.Context, req types.RealTimeRequest) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.realtime {
		s.mu.Unlock()
		return errors.New(errors.ValidationError, "realtime updates already running", "")
	}
	s.realtime = true
	s.mu.Unlock()

	if err := s.native.RequestRealTimeUpdates(ctx, req); err != nil {
		s.mu.Lock()
		s.realtime = false
		s.mu.Unlock()
		return err
	}
	return nil
}

// RemoveRealTimeUpdates ends the realtime subscription; idempotent.
func (s *SDK) RemoveRealTimeUpdates(ctx context.Context) error {
	s.mu.Lock()
	if !s.realtime {
		s.mu.Unlock()
		return nil
	}
	s.realtime = false
	s.mu.Unlock()

	return s.native.RemoveRealTimeUpdates(ctx)
}

// CheckIfPointInsideGeofence tests a point against the building's geofences.
func (s *SDK) CheckIfPointInsideGeofence(ctx context.Context, req types.GeofenceCheckRequest) (*types.GeofenceCheckResponse, error) {
	return s.native.CheckIfPointInsideGeofence(ctx, req)
}

// WatchGeofences enables enter and exit geofence events. Requires
// positioning to be running to produce anything.
func (s *SDK) WatchGeofences(ctx context.Context) error {
	if err := s.native.OnEnterGeofences(ctx); err != nil {
		return err
	}
	return s.native.OnExitGeofences(ctx)
}

// CalculateRoute computes a route between two points of a building.
func (s *SDK) CalculateRoute(ctx context.Context, req types.DirectionsRequest) (*types.Route, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	return s.sessions.CalculateRoute(ctx, req)
}

// StartNavigation computes a route and begins guidance along it, replacing
// any session already running.
func (s *SDK) StartNavigation(ctx context.Context, dirs types.DirectionsRequest, nav types.NavigationRequest) (*types.Route, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	return s.sessions.StartNavigation(ctx, session.StartNavigationRequest{
		Directions: dirs,
		Navigation: nav,
	})
}

// StopNavigation ends the active guidance session; idempotent.
func (s *SDK) StopNavigation(ctx context.Context) error {
	return s.sessions.StopNavigation(ctx)
}

// Navigating reports whether a guidance session is active.
func (s *SDK) Navigating() bool {
	return s.sessions.Navigating()
}
