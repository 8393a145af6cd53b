package session

import (
	"context"
	"strconv"

	"github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/types"
)

// CurrentLocationIdentifier is the origin identifier the viewer sends when
// the route should start from the user's position.
const CurrentLocationIdentifier = "-1"

// CalculateRoute computes a route and commits the outcome to the store. A
// request the engine accepted but could not fulfill leaves an error-shaped
// route behind so the viewer can report it; rejections before the engine is
// reached (held lock, unresolvable building or endpoint) commit nothing.
// Overlapping calls are rejected, not queued.
func (m *Manager) CalculateRoute(ctx context.Context, req types.DirectionsRequest) (*types.Route, error) {
	return m.calculateRoute(ctx, req, true)
}

func (m *Manager) calculateRoute(ctx context.Context, req types.DirectionsRequest, commit bool) (*types.Route, error) {
	if !m.directionsBusy.CompareAndSwap(false, true) {
		return nil, errors.ValidationFailed(
			"directions request already in progress",
			"wait for the pending computation to finish",
		)
	}
	defer m.directionsBusy.Store(false)

	building, err := m.resolveBuilding(ctx, req.BuildingIdentifier)
	if err != nil {
		return nil, err
	}

	from, err := m.resolvePoint(ctx, building, req.From, req.OriginIdentifier)
	if err != nil {
		return nil, err
	}
	to, err := m.resolvePoint(ctx, building, req.To, req.DestinationIdentifier)
	if err != nil {
		return nil, err
	}

	route, err := m.native.RequestDirections(ctx, building, from, to, req.Options)
	if err != nil {
		m.log().Errorw("Directions request failed",
			"buildingId", req.BuildingIdentifier,
			"error", err,
		)
		m.commitFailure(req, err, commit)
		return nil, err
	}

	mergeRouteMetadata(route, req)
	if commit {
		m.store.Dispatch(store.SetDirections{Directions: route})
	}
	return route, nil
}

// mergeRouteMetadata attaches the request identifiers and accessibility mode
// to the computed route; the engine does not echo them back.
func mergeRouteMetadata(route *types.Route, req types.DirectionsRequest) {
	route.OriginIdentifier = req.OriginIdentifier
	route.DestinationIdentifier = req.DestinationIdentifier
	route.Type = req.Options.AccessibilityMode
	if route.Type == "" {
		route.Type = types.AccessibilityChooseShortest
	}
}

func (m *Manager) commitFailure(req types.DirectionsRequest, err error, commit bool) {
	if !commit {
		return
	}
	failed := &types.Route{Error: err.Error()}
	mergeRouteMetadata(failed, req)
	m.store.Dispatch(store.SetDirections{Directions: failed})
}

// resolveBuilding finds the requested building in the store, fetching the
// building list once if it has not been loaded yet.
func (m *Manager) resolveBuilding(ctx context.Context, identifier string) (types.Building, error) {
	if identifier == "" {
		identifier = m.store.State().BuildingIdentifier
	}
	if identifier == "" {
		return types.Building{}, errors.ValidationFailed(
			"no building identifier",
			"a directions request needs a building",
		)
	}

	if b, ok := findBuilding(m.store.State().Buildings, identifier); ok {
		return b, nil
	}

	buildings, err := m.native.FetchBuildings(ctx)
	if err != nil {
		return types.Building{}, err
	}
	m.store.Dispatch(store.SetBuildings{Buildings: buildings})

	if b, ok := findBuilding(buildings, identifier); ok {
		return b, nil
	}
	return types.Building{}, errors.NotFound("Building", identifier)
}

func findBuilding(buildings []types.Building, identifier string) (types.Building, bool) {
	for _, b := range buildings {
		if b.BuildingIdentifier == identifier {
			return b, true
		}
	}
	return types.Building{}, false
}

// resolvePoint turns a request endpoint into a concrete point. An explicit
// point wins; otherwise the identifier selects either the current user
// location or a POI of the building.
func (m *Manager) resolvePoint(ctx context.Context, building types.Building, explicit *types.Point, identifier string) (types.Point, error) {
	if explicit != nil {
		return *explicit, nil
	}

	if identifier == CurrentLocationIdentifier {
		loc := m.store.State().Location
		if loc == nil {
			return types.Point{}, errors.ValidationFailed(
				"no current location",
				"cannot route from the user position before a fix is available",
			)
		}
		return types.Point{
			BuildingIdentifier:  loc.Position.BuildingIdentifier,
			FloorIdentifier:     loc.Position.FloorIdentifier,
			Coordinate:          loc.Position.Coordinate,
			CartesianCoordinate: loc.Position.CartesianCoordinate,
			IsIndoor:            loc.Position.IsIndoor,
			IsOutdoor:           loc.Position.IsOutdoor,
		}, nil
	}

	poiID, err := strconv.Atoi(identifier)
	if err != nil {
		return types.Point{}, errors.ValidationFailed(
			"invalid endpoint identifier",
			"expected -1 or a POI identifier, got "+identifier,
		)
	}

	if p, ok := findPoi(m.store.State().Pois, poiID); ok {
		return p.Position, nil
	}

	pois, err := m.native.FetchIndoorPOIsFromBuilding(ctx, building)
	if err != nil {
		return types.Point{}, err
	}
	m.store.Dispatch(store.SetPois{Pois: pois})

	if p, ok := findPoi(pois, poiID); ok {
		return p.Position, nil
	}
	return types.Point{}, errors.NotFound("Poi", identifier)
}

func findPoi(pois []types.Poi, id int) (types.Poi, bool) {
	for _, p := range pois {
		if p.Identifier == id {
			return p, true
		}
	}
	return types.Poi{}, false
}
