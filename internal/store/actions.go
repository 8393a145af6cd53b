package store

import "github.com/wayfarerhq/mapbridge/types"

// SetSDKInitialized marks whether the native layer has been initialized.
type SetSDKInitialized struct{ Initialized bool }

func (a SetSDKInitialized) apply(s State) State {
	s.SDKInitialized = a.Initialized
	return s
}

// SetUser records the authenticated credentials.
type SetUser struct{ User *types.User }

func (a SetUser) apply(s State) State {
	s.User = a.User
	return s
}

// SetLocation records the latest position fix and clears any stale
// positioning error.
type SetLocation struct{ Location *types.Location }

func (a SetLocation) apply(s State) State {
	s.Location = a.Location
	s.Error = nil
	return s
}

// SetLocationStatus records the latest engine status.
type SetLocationStatus struct{ Status *types.LocationStatus }

func (a SetLocationStatus) apply(s State) State {
	s.LocationStatus = a.Status
	return s
}

// SetBuildings replaces the fetched building list.
type SetBuildings struct{ Buildings []types.Building }

func (a SetBuildings) apply(s State) State {
	s.Buildings = a.Buildings
	return s
}

// SetCurrentBuilding selects the building the viewer is focused on.
type SetCurrentBuilding struct{ Building *types.Building }

func (a SetCurrentBuilding) apply(s State) State {
	s.CurrentBuilding = a.Building
	if a.Building != nil {
		s.BuildingIdentifier = a.Building.BuildingIdentifier
	}
	return s
}

// SetPois replaces the POI list of the current building.
type SetPois struct{ Pois []types.Poi }

func (a SetPois) apply(s State) State {
	s.Pois = a.Pois
	return s
}

// SetDirections records the outcome of the latest directions request, which
// may be a route or an error-shaped route.
type SetDirections struct{ Directions *types.Route }

func (a SetDirections) apply(s State) State {
	s.Directions = a.Directions
	return s
}

// SetNavigation replaces the navigation session view.
type SetNavigation struct{ Navigation types.Navigation }

func (a SetNavigation) apply(s State) State {
	s.Navigation = a.Navigation
	return s
}

// SetDestinationPoiID records the POI the active navigation targets, or 0.
type SetDestinationPoiID struct{ ID int }

func (a SetDestinationPoiID) apply(s State) State {
	s.DestinationPoiID = a.ID
	return s
}

// SetError records a positioning error.
type SetError struct{ Error *types.LocationError }

func (a SetError) apply(s State) State {
	s.Error = a.Error
	return s
}

// SetBuildingIdentifier records the configured building without resolving it.
type SetBuildingIdentifier struct{ Identifier string }

func (a SetBuildingIdentifier) apply(s State) State {
	s.BuildingIdentifier = a.Identifier
	return s
}

// ResetLocation clears location and status, keeping cartography intact. Used
// when positioning stops.
type ResetLocation struct{}

func (a ResetLocation) apply(s State) State {
	s.Location = nil
	s.LocationStatus = &types.LocationStatus{StatusName: types.StatusStopped}
	return s
}
