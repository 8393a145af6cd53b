package sdk

import (
	"context"

	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/types"
)

// FetchBuildings lists the venues of the account and records them in the
// store.
func (s *SDK) FetchBuildings(ctx context.Context) ([]types.Building, error) {
	buildings, err := s.native.FetchBuildings(ctx)
	if err != nil {
		return nil, err
	}
	s.store.Dispatch(store.SetBuildings{Buildings: buildings})
	return buildings, nil
}

// FetchBuildingInfo returns a building with its full cartography.
func (s *SDK) FetchBuildingInfo(ctx context.Context, building types.Building) (*types.BuildingInfo, error) {
	return s.native.FetchBuildingInfo(ctx, building)
}

// FetchFloorsFromBuilding lists the floors of a building.
func (s *SDK) FetchFloorsFromBuilding(ctx context.Context, building types.Building) ([]types.Floor, error) {
	return s.native.FetchFloorsFromBuilding(ctx, building)
}

// FetchIndoorPOIsFromBuilding lists the indoor POIs of a building and
// records them in the store.
func (s *SDK) FetchIndoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error) {
	pois, err := s.native.FetchIndoorPOIsFromBuilding(ctx, building)
	if err != nil {
		return nil, err
	}
	s.store.Dispatch(store.SetPois{Pois: pois})
	return pois, nil
}

// FetchOutdoorPOIsFromBuilding lists the outdoor POIs of a building.
func (s *SDK) FetchOutdoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error) {
	return s.native.FetchOutdoorPOIsFromBuilding(ctx, building)
}

// FetchGeofencesFromBuilding lists the geofences of a building.
func (s *SDK) FetchGeofencesFromBuilding(ctx context.Context, building types.Building) ([]types.Geofence, error) {
	return s.native.FetchGeofencesFromBuilding(ctx, building)
}

// FetchPoiCategories lists the account's POI categories.
func (s *SDK) FetchPoiCategories(ctx context.Context) ([]types.PoiCategory, error) {
	return s.native.FetchPoiCategories(ctx)
}

// FetchPoiCategoryIconNormal returns the unselected icon of a category.
func (s *SDK) FetchPoiCategoryIconNormal(ctx context.Context, category types.PoiCategory) (*types.PoiIcon, error) {
	return s.native.FetchPoiCategoryIconNormal(ctx, category)
}

// FetchPoiCategoryIconSelected returns the selected icon of a category.
func (s *SDK) FetchPoiCategoryIconSelected(ctx context.Context, category types.PoiCategory) (*types.PoiIcon, error) {
	return s.native.FetchPoiCategoryIconSelected(ctx, category)
}

// FetchTilesFromBuilding returns the offline tile bundle of a building.
func (s *SDK) FetchTilesFromBuilding(ctx context.Context, building types.Building) (*types.TileBundle, error) {
	return s.native.FetchTilesFromBuilding(ctx, building)
}

// FetchMapFromFloor returns the floor plan image URL of a floor.
func (s *SDK) FetchMapFromFloor(ctx context.Context, floor types.Floor) (string, error) {
	return s.native.FetchMapFromFloor(ctx, floor)
}
