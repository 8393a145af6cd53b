package cache

import (
	"context"
	"time"

	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/types"
)

// Bridge decorates a Native with cartography caching. Cache reads never fail
// a fetch: a miss or a Redis problem falls through to the wrapped engine.
type Bridge struct {
	bridge.Native
	cache *Cartography
}

// WrapBridge layers the cache over native. SetCacheMaxAge and InvalidateCache
// keep the cache in step with the engine's own.
func WrapBridge(native bridge.Native, cache *Cartography) *Bridge {
	return &Bridge{Native: native, cache: cache}
}

func (b *Bridge) FetchBuildings(ctx context.Context) ([]types.Building, error) {
	var buildings []types.Building
	if b.cache.Get(ctx, "buildings", &buildings) {
		return buildings, nil
	}
	buildings, err := b.Native.FetchBuildings(ctx)
	if err != nil {
		return nil, err
	}
	b.cache.Set(ctx, "buildings", buildings)
	return buildings, nil
}

func (b *Bridge) FetchBuildingInfo(ctx context.Context, building types.Building) (*types.BuildingInfo, error) {
	key := "building_info:" + building.BuildingIdentifier
	var info types.BuildingInfo
	if b.cache.Get(ctx, key, &info) {
		return &info, nil
	}
	fetched, err := b.Native.FetchBuildingInfo(ctx, building)
	if err != nil {
		return nil, err
	}
	b.cache.Set(ctx, key, fetched)
	return fetched, nil
}

func (b *Bridge) FetchFloorsFromBuilding(ctx context.Context, building types.Building) ([]types.Floor, error) {
	key := "floors:" + building.BuildingIdentifier
	var floors []types.Floor
	if b.cache.Get(ctx, key, &floors) {
		return floors, nil
	}
	floors, err := b.Native.FetchFloorsFromBuilding(ctx, building)
	if err != nil {
		return nil, err
	}
	b.cache.Set(ctx, key, floors)
	return floors, nil
}

func (b *Bridge) FetchIndoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error) {
	key := "indoor_pois:" + building.BuildingIdentifier
	var pois []types.Poi
	if b.cache.Get(ctx, key, &pois) {
		return pois, nil
	}
	pois, err := b.Native.FetchIndoorPOIsFromBuilding(ctx, building)
	if err != nil {
		return nil, err
	}
	b.cache.Set(ctx, key, pois)
	return pois, nil
}

func (b *Bridge) FetchOutdoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error) {
	key := "outdoor_pois:" + building.BuildingIdentifier
	var pois []types.Poi
	if b.cache.Get(ctx, key, &pois) {
		return pois, nil
	}
	pois, err := b.Native.FetchOutdoorPOIsFromBuilding(ctx, building)
	if err != nil {
		return nil, err
	}
	b.cache.Set(ctx, key, pois)
	return pois, nil
}

func (b *Bridge) FetchPoiCategories(ctx context.Context) ([]types.PoiCategory, error) {
	var categories []types.PoiCategory
	if b.cache.Get(ctx, "poi_categories", &categories) {
		return categories, nil
	}
	categories, err := b.Native.FetchPoiCategories(ctx)
	if err != nil {
		return nil, err
	}
	b.cache.Set(ctx, "poi_categories", categories)
	return categories, nil
}

// SetCacheMaxAge adjusts both this cache and the engine's.
func (b *Bridge) SetCacheMaxAge(ctx context.Context, seconds int) error {
	b.cache.SetMaxAge(time.Duration(seconds) * time.Second)
	return b.Native.SetCacheMaxAge(ctx, seconds)
}

// InvalidateCache drops the cached cartography here and in the engine.
func (b *Bridge) InvalidateCache(ctx context.Context) error {
	if err := b.cache.Invalidate(ctx); err != nil {
		return err
	}
	return b.Native.InvalidateCache(ctx)
}

var _ bridge.Native = (*Bridge)(nil)
