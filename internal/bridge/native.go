// Package bridge defines the typed contract with the native positioning
// engine and the event channel through which the engine pushes updates into
// the process.
package bridge

import (
	"context"

	"github.com/wayfarerhq/mapbridge/types"
)

// EventName identifies a kind of event emitted by the native engine. Events
// of the same name are always delivered in emission order; there is no
// ordering guarantee across names.
type EventName string

const (
	EventLocationChanged              EventName = "locationChanged"
	EventStatusChanged                EventName = "statusChanged"
	EventLocationStopped              EventName = "locationStopped"
	EventLocationError                EventName = "locationError"
	EventNavigationStart              EventName = "onNavigationStart"
	EventNavigationProgress           EventName = "onNavigationProgress"
	EventNavigationDestinationReached EventName = "onNavigationDestinationReached"
	EventNavigationOutOfRoute         EventName = "onUserOutsideRoute"
	// EventNavigationFinished is deprecated in the engine; it is still
	// emitted by older versions and is routed through the cancellation path.
	EventNavigationFinished     EventName = "onNavigationFinished"
	EventNavigationCancellation EventName = "onNavigationCancellation"
	EventNavigationError        EventName = "onNavigationError"
	EventRealtimeUpdated        EventName = "realtimeUpdated"
	EventRealtimeError          EventName = "realtimeError"
	EventEnterGeofences         EventName = "onEnterGeofences"
	EventExitGeofences          EventName = "onExitGeofences"
)

// Native is the operation surface of the positioning engine. Every call is
// context-aware and returns an explicit error; the engine never calls back
// through this interface, it pushes events through Events() instead.
type Native interface {
	// Lifecycle and configuration.
	Init(ctx context.Context) error
	SetAPIKey(ctx context.Context, email, apiKey string) error
	SetUserPass(ctx context.Context, email, password string) error
	SetDashboardURL(ctx context.Context, url string) error
	SetUseRemoteConfig(ctx context.Context, use bool) error
	SetCacheMaxAge(ctx context.Context, seconds int) error
	InvalidateCache(ctx context.Context) error
	DeviceID(ctx context.Context) (string, error)

	// Cartography fetches.
	FetchBuildings(ctx context.Context) ([]types.Building, error)
	FetchBuildingInfo(ctx context.Context, building types.Building) (*types.BuildingInfo, error)
	FetchFloorsFromBuilding(ctx context.Context, building types.Building) ([]types.Floor, error)
	FetchIndoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error)
	FetchOutdoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error)
	FetchGeofencesFromBuilding(ctx context.Context, building types.Building) ([]types.Geofence, error)
	FetchPoiCategories(ctx context.Context) ([]types.PoiCategory, error)
	FetchPoiCategoryIconNormal(ctx context.Context, category types.PoiCategory) (*types.PoiIcon, error)
	FetchPoiCategoryIconSelected(ctx context.Context, category types.PoiCategory) (*types.PoiIcon, error)
	FetchTilesFromBuilding(ctx context.Context, building types.Building) (*types.TileBundle, error)
	FetchMapFromFloor(ctx context.Context, floor types.Floor) (string, error)

	// Positioning.
	StartPositioning(ctx context.Context, req types.LocationRequest) error
	StopPositioning(ctx context.Context) error

	// Directions and navigation.
	RequestDirections(ctx context.Context, building types.Building, from, to types.Point, options types.DirectionsOptions) (*types.Route, error)
	RequestNavigationUpdates(ctx context.Context, req types.NavigationRequest) error
	RemoveNavigationUpdates(ctx context.Context) error
	UpdateNavigationWithLocation(ctx context.Context, location types.Location) error
	UpdateNavigationState(ctx context.Context, state map[string]any) error

	// Realtime.
	RequestRealTimeUpdates(ctx context.Context, req types.RealTimeRequest) error
	RemoveRealTimeUpdates(ctx context.Context) error

	// Geofencing. OnEnterGeofences/OnExitGeofences arm the engine-side
	// triggers; the resulting events arrive through Events().
	CheckIfPointInsideGeofence(ctx context.Context, req types.GeofenceCheckRequest) (*types.GeofenceCheckResponse, error)
	OnEnterGeofences(ctx context.Context) error
	OnExitGeofences(ctx context.Context) error

	// User helper and viewer project validation.
	ConfigureUserHelper(ctx context.Context, opts types.UserHelperOptions) error
	ValidateMapViewProjectSettings(ctx context.Context) error
	SpeakAloudText(ctx context.Context, msg types.TextToSpeechMessage) error

	// Events returns the emitter carrying engine events into the process.
	Events() *Emitter
}

// Ack is the fire-and-forget acknowledgement shape used by the engine wire
// protocol.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
