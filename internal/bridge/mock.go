package bridge

import (
	"context"
	"sync"

	"github.com/wayfarerhq/mapbridge/types"
)

// MockNative is an in-memory Native implementation for tests. It records
// every call and lets tests script responses and push events through the
// emitter.
type MockNative struct {
	mu      sync.Mutex
	emitter *Emitter

	Calls []string

	Buildings  []types.Building
	IndoorPois []types.Poi
	Route      *types.Route

	// Errs maps an operation name to the error it should return.
	Errs map[string]error

	StartPositioningCalls  int
	StopPositioningCalls   int
	NavigationStartCalls   int
	NavigationStopCalls    int
	NavigationLocations    []types.Location
	DirectionsRequests     int
	LastNavigationRequest  types.NavigationRequest
	LastDirectionsOptions  types.DirectionsOptions
	LastNavigationState    map[string]any
	RealTimeStartCalls     int
	RealTimeStopCalls      int
}

// NewMockNative creates an empty mock.
func NewMockNative() *MockNative {
	return &MockNative{
		emitter: NewEmitter(),
		Errs:    make(map[string]error),
	}
}

func (m *MockNative) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, op)
	return m.Errs[op]
}

// CallCount returns how many times op was recorded.
func (m *MockNative) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *MockNative) Events() *Emitter { return m.emitter }

func (m *MockNative) Init(ctx context.Context) error { return m.record("init") }

func (m *MockNative) SetAPIKey(ctx context.Context, email, apiKey string) error {
	return m.record("setApiKey")
}

func (m *MockNative) SetUserPass(ctx context.Context, email, password string) error {
	return m.record("setUserPass")
}

func (m *MockNative) SetDashboardURL(ctx context.Context, url string) error {
	return m.record("setDashboardURL")
}

func (m *MockNative) SetUseRemoteConfig(ctx context.Context, use bool) error {
	return m.record("setUseRemoteConfig")
}

func (m *MockNative) SetCacheMaxAge(ctx context.Context, seconds int) error {
	return m.record("setCacheMaxAge")
}

func (m *MockNative) InvalidateCache(ctx context.Context) error {
	return m.record("invalidateCache")
}

func (m *MockNative) DeviceID(ctx context.Context) (string, error) {
	if err := m.record("deviceId"); err != nil {
		return "", err
	}
	return "mock-device", nil
}

func (m *MockNative) FetchBuildings(ctx context.Context) ([]types.Building, error) {
	if err := m.record("fetchBuildings"); err != nil {
		return nil, err
	}
	return m.Buildings, nil
}

func (m *MockNative) FetchBuildingInfo(ctx context.Context, building types.Building) (*types.BuildingInfo, error) {
	if err := m.record("fetchBuildingInfo"); err != nil {
		return nil, err
	}
	return &types.BuildingInfo{Building: building}, nil
}

func (m *MockNative) FetchFloorsFromBuilding(ctx context.Context, building types.Building) ([]types.Floor, error) {
	if err := m.record("fetchFloors"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (m *MockNative) FetchIndoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error) {
	if err := m.record("fetchIndoorPois"); err != nil {
		return nil, err
	}
	return m.IndoorPois, nil
}

func (m *MockNative) FetchOutdoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error) {
	if err := m.record("fetchOutdoorPois"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (m *MockNative) FetchGeofencesFromBuilding(ctx context.Context, building types.Building) ([]types.Geofence, error) {
	if err := m.record("fetchGeofences"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (m *MockNative) FetchPoiCategories(ctx context.Context) ([]types.PoiCategory, error) {
	if err := m.record("fetchPoiCategories"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (m *MockNative) FetchPoiCategoryIconNormal(ctx context.Context, category types.PoiCategory) (*types.PoiIcon, error) {
	if err := m.record("fetchPoiCategoryIconNormal"); err != nil {
		return nil, err
	}
	return &types.PoiIcon{}, nil
}

func (m *MockNative) FetchPoiCategoryIconSelected(ctx context.Context, category types.PoiCategory) (*types.PoiIcon, error) {
	if err := m.record("fetchPoiCategoryIconSelected"); err != nil {
		return nil, err
	}
	return &types.PoiIcon{}, nil
}

func (m *MockNative) FetchTilesFromBuilding(ctx context.Context, building types.Building) (*types.TileBundle, error) {
	if err := m.record("fetchTiles"); err != nil {
		return nil, err
	}
	return &types.TileBundle{BuildingIdentifier: building.BuildingIdentifier}, nil
}

func (m *MockNative) FetchMapFromFloor(ctx context.Context, floor types.Floor) (string, error) {
	if err := m.record("fetchMapFromFloor"); err != nil {
		return "", err
	}
	return "", nil
}

func (m *MockNative) StartPositioning(ctx context.Context, req types.LocationRequest) error {
	m.mu.Lock()
	m.StartPositioningCalls++
	m.mu.Unlock()
	return m.record("startPositioning")
}

func (m *MockNative) StopPositioning(ctx context.Context) error {
	m.mu.Lock()
	m.StopPositioningCalls++
	m.mu.Unlock()
	return m.record("stopPositioning")
}

func (m *MockNative) RequestDirections(ctx context.Context, building types.Building, from, to types.Point, options types.DirectionsOptions) (*types.Route, error) {
	m.mu.Lock()
	m.DirectionsRequests++
	m.LastDirectionsOptions = options
	m.mu.Unlock()
	if err := m.record("requestDirections"); err != nil {
		return nil, err
	}
	if m.Route != nil {
		route := *m.Route
		route.From = &from
		route.To = &to
		return &route, nil
	}
	return &types.Route{From: &from, To: &to}, nil
}

func (m *MockNative) RequestNavigationUpdates(ctx context.Context, req types.NavigationRequest) error {
	m.mu.Lock()
	m.NavigationStartCalls++
	m.LastNavigationRequest = req
	m.mu.Unlock()
	return m.record("requestNavigationUpdates")
}

func (m *MockNative) RemoveNavigationUpdates(ctx context.Context) error {
	m.mu.Lock()
	m.NavigationStopCalls++
	m.mu.Unlock()
	return m.record("removeNavigationUpdates")
}

func (m *MockNative) UpdateNavigationWithLocation(ctx context.Context, location types.Location) error {
	m.mu.Lock()
	m.NavigationLocations = append(m.NavigationLocations, location)
	m.mu.Unlock()
	return m.record("updateNavigationWithLocation")
}

func (m *MockNative) UpdateNavigationState(ctx context.Context, state map[string]any) error {
	m.mu.Lock()
	m.LastNavigationState = state
	m.mu.Unlock()
	return m.record("updateNavigationState")
}

func (m *MockNative) RequestRealTimeUpdates(ctx context.Context, req types.RealTimeRequest) error {
	m.mu.Lock()
	m.RealTimeStartCalls++
	m.mu.Unlock()
	return m.record("requestRealTimeUpdates")
}

func (m *MockNative) RemoveRealTimeUpdates(ctx context.Context) error {
	m.mu.Lock()
	m.RealTimeStopCalls++
	m.mu.Unlock()
	return m.record("removeRealTimeUpdates")
}

func (m *MockNative) CheckIfPointInsideGeofence(ctx context.Context, req types.GeofenceCheckRequest) (*types.GeofenceCheckResponse, error) {
	if err := m.record("checkIfPointInsideGeofence"); err != nil {
		return nil, err
	}
	return &types.GeofenceCheckResponse{}, nil
}

func (m *MockNative) OnEnterGeofences(ctx context.Context) error {
	return m.record("onEnterGeofences")
}

func (m *MockNative) OnExitGeofences(ctx context.Context) error {
	return m.record("onExitGeofences")
}

func (m *MockNative) ConfigureUserHelper(ctx context.Context, opts types.UserHelperOptions) error {
	return m.record("configureUserHelper")
}

func (m *MockNative) ValidateMapViewProjectSettings(ctx context.Context) error {
	return m.record("validateMapViewProjectSettings")
}

func (m *MockNative) SpeakAloudText(ctx context.Context, msg types.TextToSpeechMessage) error {
	return m.record("speakAloudText")
}

var _ Native = (*MockNative)(nil)
