package sdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/mapbridge/config"
	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/types"
)

func init() {
	logger.IsTest = true
}

func newSDK(t *testing.T) (*SDK, *bridge.MockNative) {
	t.Helper()
	native := bridge.NewMockNative()
	native.Buildings = []types.Building{{BuildingIdentifier: "b1"}}
	native.IndoorPois = []types.Poi{
		{Identifier: 7, BuildingIdentifier: "b1", Position: types.Point{BuildingIdentifier: "b1"}},
	}
	cfg := &config.Config{
		Viewer: config.ViewerConfig{
			Domain: "https://map-viewer.example.com",
			APIKey: "k",
		},
	}
	return New(cfg, native), native
}

func TestOperationsRequireInit(t *testing.T) {
	s, _ := newSDK(t)

	err := s.StartPositioning(context.Background(), types.LocationRequest{})
	assert.Error(t, err)

	_, err = s.CalculateRoute(context.Background(), types.DirectionsRequest{})
	assert.Error(t, err)
}

func TestRepeatedInitDoesNotDuplicateDelivery(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.Init(context.Background()))

	var updates int
	s.OnLocationUpdate(func(types.Location) { updates++ })

	native.Events().Emit(bridge.EventLocationChanged, types.Location{})
	assert.Equal(t, 1, updates)
	assert.True(t, s.Store().State().SDKInitialized)
}

func TestPositioningGuards(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))

	require.NoError(t, s.StartPositioning(context.Background(), types.LocationRequest{}))
	assert.True(t, s.Positioning())

	err := s.StartPositioning(context.Background(), types.LocationRequest{})
	assert.Error(t, err)
	assert.Equal(t, 1, native.StartPositioningCalls)

	require.NoError(t, s.StopPositioning(context.Background()))
	require.NoError(t, s.StopPositioning(context.Background()))
	assert.Equal(t, 1, native.StopPositioningCalls)
	assert.False(t, s.Positioning())
}

func TestStartPositioningFailureReleasesGuard(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))
	native.Errs["startPositioning"] = assert.AnError

	require.Error(t, s.StartPositioning(context.Background(), types.LocationRequest{}))
	assert.False(t, s.Positioning())

	delete(native.Errs, "startPositioning")
	assert.NoError(t, s.StartPositioning(context.Background(), types.LocationRequest{}))
}

func TestRealtimeGuards(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))

	require.NoError(t, s.RequestRealTimeUpdates(context.Background(), types.RealTimeRequest{}))
	assert.Error(t, s.RequestRealTimeUpdates(context.Background(), types.RealTimeRequest{}))
	assert.Equal(t, 1, native.RealTimeStartCalls)

	require.NoError(t, s.RemoveRealTimeUpdates(context.Background()))
	require.NoError(t, s.RemoveRealTimeUpdates(context.Background()))
	assert.Equal(t, 1, native.RealTimeStopCalls)
}

func TestSetAPIKeyRecordsUser(t *testing.T) {
	s, _ := newSDK(t)

	require.NoError(t, s.SetAPIKey(context.Background(), "dev@example.com", "key"))
	user := s.Store().State().User
	require.NotNil(t, user)
	assert.Equal(t, "dev@example.com", user.Email)
	assert.Equal(t, "key", user.APIKey)
}

func TestSetConfigurationAppliesOnlySetFields(t *testing.T) {
	s, native := newSDK(t)

	maxAge := 300
	require.NoError(t, s.SetConfiguration(context.Background(), types.ConfigurationOptions{
		CacheMaxAge: &maxAge,
	}))
	assert.Equal(t, 0, native.CallCount("setUseRemoteConfig"))
	assert.Equal(t, 1, native.CallCount("setCacheMaxAge"))
}

func TestDeprecatedNavigationFinished(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))

	var finished int
	s.OnNavigationFinished(func() { finished++ })

	native.Events().Emit(bridge.EventNavigationCancellation, nil)
	native.Events().Emit(bridge.EventNavigationDestinationReached, &types.Route{})
	assert.Equal(t, 2, finished)

	s.OnNavigationFinished(nil)
	native.Events().Emit(bridge.EventNavigationCancellation, nil)
	assert.Equal(t, 2, finished)
}

func TestCallbackReplacement(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))

	var first, second int
	s.OnLocationUpdate(func(types.Location) { first++ })
	s.OnLocationUpdate(func(types.Location) { second++ })

	native.Events().Emit(bridge.EventLocationChanged, types.Location{})
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestNavigationFedByLocations(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))

	_, err := s.StartNavigation(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		From:                  &types.Point{BuildingIdentifier: "b1"},
		DestinationIdentifier: "7",
	}, types.NavigationRequest{})
	require.NoError(t, err)
	require.True(t, s.Navigating())

	native.Events().Emit(bridge.EventLocationChanged, types.Location{Accuracy: 1})
	assert.Len(t, native.NavigationLocations, 1)

	require.NoError(t, s.StopNavigation(context.Background()))
	native.Events().Emit(bridge.EventLocationChanged, types.Location{Accuracy: 2})
	assert.Len(t, native.NavigationLocations, 1)
}

func TestCloseStopsEverything(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.StartPositioning(context.Background(), types.LocationRequest{}))

	var updates int
	s.OnLocationUpdate(func(types.Location) { updates++ })

	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 1, native.StopPositioningCalls)
	assert.False(t, s.Store().State().SDKInitialized)

	// Handlers are gone after close.
	native.Events().Emit(bridge.EventLocationChanged, types.Location{})
	assert.Equal(t, 0, updates)
}

func TestViewerURL(t *testing.T) {
	s, _ := newSDK(t)
	url, err := s.ViewerURL()
	require.NoError(t, err)
	assert.Contains(t, url, "map-viewer.example.com")
	assert.Contains(t, url, "mode=embed")
}

func TestCustomDelegateReceivesParkedState(t *testing.T) {
	s, native := newSDK(t)
	require.NoError(t, s.Init(context.Background()))

	// No viewer is connected, so the update is parked.
	native.Events().Emit(bridge.EventLocationChanged, types.Location{
		Position: types.Position{BuildingIdentifier: "b1"},
	})

	var calls []types.InternalCall
	s.SetViewerDelegate(func(call types.InternalCall) {
		calls = append(calls, call)
	})

	require.Len(t, calls, 1)
	assert.Equal(t, types.CallLocation, calls[0].Type)
	loc, ok := calls[0].Data.(types.Location)
	require.True(t, ok)
	assert.Equal(t, "b1", loc.Position.BuildingIdentifier)
}
