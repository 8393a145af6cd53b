package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/internal/dispatcher"
	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/types"
)

func init() {
	logger.IsTest = true
}

func newManager() (*bridge.MockNative, *store.Store, *dispatcher.Dispatcher, *Manager) {
	native := bridge.NewMockNative()
	st := store.New()
	disp := dispatcher.New(st)
	return native, st, disp, NewManager(native, st, disp)
}

func seedCartography(native *bridge.MockNative) {
	native.Buildings = []types.Building{{BuildingIdentifier: "b1", Name: "HQ"}}
	native.IndoorPois = []types.Poi{
		{Identifier: 7, BuildingIdentifier: "b1", Position: types.Point{BuildingIdentifier: "b1", FloorIdentifier: "f1"}},
		{Identifier: 8, BuildingIdentifier: "b1", Position: types.Point{BuildingIdentifier: "b1", FloorIdentifier: "f2"}},
	}
}

func TestCalculateRouteCommitsAndMergesMetadata(t *testing.T) {
	native, st, _, m := newManager()
	seedCartography(native)

	route, err := m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      "7",
		DestinationIdentifier: "8",
	})
	require.NoError(t, err)
	require.NotNil(t, route)

	assert.Equal(t, "7", route.OriginIdentifier)
	assert.Equal(t, "8", route.DestinationIdentifier)
	assert.Equal(t, types.AccessibilityChooseShortest, route.Type)

	committed := st.State().Directions
	require.NotNil(t, committed)
	assert.False(t, committed.Failed())
	assert.Equal(t, "7", committed.OriginIdentifier)
}

func TestCalculateRouteFromCurrentLocation(t *testing.T) {
	native, st, _, m := newManager()
	seedCartography(native)
	st.Dispatch(store.SetLocation{Location: &types.Location{
		Position: types.Position{BuildingIdentifier: "b1", FloorIdentifier: "f1", IsIndoor: true},
	}})

	route, err := m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      CurrentLocationIdentifier,
		DestinationIdentifier: "8",
	})
	require.NoError(t, err)
	require.NotNil(t, route.From)
	assert.Equal(t, "f1", route.From.FloorIdentifier)
	assert.True(t, route.From.IsIndoor)
}

func TestCalculateRouteWithoutLocationFails(t *testing.T) {
	native, st, _, m := newManager()
	seedCartography(native)

	_, err := m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      CurrentLocationIdentifier,
		DestinationIdentifier: "8",
	})
	require.Error(t, err)

	// Rejected before reaching the engine; nothing is committed.
	assert.Nil(t, st.State().Directions)
	assert.Equal(t, 0, native.CallCount("requestDirections"))
}

func TestPreflightRejectionCommitsNothing(t *testing.T) {
	native, st, _, m := newManager()
	seedCartography(native)

	_, err := m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      "7",
		DestinationIdentifier: "99",
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.NotFoundError, appErr.Type)
	assert.Nil(t, st.State().Directions)
	assert.Equal(t, 0, native.CallCount("requestDirections"))
}

func TestCalculateRouteEngineFailureCommitsErrorRoute(t *testing.T) {
	native, st, _, m := newManager()
	seedCartography(native)
	native.Errs["requestDirections"] = errors.NewOperationFailedError("no route between points", nil)

	_, err := m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      "7",
		DestinationIdentifier: "8",
	})
	require.Error(t, err)

	committed := st.State().Directions
	require.NotNil(t, committed)
	assert.True(t, committed.Failed())
	assert.Contains(t, committed.Error, "no route between points")
	assert.Equal(t, "7", committed.OriginIdentifier)
}

func TestConcurrentDirectionsRejected(t *testing.T) {
	native, _, _, m := newManager()
	seedCartography(native)

	m.directionsBusy.Store(true)
	_, err := m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      "7",
		DestinationIdentifier: "8",
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ValidationError, appErr.Type)

	// Releasing the lock lets the next request through.
	m.directionsBusy.Store(false)
	_, err = m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      "7",
		DestinationIdentifier: "8",
	})
	assert.NoError(t, err)
}

func TestBuildingFetchedWhenNotInStore(t *testing.T) {
	native, st, _, m := newManager()
	seedCartography(native)

	_, err := m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      "7",
		DestinationIdentifier: "8",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, native.CallCount("fetchBuildings"))
	assert.Len(t, st.State().Buildings, 1)
}

func TestUnknownBuilding(t *testing.T) {
	native, _, _, m := newManager()
	seedCartography(native)

	_, err := m.CalculateRoute(context.Background(), types.DirectionsRequest{
		BuildingIdentifier:    "nope",
		OriginIdentifier:      "7",
		DestinationIdentifier: "8",
	})
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.NotFoundError, appErr.Type)
}

func TestStartNavigationAppliesDefaultThresholds(t *testing.T) {
	native, st, _, m := newManager()
	seedCartography(native)

	route, err := m.StartNavigation(context.Background(), StartNavigationRequest{
		Directions: types.DirectionsRequest{
			BuildingIdentifier:    "b1",
			OriginIdentifier:      "7",
			DestinationIdentifier: "8",
		},
		DestinationPoiID: 8,
	})
	require.NoError(t, err)
	require.NotNil(t, route)

	assert.Equal(t, float64(4), native.LastNavigationRequest.DistanceToGoalThreshold)
	assert.Equal(t, float64(5), native.LastNavigationRequest.OutsideRouteThreshold)
	assert.True(t, m.Navigating())
	assert.Equal(t, types.NavigationStart, st.State().Navigation.Status)
	assert.Equal(t, 8, st.State().DestinationPoiID)
	// The directions slot is untouched by navigation's internal route.
	assert.Nil(t, st.State().Directions)
}

func TestStartNavigationKeepsExplicitThresholds(t *testing.T) {
	native, _, _, m := newManager()
	seedCartography(native)

	_, err := m.StartNavigation(context.Background(), StartNavigationRequest{
		Directions: types.DirectionsRequest{
			BuildingIdentifier:    "b1",
			OriginIdentifier:      "7",
			DestinationIdentifier: "8",
		},
		Navigation: types.NavigationRequest{
			DistanceToGoalThreshold: 10,
			OutsideRouteThreshold:   20,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(10), native.LastNavigationRequest.DistanceToGoalThreshold)
	assert.Equal(t, float64(20), native.LastNavigationRequest.OutsideRouteThreshold)
}

func TestStartNavigationStopsPriorSession(t *testing.T) {
	native, _, _, m := newManager()
	seedCartography(native)

	req := StartNavigationRequest{Directions: types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		OriginIdentifier:      "7",
		DestinationIdentifier: "8",
	}}
	_, err := m.StartNavigation(context.Background(), req)
	require.NoError(t, err)
	_, err = m.StartNavigation(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, native.NavigationStopCalls)
	assert.Equal(t, 2, native.NavigationStartCalls)
	assert.True(t, m.Navigating())
}

func TestStopNavigationIdempotent(t *testing.T) {
	native, st, _, m := newManager()
	seedCartography(native)

	require.NoError(t, m.StopNavigation(context.Background()))
	assert.Equal(t, 0, native.NavigationStopCalls)

	_, err := m.StartNavigation(context.Background(), StartNavigationRequest{
		Directions: types.DirectionsRequest{
			BuildingIdentifier:    "b1",
			OriginIdentifier:      "7",
			DestinationIdentifier: "8",
		},
	})
	require.NoError(t, err)

	require.NoError(t, m.StopNavigation(context.Background()))
	require.NoError(t, m.StopNavigation(context.Background()))
	assert.Equal(t, 1, native.NavigationStopCalls)
	assert.False(t, m.Navigating())
	assert.Equal(t, types.NavigationStop, st.State().Navigation.Status)
	assert.Equal(t, 0, st.State().DestinationPoiID)
}

func TestNavigationStartFailureReportsAndTearsDown(t *testing.T) {
	native, st, disp, m := newManager()
	seedCartography(native)
	native.Errs["requestNavigationUpdates"] = errors.NewOperationFailedError("engine busy", nil)

	var reported []types.LocationError
	var mu sync.Mutex
	disp.UpdateCallbacks(func(cb *dispatcher.Callbacks) {
		cb.OnNavigationError = func(e types.LocationError) {
			mu.Lock()
			reported = append(reported, e)
			mu.Unlock()
		}
	})

	_, err := m.StartNavigation(context.Background(), StartNavigationRequest{
		Directions: types.DirectionsRequest{
			BuildingIdentifier:    "b1",
			OriginIdentifier:      "7",
			DestinationIdentifier: "8",
		},
	})
	require.Error(t, err)

	require.Len(t, reported, 1)
	assert.Equal(t, types.SeverityNonCritical, reported[0].Type)
	assert.Equal(t, "could not update navigation", reported[0].Message)
	assert.False(t, m.Navigating())
	assert.Equal(t, types.NavigationStop, st.State().Navigation.Status)
	require.NotNil(t, st.State().Error)
	assert.Equal(t, "could not update navigation", st.State().Error.Message)
}

func TestUpdateWithLocationOnlyWhileNavigating(t *testing.T) {
	native, _, _, m := newManager()
	seedCartography(native)

	m.UpdateWithLocation(context.Background(), types.Location{})
	assert.Empty(t, native.NavigationLocations)

	_, err := m.StartNavigation(context.Background(), StartNavigationRequest{
		Directions: types.DirectionsRequest{
			BuildingIdentifier:    "b1",
			OriginIdentifier:      "7",
			DestinationIdentifier: "8",
		},
	})
	require.NoError(t, err)

	m.UpdateWithLocation(context.Background(), types.Location{Accuracy: 3})
	require.Len(t, native.NavigationLocations, 1)
	assert.Equal(t, float64(3), native.NavigationLocations[0].Accuracy)
}
