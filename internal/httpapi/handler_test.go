package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/mapbridge/config"
	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/sdk"
	"github.com/wayfarerhq/mapbridge/types"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) (*gin.Engine, *bridge.MockNative) {
	t.Helper()
	native := bridge.NewMockNative()
	native.Buildings = []types.Building{{BuildingIdentifier: "b1", Name: "HQ"}}
	native.IndoorPois = []types.Poi{
		{Identifier: 7, BuildingIdentifier: "b1", Position: types.Point{BuildingIdentifier: "b1"}},
	}

	s := sdk.New(&config.Config{
		Viewer: config.ViewerConfig{Domain: "https://map-viewer.example.com", APIKey: "k"},
	}, native)
	require.NoError(t, s.Init(context.Background()))

	r := gin.New()
	NewHandler(s).Register(r)
	return r, native
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestViewerURLEndpoint(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodGet, "/v1/viewer/url", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["url"], "mode=embed")
}

func TestPositioningLifecycle(t *testing.T) {
	r, native := newServer(t)

	w := do(t, r, http.MethodPost, "/v1/positioning/start", types.LocationRequest{BuildingIdentifier: "b1"})
	require.Equal(t, http.StatusOK, w.Code)

	// Starting twice is a client error.
	w = do(t, r, http.MethodPost, "/v1/positioning/start", types.LocationRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/v1/positioning/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, native.StopPositioningCalls)
}

func TestDirectionsEndpoint(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodPost, "/v1/directions", types.DirectionsRequest{
		BuildingIdentifier:    "b1",
		From:                  &types.Point{BuildingIdentifier: "b1"},
		DestinationIdentifier: "7",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var route types.Route
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &route))
	assert.Equal(t, "7", route.DestinationIdentifier)
}

func TestDirectionsUnknownBuilding(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodPost, "/v1/directions", types.DirectionsRequest{
		BuildingIdentifier:    "ghost",
		From:                  &types.Point{},
		DestinationIdentifier: "7",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNavigationEndpoints(t *testing.T) {
	r, native := newServer(t)

	w := do(t, r, http.MethodPost, "/v1/navigation/start", startNavigationBody{
		Directions: types.DirectionsRequest{
			BuildingIdentifier:    "b1",
			From:                  &types.Point{BuildingIdentifier: "b1"},
			DestinationIdentifier: "7",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, native.NavigationStartCalls)

	w = do(t, r, http.MethodPost, "/v1/navigation/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Stop is idempotent at the HTTP level too.
	w = do(t, r, http.MethodPost, "/v1/navigation/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListBuildings(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodGet, "/v1/cartography/buildings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var buildings []types.Building
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buildings))
	require.Len(t, buildings, 1)
	assert.Equal(t, "HQ", buildings[0].Name)
}
