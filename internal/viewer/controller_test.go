package viewer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/mapbridge/config"
	"github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/internal/delegated"
	"github.com/wayfarerhq/mapbridge/internal/dispatcher"
	"github.com/wayfarerhq/mapbridge/internal/session"
	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/types"
)

func init() {
	logger.IsTest = true
}

type capturingSender struct {
	messages []Message
}

func (s *capturingSender) Send(msg Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

func (s *capturingSender) typesSent() []MessageType {
	out := make([]MessageType, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m.Type)
	}
	return out
}

type harness struct {
	native     *bridge.MockNative
	store      *store.Store
	sessions   *session.Manager
	parked     *delegated.Manager
	controller *Controller
	sender     *capturingSender
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	native := bridge.NewMockNative()
	native.Buildings = []types.Building{{BuildingIdentifier: "b1", Name: "HQ"}}
	native.IndoorPois = []types.Poi{
		{Identifier: 7, BuildingIdentifier: "b1", Position: types.Point{BuildingIdentifier: "b1", FloorIdentifier: "f1"}},
		{Identifier: 8, BuildingIdentifier: "b1", Position: types.Point{BuildingIdentifier: "b1", FloorIdentifier: "f2"}},
	}

	st := store.New()
	disp := dispatcher.New(st)
	sessions := session.NewManager(native, st, disp)
	parked := delegated.NewManager()
	controller := NewController(native, st, sessions, parked, config.ViewerConfig{Language: "en"})
	sender := &capturingSender{}
	controller.AttachSender(sender)
	return &harness{
		native:     native,
		store:      st,
		sessions:   sessions,
		parked:     parked,
		controller: controller,
		sender:     sender,
	}
}

func (h *harness) inbound(t *testing.T, msgType MessageType, payload any) error {
	t.Helper()
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return h.controller.HandleInbound(context.Background(), data)
}

func (h *harness) ready(t *testing.T) {
	t.Helper()
	require.NoError(t, h.inbound(t, MsgMapIsReady, nil))
	h.sender.messages = nil
}

func TestNothingSentBeforeMapReady(t *testing.T) {
	h := newHarness(t)

	h.controller.HandleInternalCall(types.InternalCall{
		Type: types.CallLocation,
		Data: types.Location{Accuracy: 1},
	})
	assert.Empty(t, h.sender.messages)

	err := h.controller.Command(SelectPoiMessage(7))
	assert.Error(t, err)
}

func TestMapReadyHandshakeAndFlush(t *testing.T) {
	h := newHarness(t)

	// Location produced while the viewer was loading.
	h.controller.HandleInternalCall(types.InternalCall{
		Type: types.CallLocation,
		Data: types.Location{Position: types.Position{BuildingIdentifier: "b1"}},
	})

	require.NoError(t, h.inbound(t, MsgMapIsReady, nil))

	sent := h.sender.typesSent()
	require.Len(t, sent, 2)
	assert.Equal(t, MsgInitialConfiguration, sent[0])
	assert.Equal(t, MsgLocationUpdate, sent[1])

	var cfg InitialConfiguration
	require.NoError(t, json.Unmarshal(h.sender.messages[0].Payload, &cfg))
	assert.True(t, cfg.SpeechSynthesisDisabled)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "mock-device", cfg.DeviceID)

	// The slot is consumed by the flush.
	_, ok := h.parked.Peek()
	assert.False(t, ok)
}

func TestLastDelegatedValueWinsOnFlush(t *testing.T) {
	h := newHarness(t)

	h.controller.HandleInternalCall(types.InternalCall{
		Type: types.CallLocation,
		Data: types.Location{},
	})
	h.controller.HandleInternalCall(types.InternalCall{
		Type: types.CallLocationError,
		Data: types.LocationError{Code: types.ErrBluetoothDisabled},
	})

	require.NoError(t, h.inbound(t, MsgMapIsReady, nil))

	sent := h.sender.typesSent()
	require.Len(t, sent, 2)
	assert.Equal(t, MsgLocationStatus, sent[1])

	var payload map[string]string
	require.NoError(t, json.Unmarshal(h.sender.messages[1].Payload, &payload))
	assert.Equal(t, string(types.ErrBluetoothDisabled), payload["status"])
}

func TestLocationForwardedWhenReady(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	h.controller.HandleInternalCall(types.InternalCall{
		Type: types.CallLocation,
		Data: types.Location{Accuracy: 2, Position: types.Position{FloorIdentifier: "f1"}},
	})

	require.Len(t, h.sender.messages, 1)
	assert.Equal(t, MsgLocationUpdate, h.sender.messages[0].Type)

	var p map[string]any
	require.NoError(t, json.Unmarshal(h.sender.messages[0].Payload, &p))
	assert.Equal(t, "f1", p["floorIdentifier"])
	assert.Equal(t, float64(2), p["accuracy"])
}

func TestDirectionsRequestedSendsRoute(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	err := h.inbound(t, MsgDirectionsRequested, map[string]any{
		"buildingIdentifier":    "b1",
		"originIdentifier":      "7",
		"destinationIdentifier": "8",
	})
	require.NoError(t, err)

	require.Len(t, h.sender.messages, 1)
	assert.Equal(t, MsgDirectionsUpdate, h.sender.messages[0].Type)

	var route types.Route
	require.NoError(t, json.Unmarshal(h.sender.messages[0].Payload, &route))
	assert.Equal(t, "7", route.OriginIdentifier)
	assert.Equal(t, "8", route.DestinationIdentifier)
}

func TestDirectionsRequestedValidation(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	err := h.inbound(t, MsgDirectionsRequested, map[string]any{
		"buildingIdentifier": "b1",
	})
	require.Error(t, err)
	assert.Empty(t, h.sender.messages)
	assert.Equal(t, 0, h.native.DirectionsRequests)
}

func TestDirectionsRejectionSendsNothing(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	err := h.inbound(t, MsgDirectionsRequested, map[string]any{
		"buildingIdentifier":    "b1",
		"originIdentifier":      "7",
		"destinationIdentifier": "99",
	})
	require.Error(t, err)

	// Rejected before the engine was reached: no store commit, no message.
	assert.Empty(t, h.sender.messages)
	assert.Nil(t, h.store.State().Directions)
}

func TestDirectionsEngineFailureReportsErrorRoute(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	h.native.Errs["requestDirections"] = errors.NewOperationFailedError("no route between points", nil)

	err := h.inbound(t, MsgDirectionsRequested, map[string]any{
		"buildingIdentifier":    "b1",
		"originIdentifier":      "7",
		"destinationIdentifier": "8",
	})
	require.Error(t, err)

	require.Len(t, h.sender.messages, 1)
	assert.Equal(t, MsgDirectionsUpdate, h.sender.messages[0].Type)

	var route types.Route
	require.NoError(t, json.Unmarshal(h.sender.messages[0].Payload, &route))
	assert.True(t, route.Failed())
	assert.Contains(t, route.Error, "no route between points")
}

func TestDirectionsInterceptorRewritesRequest(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	h.controller.SetDirectionsInterceptor(func(req *types.DirectionsRequest) {
		req.Options.AccessibilityMode = types.AccessibilityOnlyAccessible
	})

	err := h.inbound(t, MsgDirectionsRequested, map[string]any{
		"buildingIdentifier":    "b1",
		"originIdentifier":      "7",
		"destinationIdentifier": "8",
	})
	require.NoError(t, err)
	assert.Equal(t, types.AccessibilityOnlyAccessible, h.native.LastDirectionsOptions.AccessibilityMode)
}

func TestNavigationRequestedStartsSession(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	err := h.inbound(t, MsgNavigationRequested, map[string]any{
		"buildingIdentifier":    "b1",
		"originIdentifier":      "-1",
		"destinationIdentifier": "8",
		"destinationPoiId":      8,
	})
	// Routing from the user position without a fix fails.
	require.Error(t, err)

	h.store.Dispatch(store.SetLocation{Location: &types.Location{
		Position: types.Position{BuildingIdentifier: "b1", FloorIdentifier: "f1"},
	}})
	h.sender.messages = nil

	err = h.inbound(t, MsgNavigationRequested, map[string]any{
		"buildingIdentifier":    "b1",
		"originIdentifier":      "-1",
		"destinationIdentifier": "8",
		"destinationPoiId":      8,
	})
	require.NoError(t, err)

	assert.True(t, h.sessions.Navigating())
	assert.Equal(t, []MessageType{MsgDirectionsUpdate, MsgNavigationStart}, h.sender.typesSent())
	assert.Equal(t, 8, h.store.State().DestinationPoiID)
}

func TestNavigationStoppedFromViewer(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	h.store.Dispatch(store.SetLocation{Location: &types.Location{
		Position: types.Position{BuildingIdentifier: "b1", FloorIdentifier: "f1"},
	}})

	require.NoError(t, h.inbound(t, MsgNavigationRequested, map[string]any{
		"buildingIdentifier":    "b1",
		"originIdentifier":      "-1",
		"destinationIdentifier": "8",
	}))
	require.True(t, h.sessions.Navigating())

	require.NoError(t, h.inbound(t, MsgNavigationStopped, nil))
	assert.False(t, h.sessions.Navigating())
}

func TestFloorAndCategorySelectionBlockedWhileNavigating(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	h.store.Dispatch(store.SetLocation{Location: &types.Location{
		Position: types.Position{BuildingIdentifier: "b1", FloorIdentifier: "f1"},
	}})

	require.NoError(t, h.controller.SelectFloor("f2"))

	require.NoError(t, h.inbound(t, MsgNavigationRequested, map[string]any{
		"buildingIdentifier":    "b1",
		"originIdentifier":      "-1",
		"destinationIdentifier": "8",
	}))

	assert.Error(t, h.controller.SelectFloor("f2"))
	assert.Error(t, h.controller.SelectPoiCategory(3))
}

func TestBuildingSelectedOnlyActsOnChange(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	var selections []string
	h.controller.SetHooks(Hooks{
		OnBuildingSelected: func(id string) { selections = append(selections, id) },
	})

	require.NoError(t, h.inbound(t, MsgBuildingSelected, map[string]string{"identifier": "b1"}))
	require.NoError(t, h.inbound(t, MsgBuildingSelected, map[string]string{"identifier": "b1"}))

	assert.Equal(t, []string{"b1"}, selections)
	require.NotNil(t, h.store.State().CurrentBuilding)
	assert.Equal(t, "b1", h.store.State().CurrentBuilding.BuildingIdentifier)
	assert.Equal(t, 1, h.native.CallCount("fetchBuildings"))
}

func TestBuildingSelectedForConfiguredBuildingIsNoop(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	h.store.Dispatch(store.SetBuildingIdentifier{Identifier: "b1"})

	var selections []string
	h.controller.SetHooks(Hooks{
		OnBuildingSelected: func(id string) { selections = append(selections, id) },
	})

	// The viewer re-reports the configured building after loading; nothing
	// should be refetched or re-dispatched for it.
	require.NoError(t, h.inbound(t, MsgBuildingSelected, map[string]string{"identifier": "b1"}))

	assert.Empty(t, selections)
	assert.Nil(t, h.store.State().CurrentBuilding)
	assert.Equal(t, 0, h.native.CallCount("fetchBuildings"))
}

func TestPoiSelectionHooks(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	var selected *PoiSelection
	var deselected bool
	h.controller.SetHooks(Hooks{
		OnPoiSelected:   func(s PoiSelection) { selected = &s },
		OnPoiDeselected: func() { deselected = true },
	})

	require.NoError(t, h.inbound(t, MsgPoiSelected, map[string]any{"identifier": 7}))
	require.NotNil(t, selected)
	assert.Equal(t, 7, selected.Identifier)

	require.NoError(t, h.inbound(t, MsgPoiDeselected, nil))
	assert.True(t, deselected)

	// Missing identifier is rejected.
	assert.Error(t, h.inbound(t, MsgPoiSelected, map[string]any{}))
}

func TestSpeakAloudForwardedToEngine(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	require.NoError(t, h.inbound(t, MsgSpeakAloud, map[string]any{"text": "turn left"}))
	assert.Equal(t, 1, h.native.CallCount("speakAloudText"))

	assert.Error(t, h.inbound(t, MsgSpeakAloud, map[string]any{}))
}

func TestViewerNavigationForwardedAsExternalState(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	require.NoError(t, h.inbound(t, MsgViewerNavUpdated, map[string]any{"distanceToGoal": 12.5}))

	require.NotNil(t, h.native.LastNavigationState)
	assert.Equal(t, string(MsgViewerNavUpdated), h.native.LastNavigationState["messageType"])
	assert.Equal(t, 12.5, h.native.LastNavigationState["distanceToGoal"])
}

func TestUnknownInboundTypeIgnored(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	assert.NoError(t, h.inbound(t, MessageType("wat.is_this"), nil))
	assert.Empty(t, h.sender.messages)
}

func TestMalformedInboundRejected(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.controller.HandleInbound(context.Background(), []byte("{nope")))
	assert.Error(t, h.controller.HandleInbound(context.Background(), []byte(`{"payload":{}}`)))
}

func TestStatusAdaptationOnViewerChannel(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	h.controller.HandleInternalCall(types.InternalCall{
		Type: types.CallLocationStatus,
		Data: types.StatusStarting,
	})
	h.controller.HandleInternalCall(types.InternalCall{Type: types.CallLocationStopped})

	require.Len(t, h.sender.messages, 2)
	var p map[string]string
	require.NoError(t, json.Unmarshal(h.sender.messages[1].Payload, &p))
	assert.Equal(t, string(types.StatusStopped), p["status"])
}

func TestReportLoadErrorClassifiesAndFiresHook(t *testing.T) {
	h := newHarness(t)

	var kinds []LoadErrorKind
	h.controller.SetHooks(Hooks{
		OnLoadError: func(kind LoadErrorKind, err *errors.AppError) {
			require.NotNil(t, err)
			kinds = append(kinds, kind)
		},
	})

	h.controller.ReportLoadError(503, assert.AnError)
	h.controller.ReportLoadError(0, assert.AnError)

	assert.Equal(t, []LoadErrorKind{LoadErrorServer, LoadErrorNetwork}, kinds)
}
