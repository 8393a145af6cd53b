package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	apperrors "github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/types"
)

// RemoteBridge reaches the positioning engine process over HTTP for
// request/response operations and a WebSocket stream for events.
type RemoteBridge struct {
	baseURL    string
	eventsURL  string
	httpClient *http.Client
	emitter    *Emitter
	log        *zap.SugaredLogger

	streamMu     sync.Mutex
	cancelStream context.CancelFunc
}

// RemoteOptions tune the HTTP transport.
type RemoteOptions struct {
	Timeout time.Duration
}

// DefaultRemoteOptions returns the default transport options.
func DefaultRemoteOptions() RemoteOptions {
	return RemoteOptions{Timeout: 7 * time.Second}
}

// NewRemoteBridge creates a bridge against the engine at baseURL. eventsURL
// may be empty, in which case it is derived from baseURL.
func NewRemoteBridge(baseURL, eventsURL string, options ...RemoteOptions) *RemoteBridge {
	opts := DefaultRemoteOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	if eventsURL == "" {
		eventsURL = deriveEventsURL(baseURL)
	}
	return &RemoteBridge{
		baseURL:    strings.TrimRight(baseURL, "/"),
		eventsURL:  eventsURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		emitter:    NewEmitter(),
		log:        logger.GetLogger().Named("remote_bridge"),
	}
}

func deriveEventsURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/events"
	return u.String()
}

// Events returns the emitter carrying engine events.
func (b *RemoteBridge) Events() *Emitter {
	return b.emitter
}

// streamEnvelope is a single event on the engine WebSocket stream.
type streamEnvelope struct {
	Event   EventName       `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Init verifies the engine is reachable and starts consuming its event
// stream. Calling Init again replaces the consumer: the previous stream is
// cancelled first so events are never delivered twice. A connection failure
// here is fatal: nothing else can work without the engine.
func (b *RemoteBridge) Init(ctx context.Context) error {
	if err := b.post(ctx, "init", nil, nil); err != nil {
		return apperrors.NewBridgeError(fmt.Errorf("engine not reachable at %s: %w", b.baseURL, err))
	}

	streamCtx, cancel := context.WithCancel(context.Background())

	b.streamMu.Lock()
	if b.cancelStream != nil {
		b.cancelStream()
	}
	b.cancelStream = cancel
	b.streamMu.Unlock()

	go b.consumeEvents(streamCtx)
	return nil
}

// Close stops the event stream consumer.
func (b *RemoteBridge) Close() {
	b.streamMu.Lock()
	defer b.streamMu.Unlock()
	if b.cancelStream != nil {
		b.cancelStream()
		b.cancelStream = nil
	}
}

func (b *RemoteBridge) consumeEvents(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := b.readStream(ctx); err != nil && ctx.Err() == nil {
			b.log.Warnw("Event stream interrupted, reconnecting", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (b *RemoteBridge) readStream(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, b.eventsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var env streamEnvelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return err
		}
		b.dispatch(env)
	}
}

// dispatch decodes the raw payload into the type matching the event name and
// emits it. Malformed payloads are logged and dropped; they never reach
// listeners.
func (b *RemoteBridge) dispatch(env streamEnvelope) {
	payload, err := decodeEventPayload(env.Event, env.Payload)
	if err != nil {
		b.log.Warnw("Dropping malformed engine event",
			"event", env.Event,
			"error", err)
		return
	}
	b.emitter.Emit(env.Event, payload)
}

func decodeEventPayload(name EventName, raw json.RawMessage) (any, error) {
	decode := func(v any) (any, error) {
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	switch name {
	case EventLocationChanged:
		loc := &types.Location{}
		if _, err := decode(loc); err != nil {
			return nil, err
		}
		return *loc, nil
	case EventStatusChanged:
		st := &types.LocationStatus{}
		if _, err := decode(st); err != nil {
			return nil, err
		}
		return *st, nil
	case EventLocationError, EventNavigationError, EventRealtimeError:
		ne := &types.NativeError{}
		if _, err := decode(ne); err != nil {
			return nil, err
		}
		return *ne, nil
	case EventNavigationStart, EventNavigationDestinationReached:
		route := &types.Route{}
		if _, err := decode(route); err != nil {
			return nil, err
		}
		return route, nil
	case EventNavigationProgress:
		progress := &types.NavigationProgress{}
		if _, err := decode(progress); err != nil {
			return nil, err
		}
		return progress, nil
	case EventRealtimeUpdated:
		data := &types.RealTimeData{}
		if _, err := decode(data); err != nil {
			return nil, err
		}
		return *data, nil
	case EventEnterGeofences, EventExitGeofences:
		var geofences []types.Geofence
		if err := json.Unmarshal(raw, &geofences); err != nil {
			return nil, err
		}
		return geofences, nil
	case EventLocationStopped, EventNavigationOutOfRoute,
		EventNavigationCancellation, EventNavigationFinished:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown event name %q", name)
	}
}

// post issues a request/response operation. A nil out decodes the response as
// an Ack and converts {success:false} into an error.
func (b *RemoteBridge) post(ctx context.Context, op string, in, out any) error {
	reqURL := fmt.Sprintf("%s/v1/%s", b.baseURL, op)

	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return apperrors.NewBridgeError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewBridgeError(fmt.Errorf("%s: unexpected status code %d", op, resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.NewBridgeError(fmt.Errorf("%s: failed to decode response: %w", op, err))
		}
		return nil
	}

	var ack Ack
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return apperrors.NewBridgeError(fmt.Errorf("%s: failed to decode ack: %w", op, err))
	}
	if !ack.Success {
		return apperrors.NewOperationFailedError(fmt.Sprintf("%s rejected by engine", op), fmt.Errorf("%s", ack.Message))
	}
	return nil
}

func (b *RemoteBridge) SetAPIKey(ctx context.Context, email, apiKey string) error {
	return b.post(ctx, "configuration/apikey", map[string]string{"email": email, "apiKey": apiKey}, nil)
}

func (b *RemoteBridge) SetUserPass(ctx context.Context, email, password string) error {
	return b.post(ctx, "configuration/credentials", map[string]string{"email": email, "password": password}, nil)
}

func (b *RemoteBridge) SetDashboardURL(ctx context.Context, dashboardURL string) error {
	return b.post(ctx, "configuration/dashboard-url", map[string]string{"url": dashboardURL}, nil)
}

func (b *RemoteBridge) SetUseRemoteConfig(ctx context.Context, use bool) error {
	return b.post(ctx, "configuration/remote-config", map[string]bool{"useRemoteConfig": use}, nil)
}

func (b *RemoteBridge) SetCacheMaxAge(ctx context.Context, seconds int) error {
	return b.post(ctx, "configuration/cache-max-age", map[string]int{"seconds": seconds}, nil)
}

func (b *RemoteBridge) InvalidateCache(ctx context.Context) error {
	return b.post(ctx, "cache/invalidate", nil, nil)
}

func (b *RemoteBridge) DeviceID(ctx context.Context) (string, error) {
	var resp struct {
		DeviceID string `json:"deviceId"`
	}
	if err := b.post(ctx, "device-id", nil, &resp); err != nil {
		return "", err
	}
	if resp.DeviceID == "" {
		return "", apperrors.NewOperationFailedError("Couldn't get device ID", nil)
	}
	return resp.DeviceID, nil
}

func (b *RemoteBridge) FetchBuildings(ctx context.Context) ([]types.Building, error) {
	var buildings []types.Building
	if err := b.post(ctx, "cartography/buildings", nil, &buildings); err != nil {
		return nil, err
	}
	return buildings, nil
}

func (b *RemoteBridge) FetchBuildingInfo(ctx context.Context, building types.Building) (*types.BuildingInfo, error) {
	var info types.BuildingInfo
	if err := b.post(ctx, "cartography/building-info", building, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (b *RemoteBridge) FetchFloorsFromBuilding(ctx context.Context, building types.Building) ([]types.Floor, error) {
	var floors []types.Floor
	if err := b.post(ctx, "cartography/floors", building, &floors); err != nil {
		return nil, err
	}
	return floors, nil
}

func (b *RemoteBridge) FetchIndoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error) {
	var pois []types.Poi
	if err := b.post(ctx, "cartography/indoor-pois", building, &pois); err != nil {
		return nil, err
	}
	return pois, nil
}

func (b *RemoteBridge) FetchOutdoorPOIsFromBuilding(ctx context.Context, building types.Building) ([]types.Poi, error) {
	var pois []types.Poi
	if err := b.post(ctx, "cartography/outdoor-pois", building, &pois); err != nil {
		return nil, err
	}
	return pois, nil
}

func (b *RemoteBridge) FetchGeofencesFromBuilding(ctx context.Context, building types.Building) ([]types.Geofence, error) {
	var geofences []types.Geofence
	if err := b.post(ctx, "cartography/geofences", building, &geofences); err != nil {
		return nil, err
	}
	return geofences, nil
}

func (b *RemoteBridge) FetchPoiCategories(ctx context.Context) ([]types.PoiCategory, error) {
	var categories []types.PoiCategory
	if err := b.post(ctx, "cartography/poi-categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (b *RemoteBridge) FetchPoiCategoryIconNormal(ctx context.Context, category types.PoiCategory) (*types.PoiIcon, error) {
	var icon types.PoiIcon
	if err := b.post(ctx, "cartography/poi-category-icon", category, &icon); err != nil {
		return nil, err
	}
	return &icon, nil
}

func (b *RemoteBridge) FetchPoiCategoryIconSelected(ctx context.Context, category types.PoiCategory) (*types.PoiIcon, error) {
	var icon types.PoiIcon
	if err := b.post(ctx, "cartography/poi-category-icon-selected", category, &icon); err != nil {
		return nil, err
	}
	return &icon, nil
}

func (b *RemoteBridge) FetchTilesFromBuilding(ctx context.Context, building types.Building) (*types.TileBundle, error) {
	var bundle types.TileBundle
	if err := b.post(ctx, "cartography/tiles", building, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (b *RemoteBridge) FetchMapFromFloor(ctx context.Context, floor types.Floor) (string, error) {
	var resp struct {
		Map string `json:"map"`
	}
	if err := b.post(ctx, "cartography/floor-map", floor, &resp); err != nil {
		return "", err
	}
	return resp.Map, nil
}

func (b *RemoteBridge) StartPositioning(ctx context.Context, req types.LocationRequest) error {
	return b.post(ctx, "positioning/start", req, nil)
}

func (b *RemoteBridge) StopPositioning(ctx context.Context) error {
	return b.post(ctx, "positioning/stop", nil, nil)
}

func (b *RemoteBridge) RequestDirections(ctx context.Context, building types.Building, from, to types.Point, options types.DirectionsOptions) (*types.Route, error) {
	req := struct {
		Building types.Building          `json:"building"`
		From     types.Point             `json:"from"`
		To       types.Point             `json:"to"`
		Options  types.DirectionsOptions `json:"options"`
	}{building, from, to, options}

	var route types.Route
	if err := b.post(ctx, "directions", req, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (b *RemoteBridge) RequestNavigationUpdates(ctx context.Context, req types.NavigationRequest) error {
	return b.post(ctx, "navigation/start", req, nil)
}

func (b *RemoteBridge) RemoveNavigationUpdates(ctx context.Context) error {
	return b.post(ctx, "navigation/stop", nil, nil)
}

func (b *RemoteBridge) UpdateNavigationWithLocation(ctx context.Context, location types.Location) error {
	return b.post(ctx, "navigation/location", location, nil)
}

func (b *RemoteBridge) UpdateNavigationState(ctx context.Context, state map[string]any) error {
	return b.post(ctx, "navigation/external-state", state, nil)
}

func (b *RemoteBridge) RequestRealTimeUpdates(ctx context.Context, req types.RealTimeRequest) error {
	return b.post(ctx, "realtime/start", req, nil)
}

func (b *RemoteBridge) RemoveRealTimeUpdates(ctx context.Context) error {
	return b.post(ctx, "realtime/stop", nil, nil)
}

func (b *RemoteBridge) CheckIfPointInsideGeofence(ctx context.Context, req types.GeofenceCheckRequest) (*types.GeofenceCheckResponse, error) {
	var resp types.GeofenceCheckResponse
	if err := b.post(ctx, "geofences/check-point", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *RemoteBridge) OnEnterGeofences(ctx context.Context) error {
	return b.post(ctx, "geofences/arm-enter", nil, nil)
}

func (b *RemoteBridge) OnExitGeofences(ctx context.Context) error {
	return b.post(ctx, "geofences/arm-exit", nil, nil)
}

func (b *RemoteBridge) ConfigureUserHelper(ctx context.Context, opts types.UserHelperOptions) error {
	return b.post(ctx, "user-helper/configure", opts, nil)
}

func (b *RemoteBridge) ValidateMapViewProjectSettings(ctx context.Context) error {
	return b.post(ctx, "viewer/validate-project-settings", nil, nil)
}

func (b *RemoteBridge) SpeakAloudText(ctx context.Context, msg types.TextToSpeechMessage) error {
	return b.post(ctx, "tts/speak", msg, nil)
}

var _ Native = (*RemoteBridge)(nil)
