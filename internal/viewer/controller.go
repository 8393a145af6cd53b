package viewer

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/wayfarerhq/mapbridge/config"
	"github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/internal/delegated"
	"github.com/wayfarerhq/mapbridge/internal/session"
	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/types"
)

// Sender pushes a message to the connected viewer.
type Sender interface {
	Send(msg Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(msg Message) error

func (f SenderFunc) Send(msg Message) error { return f(msg) }

// PoiSelection is the payload of a POI selection reported by the viewer.
type PoiSelection struct {
	Identifier         int    `json:"identifier"`
	BuildingIdentifier string `json:"buildingIdentifier,omitempty"`
}

// Hooks are the outward-facing notifications the controller raises for
// viewer-originated interactions. All fields are optional.
type Hooks struct {
	OnPoiSelected      func(PoiSelection)
	OnPoiDeselected    func()
	OnFloorSelected    func(floorIdentifier string)
	OnBuildingSelected func(buildingIdentifier string)
	OnFavoritesUpdated func(ids []int)
	OnMapReady         func()
	OnLoadError        func(kind LoadErrorKind, err *errors.AppError)
}

// DirectionsInterceptor may rewrite a viewer-originated directions request
// before it reaches the engine.
type DirectionsInterceptor func(req *types.DirectionsRequest)

// Controller mediates between the SDK core and the embedded viewer. Nothing
// is sent before the viewer reports readiness; positioning state produced in
// the meantime is parked in the delegated slot and flushed on readiness.
type Controller struct {
	native   bridge.Native
	store    *store.Store
	sessions *session.Manager
	parked   *delegated.Manager
	cfg      config.ViewerConfig
	log      *zap.SugaredLogger
	metrics  *viewerMetrics

	mu          sync.Mutex
	sender      Sender
	mapLoaded   bool
	hooks       Hooks
	interceptor DirectionsInterceptor
}

// NewController wires a controller. The sender is attached later, when a
// viewer actually connects.
func NewController(native bridge.Native, st *store.Store, sessions *session.Manager, parked *delegated.Manager, cfg config.ViewerConfig) *Controller {
	return &Controller{
		native:   native,
		store:    st,
		sessions: sessions,
		parked:   parked,
		cfg:      cfg,
		log:      logger.GetLogger(),
		metrics:  getViewerMetrics(),
	}
}

// AttachSender binds the transport of the connected viewer. A nil sender
// detaches it; readiness is reset so a reconnecting viewer replays the
// handshake.
func (c *Controller) AttachSender(s Sender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sender = s
	c.mapLoaded = false
}

// SetHooks replaces the interaction hooks.
func (c *Controller) SetHooks(h Hooks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = h
}

// SetDirectionsInterceptor installs the request rewriter. Pass nil to remove.
func (c *Controller) SetDirectionsInterceptor(i DirectionsInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptor = i
}

// Ready reports whether the viewer has loaded the map.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapLoaded
}

// send delivers msg if the viewer is ready; otherwise the message is dropped.
func (c *Controller) send(msg Message) {
	c.mu.Lock()
	sender, loaded := c.sender, c.mapLoaded
	c.mu.Unlock()

	if sender == nil || !loaded {
		return
	}
	if err := sender.Send(msg); err != nil {
		c.metrics.sendFailures.WithLabelValues(string(msg.Type)).Inc()
		c.log.Warnw("Failed to send viewer message", "type", string(msg.Type), "error", err)
		return
	}
	c.metrics.messagesSent.WithLabelValues(string(msg.Type)).Inc()
}

// Command delivers msg only when the viewer is ready, returning an error
// otherwise so callers can tell the command was not applied.
func (c *Controller) Command(msg Message) error {
	c.mu.Lock()
	sender, loaded := c.sender, c.mapLoaded
	c.mu.Unlock()

	if sender == nil || !loaded {
		return errors.New(errors.ViewerTransportError, "viewer not ready", string(msg.Type))
	}
	if err := sender.Send(msg); err != nil {
		c.metrics.sendFailures.WithLabelValues(string(msg.Type)).Inc()
		return errors.NewViewerTransportError(string(msg.Type), err)
	}
	c.metrics.messagesSent.WithLabelValues(string(msg.Type)).Inc()
	return nil
}

// SelectFloor changes the displayed floor. Rejected while navigating, since
// the viewer pins the floor to the guidance.
func (c *Controller) SelectFloor(id string) error {
	if c.sessions.Navigating() {
		return errors.ValidationFailed("cannot select a floor while navigating", id)
	}
	return c.Command(SelectFloorMessage(id))
}

// SelectPoiCategory filters the map to one category. Rejected while
// navigating for the same reason as SelectFloor.
func (c *Controller) SelectPoiCategory(id int) error {
	if c.sessions.Navigating() {
		return errors.ValidationFailed("cannot select a POI category while navigating", "")
	}
	return c.Command(SelectPoiCategoryMessage(id))
}

// ReportLoadError classifies a viewer connection failure and raises the
// OnLoadError hook. statusCode is zero when no HTTP exchange happened.
func (c *Controller) ReportLoadError(statusCode int, cause error) {
	kind, appErr := ClassifyLoadError(statusCode, cause)
	c.log.Warnw("Viewer load error", "kind", string(kind), "error", cause)
	c.withHooks(func(h Hooks) {
		if h.OnLoadError != nil {
			h.OnLoadError(kind, appErr)
		}
	})
}

// HandleInternalCall is the viewer delegate installed on the dispatcher.
// Location, status and error updates arriving before readiness are parked;
// everything else is only meaningful to a live viewer and is dropped.
func (c *Controller) HandleInternalCall(call types.InternalCall) {
	ready := c.Ready()

	switch call.Type {
	case types.CallLocation:
		loc, ok := call.Data.(types.Location)
		if !ok {
			return
		}
		if !ready {
			c.parked.SetLocation(loc)
			c.metrics.messagesDeferred.WithLabelValues(string(MsgLocationUpdate)).Inc()
			return
		}
		c.send(LocationMessage(loc))
	case types.CallLocationStatus:
		name, ok := call.Data.(types.StatusName)
		if !ok {
			return
		}
		if !ready {
			c.parked.SetStatus(types.LocationStatus{StatusName: name})
			c.metrics.messagesDeferred.WithLabelValues(string(MsgLocationStatus)).Inc()
			return
		}
		c.send(StatusMessage(name))
	case types.CallLocationStopped:
		if !ready {
			c.parked.SetStatus(types.LocationStatus{StatusName: types.StatusStopped})
			c.metrics.messagesDeferred.WithLabelValues(string(MsgLocationStatus)).Inc()
			return
		}
		c.send(StatusMessage(types.StatusStopped))
	case types.CallLocationError:
		err, ok := call.Data.(types.LocationError)
		if !ok {
			return
		}
		if !ready {
			c.parked.SetError(err)
			c.metrics.messagesDeferred.WithLabelValues(string(MsgLocationStatus)).Inc()
			return
		}
		c.send(ErrorStatusMessage(err))
	case types.CallNavigationStart:
		if route, ok := call.Data.(*types.Route); ok {
			c.send(NavigationStartMessage(route))
		}
	case types.CallNavigationProgress:
		if p, ok := call.Data.(types.NavigationProgress); ok {
			c.send(NavigationUpdateMessage(types.NavigationTypeProgress, p))
		}
	case types.CallNavigationDestinationReached:
		c.send(NavigationUpdateMessage(types.NavigationTypeDestinationReached, types.NavigationProgress{}))
	case types.CallNavigationOutOfRoute:
		c.send(NavigationUpdateMessage(types.NavigationTypeOutOfRoute, types.NavigationProgress{}))
	case types.CallNavigationCancellation, types.CallNavigationError:
		c.send(NavigationCancelMessage())
	case types.CallGeofencesEnter, types.CallGeofencesExit:
		// The viewer has no geofence surface; these only reach user callbacks.
	}
}

// HandleInbound parses, validates and acts on one raw viewer message.
func (c *Controller) HandleInbound(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return errors.ValidationFailed("malformed viewer message", err.Error())
	}
	if msg.Type == "" {
		return errors.ValidationFailed("viewer message without type", string(data))
	}

	switch msg.Type {
	case MsgMapIsReady:
		c.handleMapReady(ctx)
		return nil
	case MsgDirectionsRequested:
		return c.handleDirectionsRequested(ctx, msg.Payload)
	case MsgNavigationRequested:
		return c.handleNavigationRequested(ctx, msg.Payload)
	case MsgNavigationStopped:
		return c.sessions.StopNavigation(ctx)
	case MsgPoiSelected:
		return c.handlePoiSelected(msg.Payload)
	case MsgPoiDeselected:
		c.withHooks(func(h Hooks) {
			if h.OnPoiDeselected != nil {
				h.OnPoiDeselected()
			}
		})
		return nil
	case MsgFloorSelected:
		return c.handleFloorSelected(msg.Payload)
	case MsgBuildingSelected:
		return c.handleBuildingSelected(ctx, msg.Payload)
	case MsgFavoritesUpdated:
		return c.handleFavoritesUpdated(msg.Payload)
	case MsgSpeakAloud:
		return c.handleSpeakAloud(ctx, msg.Payload)
	case MsgViewerNavStarted, MsgViewerNavUpdated, MsgViewerNavStopped:
		return c.handleViewerNavigation(ctx, msg)
	default:
		c.log.Debugw("Ignoring unknown viewer message", "type", string(msg.Type))
		return nil
	}
}

func (c *Controller) withHooks(fn func(Hooks)) {
	c.mu.Lock()
	hooks := c.hooks
	c.mu.Unlock()
	fn(hooks)
}

// handleMapReady marks the viewer usable, replays the handshake and flushes
// whatever positioning state accumulated while it was loading.
func (c *Controller) handleMapReady(ctx context.Context) {
	c.mu.Lock()
	c.mapLoaded = true
	c.mu.Unlock()

	cfg := InitialConfiguration{
		Language:                c.cfg.Language,
		SpeechSynthesisDisabled: true,
	}
	if id, err := c.native.DeviceID(ctx); err == nil {
		cfg.DeviceID = id
	} else {
		c.log.Warnw("Could not read device identifier for viewer handshake", "error", err)
	}
	c.send(InitialConfigurationMessage(cfg))

	if state, ok := c.parked.Take(); ok {
		switch state.Kind {
		case delegated.KindLocation:
			c.send(LocationMessage(*state.Location))
		case delegated.KindStatus:
			adapted := state.Status.StatusName.AdaptForViewer()
			if adapted.ViewerVisible() {
				c.send(StatusMessage(adapted))
			}
		case delegated.KindError:
			c.send(ErrorStatusMessage(*state.Error))
		}
	}

	c.withHooks(func(h Hooks) {
		if h.OnMapReady != nil {
			h.OnMapReady()
		}
	})
}

func (c *Controller) interceptDirections(req *types.DirectionsRequest) {
	c.mu.Lock()
	interceptor := c.interceptor
	c.mu.Unlock()
	if interceptor != nil {
		interceptor(req)
	}
}

func (c *Controller) handleDirectionsRequested(ctx context.Context, payload json.RawMessage) error {
	var req types.DirectionsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return errors.ValidationFailed("malformed directions request", err.Error())
	}
	if req.From == nil && req.OriginIdentifier == "" {
		return errors.ValidationFailed("directions request without origin", "")
	}
	if req.To == nil && req.DestinationIdentifier == "" {
		return errors.ValidationFailed("directions request without destination", "")
	}
	c.interceptDirections(&req)

	prev := c.store.State().Directions
	route, err := c.sessions.CalculateRoute(ctx, req)
	if err != nil {
		// Engine failures are committed as an error-shaped route and reported
		// to the viewer the same way. Pre-flight rejections commit nothing and
		// must not produce a viewer message either.
		if committed := c.store.State().Directions; committed != nil && committed != prev {
			c.send(DirectionsMessage(committed))
		}
		return err
	}
	c.send(DirectionsMessage(route))
	return nil
}

type navigationRequestPayload struct {
	types.DirectionsRequest
	Navigation       types.NavigationRequest `json:"navigationRequest"`
	DestinationPoiID int                     `json:"destinationPoiId,omitempty"`
}

func (c *Controller) handleNavigationRequested(ctx context.Context, payload json.RawMessage) error {
	var req navigationRequestPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return errors.ValidationFailed("malformed navigation request", err.Error())
	}
	if req.To == nil && req.DestinationIdentifier == "" {
		return errors.ValidationFailed("navigation request without destination", "")
	}
	return c.Navigate(ctx, req.DirectionsRequest, req.Navigation, req.DestinationPoiID)
}

// Navigate starts a guidance session and mirrors it to the viewer: the route
// first, then the session start. Used for both viewer-originated and
// programmatic navigation.
func (c *Controller) Navigate(ctx context.Context, dirs types.DirectionsRequest, nav types.NavigationRequest, destinationPoiID int) error {
	c.interceptDirections(&dirs)

	route, err := c.sessions.StartNavigation(ctx, session.StartNavigationRequest{
		Directions:       dirs,
		Navigation:       nav,
		DestinationPoiID: destinationPoiID,
	})
	if err != nil {
		c.send(NavigationCancelMessage())
		return err
	}
	c.send(DirectionsMessage(route))
	c.send(NavigationStartMessage(route))
	return nil
}

// CancelNavigation stops the active session and clears the viewer's guidance
// display. Safe to call when nothing is running.
func (c *Controller) CancelNavigation(ctx context.Context) error {
	if err := c.sessions.StopNavigation(ctx); err != nil {
		return err
	}
	c.send(NavigationCancelMessage())
	return nil
}

func (c *Controller) handlePoiSelected(payload json.RawMessage) error {
	var sel PoiSelection
	if err := json.Unmarshal(payload, &sel); err != nil {
		return errors.ValidationFailed("malformed POI selection", err.Error())
	}
	if sel.Identifier == 0 {
		return errors.ValidationFailed("POI selection without identifier", "")
	}
	c.withHooks(func(h Hooks) {
		if h.OnPoiSelected != nil {
			h.OnPoiSelected(sel)
		}
	})
	return nil
}

func (c *Controller) handleFloorSelected(payload json.RawMessage) error {
	var p struct {
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return errors.ValidationFailed("malformed floor selection", err.Error())
	}
	if p.Identifier == "" {
		return errors.ValidationFailed("floor selection without identifier", "")
	}
	c.withHooks(func(h Hooks) {
		if h.OnFloorSelected != nil {
			h.OnFloorSelected(p.Identifier)
		}
	})
	return nil
}

// handleBuildingSelected acts only when the selection differs from the
// building the SDK is currently configured for; the viewer re-reports the
// current building on several occasions, including right after loading.
func (c *Controller) handleBuildingSelected(ctx context.Context, payload json.RawMessage) error {
	var p struct {
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return errors.ValidationFailed("malformed building selection", err.Error())
	}
	if p.Identifier == "" {
		return errors.ValidationFailed("building selection without identifier", "")
	}

	state := c.store.State()
	if state.BuildingIdentifier == p.Identifier {
		return nil
	}
	c.store.Dispatch(store.SetBuildingIdentifier{Identifier: p.Identifier})

	buildings := state.Buildings
	if len(buildings) == 0 {
		fetched, err := c.native.FetchBuildings(ctx)
		if err != nil {
			return err
		}
		c.store.Dispatch(store.SetBuildings{Buildings: fetched})
		buildings = fetched
	}
	for i := range buildings {
		if buildings[i].BuildingIdentifier == p.Identifier {
			b := buildings[i]
			c.store.Dispatch(store.SetCurrentBuilding{Building: &b})
			break
		}
	}

	c.withHooks(func(h Hooks) {
		if h.OnBuildingSelected != nil {
			h.OnBuildingSelected(p.Identifier)
		}
	})
	return nil
}

func (c *Controller) handleFavoritesUpdated(payload json.RawMessage) error {
	var p struct {
		Identifiers []int `json:"identifiers"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return errors.ValidationFailed("malformed favorites update", err.Error())
	}
	c.withHooks(func(h Hooks) {
		if h.OnFavoritesUpdated != nil {
			h.OnFavoritesUpdated(p.Identifiers)
		}
	})
	return nil
}

// handleSpeakAloud voices an indication on the viewer's behalf; its own
// speech synthesis is disabled in the handshake.
func (c *Controller) handleSpeakAloud(ctx context.Context, payload json.RawMessage) error {
	var msg types.TextToSpeechMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return errors.ValidationFailed("malformed speech request", err.Error())
	}
	if msg.Text == "" {
		return errors.ValidationFailed("speech request without text", "")
	}
	return c.native.SpeakAloudText(ctx, msg)
}

// handleViewerNavigation forwards guidance computed inside the viewer to the
// engine so geofencing and analytics stay consistent.
func (c *Controller) handleViewerNavigation(ctx context.Context, msg Message) error {
	state := map[string]any{"messageType": string(msg.Type)}
	if len(msg.Payload) > 0 {
		var payload map[string]any
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errors.ValidationFailed("malformed viewer navigation state", err.Error())
		}
		for k, v := range payload {
			state[k] = v
		}
	}
	return c.sessions.UpdateExternalState(ctx, state)
}
