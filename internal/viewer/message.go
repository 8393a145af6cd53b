// Package viewer implements the JSON message protocol spoken with the
// embedded map viewer, the controller that gates and orders that traffic,
// and the WebSocket transport carrying it.
package viewer

import (
	"encoding/json"

	"github.com/wayfarerhq/mapbridge/types"
)

// MessageType identifies a protocol message in either direction.
type MessageType string

// Outbound message types.
const (
	MsgFollowUser           MessageType = "camera.follow_user"
	MsgSelectPoi            MessageType = "cartography.select_poi"
	MsgSelectCar            MessageType = "cartography.select_car"
	MsgDeselectPoi          MessageType = "cartography.deselect_poi"
	MsgSelectPoiCategory    MessageType = "cartography.select_poi_category"
	MsgSelectFloor          MessageType = "cartography.select_floor"
	MsgSetDirectionsOptions MessageType = "directions.set_options"
	MsgLocationUpdate       MessageType = "location.update"
	MsgLocationStatus       MessageType = "location.update_status"
	MsgDirectionsUpdate     MessageType = "directions.update"
	MsgNavigationStart      MessageType = "navigation.start"
	MsgNavigationUpdate     MessageType = "navigation.update"
	MsgNavigationCancel     MessageType = "navigation.cancel"
	MsgSetSearchFilter      MessageType = "ui.set_search_filter"
	MsgSetFavoritePois      MessageType = "ui.set_favorite_pois"
	MsgSetLanguage          MessageType = "ui.set_language"
	MsgInitialConfiguration MessageType = "ui.initial_configuration"
)

// Inbound message types.
const (
	MsgMapIsReady          MessageType = "app.map_is_ready"
	MsgDirectionsRequested MessageType = "directions.requested"
	MsgNavigationRequested MessageType = "navigation.requested"
	MsgNavigationStopped   MessageType = "navigation.stopped"
	MsgPoiSelected         MessageType = "cartography.poi_selected"
	MsgPoiDeselected       MessageType = "cartography.poi_deselected"
	MsgFloorSelected       MessageType = "cartography.floor_selected"
	MsgBuildingSelected    MessageType = "cartography.building_selected"
	MsgFavoritesUpdated    MessageType = "ui.favorite_pois_updated"
	MsgSpeakAloud          MessageType = "ui.speak_aloud_text"
	MsgViewerNavStarted    MessageType = "viewer.navigation.started"
	MsgViewerNavUpdated    MessageType = "viewer.navigation.updated"
	MsgViewerNavStopped    MessageType = "viewer.navigation.stopped"
)

// Message is the wire envelope in both directions.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newMessage(t MessageType, payload any) Message {
	if payload == nil {
		return Message{Type: t}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		// Payloads are our own structs; a marshal failure is a programming
		// error surfaced loudly during tests.
		panic("viewer: unmarshalable payload: " + err.Error())
	}
	return Message{Type: t, Payload: raw}
}

// locationPayload is the flattened shape the viewer renders directly.
type locationPayload struct {
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	X                  float64 `json:"x"`
	Y                  float64 `json:"y"`
	BuildingIdentifier string  `json:"buildingIdentifier"`
	FloorIdentifier    string  `json:"floorIdentifier"`
	Bearing            float64 `json:"bearing,omitempty"`
	HasBearing         bool    `json:"hasBearing"`
	Accuracy           float64 `json:"accuracy"`
	IsIndoor           bool    `json:"isIndoor"`
	IsOutdoor          bool    `json:"isOutdoor"`
}

// LocationMessage flattens a location into the viewer's shape.
func LocationMessage(loc types.Location) Message {
	p := locationPayload{
		Latitude:           loc.Position.Coordinate.Latitude,
		Longitude:          loc.Position.Coordinate.Longitude,
		X:                  loc.Position.CartesianCoordinate.X,
		Y:                  loc.Position.CartesianCoordinate.Y,
		BuildingIdentifier: loc.Position.BuildingIdentifier,
		FloorIdentifier:    loc.Position.FloorIdentifier,
		HasBearing:         loc.HasBearing,
		Accuracy:           loc.Accuracy,
		IsIndoor:           loc.Position.IsIndoor,
		IsOutdoor:          loc.Position.IsOutdoor,
	}
	if loc.Bearing != nil {
		p.Bearing = loc.Bearing.Degrees
	}
	return newMessage(MsgLocationUpdate, p)
}

// StatusMessage carries an already-adapted status name.
func StatusMessage(name types.StatusName) Message {
	return newMessage(MsgLocationStatus, map[string]string{"status": string(name)})
}

// ErrorStatusMessage reports a positioning error through the status channel,
// the way the viewer expects to learn about them.
func ErrorStatusMessage(err types.LocationError) Message {
	return newMessage(MsgLocationStatus, map[string]string{"status": string(err.Code)})
}

// DirectionsMessage carries a computed or error-shaped route.
func DirectionsMessage(route *types.Route) Message {
	return newMessage(MsgDirectionsUpdate, route)
}

// NavigationStartMessage announces a new guidance session with its route.
func NavigationStartMessage(route *types.Route) Message {
	return newMessage(MsgNavigationStart, route)
}

// navigationUpdatePayload wraps a progress report with its update type.
type navigationUpdatePayload struct {
	Type types.NavigationUpdateType `json:"type"`
	types.NavigationProgress
}

// NavigationUpdateMessage carries a progress report.
func NavigationUpdateMessage(t types.NavigationUpdateType, progress types.NavigationProgress) Message {
	return newMessage(MsgNavigationUpdate, navigationUpdatePayload{Type: t, NavigationProgress: progress})
}

// NavigationCancelMessage ends the viewer's guidance display.
func NavigationCancelMessage() Message {
	return newMessage(MsgNavigationCancel, nil)
}

// FollowUserMessage toggles the camera following the user position.
func FollowUserMessage(follow bool) Message {
	return newMessage(MsgFollowUser, map[string]bool{"value": follow})
}

// SelectPoiMessage selects a POI by identifier, or deselects with
// DeselectPoiMessage.
func SelectPoiMessage(id int) Message {
	return newMessage(MsgSelectPoi, map[string]int{"identifier": id})
}

// SelectCarMessage highlights the saved car position marker.
func SelectCarMessage() Message {
	return newMessage(MsgSelectCar, nil)
}

// DeselectPoiMessage clears the POI selection.
func DeselectPoiMessage() Message {
	return newMessage(MsgDeselectPoi, nil)
}

// NavigateToCarMessage asks the viewer to start guidance to the saved car
// position. The car marker lives viewer-side, so the route is computed there
// and reported back through the viewer navigation events.
func NavigateToCarMessage(mode types.AccessibilityMode) Message {
	payload := map[string]any{"navigationToCar": true}
	if mode != "" {
		payload["type"] = mode
	}
	return newMessage(MsgNavigationStart, payload)
}

// SelectPoiCategoryMessage filters the map to one POI category.
func SelectPoiCategoryMessage(id int) Message {
	return newMessage(MsgSelectPoiCategory, map[string]int{"identifier": id})
}

// SelectFloorMessage changes the displayed floor.
func SelectFloorMessage(id string) Message {
	return newMessage(MsgSelectFloor, map[string]string{"identifier": id})
}

// DirectionsOptionsMessage pushes the options applied to future viewer
// directions requests.
func DirectionsOptionsMessage(opts types.DirectionsOptions) Message {
	return newMessage(MsgSetDirectionsOptions, opts)
}

// SearchFilterMessage narrows the viewer's search box results.
func SearchFilterMessage(text string) Message {
	return newMessage(MsgSetSearchFilter, map[string]string{"text": text})
}

// FavoritePoisMessage replaces the favorites list.
func FavoritePoisMessage(ids []int) Message {
	return newMessage(MsgSetFavoritePois, map[string][]int{"identifiers": ids})
}

// LanguageMessage switches the viewer UI language.
func LanguageMessage(lang string) Message {
	return newMessage(MsgSetLanguage, map[string]string{"lang": lang})
}

// InitialConfiguration is pushed once the viewer reports readiness.
type InitialConfiguration struct {
	DeviceID string `json:"deviceId,omitempty"`
	Language string `json:"lang,omitempty"`
	// SpeechSynthesisDisabled tells the viewer not to speak indications
	// itself; speech requests are forwarded over the protocol instead.
	SpeechSynthesisDisabled bool `json:"speechSynthesisDisabled"`
}

// InitialConfigurationMessage carries the post-ready handshake.
func InitialConfigurationMessage(cfg InitialConfiguration) Message {
	return newMessage(MsgInitialConfiguration, cfg)
}
