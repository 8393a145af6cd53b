package sdk

import (
	"context"
	"strconv"

	"github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/internal/session"
	"github.com/wayfarerhq/mapbridge/internal/viewer"
	"github.com/wayfarerhq/mapbridge/types"
)

// MapControl is the programmatic handle over the embedded viewer. All
// commands require the viewer to have reported readiness; they fail with a
// viewer transport error otherwise.
type MapControl struct {
	sdk *SDK
}

// MapControl returns the viewer handle. The same handle is returned on every
// call.
func (s *SDK) MapControl() *MapControl {
	return &MapControl{sdk: s}
}

// SelectPoi highlights a POI on the map.
func (m *MapControl) SelectPoi(id int) error {
	return m.sdk.controller.Command(viewer.SelectPoiMessage(id))
}

// DeselectPoi clears the POI selection.
func (m *MapControl) DeselectPoi() error {
	return m.sdk.controller.Command(viewer.DeselectPoiMessage())
}

// SelectCar highlights the saved car position marker on the map.
func (m *MapControl) SelectCar() error {
	return m.sdk.controller.Command(viewer.SelectCarMessage())
}

// SelectPoiCategory filters the map to one category. Rejected while a
// guidance session is active.
func (m *MapControl) SelectPoiCategory(id int) error {
	return m.sdk.controller.SelectPoiCategory(id)
}

// SelectFloor changes the displayed floor. Rejected while a guidance session
// is active.
func (m *MapControl) SelectFloor(id string) error {
	return m.sdk.controller.SelectFloor(id)
}

// FollowUser makes the camera follow the user position.
func (m *MapControl) FollowUser() error {
	return m.sdk.controller.Command(viewer.FollowUserMessage(true))
}

// UnfollowUser releases the camera from the user position.
func (m *MapControl) UnfollowUser() error {
	return m.sdk.controller.Command(viewer.FollowUserMessage(false))
}

// SetDirectionsOptions applies options to future viewer-originated
// directions requests.
func (m *MapControl) SetDirectionsOptions(opts types.DirectionsOptions) error {
	return m.sdk.controller.Command(viewer.DirectionsOptionsMessage(opts))
}

// Search narrows the viewer's search results to entries matching text. An
// empty text clears the filter.
func (m *MapControl) Search(text string) error {
	return m.sdk.controller.Command(viewer.SearchFilterMessage(text))
}

// SetFavoritePois replaces the favorites list shown by the viewer.
func (m *MapControl) SetFavoritePois(ids []int) error {
	return m.sdk.controller.Command(viewer.FavoritePoisMessage(ids))
}

// SetLanguage switches the viewer UI language.
func (m *MapControl) SetLanguage(lang string) error {
	return m.sdk.controller.Command(viewer.LanguageMessage(lang))
}

// NavigateToPoi starts guidance from the user's position to a POI.
func (m *MapControl) NavigateToPoi(ctx context.Context, poiID int, opts types.DirectionsOptions) error {
	state := m.sdk.store.State()
	return m.sdk.controller.Navigate(ctx, types.DirectionsRequest{
		BuildingIdentifier:    state.BuildingIdentifier,
		OriginIdentifier:      session.CurrentLocationIdentifier,
		DestinationIdentifier: strconv.Itoa(poiID),
		Options:               opts,
	}, types.NavigationRequest{}, poiID)
}

// NavigateToCar asks the viewer to start guidance to the saved car position.
// The car marker is tracked viewer-side, so the route is computed there and
// progress arrives through the viewer navigation events.
func (m *MapControl) NavigateToCar(mode types.AccessibilityMode) error {
	return m.sdk.controller.Command(viewer.NavigateToCarMessage(mode))
}

// NavigateToPoint starts guidance from the user's position to an arbitrary
// point.
func (m *MapControl) NavigateToPoint(ctx context.Context, to types.Point, opts types.DirectionsOptions) error {
	return m.sdk.controller.Navigate(ctx, types.DirectionsRequest{
		BuildingIdentifier: to.BuildingIdentifier,
		OriginIdentifier:   session.CurrentLocationIdentifier,
		To:                 &to,
		Options:            opts,
	}, types.NavigationRequest{}, 0)
}

// CancelNavigation stops guidance and clears the viewer display.
func (m *MapControl) CancelNavigation(ctx context.Context) error {
	return m.sdk.controller.CancelNavigation(ctx)
}

// OnPoiSelected registers the handler for viewer POI selections.
func (m *MapControl) OnPoiSelected(fn func(viewer.PoiSelection)) {
	m.sdk.updateHooks(func(h *viewer.Hooks) { h.OnPoiSelected = fn })
}

// OnPoiDeselected registers the handler for cleared selections.
func (m *MapControl) OnPoiDeselected(fn func()) {
	m.sdk.updateHooks(func(h *viewer.Hooks) { h.OnPoiDeselected = fn })
}

// OnFloorSelected registers the handler for viewer floor changes.
func (m *MapControl) OnFloorSelected(fn func(string)) {
	m.sdk.updateHooks(func(h *viewer.Hooks) { h.OnFloorSelected = fn })
}

// OnBuildingSelected registers the handler for building changes.
func (m *MapControl) OnBuildingSelected(fn func(string)) {
	m.sdk.updateHooks(func(h *viewer.Hooks) { h.OnBuildingSelected = fn })
}

// OnFavoritesUpdated registers the handler for favorites edits made in the
// viewer.
func (m *MapControl) OnFavoritesUpdated(fn func([]int)) {
	m.sdk.updateHooks(func(h *viewer.Hooks) { h.OnFavoritesUpdated = fn })
}

// OnMapReady registers the handler fired when the viewer finishes loading.
func (m *MapControl) OnMapReady(fn func()) {
	m.sdk.updateHooks(func(h *viewer.Hooks) { h.OnMapReady = fn })
}

// OnLoadError registers the handler for viewer connection failures,
// classified as network outages or server-side errors.
func (m *MapControl) OnLoadError(fn func(viewer.LoadErrorKind, *errors.AppError)) {
	m.sdk.updateHooks(func(h *viewer.Hooks) { h.OnLoadError = fn })
}

// SetOnDirectionsRequestInterceptor installs a rewriter applied to every
// directions request before it reaches the engine. Pass nil to remove.
func (m *MapControl) SetOnDirectionsRequestInterceptor(fn func(*types.DirectionsRequest)) {
	m.sdk.controller.SetDirectionsInterceptor(fn)
}
