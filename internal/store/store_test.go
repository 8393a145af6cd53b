package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/mapbridge/types"
)

func TestDispatchUpdatesState(t *testing.T) {
	s := New()

	s.Dispatch(SetSDKInitialized{Initialized: true})
	s.Dispatch(SetBuildingIdentifier{Identifier: "b42"})

	state := s.State()
	assert.True(t, state.SDKInitialized)
	assert.Equal(t, "b42", state.BuildingIdentifier)
}

func TestSubscriberNotifiedOnlyOnSelectedChange(t *testing.T) {
	s := New()

	var locationNotifies int
	s.Subscribe(func(st State) any { return st.Location }, func(State) {
		locationNotifies++
	})

	s.Dispatch(SetBuildingIdentifier{Identifier: "b1"})
	assert.Equal(t, 0, locationNotifies, "unrelated change must not notify")

	loc := &types.Location{Accuracy: 5}
	s.Dispatch(SetLocation{Location: loc})
	assert.Equal(t, 1, locationNotifies)

	// Same value again: DeepEqual, so no notification.
	s.Dispatch(SetLocation{Location: &types.Location{Accuracy: 5}})
	assert.Equal(t, 1, locationNotifies)

	s.Dispatch(SetLocation{Location: &types.Location{Accuracy: 7}})
	assert.Equal(t, 2, locationNotifies)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := New()

	var notifies int
	unsub := s.Subscribe(func(st State) any { return st.SDKInitialized }, func(State) {
		notifies++
	})

	s.Dispatch(SetSDKInitialized{Initialized: true})
	require.Equal(t, 1, notifies)

	unsub()
	s.Dispatch(SetSDKInitialized{Initialized: false})
	assert.Equal(t, 1, notifies)
}

func TestSetLocationClearsError(t *testing.T) {
	s := New()

	s.Dispatch(SetError{Error: &types.LocationError{Code: types.ErrUnknown}})
	require.NotNil(t, s.State().Error)

	s.Dispatch(SetLocation{Location: &types.Location{}})
	assert.Nil(t, s.State().Error)
}

func TestSetCurrentBuildingTracksIdentifier(t *testing.T) {
	s := New()

	s.Dispatch(SetCurrentBuilding{Building: &types.Building{BuildingIdentifier: "7"}})
	state := s.State()
	require.NotNil(t, state.CurrentBuilding)
	assert.Equal(t, "7", state.BuildingIdentifier)
}

func TestResetLocation(t *testing.T) {
	s := New()
	s.Dispatch(SetLocation{Location: &types.Location{}})
	s.Dispatch(ResetLocation{})

	state := s.State()
	assert.Nil(t, state.Location)
	require.NotNil(t, state.LocationStatus)
	assert.Equal(t, types.StatusStopped, state.LocationStatus.StatusName)
}

func TestListenerReceivesPostDispatchSnapshot(t *testing.T) {
	s := New()

	var seen State
	s.Subscribe(func(st State) any { return st.Navigation }, func(st State) {
		seen = st
	})

	s.Dispatch(SetNavigation{Navigation: types.Navigation{Status: types.NavigationStart}})
	assert.Equal(t, types.NavigationStart, seen.Navigation.Status)
}
