package delegated

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/mapbridge/types"
)

func TestLastWriteWinsAcrossVariants(t *testing.T) {
	m := NewManager()

	m.SetLocation(types.Location{Position: types.Position{BuildingIdentifier: "b1"}})
	m.SetStatus(types.LocationStatus{StatusName: types.StatusStopped})
	m.SetError(types.LocationError{Code: types.ErrLocationDisabled})

	state, ok := m.Take()
	require.True(t, ok)
	assert.Equal(t, KindError, state.Kind)
	require.NotNil(t, state.Error)
	assert.Equal(t, types.ErrLocationDisabled, state.Error.Code)
	assert.Nil(t, state.Location)
	assert.Nil(t, state.Status)
}

func TestTakeClearsSlot(t *testing.T) {
	m := NewManager()
	m.SetStatus(types.LocationStatus{StatusName: types.StatusStarting})

	_, ok := m.Take()
	require.True(t, ok)

	_, ok = m.Take()
	assert.False(t, ok)
}

func TestPeekDoesNotClear(t *testing.T) {
	m := NewManager()
	m.SetLocation(types.Location{Accuracy: 3})

	state, ok := m.Peek()
	require.True(t, ok)
	assert.Equal(t, KindLocation, state.Kind)

	state, ok = m.Peek()
	require.True(t, ok)
	require.NotNil(t, state.Location)
	assert.Equal(t, float64(3), state.Location.Accuracy)
}

func TestEmptyManager(t *testing.T) {
	m := NewManager()

	_, ok := m.Take()
	assert.False(t, ok)
	_, ok = m.Peek()
	assert.False(t, ok)

	m.Clear()
	_, ok = m.Peek()
	assert.False(t, ok)
}
