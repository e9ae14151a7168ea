package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duskborne/internal/game/physics"
)

func testLogger() *zap.Logger { return zap.NewNop() }

func villageArea() *Area {
	return &Area{
		ID:        "village",
		Name:      "Haven Village",
		Aliases:   []string{"haven_village"},
		Width:     3000,
		Height:    1000,
		Platforms: []physics.Platform{{Rect: physics.Rect{X: 0, Y: 650, W: 3000, H: 350}}},
		Portals:   []Portal{{Destination: "Darkwood_Forest", Rect: physics.Rect{X: 1800, Y: 620, W: 30, H: 30}}},
	}
}

func TestNewManager(t *testing.T) {
	m, err := NewManager([]*Area{validTestArea(), villageArea()}, "forest", testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, m.AreaCount())
	assert.Equal(t, "forest", m.Default().ID)
	all := m.AllAreas()
	assert.Equal(t, "forest", all[0].ID)
	assert.Equal(t, "village", all[1].ID)
}

func TestNewManager_DuplicateArea(t *testing.T) {
	_, err := NewManager([]*Area{validTestArea(), validTestArea()}, "forest", testLogger())
	assert.Error(t, err)
}

func TestNewManager_AliasCollision(t *testing.T) {
	v := villageArea()
	v.Aliases = []string{"DARKWOOD_FOREST"}
	_, err := NewManager([]*Area{validTestArea(), v}, "forest", testLogger())
	assert.Error(t, err)
}

func TestNewManager_MissingDefault(t *testing.T) {
	_, err := NewManager([]*Area{villageArea()}, "forest", testLogger())
	assert.Error(t, err)
}

func TestManager_GetMatchesIDAndAliasIgnoringCase(t *testing.T) {
	m, err := NewManager([]*Area{validTestArea(), villageArea()}, "forest", testLogger())
	require.NoError(t, err)
	for _, name := range []string{"village", "VILLAGE", "Haven_Village", " haven_village "} {
		a, ok := m.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, "village", a.ID)
	}
}

func TestManager_ResolveUnknownFallsBackWithWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m, err := NewManager([]*Area{validTestArea(), villageArea()}, "forest", zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, "forest", m.Resolve("atlantis").ID)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "atlantis", logs.All()[0].ContextMap()["area"])

	assert.Equal(t, "village", m.Resolve("village").ID)
	assert.Equal(t, 1, logs.Len())
}

func TestManager_ValidatePortals(t *testing.T) {
	m, err := NewManager([]*Area{validTestArea(), villageArea()}, "forest", testLogger())
	require.NoError(t, err)
	assert.NoError(t, m.ValidatePortals())

	v := villageArea()
	v.Portals[0].Destination = "sky_temple"
	m, err = NewManager([]*Area{validTestArea(), v}, "forest", testLogger())
	require.NoError(t, err)
	err = m.ValidatePortals()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sky_temple")
}

func TestPropertyResolveAlwaysReturnsArea(t *testing.T) {
	m, err := NewManager([]*Area{validTestArea(), villageArea()}, "forest", testLogger())
	require.NoError(t, err)
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.String().Draw(t, "name")
		if m.Resolve(name) == nil {
			t.Fatalf("Resolve(%q) returned nil", name)
		}
	})
}
