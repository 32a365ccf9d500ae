package hierarchy_test

import (
	"testing"

	"github.com/demointeriors/tour-service/internal/hierarchy"
	"github.com/demointeriors/tour-service/internal/models"
	"github.com/demointeriors/tour-service/internal/tourtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResolvesTree(t *testing.T) {
	tree, err := hierarchy.Build("project-modern-flat", tourtest.Collections())
	require.NoError(t, err)

	require.Len(t, tree.Buildings, 1)
	building := tree.Buildings[0]
	assert.Equal(t, "building-sunrise-residency", building.ID)
	require.Len(t, building.Flats, 2)

	viewCounts := map[string]int{}
	pinCounts := map[string]int{}
	for _, flat := range building.Flats {
		for _, room := range flat.Rooms {
			viewCounts[room.ID] = len(room.Views)
			pinCounts[room.ID] = len(room.Pins)
		}
	}
	assert.Equal(t, map[string]int{
		"room-living":  2,
		"room-bedroom": 1,
		"room-kitchen": 1,
		"room-study":   0,
	}, viewCounts)

	// Pins attach to the room owning their origin view.
	assert.Equal(t, 3, pinCounts["room-living"], "both living views contribute pins")
	assert.Equal(t, 1, pinCounts["room-bedroom"])
	assert.Equal(t, 1, pinCounts["room-kitchen"])
	assert.Equal(t, 0, pinCounts["room-study"])
}

func TestBuildUnknownProject(t *testing.T) {
	_, err := hierarchy.Build("project-nope", tourtest.Collections())
	assert.ErrorIs(t, err, hierarchy.ErrProjectNotFound)
}

func TestBuildDanglingOwnerFails(t *testing.T) {
	src := tourtest.Collections()
	src.Flats = append(src.Flats, models.Flat{
		ID:         "flat-orphan",
		BuildingID: "building-missing",
		Name:       "Orphan",
	})

	_, err := hierarchy.Build("project-modern-flat", src)
	var inconsistent *hierarchy.InconsistencyError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, "flat", inconsistent.Entity)
	assert.Equal(t, "building-missing", inconsistent.OwnerID)
}

func TestBuildDanglingViewOwnerFails(t *testing.T) {
	src := tourtest.Collections()
	src.Views = append(src.Views, models.View{
		ID:     "view-orphan",
		RoomID: "room-missing",
	})

	_, err := hierarchy.Build("project-modern-flat", src)
	var inconsistent *hierarchy.InconsistencyError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, "view", inconsistent.Entity)
}

func TestBuildIsPureProjection(t *testing.T) {
	src := tourtest.Collections()
	first, err := hierarchy.Build("project-modern-flat", src)
	require.NoError(t, err)
	second, err := hierarchy.Build("project-modern-flat", src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInitialSelection(t *testing.T) {
	tree := tourtest.Tree()
	sel := tree.InitialSelection()
	assert.Equal(t, hierarchy.Selection{
		BuildingID: "building-sunrise-residency",
		FlatID:     "flat-a-101",
		RoomID:     "room-living",
		ViewID:     "view-living-day",
	}, sel)
}

func TestInitialSelectionEmptyLevels(t *testing.T) {
	src := tourtest.Collections()
	src.Buildings = nil
	src.Flats = nil
	src.Rooms = nil
	src.Views = nil
	src.Pins = nil

	tree, err := hierarchy.Build("project-modern-flat", src)
	require.NoError(t, err)
	assert.Equal(t, hierarchy.Selection{}, tree.InitialSelection())
}

func TestRoomsTraversalOrder(t *testing.T) {
	tree := tourtest.Tree()
	rooms := tree.Rooms()
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"room-living", "room-bedroom", "room-kitchen", "room-study"}, ids)
}

func TestFindHelpers(t *testing.T) {
	tree := tourtest.Tree()

	room, ok := tree.FindRoom("room-kitchen")
	require.True(t, ok)
	assert.Equal(t, "Kitchen", room.Name)

	_, ok = tree.FindRoom("room-missing")
	assert.False(t, ok)

	flat, ok := tree.FlatOf("room-study")
	require.True(t, ok)
	assert.Equal(t, "flat-a-102", flat.ID)

	view, owner, ok := tree.FindView("view-living-dusk")
	require.True(t, ok)
	assert.Equal(t, "room-living", owner.ID)
	assert.Equal(t, "asset-pano-livingroom-dusk", view.PanoramaAssetID)
}
