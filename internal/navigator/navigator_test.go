package navigator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/demointeriors/tour-service/internal/navigator"
	"github.com/demointeriors/tour-service/internal/tourtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver struct {
	assets map[string]models.Asset
	err    error
}

func (r *mapResolver) ResolveAsset(_ context.Context, assetID string) (*models.Asset, error) {
	if r.err != nil {
		return nil, r.err
	}
	asset, ok := r.assets[assetID]
	if !ok {
		return nil, nil
	}
	return &asset, nil
}

func newLoaded(t *testing.T) *navigator.Navigator {
	t.Helper()
	nav := navigator.New(&mapResolver{assets: tourtest.Assets()}, nil)
	nav.SetHierarchy(tourtest.Tree())
	return nav
}

func TestPendingStateBeforeHierarchy(t *testing.T) {
	nav := navigator.New(nil, nil)
	assert.False(t, nav.Loaded())

	_, ok := nav.CurrentRoom()
	assert.False(t, ok)
	assert.ErrorIs(t, nav.SelectRoom("room-living"), navigator.ErrNotLoaded)

	_, err := nav.CurrentAssetURL(context.Background())
	assert.ErrorIs(t, err, navigator.ErrNotLoaded)
}

func TestInitialSelectionOnLoad(t *testing.T) {
	nav := newLoaded(t)

	room, ok := nav.CurrentRoom()
	require.True(t, ok)
	assert.Equal(t, "room-living", room.ID)

	view, ok := nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "view-living-day", view.ID)
}

func TestSelectRoomResetsView(t *testing.T) {
	nav := newLoaded(t)
	require.NoError(t, nav.SelectRoom("room-kitchen"))

	room, _ := nav.CurrentRoom()
	view, ok := nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "room-kitchen", room.ID)
	assert.Equal(t, "view-kitchen-service", view.ID)
}

func TestSelectViewWithinRoom(t *testing.T) {
	nav := newLoaded(t)
	nav.SelectView("view-living-dusk")

	view, ok := nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "view-living-dusk", view.ID)

	// A view from another room reconciles back to the room's first view.
	nav.SelectView("view-kitchen-service")
	view, ok = nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "view-living-day", view.ID)
}

func TestDeleteRoomCascadesToSibling(t *testing.T) {
	nav := newLoaded(t)
	require.NoError(t, nav.DeleteRoom("room-living"))

	room, ok := nav.CurrentRoom()
	require.True(t, ok)
	assert.Contains(t, []string{"room-bedroom", "room-kitchen"}, room.ID)
	assert.NotEqual(t, "room-living", room.ID)

	for _, visible := range nav.VisibleRooms() {
		assert.NotEqual(t, "room-living", visible.ID)
	}

	view, ok := nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, room.Views[0].ID, view.ID)
}

func TestUndeleteRestoresRoom(t *testing.T) {
	nav := newLoaded(t)
	require.NoError(t, nav.DeleteRoom("room-living"))

	nav.UndeleteRoom("room-living")
	require.NoError(t, nav.SelectRoom("room-living"))

	room, _ := nav.CurrentRoom()
	view, ok := nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "room-living", room.ID)
	assert.Equal(t, "view-living-day", view.ID)
}

func TestDeleteAllRoomsInFlat(t *testing.T) {
	nav := newLoaded(t)
	require.NoError(t, nav.DeleteRoom("room-living"))
	require.NoError(t, nav.DeleteRoom("room-bedroom"))
	require.NoError(t, nav.DeleteRoom("room-kitchen"))

	// Selection falls through to the first visible room overall.
	room, ok := nav.CurrentRoom()
	require.True(t, ok)
	assert.Equal(t, "room-study", room.ID)

	_, ok = nav.CurrentView()
	assert.False(t, ok, "study has no views")

	require.NoError(t, nav.DeleteRoom("room-study"))
	_, ok = nav.CurrentRoom()
	assert.False(t, ok)
}

func TestNavigateViaPinDefaultView(t *testing.T) {
	nav := newLoaded(t)
	pin := models.Pin{
		ID:           "pin-test",
		FromViewID:   "view-living-day",
		TargetRoomID: "room-kitchen",
	}
	require.NoError(t, nav.NavigateViaPin(pin))

	room, _ := nav.CurrentRoom()
	view, ok := nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "room-kitchen", room.ID)
	assert.Equal(t, "view-kitchen-service", view.ID)
}

func TestNavigateViaPinTargetView(t *testing.T) {
	nav := newLoaded(t)
	target := "view-living-dusk"
	pin := models.Pin{
		ID:           "pin-test",
		FromViewID:   "view-bedroom-night",
		TargetRoomID: "room-living",
		TargetViewID: &target,
	}
	require.NoError(t, nav.NavigateViaPin(pin))

	view, ok := nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "view-living-dusk", view.ID)
}

func TestNavigateViaPinUnknownRoomIsNoOp(t *testing.T) {
	nav := newLoaded(t)
	require.NoError(t, nav.SelectRoom("room-bedroom"))

	err := nav.NavigateViaPin(models.Pin{TargetRoomID: "room-elsewhere"})
	assert.ErrorIs(t, err, navigator.ErrRoomNotFound)

	room, _ := nav.CurrentRoom()
	view, _ := nav.CurrentView()
	assert.Equal(t, "room-bedroom", room.ID)
	assert.Equal(t, "view-bedroom-night", view.ID)
}

func TestCurrentPinsFollowView(t *testing.T) {
	nav := newLoaded(t)

	pins := nav.CurrentPins()
	require.Len(t, pins, 2)
	for _, pin := range pins {
		assert.Equal(t, "view-living-day", pin.FromViewID)
	}

	nav.SelectView("view-living-dusk")
	pins = nav.CurrentPins()
	require.Len(t, pins, 1)
	assert.Equal(t, "pin-living-dusk-to-bedroom", pins[0].ID)
}

func TestUploadViewBecomesCurrent(t *testing.T) {
	nav := newLoaded(t)
	view := models.View{
		ID:              "view-upload-1",
		RoomID:          "room-bedroom",
		Name:            "Bedroom View 2",
		PanoramaAssetID: "asset-upload-1",
		DefaultYaw:      180,
	}
	asset := models.Asset{
		ID:     "asset-upload-1",
		Kind:   models.AssetKindPanorama,
		URL:    "blob:session/asset-upload-1",
		Width:  8000,
		Height: 4000,
	}
	require.NoError(t, nav.UploadView(view, asset))

	room, _ := nav.CurrentRoom()
	current, ok := nav.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "room-bedroom", room.ID)
	assert.Equal(t, "view-upload-1", current.ID)

	views := nav.EffectiveViews(room)
	require.Len(t, views, 2)
	assert.Equal(t, "view-bedroom-night", views[0].ID, "persisted views keep their position")
	assert.Equal(t, "view-upload-1", views[1].ID, "uploads are appended")

	url, err := nav.CurrentAssetURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "blob:session/asset-upload-1", url)
}

func TestUploadToUnknownRoomRejected(t *testing.T) {
	nav := newLoaded(t)
	err := nav.UploadView(models.View{ID: "v", RoomID: "room-missing"}, models.Asset{ID: "a"})
	assert.ErrorIs(t, err, navigator.ErrRoomNotFound)
}

func TestCurrentAssetURLStates(t *testing.T) {
	t.Run("resolved from collaborator", func(t *testing.T) {
		nav := newLoaded(t)
		url, err := nav.CurrentAssetURL(context.Background())
		require.NoError(t, err)
		assert.Contains(t, url, "asset-pano-livingroom-day")
	})

	t.Run("pending is not a failure", func(t *testing.T) {
		nav := navigator.New(&mapResolver{assets: map[string]models.Asset{}}, nil)
		nav.SetHierarchy(tourtest.Tree())
		_, err := nav.CurrentAssetURL(context.Background())
		assert.ErrorIs(t, err, navigator.ErrAssetUnresolved)
	})

	t.Run("fetch failure passes through", func(t *testing.T) {
		fetchErr := errors.New("upstream down")
		nav := navigator.New(&mapResolver{err: fetchErr}, nil)
		nav.SetHierarchy(tourtest.Tree())
		_, err := nav.CurrentAssetURL(context.Background())
		assert.ErrorIs(t, err, fetchErr)
		assert.NotErrorIs(t, err, navigator.ErrAssetUnresolved)
	})
}

func TestObjectURLsReleasedOnClose(t *testing.T) {
	var released []string
	nav := navigator.New(nil, func(url string) { released = append(released, url) })
	nav.SetHierarchy(tourtest.Tree())

	uploads := []struct{ viewID, assetID, url string }{
		{"view-up-a", "asset-up-a", "blob:session/a"},
		{"view-up-b", "asset-up-b", "blob:session/b"},
	}
	for _, up := range uploads {
		view := models.View{ID: up.viewID, RoomID: "room-living", PanoramaAssetID: up.assetID}
		asset := models.Asset{ID: up.assetID, Kind: models.AssetKindPanorama, URL: up.url}
		require.NoError(t, nav.UploadView(view, asset))
	}

	nav.Close()
	assert.Equal(t, []string{"blob:session/a", "blob:session/b"}, released)

	// Teardown is idempotent: nothing is released twice.
	nav.Close()
	assert.Len(t, released, 2)
}

func TestResetClearsOverlays(t *testing.T) {
	nav := newLoaded(t)
	require.NoError(t, nav.DeleteRoom("room-living"))
	require.NoError(t, nav.UploadView(
		models.View{ID: "view-up", RoomID: "room-kitchen", PanoramaAssetID: "asset-up"},
		models.Asset{ID: "asset-up", URL: "blob:session/up"},
	))

	nav.Reset()

	room, ok := nav.CurrentRoom()
	require.True(t, ok)
	assert.Equal(t, "room-living", room.ID, "tombstones cleared")
	require.NoError(t, nav.SelectRoom("room-kitchen"))
	kitchen, ok := nav.CurrentRoom()
	require.True(t, ok)
	assert.Len(t, nav.EffectiveViews(kitchen), 1, "upload overlay cleared")
}

func TestViewInvariantAfterTransitions(t *testing.T) {
	nav := newLoaded(t)
	transitions := []func(){
		func() { _ = nav.SelectRoom("room-bedroom") },
		func() { nav.SelectView("view-bogus") },
		func() { _ = nav.DeleteRoom("room-bedroom") },
		func() { nav.UndeleteRoom("room-bedroom") },
		func() { _ = nav.NavigateViaPin(models.Pin{TargetRoomID: "room-kitchen"}) },
	}
	for _, transition := range transitions {
		transition()
		room, ok := nav.CurrentRoom()
		if !ok {
			continue
		}
		views := nav.EffectiveViews(room)
		view, hasView := nav.CurrentView()
		if len(views) > 0 {
			require.True(t, hasView)
			found := false
			for _, v := range views {
				if v.ID == view.ID {
					found = true
				}
			}
			assert.True(t, found, "selected view must be in the effective list")
		}
	}
}
