package viewer_test

import (
	"context"
	"math"
	"testing"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/demointeriors/tour-service/internal/navigator"
	"github.com/demointeriors/tour-service/internal/orientation"
	"github.com/demointeriors/tour-service/internal/tourtest"
	"github.com/demointeriors/tour-service/internal/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	loadedURLs []string
	loadedAt   []orientation.Spherical
	animatedTo []orientation.Spherical
	frame      []byte
}

func (e *fakeEngine) LoadPanorama(_ context.Context, url string, at orientation.Spherical) error {
	e.loadedURLs = append(e.loadedURLs, url)
	e.loadedAt = append(e.loadedAt, at)
	return nil
}

func (e *fakeEngine) Animate(to orientation.Spherical) {
	e.animatedTo = append(e.animatedTo, to)
}

func (e *fakeEngine) CaptureFrame() ([]byte, error) {
	return e.frame, nil
}

func (e *fakeEngine) SphericalToScreen(s orientation.Spherical) (float64, float64) {
	if math.Abs(s.Longitude) > math.Pi/2 {
		return math.NaN(), math.NaN()
	}
	return 960 + s.Longitude*600, 540 - s.Latitude*600
}

type mapResolver map[string]models.Asset

func (r mapResolver) ResolveAsset(_ context.Context, assetID string) (*models.Asset, error) {
	asset, ok := r[assetID]
	if !ok {
		return nil, nil
	}
	return &asset, nil
}

func newSession(t *testing.T) (*viewer.Session, *fakeEngine) {
	t.Helper()
	nav := navigator.New(mapResolver(tourtest.Assets()), nil)
	nav.SetHierarchy(tourtest.Tree())
	engine := &fakeEngine{frame: []byte("png")}
	session, err := viewer.NewSession(nav, engine)
	require.NoError(t, err)
	return session, engine
}

func TestShowCurrentSceneLoadsDefaultOrientation(t *testing.T) {
	session, engine := newSession(t)
	require.NoError(t, session.ShowCurrentScene(context.Background()))

	require.Len(t, engine.loadedURLs, 1)
	assert.Contains(t, engine.loadedURLs[0], "asset-pano-livingroom-day")

	want, err := orientation.ToSpherical(orientation.Orientation{Yaw: 10, Pitch: 0})
	require.NoError(t, err)
	assert.Equal(t, want, engine.loadedAt[0])
	assert.Equal(t, "10.0°, 0.0°", session.FormatOrientation())

	overlays := session.Overlays()
	require.Len(t, overlays, 2, "living day view has two pins")
}

func TestActivatePinSwapsSceneAndOverlays(t *testing.T) {
	session, engine := newSession(t)
	require.NoError(t, session.ShowCurrentScene(context.Background()))

	require.NoError(t, session.ActivatePin(context.Background(), "pin-living-to-kitchen"))

	room, _ := session.Navigator().CurrentRoom()
	assert.Equal(t, "room-kitchen", room.ID)
	require.Len(t, engine.loadedURLs, 2)
	assert.Contains(t, engine.loadedURLs[1], "asset-pano-kitchen-chef")

	overlays := session.Overlays()
	require.Len(t, overlays, 1)
	assert.Equal(t, "pin-kitchen-to-living", overlays[0].Pin.ID)
}

func TestActivatePinUnknownPin(t *testing.T) {
	session, _ := newSession(t)
	require.NoError(t, session.ShowCurrentScene(context.Background()))

	err := session.ActivatePin(context.Background(), "pin-bogus")
	assert.ErrorIs(t, err, viewer.ErrPinNotFound)
}

func TestActivatePinDeadTargetIsNoOp(t *testing.T) {
	session, engine := newSession(t)
	require.NoError(t, session.ShowCurrentScene(context.Background()))
	require.NoError(t, session.Navigator().DeleteRoom("room-bedroom"))

	// The pin still renders on the living view but its target is gone.
	require.NoError(t, session.ActivatePin(context.Background(), "pin-living-to-bedroom"))

	room, _ := session.Navigator().CurrentRoom()
	assert.Equal(t, "room-living", room.ID, "selection unchanged")
	assert.Len(t, engine.loadedURLs, 1, "no scene change")
}

func TestDispatchCaptureFrame(t *testing.T) {
	session, _ := newSession(t)
	result, err := session.Dispatch(context.Background(), viewer.Command{Kind: viewer.CommandCaptureFrame})
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), result.Frame)
}

func TestDispatchResetOrientation(t *testing.T) {
	session, engine := newSession(t)
	require.NoError(t, session.ShowCurrentScene(context.Background()))
	require.NoError(t, session.HandlePositionChanged(orientation.Spherical{Longitude: 1.2, Latitude: 0.4}))

	_, err := session.Dispatch(context.Background(), viewer.Command{Kind: viewer.CommandResetOrientation})
	require.NoError(t, err)

	require.Len(t, engine.animatedTo, 1)
	want, _ := orientation.ToSpherical(orientation.Orientation{Yaw: 10})
	assert.Equal(t, want, engine.animatedTo[0])
	assert.Equal(t, "10.0°, 0.0°", session.FormatOrientation())
}

func TestDispatchLoadPanorama(t *testing.T) {
	session, engine := newSession(t)
	target := orientation.Orientation{Yaw: 180, Pitch: 0}
	_, err := session.Dispatch(context.Background(), viewer.Command{
		Kind:   viewer.CommandLoadPanorama,
		URL:    "blob:session/upload",
		Target: &target,
	})
	require.NoError(t, err)

	require.Len(t, engine.loadedURLs, 1)
	assert.Equal(t, "blob:session/upload", engine.loadedURLs[0])
	assert.Equal(t, "180.0°, 0.0°", session.FormatOrientation())
}

func TestPositionChangedUpdatesHud(t *testing.T) {
	session, _ := newSession(t)
	s, err := orientation.ToSpherical(orientation.Orientation{Yaw: 45.234, Pitch: -12.345})
	require.NoError(t, err)
	require.NoError(t, session.HandlePositionChanged(s))
	assert.Equal(t, "45.2°, -12.3°", session.FormatOrientation())

	err = session.HandlePositionChanged(orientation.Spherical{Longitude: math.NaN()})
	assert.ErrorIs(t, err, orientation.ErrOutOfDomain)
}

func TestRenderRefreshKeepsOverlayCount(t *testing.T) {
	session, _ := newSession(t)
	require.NoError(t, session.ShowCurrentScene(context.Background()))
	before := len(session.Overlays())

	require.NoError(t, session.HandleRender())
	require.NoError(t, session.HandleResize())
	assert.Equal(t, before, len(session.Overlays()))
}
