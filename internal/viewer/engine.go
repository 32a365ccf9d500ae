package viewer

import (
	"context"

	"github.com/demointeriors/tour-service/internal/orientation"
)

// Engine is the rendering-engine collaborator. The session owns no
// rendering state; it drives the engine through this interface and feeds
// the engine's notifications back in via the Handle* methods on Session.
//
// SphericalToScreen may return non-finite coordinates for points behind
// the camera; visibility detection relies on that contract.
type Engine interface {
	// LoadPanorama displays the panorama at url facing the given
	// spherical coordinates, returning once the scene is loaded.
	LoadPanorama(ctx context.Context, url string, at orientation.Spherical) error

	// Animate smoothly rotates the camera to the given coordinates.
	Animate(to orientation.Spherical)

	// CaptureFrame returns the current frame as an encoded image.
	CaptureFrame() ([]byte, error)

	// SphericalToScreen maps spherical coordinates to viewport pixels
	// for the current camera orientation and viewport size.
	SphericalToScreen(s orientation.Spherical) (x, y float64)
}
