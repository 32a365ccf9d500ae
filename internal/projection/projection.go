// Package projection maps pins anchored on the panorama sphere to screen
// coordinates for overlay rendering. The spherical-to-screen mapping is
// supplied by the rendering engine and treated as a black box; it may
// return non-finite coordinates for points behind the camera or off the
// visible hemisphere, which marks the pin as not visible.
package projection

import (
	"errors"
	"math"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/demointeriors/tour-service/internal/orientation"
)

// ErrNoMapping is returned when the projector has no mapping function
// attached, i.e. the rendering engine has not reported ready yet.
var ErrNoMapping = errors.New("projection: no mapping function attached")

// MapFunc is the renderer's spherical-to-screen mapping for the current
// camera orientation and viewport size.
type MapFunc func(s orientation.Spherical) (x, y float64)

// Overlay is one pin with its current-frame screen position. Visible is
// false when the mapping produced non-finite coordinates.
type Overlay struct {
	Pin     models.Pin `json:"pin"`
	X       float64    `json:"x"`
	Y       float64    `json:"y"`
	Visible bool       `json:"visible"`
}

// Projector recomputes overlay positions for the active pin set. Overlays
// and pin-set identity are swapped atomically from the caller's
// perspective: after SetPins or Refresh returns, Overlays always reflects
// exactly the pins passed in last.
type Projector struct {
	mapFn    MapFunc
	pins     []models.Pin
	overlays []Overlay
}

// New returns a projector with no mapping attached.
func New() *Projector {
	return &Projector{}
}

// SetMapping attaches (or replaces) the renderer's mapping function and
// reprojects the current pin set.
func (p *Projector) SetMapping(mapFn MapFunc) error {
	p.mapFn = mapFn
	return p.reproject()
}

// SetPins replaces the active pin set and reprojects it. Called when the
// current room or view changes.
func (p *Projector) SetPins(pins []models.Pin) error {
	p.pins = append(p.pins[:0:0], pins...)
	return p.reproject()
}

// Refresh reprojects the current pin set. Called when the renderer
// signals a render or resize event; the projector itself never polls per
// animation frame.
func (p *Projector) Refresh() error {
	return p.reproject()
}

// Overlays returns the projected positions computed by the last SetPins,
// SetMapping or Refresh call.
func (p *Projector) Overlays() []Overlay {
	return p.overlays
}

func (p *Projector) reproject() error {
	if len(p.pins) == 0 {
		p.overlays = nil
		return nil
	}
	if p.mapFn == nil {
		p.overlays = nil
		return ErrNoMapping
	}
	overlays := make([]Overlay, 0, len(p.pins))
	for _, pin := range p.pins {
		s, err := orientation.ToSpherical(orientation.Orientation{Yaw: pin.Yaw, Pitch: pin.Pitch})
		if err != nil {
			// A stored pin with a non-finite anchor is corrupt upstream
			// data; fail fast rather than render it somewhere arbitrary.
			p.overlays = nil
			return err
		}
		x, y := p.mapFn(s)
		overlays = append(overlays, Overlay{
			Pin:     pin,
			X:       x,
			Y:       y,
			Visible: finite(x) && finite(y),
		})
	}
	p.overlays = overlays
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
