// Package viewer ties one navigator, one pin projector and one rendering
// engine into a viewing session. Callers steer it through an explicit
// command dispatch (capture frame, reset orientation, load panorama)
// instead of a mutable renderer handle, and forward engine notifications
// into the Handle* methods.
//
// A session is single-goroutine like the navigator it wraps: commands and
// engine events run to completion one at a time.
package viewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/demointeriors/tour-service/internal/navigator"
	"github.com/demointeriors/tour-service/internal/orientation"
	"github.com/demointeriors/tour-service/internal/projection"
)

// ErrPinNotFound is returned when a pin activation names a pin that is
// not drawn on the current view.
var ErrPinNotFound = errors.New("viewer: pin not on current view")

// CommandKind enumerates the session commands.
type CommandKind int

const (
	CommandCaptureFrame CommandKind = iota
	CommandResetOrientation
	CommandLoadPanorama
)

// Command is one dispatched session operation. URL and Target are only
// read for CommandLoadPanorama; a nil Target falls back to the current
// view's default orientation.
type Command struct {
	Kind   CommandKind
	URL    string
	Target *orientation.Orientation
}

// CommandResult carries command output. Frame is set for
// CommandCaptureFrame.
type CommandResult struct {
	Frame []byte
}

// Session is one project viewing session.
type Session struct {
	nav    *navigator.Navigator
	proj   *projection.Projector
	engine Engine

	live orientation.Orientation
}

// NewSession wires a navigator and an engine together. The engine's
// coordinate mapping is attached to the pin projector immediately.
func NewSession(nav *navigator.Navigator, engine Engine) (*Session, error) {
	s := &Session{
		nav:    nav,
		proj:   projection.New(),
		engine: engine,
	}
	if err := s.proj.SetMapping(engine.SphericalToScreen); err != nil {
		return nil, err
	}
	return s, nil
}

// Navigator exposes the wrapped navigator for selection queries.
func (s *Session) Navigator() *navigator.Navigator { return s.nav }

// Orientation returns the live camera orientation.
func (s *Session) Orientation() orientation.Orientation { return s.live }

// FormatOrientation renders the live orientation for HUD display.
func (s *Session) FormatOrientation() string { return orientation.Format(s.live) }

// Overlays returns the current-frame pin positions.
func (s *Session) Overlays() []projection.Overlay { return s.proj.Overlays() }

// ShowCurrentScene loads the navigator's current view into the engine at
// the view's default orientation and swaps the pin overlays in the same
// step, so overlays never outlive the scene they belong to.
func (s *Session) ShowCurrentScene(ctx context.Context) error {
	view, ok := s.nav.CurrentView()
	if !ok {
		if err := s.proj.SetPins(nil); err != nil {
			return err
		}
		return nil
	}
	url, err := s.nav.CurrentAssetURL(ctx)
	if err != nil {
		return fmt.Errorf("resolve panorama for view %s: %w", view.ID, err)
	}
	return s.loadPanorama(ctx, url, orientation.Orientation{Yaw: view.DefaultYaw, Pitch: view.DefaultPitch})
}

// ActivatePin navigates through a pin drawn on the current view and shows
// the target scene. An unresolvable pin target leaves the session
// untouched, mirroring the navigator's no-op policy.
func (s *Session) ActivatePin(ctx context.Context, pinID string) error {
	var pin *models.Pin
	for _, candidate := range s.nav.CurrentPins() {
		if candidate.ID == pinID {
			p := candidate
			pin = &p
			break
		}
	}
	if pin == nil {
		return fmt.Errorf("%w: %s", ErrPinNotFound, pinID)
	}
	if err := s.nav.NavigateViaPin(*pin); err != nil {
		if errors.Is(err, navigator.ErrRoomNotFound) {
			return nil
		}
		return err
	}
	return s.ShowCurrentScene(ctx)
}

// Dispatch executes one session command.
func (s *Session) Dispatch(ctx context.Context, cmd Command) (CommandResult, error) {
	switch cmd.Kind {
	case CommandCaptureFrame:
		frame, err := s.engine.CaptureFrame()
		if err != nil {
			return CommandResult{}, fmt.Errorf("capture frame: %w", err)
		}
		return CommandResult{Frame: frame}, nil

	case CommandResetOrientation:
		view, ok := s.nav.CurrentView()
		if !ok {
			return CommandResult{}, nil
		}
		target := orientation.Orientation{Yaw: view.DefaultYaw, Pitch: view.DefaultPitch}
		spherical, err := orientation.ToSpherical(target)
		if err != nil {
			return CommandResult{}, err
		}
		s.engine.Animate(spherical)
		s.live = target
		return CommandResult{}, nil

	case CommandLoadPanorama:
		target := cmd.Target
		if target == nil {
			if view, ok := s.nav.CurrentView(); ok {
				target = &orientation.Orientation{Yaw: view.DefaultYaw, Pitch: view.DefaultPitch}
			} else {
				target = &orientation.Orientation{}
			}
		}
		return CommandResult{}, s.loadPanorama(ctx, cmd.URL, *target)

	default:
		return CommandResult{}, fmt.Errorf("viewer: unknown command kind %d", cmd.Kind)
	}
}

// HandlePositionChanged ingests the engine's orientation-changed
// notification.
func (s *Session) HandlePositionChanged(at orientation.Spherical) error {
	o, err := orientation.FromSpherical(at)
	if err != nil {
		return err
	}
	s.live = o
	return nil
}

// HandleRender reprojects pin overlays after a render event.
func (s *Session) HandleRender() error { return s.proj.Refresh() }

// HandleResize reprojects pin overlays after a viewport resize.
func (s *Session) HandleResize() error { return s.proj.Refresh() }

func (s *Session) loadPanorama(ctx context.Context, url string, target orientation.Orientation) error {
	spherical, err := orientation.ToSpherical(target)
	if err != nil {
		return err
	}
	if err := s.engine.LoadPanorama(ctx, url, spherical); err != nil {
		return fmt.Errorf("load panorama: %w", err)
	}
	s.live = target
	return s.proj.SetPins(s.nav.CurrentPins())
}
