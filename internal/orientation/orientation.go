// Package orientation converts between the application's yaw/pitch camera
// representation (degrees) and the spherical longitude/latitude
// representation (radians) used by the rendering engine.
//
// Canonical ranges: yaw is in (-180, 180], pitch is in [-90, 90]. Exactly
// -180 canonicalizes to +180; NormalizeYaw and Format apply the same rule.
package orientation

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfDomain is returned when a conversion receives a non-finite
// (NaN or infinite) component. This indicates an upstream bug rather than
// a normal edge case, so conversions fail instead of clamping.
var ErrOutOfDomain = errors.New("orientation: non-finite value")

// Orientation is a camera heading in degrees.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Spherical is the renderer's longitude/latitude representation in radians.
type Spherical struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// DegreesToRadians converts degrees to radians.
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadiansToDegrees converts radians to degrees.
func RadiansToDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// NormalizeYaw reduces a yaw angle modulo 360 into (-180, 180]. Exactly
// -180 maps to +180. Idempotent for all finite inputs; non-finite inputs
// pass through unchanged.
func NormalizeYaw(degrees float64) float64 {
	yaw := math.Mod(degrees, 360)
	if yaw <= -180 {
		yaw += 360
	} else if yaw > 180 {
		yaw -= 360
	}
	return yaw
}

// ClampPitch saturates a pitch angle into [-90, 90].
func ClampPitch(degrees float64) float64 {
	if degrees > 90 {
		return 90
	}
	if degrees < -90 {
		return -90
	}
	return degrees
}

// ToSpherical converts a yaw/pitch orientation to renderer coordinates,
// normalizing yaw and clamping pitch first.
func ToSpherical(o Orientation) (Spherical, error) {
	if !finite(o.Yaw) || !finite(o.Pitch) {
		return Spherical{}, fmt.Errorf("%w: yaw=%v pitch=%v", ErrOutOfDomain, o.Yaw, o.Pitch)
	}
	return Spherical{
		Longitude: DegreesToRadians(NormalizeYaw(o.Yaw)),
		Latitude:  DegreesToRadians(ClampPitch(o.Pitch)),
	}, nil
}

// FromSpherical converts renderer coordinates back to a canonical
// yaw/pitch orientation.
func FromSpherical(s Spherical) (Orientation, error) {
	if !finite(s.Longitude) || !finite(s.Latitude) {
		return Orientation{}, fmt.Errorf("%w: longitude=%v latitude=%v", ErrOutOfDomain, s.Longitude, s.Latitude)
	}
	return Orientation{
		Yaw:   NormalizeYaw(RadiansToDegrees(s.Longitude)),
		Pitch: ClampPitch(RadiansToDegrees(s.Latitude)),
	}, nil
}

// Format renders an orientation as e.g. "45.2°, -12.3°", one decimal digit
// each, rounded half-up after normalization and clamping.
func Format(o Orientation) string {
	yaw := roundHalfUp(NormalizeYaw(o.Yaw))
	pitch := roundHalfUp(ClampPitch(o.Pitch))
	return fmt.Sprintf("%.1f°, %.1f°", yaw, pitch)
}

// roundHalfUp rounds to one decimal place with ties going toward +inf,
// matching the display convention of the viewer HUD.
func roundHalfUp(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
