package orientation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegreesRadiansRoundTrip(t *testing.T) {
	radians := DegreesToRadians(180)
	assert.InDelta(t, math.Pi, radians, 1e-12)
	assert.InDelta(t, 180, RadiansToDegrees(radians), 1e-12)
}

func TestNormalizeYaw(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already canonical", 45, 45},
		{"wraps positive overflow", 270, -90},
		{"wraps multiple turns", 765, 45},
		{"wraps negative turns", -540, 180},
		{"zero", 0, 0},
		{"upper bound stays", 180, 180},
		{"lower bound wraps to positive edge", -180, 180},
		{"just inside lower bound", -179.999, -179.999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeYaw(tt.in), 1e-9)
		})
	}
}

func TestNormalizeYawIdempotent(t *testing.T) {
	for _, yaw := range []float64{-720, -540, -180.0001, -180, -90, 0, 90, 179.5, 180, 360, 1234.5} {
		once := NormalizeYaw(yaw)
		assert.Greater(t, once, -180.0)
		assert.LessOrEqual(t, once, 180.0)
		assert.Equal(t, once, NormalizeYaw(once), "normalize should be idempotent for %v", yaw)
	}
}

func TestClampPitch(t *testing.T) {
	assert.Equal(t, 90.0, ClampPitch(120))
	assert.Equal(t, -90.0, ClampPitch(-120))
	assert.Equal(t, 45.0, ClampPitch(45))
	assert.Equal(t, 90.0, ClampPitch(90))
	assert.Equal(t, -90.0, ClampPitch(-90))
}

func TestClampPitchMonotonic(t *testing.T) {
	pitches := []float64{-200, -90.5, -90, -45, 0, 45, 90, 90.5, 200}
	for i := 1; i < len(pitches); i++ {
		assert.LessOrEqual(t, ClampPitch(pitches[i-1]), ClampPitch(pitches[i]))
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	orientations := []Orientation{
		{Yaw: 135, Pitch: -12},
		{Yaw: -90, Pitch: 45},
		{Yaw: 180, Pitch: 90},
		{Yaw: 0.25, Pitch: -89.75},
	}
	for _, o := range orientations {
		s, err := ToSpherical(o)
		require.NoError(t, err)
		restored, err := FromSpherical(s)
		require.NoError(t, err)
		assert.InDelta(t, o.Yaw, restored.Yaw, 1e-9)
		assert.InDelta(t, o.Pitch, restored.Pitch, 1e-9)
	}
}

func TestToSphericalNormalizes(t *testing.T) {
	s, err := ToSpherical(Orientation{Yaw: 270, Pitch: 120})
	require.NoError(t, err)
	assert.InDelta(t, DegreesToRadians(-90), s.Longitude, 1e-12)
	assert.InDelta(t, DegreesToRadians(90), s.Latitude, 1e-12)
}

func TestNonFiniteInputsFail(t *testing.T) {
	_, err := ToSpherical(Orientation{Yaw: math.NaN(), Pitch: 0})
	assert.ErrorIs(t, err, ErrOutOfDomain)

	_, err = ToSpherical(Orientation{Yaw: 0, Pitch: math.Inf(1)})
	assert.ErrorIs(t, err, ErrOutOfDomain)

	_, err = FromSpherical(Spherical{Longitude: math.Inf(-1)})
	assert.ErrorIs(t, err, ErrOutOfDomain)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "45.2°, -12.3°", Format(Orientation{Yaw: 45.234, Pitch: -12.345}))
	assert.Equal(t, "0.0°, 0.0°", Format(Orientation{}))
	// -180 canonicalizes to the positive edge, same as NormalizeYaw.
	assert.Equal(t, "180.0°, 0.0°", Format(Orientation{Yaw: -180}))
	assert.Equal(t, "180.0°, 90.0°", Format(Orientation{Yaw: 180, Pitch: 150}))
}
