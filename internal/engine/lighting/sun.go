// Package lighting provides lighting utilities for 3D rendering.
package lighting

import "github.com/go-gl/mathgl/mgl32"

// Sun is the directional light used for shading and shadow casting.
type Sun struct {
	Direction mgl32.Vec3 // normalized, points towards the light
	Intensity float32
	Ambient   float32
}

// New builds a sun light from a configured direction vector and
// intensities. A zero-length direction falls back to straight overhead.
func New(angle [3]float32, intensity, ambient float32) Sun {
	dir := mgl32.Vec3{angle[0], angle[1], angle[2]}
	if dir.Len() < 1e-6 {
		dir = mgl32.Vec3{0, 1, 0}
	}

	return Sun{
		Direction: dir.Normalize(),
		Intensity: intensity,
		Ambient:   ambient,
	}
}

// DiffuseColor returns the white diffuse contribution scaled by intensity.
func (s Sun) DiffuseColor() [3]float32 {
	return [3]float32{s.Intensity, s.Intensity, s.Intensity}
}

// AmbientColor returns the white ambient contribution.
func (s Sun) AmbientColor() [3]float32 {
	return [3]float32{s.Ambient, s.Ambient, s.Ambient}
}
