// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// polarEpsilon keeps the polar angle off the poles so LookAt always has
// a valid up vector.
const polarEpsilon = 0.001

var worldUp = mgl32.Vec3{0, 1, 0}

// OrbitControls orbits a perspective camera around a target point.
// Rotation and panning are fed as deltas and consumed by Update, which
// applies optional damping so motion eases out over several frames.
type OrbitControls struct {
	Target mgl32.Vec3

	// Spherical coordinates relative to Target
	Distance float32
	Polar    float32 // angle from +Y axis, radians
	Azimuth  float32 // rotation around +Y axis, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32

	// Behavior switches
	EnableDamping      bool
	DampingFactor      float32
	EnableZoom         bool
	EnablePan          bool
	ScreenSpacePanning bool

	// Sensitivity
	RotateSensitivity float32
	ZoomSensitivity   float32
	PanSensitivity    float32

	// Projection
	FOV  float32 // vertical field of view, radians
	Near float32
	Far  float32

	// Pending input, consumed by Update
	azimuthDelta float32
	polarDelta   float32
	panOffset    mgl32.Vec3
}

// New creates orbit controls with default settings.
func New() *OrbitControls {
	return &OrbitControls{
		Distance:          3.0,
		Polar:             float32(gomath.Pi / 3),
		Azimuth:           0.0,
		MinDistance:       1.0,
		MaxDistance:       10.0,
		MinPolar:          polarEpsilon,
		MaxPolar:          float32(gomath.Pi / 2),
		EnableDamping:     true,
		DampingFactor:     0.05,
		EnableZoom:        true,
		EnablePan:         true,
		RotateSensitivity: 0.005,
		ZoomSensitivity:   0.1,
		PanSensitivity:    0.002,
		FOV:               mgl32.DegToRad(45),
		Near:              0.1,
		Far:               100.0,
	}
}

// Position returns the camera position in world space.
func (c *OrbitControls) Position() mgl32.Vec3 {
	sinP := float32(gomath.Sin(float64(c.Polar)))
	x := c.Distance * sinP * float32(gomath.Sin(float64(c.Azimuth)))
	y := c.Distance * float32(gomath.Cos(float64(c.Polar)))
	z := c.Distance * sinP * float32(gomath.Cos(float64(c.Azimuth)))

	return c.Target.Add(mgl32.Vec3{x, y, z})
}

// SetPosition places the camera at pos by deriving the spherical
// coordinates relative to the current target.
func (c *OrbitControls) SetPosition(pos mgl32.Vec3) {
	offset := pos.Sub(c.Target)
	dist := offset.Len()
	if dist < 1e-6 {
		c.Distance = c.MinDistance
		return
	}

	c.Distance = dist
	c.Polar = float32(gomath.Acos(float64(mgl32.Clamp(offset.Y()/dist, -1, 1))))
	c.Azimuth = float32(gomath.Atan2(float64(offset.X()), float64(offset.Z())))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitControls) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, worldUp)
}

// ProjectionMatrix returns the perspective projection for the given
// viewport aspect ratio.
func (c *OrbitControls) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Rotate queues an orbit rotation from a mouse drag delta.
func (c *OrbitControls) Rotate(deltaX, deltaY float32) {
	c.azimuthDelta -= deltaX * c.RotateSensitivity
	c.polarDelta -= deltaY * c.RotateSensitivity
}

// Zoom updates distance based on scroll wheel delta.
func (c *OrbitControls) Zoom(delta float32) {
	if !c.EnableZoom {
		return
	}
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// Pan queues a target move from a mouse drag delta. With screen-space
// panning the target follows the camera plane; otherwise it stays on
// the ground plane.
func (c *OrbitControls) Pan(deltaX, deltaY float32) {
	if !c.EnablePan {
		return
	}

	// Scale with distance so a drag covers the same screen fraction at
	// any zoom level.
	scale := c.Distance * c.PanSensitivity

	forward := c.Target.Sub(c.Position()).Normalize()
	right := forward.Cross(worldUp).Normalize()

	var up mgl32.Vec3
	if c.ScreenSpacePanning {
		up = right.Cross(forward)
	} else {
		up = worldUp.Cross(right)
	}

	c.panOffset = c.panOffset.Add(right.Mul(-deltaX * scale))
	c.panOffset = c.panOffset.Add(up.Mul(deltaY * scale))
}

// Update applies pending rotation and pan deltas, then clamps the
// spherical coordinates. Call once per frame. With damping enabled each
// delta is spread over subsequent frames and decays by DampingFactor;
// the summed motion still equals the queued delta.
func (c *OrbitControls) Update() {
	factor := float32(1.0)
	if c.EnableDamping {
		factor = c.DampingFactor
	}

	c.Azimuth += c.azimuthDelta * factor
	c.Polar += c.polarDelta * factor
	c.Target = c.Target.Add(c.panOffset.Mul(factor))

	if c.EnableDamping {
		decay := 1 - c.DampingFactor
		c.azimuthDelta *= decay
		c.polarDelta *= decay
		c.panOffset = c.panOffset.Mul(decay)
	} else {
		c.azimuthDelta = 0
		c.polarDelta = 0
		c.panOffset = mgl32.Vec3{}
	}

	minPolar := c.MinPolar
	if minPolar < polarEpsilon {
		minPolar = polarEpsilon
	}
	maxPolar := c.MaxPolar
	if maxPolar > float32(gomath.Pi)-polarEpsilon {
		maxPolar = float32(gomath.Pi) - polarEpsilon
	}
	c.Polar = mgl32.Clamp(c.Polar, minPolar, maxPolar)
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds adjusts the camera to frame a sphere of the given size
// centered at center.
func (c *OrbitControls) FitToBounds(center mgl32.Vec3, maxDim float32) {
	c.Target = center

	c.Distance = maxDim * 1.5
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}
