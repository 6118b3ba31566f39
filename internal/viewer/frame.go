package viewer

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/model"
)

// ErrDegenerateBounds is returned when the base asset has no measurable
// extent, so no normalization frame can be derived from it.
var ErrDegenerateBounds = errors.New("viewer: base asset has degenerate bounds")

// Frame is the shared normalization derived once from the base asset: a
// uniform scale that makes the longest side span two units, and the offset
// that re-centers the scaled model on the origin. Every asset in the scene
// is placed with the same frame so the parts stay aligned.
type Frame struct {
	Scale  float32
	Offset mgl32.Vec3
}

// ComputeFrame measures the asset under the given model rotation and
// derives the frame from its bounding box.
func ComputeFrame(a *model.Asset, rotation mgl32.Mat4) (Frame, error) {
	box, ok := a.Bounds(rotation)
	if !ok {
		return Frame{}, ErrDegenerateBounds
	}
	maxDim := box.MaxDim()
	if maxDim <= 0 {
		return Frame{}, ErrDegenerateBounds
	}
	scale := 2 / maxDim
	return Frame{
		Scale:  scale,
		Offset: box.Center().Mul(scale),
	}, nil
}

// RootTransform builds the transform applied above every asset root:
// rotate, scale to frame units, then shift the center onto the origin.
func (f Frame) RootTransform(rotation mgl32.Mat4) mgl32.Mat4 {
	t := mgl32.Translate3D(-f.Offset.X(), -f.Offset.Y(), -f.Offset.Z())
	s := mgl32.Scale3D(f.Scale, f.Scale, f.Scale)
	return t.Mul4(s).Mul4(rotation)
}

// EulerRotation converts per-axis radians into a rotation matrix, applying
// X, then Y, then Z.
func EulerRotation(r mgl32.Vec3) mgl32.Mat4 {
	if r == (mgl32.Vec3{}) {
		return mgl32.Ident4()
	}
	rx := mgl32.HomogRotate3DX(r.X())
	ry := mgl32.HomogRotate3DY(r.Y())
	rz := mgl32.HomogRotate3DZ(r.Z())
	return rz.Mul4(ry).Mul4(rx)
}
