package shadow

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/model"
)

func boxCorners(b model.Box) []mgl32.Vec3 {
	corners := make([]mgl32.Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		x := b.Min.X()
		if i&1 != 0 {
			x = b.Max.X()
		}
		y := b.Min.Y()
		if i&2 != 0 {
			y = b.Max.Y()
		}
		z := b.Min.Z()
		if i&4 != 0 {
			z = b.Max.Z()
		}
		corners = append(corners, mgl32.Vec3{x, y, z})
	}
	return corners
}

func TestDirectionalLightMatrixCoversBounds(t *testing.T) {
	bounds := model.Box{
		Min: mgl32.Vec3{-1, -1, -1},
		Max: mgl32.Vec3{1, 1, 1},
	}
	m := DirectionalLightMatrix(mgl32.Vec3{0, 0, 1}, bounds)

	for _, c := range boxCorners(bounds) {
		clip := mgl32.TransformCoordinate(c, m)
		for axis := 0; axis < 3; axis++ {
			if v := clip[axis]; v < -1.001 || v > 1.001 {
				t.Errorf("corner %v maps outside clip volume: %v", c, clip)
				break
			}
		}
	}
}

func TestDirectionalLightMatrixCentersScene(t *testing.T) {
	bounds := model.Box{
		Min: mgl32.Vec3{2, -3, 1},
		Max: mgl32.Vec3{6, 1, 5},
	}
	m := DirectionalLightMatrix(mgl32.Vec3{0, 0, 1}, bounds)

	clip := mgl32.TransformCoordinate(bounds.Center(), m)
	if gomath.Abs(float64(clip.X())) > 1e-5 || gomath.Abs(float64(clip.Y())) > 1e-5 {
		t.Errorf("scene center off light axis: %v", clip)
	}
}

func TestDirectionalLightMatrixVerticalLight(t *testing.T) {
	bounds := model.Box{
		Min: mgl32.Vec3{-1, 0, -1},
		Max: mgl32.Vec3{1, 2, 1},
	}
	// Straight-down sun exercises the up-vector fallback.
	m := DirectionalLightMatrix(mgl32.Vec3{0, 1, 0}, bounds)

	for _, c := range boxCorners(bounds) {
		clip := mgl32.TransformCoordinate(c, m)
		for axis := 0; axis < 3; axis++ {
			v := float64(clip[axis])
			if gomath.IsNaN(v) {
				t.Fatalf("NaN in clip coords for corner %v", c)
			}
			if v < -1.001 || v > 1.001 {
				t.Errorf("corner %v maps outside clip volume: %v", c, clip)
				break
			}
		}
	}
}

func TestDirectionalLightMatrixDegenerateBounds(t *testing.T) {
	bounds := model.Box{
		Min: mgl32.Vec3{5, 5, 5},
		Max: mgl32.Vec3{5, 5, 5},
	}
	m := DirectionalLightMatrix(mgl32.Vec3{0.3, 0.8, 0.5}.Normalize(), bounds)

	clip := mgl32.TransformCoordinate(bounds.Center(), m)
	for axis := 0; axis < 3; axis++ {
		if gomath.IsNaN(float64(clip[axis])) {
			t.Fatalf("NaN in clip coords for point bounds: %v", clip)
		}
	}
}
