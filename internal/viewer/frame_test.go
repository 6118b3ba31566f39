package viewer

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/model"
)

const epsilon = 1e-5

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func vecNear(a, b mgl32.Vec3) bool {
	return near(a.X(), b.X()) && near(a.Y(), b.Y()) && near(a.Z(), b.Z())
}

// boxAsset builds a one-node asset whose geometry spans the given extents.
func boxAsset(name string, min, max [3]float32) *model.Asset {
	return &model.Asset{
		Name: name,
		Nodes: []*model.Node{{
			Name:     "root",
			Parent:   -1,
			Mesh:     0,
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		}},
		Roots: []int{0},
		Meshes: []*model.Mesh{{
			Primitives: []*model.Primitive{{
				Positions: [][3]float32{
					min,
					max,
					{min[0], max[1], min[2]},
					{max[0], min[1], max[2]},
				},
				Indices:  []uint32{0, 1, 2, 1, 2, 3},
				Material: -1,
			}},
		}},
	}
}

func TestComputeFrameScale(t *testing.T) {
	// Extents 4 x 2 x 2 centered at (1, 0, 0).
	a := boxAsset("base", [3]float32{-1, -1, -1}, [3]float32{3, 1, 1})

	frame, err := ComputeFrame(a, mgl32.Ident4())
	if err != nil {
		t.Fatalf("ComputeFrame() error = %v", err)
	}
	if frame.Scale != 0.5 {
		t.Errorf("Scale = %v, want exactly 0.5", frame.Scale)
	}
	if want := (mgl32.Vec3{0.5, 0, 0}); !vecNear(frame.Offset, want) {
		t.Errorf("Offset = %v, want %v", frame.Offset, want)
	}
}

func TestRootTransformNormalizes(t *testing.T) {
	a := boxAsset("base", [3]float32{2, 5, -3}, [3]float32{10, 7, 1})

	frame, err := ComputeFrame(a, mgl32.Ident4())
	if err != nil {
		t.Fatalf("ComputeFrame() error = %v", err)
	}

	// Re-measuring under the root transform must give a box with its
	// longest side exactly two units, centered on the origin.
	box, ok := a.Bounds(frame.RootTransform(mgl32.Ident4()))
	if !ok {
		t.Fatal("Bounds() ok = false")
	}
	if got := box.MaxDim(); !near(got, 2) {
		t.Errorf("normalized MaxDim = %v, want 2", got)
	}
	if c := box.Center(); !vecNear(c, mgl32.Vec3{}) {
		t.Errorf("normalized center = %v, want origin", c)
	}
}

func TestComputeFrameWithRotation(t *testing.T) {
	// Longest side along X; a quarter turn about Y moves it onto Z but the
	// max extent, and with it the scale, stays the same.
	a := boxAsset("base", [3]float32{-2, -0.5, -0.5}, [3]float32{2, 0.5, 0.5})
	rot := mgl32.HomogRotate3DY(float32(math.Pi / 2))

	frame, err := ComputeFrame(a, rot)
	if err != nil {
		t.Fatalf("ComputeFrame() error = %v", err)
	}
	if !near(frame.Scale, 0.5) {
		t.Errorf("Scale = %v, want 0.5", frame.Scale)
	}

	box, ok := a.Bounds(frame.RootTransform(rot))
	if !ok {
		t.Fatal("Bounds() ok = false")
	}
	if got := box.Size().Z(); !near(got, 2) {
		t.Errorf("rotated Z extent = %v, want 2", got)
	}
	if c := box.Center(); !vecNear(c, mgl32.Vec3{}) {
		t.Errorf("rotated center = %v, want origin", c)
	}
}

func TestComputeFrameDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		asset *model.Asset
	}{
		{"point cloud at one spot", boxAsset("flatline", [3]float32{1, 1, 1}, [3]float32{1, 1, 1})},
		{"no geometry", &model.Asset{
			Nodes: []*model.Node{{Name: "root", Parent: -1, Mesh: -1,
				Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}},
			Roots: []int{0},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeFrame(tt.asset, mgl32.Ident4()); !errors.Is(err, ErrDegenerateBounds) {
				t.Errorf("ComputeFrame() error = %v, want ErrDegenerateBounds", err)
			}
		})
	}
}

func TestEulerRotation(t *testing.T) {
	if got := EulerRotation(mgl32.Vec3{}); got != mgl32.Ident4() {
		t.Errorf("EulerRotation(zero) = %v, want identity", got)
	}

	// Pure yaw: (1,0,0) -> (0,0,-1).
	m := EulerRotation(mgl32.Vec3{0, float32(math.Pi / 2), 0})
	got := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, m)
	if want := (mgl32.Vec3{0, 0, -1}); !vecNear(got, want) {
		t.Errorf("yaw quarter turn moved x-axis to %v, want %v", got, want)
	}
}
