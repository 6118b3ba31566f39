package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBoxExtend(t *testing.T) {
	b := Box{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{0, 0, 0}}
	b.Extend(mgl32.Vec3{-1, 2, 0})
	b.Extend(mgl32.Vec3{3, -4, 5})

	if want := (mgl32.Vec3{-1, -4, 0}); b.Min != want {
		t.Errorf("Min = %v, want %v", b.Min, want)
	}
	if want := (mgl32.Vec3{3, 2, 5}); b.Max != want {
		t.Errorf("Max = %v, want %v", b.Max, want)
	}
	if want := (mgl32.Vec3{4, 6, 5}); b.Size() != want {
		t.Errorf("Size() = %v, want %v", b.Size(), want)
	}
	if got := b.MaxDim(); got != 6 {
		t.Errorf("MaxDim() = %v, want 6", got)
	}
	if want := (mgl32.Vec3{1, -1, 2.5}); b.Center() != want {
		t.Errorf("Center() = %v, want %v", b.Center(), want)
	}
}

func TestBounds(t *testing.T) {
	a := twoNodeAsset()
	// Geometry spans x [-1,1], y [0,2] locally; the child node shifts it by
	// (0,1,0) and the parent by (1,0,0).
	box, ok := a.Bounds(mgl32.Ident4())
	if !ok {
		t.Fatal("Bounds() ok = false, want true")
	}
	if want := (mgl32.Vec3{0, 1, 0}); !vec3Near(box.Min, want) {
		t.Errorf("Min = %v, want %v", box.Min, want)
	}
	if want := (mgl32.Vec3{2, 3, 0}); !vec3Near(box.Max, want) {
		t.Errorf("Max = %v, want %v", box.Max, want)
	}
	if got := box.MaxDim(); got != 2 {
		t.Errorf("MaxDim() = %v, want 2", got)
	}
}

func TestBoundsPreTransform(t *testing.T) {
	a := twoNodeAsset()
	box, ok := a.Bounds(mgl32.Scale3D(0.5, 0.5, 0.5))
	if !ok {
		t.Fatal("Bounds() ok = false, want true")
	}
	if got := box.MaxDim(); got != 1 {
		t.Errorf("MaxDim() with half scale = %v, want 1", got)
	}
}

func TestBoundsNoGeometry(t *testing.T) {
	a := &Asset{
		Nodes: []*Node{{Name: "empty", Parent: -1, Mesh: -1,
			Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}},
		Roots: []int{0},
	}
	if _, ok := a.Bounds(mgl32.Ident4()); ok {
		t.Error("Bounds() ok = true for empty asset, want false")
	}
}
