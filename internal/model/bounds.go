package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl32.Vec3
}

// Size returns the box extents per axis.
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// MaxDim returns the largest extent across the three axes.
func (b Box) MaxDim() float32 {
	s := b.Size()
	m := s.X()
	if s.Y() > m {
		m = s.Y()
	}
	if s.Z() > m {
		m = s.Z()
	}
	return m
}

// Extend grows the box to include p.
func (b *Box) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Bounds computes the asset's axis-aligned bounding box with pre applied
// above every root, walking every primitive vertex through its node's world
// transform. ok is false when the asset has no geometry.
func (a *Asset) Bounds(pre mgl32.Mat4) (box Box, ok bool) {
	const big = 1e30
	box = Box{
		Min: mgl32.Vec3{big, big, big},
		Max: mgl32.Vec3{-big, -big, -big},
	}
	world := a.WorldMatrices(pre)
	for i, n := range a.Nodes {
		if n.Mesh < 0 {
			continue
		}
		w := world[i]
		for _, prim := range a.Meshes[n.Mesh].Primitives {
			for _, p := range prim.Positions {
				v := mgl32.TransformCoordinate(mgl32.Vec3{p[0], p[1], p[2]}, w)
				box.Extend(v)
				ok = true
			}
		}
	}
	if !ok {
		return Box{}, false
	}
	return box, true
}
