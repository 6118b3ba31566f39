// Package debug provides debug visualization utilities.
package debug

import "github.com/go-gl/mathgl/mgl32"

// WireframeVertexCount is the number of vertices in a box wireframe
// (12 edges x 2 endpoints).
const WireframeVertexCount = 24

// boxEdges indexes the corner table: bottom ring, top ring, verticals.
var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// boxCorners returns the eight corners of the box spanning min..max.
// Bit 0 selects X, bit 1 selects Z, bit 2 selects Y, so corners 0-3 form
// the bottom face and 4-7 the top.
func boxCorners(min, max mgl32.Vec3) [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		x := min.X()
		if i&1 != 0 {
			x = max.X()
		}
		z := min.Z()
		if i&2 != 0 {
			z = max.Z()
		}
		y := min.Y()
		if i&4 != 0 {
			y = max.Y()
		}
		c[i] = mgl32.Vec3{x, y, z}
	}
	return c
}

// WireframeVertices creates line-list vertices for the box spanning
// min..max. Returns 24 vertices as x,y,z triples, one pair per edge.
func WireframeVertices(min, max mgl32.Vec3) []float32 {
	return edgesToVertices(boxCorners(min, max))
}

// TransformedWireframeVertices transforms the box corners by m before
// emitting edges, so a rotated box stays tight instead of being re-fit
// to the world axes.
func TransformedWireframeVertices(min, max mgl32.Vec3, m mgl32.Mat4) []float32 {
	c := boxCorners(min, max)
	for i := range c {
		c[i] = mgl32.TransformCoordinate(c[i], m)
	}
	return edgesToVertices(c)
}

func edgesToVertices(c [8]mgl32.Vec3) []float32 {
	out := make([]float32, 0, WireframeVertexCount*3)
	for _, e := range boxEdges {
		a, b := c[e[0]], c[e[1]]
		out = append(out, a.X(), a.Y(), a.Z(), b.X(), b.Y(), b.Z())
	}
	return out
}
