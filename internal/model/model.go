// Package model defines the in-memory representation of a loaded 3D asset:
// a node hierarchy with meshes, materials, and animation clips, as produced
// by the glTF decoder and consumed by the viewer core and the renderer.
package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Asset is a decoded mesh hierarchy plus zero or more animation clips.
// Nodes form a forest; parent/child links are indices into Nodes.
type Asset struct {
	// Name identifies the asset in logs and tooling, usually the source path.
	Name string

	Nodes     []*Node
	Roots     []int
	Meshes    []*Mesh
	Materials []Material
	Images    []Image
	Clips     []*Clip
}

// Node is one element of the asset's transform hierarchy.
type Node struct {
	Name     string
	Parent   int // index into Asset.Nodes, -1 for roots
	Children []int
	Mesh     int // index into Asset.Meshes, -1 if none

	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	// Some files author a node as a raw matrix instead of TRS. Animated
	// nodes never do (the format forbids it), so channels always write TRS.
	HasMatrix bool
	Matrix    mgl32.Mat4
}

// Local returns the node's local transform.
func (n *Node) Local() mgl32.Mat4 {
	if n.HasMatrix {
		return n.Matrix
	}
	t := mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z())
	r := n.Rotation.Mat4()
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Mesh is a named group of primitives sharing one node.
type Mesh struct {
	Name       string
	Primitives []*Primitive

	// Shadow participation, set per session configuration when the asset
	// is placed in the scene.
	CastShadow    bool
	ReceiveShadow bool
}

// Primitive is one drawable batch: positions plus optional normals, texture
// coordinates, and indices, bound to one material.
type Primitive struct {
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Indices   []uint32
	Material  int // index into Asset.Materials, -1 if none
}

// Material carries the shading subset the renderer supports: a base color
// factor and an optional base color texture.
type Material struct {
	Name      string
	BaseColor [4]float32
	Texture   int // index into Asset.Images, -1 if none
	Unlit     bool
}

// Image is an embedded texture payload, still encoded (PNG or JPEG).
type Image struct {
	Name string
	MIME string
	Data []byte
}

// ChannelPath selects which transform component an animation channel drives.
type ChannelPath uint8

const (
	PathTranslation ChannelPath = iota
	PathRotation
	PathScale
)

// Clip is a named animation: a set of channels with a common duration.
type Clip struct {
	Name     string
	Duration float32 // seconds, max keyframe time across channels
	Channels []Channel
}

// Channel drives one path of one node from a keyframe track. Rotation
// channels fill Quats; translation and scale channels fill Vecs.
type Channel struct {
	Node  int
	Path  ChannelPath
	Times []float32
	Vecs  [][3]float32
	Quats [][4]float32
	Step  bool // step interpolation instead of linear
}

// WorldMatrices returns a world transform per node, computed root-down with
// pre applied above every root. The slice is indexed like Asset.Nodes.
func (a *Asset) WorldMatrices(pre mgl32.Mat4) []mgl32.Mat4 {
	world := make([]mgl32.Mat4, len(a.Nodes))
	var walk func(idx int, parent mgl32.Mat4)
	walk = func(idx int, parent mgl32.Mat4) {
		w := parent.Mul4(a.Nodes[idx].Local())
		world[idx] = w
		for _, c := range a.Nodes[idx].Children {
			walk(c, w)
		}
	}
	for _, r := range a.Roots {
		walk(r, pre)
	}
	return world
}

// HasAnimation reports whether the asset carries any clip with more than a
// single keyframe. Single-key clips are static poses, not animations.
func (a *Asset) HasAnimation() bool {
	for _, c := range a.Clips {
		for _, ch := range c.Channels {
			if len(ch.Times) > 1 {
				return true
			}
		}
	}
	return false
}

// SetShadowFlags marks every mesh as shadow caster/receiver.
func (a *Asset) SetShadowFlags(cast, receive bool) {
	for _, m := range a.Meshes {
		m.CastShadow = cast
		m.ReceiveShadow = receive
	}
}

// TriangleCount returns the total triangle count across all primitives.
func (a *Asset) TriangleCount() int {
	n := 0
	for _, m := range a.Meshes {
		for _, p := range m.Primitives {
			n += len(p.Indices) / 3
		}
	}
	return n
}
