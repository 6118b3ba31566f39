package model

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

func packLE(t *testing.T, v any) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		t.Fatalf("packing %T: %v", v, err)
	}
	return buf.Bytes()
}

// triangleDoc builds a minimal single-triangle document: one buffer holding
// positions and uint16 indices, one mesh, one node, one scene.
func triangleDoc(t *testing.T, positions [][3]float32) *gltf.Document {
	t.Helper()
	posBytes := packLE(t, positions)
	idxBytes := packLE(t, []uint16{0, 1, 2})
	raw := append(append([]byte{}, posBytes...), idxBytes...)

	return &gltf.Document{
		Buffers: []*gltf.Buffer{
			{ByteLength: uint32(len(raw)), Data: raw},
		},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: uint32(len(posBytes))},
			{Buffer: 0, ByteOffset: uint32(len(posBytes)), ByteLength: uint32(len(idxBytes))},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: uint32(len(positions)), Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]uint32{gltf.POSITION: 0},
				Indices:    gltf.Index(1),
				Mode:       gltf.PrimitiveTriangles,
			}},
		}},
		Nodes:  []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}},
		Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
		Scene:  gltf.Index(0),
	}
}

// appendFloatAccessor writes vals into a fresh buffer and registers an
// accessor of the given type for it, returning the accessor index.
func appendFloatAccessor(t *testing.T, doc *gltf.Document, typ gltf.AccessorType, count int, vals any) uint32 {
	t.Helper()
	raw := packLE(t, vals)
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{ByteLength: uint32(len(raw)), Data: raw})
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer:     uint32(len(doc.Buffers) - 1),
		ByteLength: uint32(len(raw)),
	})
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(uint32(len(doc.BufferViews) - 1)),
		ComponentType: gltf.ComponentFloat,
		Count:         uint32(count),
		Type:          typ,
	})
	return uint32(len(doc.Accessors) - 1)
}

func TestFromDocumentTriangle(t *testing.T) {
	doc := triangleDoc(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})

	asset, err := FromDocument(doc, "tri.glb")
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}

	if got := len(asset.Meshes); got != 1 {
		t.Fatalf("len(Meshes) = %d, want 1", got)
	}
	prims := asset.Meshes[0].Primitives
	if len(prims) != 1 {
		t.Fatalf("len(Primitives) = %d, want 1", len(prims))
	}
	if got := len(prims[0].Positions); got != 3 {
		t.Errorf("len(Positions) = %d, want 3", got)
	}
	if want := [3]float32{1, 0, 0}; prims[0].Positions[1] != want {
		t.Errorf("Positions[1] = %v, want %v", prims[0].Positions[1], want)
	}
	wantIdx := []uint32{0, 1, 2}
	for i, idx := range prims[0].Indices {
		if idx != wantIdx[i] {
			t.Errorf("Indices[%d] = %d, want %d", i, idx, wantIdx[i])
		}
	}
	if got := asset.TriangleCount(); got != 1 {
		t.Errorf("TriangleCount() = %d, want 1", got)
	}
	if len(asset.Roots) != 1 || asset.Roots[0] != 0 {
		t.Errorf("Roots = %v, want [0]", asset.Roots)
	}

	// Zero-value TRS from a hand-built document maps to identity.
	n := asset.Nodes[0]
	if n.Rotation.W != 1 {
		t.Errorf("zero rotation not mapped to identity: %v", n.Rotation)
	}
	if want := (mgl32.Vec3{1, 1, 1}); n.Scale != want {
		t.Errorf("zero scale not mapped to unit: %v", n.Scale)
	}
	if n.Mesh != 0 {
		t.Errorf("node mesh = %d, want 0", n.Mesh)
	}
}

func TestFromDocumentNoGeometry(t *testing.T) {
	doc := &gltf.Document{
		Meshes: []*gltf.Mesh{{Name: "empty"}},
		Nodes:  []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}},
	}
	if _, err := FromDocument(doc, "empty.glb"); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("FromDocument() error = %v, want ErrNoGeometry", err)
	}
}

func TestFromDocumentSkipsNonTriangles(t *testing.T) {
	doc := triangleDoc(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes[0].Primitives = append(doc.Meshes[0].Primitives, &gltf.Primitive{
		Attributes: map[string]uint32{gltf.POSITION: 0},
		Mode:       gltf.PrimitivePoints,
	})

	asset, err := FromDocument(doc, "mixed.glb")
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	if got := len(asset.Meshes[0].Primitives); got != 1 {
		t.Errorf("len(Primitives) = %d, want 1 (points primitive should be skipped)", got)
	}
}

func TestFromDocumentLinearIndexFallback(t *testing.T) {
	doc := triangleDoc(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes[0].Primitives[0].Indices = nil

	asset, err := FromDocument(doc, "noindex.glb")
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	got := asset.Meshes[0].Primitives[0].Indices
	want := []uint32{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("len(Indices) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Indices[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFromDocumentHierarchy(t *testing.T) {
	doc := triangleDoc(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	child := &gltf.Node{Name: "child", Mesh: gltf.Index(0)}
	doc.Nodes = append(doc.Nodes, child)
	doc.Nodes[0].Children = append(doc.Nodes[0].Children, 1)
	// Malformed scenes sometimes list children as roots too.
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 1)

	asset, err := FromDocument(doc, "tree.glb")
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	if len(asset.Roots) != 1 || asset.Roots[0] != 0 {
		t.Errorf("Roots = %v, want [0]", asset.Roots)
	}
	if got := asset.Nodes[1].Parent; got != 0 {
		t.Errorf("child parent = %d, want 0", got)
	}
	if got := asset.Nodes[0].Children; len(got) != 1 || got[0] != 1 {
		t.Errorf("root children = %v, want [1]", got)
	}
}

func TestFromDocumentAnimations(t *testing.T) {
	doc := triangleDoc(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})

	times := appendFloatAccessor(t, doc, gltf.AccessorScalar, 3, []float32{0, 0.5, 1})
	trans := appendFloatAccessor(t, doc, gltf.AccessorVec3, 3, [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0},
	})
	// Cubic-spline rotation: in-tangent, value, out-tangent per keyframe.
	rotTimes := appendFloatAccessor(t, doc, gltf.AccessorScalar, 2, []float32{0, 2})
	rot := appendFloatAccessor(t, doc, gltf.AccessorVec4, 6, [][4]float32{
		{9, 9, 9, 9}, {0, 0, 0, 1}, {9, 9, 9, 9},
		{9, 9, 9, 9}, {0, 0.707, 0, 0.707}, {9, 9, 9, 9},
	})

	doc.Animations = []*gltf.Animation{{
		Name: "spin",
		Channels: []*gltf.Channel{
			{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(0), Path: gltf.TRSTranslation}},
			{Sampler: gltf.Index(1), Target: gltf.ChannelTarget{Node: gltf.Index(0), Path: gltf.TRSRotation}},
			{Sampler: gltf.Index(2), Target: gltf.ChannelTarget{Node: gltf.Index(0), Path: gltf.TRSScale}},
			// No sampler reference; must be skipped, not dereferenced.
			{Target: gltf.ChannelTarget{Node: gltf.Index(0), Path: gltf.TRSTranslation}},
		},
		Samplers: []*gltf.AnimationSampler{
			{Input: times, Output: trans, Interpolation: gltf.InterpolationStep},
			{Input: rotTimes, Output: rot, Interpolation: gltf.InterpolationCubicSpline},
			{Input: times, Output: trans, Interpolation: gltf.InterpolationLinear},
		},
	}}

	asset, err := FromDocument(doc, "anim.glb")
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	if len(asset.Clips) != 1 {
		t.Fatalf("len(Clips) = %d, want 1", len(asset.Clips))
	}
	clip := asset.Clips[0]
	if clip.Name != "spin" {
		t.Errorf("clip name = %q, want %q", clip.Name, "spin")
	}
	if clip.Duration != 2 {
		t.Errorf("clip duration = %v, want 2", clip.Duration)
	}
	if len(clip.Channels) != 3 {
		t.Fatalf("len(Channels) = %d, want 3", len(clip.Channels))
	}

	ch := clip.Channels[0]
	if ch.Path != PathTranslation || !ch.Step {
		t.Errorf("channel 0 = path %d step %v, want translation step", ch.Path, ch.Step)
	}
	if want := [3]float32{1, 0, 0}; ch.Vecs[1] != want {
		t.Errorf("translation key 1 = %v, want %v", ch.Vecs[1], want)
	}

	// Cubic-spline tracks keep only the value element of each triple.
	ch = clip.Channels[1]
	if ch.Path != PathRotation {
		t.Fatalf("channel 1 path = %d, want rotation", ch.Path)
	}
	if len(ch.Quats) != 2 {
		t.Fatalf("len(Quats) = %d, want 2", len(ch.Quats))
	}
	if want := [4]float32{0, 0, 0, 1}; ch.Quats[0] != want {
		t.Errorf("rotation key 0 = %v, want %v", ch.Quats[0], want)
	}
	if want := [4]float32{0, 0.707, 0, 0.707}; ch.Quats[1] != want {
		t.Errorf("rotation key 1 = %v, want %v", ch.Quats[1], want)
	}

	if got := clip.Channels[2].Path; got != PathScale {
		t.Errorf("channel 2 path = %d, want scale", got)
	}
	if !asset.HasAnimation() {
		t.Error("HasAnimation() = false, want true")
	}
}

func TestAccessorVec3Stride(t *testing.T) {
	// Interleaved layout: each 16-byte element is a vec3 plus 4 bytes of
	// padding.
	raw := make([]byte, 0, 32)
	raw = append(raw, packLE(t, [4]float32{1, 2, 3, 99})...)
	raw = append(raw, packLE(t, [4]float32{4, 5, 6, 99})...)

	doc := &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: uint32(len(raw)), Data: raw}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteLength: uint32(len(raw)), ByteStride: 16},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 2, Type: gltf.AccessorVec3},
		},
	}

	got, err := accessorVec3(doc, 0)
	if err != nil {
		t.Fatalf("accessorVec3() error = %v", err)
	}
	want := [][3]float32{{1, 2, 3}, {4, 5, 6}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAccessorErrors(t *testing.T) {
	doc := &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: 4, Data: []byte{0, 0, 0, 0}}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteLength: 4},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentUshort, Count: 2, Type: gltf.AccessorScalar},
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 9, Type: gltf.AccessorVec3},
		},
	}

	if _, err := accessorFloats(doc, 0); err == nil {
		t.Error("accessorFloats() on ushort accessor: want error")
	}
	if _, err := accessorVec3(doc, 1); err == nil {
		t.Error("accessorVec3() on truncated accessor: want error")
	}
	if _, err := accessorFloats(doc, 7); err == nil {
		t.Error("accessorFloats() out of range: want error")
	}
}

func TestFromDocumentMaterials(t *testing.T) {
	doc := triangleDoc(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{
		{Name: "plain"},
		{
			Name: "textured",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: 0},
			},
			Extensions: gltf.Extensions{"KHR_materials_unlit": struct{}{}},
		},
	}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(1)

	asset, err := FromDocument(doc, "mat.glb")
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	if len(asset.Materials) != 2 {
		t.Fatalf("len(Materials) = %d, want 2", len(asset.Materials))
	}
	plain := asset.Materials[0]
	if want := [4]float32{1, 1, 1, 1}; plain.BaseColor != want {
		t.Errorf("default base color = %v, want %v", plain.BaseColor, want)
	}
	if plain.Texture != -1 {
		t.Errorf("plain texture = %d, want -1", plain.Texture)
	}
	tex := asset.Materials[1]
	if tex.Texture != 0 {
		t.Errorf("textured material image = %d, want 0", tex.Texture)
	}
	if !tex.Unlit {
		t.Error("unlit extension not detected")
	}
	if got := asset.Meshes[0].Primitives[0].Material; got != 1 {
		t.Errorf("primitive material = %d, want 1", got)
	}
}
