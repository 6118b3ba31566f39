package model

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrNoGeometry is returned for files that decode but contain no triangle
// geometry at all.
var ErrNoGeometry = errors.New("model: no triangle geometry")

var identity16 = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Open reads a .glb or .gltf file from disk. External buffer files referenced
// by .gltf documents are resolved relative to the file.
func Open(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return FromDocument(doc, path)
}

// Decode reads a self-contained .glb (or .gltf with embedded buffers) from
// raw bytes. External buffer references cannot be resolved here.
func Decode(data []byte, name string) (*Asset, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return FromDocument(doc, name)
}

// FromDocument converts a parsed glTF document into an Asset.
func FromDocument(doc *gltf.Document, name string) (*Asset, error) {
	a := &Asset{Name: name}

	if err := convertMeshes(doc, a); err != nil {
		return nil, err
	}
	convertMaterials(doc, a)
	convertImages(doc, a)
	convertNodes(doc, a)
	if err := convertAnimations(doc, a); err != nil {
		return nil, err
	}

	if a.TriangleCount() == 0 {
		return nil, ErrNoGeometry
	}
	return a, nil
}

func convertMeshes(doc *gltf.Document, a *Asset) error {
	for _, mesh := range doc.Meshes {
		out := &Mesh{Name: mesh.Name}
		for _, primitive := range mesh.Primitives {
			// Only triangle lists are drawable here.
			if primitive.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := primitive.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return fmt.Errorf("mesh %q positions: %w", mesh.Name, err)
			}

			var normals [][3]float32
			if normIdx, ok := primitive.Attributes[gltf.NORMAL]; ok {
				normals, _ = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			}

			var texCoords [][2]float32
			if texIdx, ok := primitive.Attributes[gltf.TEXCOORD_0]; ok {
				texCoords, _ = modeler.ReadTextureCoord(doc, doc.Accessors[texIdx], nil)
			}

			var indices []uint32
			if primitive.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
				if err != nil {
					return fmt.Errorf("mesh %q indices: %w", mesh.Name, err)
				}
			} else {
				indices = make([]uint32, len(positions))
				for k := range indices {
					indices[k] = uint32(k)
				}
			}

			material := -1
			if primitive.Material != nil {
				material = int(*primitive.Material)
			}

			out.Primitives = append(out.Primitives, &Primitive{
				Positions: positions,
				Normals:   normals,
				TexCoords: texCoords,
				Indices:   indices,
				Material:  material,
			})
		}
		a.Meshes = append(a.Meshes, out)
	}
	return nil
}

func convertMaterials(doc *gltf.Document, a *Asset) {
	for _, m := range doc.Materials {
		mat := Material{
			Name:      m.Name,
			BaseColor: [4]float32{1, 1, 1, 1},
			Texture:   -1,
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				f := *pbr.BaseColorFactor
				mat.BaseColor = [4]float32{
					float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3]),
				}
			}
			if pbr.BaseColorTexture != nil {
				texIdx := int(pbr.BaseColorTexture.Index)
				if texIdx >= 0 && texIdx < len(doc.Textures) {
					if src := doc.Textures[texIdx].Source; src != nil {
						mat.Texture = int(*src)
					}
				}
			}
		}
		if _, ok := m.Extensions["KHR_materials_unlit"]; ok {
			mat.Unlit = true
		}
		a.Materials = append(a.Materials, mat)
	}
}

func convertImages(doc *gltf.Document, a *Asset) {
	for _, img := range doc.Images {
		out := Image{Name: img.Name, MIME: img.MimeType}
		// Only buffer-view payloads are carried; URI-referenced images are
		// left empty and the renderer falls back to the base color.
		if img.BufferView != nil {
			if data, err := bufferViewData(doc, int(*img.BufferView)); err == nil {
				out.Data = append([]byte(nil), data...)
			}
		}
		a.Images = append(a.Images, out)
	}
}

func convertNodes(doc *gltf.Document, a *Asset) {
	a.Nodes = make([]*Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		node := &Node{
			Name:        n.Name,
			Parent:      -1,
			Mesh:        -1,
			Translation: mgl32.Vec3{float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2])},
			Scale:       mgl32.Vec3{float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2])},
		}
		// The format stores quaternions as (x, y, z, w).
		rot := [4]float32{float32(n.Rotation[0]), float32(n.Rotation[1]), float32(n.Rotation[2]), float32(n.Rotation[3])}
		if rot == ([4]float32{}) {
			node.Rotation = mgl32.QuatIdent()
		} else {
			node.Rotation = mgl32.Quat{W: rot[3], V: mgl32.Vec3{rot[0], rot[1], rot[2]}}
		}
		if node.Scale == (mgl32.Vec3{}) {
			node.Scale = mgl32.Vec3{1, 1, 1}
		}

		var m [16]float32
		for k := 0; k < 16; k++ {
			m[k] = float32(n.Matrix[k])
		}
		if m != ([16]float32{}) && m != identity16 {
			node.HasMatrix = true
			// Column-major, same layout mgl32 uses.
			node.Matrix = mgl32.Mat4(m)
		}

		if n.Mesh != nil {
			mi := int(*n.Mesh)
			if mi >= 0 && mi < len(a.Meshes) {
				node.Mesh = mi
			}
		}
		a.Nodes[i] = node
	}

	// Wire parents. First parent wins; a child claimed twice (malformed
	// file) keeps its first parent so the walk below stays acyclic.
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			ci := int(c)
			if ci < 0 || ci >= len(a.Nodes) || ci == i {
				continue
			}
			if a.Nodes[ci].Parent != -1 {
				continue
			}
			a.Nodes[ci].Parent = i
			a.Nodes[i].Children = append(a.Nodes[i].Children, ci)
		}
	}

	// Roots come from the default scene when present, otherwise from the
	// hierarchy itself.
	var candidates []int
	switch {
	case doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes):
		for _, n := range doc.Scenes[*doc.Scene].Nodes {
			candidates = append(candidates, int(n))
		}
	case len(doc.Scenes) > 0:
		for _, n := range doc.Scenes[0].Nodes {
			candidates = append(candidates, int(n))
		}
	default:
		for i := range a.Nodes {
			candidates = append(candidates, i)
		}
	}
	for _, idx := range candidates {
		if idx >= 0 && idx < len(a.Nodes) && a.Nodes[idx].Parent == -1 {
			a.Roots = append(a.Roots, idx)
		}
	}
}

func convertAnimations(doc *gltf.Document, a *Asset) error {
	for i, anim := range doc.Animations {
		clip := &Clip{Name: anim.Name}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("clip_%d", i)
		}
		for _, ch := range anim.Channels {
			if ch.Target.Node == nil {
				continue
			}
			nodeIdx := int(*ch.Target.Node)
			if nodeIdx < 0 || nodeIdx >= len(a.Nodes) {
				continue
			}
			if ch.Sampler == nil {
				continue
			}
			si := int(*ch.Sampler)
			if si < 0 || si >= len(anim.Samplers) {
				continue
			}
			sampler := anim.Samplers[si]

			times, err := accessorFloats(doc, int(sampler.Input))
			if err != nil {
				return fmt.Errorf("animation %q input: %w", clip.Name, err)
			}
			if len(times) == 0 {
				continue
			}

			out := Channel{
				Node:  nodeIdx,
				Times: times,
				Step:  sampler.Interpolation == gltf.InterpolationStep,
			}
			cubic := sampler.Interpolation == gltf.InterpolationCubicSpline

			switch ch.Target.Path {
			case gltf.TRSTranslation, gltf.TRSScale:
				vecs, err := accessorVec3(doc, int(sampler.Output))
				if err != nil {
					return fmt.Errorf("animation %q output: %w", clip.Name, err)
				}
				out.Path = PathTranslation
				if ch.Target.Path == gltf.TRSScale {
					out.Path = PathScale
				}
				out.Vecs = keyVec3s(vecs, len(times), cubic)
			case gltf.TRSRotation:
				quats, err := accessorVec4(doc, int(sampler.Output))
				if err != nil {
					return fmt.Errorf("animation %q output: %w", clip.Name, err)
				}
				out.Path = PathRotation
				out.Quats = keyVec4s(quats, len(times), cubic)
			default:
				// Morph target weights are out of scope.
				continue
			}

			n := len(out.Times)
			if len(out.Vecs) > 0 && len(out.Vecs) < n {
				n = len(out.Vecs)
			}
			if len(out.Quats) > 0 && len(out.Quats) < n {
				n = len(out.Quats)
			}
			out.Times = out.Times[:n]
			if out.Vecs != nil {
				out.Vecs = out.Vecs[:n]
			}
			if out.Quats != nil {
				out.Quats = out.Quats[:n]
			}
			if n == 0 {
				continue
			}

			if last := out.Times[n-1]; last > clip.Duration {
				clip.Duration = last
			}
			clip.Channels = append(clip.Channels, out)
		}
		if len(clip.Channels) > 0 {
			a.Clips = append(a.Clips, clip)
		}
	}
	return nil
}

// Cubic-spline output stores in-tangent/value/out-tangent triples per
// keyframe. Only the value is kept, degrading the track to linear.

func keyVec3s(vals [][3]float32, keys int, cubic bool) [][3]float32 {
	if !cubic {
		return vals
	}
	out := make([][3]float32, 0, keys)
	for i := 0; i < keys && i*3+1 < len(vals); i++ {
		out = append(out, vals[i*3+1])
	}
	return out
}

func keyVec4s(vals [][4]float32, keys int, cubic bool) [][4]float32 {
	if !cubic {
		return vals
	}
	out := make([][4]float32, 0, keys)
	for i := 0; i < keys && i*3+1 < len(vals); i++ {
		out = append(out, vals[i*3+1])
	}
	return out
}

func bufferViewData(doc *gltf.Document, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	bv := doc.BufferViews[idx]
	bi := int(bv.Buffer)
	if bi < 0 || bi >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bi)
	}
	data := doc.Buffers[bi].Data
	off, ln := int(bv.ByteOffset), int(bv.ByteLength)
	if off+ln > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer (%d+%d > %d)", idx, off, ln, len(data))
	}
	return data[off : off+ln], nil
}

// accessorRaw returns the accessor's packed payload along with its element
// stride and count. Only float32 components are supported; animation tracks
// never use the normalized-integer encodings in files this viewer targets.
func accessorRaw(doc *gltf.Document, idx, elemSize int) (data []byte, stride, count int, err error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, 0, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.ComponentType != gltf.ComponentFloat {
		return nil, 0, 0, fmt.Errorf("accessor %d: unsupported component type", idx)
	}
	if acc.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor %d: no buffer view", idx)
	}
	view, err := bufferViewData(doc, int(*acc.BufferView))
	if err != nil {
		return nil, 0, 0, err
	}
	stride = int(doc.BufferViews[int(*acc.BufferView)].ByteStride)
	if stride == 0 {
		stride = elemSize
	}
	count = int(acc.Count)
	off := int(acc.ByteOffset)
	if off > len(view) {
		return nil, 0, 0, fmt.Errorf("accessor %d: offset exceeds view", idx)
	}
	data = view[off:]
	if count > 0 && (count-1)*stride+elemSize > len(data) {
		return nil, 0, 0, fmt.Errorf("accessor %d: truncated data", idx)
	}
	return data, stride, count, nil
}

func f32at(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func accessorFloats(doc *gltf.Document, idx int) ([]float32, error) {
	data, stride, count, err := accessorRaw(doc, idx, 4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		out[i] = f32at(data, i*stride)
	}
	return out, nil
}

func accessorVec3(doc *gltf.Document, idx int) ([][3]float32, error) {
	data, stride, count, err := accessorRaw(doc, idx, 12)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, count)
	for i := 0; i < count; i++ {
		base := i * stride
		out[i] = [3]float32{f32at(data, base), f32at(data, base+4), f32at(data, base+8)}
	}
	return out, nil
}

func accessorVec4(doc *gltf.Document, idx int) ([][4]float32, error) {
	data, stride, count, err := accessorRaw(doc, idx, 16)
	if err != nil {
		return nil, err
	}
	out := make([][4]float32, count)
	for i := 0; i < count; i++ {
		base := i * stride
		out[i] = [4]float32{f32at(data, base), f32at(data, base+4), f32at(data, base+8), f32at(data, base+12)}
	}
	return out, nil
}
