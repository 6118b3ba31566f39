package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/model"
)

// meshVertex is the interleaved GPU vertex layout.
type meshVertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

type gpuPrimitive struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	material   int
}

type gpuMesh struct {
	primitives []gpuPrimitive
}

// meshDraw pairs a node index with the mesh it renders, so meshes shared
// by several nodes draw once per referencing node.
type meshDraw struct {
	node int
	mesh int
}

type gpuAsset struct {
	meshes   []*gpuMesh
	draws    []meshDraw
	textures []uint32 // parallel to Asset.Images, 0 means fallback
}

// upload creates GPU buffers and textures for an asset, once. Later
// calls for the same asset return the cached upload.
func (r *Renderer) upload(a *model.Asset) *gpuAsset {
	if ga, ok := r.assets[a]; ok {
		return ga
	}

	ga := &gpuAsset{}
	for _, m := range a.Meshes {
		gm := &gpuMesh{}
		for _, p := range m.Primitives {
			if len(p.Positions) == 0 {
				continue
			}
			vertices, indices := interleave(p)
			gm.primitives = append(gm.primitives, uploadPrimitive(vertices, indices, p.Material))
		}
		ga.meshes = append(ga.meshes, gm)
	}
	for i, n := range a.Nodes {
		if n.Mesh >= 0 {
			ga.draws = append(ga.draws, meshDraw{node: i, mesh: n.Mesh})
		}
	}

	ga.textures = make([]uint32, len(a.Images))
	for i, img := range a.Images {
		tex, err := uploadImage(img)
		if err != nil {
			logger.Warn("texture unusable, using fallback",
				zap.String("asset", a.Name),
				zap.Error(err),
			)
			continue
		}
		ga.textures[i] = tex
	}

	r.assets[a] = ga
	logger.Debug("asset uploaded",
		zap.String("asset", a.Name),
		zap.Int("meshes", len(ga.meshes)),
		zap.Int("textures", len(ga.textures)),
	)
	return ga
}

// sweep releases GPU resources for assets no longer in the scene.
func (r *Renderer) sweep(live map[*model.Asset]bool) {
	for a, ga := range r.assets {
		if live[a] {
			continue
		}
		ga.destroy()
		delete(r.assets, a)
		logger.Debug("asset evicted", zap.String("asset", a.Name))
	}
}

// interleave packs a primitive into the GPU vertex layout. Missing
// normals default to +Y so lighting stays defined; missing texture
// coordinates sample the texture origin.
func interleave(p *model.Primitive) ([]meshVertex, []uint32) {
	vertices := make([]meshVertex, len(p.Positions))
	for i, pos := range p.Positions {
		v := meshVertex{Position: pos, Normal: [3]float32{0, 1, 0}}
		if i < len(p.Normals) {
			v.Normal = p.Normals[i]
		}
		if i < len(p.TexCoords) {
			v.TexCoord = p.TexCoords[i]
		}
		vertices[i] = v
	}

	indices := p.Indices
	if len(indices) == 0 {
		indices = make([]uint32, len(p.Positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return vertices, indices
}

func uploadPrimitive(vertices []meshVertex, indices []uint32, material int) gpuPrimitive {
	gp := gpuPrimitive{material: material, indexCount: int32(len(indices))}
	stride := int32(unsafe.Sizeof(meshVertex{}))

	gl.GenVertexArrays(1, &gp.vao)
	gl.BindVertexArray(gp.vao)

	gl.GenBuffers(1, &gp.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gp.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &gp.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gp.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)

	// TexCoord attribute (location = 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	return gp
}

func (ga *gpuAsset) destroy() {
	for _, gm := range ga.meshes {
		for i := range gm.primitives {
			gp := &gm.primitives[i]
			if gp.vao != 0 {
				gl.DeleteVertexArrays(1, &gp.vao)
			}
			if gp.vbo != 0 {
				gl.DeleteBuffers(1, &gp.vbo)
			}
			if gp.ebo != 0 {
				gl.DeleteBuffers(1, &gp.ebo)
			}
		}
	}
	for _, tex := range ga.textures {
		if tex != 0 {
			gl.DeleteTextures(1, &tex)
		}
	}
}
