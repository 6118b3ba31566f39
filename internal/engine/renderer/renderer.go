// Package renderer draws the showroom scene with OpenGL: lit textured
// meshes, an optional shadow depth pass, wireframe bounds for debugging,
// and the loading overlay.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/engine/debug"
	"github.com/Faultbox/showroom/internal/engine/lighting"
	"github.com/Faultbox/showroom/internal/engine/shadow"
	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/model"
	"github.com/Faultbox/showroom/internal/viewer"
)

// Config holds renderer configuration.
type Config struct {
	Width        int
	Height       int
	EnableShadow bool
	BarColor     string // progress bar fill, hex
}

// Renderer owns the GL programs and per-asset GPU buffers.
type Renderer struct {
	config Config

	modelProg   *modelProgram
	depthProg   *depthProgram
	lineProg    *lineProgram
	overlayProg *overlayProgram

	shadowMap *shadow.Map
	fallback  uint32
	barColor  [4]float32

	assets map[*model.Asset]*gpuAsset
}

// DrawParams carries the per-frame camera and light state.
type DrawParams struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Sun        lighting.Sun
	ShowBounds bool
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		barColor: [4]float32{0.29, 0.56, 0.85, 1},
		assets:   make(map[*model.Asset]*gpuAsset),
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0) // Dark blue-gray background

	var err error
	if r.modelProg, err = newModelProgram(); err != nil {
		return nil, fmt.Errorf("model program: %w", err)
	}
	if r.depthProg, err = newDepthProgram(); err != nil {
		return nil, fmt.Errorf("depth program: %w", err)
	}
	if r.lineProg, err = newLineProgram(); err != nil {
		return nil, fmt.Errorf("line program: %w", err)
	}
	if r.overlayProg, err = newOverlayProgram(); err != nil {
		return nil, fmt.Errorf("overlay program: %w", err)
	}

	r.fallback = createFallbackTexture()

	if cfg.BarColor != "" {
		c, err := ParseHexColor(cfg.BarColor)
		if err != nil {
			logger.Warn("bad progress bar color, using default", zap.String("color", cfg.BarColor))
		} else {
			r.barColor = c
		}
	}

	if cfg.EnableShadow {
		sm, err := shadow.NewMap(shadow.DefaultResolution)
		if err != nil {
			logger.Warn("shadow map unavailable, shadows disabled", zap.Error(err))
		} else {
			r.shadowMap = sm
		}
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.sweep(nil)
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.fallback != 0 {
		gl.DeleteTextures(1, &r.fallback)
	}
	r.modelProg.destroy()
	r.depthProg.destroy()
	r.lineProg.destroy()
	r.overlayProg.destroy()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders one frame of the scene. It uploads assets new to the GPU,
// evicts assets no longer resident, runs the shadow depth pass when
// enabled, then the lit pass, then the wireframe bounds.
func (r *Renderer) Draw(items []viewer.DrawItem, p DrawParams) {
	live := make(map[*model.Asset]bool, len(items))
	for _, it := range items {
		live[it.Asset] = true
		r.upload(it.Asset)
	}
	r.sweep(live)

	if len(items) == 0 {
		return
	}

	lightMatrix := mgl32.Ident4()
	shadows := false
	if r.shadowMap != nil && anyCaster(items) {
		lightMatrix = shadow.DirectionalLightMatrix(p.Sun.Direction, sceneBounds(items))
		r.depthPass(items, lightMatrix)
		shadows = true
	}

	r.mainPass(items, p, lightMatrix, shadows)

	if p.ShowBounds {
		r.boundsPass(items, p)
	}
}

// CapturePixels reads back the current framebuffer, bottom row first.
// Call after drawing and before the buffer swap.
func (r *Renderer) CapturePixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

func (r *Renderer) depthPass(items []viewer.DrawItem, lightMatrix mgl32.Mat4) {
	r.shadowMap.Bind()
	gl.UseProgram(r.depthProg.id)
	gl.UniformMatrix4fv(r.depthProg.locLightMatrix, 1, false, &lightMatrix[0])

	for _, it := range items {
		ga := r.assets[it.Asset]
		if ga == nil {
			continue
		}
		for _, d := range ga.draws {
			if !it.Asset.Meshes[d.mesh].CastShadow {
				continue
			}
			world := it.World[d.node]
			gl.UniformMatrix4fv(r.depthProg.locModel, 1, false, &world[0])
			for _, gp := range ga.meshes[d.mesh].primitives {
				gl.BindVertexArray(gp.vao)
				gl.DrawElements(gl.TRIANGLES, gp.indexCount, gl.UNSIGNED_INT, nil)
			}
		}
	}

	gl.BindVertexArray(0)
	r.shadowMap.Unbind()
}

func (r *Renderer) mainPass(items []viewer.DrawItem, p DrawParams, lightMatrix mgl32.Mat4, shadows bool) {
	gl.UseProgram(r.modelProg.id)

	gl.UniformMatrix4fv(r.modelProg.locView, 1, false, &p.View[0])
	gl.UniformMatrix4fv(r.modelProg.locProjection, 1, false, &p.Projection[0])
	gl.UniformMatrix4fv(r.modelProg.locLightMatrix, 1, false, &lightMatrix[0])

	dir := p.Sun.Direction
	diffuse := p.Sun.DiffuseColor()
	ambient := p.Sun.AmbientColor()
	gl.Uniform3f(r.modelProg.locLightDir, dir.X(), dir.Y(), dir.Z())
	gl.Uniform3f(r.modelProg.locDiffuse, diffuse[0], diffuse[1], diffuse[2])
	gl.Uniform3f(r.modelProg.locAmbient, ambient[0], ambient[1], ambient[2])

	gl.Uniform1i(r.modelProg.locTexture, 0)
	gl.Uniform1i(r.modelProg.locShadowMap, 1)
	if shadows {
		r.shadowMap.BindTexture(gl.TEXTURE1)
	}

	// Alpha blending for transparent textures
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ActiveTexture(gl.TEXTURE0)

	for _, it := range items {
		ga := r.assets[it.Asset]
		if ga == nil {
			continue
		}
		for _, d := range ga.draws {
			mesh := it.Asset.Meshes[d.mesh]
			world := it.World[d.node]
			gl.UniformMatrix4fv(r.modelProg.locModel, 1, false, &world[0])

			shadowed := int32(0)
			if shadows && mesh.ReceiveShadow {
				shadowed = 1
			}
			gl.Uniform1i(r.modelProg.locShadowed, shadowed)

			for _, gp := range ga.meshes[d.mesh].primitives {
				r.bindMaterial(it.Asset, ga, gp.material)
				gl.BindVertexArray(gp.vao)
				gl.DrawElements(gl.TRIANGLES, gp.indexCount, gl.UNSIGNED_INT, nil)
			}
		}
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
}

func (r *Renderer) bindMaterial(a *model.Asset, ga *gpuAsset, idx int) {
	color := [4]float32{1, 1, 1, 1}
	unlit := int32(0)
	tex := r.fallback

	if idx >= 0 && idx < len(a.Materials) {
		mat := a.Materials[idx]
		color = mat.BaseColor
		if mat.Unlit {
			unlit = 1
		}
		if mat.Texture >= 0 && mat.Texture < len(ga.textures) && ga.textures[mat.Texture] != 0 {
			tex = ga.textures[mat.Texture]
		}
	}

	gl.Uniform4f(r.modelProg.locBaseColor, color[0], color[1], color[2], color[3])
	gl.Uniform1i(r.modelProg.locUnlit, unlit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

// boundsPass draws each instance's box as wireframe lines.
func (r *Renderer) boundsPass(items []viewer.DrawItem, p DrawParams) {
	gl.UseProgram(r.lineProg.id)
	gl.UniformMatrix4fv(r.lineProg.locView, 1, false, &p.View[0])
	gl.UniformMatrix4fv(r.lineProg.locProjection, 1, false, &p.Projection[0])
	gl.Uniform4f(r.lineProg.locColor, 0.3, 1.0, 0.4, 1.0)

	gl.BindVertexArray(r.lineProg.vao)
	for _, it := range items {
		verts := debug.TransformedWireframeVertices(it.Bounds.Min, it.Bounds.Max, it.Root)
		gl.BindBuffer(gl.ARRAY_BUFFER, r.lineProg.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)
		gl.DrawArrays(gl.LINES, 0, debug.WireframeVertexCount)
	}
	gl.BindVertexArray(0)
}

func anyCaster(items []viewer.DrawItem) bool {
	for _, it := range items {
		for _, m := range it.Asset.Meshes {
			if m.CastShadow {
				return true
			}
		}
	}
	return false
}

// sceneBounds unions every instance's rest-pose box under its root
// transform, for sizing the shadow volume.
func sceneBounds(items []viewer.DrawItem) model.Box {
	const big = 1e30
	box := model.Box{
		Min: mgl32.Vec3{big, big, big},
		Max: mgl32.Vec3{-big, -big, -big},
	}
	for _, it := range items {
		for i := 0; i < 8; i++ {
			c := it.Bounds.Min
			if i&1 != 0 {
				c[0] = it.Bounds.Max.X()
			}
			if i&2 != 0 {
				c[1] = it.Bounds.Max.Y()
			}
			if i&4 != 0 {
				c[2] = it.Bounds.Max.Z()
			}
			box.Extend(mgl32.TransformCoordinate(c, it.Root))
		}
	}
	return box
}
