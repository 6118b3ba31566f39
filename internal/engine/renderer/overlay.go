package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Progress bar placement in clip space.
const (
	barLeft   = -0.6
	barRight  = 0.6
	barBottom = -0.92
	barTop    = -0.88
)

// ParseHexColor parses "#rgb" and "#rrggbb" into RGBA with full alpha.
// The leading hash is optional.
func ParseHexColor(s string) ([4]float32, error) {
	c := [4]float32{0, 0, 0, 1}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(string(hex[i])+string(hex[i]), 16, 8)
			if err != nil {
				return c, fmt.Errorf("bad hex color %q", s)
			}
			c[i] = float32(v) / 255
		}
	case 6:
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
			if err != nil {
				return c, fmt.Errorf("bad hex color %q", s)
			}
			c[i] = float32(v) / 255
		}
	default:
		return c, fmt.Errorf("bad hex color %q", s)
	}
	return c, nil
}

// DrawProgress draws the loading bar: a dark track with the configured
// fill color covering pct of its width. Call after the 3D passes.
func (r *Renderer) DrawProgress(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(r.overlayProg.id)
	gl.BindVertexArray(r.overlayProg.vao)

	r.drawQuad(barLeft, barBottom, barRight, barTop, [4]float32{0.15, 0.15, 0.18, 0.85})
	fillRight := barLeft + (barRight-barLeft)*float32(pct)/100
	if fillRight > barLeft {
		r.drawQuad(barLeft, barBottom, fillRight, barTop, r.barColor)
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (r *Renderer) drawQuad(x0, y0, x1, y1 float32, color [4]float32) {
	verts := []float32{
		x0, y0, x1, y0, x1, y1,
		x0, y0, x1, y1, x0, y1,
	}
	gl.Uniform4f(r.overlayProg.locColor, color[0], color[1], color[2], color[3])
	gl.BindBuffer(gl.ARRAY_BUFFER, r.overlayProg.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}
