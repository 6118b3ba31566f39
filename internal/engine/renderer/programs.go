package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/showroom/internal/engine/shader"
)

const modelVertexSource = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat4 uLightMatrix;

out vec3 vNormal;
out vec2 vTexCoord;
out vec4 vLightSpacePos;

void main() {
    vNormal = mat3(uModel) * aNormal;
    vTexCoord = aTexCoord;
    vec4 worldPos = uModel * vec4(aPosition, 1.0);
    vLightSpacePos = uLightMatrix * worldPos;
    gl_Position = uProjection * uView * worldPos;
}
`

const modelFragmentSource = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;
in vec4 vLightSpacePos;

uniform sampler2D uTexture;
uniform sampler2DShadow uShadowMap;
uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;
uniform vec4 uBaseColor;
uniform int uUnlit;
uniform int uShadowed;

out vec4 FragColor;

float shadowFactor() {
    if (uShadowed == 0) {
        return 1.0;
    }
    vec3 coords = vLightSpacePos.xyz / vLightSpacePos.w * 0.5 + 0.5;
    if (coords.z > 1.0) {
        return 1.0;
    }
    return texture(uShadowMap, vec3(coords.xy, coords.z - 0.002));
}

void main() {
    vec4 base = texture(uTexture, vTexCoord) * uBaseColor;
    if (uUnlit == 1) {
        FragColor = base;
        return;
    }
    vec3 normal = normalize(vNormal);
    vec3 lightDir = normalize(uLightDir);
    float diff = max(dot(normal, lightDir), 0.0);
    vec3 lit = (uAmbient + diff * uDiffuse * shadowFactor()) * base.rgb;
    FragColor = vec4(lit, base.a);
}
`

const depthVertexSource = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uModel;
uniform mat4 uLightMatrix;

void main() {
    gl_Position = uLightMatrix * uModel * vec4(aPosition, 1.0);
}
`

const depthFragmentSource = `#version 410 core
void main() {
}
`

const lineVertexSource = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uView;
uniform mat4 uProjection;

void main() {
    gl_Position = uProjection * uView * vec4(aPosition, 1.0);
}
`

const overlayVertexSource = `#version 410 core
layout (location = 0) in vec2 aPosition;

void main() {
    gl_Position = vec4(aPosition, 0.0, 1.0);
}
`

// flatFragmentSource colors every fragment with one uniform, shared by
// the line and overlay programs.
const flatFragmentSource = `#version 410 core
uniform vec4 uColor;

out vec4 FragColor;

void main() {
    FragColor = uColor;
}
`

type modelProgram struct {
	id uint32

	locModel       int32
	locView        int32
	locProjection  int32
	locLightMatrix int32
	locLightDir    int32
	locAmbient     int32
	locDiffuse     int32
	locBaseColor   int32
	locUnlit       int32
	locShadowed    int32
	locTexture     int32
	locShadowMap   int32
}

func newModelProgram() (*modelProgram, error) {
	id, err := shader.CompileProgram("model", modelVertexSource, modelFragmentSource)
	if err != nil {
		return nil, err
	}
	return &modelProgram{
		id:             id,
		locModel:       shader.MustGetUniform(id, "uModel"),
		locView:        shader.MustGetUniform(id, "uView"),
		locProjection:  shader.MustGetUniform(id, "uProjection"),
		locLightMatrix: shader.GetUniform(id, "uLightMatrix"),
		locLightDir:    shader.GetUniform(id, "uLightDir"),
		locAmbient:     shader.GetUniform(id, "uAmbient"),
		locDiffuse:     shader.GetUniform(id, "uDiffuse"),
		locBaseColor:   shader.GetUniform(id, "uBaseColor"),
		locUnlit:       shader.GetUniform(id, "uUnlit"),
		locShadowed:    shader.GetUniform(id, "uShadowed"),
		locTexture:     shader.GetUniform(id, "uTexture"),
		locShadowMap:   shader.GetUniform(id, "uShadowMap"),
	}, nil
}

func (p *modelProgram) destroy() {
	if p != nil && p.id != 0 {
		gl.DeleteProgram(p.id)
	}
}

type depthProgram struct {
	id uint32

	locModel       int32
	locLightMatrix int32
}

func newDepthProgram() (*depthProgram, error) {
	id, err := shader.CompileProgram("depth", depthVertexSource, depthFragmentSource)
	if err != nil {
		return nil, err
	}
	return &depthProgram{
		id:             id,
		locModel:       shader.MustGetUniform(id, "uModel"),
		locLightMatrix: shader.MustGetUniform(id, "uLightMatrix"),
	}, nil
}

func (p *depthProgram) destroy() {
	if p != nil && p.id != 0 {
		gl.DeleteProgram(p.id)
	}
}

// lineProgram draws wireframe boxes from a dynamic vertex buffer.
type lineProgram struct {
	id uint32

	locView       int32
	locProjection int32
	locColor      int32

	vao uint32
	vbo uint32
}

func newLineProgram() (*lineProgram, error) {
	id, err := shader.CompileProgram("line", lineVertexSource, flatFragmentSource)
	if err != nil {
		return nil, err
	}
	p := &lineProgram{
		id:            id,
		locView:       shader.MustGetUniform(id, "uView"),
		locProjection: shader.MustGetUniform(id, "uProjection"),
		locColor:      shader.GetUniform(id, "uColor"),
	}

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return p, nil
}

func (p *lineProgram) destroy() {
	if p == nil {
		return
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
	}
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
	}
	if p.id != 0 {
		gl.DeleteProgram(p.id)
	}
}

// overlayProgram draws 2D quads in clip space for the loading bar.
type overlayProgram struct {
	id uint32

	locColor int32

	vao uint32
	vbo uint32
}

func newOverlayProgram() (*overlayProgram, error) {
	id, err := shader.CompileProgram("overlay", overlayVertexSource, flatFragmentSource)
	if err != nil {
		return nil, err
	}
	p := &overlayProgram{
		id:       id,
		locColor: shader.GetUniform(id, "uColor"),
	}

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return p, nil
}

func (p *overlayProgram) destroy() {
	if p == nil {
		return
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
	}
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
	}
	if p.id != 0 {
		gl.DeleteProgram(p.id)
	}
}
