// Package scene uploads built meshes and materials to the GPU and draws
// them with a forward metallic-roughness shader.
package scene

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vnbformat/vnb-go/internal/engine/material"
	"github.com/vnbformat/vnb-go/internal/engine/model"
	"github.com/vnbformat/vnb-go/internal/engine/shader"
	"github.com/vnbformat/vnb-go/pkg/vnb"
)

// Light is the single directional light the renderer shades with.
type Light struct {
	Direction mgl32.Vec3
	Ambient   mgl32.Vec3
}

// Renderer owns the mesh shader program and its uniform locations.
type Renderer struct {
	program uint32

	locMVP         int32
	locModel       int32
	locLightDir    int32
	locAmbient     int32
	locBaseColor   int32
	locMetallic    int32
	locRoughness   int32
	locEmissive    int32
	locAlphaMode   int32
	locAlphaCutoff int32
	locUseTexture  int32
	locTexture     int32

	fallbackTex uint32
}

// Model is an uploaded mesh: GPU buffers, draw groups and the resolved
// materials its groups reference.
type Model struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	groups     []model.DrawGroup
	materials  []material.Material
	textures   []uint32 // base color texture per material, 0 when untextured
	Bounds     model.Bounds
	Transform  mgl32.Mat4
	IndexCount int32
}

// NewRenderer compiles the mesh program. Requires a current GL context.
func NewRenderer() (*Renderer, error) {
	program, err := shader.Compile(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("scene: mesh shader: %w", err)
	}

	r := &Renderer{program: program}
	r.locMVP = shader.Uniform(program, "uMVP")
	r.locModel = shader.Uniform(program, "uModel")
	r.locLightDir = shader.Uniform(program, "uLightDir")
	r.locAmbient = shader.Uniform(program, "uAmbient")
	r.locBaseColor = shader.Uniform(program, "uBaseColor")
	r.locMetallic = shader.Uniform(program, "uMetallic")
	r.locRoughness = shader.Uniform(program, "uRoughness")
	r.locEmissive = shader.Uniform(program, "uEmissive")
	r.locAlphaMode = shader.Uniform(program, "uAlphaMode")
	r.locAlphaCutoff = shader.Uniform(program, "uAlphaCutoff")
	r.locUseTexture = shader.Uniform(program, "uUseTexture")
	r.locTexture = shader.Uniform(program, "uTexture")

	r.fallbackTex = uploadFallbackTexture()
	return r, nil
}

// Upload pushes a built mesh and its materials to the GPU.
func (r *Renderer) Upload(mesh *model.Mesh, materials []material.Material) (*Model, error) {
	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("scene: mesh %q has no vertices", mesh.Name)
	}

	m := &Model{
		groups:     mesh.Groups,
		materials:  materials,
		Bounds:     mesh.Bounds,
		Transform:  mgl32.Ident4(),
		IndexCount: int32(len(mesh.Indices)),
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	vertexSize := int(unsafe.Sizeof(model.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*vertexSize, unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 2, gl.FLOAT, false, int32(vertexSize), 10*4)
	gl.EnableVertexAttribArray(3)

	if len(mesh.Indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	m.textures = make([]uint32, len(materials))
	for i := range materials {
		if tex, ok := materials[i].Textures[vnb.SlotBaseColor]; ok && tex.Image != nil {
			m.textures[i] = uploadTexture(tex.Image, tex.Sampler, tex.HasSampler)
		}
	}
	return m, nil
}

// Render draws every group of the model with its bound material.
func (r *Renderer) Render(m *Model, viewProj mgl32.Mat4, light Light) {
	gl.UseProgram(r.program)

	mvp := viewProj.Mul4(m.Transform)
	gl.UniformMatrix4fv(r.locMVP, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.locModel, 1, false, &m.Transform[0])
	gl.Uniform3f(r.locLightDir, light.Direction.X(), light.Direction.Y(), light.Direction.Z())
	gl.Uniform3f(r.locAmbient, light.Ambient.X(), light.Ambient.Y(), light.Ambient.Z())

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.locTexture, 0)

	gl.BindVertexArray(m.vao)
	for _, g := range m.groups {
		r.bindMaterial(m, g.Material)
		mode := uint32(gl.TRIANGLES)
		if g.Topology == vnb.TopologyLines {
			mode = gl.LINES
		}
		gl.DrawElementsBaseVertexWithOffset(mode, int32(g.IndexCount),
			gl.UNSIGNED_INT, uintptr(g.StartIndex*4), g.BaseVertex)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) bindMaterial(m *Model, idx int) {
	// Neutral material for untextured groups.
	if idx == vnb.NoMaterial || idx >= len(m.materials) {
		gl.Uniform4f(r.locBaseColor, 1, 1, 1, 1)
		gl.Uniform1f(r.locMetallic, 0)
		gl.Uniform1f(r.locRoughness, 1)
		gl.Uniform3f(r.locEmissive, 0, 0, 0)
		gl.Uniform1i(r.locAlphaMode, 0)
		gl.Uniform1i(r.locUseTexture, 0)
		gl.Disable(gl.CULL_FACE)
		gl.Disable(gl.BLEND)
		return
	}

	mat := &m.materials[idx]
	gl.Uniform4f(r.locBaseColor, mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2], mat.BaseColor[3])
	gl.Uniform1f(r.locMetallic, mat.Metallic)
	gl.Uniform1f(r.locRoughness, mat.Roughness)
	gl.Uniform3f(r.locEmissive, mat.Emissive[0], mat.Emissive[1], mat.Emissive[2])
	gl.Uniform1i(r.locAlphaMode, int32(mat.AlphaMode))
	gl.Uniform1f(r.locAlphaCutoff, mat.AlphaCutoff)

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}
	if mat.AlphaMode == vnb.AlphaBlend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	if m.textures[idx] != 0 {
		gl.Uniform1i(r.locUseTexture, 1)
		gl.BindTexture(gl.TEXTURE_2D, m.textures[idx])
	} else {
		gl.Uniform1i(r.locUseTexture, 0)
		gl.BindTexture(gl.TEXTURE_2D, r.fallbackTex)
	}
}

// Destroy releases the model's GPU resources.
func (m *Model) Destroy() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	for _, tex := range m.textures {
		if tex != 0 {
			gl.DeleteTextures(1, &tex)
		}
	}
}

// Destroy releases the shader program and fallback texture.
func (r *Renderer) Destroy() {
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
	if r.fallbackTex != 0 {
		gl.DeleteTextures(1, &r.fallbackTex)
		r.fallbackTex = 0
	}
}

func uploadTexture(img *image.RGBA, s vnb.Sampler, hasSampler bool) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	if hasSampler {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(s.WrapU))
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(s.WrapV))
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glMinFilter(s.MinFilter))
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glMagFilter(s.MagFilter))
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	}
	return tex
}

// uploadFallbackTexture makes a 1x1 white texture so untextured draws
// sample a neutral value.
func uploadFallbackTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	white := [4]uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return tex
}

func glWrap(w vnb.WrapMode) int32 {
	switch w {
	case vnb.WrapClamp:
		return gl.CLAMP_TO_EDGE
	case vnb.WrapMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

func glMinFilter(f vnb.FilterMode) int32 {
	switch f {
	case vnb.FilterNearest:
		return gl.NEAREST
	case vnb.FilterLinear:
		return gl.LINEAR
	case vnb.FilterNearestMipmapNearest:
		return gl.NEAREST_MIPMAP_NEAREST
	case vnb.FilterLinearMipmapNearest:
		return gl.LINEAR_MIPMAP_NEAREST
	case vnb.FilterNearestMipmapLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	default:
		return gl.LINEAR_MIPMAP_LINEAR
	}
}

func glMagFilter(f vnb.FilterMode) int32 {
	if f == vnb.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}
