// Package model turns decoded mesh containers into render-ready geometry:
// interleaved vertices, widened indices, per-part draw groups and bounds.
package model

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vnbformat/vnb-go/pkg/vnb"
)

var (
	// ErrIndexRange reports an index referencing a vertex past the end of
	// the vertex streams.
	ErrIndexRange = errors.New("model: index out of vertex range")
	// ErrMaterialRange reports a draw group referencing a material slot
	// the container does not carry.
	ErrMaterialRange = errors.New("model: material reference out of range")
)

// Vertex is the interleaved layout uploaded to the GPU. Streams absent
// from the source container are filled with neutral defaults.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    [4]float32
	TexCoord [2]float32
}

// DrawGroup is one indexed draw call: a contiguous index window bound to
// a single material. Material is -1 for untextured groups.
type DrawGroup struct {
	Topology   vnb.Topology
	Material   int
	StartIndex uint32
	IndexCount uint32
	BaseVertex int32
}

// Bounds is an axis-aligned box around the mesh.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the box midpoint.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the distance from the center to a corner, used for
// camera framing.
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Center()).Len()
}

// Mesh is the render-ready form of a container.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Groups   []DrawGroup
	Bounds   Bounds
}

// BuildOptions controls mesh assembly.
type BuildOptions struct {
	// UVSet selects which texture coordinate stream feeds Vertex.TexCoord
	// when the container carries both. 0 or 1.
	UVSet int
	// SkipNormalGeneration leaves normals zeroed when the container has
	// no normal stream instead of deriving smooth normals from faces.
	SkipNormalGeneration bool
}
