package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vnbformat/vnb-go/pkg/vnb"
)

// BuildMesh assembles render-ready geometry from a decoded container.
// Indices are validated against the vertex range and draw groups against
// the material table; either violation fails the build.
func BuildMesh(c *vnb.MeshContainer, opts BuildOptions) (*Mesh, error) {
	vcount := c.VertexCount()
	icount := c.IndexCount()

	vertices := make([]Vertex, vcount)
	for i := 0; i < vcount; i++ {
		v := &vertices[i]
		copy(v.Position[:], c.Positions[i*3:i*3+3])
		if c.Flags.Has(vnb.HasNormals) {
			copy(v.Normal[:], c.Normals[i*3:i*3+3])
		}
		if c.Flags.Has(vnb.HasColors) {
			copy(v.Color[:], c.Colors[i*4:i*4+4])
		} else {
			v.Color = [4]float32{1, 1, 1, 1}
		}
		switch {
		case opts.UVSet == 1 && c.Flags.Has(vnb.HasUV1):
			copy(v.TexCoord[:], c.UV1[i*2:i*2+2])
		case c.Flags.Has(vnb.HasUV0):
			copy(v.TexCoord[:], c.UV0[i*2:i*2+2])
		}
	}

	indices := make([]uint32, icount)
	for i := 0; i < icount; i++ {
		indices[i] = c.Index(i)
	}

	groups := make([]DrawGroup, 0, len(c.SubMeshes))
	for i, sm := range c.SubMeshes {
		end := uint64(sm.StartIndex) + uint64(sm.IndexCount)
		if end > uint64(icount) {
			return nil, fmt.Errorf("%w: submesh %d spans indices [%d,%d) of %d",
				ErrIndexRange, i, sm.StartIndex, end, icount)
		}
		for j := sm.StartIndex; j < sm.StartIndex+sm.IndexCount; j++ {
			ref := int64(indices[j]) + int64(sm.BaseVertex)
			if ref < 0 || ref >= int64(vcount) {
				return nil, fmt.Errorf("%w: submesh %d index %d resolves to vertex %d of %d",
					ErrIndexRange, i, j, ref, vcount)
			}
		}
		if sm.Material != vnb.NoMaterial &&
			(sm.Material < 0 || sm.Material >= len(c.Materials)) {
			return nil, fmt.Errorf("%w: submesh %d references material %d of %d",
				ErrMaterialRange, i, sm.Material, len(c.Materials))
		}
		groups = append(groups, DrawGroup{
			Topology:   sm.Topology,
			Material:   sm.Material,
			StartIndex: sm.StartIndex,
			IndexCount: sm.IndexCount,
			BaseVertex: sm.BaseVertex,
		})
	}

	if !c.Flags.Has(vnb.HasNormals) && !opts.SkipNormalGeneration {
		generateNormals(vertices, indices, groups)
		SmoothNormals(vertices)
	}

	var bounds Bounds
	if c.Flags.Has(vnb.HasBounds) {
		bounds = Bounds{
			Min: mgl32.Vec3(c.BoundsMin),
			Max: mgl32.Vec3(c.BoundsMax),
		}
	} else {
		bounds = computeBounds(vertices)
	}

	return &Mesh{
		Name:     c.Name,
		Vertices: vertices,
		Indices:  indices,
		Groups:   groups,
		Bounds:   bounds,
	}, nil
}

// generateNormals accumulates area-weighted face normals over triangle
// groups. Line groups contribute nothing.
func generateNormals(vertices []Vertex, indices []uint32, groups []DrawGroup) {
	for _, g := range groups {
		if g.Topology != vnb.TopologyTriangles {
			continue
		}
		end := g.StartIndex + g.IndexCount
		for i := g.StartIndex; i+3 <= end; i += 3 {
			a := int(int64(indices[i]) + int64(g.BaseVertex))
			b := int(int64(indices[i+1]) + int64(g.BaseVertex))
			c := int(int64(indices[i+2]) + int64(g.BaseVertex))

			va := mgl32.Vec3(vertices[a].Position)
			vb := mgl32.Vec3(vertices[b].Position)
			vc := mgl32.Vec3(vertices[c].Position)
			n := vb.Sub(va).Cross(vc.Sub(va))
			if n.Len() < 1e-10 {
				continue
			}
			for _, idx := range []int{a, b, c} {
				vertices[idx].Normal[0] += n.X()
				vertices[idx].Normal[1] += n.Y()
				vertices[idx].Normal[2] += n.Z()
			}
		}
	}
	for i := range vertices {
		n := mgl32.Vec3(vertices[i].Normal)
		if n.Len() > 1e-10 {
			vertices[i].Normal = n.Normalize()
		}
	}
}

// SmoothNormals averages normals at shared vertex positions to remove
// faceting where triangles meet without shared vertices.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}
		var sum mgl32.Vec3
		for _, idx := range idxs {
			sum = sum.Add(mgl32.Vec3(vertices[idx].Normal))
		}
		if sum.Len() < 1e-10 {
			continue
		}
		avg := sum.Normalize()
		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}

func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{
		Min: mgl32.Vec3(vertices[0].Position),
		Max: mgl32.Vec3(vertices[0].Position),
	}
	for i := 1; i < len(vertices); i++ {
		p := vertices[i].Position
		for axis := 0; axis < 3; axis++ {
			if p[axis] < b.Min[axis] {
				b.Min[axis] = p[axis]
			}
			if p[axis] > b.Max[axis] {
				b.Max[axis] = p[axis]
			}
		}
	}
	return b
}
