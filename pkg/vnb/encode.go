package vnb

import "fmt"

// Component widths of the vertex streams, in floats per vertex.
const (
	positionComponents = 3
	normalComponents   = 3
	tangentComponents  = 4
	colorComponents    = 4
	uvComponents       = 2
)

const (
	subMeshSize  = 19
	materialNone = 0xFFFF
)

// Transform-presence bits of a texture ref. Absent fields are omitted
// entirely, not placeholder-zero-written.
const (
	transformOffset   = 1 << 0
	transformScale    = 1 << 1
	transformRotation = 1 << 2
)

// Encode serializes the container into one contiguous byte sequence:
// header, name, vertex streams, bounds, indices, submeshes, materials.
// Vertex and index counts are recomputed from the actual slice lengths;
// a present stream whose length disagrees with them fails with
// ErrInvariant rather than truncating silently.
func Encode(c *MeshContainer) ([]byte, error) {
	if err := validate(c); err != nil {
		return nil, err
	}

	w := &writer{buf: make([]byte, 0, encodedSizeHint(c))}
	writeHeader(w, header{
		flags:         c.Flags,
		vertexCount:   uint32(c.VertexCount()),
		indexCount:    uint32(c.IndexCount()),
		subMeshCount:  uint32(len(c.SubMeshes)),
		materialCount: uint32(len(c.Materials)),
	})

	if err := w.str(c.Name); err != nil {
		return nil, fmt.Errorf("container name: %w", err)
	}

	w.f32s(c.Positions)
	if c.Flags.Has(HasNormals) {
		w.f32s(c.Normals)
	}
	if c.Flags.Has(HasTangents) {
		w.f32s(c.Tangents)
	}
	if c.Flags.Has(HasColors) {
		w.f32s(c.Colors)
	}
	if c.Flags.Has(HasUV0) {
		w.f32s(c.UV0)
	}
	if c.Flags.Has(HasUV1) {
		w.f32s(c.UV1)
	}
	if c.Flags.Has(HasBounds) {
		w.f32s(c.BoundsMin[:])
		w.f32s(c.BoundsMax[:])
	}
	if c.Flags.Has(Index16) {
		w.u16s(c.Indices16)
	} else {
		w.u32s(c.Indices32)
	}

	for i := range c.SubMeshes {
		if err := writeSubMesh(w, &c.SubMeshes[i]); err != nil {
			return nil, fmt.Errorf("submesh %d: %w", i, err)
		}
	}
	for i := range c.Materials {
		if err := writeMaterial(w, &c.Materials[i]); err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
	}
	return w.buf, nil
}

// validate checks the encode-time invariants: the position stream is
// required, every flagged stream holds exactly vertexCount elements, an
// unflagged stream is empty, and index storage matches the width flag.
func validate(c *MeshContainer) error {
	if !c.Flags.Has(HasPositions) {
		return fmt.Errorf("%w: HasPositions must be set", ErrInvariant)
	}
	if len(c.Positions)%positionComponents != 0 {
		return fmt.Errorf("%w: position stream length %d is not a multiple of 3",
			ErrInvariant, len(c.Positions))
	}
	vcount := len(c.Positions) / positionComponents

	streams := []struct {
		name string
		flag FeatureFlags
		data []float32
		comp int
	}{
		{"normals", HasNormals, c.Normals, normalComponents},
		{"tangents", HasTangents, c.Tangents, tangentComponents},
		{"colors", HasColors, c.Colors, colorComponents},
		{"uv0", HasUV0, c.UV0, uvComponents},
		{"uv1", HasUV1, c.UV1, uvComponents},
	}
	for _, s := range streams {
		if c.Flags.Has(s.flag) {
			if len(s.data) != vcount*s.comp {
				return fmt.Errorf("%w: %s stream has %d floats, want %d",
					ErrInvariant, s.name, len(s.data), vcount*s.comp)
			}
		} else if len(s.data) != 0 {
			return fmt.Errorf("%w: %s stream present without its flag", ErrInvariant, s.name)
		}
	}

	if c.Flags.Has(Index16) {
		if len(c.Indices32) != 0 {
			return fmt.Errorf("%w: Index16 set but 32-bit indices populated", ErrInvariant)
		}
	} else if len(c.Indices16) != 0 {
		return fmt.Errorf("%w: 16-bit indices populated without Index16", ErrInvariant)
	}
	return nil
}

func writeSubMesh(w *writer, s *SubMesh) error {
	if s.Topology > TopologyLines {
		return fmt.Errorf("%w: topology %d", ErrUnknownEnum, s.Topology)
	}
	mat := uint16(materialNone)
	if s.Material != NoMaterial {
		if s.Material < 0 || s.Material >= materialNone {
			return fmt.Errorf("%w: material index %d does not fit the wire", ErrInvariant, s.Material)
		}
		mat = uint16(s.Material)
	}
	w.u8(uint8(s.Topology))
	w.u16(mat)
	w.u32(s.StartIndex)
	w.u32(s.IndexCount)
	w.i32(s.BaseVertex)
	w.u16(s.FirstVertex)
	w.u16(s.VertexCount)
	return nil
}

func writeMaterial(w *writer, m *Material) error {
	if err := w.str(m.Name); err != nil {
		return err
	}
	w.u32(uint32(m.Flags))

	if m.Flags.Has(HasBaseColorFactor) {
		w.f32s(m.BaseColor[:])
	}
	if m.Flags.Has(HasMetallicFactor) {
		w.f32(m.Metallic)
	}
	if m.Flags.Has(HasRoughnessFactor) {
		w.f32(m.Roughness)
	}
	if m.Flags.Has(HasEmissiveFactor) {
		w.f32s(m.Emissive[:])
	}
	if m.Flags.Has(HasAlphaMode) {
		if m.AlphaMode > AlphaBlend {
			return fmt.Errorf("%w: alpha mode %d", ErrUnknownEnum, m.AlphaMode)
		}
		w.u8(uint8(m.AlphaMode))
		if m.AlphaMode == AlphaMask {
			w.f32(m.AlphaCutoff)
		}
	}
	if m.Flags.Has(HasDoubleSided) {
		if m.DoubleSided {
			w.u8(1)
		} else {
			w.u8(0)
		}
	}

	if len(m.Textures) > 0xFF {
		return fmt.Errorf("%w: %d texture refs", ErrInvariant, len(m.Textures))
	}
	w.u8(uint8(len(m.Textures)))
	for i := range m.Textures {
		if err := writeTextureRef(w, &m.Textures[i], m.Flags.Has(HasSamplers)); err != nil {
			return fmt.Errorf("texture %d: %w", i, err)
		}
	}
	return nil
}

func writeTextureRef(w *writer, t *TextureRef, withSampler bool) error {
	if t.Slot > SlotEmissive {
		return fmt.Errorf("%w: slot %d", ErrUnknownEnum, t.Slot)
	}
	if t.UVSet > 1 {
		return fmt.Errorf("%w: uv set %d", ErrUnknownEnum, t.UVSet)
	}
	if t.Kind > RefEmbedded {
		return fmt.Errorf("%w: ref kind %d", ErrUnknownEnum, t.Kind)
	}
	w.u8(uint8(t.Slot))
	w.u8(t.UVSet)
	w.u8(uint8(t.Kind))

	var presence uint8
	if t.Offset != nil {
		presence |= transformOffset
	}
	if t.Scale != nil {
		presence |= transformScale
	}
	if t.Rotation != nil {
		presence |= transformRotation
	}
	w.u8(presence)
	if t.Offset != nil {
		w.f32s(t.Offset[:])
	}
	if t.Scale != nil {
		w.f32s(t.Scale[:])
	}
	if t.Rotation != nil {
		w.f32(*t.Rotation)
	}

	if withSampler {
		s := t.Sampler
		if s.WrapU > WrapMirror || s.WrapV > WrapMirror {
			return fmt.Errorf("%w: wrap mode", ErrUnknownEnum)
		}
		if s.MinFilter > FilterLinearMipmapLinear || s.MagFilter > FilterLinear {
			return fmt.Errorf("%w: filter mode", ErrUnknownEnum)
		}
		w.u8(uint8(s.WrapU))
		w.u8(uint8(s.WrapV))
		w.u8(uint8(s.MinFilter))
		w.u8(uint8(s.MagFilter))
	}

	switch t.Kind {
	case RefExternal:
		if err := w.str(t.URI); err != nil {
			return err
		}
	case RefEmbedded:
		if t.Mime > MimeTGA {
			return fmt.Errorf("%w: mime %d", ErrUnknownEnum, t.Mime)
		}
		w.u8(uint8(t.Mime))
		w.u32(uint32(len(t.Data)))
		w.bytes(t.Data)
	}
	return nil
}

func encodedSizeHint(c *MeshContainer) int {
	n := headerSize + 2 + len(c.Name)
	n += 4 * (len(c.Positions) + len(c.Normals) + len(c.Tangents) +
		len(c.Colors) + len(c.UV0) + len(c.UV1))
	if c.Flags.Has(HasBounds) {
		n += 24
	}
	n += 2*len(c.Indices16) + 4*len(c.Indices32)
	n += subMeshSize * len(c.SubMeshes)
	for i := range c.Materials {
		m := &c.Materials[i]
		n += 2 + len(m.Name) + 4 + 48
		for j := range m.Textures {
			n += 32 + len(m.Textures[j].URI) + len(m.Textures[j].Data)
		}
	}
	return n
}
