package vnb

import (
	"errors"
	"fmt"
)

// Resolver maps an external texture URI to raw image bytes. The second
// return reports whether the URI was found. Resolution runs synchronously
// inside the decode call, so a resolver must not block unboundedly without
// the caller's awareness.
type Resolver func(uri string) ([]byte, bool)

// ResolvePolicy selects what happens to external refs the resolver cannot
// satisfy.
type ResolvePolicy int

const (
	// ResolveIgnoreMissing leaves unresolved refs External with their URI
	// intact. This is the default.
	ResolveIgnoreMissing ResolvePolicy = iota
	// ResolveErrorMissing fails the call with ErrUnresolvedTexture.
	ResolveErrorMissing
)

// DecodeOption configures a Decode call.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	resolver Resolver
	policy   ResolvePolicy
}

// WithResolver supplies an external texture resolver. Refs the resolver
// satisfies are rewritten in the decoded container to embedded PNG payloads
// before Decode returns; the source bytes are never mutated and downstream
// code observes an ordinary embedded ref.
func WithResolver(r Resolver) DecodeOption {
	return func(o *decodeOptions) { o.resolver = r }
}

// WithResolvePolicy overrides the default ResolveIgnoreMissing policy.
func WithResolvePolicy(p ResolvePolicy) DecodeOption {
	return func(o *decodeOptions) { o.policy = p }
}

// Decode parses a VNB2 container. A byte sequence that does not open with
// the current magic and version is handed to the legacy parser exactly
// once; a legacy failure after that is final. Corruption past a valid
// current-format header is a hard failure and is never reinterpreted as
// legacy input.
func Decode(data []byte, opts ...DecodeOption) (*MeshContainer, error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	c, err := decodeCurrent(data)
	if errors.Is(err, errNotCurrentFormat) {
		c, err = decodeLegacy(data)
	}
	if err != nil {
		return nil, err
	}

	if o.resolver != nil {
		if err := ResolveExternalTextures(c, o.resolver, o.policy); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// decodeCurrent walks the same section order the encoder wrote, each
// section's presence and size computed from the flags and counts already
// read. It never probes or back-scans.
func decodeCurrent(data []byte) (*MeshContainer, error) {
	r := &reader{data: data}
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	c := &MeshContainer{Flags: h.flags}
	if c.Name, err = r.str(); err != nil {
		return nil, fmt.Errorf("container name: %w", err)
	}

	vcount := int(h.vertexCount)
	if c.Positions, err = r.f32s(vcount * positionComponents); err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	if h.flags.Has(HasNormals) {
		if c.Normals, err = r.f32s(vcount * normalComponents); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	if h.flags.Has(HasTangents) {
		if c.Tangents, err = r.f32s(vcount * tangentComponents); err != nil {
			return nil, fmt.Errorf("tangents: %w", err)
		}
	}
	if h.flags.Has(HasColors) {
		if c.Colors, err = r.f32s(vcount * colorComponents); err != nil {
			return nil, fmt.Errorf("colors: %w", err)
		}
	}
	if h.flags.Has(HasUV0) {
		if c.UV0, err = r.f32s(vcount * uvComponents); err != nil {
			return nil, fmt.Errorf("uv0: %w", err)
		}
	}
	if h.flags.Has(HasUV1) {
		if c.UV1, err = r.f32s(vcount * uvComponents); err != nil {
			return nil, fmt.Errorf("uv1: %w", err)
		}
	}
	if h.flags.Has(HasBounds) {
		for i := range c.BoundsMin {
			if c.BoundsMin[i], err = r.f32(); err != nil {
				return nil, fmt.Errorf("bounds min: %w", err)
			}
		}
		for i := range c.BoundsMax {
			if c.BoundsMax[i], err = r.f32(); err != nil {
				return nil, fmt.Errorf("bounds max: %w", err)
			}
		}
	}

	icount := int(h.indexCount)
	if h.flags.Has(Index16) {
		if c.Indices16, err = r.u16s(icount); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		if c.Indices32, err = r.u32s(icount); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	if h.subMeshCount > 0 {
		c.SubMeshes = make([]SubMesh, h.subMeshCount)
		for i := range c.SubMeshes {
			if err := readSubMesh(r, &c.SubMeshes[i]); err != nil {
				return nil, fmt.Errorf("submesh %d: %w", i, err)
			}
		}
	}
	if h.materialCount > 0 {
		c.Materials = make([]Material, h.materialCount)
		for i := range c.Materials {
			if err := readMaterial(r, &c.Materials[i]); err != nil {
				return nil, fmt.Errorf("material %d: %w", i, err)
			}
		}
	}
	return c, nil
}

func readSubMesh(r *reader, s *SubMesh) error {
	topo, err := r.u8()
	if err != nil {
		return err
	}
	if Topology(topo) > TopologyLines {
		return fmt.Errorf("%w: topology %d", ErrUnknownEnum, topo)
	}
	s.Topology = Topology(topo)

	mat, err := r.u16()
	if err != nil {
		return err
	}
	if mat == materialNone {
		s.Material = NoMaterial
	} else {
		s.Material = int(mat)
	}

	if s.StartIndex, err = r.u32(); err != nil {
		return err
	}
	if s.IndexCount, err = r.u32(); err != nil {
		return err
	}
	if s.BaseVertex, err = r.i32(); err != nil {
		return err
	}
	if s.FirstVertex, err = r.u16(); err != nil {
		return err
	}
	if s.VertexCount, err = r.u16(); err != nil {
		return err
	}
	return nil
}

func readMaterial(r *reader, m *Material) error {
	var err error
	if m.Name, err = r.str(); err != nil {
		return err
	}
	flags, err := r.u32()
	if err != nil {
		return err
	}
	m.Flags = MaterialFlags(flags)

	if m.Flags.Has(HasBaseColorFactor) {
		for i := range m.BaseColor {
			if m.BaseColor[i], err = r.f32(); err != nil {
				return err
			}
		}
	}
	if m.Flags.Has(HasMetallicFactor) {
		if m.Metallic, err = r.f32(); err != nil {
			return err
		}
	}
	if m.Flags.Has(HasRoughnessFactor) {
		if m.Roughness, err = r.f32(); err != nil {
			return err
		}
	}
	if m.Flags.Has(HasEmissiveFactor) {
		for i := range m.Emissive {
			if m.Emissive[i], err = r.f32(); err != nil {
				return err
			}
		}
	}
	if m.Flags.Has(HasAlphaMode) {
		mode, err := r.u8()
		if err != nil {
			return err
		}
		if AlphaMode(mode) > AlphaBlend {
			return fmt.Errorf("%w: alpha mode %d", ErrUnknownEnum, mode)
		}
		m.AlphaMode = AlphaMode(mode)
		if m.AlphaMode == AlphaMask {
			if m.AlphaCutoff, err = r.f32(); err != nil {
				return err
			}
		}
	}
	if m.Flags.Has(HasDoubleSided) {
		ds, err := r.u8()
		if err != nil {
			return err
		}
		m.DoubleSided = ds != 0
	}

	texCount, err := r.u8()
	if err != nil {
		return err
	}
	if texCount > 0 {
		m.Textures = make([]TextureRef, texCount)
		for i := range m.Textures {
			if err := readTextureRef(r, &m.Textures[i], m.Flags.Has(HasSamplers)); err != nil {
				return fmt.Errorf("texture %d: %w", i, err)
			}
		}
	}
	return nil
}

func readTextureRef(r *reader, t *TextureRef, withSampler bool) error {
	slot, err := r.u8()
	if err != nil {
		return err
	}
	if TextureSlot(slot) > SlotEmissive {
		return fmt.Errorf("%w: slot %d", ErrUnknownEnum, slot)
	}
	t.Slot = TextureSlot(slot)

	if t.UVSet, err = r.u8(); err != nil {
		return err
	}
	if t.UVSet > 1 {
		return fmt.Errorf("%w: uv set %d", ErrUnknownEnum, t.UVSet)
	}

	kind, err := r.u8()
	if err != nil {
		return err
	}
	if RefKind(kind) > RefEmbedded {
		return fmt.Errorf("%w: ref kind %d", ErrUnknownEnum, kind)
	}
	t.Kind = RefKind(kind)

	presence, err := r.u8()
	if err != nil {
		return err
	}
	if presence&transformOffset != 0 {
		var off [2]float32
		for i := range off {
			if off[i], err = r.f32(); err != nil {
				return err
			}
		}
		t.Offset = &off
	}
	if presence&transformScale != 0 {
		var scale [2]float32
		for i := range scale {
			if scale[i], err = r.f32(); err != nil {
				return err
			}
		}
		t.Scale = &scale
	}
	if presence&transformRotation != 0 {
		rot, err := r.f32()
		if err != nil {
			return err
		}
		t.Rotation = &rot
	}

	if withSampler {
		var raw [4]uint8
		for i := range raw {
			if raw[i], err = r.u8(); err != nil {
				return err
			}
		}
		if WrapMode(raw[0]) > WrapMirror || WrapMode(raw[1]) > WrapMirror {
			return fmt.Errorf("%w: wrap mode", ErrUnknownEnum)
		}
		if FilterMode(raw[2]) > FilterLinearMipmapLinear || FilterMode(raw[3]) > FilterLinear {
			return fmt.Errorf("%w: filter mode", ErrUnknownEnum)
		}
		t.Sampler = Sampler{
			WrapU:     WrapMode(raw[0]),
			WrapV:     WrapMode(raw[1]),
			MinFilter: FilterMode(raw[2]),
			MagFilter: FilterMode(raw[3]),
		}
	}

	switch t.Kind {
	case RefExternal:
		if t.URI, err = r.str(); err != nil {
			return err
		}
	case RefEmbedded:
		mime, err := r.u8()
		if err != nil {
			return err
		}
		if MimeType(mime) > MimeTGA {
			return fmt.Errorf("%w: mime %d", ErrUnknownEnum, mime)
		}
		t.Mime = MimeType(mime)
		size, err := r.u32()
		if err != nil {
			return err
		}
		if t.Data, err = r.bytes(int(size)); err != nil {
			return err
		}
	}
	return nil
}
