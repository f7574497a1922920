package vnb

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

// triangleContainer returns the minimal valid container: three positions
// forming one triangle, one full-range submesh, no materials.
func triangleContainer() *MeshContainer {
	return &MeshContainer{
		Flags: HasPositions,
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
		},
		Indices32: []uint32{0, 1, 2},
		SubMeshes: []SubMesh{{
			Topology:   TopologyTriangles,
			Material:   NoMaterial,
			StartIndex: 0,
			IndexCount: 3,
		}},
	}
}

func mustEncode(t *testing.T, c *MeshContainer) []byte {
	t.Helper()
	data, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return data
}

func TestEncode_TriangleLayout(t *testing.T) {
	// Scenario: positions-only triangle. Expected layout is header (48) +
	// empty name (2) + 9 floats (36) + 3 uint32 indices (12) + one 19-byte
	// submesh record and zero material records.
	data := mustEncode(t, triangleContainer())

	const want = 48 + 2 + 36 + 12 + 19
	if len(data) != want {
		t.Fatalf("encoded size = %d, want %d", len(data), want)
	}

	if got := binary.LittleEndian.Uint32(data[0:4]); got != Magic {
		t.Errorf("magic = %#x, want %#x", got, Magic)
	}
	if got := binary.LittleEndian.Uint16(data[4:6]); got != Version {
		t.Errorf("version = %d, want %d", got, Version)
	}
	if data[6] != 0 {
		t.Errorf("endian tag = %d, want 0", data[6])
	}
	if got := FeatureFlags(binary.LittleEndian.Uint32(data[12:16])); got != HasPositions {
		t.Errorf("flags = %#x, want %#x", got, HasPositions)
	}
	if got := binary.LittleEndian.Uint32(data[16:20]); got != 3 {
		t.Errorf("vertex count = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(data[20:24]); got != 3 {
		t.Errorf("index count = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 1 {
		t.Errorf("submesh count = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != 0 {
		t.Errorf("material count = %d, want 0", got)
	}
	for i, b := range data[32:48] {
		if b != 0 {
			t.Errorf("reserved byte %d = %#x, want 0", i, b)
		}
	}

	// Submesh record: material sentinel for "no material".
	sub := data[48+2+36+12:]
	if sub[0] != uint8(TopologyTriangles) {
		t.Errorf("topology byte = %d, want %d", sub[0], TopologyTriangles)
	}
	if got := binary.LittleEndian.Uint16(sub[1:3]); got != 0xFFFF {
		t.Errorf("material sentinel = %#x, want 0xFFFF", got)
	}
}

func TestEncode_FlagMinimality(t *testing.T) {
	// An absent optional stream must not emit bytes.
	c := triangleContainer()
	base := len(mustEncode(t, c))

	c.Flags |= HasNormals
	c.Normals = make([]float32, 9)
	withNormals := len(mustEncode(t, c))

	if withNormals-base != 36 {
		t.Errorf("normals stream added %d bytes, want 36", withNormals-base)
	}
}

func TestEncode_InvariantViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *MeshContainer)
	}{
		{
			name:   "missing positions flag",
			mutate: func(c *MeshContainer) { c.Flags &^= HasPositions },
		},
		{
			name:   "position length not multiple of three",
			mutate: func(c *MeshContainer) { c.Positions = c.Positions[:8] },
		},
		{
			name: "flagged stream with wrong length",
			mutate: func(c *MeshContainer) {
				c.Flags |= HasNormals
				c.Normals = make([]float32, 6) // 3 vertices need 9
			},
		},
		{
			name:   "unflagged stream populated",
			mutate: func(c *MeshContainer) { c.UV0 = make([]float32, 6) },
		},
		{
			name: "both index widths populated",
			mutate: func(c *MeshContainer) {
				c.Flags |= Index16
				c.Indices16 = []uint16{0, 1, 2}
			},
		},
		{
			name: "16-bit indices without Index16",
			mutate: func(c *MeshContainer) {
				c.Indices32 = nil
				c.Indices16 = []uint16{0, 1, 2}
			},
		},
		{
			name: "material index exceeds wire range",
			mutate: func(c *MeshContainer) {
				c.SubMeshes[0].Material = 0xFFFF
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := triangleContainer()
			tt.mutate(c)
			_, err := Encode(c)
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("Encode error = %v, want ErrInvariant", err)
			}
		})
	}
}

func TestEncode_UnknownEnums(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *MeshContainer)
	}{
		{
			name:   "topology out of range",
			mutate: func(c *MeshContainer) { c.SubMeshes[0].Topology = 9 },
		},
		{
			name: "alpha mode out of range",
			mutate: func(c *MeshContainer) {
				c.Materials = []Material{{
					Flags:     HasAlphaMode,
					AlphaMode: 7,
				}}
			},
		},
		{
			name: "texture slot out of range",
			mutate: func(c *MeshContainer) {
				c.Materials = []Material{{
					Textures: []TextureRef{{Slot: 200, Kind: RefEmbedded}},
				}}
			},
		},
		{
			name: "mime out of range",
			mutate: func(c *MeshContainer) {
				c.Materials = []Material{{
					Textures: []TextureRef{{Kind: RefEmbedded, Mime: 42}},
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := triangleContainer()
			tt.mutate(c)
			_, err := Encode(c)
			if !errors.Is(err, ErrUnknownEnum) {
				t.Errorf("Encode error = %v, want ErrUnknownEnum", err)
			}
		})
	}
}

func TestEncode_NameLengthBoundary(t *testing.T) {
	c := triangleContainer()

	c.Name = strings.Repeat("a", 65535)
	if _, err := Encode(c); err != nil {
		t.Errorf("65535-byte name should encode, got %v", err)
	}

	c.Name = strings.Repeat("a", 65536)
	if _, err := Encode(c); !errors.Is(err, ErrStringTooLong) {
		t.Errorf("65536-byte name: error = %v, want ErrStringTooLong", err)
	}
}

func TestEncode_EmbeddedTextureRecordLayout(t *testing.T) {
	// Scenario: material with only a base-color factor and one embedded
	// PNG texture with no transform and no sampler. The texture record
	// must be exactly slot, uvset, refkind, transform flags, mime, length,
	// data with nothing else in between.
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	c := triangleContainer()
	c.Materials = []Material{{
		Name:      "mat",
		Flags:     HasBaseColorFactor,
		BaseColor: [4]float32{1, 1, 1, 1},
		Textures: []TextureRef{{
			Slot: SlotBaseColor,
			Kind: RefEmbedded,
			Mime: MimePNG,
			Data: payload,
		}},
	}}

	data := mustEncode(t, c)

	// Material record starts right after the submesh records.
	matOff := 48 + 2 + 36 + 12 + 19
	rec := data[matOff:]
	nameLen := int(binary.LittleEndian.Uint16(rec[0:2]))
	if nameLen != 3 {
		t.Fatalf("material name length = %d, want 3", nameLen)
	}
	rec = rec[2+nameLen:]
	if got := MaterialFlags(binary.LittleEndian.Uint32(rec[0:4])); got != HasBaseColorFactor {
		t.Fatalf("material flags = %#x, want %#x", got, HasBaseColorFactor)
	}
	rec = rec[4+16:] // flags + RGBA factor
	if rec[0] != 1 {
		t.Fatalf("texture count = %d, want 1", rec[0])
	}

	tex := rec[1:]
	want := []byte{0, 0, 1, 0, 0} // slot, uvset, refkind, toflags, mime
	for i, b := range want {
		if tex[i] != b {
			t.Errorf("texture record byte %d = %d, want %d", i, tex[i], b)
		}
	}
	if got := binary.LittleEndian.Uint32(tex[5:9]); got != uint32(len(payload)) {
		t.Errorf("payload length = %d, want %d", got, len(payload))
	}
	for i, b := range payload {
		if tex[9+i] != b {
			t.Errorf("payload byte %d = %#x, want %#x", i, tex[9+i], b)
		}
	}
	if len(data) != matOff+2+3+4+16+1+9+len(payload) {
		t.Errorf("trailing bytes after texture payload: total %d", len(data))
	}
}
