package vnb

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
)

// legacyBuilder assembles pre-VNB2 byte sequences for tests.
type legacyBuilder struct {
	buf []byte
}

func (b *legacyBuilder) u32(v uint32) *legacyBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

func (b *legacyBuilder) f32(v float32) *legacyBuilder {
	return b.u32(math.Float32bits(v))
}

func (b *legacyBuilder) f32s(vs ...float32) *legacyBuilder {
	for _, v := range vs {
		b.f32(v)
	}
	return b
}

// makeLegacyTwoSubmesh builds a legacy stream with two submeshes: a red
// two-vertex part and a green one-vertex part, one triangle total, and a
// full UV set.
func makeLegacyTwoSubmesh() []byte {
	b := &legacyBuilder{}
	b.u32(2)                   // submesh count
	b.f32s(1, 0, 0, 1)         // submesh 0 color
	b.f32s(0, 1, 0, 1)         // submesh 1 color
	b.u32(2).u32(1)            // vertex counts
	b.f32s(0, 0, 0, 1, 0, 0, 0, 1, 0) // positions
	b.f32s(0, 0, 1, 0, 0, 1, 0, 0, 1) // normals
	b.u32(1).u32(0)            // triangle counts
	b.u32(0).u32(1).u32(2)     // flat index array
	b.u32(2).u32(1)            // uv counts
	b.f32s(0, 0, 1, 0, 0, 1)   // flat uv array
	return b.buf
}

func TestDecode_LegacyReconstruction(t *testing.T) {
	got, err := Decode(makeLegacyTwoSubmesh())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	wantFlags := HasPositions | HasNormals | HasColors | HasUV0
	if got.Flags != wantFlags {
		t.Errorf("flags = %#x, want %#x", got.Flags, wantFlags)
	}
	if got.Name != "" {
		t.Errorf("legacy container has name %q, want empty", got.Name)
	}
	if got.VertexCount() != 3 {
		t.Fatalf("vertex count = %d, want 3", got.VertexCount())
	}

	// Submesh colors broadcast to contiguous vertex ranges: the first two
	// vertices take the red flat color, the third takes green.
	wantColors := []float32{
		1, 0, 0, 1,
		1, 0, 0, 1,
		0, 1, 0, 1,
	}
	if !reflect.DeepEqual(got.Colors, wantColors) {
		t.Errorf("colors = %v, want %v", got.Colors, wantColors)
	}

	if !reflect.DeepEqual(got.Indices32, []uint32{0, 1, 2}) {
		t.Errorf("indices = %v, want [0 1 2]", got.Indices32)
	}

	if len(got.Materials) != 0 {
		t.Errorf("legacy decode produced %d materials, want 0", len(got.Materials))
	}
	wantSub := []SubMesh{{
		Topology:    TopologyTriangles,
		Material:    NoMaterial,
		StartIndex:  0,
		IndexCount:  3,
		VertexCount: 3,
	}}
	if !reflect.DeepEqual(got.SubMeshes, wantSub) {
		t.Errorf("submeshes = %+v, want %+v", got.SubMeshes, wantSub)
	}
}

func TestDecode_LegacyDispatchDeterminism(t *testing.T) {
	// Any stream whose first four bytes are not the magic constant goes to
	// the legacy parser, whatever the rest of its content looks like.
	data := mustEncode(t, triangleContainer())
	data[3] ^= 0xFF

	_, err := Decode(data)
	if !errors.Is(err, ErrLegacyParse) {
		t.Errorf("error = %v, want ErrLegacyParse", err)
	}
}

func TestDecode_ShortPreambleGoesLegacy(t *testing.T) {
	// Fewer bytes than the fixed preamble can never be the current format.
	// An all-zero four-byte stream is the legal empty legacy container.
	got, err := Decode([]byte{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.VertexCount() != 0 || len(got.SubMeshes) != 1 {
		t.Errorf("empty legacy decode = %+v", got)
	}
}

func TestDecode_LegacyFailures(t *testing.T) {
	valid := makeLegacyTwoSubmesh()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"implausible submesh count", (&legacyBuilder{}).u32(0xFFFFFFFF).buf},
		{"truncated colors", valid[:10]},
		{"truncated vertex counts", valid[:40]},
		{"truncated indices", valid[:len(valid)-40]},
		{
			name: "uv count mismatch",
			data: func() []byte {
				b := &legacyBuilder{}
				b.u32(1)
				b.f32s(1, 1, 1, 1)       // color
				b.u32(3)                 // vertex count
				b.f32s(make([]float32, 9)...)  // positions
				b.f32s(make([]float32, 9)...)  // normals
				b.u32(1)                 // triangle count
				b.u32(0).u32(1).u32(2)   // indices
				b.u32(2)                 // uv count != vertex count
				b.f32s(0, 0, 1, 1)
				return b.buf
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, ErrLegacyParse) {
				t.Errorf("error = %v, want ErrLegacyParse", err)
			}
		})
	}
}

func TestDecode_LegacyUpgradeRoundTrip(t *testing.T) {
	// A recovered legacy container must satisfy the current encoder's
	// invariants, and the re-encoded form must round-trip exactly.
	recovered, err := Decode(makeLegacyTwoSubmesh())
	if err != nil {
		t.Fatalf("legacy decode failed: %v", err)
	}

	data, err := Encode(recovered)
	if err != nil {
		t.Fatalf("re-encode failed: %v", err)
	}

	again, err := Decode(data)
	if err != nil {
		t.Fatalf("decode of upgraded container failed: %v", err)
	}
	if !reflect.DeepEqual(again, recovered) {
		t.Errorf("upgrade round-trip mismatch:\n got  %+v\n want %+v", again, recovered)
	}
}
