// Package vnb implements the VNB2 binary container for 3D mesh geometry
// and PBR material descriptions.
//
// The codec is synchronous and stateless: Encode and Decode are pure
// functions between a fully materialized byte slice and a MeshContainer.
// Concurrent calls on independent inputs need no coordination. The codec
// is a pure format layer: it never validates that indices stay inside the
// vertex range or that material indices resolve; that is the consuming
// builder's responsibility.
package vnb

// FeatureFlags declares which optional sections are physically present in
// an encoded container. The bitset is the serialization contract; absent
// sections occupy no bytes on the wire.
type FeatureFlags uint32

const (
	// HasPositions is mandatory: positions are the only required stream.
	HasPositions FeatureFlags = 1 << 0
	HasNormals   FeatureFlags = 1 << 1
	HasTangents  FeatureFlags = 1 << 2
	HasColors    FeatureFlags = 1 << 3
	HasUV0       FeatureFlags = 1 << 4
	HasUV1       FeatureFlags = 1 << 5
	HasBounds    FeatureFlags = 1 << 6
	// Index16 selects 16-bit index storage; when clear the index buffer is
	// 32-bit. The width applies uniformly, buffers never mix widths.
	Index16 FeatureFlags = 1 << 7
)

// Has returns true if all bits of mask are set.
func (f FeatureFlags) Has(mask FeatureFlags) bool { return f&mask == mask }

// Topology is the primitive topology of a submesh draw range.
type Topology uint8

const (
	TopologyTriangles Topology = 0
	TopologyLines     Topology = 1
)

// String returns a human-readable topology name.
func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "triangles"
	case TopologyLines:
		return "lines"
	default:
		return "unknown"
	}
}

// NoMaterial marks a submesh with no material assigned. The wire encodes it
// as the 0xFFFF sentinel; in-memory code only ever compares against this
// constant.
const NoMaterial = -1

// SubMesh is a contiguous draw range within the shared vertex and index
// buffers. Submesh order is draw order and round-trips exactly. Ranges may
// overlap; the codec does not validate them.
type SubMesh struct {
	Topology    Topology
	Material    int // index into MeshContainer.Materials, or NoMaterial
	StartIndex  uint32
	IndexCount  uint32
	BaseVertex  int32
	FirstVertex uint16
	VertexCount uint16
}

// MeshContainer is the in-memory representation of one encoded container.
// Ownership is strictly tree-shaped: the container owns its streams,
// submeshes and materials, and materials own their texture refs. The only
// cross-reference is the submesh material index, resolved by the consumer.
type MeshContainer struct {
	Name  string
	Flags FeatureFlags

	// Vertex streams in flat component-major layout. Positions carry three
	// floats per vertex and must always be present. Every other stream is
	// present iff its flag bit is set and then holds exactly vertexCount
	// logical elements. Absent streams are nil, never zero-filled.
	Positions []float32 // 3 components
	Normals   []float32 // 3 components
	Tangents  []float32 // 4 components
	Colors    []float32 // 4 components, RGBA
	UV0       []float32 // 2 components
	UV1       []float32 // 2 components

	// Axis-aligned bounds, valid iff HasBounds is set. Consumers derive
	// bounds from positions otherwise.
	BoundsMin [3]float32
	BoundsMax [3]float32

	// Exactly one index slice is populated, selected by Index16. Values
	// reference vertex positions zero-based and are never silently
	// promoted or demoted between widths.
	Indices16 []uint16
	Indices32 []uint32

	SubMeshes []SubMesh
	Materials []Material
}

// VertexCount is derived from the position stream; it is recomputed at
// encode time and never trusted as caller-supplied truth.
func (c *MeshContainer) VertexCount() int { return len(c.Positions) / 3 }

// IndexCount returns the number of indices in whichever buffer is active.
func (c *MeshContainer) IndexCount() int {
	if c.Flags.Has(Index16) {
		return len(c.Indices16)
	}
	return len(c.Indices32)
}

// Index returns index i widened to uint32 regardless of storage width.
func (c *MeshContainer) Index(i int) uint32 {
	if c.Flags.Has(Index16) {
		return uint32(c.Indices16[i])
	}
	return c.Indices32[i]
}
