package vnb

// Wire constants of the current container revision.
const (
	// Magic spells "VNB2" when read as little-endian ASCII.
	Magic   uint32 = 0x564E4232
	Version uint16 = 2
)

const (
	// headerSize is the fixed preamble: magic, version, endian tag,
	// coordinate-system tag, unit scale, feature flags, four element
	// counts and the reserved tail.
	headerSize = 4 + 2 + 1 + 1 + 4 + 4 + 4 + 4 + 4 + 4 + reservedBytes

	reservedBytes = 16

	// Endianness and coordinate-system tags are declared but currently
	// constant; they are reserved for future axis/units negotiation.
	endianLittle       = 0
	coordRightHandedYUp = 0
	unitScaleDefault    = 1.0
)

type header struct {
	flags         FeatureFlags
	vertexCount   uint32
	indexCount    uint32
	subMeshCount  uint32
	materialCount uint32
}

func writeHeader(w *writer, h header) {
	w.u32(Magic)
	w.u16(Version)
	w.u8(endianLittle)
	w.u8(coordRightHandedYUp)
	w.f32(unitScaleDefault)
	w.u32(uint32(h.flags))
	w.u32(h.vertexCount)
	w.u32(h.indexCount)
	w.u32(h.subMeshCount)
	w.u32(h.materialCount)
	w.bytes(make([]byte, reservedBytes))
}

// readHeader reads the fixed preamble. A buffer too short to supply the
// preamble, or a magic/version mismatch, is reported as errNotCurrentFormat
// so the caller can hand the whole input to the legacy parser; neither is a
// decode failure by itself. A non-zero endian tag still decodes as
// little-endian. Reserved bytes are ignored.
func readHeader(r *reader) (header, error) {
	var h header
	if r.need(headerSize) != nil {
		return h, errNotCurrentFormat
	}
	magic, _ := r.u32()
	version, _ := r.u16()
	if magic != Magic || version != Version {
		return h, errNotCurrentFormat
	}
	_, _ = r.u8()  // endian tag
	_, _ = r.u8()  // coordinate system
	_, _ = r.f32() // unit scale
	flags, _ := r.u32()
	h.flags = FeatureFlags(flags)
	h.vertexCount, _ = r.u32()
	h.indexCount, _ = r.u32()
	h.subMeshCount, _ = r.u32()
	h.materialCount, _ = r.u32()
	_ = r.skip(reservedBytes)
	return h, nil
}
