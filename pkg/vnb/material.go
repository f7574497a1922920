package vnb

// MaterialFlags declares which optional factor and mode blocks are present
// in one encoded material record.
type MaterialFlags uint32

const (
	HasBaseColorFactor MaterialFlags = 1 << 0
	HasMetallicFactor  MaterialFlags = 1 << 1
	HasRoughnessFactor MaterialFlags = 1 << 2
	HasEmissiveFactor  MaterialFlags = 1 << 3
	HasAlphaMode       MaterialFlags = 1 << 4
	HasDoubleSided     MaterialFlags = 1 << 5
	// HasSamplers is material-scoped: when set, every texture ref in the
	// material carries a four-byte sampler block.
	HasSamplers MaterialFlags = 1 << 6
)

// Has returns true if all bits of mask are set.
func (f MaterialFlags) Has(mask MaterialFlags) bool { return f&mask == mask }

// AlphaMode selects how base-color alpha is interpreted.
type AlphaMode uint8

const (
	AlphaOpaque AlphaMode = 0
	AlphaMask   AlphaMode = 1
	AlphaBlend  AlphaMode = 2
)

// String returns a human-readable alpha mode name.
func (a AlphaMode) String() string {
	switch a {
	case AlphaOpaque:
		return "opaque"
	case AlphaMask:
		return "mask"
	case AlphaBlend:
		return "blend"
	default:
		return "unknown"
	}
}

// TextureSlot identifies which material channel a texture ref feeds. At
// most one ref per slot is meaningful, but the format does not enforce
// uniqueness.
type TextureSlot uint8

const (
	SlotBaseColor  TextureSlot = 0
	SlotMetalRough TextureSlot = 1
	SlotNormal     TextureSlot = 2
	SlotOcclusion  TextureSlot = 3
	SlotEmissive   TextureSlot = 4
)

// String returns a human-readable slot name.
func (s TextureSlot) String() string {
	switch s {
	case SlotBaseColor:
		return "basecolor"
	case SlotMetalRough:
		return "metalrough"
	case SlotNormal:
		return "normal"
	case SlotOcclusion:
		return "occlusion"
	case SlotEmissive:
		return "emissive"
	default:
		return "unknown"
	}
}

// RefKind says whether a texture's bytes are stored inline or referenced by
// URI for external resolution.
type RefKind uint8

const (
	RefExternal RefKind = 0
	RefEmbedded RefKind = 1
)

// MimeType tags the encoding of an embedded payload. The codec never
// decodes the payload; the tag exists for the consumer.
type MimeType uint8

const (
	MimePNG  MimeType = 0
	MimeJPEG MimeType = 1
	MimeTGA  MimeType = 2
)

// ContentType returns the RFC 6838 media type for the tag.
func (m MimeType) ContentType() string {
	switch m {
	case MimePNG:
		return "image/png"
	case MimeJPEG:
		return "image/jpeg"
	case MimeTGA:
		return "image/x-tga"
	default:
		return "application/octet-stream"
	}
}

// WrapMode is a sampler addressing mode.
type WrapMode uint8

const (
	WrapRepeat WrapMode = 0
	WrapClamp  WrapMode = 1
	WrapMirror WrapMode = 2
)

// FilterMode is a sampler filter. Mag filters may only use the first two
// values; min filters may use all six.
type FilterMode uint8

const (
	FilterNearest              FilterMode = 0
	FilterLinear               FilterMode = 1
	FilterNearestMipmapNearest FilterMode = 2
	FilterLinearMipmapNearest  FilterMode = 3
	FilterNearestMipmapLinear  FilterMode = 4
	FilterLinearMipmapLinear   FilterMode = 5
)

// Sampler describes texture addressing and filtering.
type Sampler struct {
	WrapU     WrapMode
	WrapV     WrapMode
	MinFilter FilterMode
	MagFilter FilterMode
}

// TextureRef binds an image, embedded or external, to a material slot.
type TextureRef struct {
	Slot  TextureSlot
	UVSet uint8 // 0 or 1
	Kind  RefKind

	// Optional UV transform. Each field is individually flagged on the
	// wire; nil means omitted, not zero. Rotation is radians and is never
	// applied by the codec.
	Offset   *[2]float32
	Scale    *[2]float32
	Rotation *float32

	// Sampler is meaningful only when the owning material sets HasSamplers.
	Sampler Sampler

	// External payload.
	URI string

	// Embedded payload. The codec never interprets Data as an image.
	Mime MimeType
	Data []byte
}

// Material is a PBR-style material description. Flag bits declare which
// factor fields carry meaning; unflagged fields hold their zero value and
// occupy no wire bytes.
type Material struct {
	Name  string
	Flags MaterialFlags

	BaseColor   [4]float32 // iff HasBaseColorFactor
	Metallic    float32    // iff HasMetallicFactor
	Roughness   float32    // iff HasRoughnessFactor
	Emissive    [3]float32 // iff HasEmissiveFactor
	AlphaMode   AlphaMode  // iff HasAlphaMode
	AlphaCutoff float32    // iff HasAlphaMode and AlphaMode == AlphaMask
	DoubleSided bool       // iff HasDoubleSided

	Textures []TextureRef
}

// TextureBySlot returns the first ref bound to slot, or nil.
func (m *Material) TextureBySlot(slot TextureSlot) *TextureRef {
	for i := range m.Textures {
		if m.Textures[i].Slot == slot {
			return &m.Textures[i]
		}
	}
	return nil
}
