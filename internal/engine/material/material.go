// Package material turns container material records into resolved PBR
// materials: factor defaults applied, embedded texture payloads decoded.
package material

import (
	"fmt"
	"image"

	"github.com/vnbformat/vnb-go/internal/engine/texture"
	"github.com/vnbformat/vnb-go/pkg/vnb"
)

// Texture is one decoded texture binding. Image is nil for external
// references that were never resolved into bytes.
type Texture struct {
	Image      *image.RGBA
	URI        string
	UVSet      uint8
	Offset     [2]float32
	Scale      [2]float32
	Rotation   float32
	Sampler    vnb.Sampler
	HasSampler bool
}

// Material is a render-ready PBR material. Unset factors take the usual
// metallic-roughness defaults.
type Material struct {
	Name        string
	BaseColor   [4]float32
	Metallic    float32
	Roughness   float32
	Emissive    [3]float32
	AlphaMode   vnb.AlphaMode
	AlphaCutoff float32
	DoubleSided bool
	Textures    map[vnb.TextureSlot]*Texture
}

// Build resolves every material in the container. Embedded payloads are
// decoded eagerly; a payload that fails to decode fails the build.
func Build(c *vnb.MeshContainer) ([]Material, error) {
	if len(c.Materials) == 0 {
		return nil, nil
	}

	out := make([]Material, len(c.Materials))
	for i := range c.Materials {
		m, err := build(&c.Materials[i])
		if err != nil {
			return nil, fmt.Errorf("material %d (%q): %w", i, c.Materials[i].Name, err)
		}
		out[i] = m
	}
	return out, nil
}

func build(src *vnb.Material) (Material, error) {
	m := Material{
		Name:        src.Name,
		BaseColor:   [4]float32{1, 1, 1, 1},
		Metallic:    1,
		Roughness:   1,
		AlphaCutoff: 0.5,
	}

	if src.Flags.Has(vnb.HasBaseColorFactor) {
		m.BaseColor = src.BaseColor
	}
	if src.Flags.Has(vnb.HasMetallicFactor) {
		m.Metallic = src.Metallic
	}
	if src.Flags.Has(vnb.HasRoughnessFactor) {
		m.Roughness = src.Roughness
	}
	if src.Flags.Has(vnb.HasEmissiveFactor) {
		m.Emissive = src.Emissive
	}
	if src.Flags.Has(vnb.HasAlphaMode) {
		m.AlphaMode = src.AlphaMode
		if src.AlphaMode == vnb.AlphaMask {
			m.AlphaCutoff = src.AlphaCutoff
		}
	}
	if src.Flags.Has(vnb.HasDoubleSided) {
		m.DoubleSided = src.DoubleSided
	}

	if len(src.Textures) == 0 {
		return m, nil
	}

	m.Textures = make(map[vnb.TextureSlot]*Texture, len(src.Textures))
	for i := range src.Textures {
		ref := &src.Textures[i]
		tex := &Texture{
			URI:        ref.URI,
			UVSet:      ref.UVSet,
			Scale:      [2]float32{1, 1},
			Sampler:    ref.Sampler,
			HasSampler: src.Flags.Has(vnb.HasSamplers),
		}
		if ref.Offset != nil {
			tex.Offset = *ref.Offset
		}
		if ref.Scale != nil {
			tex.Scale = *ref.Scale
		}
		if ref.Rotation != nil {
			tex.Rotation = *ref.Rotation
		}
		if ref.Kind == vnb.RefEmbedded {
			img, err := texture.Decode(ref.Mime, ref.Data)
			if err != nil {
				return Material{}, fmt.Errorf("slot %s: %w", ref.Slot, err)
			}
			tex.Image = img
		}
		m.Textures[ref.Slot] = tex
	}
	return m, nil
}
