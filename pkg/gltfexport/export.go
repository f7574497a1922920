// Package gltfexport converts decoded mesh containers into glTF 2.0
// documents so standard DCC tools can open them.
package gltfexport

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/vnbformat/vnb-go/internal/engine/texture"
	"github.com/vnbformat/vnb-go/pkg/vnb"
)

// Export builds a single-node glTF document from a container. Submeshes
// become primitives; TGA payloads are transcoded to PNG since glTF does
// not allow them. Texture transforms have no core glTF equivalent and
// are dropped.
func Export(c *vnb.MeshContainer) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "vnb-go"

	attributes, err := writeVertexStreams(doc, c)
	if err != nil {
		return nil, err
	}

	materialIdx, err := writeMaterials(doc, c)
	if err != nil {
		return nil, err
	}

	mesh := &gltf.Mesh{Name: c.Name}
	for i, sm := range c.SubMeshes {
		indices := make([]uint32, sm.IndexCount)
		for j := uint32(0); j < sm.IndexCount; j++ {
			src := int64(c.Index(int(sm.StartIndex + j)))
			ref := src + int64(sm.BaseVertex)
			if ref < 0 || ref >= int64(c.VertexCount()) {
				return nil, fmt.Errorf("gltfexport: submesh %d index %d resolves to vertex %d of %d",
					i, sm.StartIndex+j, ref, c.VertexCount())
			}
			indices[j] = uint32(ref)
		}

		primitive := &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: attributes,
			Mode:       primitiveMode(sm.Topology),
		}
		if sm.Material != vnb.NoMaterial {
			if sm.Material < 0 || sm.Material >= len(materialIdx) {
				return nil, fmt.Errorf("gltfexport: submesh %d references material %d of %d",
					i, sm.Material, len(materialIdx))
			}
			primitive.Material = gltf.Index(materialIdx[sm.Material])
		}
		mesh.Primitives = append(mesh.Primitives, primitive)
	}

	doc.Meshes = append(doc.Meshes, mesh)
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: c.Name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))

	return doc, nil
}

// Save exports the container and writes the document to path.
func Save(c *vnb.MeshContainer, path string) error {
	doc, err := Export(c)
	if err != nil {
		return err
	}
	return gltf.Save(doc, path)
}

func writeVertexStreams(doc *gltf.Document, c *vnb.MeshContainer) (map[string]uint32, error) {
	vcount := c.VertexCount()
	if vcount == 0 {
		return nil, fmt.Errorf("gltfexport: container has no vertices")
	}

	attributes := make(map[string]uint32)

	positions := make([][3]float32, vcount)
	for i := range positions {
		copy(positions[i][:], c.Positions[i*3:i*3+3])
	}
	attributes["POSITION"] = modeler.WritePosition(doc, positions)

	if c.Flags.Has(vnb.HasNormals) {
		normals := make([][3]float32, vcount)
		for i := range normals {
			copy(normals[i][:], c.Normals[i*3:i*3+3])
		}
		attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
	}
	if c.Flags.Has(vnb.HasTangents) {
		tangents := make([][4]float32, vcount)
		for i := range tangents {
			copy(tangents[i][:], c.Tangents[i*4:i*4+4])
		}
		attributes["TANGENT"] = modeler.WriteTangent(doc, tangents)
	}
	if c.Flags.Has(vnb.HasColors) {
		colors := make([][4]float32, vcount)
		for i := range colors {
			copy(colors[i][:], c.Colors[i*4:i*4+4])
		}
		attributes["COLOR_0"] = modeler.WriteColor(doc, colors)
	}
	if c.Flags.Has(vnb.HasUV0) {
		uvs := make([][2]float32, vcount)
		for i := range uvs {
			copy(uvs[i][:], c.UV0[i*2:i*2+2])
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
	}
	if c.Flags.Has(vnb.HasUV1) {
		uvs := make([][2]float32, vcount)
		for i := range uvs {
			copy(uvs[i][:], c.UV1[i*2:i*2+2])
		}
		attributes["TEXCOORD_1"] = modeler.WriteTextureCoord(doc, uvs)
	}

	return attributes, nil
}

// writeMaterials appends one glTF material per container material and
// returns the index mapping.
func writeMaterials(doc *gltf.Document, c *vnb.MeshContainer) ([]uint32, error) {
	if len(c.Materials) == 0 {
		return nil, nil
	}

	indices := make([]uint32, len(c.Materials))
	for i := range c.Materials {
		src := &c.Materials[i]

		pbr := &gltf.PBRMetallicRoughness{}
		if src.Flags.Has(vnb.HasBaseColorFactor) {
			factor := src.BaseColor
			pbr.BaseColorFactor = &factor
		}
		if src.Flags.Has(vnb.HasMetallicFactor) {
			pbr.MetallicFactor = f32ptr(src.Metallic)
		}
		if src.Flags.Has(vnb.HasRoughnessFactor) {
			pbr.RoughnessFactor = f32ptr(src.Roughness)
		}

		mat := &gltf.Material{
			Name:                 src.Name,
			PBRMetallicRoughness: pbr,
		}
		if src.Flags.Has(vnb.HasEmissiveFactor) {
			mat.EmissiveFactor = src.Emissive
		}
		if src.Flags.Has(vnb.HasAlphaMode) {
			switch src.AlphaMode {
			case vnb.AlphaMask:
				mat.AlphaMode = gltf.AlphaMask
				mat.AlphaCutoff = f32ptr(src.AlphaCutoff)
			case vnb.AlphaBlend:
				mat.AlphaMode = gltf.AlphaBlend
			default:
				mat.AlphaMode = gltf.AlphaOpaque
			}
		}
		if src.Flags.Has(vnb.HasDoubleSided) {
			mat.DoubleSided = src.DoubleSided
		}

		for j := range src.Textures {
			ref := &src.Textures[j]
			texIdx, err := writeTexture(doc, src, ref, fmt.Sprintf("%s_%s", src.Name, ref.Slot))
			if err != nil {
				return nil, fmt.Errorf("gltfexport: material %q slot %s: %w", src.Name, ref.Slot, err)
			}

			switch ref.Slot {
			case vnb.SlotBaseColor:
				pbr.BaseColorTexture = &gltf.TextureInfo{Index: texIdx, TexCoord: uint32(ref.UVSet)}
			case vnb.SlotMetalRough:
				pbr.MetallicRoughnessTexture = &gltf.TextureInfo{Index: texIdx, TexCoord: uint32(ref.UVSet)}
			case vnb.SlotNormal:
				mat.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(texIdx), TexCoord: uint32(ref.UVSet)}
			case vnb.SlotOcclusion:
				mat.OcclusionTexture = &gltf.OcclusionTexture{Index: gltf.Index(texIdx), TexCoord: uint32(ref.UVSet)}
			case vnb.SlotEmissive:
				mat.EmissiveTexture = &gltf.TextureInfo{Index: texIdx, TexCoord: uint32(ref.UVSet)}
			}
		}

		indices[i] = uint32(len(doc.Materials))
		doc.Materials = append(doc.Materials, mat)
	}
	return indices, nil
}

func writeTexture(doc *gltf.Document, mat *vnb.Material, ref *vnb.TextureRef, name string) (uint32, error) {
	var imageIdx uint32

	switch ref.Kind {
	case vnb.RefExternal:
		imageIdx = uint32(len(doc.Images))
		doc.Images = append(doc.Images, &gltf.Image{Name: name, URI: ref.URI})
	case vnb.RefEmbedded:
		data, mime := ref.Data, ref.Mime.ContentType()
		if ref.Mime == vnb.MimeTGA {
			img, err := texture.Decode(ref.Mime, ref.Data)
			if err != nil {
				return 0, err
			}
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return 0, err
			}
			data, mime = buf.Bytes(), "image/png"
		}
		idx, err := modeler.WriteImage(doc, name, mime, bytes.NewReader(data))
		if err != nil {
			return 0, err
		}
		imageIdx = idx
	default:
		return 0, fmt.Errorf("unknown reference kind %d", ref.Kind)
	}

	tex := &gltf.Texture{Name: name, Source: gltf.Index(imageIdx)}
	if mat.Flags.Has(vnb.HasSamplers) {
		samplerIdx := uint32(len(doc.Samplers))
		doc.Samplers = append(doc.Samplers, convertSampler(ref.Sampler, name))
		tex.Sampler = gltf.Index(samplerIdx)
	}

	texIdx := uint32(len(doc.Textures))
	doc.Textures = append(doc.Textures, tex)
	return texIdx, nil
}

func convertSampler(s vnb.Sampler, name string) *gltf.Sampler {
	sampler := &gltf.Sampler{Name: name + "_sampler"}

	switch s.WrapU {
	case vnb.WrapClamp:
		sampler.WrapS = gltf.WrapClampToEdge
	case vnb.WrapMirror:
		sampler.WrapS = gltf.WrapMirroredRepeat
	default:
		sampler.WrapS = gltf.WrapRepeat
	}
	switch s.WrapV {
	case vnb.WrapClamp:
		sampler.WrapT = gltf.WrapClampToEdge
	case vnb.WrapMirror:
		sampler.WrapT = gltf.WrapMirroredRepeat
	default:
		sampler.WrapT = gltf.WrapRepeat
	}

	switch s.MinFilter {
	case vnb.FilterNearest:
		sampler.MinFilter = gltf.MinNearest
	case vnb.FilterLinear:
		sampler.MinFilter = gltf.MinLinear
	case vnb.FilterNearestMipmapNearest:
		sampler.MinFilter = gltf.MinNearestMipMapNearest
	case vnb.FilterLinearMipmapNearest:
		sampler.MinFilter = gltf.MinLinearMipMapNearest
	case vnb.FilterNearestMipmapLinear:
		sampler.MinFilter = gltf.MinNearestMipMapLinear
	default:
		sampler.MinFilter = gltf.MinLinearMipMapLinear
	}
	if s.MagFilter == vnb.FilterNearest {
		sampler.MagFilter = gltf.MagNearest
	} else {
		sampler.MagFilter = gltf.MagLinear
	}
	return sampler
}

func primitiveMode(t vnb.Topology) gltf.PrimitiveMode {
	if t == vnb.TopologyLines {
		return gltf.PrimitiveLines
	}
	return gltf.PrimitiveTriangles
}

func f32ptr(v float32) *float32 {
	return &v
}
