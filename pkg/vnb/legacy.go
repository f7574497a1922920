package vnb

import "fmt"

// legacyMaxCount bounds every count the legacy grammar reads. The old
// revision carried no magic, so an implausible count is the main signal
// that the input is not legacy data either.
const legacyMaxCount = 1 << 24

// decodeLegacy parses the pre-VNB2 flag-less container layout and lifts it
// into the current representation with reduced fidelity: per-submesh flat
// colors are broadcast into a combined vertex-color stream, no materials
// are produced, and a single synthetic submesh spans the whole index range
// with no material assigned. The layout is fixed: submesh count, one RGBA
// color per submesh, one vertex count per submesh, a global position array,
// a global normal array, a triangle count per submesh plus one flat 32-bit
// index array, and a UV count per submesh plus one flat UV array.
//
// This path is best-effort only: premature end of stream or a count
// mismatch fails with ErrLegacyParse, nothing is partially recovered.
func decodeLegacy(data []byte) (*MeshContainer, error) {
	r := &reader{data: data}

	subMeshCount, err := legacyCount(r, "submesh count")
	if err != nil {
		return nil, err
	}

	colors := make([][4]float32, subMeshCount)
	for i := range colors {
		for j := range colors[i] {
			if colors[i][j], err = r.f32(); err != nil {
				return nil, legacyErr("submesh colors", err)
			}
		}
	}

	vertexCounts := make([]int, subMeshCount)
	totalVerts := 0
	for i := range vertexCounts {
		if vertexCounts[i], err = legacyCount(r, "vertex count"); err != nil {
			return nil, err
		}
		totalVerts += vertexCounts[i]
	}
	if totalVerts > legacyMaxCount {
		return nil, fmt.Errorf("%w: implausible total vertex count %d", ErrLegacyParse, totalVerts)
	}

	positions, err := r.f32s(totalVerts * positionComponents)
	if err != nil {
		return nil, legacyErr("positions", err)
	}
	normals, err := r.f32s(totalVerts * normalComponents)
	if err != nil {
		return nil, legacyErr("normals", err)
	}

	totalTris := 0
	for i := 0; i < subMeshCount; i++ {
		n, err := legacyCount(r, "triangle count")
		if err != nil {
			return nil, err
		}
		totalTris += n
	}
	if totalTris > legacyMaxCount {
		return nil, fmt.Errorf("%w: implausible total triangle count %d", ErrLegacyParse, totalTris)
	}
	indices, err := r.u32s(totalTris * 3)
	if err != nil {
		return nil, legacyErr("indices", err)
	}

	totalUVs := 0
	for i := 0; i < subMeshCount; i++ {
		n, err := legacyCount(r, "uv count")
		if err != nil {
			return nil, err
		}
		totalUVs += n
	}
	if totalUVs != 0 && totalUVs != totalVerts {
		return nil, fmt.Errorf("%w: uv count %d disagrees with vertex count %d",
			ErrLegacyParse, totalUVs, totalVerts)
	}
	uvs, err := r.f32s(totalUVs * uvComponents)
	if err != nil {
		return nil, legacyErr("uvs", err)
	}

	// Broadcast each submesh color across its contiguous vertex range;
	// submesh boundaries are the cumulative vertex counts.
	var colorStream []float32
	if totalVerts > 0 {
		colorStream = make([]float32, 0, totalVerts*colorComponents)
		for i, n := range vertexCounts {
			for v := 0; v < n; v++ {
				colorStream = append(colorStream,
					colors[i][0], colors[i][1], colors[i][2], colors[i][3])
			}
		}
	}

	flags := HasPositions | HasNormals | HasColors
	if totalUVs > 0 {
		flags |= HasUV0
	}

	window := totalVerts
	if window > materialNone {
		window = materialNone // u16 vertex window saturates
	}

	return &MeshContainer{
		Flags:     flags,
		Positions: positions,
		Normals:   normals,
		Colors:    colorStream,
		UV0:       uvs,
		Indices32: indices,
		SubMeshes: []SubMesh{{
			Topology:    TopologyTriangles,
			Material:    NoMaterial,
			StartIndex:  0,
			IndexCount:  uint32(len(indices)),
			BaseVertex:  0,
			FirstVertex: 0,
			VertexCount: uint16(window),
		}},
	}, nil
}

func legacyCount(r *reader, what string) (int, error) {
	v, err := r.u32()
	if err != nil {
		return 0, legacyErr(what, err)
	}
	if v > legacyMaxCount {
		return 0, fmt.Errorf("%w: implausible %s %d", ErrLegacyParse, what, v)
	}
	return int(v), nil
}

func legacyErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrLegacyParse, what, err)
}
