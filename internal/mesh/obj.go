package mesh

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/Daemonaise/studio/internal/geometry"
)

// parseOBJ accumulates "v" lines into a vertex pool and fan-
// triangulates "f" faces. OBJ has no unit field; coordinates are
// assumed to already be millimeters, same policy as STL.
func parseOBJ(data []byte) ([]geometry.Triangle, string, []string, error) {
	var (
		pool      []geometry.Vector3
		triangles []geometry.Triangle
		notes     []string
		ngonNoted bool
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, "", nil, parseErrorf(FormatOBJ, "line %d: vertex with fewer than 3 coordinates", lineNo)
			}
			x, err1 := strconv.ParseFloat(fields[1], 64)
			y, err2 := strconv.ParseFloat(fields[2], 64)
			z, err3 := strconv.ParseFloat(fields[3], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, "", nil, parseErrorf(FormatOBJ, "line %d: non-numeric vertex coordinate", lineNo)
			}
			pool = append(pool, geometry.NewVector3(x, y, z))

		case "f":
			refs := fields[1:]
			if len(refs) < 3 {
				return nil, "", nil, parseErrorf(FormatOBJ, "line %d: face with fewer than 3 vertices", lineNo)
			}

			face := make([]geometry.Vector3, 0, len(refs))
			for _, ref := range refs {
				v, err := resolveFaceVertex(ref, pool, lineNo)
				if err != nil {
					return nil, "", nil, err
				}
				face = append(face, v)
			}

			if len(face) > 3 && !ngonNoted {
				notes = append(notes, NoteTriangulatedNgons)
				ngonNoted = true
			}
			for k := 1; k+1 < len(face); k++ {
				triangles = append(triangles, geometry.NewTriangle(face[0], face[k], face[k+1]))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, "", nil, parseErrorf(FormatOBJ, "reading buffer: %v", err)
	}

	return triangles, unitsAssumedMm, notes, nil
}

// resolveFaceVertex resolves one face vertex reference. References may
// carry texture/normal parts ("v/vt/vn"); only the vertex index in
// front of the first slash matters here. Indices are 1-based, with
// negative values counting back from the current end of the pool.
func resolveFaceVertex(ref string, pool []geometry.Vector3, lineNo int) (geometry.Vector3, error) {
	idxText, _, _ := strings.Cut(ref, "/")
	idx, err := strconv.Atoi(idxText)
	if err != nil {
		return geometry.Vector3{}, parseErrorf(FormatOBJ, "line %d: malformed face index %q", lineNo, ref)
	}

	var i int
	switch {
	case idx > 0:
		i = idx - 1
	case idx < 0:
		i = len(pool) + idx
	default:
		return geometry.Vector3{}, parseErrorf(FormatOBJ, "line %d: face index 0 is not valid", lineNo)
	}

	if i < 0 || i >= len(pool) {
		return geometry.Vector3{}, parseErrorf(FormatOBJ, "line %d: face index %d out of range (pool has %d vertices)", lineNo, idx, len(pool))
	}
	return pool[i], nil
}
