package mesh

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/Daemonaise/studio/internal/geometry"
)

const (
	stlHeaderBytes   = 80
	stlTriangleBytes = 50
)

// parseSTL detects binary vs ASCII layout and parses accordingly.
//
// A buffer whose first five bytes read "solid" is treated as ASCII
// when its footer is consistent with the ASCII grammar. Otherwise the
// little-endian triangle count at offset 80 is only trusted when the
// buffer length matches the fixed binary record layout exactly; any
// mismatch falls back to ASCII parsing.
func parseSTL(data []byte) ([]geometry.Triangle, string, []string, error) {
	var notes []string

	if bytes.HasPrefix(data, []byte("solid")) && bytes.Contains(data, []byte("endsolid")) {
		tris, err := parseASCIISTL(data)
		return tris, unitsAssumedMm, notes, err
	}

	if len(data) >= stlHeaderBytes+4 {
		count := binary.LittleEndian.Uint32(data[stlHeaderBytes : stlHeaderBytes+4])
		if len(data) == stlHeaderBytes+4+stlTriangleBytes*int(count) {
			tris, err := parseBinarySTL(data, count)
			return tris, unitsAssumedMm, notes, err
		}
		if !bytes.HasPrefix(data, []byte("solid")) {
			notes = append(notes, NoteBinaryLayoutBroken)
		}
	}

	tris, err := parseASCIISTL(data)
	return tris, unitsAssumedMm, notes, err
}

// parseBinarySTL reads fixed 50-byte triangle records: a normal and
// three vertices of three little-endian IEEE-754 floats each, plus
// two attribute bytes. The normal is ignored; every metric is derived
// from vertices alone.
func parseBinarySTL(data []byte, count uint32) ([]geometry.Triangle, error) {
	triangles := make([]geometry.Triangle, 0, count)

	for i := uint32(0); i < count; i++ {
		record := data[stlHeaderBytes+4+int(i)*stlTriangleBytes:]

		// Skip the 12-byte normal.
		v1 := readVertex(record[12:])
		v2 := readVertex(record[24:])
		v3 := readVertex(record[36:])

		triangles = append(triangles, geometry.NewTriangle(v1, v2, v3))
	}

	return triangles, nil
}

func readVertex(b []byte) geometry.Vector3 {
	x := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))
	z := math.Float32frombits(binary.LittleEndian.Uint32(b[8:12]))
	return geometry.NewVector3(float64(x), float64(y), float64(z))
}

// parseASCIISTL scans whitespace-delimited tokens for "vertex" lines
// and groups every three vertices into a triangle.
func parseASCIISTL(data []byte) ([]geometry.Triangle, error) {
	tokens := strings.Fields(string(data))
	if len(tokens) == 0 || tokens[0] != "solid" {
		return nil, parseErrorf(FormatSTL, "buffer is neither a valid binary layout nor an ascii solid")
	}

	var triangles []geometry.Triangle
	var pending []geometry.Vector3

	for i := 0; i < len(tokens); i++ {
		if tokens[i] != "vertex" {
			continue
		}
		if i+3 >= len(tokens) {
			return nil, parseErrorf(FormatSTL, "truncated vertex at token %d", i)
		}

		x, err1 := strconv.ParseFloat(tokens[i+1], 64)
		y, err2 := strconv.ParseFloat(tokens[i+2], 64)
		z, err3 := strconv.ParseFloat(tokens[i+3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, parseErrorf(FormatSTL, "non-numeric vertex coordinate near token %d", i)
		}
		i += 3

		pending = append(pending, geometry.NewVector3(x, y, z))
		if len(pending) == 3 {
			triangles = append(triangles, geometry.NewTriangle(pending[0], pending[1], pending[2]))
			pending = pending[:0]
		}
	}

	if len(pending) != 0 {
		return nil, parseErrorf(FormatSTL, "facet with %d dangling vertices", len(pending))
	}

	return triangles, nil
}
