package mesh

import (
	"math"

	"github.com/Daemonaise/studio/internal/geometry"
)

// reduction holds the geometric aggregates computed over the final
// triangle list, already in millimeters.
type reduction struct {
	Box         geometry.BoundingBox
	SurfaceArea float64
	Volume      float64
	Watertight  bool
}

type vertexKey struct {
	X, Y, Z float64
}

// edgeKey identifies an undirected edge: the two endpoints are stored
// in a canonical order so (a,b) and (b,a) hash identically.
type edgeKey struct {
	A, B vertexKey
}

func keyOf(v geometry.Vector3) vertexKey {
	return vertexKey{X: v.X, Y: v.Y, Z: v.Z}
}

func (k vertexKey) less(other vertexKey) bool {
	if k.X != other.X {
		return k.X < other.X
	}
	if k.Y != other.Y {
		return k.Y < other.Y
	}
	return k.Z < other.Z
}

func newEdgeKey(a, b geometry.Vector3) edgeKey {
	ka, kb := keyOf(a), keyOf(b)
	if kb.less(ka) {
		ka, kb = kb, ka
	}
	return edgeKey{A: ka, B: kb}
}

// reduce computes bounding box, surface area, enclosed volume and the
// watertightness estimate in a single pass over the triangles.
//
// Volume uses the signed-tetrahedron (divergence theorem) method: the
// absolute value of the sum is the enclosed volume for any
// topologically closed soup, even with inconsistent winding.
//
// Watertightness is an estimate, not a proof: the mesh is reported
// watertight only when every undirected edge is shared by exactly two
// triangles. That is necessary but not sufficient for true manifold
// closure. Zero triangles is a valid degenerate input and reduces to
// an all-zero, watertight result.
func reduce(triangles []geometry.Triangle) reduction {
	box := geometry.NewBoundingBox()
	var surfaceArea, signedVolume float64
	edges := make(map[edgeKey]int, len(triangles)*3/2)

	for _, t := range triangles {
		box.Extend(t.V1)
		box.Extend(t.V2)
		box.Extend(t.V3)

		surfaceArea += t.Area()
		signedVolume += t.SignedVolume()

		edges[newEdgeKey(t.V1, t.V2)]++
		edges[newEdgeKey(t.V2, t.V3)]++
		edges[newEdgeKey(t.V3, t.V1)]++
	}

	watertight := true
	for _, n := range edges {
		if n != 2 {
			watertight = false
			break
		}
	}

	return reduction{
		Box:         box,
		SurfaceArea: surfaceArea,
		Volume:      math.Abs(signedVolume),
		Watertight:  watertight,
	}
}
