package geometry

// Triangle represents a triangular facet in 3D space.
// Vertices are owned values; a triangle is the unit every mesh
// format is reduced to before any metric is computed.
type Triangle struct {
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle from three vertices.
func NewTriangle(v1, v2, v3 Vector3) Triangle {
	return Triangle{V1: v1, V2: v2, V3: v3}
}

// Area returns the surface area of the triangle.
func (t Triangle) Area() float64 {
	edge1 := t.V2.Sub(t.V1)
	edge2 := t.V3.Sub(t.V1)
	return edge1.Cross(edge2).Length() / 2.0
}

// SignedVolume returns the signed volume of the tetrahedron formed by
// the triangle and the origin. Summed over a closed surface this gives
// the enclosed volume by the divergence theorem.
func (t Triangle) SignedVolume() float64 {
	return t.V1.Dot(t.V2.Cross(t.V3)) / 6.0
}
