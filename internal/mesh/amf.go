package mesh

import (
	"encoding/xml"

	"github.com/Daemonaise/studio/internal/geometry"
)

type amfRoot struct {
	XMLName xml.Name    `xml:"amf"`
	Unit    string      `xml:"unit,attr"`
	Objects []amfObject `xml:"object"`
}

type amfObject struct {
	ID   string `xml:"id,attr"`
	Mesh struct {
		Vertices struct {
			List []struct {
				Coordinates struct {
					X float64 `xml:"x"`
					Y float64 `xml:"y"`
					Z float64 `xml:"z"`
				} `xml:"coordinates"`
			} `xml:"vertex"`
		} `xml:"vertices"`
		Volumes []struct {
			Triangles []struct {
				V1 int `xml:"v1"`
				V2 int `xml:"v2"`
				V3 int `xml:"v3"`
			} `xml:"triangle"`
		} `xml:"volume"`
	} `xml:"mesh"`
}

// parseAMF parses the (unzipped) XML document. Each object owns a
// vertex pool shared by its volume blocks; multiple objects and
// multiple volumes are concatenated into one triangle set. A triangle
// referencing a vertex outside the pool is a hard parse error, never
// a silently dropped triangle.
func parseAMF(data []byte) ([]geometry.Triangle, string, []string, error) {
	var root amfRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, "", nil, parseErrorf(FormatAMF, "buffer is not valid xml: %v", err)
	}

	var notes []string
	scale, units, notes := resolveUnit(root.Unit, notes)

	var triangles []geometry.Triangle
	multiVolume := false

	for _, obj := range root.Objects {
		vertices := make([]geometry.Vector3, 0, len(obj.Mesh.Vertices.List))
		for _, v := range obj.Mesh.Vertices.List {
			c := v.Coordinates
			vertices = append(vertices, geometry.NewVector3(c.X*scale, c.Y*scale, c.Z*scale))
		}

		if len(obj.Mesh.Volumes) > 1 {
			multiVolume = true
		}
		for _, vol := range obj.Mesh.Volumes {
			for _, tri := range vol.Triangles {
				for _, idx := range []int{tri.V1, tri.V2, tri.V3} {
					if idx < 0 || idx >= len(vertices) {
						return nil, "", nil, parseErrorf(FormatAMF, "object %s: triangle vertex index %d out of range (object has %d vertices)", obj.ID, idx, len(vertices))
					}
				}
				triangles = append(triangles, geometry.NewTriangle(vertices[tri.V1], vertices[tri.V2], vertices[tri.V3]))
			}
		}
	}

	if len(root.Objects) > 1 {
		notes = append(notes, NoteMultipleObjects)
	}
	if multiVolume {
		notes = append(notes, NoteMultipleVolumes)
	}

	return triangles, units, notes, nil
}
