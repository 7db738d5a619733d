package mesh

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/Daemonaise/studio/internal/geometry"
)

// Zip-bomb guards for 3MF archives.
const (
	threeMFMaxEntries    = 1000
	threeMFMaxModelBytes = 100 << 20
)

// unitScaleMm maps declared unit names to a millimeter conversion
// factor applied per vertex as it is read.
var unitScaleMm = map[string]float64{
	"micron":     0.001,
	"millimeter": 1,
	"centimeter": 10,
	"meter":      1000,
	"inch":       25.4,
	"foot":       304.8,
}

// resolveUnit returns the scale factor and units label for a declared
// unit attribute, falling back to millimeter with a note when the
// attribute is absent or unrecognized.
func resolveUnit(declared string, notes []string) (float64, string, []string) {
	if declared == "" {
		return 1, "millimeter", append(notes, NoteUnitAssumedMm)
	}
	scale, ok := unitScaleMm[declared]
	if !ok {
		return 1, "millimeter", append(notes, NoteUnitUnrecognized)
	}
	return scale, declared, notes
}

type threeMFModel struct {
	XMLName   xml.Name `xml:"model"`
	Unit      string   `xml:"unit,attr"`
	Resources struct {
		Objects []threeMFObject `xml:"object"`
	} `xml:"resources"`
	Build struct {
		Items []struct {
			Transform string `xml:"transform,attr"`
		} `xml:"item"`
	} `xml:"build"`
}

type threeMFObject struct {
	ID   string `xml:"id,attr"`
	Mesh *struct {
		Vertices struct {
			List []struct {
				X float64 `xml:"x,attr"`
				Y float64 `xml:"y,attr"`
				Z float64 `xml:"z,attr"`
			} `xml:"vertex"`
		} `xml:"vertices"`
		Triangles struct {
			List []struct {
				V1 int `xml:"v1,attr"`
				V2 int `xml:"v2,attr"`
				V3 int `xml:"v3,attr"`
			} `xml:"triangle"`
		} `xml:"triangles"`
	} `xml:"mesh"`
	Components *struct {
		List []struct {
			ObjectID  string `xml:"objectid,attr"`
			Transform string `xml:"transform,attr"`
		} `xml:"component"`
	} `xml:"components"`
}

// parse3MF opens the buffer as a zip archive, locates the model part
// and parses it as XML. Multiple mesh objects are concatenated into a
// single triangle set; item and component transforms are noted but
// not applied.
func parse3MF(data []byte) ([]geometry.Triangle, string, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", nil, parseErrorf(Format3MF, "buffer is not a zip archive: %v", err)
	}
	if len(zr.File) > threeMFMaxEntries {
		return nil, "", nil, parseErrorf(Format3MF, "archive has %d entries, limit is %d", len(zr.File), threeMFMaxEntries)
	}

	part := locateModelPart(zr)
	if part == nil {
		return nil, "", nil, parseErrorf(Format3MF, "archive contains no model part")
	}
	if part.UncompressedSize64 > threeMFMaxModelBytes {
		return nil, "", nil, parseErrorf(Format3MF, "model part %q exceeds the %d byte limit", part.Name, threeMFMaxModelBytes)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, "", nil, parseErrorf(Format3MF, "opening model part %q: %v", part.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, threeMFMaxModelBytes+1))
	if err != nil {
		return nil, "", nil, parseErrorf(Format3MF, "reading model part %q: %v", part.Name, err)
	}
	if len(raw) > threeMFMaxModelBytes {
		return nil, "", nil, parseErrorf(Format3MF, "model part %q exceeds the %d byte limit", part.Name, threeMFMaxModelBytes)
	}

	var model threeMFModel
	if err := xml.Unmarshal(raw, &model); err != nil {
		return nil, "", nil, parseErrorf(Format3MF, "model part %q is not valid xml: %v", part.Name, err)
	}

	var notes []string
	scale, units, notes := resolveUnit(model.Unit, notes)

	var triangles []geometry.Triangle
	meshObjects := 0
	transformsSeen := false

	for _, obj := range model.Resources.Objects {
		if obj.Components != nil {
			for _, c := range obj.Components.List {
				if c.Transform != "" {
					transformsSeen = true
				}
			}
		}
		if obj.Mesh == nil {
			continue
		}
		meshObjects++

		vertices := make([]geometry.Vector3, 0, len(obj.Mesh.Vertices.List))
		for _, v := range obj.Mesh.Vertices.List {
			vertices = append(vertices, geometry.NewVector3(v.X*scale, v.Y*scale, v.Z*scale))
		}

		for _, tri := range obj.Mesh.Triangles.List {
			for _, idx := range []int{tri.V1, tri.V2, tri.V3} {
				if idx < 0 || idx >= len(vertices) {
					return nil, "", nil, parseErrorf(Format3MF, "object %s: triangle vertex index %d out of range (object has %d vertices)", obj.ID, idx, len(vertices))
				}
			}
			triangles = append(triangles, geometry.NewTriangle(vertices[tri.V1], vertices[tri.V2], vertices[tri.V3]))
		}
	}

	for _, item := range model.Build.Items {
		if item.Transform != "" {
			transformsSeen = true
		}
	}

	if meshObjects > 1 {
		notes = append(notes, NoteMultipleObjects)
	}
	if transformsSeen {
		notes = append(notes, NoteTransformsIgnored)
	}

	return triangles, units, notes, nil
}

// locateModelPart prefers the conventional 3D/*.model location and
// falls back to any entry ending in ".model".
func locateModelPart(zr *zip.Reader) *zip.File {
	var fallback *zip.File
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".model") {
			continue
		}
		if strings.HasPrefix(f.Name, "3D/") {
			return f
		}
		if fallback == nil {
			fallback = f
		}
	}
	return fallback
}
