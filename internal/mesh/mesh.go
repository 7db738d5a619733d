package mesh

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Daemonaise/studio/internal/geometry"
)

// Format identifies a supported mesh file format.
type Format string

const (
	FormatSTL Format = "stl"
	FormatOBJ Format = "obj"
	Format3MF Format = "3mf"
	FormatAMF Format = "amf"
)

// Parser notes. STL and OBJ carry no unit information; the millimeter
// assumption there is a documented guess that downstream cost
// calibration depends on, so it is never "fixed" here.
const (
	NoteTriangulatedNgons  = "triangulated_ngons"
	NoteUnitAssumedMm      = "unit_missing_assumed_millimeter"
	NoteUnitUnrecognized   = "unit_unrecognized_assumed_millimeter"
	NoteMultipleObjects    = "multiple_objects_combined"
	NoteMultipleVolumes    = "multiple_volumes_combined"
	NoteTransformsIgnored  = "transforms_ignored"
	NoteBinaryLayoutBroken = "binary_layout_mismatch_parsed_as_ascii"
)

// unitsAssumedMm is the units label for formats that carry no unit
// information at all.
const unitsAssumedMm = "millimeter (assumed)"

// Extents holds axis-aligned dimensions in millimeters.
type Extents struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Metrics is the immutable result of analyzing one uploaded file.
// All spatial fields are millimeters regardless of the source unit;
// conversion happens inside the parser, never downstream.
type Metrics struct {
	Format             Format   `json:"format"`
	Units              string   `json:"units"`
	TriangleCount      int      `json:"triangleCount"`
	BoundingBoxMm      Extents  `json:"boundingBoxMm"`
	SurfaceAreaMm2     float64  `json:"surfaceAreaMm2"`
	VolumeMm3          float64  `json:"volumeMm3"`
	WatertightEstimate bool     `json:"watertightEstimate"`
	Notes              []string `json:"notes"`
	FileBytes          int      `json:"fileBytes"`
	ParseDurationMs    float64  `json:"parseDurationMs"`
}

// Analyze parses the given file buffer and reduces it to metrics.
// Dispatch is by file extension only; there is no content sniffing
// across formats. It returns ErrUnsupportedFormat for unknown
// extensions and *ParseError for structurally invalid buffers.
func Analyze(fileName string, data []byte) (*Metrics, error) {
	start := time.Now()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	var (
		triangles []geometry.Triangle
		units     string
		notes     []string
		err       error
		format    Format
	)

	switch ext {
	case "stl":
		format = FormatSTL
		triangles, units, notes, err = parseSTL(data)
	case "obj":
		format = FormatOBJ
		triangles, units, notes, err = parseOBJ(data)
	case "3mf":
		format = Format3MF
		triangles, units, notes, err = parse3MF(data)
	case "amf":
		format = FormatAMF
		triangles, units, notes, err = parseAMF(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	red := reduce(triangles)
	size := red.Box.Size()

	if notes == nil {
		notes = []string{}
	}

	return &Metrics{
		Format:             format,
		Units:              units,
		TriangleCount:      len(triangles),
		BoundingBoxMm:      Extents{X: size.X, Y: size.Y, Z: size.Z},
		SurfaceAreaMm2:     red.SurfaceArea,
		VolumeMm3:          red.Volume,
		WatertightEstimate: red.Watertight,
		Notes:              notes,
		FileBytes:          len(data),
		ParseDurationMs:    float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}
