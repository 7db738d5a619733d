package estimate

import (
	"context"
	"strings"

	"github.com/Daemonaise/studio/internal/mesh"
)

// densityByFamily maps filament family prefixes to density in g/cm3.
// Longer prefixes come first so "petg" never falls through to a
// shorter match.
var densityByFamily = []struct {
	prefix  string
	density float64
}{
	{"petg", 1.27},
	{"pla", 1.24},
	{"abs", 1.04},
	{"asa", 1.07},
	{"tpu", 1.21},
	{"pc", 1.20},
	{"pa", 1.14},
}

// flowRateByNozzle maps nozzle sizes to sustained volumetric flow in
// mm3 per second.
var flowRateByNozzle = map[string]float64{
	"0.25": 4,
	"0.4":  9,
	"0.6":  16,
	"0.8":  24,
	"1.0":  32,
}

const (
	defaultDensity  = 1.20
	defaultFlowRate = 9.0

	// solidFraction approximates shell plus sparse infill as a share
	// of the enclosed volume.
	solidFraction = 0.35

	// setupHours covers heatup, homing and first-layer overhead.
	setupHours = 0.2

	minimumGrams = 1.0
)

// Heuristic is a deterministic estimator built from the mesh metrics
// alone. It exists so quoting never depends on network or model
// availability: the CLI and the test suite run on it, and it is the
// fallback when no remote estimator is configured.
type Heuristic struct{}

var _ Estimator = Heuristic{}

// Estimate derives a baseline from enclosed volume, filament density
// and nozzle flow rate. The result is a pure function of its inputs.
func (Heuristic) Estimate(_ context.Context, metrics *mesh.Metrics, filamentID, nozzleSize string) (Baseline, error) {
	density := defaultDensity
	family := strings.ToLower(filamentID)
	for _, entry := range densityByFamily {
		if strings.HasPrefix(family, entry.prefix) {
			density = entry.density
			break
		}
	}

	flowRate, ok := flowRateByNozzle[nozzleSize]
	if !ok {
		flowRate = defaultFlowRate
	}

	extrudedMm3 := metrics.VolumeMm3 * solidFraction

	grams := extrudedMm3 / 1000.0 * density
	if grams < minimumGrams {
		grams = minimumGrams
	}

	hours := extrudedMm3/flowRate/3600.0 + setupHours

	return Baseline{PrintTimeHours: hours, MaterialGrams: grams}, nil
}
