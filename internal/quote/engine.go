package quote

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Daemonaise/studio/internal/estimate"
	"github.com/Daemonaise/studio/internal/mesh"
)

// Request carries everything one quote computation needs. The engine
// is pure: the same request against the same configuration snapshot
// always produces the same quote (modulo the generated id).
type Request struct {
	Metrics          *mesh.Metrics
	FilamentID       string
	NozzleSize       string
	AutoSelect       bool
	PreferredPrinter string
	Baseline         estimate.Baseline
}

// CostBreakdown contains the line items of a quote in a single fixed
// currency. Machine, segmentation and risk are pre-multiplier values;
// Total includes the multiplier chain and material.
type CostBreakdown struct {
	Machine      float64 `json:"machine"`
	Material     float64 `json:"material"`
	Segmentation float64 `json:"segmentation"`
	Risk         float64 `json:"risk"`
	Total        float64 `json:"total"`
}

// Quote is the output record for one priced job. It is created fresh
// per request and never persisted by this engine.
type Quote struct {
	ID               string        `json:"id"`
	Mode             Mode          `json:"mode"`
	JobScale         JobScale      `json:"jobScale"`
	PrinterKey       string        `json:"printerKey"`
	NozzleSize       string        `json:"nozzleSize"`
	FilamentID       string        `json:"filamentId"`
	BoundingBoxMm    mesh.Extents  `json:"boundingBoxMm"`
	VolumeCm3        float64       `json:"volumeCm3"`
	Segments         int           `json:"segments"`
	BedCycles        int           `json:"bedCycles"`
	EstimatedHours   float64       `json:"estimatedHours"`
	SegmentationTier Tier          `json:"segmentationTier"`
	LeadTimeMinDays  int           `json:"leadTimeMinDays"`
	LeadTimeMaxDays  int           `json:"leadTimeMaxDays"`
	Costs            CostBreakdown `json:"costs"`
	Warnings         []string      `json:"warnings"`
}

// Engine computes quotes against one immutable configuration
// snapshot. A reload of the catalog produces a new Engine; in-flight
// requests keep the snapshot they started with.
type Engine struct {
	cfg PricingConfig
}

// New creates an engine over a configuration snapshot.
func New(cfg PricingConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Quote prices one analyzed mesh. Advisory conditions surface as
// warnings on the quote; only an unknown material, an empty
// compatible fleet, or a selection invariant violation fail.
func (e *Engine) Quote(req Request) (*Quote, error) {
	filament, ok := e.cfg.Filaments[req.FilamentID]
	if !ok {
		return nil, fmt.Errorf("%w: filament %q is not in the catalog", ErrNoCompatibleMaterial, req.FilamentID)
	}

	c := e.cfg.Constants
	warnings := []string{}

	if !req.Metrics.WatertightEstimate {
		warnings = append(warnings, "mesh is not watertight; volume and mass figures are estimates")
	}

	// Unit sanity rescale: at most one rule fires.
	box := req.Metrics.BoundingBoxMm
	volumeMm3 := req.Metrics.VolumeMm3
	for _, rule := range c.RescaleRules {
		if maxDimension(box) > rule.AboveMm {
			box.X /= rule.Divisor
			box.Y /= rule.Divisor
			box.Z /= rule.Divisor
			volumeMm3 /= rule.Divisor * rule.Divisor * rule.Divisor
			warnings = append(warnings, fmt.Sprintf("model dimensions look like %s; rescaled by 1/%g", rule.Label, rule.Divisor))
			break
		}
	}

	compatible := e.compatiblePrinters(filament, req.NozzleSize)
	if len(compatible) == 0 {
		return nil, fmt.Errorf("%w: no printer in the fleet meets the requirements of filament %q with nozzle %q",
			ErrNoCompatiblePrinter, filament.ID, req.NozzleSize)
	}

	printer, segments, warnings, err := e.selectPrinter(req, compatible, box, warnings)
	if err != nil {
		return nil, err
	}

	tier := tierFor(segments)
	hours := req.Baseline.PrintTimeHours
	maxDim := maxDimension(box)

	mode := ModeHourly
	scale := ScaleSmallPart
	switch {
	case segments > 1 || maxDim > c.LargePartMaxDimensionMm || hours > c.LargeJobHours:
		mode = ModeBedCycle
		scale = ScaleLargeAssembly
	case maxDim > c.MediumPartMaxDimensionMm || hours > c.MediumPartHours:
		scale = ScaleMediumPart
	}

	bedCycles := 1
	if mode == ModeBedCycle {
		bedCycles = segments
	}

	if segments > 1 {
		warnings = append(warnings, fmt.Sprintf("segmentation required: model splits into %d segments", segments))
	}
	if printer.SegmentCeiling > 0 && segments > printer.SegmentCeiling {
		warnings = append(warnings, fmt.Sprintf("segment count %d exceeds the recommended ceiling of %d for printer %s",
			segments, printer.SegmentCeiling, printer.Key))
	}
	if req.Metrics.TriangleCount > c.ComplexityHighTriangles {
		warnings = append(warnings, fmt.Sprintf("high mesh complexity: %d triangles", req.Metrics.TriangleCount))
	}
	if hours > c.LongJobHours {
		warnings = append(warnings, fmt.Sprintf("long job: estimated %.1f machine hours", hours))
	}

	costs := e.computeCosts(printer, filament, req, mode, segments, tier, hours)
	minDays, maxDays := e.leadTime(compatible, mode, bedCycles, hours, tier)

	return &Quote{
		ID:               uuid.NewString(),
		Mode:             mode,
		JobScale:         scale,
		PrinterKey:       printer.Key,
		NozzleSize:       req.NozzleSize,
		FilamentID:       filament.ID,
		BoundingBoxMm:    box,
		VolumeCm3:        round2(volumeMm3 / 1000.0),
		Segments:         segments,
		BedCycles:        bedCycles,
		EstimatedHours:   hours,
		SegmentationTier: tier,
		LeadTimeMinDays:  minDays,
		LeadTimeMaxDays:  maxDays,
		Costs:            costs,
		Warnings:         warnings,
	}, nil
}

// compatiblePrinters keeps printers whose capability thresholds
// dominate the filament's requirements and that carry rate entries
// for the requested nozzle size.
func (e *Engine) compatiblePrinters(f Filament, nozzleSize string) []Printer {
	var compatible []Printer
	for _, p := range e.cfg.Printers {
		if p.MaxNozzleTempC < f.NozzleTempC || p.MaxBedTempC < f.BedTempC {
			continue
		}
		if f.NeedsEnclosure && !p.Enclosed {
			continue
		}
		if f.NeedsHeatedChamber && (!p.HeatedChamber || p.HeatedChamberTempC < f.ChamberTempC) {
			continue
		}
		if f.NeedsHardenedNozzle && !p.HardenedNozzle {
			continue
		}
		if _, ok := p.HourlyRates[nozzleSize]; !ok {
			continue
		}
		if _, ok := p.BedCycleRates[nozzleSize]; !ok {
			continue
		}
		compatible = append(compatible, p)
	}
	return compatible
}

// selectPrinter honors an explicitly named compatible printer when
// auto-selection is off; otherwise it picks the printer minimizing
// segment count over all orientations, breaking ties by the lowest
// hourly rate for the requested nozzle. A named-but-incompatible
// printer downgrades to auto-selection with a warning.
func (e *Engine) selectPrinter(req Request, compatible []Printer, box mesh.Extents, warnings []string) (Printer, int, []string, error) {
	dims := [3]float64{box.X, box.Y, box.Z}

	if !req.AutoSelect && req.PreferredPrinter != "" {
		for _, p := range compatible {
			if p.Key == req.PreferredPrinter {
				return p, minSegments(dims, p.BuildVolumeMm, e.cfg.Constants), warnings, nil
			}
		}
		warnings = append(warnings, fmt.Sprintf("preferred printer %q cannot run this job; selecting automatically", req.PreferredPrinter))
	}

	bestIdx := -1
	bestSegments := 0
	for i, p := range compatible {
		n := minSegments(dims, p.BuildVolumeMm, e.cfg.Constants)
		if bestIdx < 0 || n < bestSegments ||
			(n == bestSegments && p.HourlyRates[req.NozzleSize] < compatible[bestIdx].HourlyRates[req.NozzleSize]) {
			bestIdx = i
			bestSegments = n
		}
	}
	if bestIdx < 0 {
		// Unreachable with a non-empty compatible set.
		return Printer{}, 0, warnings, fmt.Errorf("%w: compatible set of %d printers produced no candidate",
			ErrPrinterSelectionFailed, len(compatible))
	}

	return compatible[bestIdx], bestSegments, warnings, nil
}

// computeCosts applies the mode-specific base cost, the clamped risk
// model, and the ordered multiplier chain. Material is added after
// the multipliers, never multiplied.
func (e *Engine) computeCosts(p Printer, f Filament, req Request, mode Mode, segments int, tier Tier, hours float64) CostBreakdown {
	c := e.cfg.Constants

	var machine, segmentation, risk float64
	if mode == ModeBedCycle {
		machine = float64(segments) * p.BedCycleRates[req.NozzleSize]
		segmentation = float64(segments) * c.SeamsPerSegment * c.SeamLaborRate

		base := machine + segmentation
		riskPercent := c.BaseRiskPercent + c.RiskTierBumpPercent[tier]
		risk = base * riskPercent / 100.0
		if risk < c.MinRiskCost {
			risk = c.MinRiskCost
		}
		// The cap keeps risk from scaling without bound as segment
		// counts grow.
		if ceiling := base * c.RiskCapPercentOfBase / 100.0; risk > ceiling {
			risk = ceiling
		}
	} else {
		machine = hours * p.HourlyRates[req.NozzleSize]
	}

	material := req.Baseline.MaterialGrams * f.PricePerGram

	multiplier := 1.0
	if m, ok := c.TierMultiplier[tier]; ok {
		multiplier *= m
	}
	switch {
	case req.Metrics.TriangleCount > c.ComplexityHighTriangles:
		multiplier *= c.ComplexityHighMult
	case req.Metrics.TriangleCount > c.ComplexityMediumTriangles:
		multiplier *= c.ComplexityMediumMult
	}
	if hours > c.LongJobHours {
		multiplier *= c.LongJobMultiplier
	}

	total := (machine+segmentation+risk)*multiplier + material

	return CostBreakdown{
		Machine:      round2(machine),
		Material:     round2(material),
		Segmentation: round2(segmentation),
		Risk:         round2(risk),
		Total:        round2(total),
	}
}

// leadTime derives the displayed day range from fleet throughput and
// the segmentation tier, bounded by the configured day caps.
func (e *Engine) leadTime(compatible []Printer, mode Mode, bedCycles int, hours float64, tier Tier) (int, int) {
	c := e.cfg.Constants

	fleetUnits := 0
	for _, p := range compatible {
		fleetUnits += p.Units
	}
	throughput := float64(fleetUnits) * c.UtilizationFactor
	if throughput < 1 {
		throughput = 1
	}

	var baseDays int
	if mode == ModeBedCycle {
		baseDays = int(math.Ceil(float64(bedCycles) / throughput))
	} else {
		baseDays = int(math.Ceil(hours / c.HourlyLeadDivisorHrs))
	}
	baseDays += c.TierExtraDays[tier]

	minDays := clampDays(baseDays, c.MinLeadDays, c.MaxLeadDays)
	maxDays := clampDays(int(math.Ceil(float64(minDays)*c.LeadTimeSpread)), c.MinLeadDays, c.MaxLeadDays)
	if maxDays < minDays {
		maxDays = minDays
	}
	return minDays, maxDays
}

func clampDays(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}

func maxDimension(box mesh.Extents) float64 {
	return math.Max(box.X, math.Max(box.Y, box.Z))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
