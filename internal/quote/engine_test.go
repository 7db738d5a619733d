package quote

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daemonaise/studio/internal/estimate"
	"github.com/Daemonaise/studio/internal/mesh"
)

func testConstants() Constants {
	return Constants{
		PackingEfficiency: 0.9,
		ZSplitRelief:      1.25,

		SeamsPerSegment: 2,
		SeamLaborRate:   6.5,

		BaseRiskPercent:      8,
		RiskTierBumpPercent:  map[Tier]float64{TierNone: 0, TierModerate: 4, TierHeavy: 9},
		MinRiskCost:          15,
		RiskCapPercentOfBase: 35,

		TierMultiplier: map[Tier]float64{TierNone: 1.0, TierModerate: 1.1, TierHeavy: 1.25},

		ComplexityMediumTriangles: 150000,
		ComplexityHighTriangles:   600000,
		ComplexityMediumMult:      1.05,
		ComplexityHighMult:        1.15,

		LongJobHours:      48,
		LongJobMultiplier: 1.1,

		LargeJobHours:            72,
		LargePartMaxDimensionMm:  400,
		MediumPartMaxDimensionMm: 180,
		MediumPartHours:          24,

		UtilizationFactor:    0.6,
		HourlyLeadDivisorHrs: 12,
		MinLeadDays:          2,
		MaxLeadDays:          45,
		LeadTimeSpread:       1.4,
		TierExtraDays:        map[Tier]int{TierNone: 0, TierModerate: 2, TierHeavy: 5},

		RescaleRules: []RescaleRule{
			{AboveMm: 50000, Divisor: 1000, Label: "meters"},
			{AboveMm: 5000, Divisor: 10, Label: "centimeters"},
		},
	}
}

func testPrinter() Printer {
	return Printer{
		Key:            "atlas-01",
		BuildVolumeMm:  BuildVolume{X: 380, Y: 380, Z: 380},
		MaxNozzleTempC: 300,
		MaxBedTempC:    110,
		Enclosed:       true,
		HardenedNozzle: true,
		HourlyRates:    map[string]float64{"0.4": 4.0, "0.6": 4.6},
		BedCycleRates:  map[string]float64{"0.4": 90, "0.6": 98},
		Units:          3,
		SegmentCeiling: 30,
	}
}

func testConfig() PricingConfig {
	return PricingConfig{
		Printers: []Printer{testPrinter()},
		Filaments: map[string]Filament{
			"PLA": {ID: "PLA", PricePerGram: 0.08, NozzleTempC: 210, BedTempC: 60},
		},
		Constants: testConstants(),
	}
}

func cubeMetrics(sideMm float64) *mesh.Metrics {
	return &mesh.Metrics{
		Format:             mesh.FormatSTL,
		Units:              "millimeter (assumed)",
		TriangleCount:      12,
		BoundingBoxMm:      mesh.Extents{X: sideMm, Y: sideMm, Z: sideMm},
		SurfaceAreaMm2:     6 * sideMm * sideMm,
		VolumeMm3:          sideMm * sideMm * sideMm,
		WatertightEstimate: true,
		Notes:              []string{},
	}
}

func hasWarningContaining(q *Quote, substr string) bool {
	for _, w := range q.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestQuoteSmallCubeIsHourlySingleSegment(t *testing.T) {
	// A watertight 100mm cube on a single compatible 380mm printer:
	// hourly mode, one segment, and total = machine + material with
	// every multiplier at 1.
	eng := New(testConfig())

	q, err := eng.Quote(Request{
		Metrics:    cubeMetrics(100),
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	})
	require.NoError(t, err)

	assert.Equal(t, ModeHourly, q.Mode)
	assert.Equal(t, ScaleSmallPart, q.JobScale)
	assert.Equal(t, "atlas-01", q.PrinterKey)
	assert.Equal(t, 1, q.Segments)
	assert.Equal(t, 1, q.BedCycles)
	assert.Equal(t, TierNone, q.SegmentationTier)

	assert.InDelta(t, 5*4.0, q.Costs.Machine, 1e-9)
	assert.InDelta(t, 50*0.08, q.Costs.Material, 1e-9)
	assert.Zero(t, q.Costs.Segmentation)
	assert.Zero(t, q.Costs.Risk)
	assert.InDelta(t, 5*4.0+50*0.08, q.Costs.Total, 1e-9)
	assert.Empty(t, q.Warnings)
	assert.NotEmpty(t, q.ID)
}

func TestQuoteOversizeCubeIsBedCycleSegmented(t *testing.T) {
	// The same cube at 2000mm against a 380mm build volume must
	// segment and switch to bed-cycle pricing.
	eng := New(testConfig())

	q, err := eng.Quote(Request{
		Metrics:    cubeMetrics(2000),
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 60, MaterialGrams: 9000},
	})
	require.NoError(t, err)

	assert.Equal(t, ModeBedCycle, q.Mode)
	assert.Equal(t, ScaleLargeAssembly, q.JobScale)
	assert.Greater(t, q.Segments, 1)
	assert.Equal(t, q.Segments, q.BedCycles)
	assert.True(t, hasWarningContaining(q, "segmentation required"), "warnings: %v", q.Warnings)
	assert.Greater(t, q.Costs.Segmentation, 0.0)
	assert.Greater(t, q.Costs.Risk, 0.0)
}

func TestQuoteRiskIsCappedRegardlessOfSegmentCount(t *testing.T) {
	// Regression guard: with a risk percentage above the cap, risk
	// must clamp to capPercentOfBase of machine+segmentation no
	// matter how many segments the job needs.
	cfg := testConfig()
	cfg.Constants.BaseRiskPercent = 30
	cfg.Constants.RiskTierBumpPercent = map[Tier]float64{TierNone: 0, TierModerate: 10, TierHeavy: 25}
	eng := New(cfg)

	for _, side := range []float64{500, 1000, 2000, 4000} {
		q, err := eng.Quote(Request{
			Metrics:    cubeMetrics(side),
			FilamentID: "PLA",
			NozzleSize: "0.4",
			AutoSelect: true,
			Baseline:   estimate.Baseline{PrintTimeHours: 40, MaterialGrams: 1000},
		})
		require.NoError(t, err, "side %v", side)
		require.Equal(t, ModeBedCycle, q.Mode)

		base := q.Costs.Machine + q.Costs.Segmentation
		maxRisk := base * cfg.Constants.RiskCapPercentOfBase / 100.0
		assert.LessOrEqual(t, q.Costs.Risk, maxRisk+0.01, "side %v: risk exceeded the cap", side)
	}
}

func TestQuoteUnknownFilament(t *testing.T) {
	eng := New(testConfig())

	_, err := eng.Quote(Request{
		Metrics:    cubeMetrics(100),
		FilamentID: "UNOBTANIUM",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	})
	assert.True(t, errors.Is(err, ErrNoCompatibleMaterial), "got %v", err)
}

func TestQuoteNoCompatiblePrinter(t *testing.T) {
	cfg := testConfig()
	cfg.Filaments["PA-CF"] = Filament{
		ID: "PA-CF", PricePerGram: 0.22,
		NozzleTempC: 300, BedTempC: 110,
		NeedsEnclosure: true, NeedsHeatedChamber: true, ChamberTempC: 55,
		NeedsHardenedNozzle: true,
	}
	eng := New(cfg)

	_, err := eng.Quote(Request{
		Metrics:    cubeMetrics(100),
		FilamentID: "PA-CF",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	})
	assert.True(t, errors.Is(err, ErrNoCompatiblePrinter), "got %v", err)
}

func TestQuoteMissingNozzleRateMeansIncompatible(t *testing.T) {
	eng := New(testConfig())

	_, err := eng.Quote(Request{
		Metrics:    cubeMetrics(100),
		FilamentID: "PLA",
		NozzleSize: "0.8",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	})
	assert.True(t, errors.Is(err, ErrNoCompatiblePrinter), "got %v", err)
}

func TestQuotePreferredPrinterHonored(t *testing.T) {
	cfg := testConfig()
	second := testPrinter()
	second.Key = "atlas-02"
	second.HourlyRates = map[string]float64{"0.4": 2.0}
	second.BedCycleRates = map[string]float64{"0.4": 60}
	cfg.Printers = append(cfg.Printers, second)
	eng := New(cfg)

	q, err := eng.Quote(Request{
		Metrics:          cubeMetrics(100),
		FilamentID:       "PLA",
		NozzleSize:       "0.4",
		AutoSelect:       false,
		PreferredPrinter: "atlas-01",
		Baseline:         estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, "atlas-01", q.PrinterKey)
}

func TestQuotePreferredIncompatibleDowngradesWithWarning(t *testing.T) {
	eng := New(testConfig())

	q, err := eng.Quote(Request{
		Metrics:          cubeMetrics(100),
		FilamentID:       "PLA",
		NozzleSize:       "0.4",
		AutoSelect:       false,
		PreferredPrinter: "no-such-printer",
		Baseline:         estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	})
	require.NoError(t, err, "incompatible preference must downgrade, not fail")
	assert.Equal(t, "atlas-01", q.PrinterKey)
	assert.True(t, hasWarningContaining(q, "selecting automatically"), "warnings: %v", q.Warnings)
}

func TestQuoteAutoSelectionPrefersFewerSegmentsThenRate(t *testing.T) {
	cfg := testConfig()
	small := testPrinter()
	small.Key = "mini"
	small.BuildVolumeMm = BuildVolume{X: 120, Y: 120, Z: 120}
	small.HourlyRates = map[string]float64{"0.4": 1.0}
	small.BedCycleRates = map[string]float64{"0.4": 30}
	cheaperTwin := testPrinter()
	cheaperTwin.Key = "atlas-02"
	cheaperTwin.HourlyRates = map[string]float64{"0.4": 3.5}
	cheaperTwin.BedCycleRates = map[string]float64{"0.4": 85}
	cfg.Printers = append(cfg.Printers, small, cheaperTwin)
	eng := New(cfg)

	// 300mm part: needs 1 segment on either atlas, several on mini.
	// Between the two atlas twins, the cheaper hourly rate wins.
	q, err := eng.Quote(Request{
		Metrics:    cubeMetrics(300),
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 30, MaterialGrams: 800},
	})
	require.NoError(t, err)
	assert.Equal(t, "atlas-02", q.PrinterKey)
	assert.Equal(t, 1, q.Segments)
}

func TestQuoteUnitSanityRescaleFiresOnce(t *testing.T) {
	eng := New(testConfig())

	// 6000mm reads like a centimeter-unit model: the first matching
	// rule divides by 10 and the meters rule must not also fire.
	q, err := eng.Quote(Request{
		Metrics:    cubeMetrics(6000),
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 20, MaterialGrams: 500},
	})
	require.NoError(t, err)

	assert.InDelta(t, 600, q.BoundingBoxMm.X, 1e-9)
	assert.True(t, hasWarningContaining(q, "centimeters"), "warnings: %v", q.Warnings)

	rescales := 0
	for _, w := range q.Warnings {
		if strings.Contains(w, "rescaled") {
			rescales++
		}
	}
	assert.Equal(t, 1, rescales, "exactly one rescale rule may fire")
}

func TestQuoteNonWatertightWarns(t *testing.T) {
	eng := New(testConfig())

	m := cubeMetrics(100)
	m.WatertightEstimate = false

	q, err := eng.Quote(Request{
		Metrics:    m,
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	})
	require.NoError(t, err, "non-watertight input warns, never blocks")
	assert.True(t, hasWarningContaining(q, "not watertight"), "warnings: %v", q.Warnings)
}

func TestQuoteLongJobMultiplierAndWarning(t *testing.T) {
	eng := New(testConfig())

	q, err := eng.Quote(Request{
		Metrics:    cubeMetrics(100),
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 50, MaterialGrams: 500},
	})
	require.NoError(t, err)

	// 50h exceeds the 48h long-job threshold: machine cost is
	// multiplied by 1.1 while material is added unmultiplied.
	assert.InDelta(t, 50*4.0, q.Costs.Machine, 1e-9)
	assert.InDelta(t, 50*4.0*1.1+500*0.08, q.Costs.Total, 1e-9)
	assert.True(t, hasWarningContaining(q, "long job"), "warnings: %v", q.Warnings)
}

func TestQuoteMaterialNeverMultiplied(t *testing.T) {
	cfg := testConfig()
	cfg.Constants.LongJobMultiplier = 3.0
	cfg.Constants.ComplexityHighMult = 3.0
	eng := New(cfg)

	m := cubeMetrics(100)
	m.TriangleCount = 1_000_000

	q, err := eng.Quote(Request{
		Metrics:    m,
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 60, MaterialGrams: 100},
	})
	require.NoError(t, err)

	material := 100 * 0.08
	machineMultiplied := 60 * 4.0 * 3.0 * 3.0
	assert.InDelta(t, machineMultiplied+material, q.Costs.Total, 0.01)
}

func TestQuoteLeadTimeBoundsAndSpread(t *testing.T) {
	eng := New(testConfig())

	q, err := eng.Quote(Request{
		Metrics:    cubeMetrics(100),
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	})
	require.NoError(t, err)

	// ceil(5/12) = 1 day, raised to the 2-day floor; max stretches
	// by 1.4 and rounds up.
	assert.Equal(t, 2, q.LeadTimeMinDays)
	assert.Equal(t, 3, q.LeadTimeMaxDays)
	assert.GreaterOrEqual(t, q.LeadTimeMaxDays, q.LeadTimeMinDays)
}

func TestQuoteLeadTimeCappedForHugeJobs(t *testing.T) {
	eng := New(testConfig())

	q, err := eng.Quote(Request{
		Metrics:    cubeMetrics(2000),
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 70, MaterialGrams: 9000},
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, q.LeadTimeMinDays, testConstants().MaxLeadDays)
	assert.LessOrEqual(t, q.LeadTimeMaxDays, testConstants().MaxLeadDays)
}

func TestQuoteDeterministicApartFromID(t *testing.T) {
	eng := New(testConfig())
	req := Request{
		Metrics:    cubeMetrics(100),
		FilamentID: "PLA",
		NozzleSize: "0.4",
		AutoSelect: true,
		Baseline:   estimate.Baseline{PrintTimeHours: 5, MaterialGrams: 50},
	}

	first, err := eng.Quote(req)
	require.NoError(t, err)
	second, err := eng.Quote(req)
	require.NoError(t, err)

	first.ID = ""
	second.ID = ""
	assert.Equal(t, first, second)
}
