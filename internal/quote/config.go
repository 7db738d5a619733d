package quote

// Mode is the pricing/scheduling mode a job is billed under.
type Mode string

const (
	// ModeHourly bills by continuous machine-hours.
	ModeHourly Mode = "hourly"
	// ModeBedCycle bills by discrete print-bed runs.
	ModeBedCycle Mode = "bed_cycle"
)

// JobScale classifies a job and drives which pricing mode applies.
type JobScale string

const (
	ScaleSmallPart     JobScale = "small_part"
	ScaleMediumPart    JobScale = "medium_part"
	ScaleLargeAssembly JobScale = "large_assembly"
)

// Tier buckets segmentation effort.
type Tier string

const (
	TierNone     Tier = "none"
	TierModerate Tier = "moderate"
	TierHeavy    Tier = "heavy"
)

// BuildVolume is a printer's usable build box in millimeters.
type BuildVolume struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Printer describes one printer model in the fleet, its capability
// thresholds, and its rate tables keyed by nozzle size.
type Printer struct {
	Key                string             `json:"key"`
	BuildVolumeMm      BuildVolume        `json:"buildVolumeMm"`
	MaxNozzleTempC     float64            `json:"maxNozzleTempC"`
	MaxBedTempC        float64            `json:"maxBedTempC"`
	Enclosed           bool               `json:"enclosed"`
	HeatedChamber      bool               `json:"heatedChamber"`
	HeatedChamberTempC float64            `json:"heatedChamberTempC"`
	HardenedNozzle     bool               `json:"hardenedNozzle"`
	HourlyRates        map[string]float64 `json:"hourlyRates"`
	BedCycleRates      map[string]float64 `json:"bedCycleRates"`
	Units              int                `json:"units"`
	SegmentCeiling     int                `json:"segmentCeiling"`
}

// Filament describes a sellable material and the printer capabilities
// it requires.
type Filament struct {
	ID                  string  `json:"id"`
	PricePerGram        float64 `json:"pricePerGram"`
	NozzleTempC         float64 `json:"nozzleTempC"`
	BedTempC            float64 `json:"bedTempC"`
	NeedsEnclosure      bool    `json:"needsEnclosure"`
	NeedsHeatedChamber  bool    `json:"needsHeatedChamber"`
	ChamberTempC        float64 `json:"chamberTempC"`
	NeedsHardenedNozzle bool    `json:"needsHardenedNozzle"`
}

// RescaleRule scales down a suspiciously large bounding box. Rules
// are evaluated in order and at most one fires per quote.
type RescaleRule struct {
	AboveMm float64 `json:"aboveMm"`
	Divisor float64 `json:"divisor"`
	Label   string  `json:"label"`
}

// Constants holds the scalar knobs of the cost and lead-time models.
// Percent-named fields are whole percentages (8 means 8%), matching
// how the catalog stores them.
type Constants struct {
	PackingEfficiency float64 `json:"packingEfficiency"`
	ZSplitRelief      float64 `json:"zSplitRelief"`

	SeamsPerSegment float64 `json:"seamsPerSegment"`
	SeamLaborRate   float64 `json:"seamLaborRate"`

	BaseRiskPercent      float64          `json:"baseRiskPercent"`
	RiskTierBumpPercent  map[Tier]float64 `json:"riskTierBumpPercent"`
	MinRiskCost          float64          `json:"minRiskCost"`
	RiskCapPercentOfBase float64          `json:"riskCapPercentOfBase"`

	TierMultiplier map[Tier]float64 `json:"tierMultiplier"`

	ComplexityMediumTriangles int     `json:"complexityMediumTriangles"`
	ComplexityHighTriangles   int     `json:"complexityHighTriangles"`
	ComplexityMediumMult      float64 `json:"complexityMediumMult"`
	ComplexityHighMult        float64 `json:"complexityHighMult"`

	LongJobHours      float64 `json:"longJobHours"`
	LongJobMultiplier float64 `json:"longJobMultiplier"`

	LargeJobHours            float64 `json:"largeJobHours"`
	LargePartMaxDimensionMm  float64 `json:"largePartMaxDimensionMm"`
	MediumPartMaxDimensionMm float64 `json:"mediumPartMaxDimensionMm"`
	MediumPartHours          float64 `json:"mediumPartHours"`

	UtilizationFactor     float64       `json:"utilizationFactor"`
	HourlyLeadDivisorHrs  float64       `json:"hourlyLeadDivisorHrs"`
	MinLeadDays           int           `json:"minLeadDays"`
	MaxLeadDays           int           `json:"maxLeadDays"`
	LeadTimeSpread        float64       `json:"leadTimeSpread"`
	TierExtraDays         map[Tier]int  `json:"tierExtraDays"`
	RescaleRules          []RescaleRule `json:"rescaleRules"`
}

// PricingConfig is the read-only configuration snapshot a quote is
// computed against. Filaments are keyed by id so an unknown material
// is an explicit not-found, never a silent zero value.
type PricingConfig struct {
	Printers  []Printer           `json:"printers"`
	Filaments map[string]Filament `json:"filaments"`
	Constants Constants           `json:"constants"`
}
