package catalog

import "github.com/Daemonaise/studio/internal/quote"

// Default returns the built-in fleet and pricing constants. The CLI
// quotes against this catalog directly; Seed installs the same data
// into a fresh database.
func Default() quote.PricingConfig {
	return quote.PricingConfig{
		Printers: []quote.Printer{
			{
				Key:            "workhorse-300",
				BuildVolumeMm:  quote.BuildVolume{X: 300, Y: 300, Z: 300},
				MaxNozzleTempC: 300,
				MaxBedTempC:    110,
				Enclosed:       true,
				HardenedNozzle: true,
				HourlyRates:    map[string]float64{"0.4": 4.0, "0.6": 4.6},
				BedCycleRates:  map[string]float64{"0.4": 90, "0.6": 98},
				Units:          4,
				SegmentCeiling: 24,
			},
			{
				Key:            "bench-220",
				BuildVolumeMm:  quote.BuildVolume{X: 220, Y: 220, Z: 250},
				MaxNozzleTempC: 260,
				MaxBedTempC:    100,
				HourlyRates:    map[string]float64{"0.4": 3.0},
				BedCycleRates:  map[string]float64{"0.4": 70},
				Units:          6,
				SegmentCeiling: 12,
			},
			{
				Key:                "chamber-380",
				BuildVolumeMm:      quote.BuildVolume{X: 380, Y: 380, Z: 380},
				MaxNozzleTempC:     320,
				MaxBedTempC:        120,
				Enclosed:           true,
				HeatedChamber:      true,
				HeatedChamberTempC: 60,
				HardenedNozzle:     true,
				HourlyRates:        map[string]float64{"0.25": 6.5, "0.4": 6.0, "0.6": 6.8, "0.8": 7.5},
				BedCycleRates:      map[string]float64{"0.25": 140, "0.4": 130, "0.6": 145, "0.8": 160},
				Units:              2,
				SegmentCeiling:     36,
			},
		},
		Filaments: map[string]quote.Filament{
			"pla": {
				ID: "pla", PricePerGram: 0.08,
				NozzleTempC: 210, BedTempC: 60,
			},
			"petg": {
				ID: "petg", PricePerGram: 0.09,
				NozzleTempC: 240, BedTempC: 80,
			},
			"abs": {
				ID: "abs", PricePerGram: 0.10,
				NozzleTempC: 250, BedTempC: 100,
				NeedsEnclosure: true,
			},
			"pa-cf": {
				ID: "pa-cf", PricePerGram: 0.22,
				NozzleTempC: 300, BedTempC: 110,
				NeedsEnclosure: true, NeedsHeatedChamber: true, ChamberTempC: 50,
				NeedsHardenedNozzle: true,
			},
		},
		Constants: quote.Constants{
			PackingEfficiency: 0.9,
			ZSplitRelief:      1.25,

			SeamsPerSegment: 2,
			SeamLaborRate:   6.5,

			BaseRiskPercent: 8,
			RiskTierBumpPercent: map[quote.Tier]float64{
				quote.TierNone: 0, quote.TierModerate: 4, quote.TierHeavy: 9,
			},
			MinRiskCost:          15,
			RiskCapPercentOfBase: 35,

			TierMultiplier: map[quote.Tier]float64{
				quote.TierNone: 1.0, quote.TierModerate: 1.1, quote.TierHeavy: 1.25,
			},

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
			TierExtraDays: map[quote.Tier]int{
				quote.TierNone: 0, quote.TierModerate: 2, quote.TierHeavy: 5,
			},

			RescaleRules: []quote.RescaleRule{
				{AboveMm: 50000, Divisor: 1000, Label: "meters"},
				{AboveMm: 5000, Divisor: 10, Label: "centimeters"},
			},
		},
	}
}
