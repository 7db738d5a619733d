// Package catalog persists and loads the pricing configuration: the
// printer fleet, the sellable filaments, and the scalar constants of
// the cost and lead-time models. Load produces an immutable snapshot;
// a reload never mutates a snapshot already handed to a quote engine.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Daemonaise/studio/internal/quote"
)

// Load reads the full pricing configuration from the database.
func Load(db *sql.DB) (quote.PricingConfig, error) {
	printers, err := loadPrinters(db)
	if err != nil {
		return quote.PricingConfig{}, err
	}

	filaments, err := loadFilaments(db)
	if err != nil {
		return quote.PricingConfig{}, err
	}

	constants, err := loadConstants(db)
	if err != nil {
		return quote.PricingConfig{}, err
	}

	return quote.PricingConfig{
		Printers:  printers,
		Filaments: filaments,
		Constants: constants,
	}, nil
}

func loadPrinters(db *sql.DB) ([]quote.Printer, error) {
	rows, err := db.Query(`
		SELECT key, build_x_mm, build_y_mm, build_z_mm,
			max_nozzle_temp_c, max_bed_temp_c,
			enclosed, heated_chamber, heated_chamber_temp_c, hardened_nozzle,
			units, segment_ceiling
		FROM printers
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("query printers: %w", err)
	}
	defer rows.Close()

	printers := make([]quote.Printer, 0)
	for rows.Next() {
		var p quote.Printer
		if err := rows.Scan(
			&p.Key, &p.BuildVolumeMm.X, &p.BuildVolumeMm.Y, &p.BuildVolumeMm.Z,
			&p.MaxNozzleTempC, &p.MaxBedTempC,
			&p.Enclosed, &p.HeatedChamber, &p.HeatedChamberTempC, &p.HardenedNozzle,
			&p.Units, &p.SegmentCeiling,
		); err != nil {
			return nil, fmt.Errorf("scan printer: %w", err)
		}
		p.HourlyRates = make(map[string]float64)
		p.BedCycleRates = make(map[string]float64)
		printers = append(printers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate printers: %w", err)
	}

	if err := loadRates(db, printers); err != nil {
		return nil, err
	}
	return printers, nil
}

func loadRates(db *sql.DB, printers []quote.Printer) error {
	rows, err := db.Query(`
		SELECT printer_key, nozzle, hourly_rate, bed_cycle_rate
		FROM printer_rates
	`)
	if err != nil {
		return fmt.Errorf("query printer rates: %w", err)
	}
	defer rows.Close()

	byKey := make(map[string]*quote.Printer, len(printers))
	for i := range printers {
		byKey[printers[i].Key] = &printers[i]
	}

	for rows.Next() {
		var key, nozzle string
		var hourly, bedCycle float64
		if err := rows.Scan(&key, &nozzle, &hourly, &bedCycle); err != nil {
			return fmt.Errorf("scan printer rate: %w", err)
		}
		p, ok := byKey[key]
		if !ok {
			return fmt.Errorf("rate row references unknown printer %q", key)
		}
		p.HourlyRates[nozzle] = hourly
		p.BedCycleRates[nozzle] = bedCycle
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate printer rates: %w", err)
	}
	return nil
}

func loadFilaments(db *sql.DB) (map[string]quote.Filament, error) {
	rows, err := db.Query(`
		SELECT id, price_per_gram, nozzle_temp_c, bed_temp_c,
			needs_enclosure, needs_heated_chamber, chamber_temp_c, needs_hardened_nozzle
		FROM filaments
		WHERE active
	`)
	if err != nil {
		return nil, fmt.Errorf("query filaments: %w", err)
	}
	defer rows.Close()

	filaments := make(map[string]quote.Filament)
	for rows.Next() {
		var f quote.Filament
		if err := rows.Scan(
			&f.ID, &f.PricePerGram, &f.NozzleTempC, &f.BedTempC,
			&f.NeedsEnclosure, &f.NeedsHeatedChamber, &f.ChamberTempC, &f.NeedsHardenedNozzle,
		); err != nil {
			return nil, fmt.Errorf("scan filament: %w", err)
		}
		filaments[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filaments: %w", err)
	}
	return filaments, nil
}

func loadConstants(db *sql.DB) (quote.Constants, error) {
	var c quote.Constants
	var bumpModerate, bumpHeavy float64
	var multModerate, multHeavy float64
	var extraModerate, extraHeavy int

	err := db.QueryRow(`
		SELECT packing_efficiency, z_split_relief,
			seams_per_segment, seam_labor_rate,
			base_risk_percent, risk_bump_moderate_percent, risk_bump_heavy_percent,
			min_risk_cost, risk_cap_percent_of_base,
			tier_mult_moderate, tier_mult_heavy,
			complexity_medium_triangles, complexity_high_triangles,
			complexity_medium_mult, complexity_high_mult,
			long_job_hours, long_job_multiplier,
			large_job_hours, large_part_max_dimension_mm,
			medium_part_max_dimension_mm, medium_part_hours,
			utilization_factor, hourly_lead_divisor_hours,
			min_lead_days, max_lead_days, lead_time_spread,
			extra_days_moderate, extra_days_heavy
		FROM pricing_constants
		WHERE id = 1
	`).Scan(
		&c.PackingEfficiency, &c.ZSplitRelief,
		&c.SeamsPerSegment, &c.SeamLaborRate,
		&c.BaseRiskPercent, &bumpModerate, &bumpHeavy,
		&c.MinRiskCost, &c.RiskCapPercentOfBase,
		&multModerate, &multHeavy,
		&c.ComplexityMediumTriangles, &c.ComplexityHighTriangles,
		&c.ComplexityMediumMult, &c.ComplexityHighMult,
		&c.LongJobHours, &c.LongJobMultiplier,
		&c.LargeJobHours, &c.LargePartMaxDimensionMm,
		&c.MediumPartMaxDimensionMm, &c.MediumPartHours,
		&c.UtilizationFactor, &c.HourlyLeadDivisorHrs,
		&c.MinLeadDays, &c.MaxLeadDays, &c.LeadTimeSpread,
		&extraModerate, &extraHeavy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quote.Constants{}, fmt.Errorf("pricing_constants singleton not found")
		}
		return quote.Constants{}, fmt.Errorf("query pricing_constants: %w", err)
	}

	c.RiskTierBumpPercent = map[quote.Tier]float64{
		quote.TierNone: 0, quote.TierModerate: bumpModerate, quote.TierHeavy: bumpHeavy,
	}
	c.TierMultiplier = map[quote.Tier]float64{
		quote.TierNone: 1.0, quote.TierModerate: multModerate, quote.TierHeavy: multHeavy,
	}
	c.TierExtraDays = map[quote.Tier]int{
		quote.TierNone: 0, quote.TierModerate: extraModerate, quote.TierHeavy: extraHeavy,
	}

	rules, err := loadRescaleRules(db)
	if err != nil {
		return quote.Constants{}, err
	}
	c.RescaleRules = rules

	return c, nil
}

func loadRescaleRules(db *sql.DB) ([]quote.RescaleRule, error) {
	rows, err := db.Query(`
		SELECT above_mm, divisor, label
		FROM rescale_rules
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query rescale rules: %w", err)
	}
	defer rows.Close()

	rules := make([]quote.RescaleRule, 0)
	for rows.Next() {
		var r quote.RescaleRule
		if err := rows.Scan(&r.AboveMm, &r.Divisor, &r.Label); err != nil {
			return nil, fmt.Errorf("scan rescale rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rescale rules: %w", err)
	}
	return rules, nil
}
