package catalog

import (
	"database/sql"
	"fmt"

	"github.com/Daemonaise/studio/internal/quote"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Seed installs the default pricing configuration in an idempotent
// way. Existing rows are left untouched so operator edits survive a
// restart.
func Seed(db *sql.DB) (Stats, error) {
	cfg := Default()

	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, p := range cfg.Printers {
		if err := ensurePrinter(tx, p, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, f := range cfg.Filaments {
		if err := ensureFilament(tx, f, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	if err := ensureConstants(tx, cfg.Constants, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureRescaleRules(tx, cfg.Constants.RescaleRules, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensurePrinter(tx *sql.Tx, p quote.Printer, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM printers WHERE key = ? LIMIT 1)`, p.Key).Scan(&exists); err != nil {
		return fmt.Errorf("check printer existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO printers (
			key, build_x_mm, build_y_mm, build_z_mm,
			max_nozzle_temp_c, max_bed_temp_c,
			enclosed, heated_chamber, heated_chamber_temp_c, hardened_nozzle,
			units, segment_ceiling
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Key, p.BuildVolumeMm.X, p.BuildVolumeMm.Y, p.BuildVolumeMm.Z,
		p.MaxNozzleTempC, p.MaxBedTempC,
		p.Enclosed, p.HeatedChamber, p.HeatedChamberTempC, p.HardenedNozzle,
		p.Units, p.SegmentCeiling); err != nil {
		return fmt.Errorf("insert printer %s: %w", p.Key, err)
	}
	stats.Inserts++

	for nozzle, hourly := range p.HourlyRates {
		if _, err := tx.Exec(`
			INSERT INTO printer_rates (printer_key, nozzle, hourly_rate, bed_cycle_rate)
			VALUES (?, ?, ?, ?)
		`, p.Key, nozzle, hourly, p.BedCycleRates[nozzle]); err != nil {
			return fmt.Errorf("insert rate %s/%s: %w", p.Key, nozzle, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureFilament(tx *sql.Tx, f quote.Filament, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM filaments WHERE id = ? LIMIT 1)`, f.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check filament existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO filaments (
			id, price_per_gram, nozzle_temp_c, bed_temp_c,
			needs_enclosure, needs_heated_chamber, chamber_temp_c, needs_hardened_nozzle,
			active
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.PricePerGram, f.NozzleTempC, f.BedTempC,
		f.NeedsEnclosure, f.NeedsHeatedChamber, f.ChamberTempC, f.NeedsHardenedNozzle,
		true); err != nil {
		return fmt.Errorf("insert filament %s: %w", f.ID, err)
	}
	stats.Inserts++
	return nil
}

func ensureConstants(tx *sql.Tx, c quote.Constants, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM pricing_constants WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check pricing constants existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO pricing_constants (
			id,
			packing_efficiency, z_split_relief,
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
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.PackingEfficiency, c.ZSplitRelief,
		c.SeamsPerSegment, c.SeamLaborRate,
		c.BaseRiskPercent, c.RiskTierBumpPercent[quote.TierModerate], c.RiskTierBumpPercent[quote.TierHeavy],
		c.MinRiskCost, c.RiskCapPercentOfBase,
		c.TierMultiplier[quote.TierModerate], c.TierMultiplier[quote.TierHeavy],
		c.ComplexityMediumTriangles, c.ComplexityHighTriangles,
		c.ComplexityMediumMult, c.ComplexityHighMult,
		c.LongJobHours, c.LongJobMultiplier,
		c.LargeJobHours, c.LargePartMaxDimensionMm,
		c.MediumPartMaxDimensionMm, c.MediumPartHours,
		c.UtilizationFactor, c.HourlyLeadDivisorHrs,
		c.MinLeadDays, c.MaxLeadDays, c.LeadTimeSpread,
		c.TierExtraDays[quote.TierModerate], c.TierExtraDays[quote.TierHeavy],
	); err != nil {
		return fmt.Errorf("insert pricing constants singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureRescaleRules(tx *sql.Tx, rules []quote.RescaleRule, stats *Stats) error {
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM rescale_rules`).Scan(&count); err != nil {
		return fmt.Errorf("count rescale rules: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i, r := range rules {
		if _, err := tx.Exec(`
			INSERT INTO rescale_rules (position, above_mm, divisor, label)
			VALUES (?, ?, ?, ?)
		`, i, r.AboveMm, r.Divisor, r.Label); err != nil {
			return fmt.Errorf("insert rescale rule %d: %w", i, err)
		}
		stats.Inserts++
	}
	return nil
}
