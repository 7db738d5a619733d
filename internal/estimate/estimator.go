// Package estimate defines the print time / material mass collaborator
// the quote engine depends on. The engine treats implementations as a
// black box: both baseline values must be positive finite numbers, and
// any failure is fatal for the quote being computed.
package estimate

import (
	"context"

	"github.com/Daemonaise/studio/internal/mesh"
)

// Baseline is the estimator's answer for one mesh + material + nozzle
// combination.
type Baseline struct {
	PrintTimeHours float64 `json:"printTimeHours"`
	MaterialGrams  float64 `json:"materialGrams"`
}

// Estimator produces a print baseline for analyzed mesh metrics.
// Implementations may call a remote model or compute deterministically;
// retry and timeout policy belongs to the caller, not to this contract.
type Estimator interface {
	Estimate(ctx context.Context, metrics *mesh.Metrics, filamentID, nozzleSize string) (Baseline, error)
}
