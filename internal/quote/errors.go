package quote

import "errors"

var (
	// ErrNoCompatibleMaterial means the requested filament id is not
	// in the configuration.
	ErrNoCompatibleMaterial = errors.New("no compatible material")

	// ErrNoCompatiblePrinter means no printer in the fleet satisfies
	// the filament's requirements for the requested nozzle.
	ErrNoCompatiblePrinter = errors.New("no compatible printer")

	// ErrPrinterSelectionFailed means selection could not converge
	// despite a non-empty compatible set. This is an invariant
	// violation, not a user-correctable condition.
	ErrPrinterSelectionFailed = errors.New("printer selection failed")
)
