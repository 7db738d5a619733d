package quote

import "math"

// orientations enumerates the 6 axis permutations of a bounding box.
// The domain is fixed and tiny, so the search stays an explicit
// enumeration rather than anything generic.
var orientations = [6][3]int{
	{0, 1, 2}, {0, 2, 1},
	{1, 0, 2}, {1, 2, 0},
	{2, 0, 1}, {2, 1, 0},
}

// axisSegments returns how many pieces a dimension splits into given
// the usable build dimension along that axis.
func axisSegments(dimMm, usableMm float64) int {
	if dimMm <= 0 || usableMm <= 0 {
		return 1
	}
	n := int(math.Ceil(dimMm / usableMm))
	if n < 1 {
		return 1
	}
	return n
}

// orientedSegments returns the total segment count for a box laid out
// in one fixed orientation on the given build volume. The vertical
// axis tolerates more splitting than XY, so its usable dimension is
// stretched by the Z relief factor.
func orientedSegments(dims [3]float64, build BuildVolume, c Constants) int {
	nx := axisSegments(dims[0], build.X*c.PackingEfficiency)
	ny := axisSegments(dims[1], build.Y*c.PackingEfficiency)
	nz := axisSegments(dims[2], build.Z*c.PackingEfficiency*c.ZSplitRelief)

	total := nx * ny * nz
	if total < 1 {
		return 1
	}
	return total
}

// minSegments searches all 6 orientations for the one producing the
// fewest segments on this printer.
func minSegments(dims [3]float64, build BuildVolume, c Constants) int {
	best := math.MaxInt
	for _, perm := range orientations {
		oriented := [3]float64{dims[perm[0]], dims[perm[1]], dims[perm[2]]}
		if n := orientedSegments(oriented, build, c); n < best {
			best = n
		}
	}
	return best
}

// tierFor buckets a segment count into a segmentation tier.
func tierFor(segments int) Tier {
	switch {
	case segments <= 1:
		return TierNone
	case segments <= 12:
		return TierModerate
	default:
		return TierHeavy
	}
}
