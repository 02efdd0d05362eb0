package extent

import (
	"log/slog"
	"math"
	"sort"

	"github.com/ecospace/sdmgo/pkg/errors"
	"github.com/ecospace/sdmgo/pkg/log"
)

// Selection is the outcome of extent selection for one species.
type Selection struct {
	// Index is the position of the chosen extent among the tried extents,
	// in the caller's original order.
	Index int

	// Extent is the chosen background radius.
	Extent float64

	// Curve is the winning growth curve, nil when selection was trivial
	// (single extent) or curve fitting failed.
	Curve Curve

	// Fallback reports that the extent with the maximum observed AUC was
	// chosen instead of a saturation threshold, either because curve
	// fitting failed or because no observed AUC reached saturation.
	Fallback bool
}

// Select picks a background extent from the (extent, AUC) pairs of one
// species. NaN entries are treated as padding and skipped, so rows of a
// padded AUC matrix can be passed directly.
//
// Three growth curves are fitted; the one with the lowest residual sum of
// squares wins, and the chosen extent is the smallest tried extent whose
// observed AUC reaches the winning curve's saturation level. Curve-fitting
// failure is not fatal: selection falls back to the extent with the maximum
// observed AUC and reports Fallback.
func Select(extents, aucs []float64) (Selection, error) {
	if len(extents) != len(aucs) {
		return Selection{}, errors.NewDimensionError("extent selection", len(extents), len(aucs))
	}

	// Strip NA padding, remembering original positions.
	idx := make([]int, 0, len(extents))
	for i := range extents {
		if !math.IsNaN(extents[i]) && !math.IsNaN(aucs[i]) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return Selection{}, errors.NewValueError("extent selection", "no populated extents")
	}

	// A single tried extent is selected trivially, no curve fitting.
	if len(idx) == 1 {
		return Selection{Index: idx[0], Extent: extents[idx[0]]}, nil
	}

	// Work in ascending extent order; "smallest extent reaching the
	// saturation level" assumes it.
	sort.Slice(idx, func(a, b int) bool { return extents[idx[a]] < extents[idx[b]] })
	xs := make([]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = extents[j]
		ys[i] = aucs[j]
	}

	curve, err := fitBest(xs, ys)
	if err != nil {
		errors.Warn(errors.Wrap(err, "falling back to maximum observed AUC"))
		return maxAUCSelection(idx, extents, aucs), nil
	}

	saturation := curve.Saturation()
	for i, j := range idx {
		if ys[i] >= saturation {
			slog.Debug("extent selected",
				log.ExtentKey, extents[j],
				"curve", curve.Name(),
				"saturation", saturation,
			)
			return Selection{Index: j, Extent: extents[j], Curve: curve}, nil
		}
	}

	// Saturation sits above every observed AUC; the best we can do is the
	// extent that got closest.
	sel := maxAUCSelection(idx, extents, aucs)
	sel.Curve = curve
	return sel, nil
}

func maxAUCSelection(idx []int, extents, aucs []float64) Selection {
	best := idx[0]
	for _, j := range idx[1:] {
		if aucs[j] > aucs[best] {
			best = j
		}
	}
	return Selection{Index: best, Extent: extents[best], Fallback: true}
}
