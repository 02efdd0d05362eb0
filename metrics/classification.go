// Package metrics implements the threshold-dependent and threshold-free
// accuracy measures used to evaluate presence/absence models: AUC, Cohen's
// kappa and the true skill statistic (TSS), plus the optimal-threshold scan
// that maximizes TSS over pooled cross-validation predictions.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ecospace/sdmgo/pkg/errors"
)

// ObsPred is a pool of paired observations and predictions, one triple per
// evaluated row. Pools are concatenated across the held-out test sets of all
// cross-validation folds; each observation contributes exactly one row.
type ObsPred struct {
	ID   []int
	Obs  []float64
	Pred []float64
}

// NewObsPred returns an empty pool with capacity for n rows.
func NewObsPred(n int) *ObsPred {
	return &ObsPred{
		ID:   make([]int, 0, n),
		Obs:  make([]float64, 0, n),
		Pred: make([]float64, 0, n),
	}
}

// Append adds one (row id, observed label, predicted score) triple.
func (p *ObsPred) Append(id int, obs, pred float64) {
	p.ID = append(p.ID, id)
	p.Obs = append(p.Obs, obs)
	p.Pred = append(p.Pred, pred)
}

// Concat appends every row of other to p.
func (p *ObsPred) Concat(other *ObsPred) {
	p.ID = append(p.ID, other.ID...)
	p.Obs = append(p.Obs, other.Obs...)
	p.Pred = append(p.Pred, other.Pred...)
}

// Len returns the number of pooled rows.
func (p *ObsPred) Len() int {
	return len(p.Obs)
}

func (p *ObsPred) counts() (positives, negatives int) {
	for _, o := range p.Obs {
		if o == 1 {
			positives++
		} else {
			negatives++
		}
	}
	return positives, negatives
}

// AUC computes the area under the ROC curve with the rank-based
// (Mann-Whitney) formula, using midranks for tied scores. An all-absence
// pool is a hard error since the ROC curve is undefined; a pool with no
// absences yields 0.5 with an UndefinedMetricWarning.
func AUC(pool *ObsPred) (float64, error) {
	n := pool.Len()
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "AUC")
	}

	nPos, nNeg := pool.counts()
	if nPos == 0 {
		return 0, errors.NewNoPositiveObservationsError("AUC", n)
	}
	if nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "no negative observations", 0.5))
		return 0.5, nil
	}

	// Midranks of the predicted scores.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return pool.Pred[order[a]] < pool.Pred[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && pool.Pred[order[j]] == pool.Pred[order[i]] {
			j++
		}
		// Ties share the average of the ranks they span.
		midrank := float64(i+j+1) / 2.0
		for t := i; t < j; t++ {
			ranks[order[t]] = midrank
		}
		i = j
	}

	var rankSum float64
	for i, o := range pool.Obs {
		if o == 1 {
			rankSum += ranks[i]
		}
	}

	np := float64(nPos)
	auc := (rankSum - np*(np+1)/2.0) / (np * float64(nNeg))
	return auc, nil
}

// ConfusionMatrix counts classification outcomes at a fixed threshold. A
// prediction is positive iff score >= threshold.
type ConfusionMatrix struct {
	TP int
	TN int
	FP int
	FN int
}

// NewConfusionMatrix classifies every pooled prediction against threshold.
func NewConfusionMatrix(pool *ObsPred, threshold float64) *ConfusionMatrix {
	cm := &ConfusionMatrix{}
	for i, o := range pool.Obs {
		predPositive := pool.Pred[i] >= threshold
		switch {
		case o == 1 && predPositive:
			cm.TP++
		case o == 1 && !predPositive:
			cm.FN++
		case o != 1 && predPositive:
			cm.FP++
		default:
			cm.TN++
		}
	}
	return cm
}

// Total returns the number of classified rows.
func (cm *ConfusionMatrix) Total() int {
	return cm.TP + cm.TN + cm.FP + cm.FN
}

// Sensitivity returns TP/(TP+FN), or 0 when there are no observed positives.
// The zero fallback keeps folds without positive test cases non-fatal.
func (cm *ConfusionMatrix) Sensitivity() float64 {
	denom := cm.TP + cm.FN
	if denom == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("sensitivity", "no observed positives", 0))
		return 0
	}
	return float64(cm.TP) / float64(denom)
}

// Specificity returns TN/(TN+FP), or 0 when there are no observed negatives.
func (cm *ConfusionMatrix) Specificity() float64 {
	denom := cm.TN + cm.FP
	if denom == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("specificity", "no observed negatives", 0))
		return 0
	}
	return float64(cm.TN) / float64(denom)
}

// TSS returns the true skill statistic, sensitivity + specificity - 1.
func (cm *ConfusionMatrix) TSS() float64 {
	return cm.Sensitivity() + cm.Specificity() - 1
}

// Kappa returns Cohen's kappa, or 0 when chance agreement is exactly 1.
func (cm *ConfusionMatrix) Kappa() float64 {
	n := float64(cm.Total())
	if n == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("kappa", "empty confusion matrix", 0))
		return 0
	}

	observed := (float64(cm.TP) + float64(cm.TN)) / n
	expected := (float64(cm.TP+cm.FP)*float64(cm.TP+cm.FN) +
		float64(cm.FN+cm.TN)*float64(cm.FP+cm.TN)) / (n * n)

	if expected == 1 {
		errors.Warn(errors.NewUndefinedMetricWarning("kappa", "chance agreement is 1", 0))
		return 0
	}
	return (observed - expected) / (1 - expected)
}

// thresholdSteps is the number of cut points scanned between the minimum and
// maximum predicted score, both inclusive.
const thresholdSteps = 101

// OptimalThreshold scans 101 evenly spaced cut points between the minimum
// and maximum predicted score and returns the one maximizing TSS. Among cut
// points sharing the maximum, the lowest is returned. When every score is
// identical the single achievable cut point is returned directly; TSS is 0
// at that point by convention.
func OptimalThreshold(pool *ObsPred) (float64, error) {
	n := pool.Len()
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "OptimalThreshold")
	}

	nPos, _ := pool.counts()
	if nPos == 0 {
		return 0, errors.NewNoPositiveObservationsError("OptimalThreshold", n)
	}

	lo := floats.Min(pool.Pred)
	hi := floats.Max(pool.Pred)
	if lo == hi {
		return lo, nil
	}

	best := math.Inf(-1)
	bestCut := lo
	step := (hi - lo) / float64(thresholdSteps-1)
	for i := 0; i < thresholdSteps; i++ {
		cut := lo + float64(i)*step
		tss := tssAt(pool, cut)
		if tss > best {
			best = tss
			bestCut = cut
		}
	}
	return bestCut, nil
}

// tssAt computes TSS at a cut point without routing degenerate components
// through the warning handler; the scan itself is not a reportable event.
func tssAt(pool *ObsPred, threshold float64) float64 {
	var tp, tn, fp, fn int
	for i, o := range pool.Obs {
		predPositive := pool.Pred[i] >= threshold
		switch {
		case o == 1 && predPositive:
			tp++
		case o == 1 && !predPositive:
			fn++
		case o != 1 && predPositive:
			fp++
		default:
			tn++
		}
	}

	var sens, spec float64
	if tp+fn > 0 {
		sens = float64(tp) / float64(tp+fn)
	}
	if tn+fp > 0 {
		spec = float64(tn) / float64(tn+fp)
	}
	return sens + spec - 1
}
