package crossval

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ecospace/sdmgo/core/model"
	"github.com/ecospace/sdmgo/core/parallel"
	"github.com/ecospace/sdmgo/metrics"
	"github.com/ecospace/sdmgo/pkg/errors"
	"github.com/ecospace/sdmgo/pkg/log"
)

// FoldFailurePolicy controls what a fold-level fitting failure does to the
// cross-validation run it belongs to.
type FoldFailurePolicy int

const (
	// FailFast aborts the whole run on the first fold failure.
	FailFast FoldFailurePolicy = iota

	// SkipFold drops the failing fold's predictions from the pool, emits a
	// warning, and continues. The run still fails if every fold fails.
	SkipFold
)

// baseWeight is the uniform observation weight. With weighting enabled,
// presences are scaled by the absence/presence ratio on top of it so both
// classes contribute equal total weight to the fit.
const baseWeight = 10.0

// Validator runs leave-one-fold-out cross-validation for a single dataset
// and algorithm, producing the pooled metrics and the all-data model.
type Validator struct {
	// K is the fold count, in [2, rows].
	K int

	// Weighted enables presence/absence weighting. Presence/absence ratios
	// are typically skewed and unweighted fits underpredict the minority
	// class.
	Weighted bool

	// Threshold fixes the classification threshold. NaN (the default)
	// selects the TSS-maximizing threshold from the pooled predictions.
	Threshold float64

	// Policy decides whether fold failures are fatal for the run.
	Policy FoldFailurePolicy

	// Seed drives the fold shuffle.
	Seed uint64
}

// NewValidator creates a validator with k folds, weighting enabled, and
// automatic threshold selection.
func NewValidator(k int) *Validator {
	return &Validator{
		K:         k,
		Weighted:  true,
		Threshold: math.NaN(),
	}
}

// Bundle is the result of one cross-validation run. Immutable once returned.
type Bundle struct {
	// Model is the all-data model, the one used for downstream prediction.
	Model model.Model

	// FoldModels holds the k fold models, nil at indices whose fold was
	// skipped under the SkipFold policy.
	FoldModels []model.Model

	// Pool is the held-out predictions concatenated across folds.
	Pool *metrics.ObsPred

	// Threshold is the classification threshold the metrics below were
	// computed at.
	Threshold float64

	AUC   float64
	Kappa float64
	TSS   float64
}

// Run cross-validates trainer on covariates X and binary labels y.
//
// Rows with any missing (NaN) covariate are dropped first. Each fold fits
// on its training subset with weights recomputed for that subset, predicts
// its held-out rows, and contributes them to the pooled predictions. One
// additional model is fitted on all cleaned rows with the global weights.
// Trainers implementing model.TunableTrainer get their hyperparameter
// search invoked once per fold and once for the all-data fit.
func (v *Validator) Run(trainer model.Trainer, X mat.Matrix, y *mat.VecDense) (*Bundle, error) {
	cleanX, cleanY, rowIDs, err := dropMissing(X, y)
	if err != nil {
		return nil, err
	}
	n := len(rowIDs)

	globalWeights, err := v.weights(cleanY)
	if err != nil {
		return nil, err
	}

	folds, err := NewKFold(v.K, v.Seed).Split(n)
	if err != nil {
		return nil, err
	}

	foldModels := make([]model.Model, len(folds))
	foldPools := make([]*metrics.ObsPred, len(folds))
	foldErrs := make([]error, len(folds))

	parallel.ForEach(len(folds), func(i int) {
		foldModels[i], foldPools[i], foldErrs[i] = v.runFold(trainer, cleanX, cleanY, rowIDs, folds[i])
	})

	failed := 0
	for i, ferr := range foldErrs {
		if ferr == nil {
			continue
		}
		if v.Policy == FailFast {
			return nil, errors.Wrapf(ferr, "fold %d", i)
		}
		errors.Warn(errors.Wrapf(ferr, "skipping fold %d", i))
		failed++
	}
	if failed == len(folds) {
		return nil, errors.Wrap(foldErrs[0], "every fold failed")
	}

	pool := metrics.NewObsPred(n)
	for _, fp := range foldPools {
		if fp != nil {
			pool.Concat(fp)
		}
	}

	full, err := v.fit(trainer, cleanX, cleanY, globalWeights)
	if err != nil {
		return nil, errors.Wrap(err, "all-data fit")
	}

	threshold := v.Threshold
	if math.IsNaN(threshold) {
		threshold, err = metrics.OptimalThreshold(pool)
		if err != nil {
			return nil, err
		}
	}

	auc, err := metrics.AUC(pool)
	if err != nil {
		return nil, err
	}
	cm := metrics.NewConfusionMatrix(pool, threshold)

	bundle := &Bundle{
		Model:      full,
		FoldModels: foldModels,
		Pool:       pool,
		Threshold:  threshold,
		AUC:        auc,
		Kappa:      cm.Kappa(),
		TSS:        cm.TSS(),
	}

	slog.Debug("cross-validation complete",
		log.FoldCountKey, v.K,
		log.SamplesKey, n,
		log.AUCKey, bundle.AUC,
		log.TSSKey, bundle.TSS,
		log.KappaKey, bundle.Kappa,
		log.ThresholdKey, bundle.Threshold,
	)
	return bundle, nil
}

// runFold fits one fold model and predicts its held-out rows.
func (v *Validator) runFold(trainer model.Trainer, X *mat.Dense, y *mat.VecDense, rowIDs []int, fold Fold) (model.Model, *metrics.ObsPred, error) {
	trainX, trainY := extractRows(X, y, fold.Train)

	// Weights are recomputed on the fold's training subset only.
	weights, err := v.weights(trainY)
	if err != nil {
		return nil, nil, err
	}

	m, err := v.fit(trainer, trainX, trainY, weights)
	if err != nil {
		return nil, nil, err
	}

	testX, testY := extractRows(X, y, fold.Test)
	scores, err := m.Predict(testX)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fold prediction")
	}

	pool := metrics.NewObsPred(len(fold.Test))
	for i, idx := range fold.Test {
		pool.Append(rowIDs[idx], testY.AtVec(i), scores.AtVec(i))
	}
	return m, pool, nil
}

// fit runs the hyperparameter search when the trainer supports one, then
// fits a model.
func (v *Validator) fit(trainer model.Trainer, X mat.Matrix, y *mat.VecDense, weights []float64) (model.Model, error) {
	if tunable, ok := trainer.(model.TunableTrainer); ok {
		tuned, err := tunable.Tune(X, y, weights)
		if err != nil {
			return nil, errors.Wrap(err, "hyperparameter search")
		}
		trainer = tuned
	}
	return trainer.Fit(X, y, weights)
}

// weights computes the per-row weight vector for labels y. Presences get
// baseWeight * (absences/presences), absences get baseWeight; uniform
// baseWeight when weighting is disabled.
func (v *Validator) weights(y *mat.VecDense) ([]float64, error) {
	n := y.Len()
	weights := make([]float64, n)

	if !v.Weighted {
		for i := range weights {
			weights[i] = baseWeight
		}
		return weights, nil
	}

	presences := 0
	for i := 0; i < n; i++ {
		if y.AtVec(i) == 1 {
			presences++
		}
	}
	if presences == 0 {
		return nil, errors.NewNoPositiveObservationsError("weights", n)
	}

	presenceWeight := baseWeight * float64(n-presences) / float64(presences)
	for i := 0; i < n; i++ {
		if y.AtVec(i) == 1 {
			weights[i] = presenceWeight
		} else {
			weights[i] = baseWeight
		}
	}
	return weights, nil
}

// dropMissing removes rows with any NaN covariate and returns the cleaned
// table together with the surviving original row indices.
func dropMissing(X mat.Matrix, y *mat.VecDense) (*mat.Dense, *mat.VecDense, []int, error) {
	n, p := X.Dims()
	if n == 0 {
		return nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "cross-validation")
	}
	if y.Len() != n {
		return nil, nil, nil, errors.NewDimensionError("cross-validation", n, y.Len())
	}

	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		complete := true
		for j := 0; j < p; j++ {
			if math.IsNaN(X.At(i, j)) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, nil, nil, errors.NewValueError("cross-validation", "no rows with complete covariates")
	}

	cleanX := mat.NewDense(len(keep), p, nil)
	cleanY := mat.NewVecDense(len(keep), nil)
	for i, idx := range keep {
		for j := 0; j < p; j++ {
			cleanX.Set(i, j, X.At(idx, j))
		}
		cleanY.SetVec(i, y.AtVec(idx))
	}
	return cleanX, cleanY, keep, nil
}

// extractRows builds the covariate and label subset for the given indices.
func extractRows(X *mat.Dense, y *mat.VecDense, indices []int) (*mat.Dense, *mat.VecDense) {
	_, p := X.Dims()
	subX := mat.NewDense(len(indices), p, nil)
	subY := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		for j := 0; j < p; j++ {
			subX.Set(i, j, X.At(idx, j))
		}
		subY.SetVec(i, y.AtVec(idx))
	}
	return subX, subY
}
