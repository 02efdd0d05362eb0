package crossval

import (
	"math"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ecospace/sdmgo/core/model"
	"github.com/ecospace/sdmgo/metrics"
	"github.com/ecospace/sdmgo/pkg/errors"
)

// firstColumnTrainer "fits" a model that scores each row by its first
// covariate. Deterministic, so pooled metrics are exactly predictable.
type firstColumnTrainer struct{}

func (firstColumnTrainer) Fit(X mat.Matrix, y *mat.VecDense, weights []float64) (model.Model, error) {
	return firstColumnModel{}, nil
}

type firstColumnModel struct{}

func (firstColumnModel) Predict(X mat.Matrix) (*mat.VecDense, error) {
	n, _ := X.Dims()
	scores := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		scores.SetVec(i, X.At(i, 0))
	}
	return scores, nil
}

// markerTrainer fails any fold-level fit whose training subset contains the
// marker value. Full-table fits (rows == fullRows) are allowed through so
// the all-data model still trains.
type markerTrainer struct {
	marker   float64
	fullRows int
}

func (tr markerTrainer) Fit(X mat.Matrix, y *mat.VecDense, weights []float64) (model.Model, error) {
	n, _ := X.Dims()
	if n != tr.fullRows {
		for i := 0; i < n; i++ {
			if X.At(i, 0) == tr.marker {
				return nil, errors.NewModelFittingError("stub", "fit", errors.New("degenerate training data"))
			}
		}
	}
	return firstColumnModel{}, nil
}

// tunableTrainer counts hyperparameter searches.
type tunableTrainer struct {
	tuneCalls *atomic.Int32
}

func (tr tunableTrainer) Fit(X mat.Matrix, y *mat.VecDense, weights []float64) (model.Model, error) {
	return firstColumnModel{}, nil
}

func (tr tunableTrainer) Tune(X mat.Matrix, y *mat.VecDense, weights []float64) (model.Trainer, error) {
	tr.tuneCalls.Add(1)
	return tr, nil
}

func TestValidatorPerfectSeparation(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0.9, 0.6, 0.4, 0.1})
	y := mat.NewVecDense(4, []float64{1, 1, 0, 0})

	v := NewValidator(2)
	// Four rows are too few to guarantee presences in every training half;
	// the weighting rule itself is covered by TestValidatorWeighting.
	v.Weighted = false
	bundle, err := v.Run(firstColumnTrainer{}, X, y)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, bundle.AUC, 1e-12)
	assert.Greater(t, bundle.Threshold, 0.4)
	assert.LessOrEqual(t, bundle.Threshold, 0.6)
	assert.InDelta(t, 1.0, bundle.TSS, 1e-12)
	assert.InDelta(t, 1.0, bundle.Kappa, 1e-12)
	assert.Len(t, bundle.FoldModels, 2)
	assert.NotNil(t, bundle.Model)
}

func TestValidatorPoolsEachRowOnce(t *testing.T) {
	n := 15
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i)/float64(n))
		X.Set(i, 1, float64(i%3))
		y.SetVec(i, float64(i%2))
	}

	v := NewValidator(4)
	v.Seed = 3
	bundle, err := v.Run(firstColumnTrainer{}, X, y)
	require.NoError(t, err)

	require.Equal(t, n, bundle.Pool.Len())
	ids := append([]int(nil), bundle.Pool.ID...)
	sort.Ints(ids)
	for i := 0; i < n; i++ {
		assert.Equal(t, i, ids[i])
	}
}

func TestValidatorDropsMissingCovariates(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0.9, 1,
		0.8, 2,
		math.NaN(), 3,
		0.3, 4,
		0.2, 5,
		0.1, 6,
	})
	y := mat.NewVecDense(6, []float64{1, 1, 1, 0, 0, 0})

	v := NewValidator(2)
	v.Weighted = false
	bundle, err := v.Run(firstColumnTrainer{}, X, y)
	require.NoError(t, err)

	// Row 2 is gone; the surviving rows keep their original ids.
	require.Equal(t, 5, bundle.Pool.Len())
	assert.NotContains(t, bundle.Pool.ID, 2)
}

func TestValidatorMetricRoundTrip(t *testing.T) {
	// Recomputing the confusion matrix from the returned pool at the
	// returned threshold must reproduce the reported kappa and TSS.
	n := 12
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	scores := []float64{0.92, 0.85, 0.41, 0.77, 0.18, 0.66, 0.35, 0.59, 0.12, 0.48, 0.71, 0.05}
	labels := []float64{1, 1, 0, 1, 0, 1, 1, 0, 0, 0, 1, 0}
	for i := 0; i < n; i++ {
		X.Set(i, 0, scores[i])
		y.SetVec(i, labels[i])
	}

	bundle, err := NewValidator(3).Run(firstColumnTrainer{}, X, y)
	require.NoError(t, err)

	cm := metrics.NewConfusionMatrix(bundle.Pool, bundle.Threshold)
	assert.InDelta(t, bundle.Kappa, cm.Kappa(), 1e-12)
	assert.InDelta(t, bundle.TSS, cm.TSS(), 1e-12)
}

func TestValidatorFixedThreshold(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0.9, 0.6, 0.4, 0.1})
	y := mat.NewVecDense(4, []float64{1, 1, 0, 0})

	v := NewValidator(2)
	v.Weighted = false
	v.Threshold = 0.5
	bundle, err := v.Run(firstColumnTrainer{}, X, y)
	require.NoError(t, err)
	assert.Equal(t, 0.5, bundle.Threshold)
}

func TestValidatorWeighting(t *testing.T) {
	y := mat.NewVecDense(5, []float64{1, 0, 0, 0, 0})

	v := NewValidator(2)
	weights, err := v.weights(y)
	require.NoError(t, err)
	// One presence among four absences: presence weight 10 * 4/1.
	assert.Equal(t, 40.0, weights[0])
	for _, w := range weights[1:] {
		assert.Equal(t, 10.0, w)
	}

	v.Weighted = false
	weights, err = v.weights(y)
	require.NoError(t, err)
	for _, w := range weights {
		assert.Equal(t, 10.0, w)
	}
}

func TestValidatorAllAbsenceIsFatal(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0.1, 0.2, 0.3, 0.4})
	y := mat.NewVecDense(4, []float64{0, 0, 0, 0})

	_, err := NewValidator(2).Run(firstColumnTrainer{}, X, y)
	var npe *errors.NoPositiveObservationsError
	require.True(t, errors.As(err, &npe))
}

func TestFoldFailurePolicy(t *testing.T) {
	// The marker row is in the training subset of every fold except the one
	// holding it out, so exactly one fold fit fails.
	// Five presences and one marked absence: every training subset keeps at
	// least one presence, and every test set holds one.
	n := 6
	X := mat.NewDense(n, 1, []float64{0.9, 0.8, 0.7, 0.6, 0.5, -5})
	y := mat.NewVecDense(n, []float64{1, 1, 1, 1, 1, 0})
	trainer := markerTrainer{marker: -5, fullRows: n}

	t.Run("FailFast", func(t *testing.T) {
		v := NewValidator(2)
		_, err := v.Run(trainer, X, y)
		var fitErr *errors.ModelFittingError
		require.True(t, errors.As(err, &fitErr))
	})

	t.Run("SkipFold", func(t *testing.T) {
		errors.SetWarningHandler(func(error) {})
		defer errors.SetWarningHandler(func(w error) {})

		v := NewValidator(2)
		v.Policy = SkipFold
		bundle, err := v.Run(trainer, X, y)
		require.NoError(t, err)

		nilModels := 0
		for _, fm := range bundle.FoldModels {
			if fm == nil {
				nilModels++
			}
		}
		assert.Equal(t, 1, nilModels)
		assert.Equal(t, n/2, bundle.Pool.Len())
	})
}

func TestTunableTrainerSearchPerFit(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1})
	y := mat.NewVecDense(6, []float64{1, 1, 1, 0, 0, 0})

	var calls atomic.Int32
	_, err := NewValidator(3).Run(tunableTrainer{tuneCalls: &calls}, X, y)
	require.NoError(t, err)

	// Once per fold plus once for the all-data fit.
	assert.Equal(t, int32(4), calls.Load())
}
