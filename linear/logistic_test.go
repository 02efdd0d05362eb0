package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ecospace/sdmgo/core/model"
	"github.com/ecospace/sdmgo/pkg/errors"
)

func silenceWarnings(t *testing.T) {
	t.Helper()
	errors.SetWarningHandler(func(error) {})
	t.Cleanup(func() { errors.SetWarningHandler(func(w error) {}) })
}

func TestLogisticSeparableData(t *testing.T) {
	silenceWarnings(t)

	X := mat.NewDense(6, 1, []float64{-3, -2, -1, 1, 2, 3})
	y := mat.NewVecDense(6, []float64{0, 0, 0, 1, 1, 1})

	trainer := NewLogistic(WithLogisticMaxIter(20))
	m, err := trainer.Fit(X, y, nil)
	require.NoError(t, err)

	scores, err := m.Predict(X)
	require.NoError(t, err)

	// Scores must increase with the covariate and separate the classes.
	for i := 1; i < scores.Len(); i++ {
		assert.Greater(t, scores.AtVec(i), scores.AtVec(i-1))
	}
	assert.Less(t, scores.AtVec(0), 0.5)
	assert.Greater(t, scores.AtVec(5), 0.5)
}

func TestLogisticWeightsShiftFit(t *testing.T) {
	silenceWarnings(t)

	X := mat.NewDense(8, 1, []float64{-2, -1.5, -1, -0.5, 0.5, 1, 1.5, 2})
	y := mat.NewVecDense(8, []float64{0, 0, 0, 1, 0, 1, 1, 1})

	uniform, err := NewLogistic().Fit(X, y, nil)
	require.NoError(t, err)

	// Upweighting presences raises the predicted suitability everywhere.
	weights := []float64{1, 1, 1, 10, 1, 10, 10, 10}
	weighted, err := NewLogistic().Fit(X, y, weights)
	require.NoError(t, err)

	probe := mat.NewDense(1, 1, []float64{0})
	pu, err := uniform.Predict(probe)
	require.NoError(t, err)
	pw, err := weighted.Predict(probe)
	require.NoError(t, err)
	assert.Greater(t, pw.AtVec(0), pu.AtVec(0))
}

func TestLogisticDimensionChecks(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewVecDense(2, []float64{0, 1})

	_, err := NewLogistic().Fit(X, y, nil)
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))

	y3 := mat.NewVecDense(3, []float64{0, 1, 0})
	_, err = NewLogistic().Fit(X, y3, []float64{1, 2})
	require.True(t, errors.As(err, &dimErr))

	m, err := NewLogistic().Fit(X, y3, nil)
	require.NoError(t, err)
	_, err = m.Predict(mat.NewDense(2, 3, nil))
	require.True(t, errors.As(err, &dimErr))
}

func TestGLMFamilyRegistration(t *testing.T) {
	require.True(t, model.Registered(model.GLM))

	trainer, err := model.New(model.GLM, map[string]any{"maxiter": 50, "tol": 1e-6})
	require.NoError(t, err)
	require.IsType(t, &Logistic{}, trainer)

	_, err = model.New(model.GLM, map[string]any{"bogus": 1})
	assert.Error(t, err)

	_, err = model.New(model.Family("no-such-family"), nil)
	assert.True(t, errors.Is(err, errors.ErrUnknownFamily))
}
