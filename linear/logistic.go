// Package linear provides the built-in generalized linear model: a weighted
// binomial logistic regression fitted by iteratively reweighted least
// squares. It is registered for the GLM family so the library works without
// any external trainer.
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ecospace/sdmgo/core/model"
	"github.com/ecospace/sdmgo/pkg/errors"
)

// Logistic is a trainer for weighted binomial logistic regression.
type Logistic struct {
	maxIter      int
	tol          float64
	fitIntercept bool
}

// NewLogistic creates a logistic trainer with glm-style defaults.
func NewLogistic(opts ...LogisticOption) *Logistic {
	l := &Logistic{
		maxIter:      25,
		tol:          1e-8,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fit estimates coefficients by IRLS. weights are per-row observation
// weights; nil means uniform.
func (l *Logistic) Fit(X mat.Matrix, y *mat.VecDense, weights []float64) (model.Model, error) {
	n, p := X.Dims()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "logistic fit")
	}
	if y.Len() != n {
		return nil, errors.NewDimensionError("logistic fit", n, y.Len())
	}
	if weights != nil && len(weights) != n {
		return nil, errors.NewDimensionError("logistic fit weights", n, len(weights))
	}

	design := l.designMatrix(X)
	_, cols := design.Dims()

	beta := mat.NewVecDense(cols, nil)
	eta := mat.NewVecDense(n, nil)
	scaled := mat.NewDense(n, cols, nil)
	z := mat.NewVecDense(n, nil)

	converged := false
	for iter := 0; iter < l.maxIter; iter++ {
		eta.MulVec(design, beta)

		// Working response and IRLS weights, scaled by sqrt so a plain
		// least-squares solve gives the weighted solution.
		for i := 0; i < n; i++ {
			mu := sigmoid(eta.AtVec(i))
			v := mu * (1 - mu)
			if v < 1e-10 {
				v = 1e-10
			}
			w := v
			if weights != nil {
				w *= weights[i]
			}
			sw := math.Sqrt(w)
			for j := 0; j < cols; j++ {
				scaled.Set(i, j, sw*design.At(i, j))
			}
			z.SetVec(i, sw*(eta.AtVec(i)+(y.AtVec(i)-mu)/v))
		}

		var next mat.VecDense
		if err := next.SolveVec(scaled, z); err != nil {
			if _, ok := err.(mat.Condition); !ok {
				return nil, errors.NewModelFittingError(string(model.GLM), "irls solve", err)
			}
		}

		delta := 0.0
		for j := 0; j < cols; j++ {
			if d := math.Abs(next.AtVec(j) - beta.AtVec(j)); d > delta {
				delta = d
			}
		}
		beta.CopyVec(&next)
		if delta < l.tol {
			converged = true
			break
		}
	}
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("logistic IRLS", l.maxIter, ""))
	}

	coef := mat.NewVecDense(cols, nil)
	coef.CopyVec(beta)
	return &logisticModel{coef: coef, fitIntercept: l.fitIntercept, nFeatures: p}, nil
}

func (l *Logistic) designMatrix(X mat.Matrix) *mat.Dense {
	n, p := X.Dims()
	if !l.fitIntercept {
		d := mat.NewDense(n, p, nil)
		d.Copy(X)
		return d
	}
	d := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		d.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			d.Set(i, j+1, X.At(i, j))
		}
	}
	return d
}

// logisticModel is a fitted logistic regression. Immutable.
type logisticModel struct {
	coef         *mat.VecDense
	fitIntercept bool
	nFeatures    int
}

// Predict returns P(presence) per row of X.
func (m *logisticModel) Predict(X mat.Matrix) (*mat.VecDense, error) {
	n, p := X.Dims()
	if p != m.nFeatures {
		return nil, errors.NewDimensionError("logistic predict", m.nFeatures, p)
	}

	scores := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		eta := 0.0
		offset := 0
		if m.fitIntercept {
			eta = m.coef.AtVec(0)
			offset = 1
		}
		for j := 0; j < p; j++ {
			eta += m.coef.AtVec(j+offset) * X.At(i, j)
		}
		scores.SetVec(i, sigmoid(eta))
	}
	return scores, nil
}

func sigmoid(x float64) float64 {
	// Clamp to keep exp finite; beyond this range the probability is
	// numerically 0 or 1 anyway.
	if x > 35 {
		return 1
	}
	if x < -35 {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}
