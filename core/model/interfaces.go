// Package model defines the fit/predict contract that classifier
// implementations plug into. The cross-validation driver only ever sees
// these interfaces; the concrete statistical algorithms live elsewhere
// (either in this module, such as the built-in GLM, or supplied by the
// caller).
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Family tags an algorithm family selectable by name.
type Family string

const (
	GLM          Family = "glm"
	SVM          Family = "svm"
	MaxEnt       Family = "maxent"
	MARS         Family = "mars"
	RandomForest Family = "rf"
	CartRpart    Family = "cart.rpart"
	CartTree     Family = "cart.tree"
)

// Trainer fits a classifier on covariates X, binary labels y and per-row
// weights. A nil weights slice means uniform weighting. Implementations must
// not retain X or y after Fit returns.
type Trainer interface {
	Fit(X mat.Matrix, y *mat.VecDense, weights []float64) (Model, error)
}

// Model is a fitted classifier. Predict returns one suitability score per
// row of X. Models are immutable once created.
type Model interface {
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// TunableTrainer is implemented by trainers with a data-dependent
// hyperparameter, e.g. the per-split feature-sampling width of a random
// forest. Tune returns a trainer with the parameter fixed to the candidate
// value minimizing internal out-of-bag error; ties go to the smallest
// candidate. The cross-validation driver calls Tune once per fold and once
// for the all-data fit when the caller has not fixed the parameter.
type TunableTrainer interface {
	Trainer
	Tune(X mat.Matrix, y *mat.VecDense, weights []float64) (Trainer, error)
}
