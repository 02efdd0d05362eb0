// Package extent selects the background extent for pseudo-absence sampling.
// AUC generally grows with the sampling radius up to a saturation point;
// this package fits growth curves to the observed (extent, AUC) pairs,
// extracts the saturation level of the best-fitting curve, and picks the
// smallest extent already performing at that level.
package extent

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/ecospace/sdmgo/pkg/errors"
)

// Curve is a fitted growth curve over (extent, AUC) pairs.
type Curve interface {
	// Name identifies the functional form.
	Name() string

	// Eval returns the fitted AUC at extent x.
	Eval(x float64) float64

	// Saturation returns the curve's asymptotic maximum.
	Saturation() float64

	// RSS returns the residual sum of squares of the fit.
	RSS() float64
}

type michaelisMenten struct {
	vm, k, rss float64
}

func (c *michaelisMenten) Name() string           { return "michaelis-menten" }
func (c *michaelisMenten) Eval(x float64) float64 { return c.vm * x / (c.k + x) }
func (c *michaelisMenten) Saturation() float64    { return c.vm }
func (c *michaelisMenten) RSS() float64           { return c.rss }

type exponential2 struct {
	a, b, rss float64
}

func (c *exponential2) Name() string           { return "exponential-2p" }
func (c *exponential2) Eval(x float64) float64 { return c.a * (1 - math.Exp(-c.b*x)) }
func (c *exponential2) Saturation() float64    { return c.a }
func (c *exponential2) RSS() float64           { return c.rss }

type exponential3 struct {
	a, b, rate, rss float64
}

func (c *exponential3) Name() string           { return "exponential-3p" }
func (c *exponential3) Eval(x float64) float64 { return c.a - c.b*math.Exp(-c.rate*x) }
func (c *exponential3) Saturation() float64    { return c.a }
func (c *exponential3) RSS() float64           { return c.rss }

// fitParams minimizes the residual sum of squares of f over the (xs, ys)
// pairs by Nelder-Mead, starting from init.
func fitParams(name string, f func(p []float64, x float64) float64, init, xs, ys []float64) ([]float64, float64, error) {
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			rss := 0.0
			for i := range xs {
				d := ys[i] - f(p, xs[i])
				rss += d * d
			}
			return rss
		},
	}

	result, err := optimize.Minimize(problem, init, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, errors.NewCurveFittingError(name, err)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, 0, errors.NewCurveFittingError(name, errors.New("non-finite residual"))
	}
	for _, p := range result.X {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, 0, errors.NewCurveFittingError(name, errors.New("non-finite parameter"))
		}
	}
	return result.X, result.F, nil
}

func fitMichaelisMenten(xs, ys []float64) (Curve, error) {
	init := []float64{floats.Max(ys), mean(xs)}
	p, rss, err := fitParams("michaelis-menten",
		func(p []float64, x float64) float64 { return p[0] * x / (p[1] + x) },
		init, xs, ys)
	if err != nil {
		return nil, err
	}
	return &michaelisMenten{vm: p[0], k: p[1], rss: rss}, nil
}

func fitExponential2(xs, ys []float64) (Curve, error) {
	init := []float64{floats.Max(ys), 1 / mean(xs)}
	p, rss, err := fitParams("exponential-2p",
		func(p []float64, x float64) float64 { return p[0] * (1 - math.Exp(-p[1]*x)) },
		init, xs, ys)
	if err != nil {
		return nil, err
	}
	return &exponential2{a: p[0], b: p[1], rss: rss}, nil
}

func fitExponential3(xs, ys []float64) (Curve, error) {
	init := []float64{floats.Max(ys), floats.Max(ys) - floats.Min(ys), 1 / mean(xs)}
	p, rss, err := fitParams("exponential-3p",
		func(p []float64, x float64) float64 { return p[0] - p[1]*math.Exp(-p[2]*x) },
		init, xs, ys)
	if err != nil {
		return nil, err
	}
	return &exponential3{a: p[0], b: p[1], rate: p[2], rss: rss}, nil
}

// fitBest fits all three growth curves and returns the one with the lowest
// residual sum of squares. It fails only when every fit fails.
func fitBest(xs, ys []float64) (Curve, error) {
	fits := []func(xs, ys []float64) (Curve, error){
		fitMichaelisMenten,
		fitExponential2,
		fitExponential3,
	}

	var best Curve
	var firstErr error
	for _, fit := range fits {
		curve, err := fit(xs, ys)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if best == nil || curve.RSS() < best.RSS() {
			best = curve
		}
	}
	if best == nil {
		return nil, firstErr
	}
	return best, nil
}

func mean(xs []float64) float64 {
	return floats.Sum(xs) / float64(len(xs))
}
