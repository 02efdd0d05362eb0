package sdm

import (
	"math"
	"runtime"

	"github.com/ecospace/sdmgo/core/model"
	"github.com/ecospace/sdmgo/crossval"
)

type config struct {
	k             int
	weighted      bool
	threshold     float64
	policy        crossval.FoldFailurePolicy
	seed          uint64
	parallelism   int
	diagramDir    string
	algorithmArgs map[model.Family]map[string]any
}

func defaultConfig() config {
	return config{
		k:           10,
		weighted:    true,
		threshold:   math.NaN(),
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// Option configures a training run.
type Option func(*config)

// WithFolds sets the cross-validation fold count (default 10).
func WithFolds(k int) Option {
	return func(c *config) {
		c.k = k
	}
}

// WithWeighting enables or disables presence/absence weighting (default
// enabled).
func WithWeighting(enabled bool) Option {
	return func(c *config) {
		c.weighted = enabled
	}
}

// WithThreshold fixes the classification threshold instead of selecting the
// TSS-maximizing one from the pooled predictions.
func WithThreshold(threshold float64) Option {
	return func(c *config) {
		c.threshold = threshold
	}
}

// WithFoldFailurePolicy sets how fold-level fitting failures are handled
// (default crossval.FailFast).
func WithFoldFailurePolicy(policy crossval.FoldFailurePolicy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

// WithSeed sets the base random seed for fold partitioning. Each work unit
// derives its own seed from it, keeping results reproducible under parallel
// execution.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithParallelism caps the number of concurrently trained work units
// (default GOMAXPROCS).
func WithParallelism(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithDiagrams enables AUC-vs-extent diagrams, written as PNG files into
// dir, one per work unit.
func WithDiagrams(dir string) Option {
	return func(c *config) {
		c.diagramDir = dir
	}
}

// WithAlgorithmArgs passes free-form tuning arguments through to the
// trainer factory for one algorithm family.
func WithAlgorithmArgs(family model.Family, args map[string]any) Option {
	return func(c *config) {
		if c.algorithmArgs == nil {
			c.algorithmArgs = make(map[model.Family]map[string]any)
		}
		c.algorithmArgs[family] = args
	}
}
