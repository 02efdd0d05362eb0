// Package crossval implements k-fold cross-validation for presence/absence
// models: the fold partitioner and the driver that fits per-fold models,
// pools held-out predictions, and computes threshold-based accuracy metrics.
package crossval

import (
	"math/rand/v2"

	"github.com/ecospace/sdmgo/pkg/errors"
)

// Fold is one train/test split. Test sets across the k folds partition the
// row set; each fold's train set is the complement of its test set.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits row indices into k random folds of near-equal size.
// Each Split call builds its own PCG generator from Seed, so concurrent
// partitioning stays reproducible without shared state.
type KFold struct {
	K    int
	Seed uint64
}

// NewKFold creates a k-fold splitter.
func NewKFold(k int, seed uint64) *KFold {
	return &KFold{K: k, Seed: seed}
}

// Split generates the train/test indices for each fold over n rows.
// Fold sizes differ by at most one row.
func (kf *KFold) Split(n int) ([]Fold, error) {
	if kf.K < 2 || kf.K > n {
		return nil, errors.NewInvalidFoldCountError(kf.K, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	folds := make([]Fold, kf.K)
	foldSize := n / kf.K
	remainder := n % kf.K

	current := 0
	for i := 0; i < kf.K; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])

		inTest := make(map[int]bool, testSize)
		for _, idx := range test {
			inTest[idx] = true
		}
		train := make([]int, 0, n-testSize)
		for j := 0; j < n; j++ {
			if !inTest[j] {
				train = append(train, j)
			}
		}

		folds[i] = Fold{Train: train, Test: test}
		current += testSize
	}

	return folds, nil
}
