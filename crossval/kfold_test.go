package crossval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecospace/sdmgo/pkg/errors"
)

func TestKFoldSplitIsPartition(t *testing.T) {
	n := 23
	for k := 2; k <= n; k++ {
		folds, err := NewKFold(k, 7).Split(n)
		require.NoError(t, err, "k=%d", k)
		require.Len(t, folds, k)

		seen := make(map[int]int, n)
		minSize, maxSize := n, 0
		for _, fold := range folds {
			if len(fold.Test) < minSize {
				minSize = len(fold.Test)
			}
			if len(fold.Test) > maxSize {
				maxSize = len(fold.Test)
			}
			for _, idx := range fold.Test {
				seen[idx]++
			}
			assert.Len(t, fold.Train, n-len(fold.Test), "k=%d", k)
		}

		// Union of test sets covers every row exactly once.
		require.Len(t, seen, n, "k=%d", k)
		for idx, count := range seen {
			assert.Equal(t, 1, count, "k=%d row %d", k, idx)
		}
		assert.LessOrEqual(t, maxSize-minSize, 1, "k=%d", k)
	}
}

func TestKFoldTrainIsComplement(t *testing.T) {
	folds, err := NewKFold(4, 11).Split(17)
	require.NoError(t, err)

	for i, fold := range folds {
		inTest := make(map[int]bool)
		for _, idx := range fold.Test {
			inTest[idx] = true
		}
		for _, idx := range fold.Train {
			assert.False(t, inTest[idx], "fold %d: row %d in both train and test", i, idx)
		}
	}
}

func TestKFoldSeedReproducibility(t *testing.T) {
	a, err := NewKFold(3, 42).Split(12)
	require.NoError(t, err)
	b, err := NewKFold(3, 42).Split(12)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKFoldInvalidCount(t *testing.T) {
	var foldErr *errors.InvalidFoldCountError

	_, err := NewKFold(1, 0).Split(10)
	require.True(t, errors.As(err, &foldErr))

	_, err = NewKFold(11, 0).Split(10)
	require.True(t, errors.As(err, &foldErr))
	assert.Equal(t, 11, foldErr.K)
	assert.Equal(t, 10, foldErr.Rows)
}
