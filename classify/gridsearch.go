package classify

import (
	"fmt"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// DefaultKGrid is the neighbor-count grid the trainer searches over
var DefaultKGrid = []int{3, 5, 7, 9, 11}

// weightGrid enumerates both vote schemes, uniform first. The order
// doubles as the tie-break preference.
var weightGrid = []Weighting{WeightUniform, WeightDistance}

// SearchResult is one hyperparameter combination's cross-validation
// score
type SearchResult struct {
	K              int
	Weighting      Weighting
	MeanAccuracy   float64
	FoldAccuracies []float64
}

// GridSearch scores every combination of the k grid and both vote
// schemes with k-fold cross-validation over the standardized training
// set, and returns the combinations best first. Fold membership is a
// seeded shuffle so repeated runs rank identically. Ties prefer the
// smaller k, then uniform weighting.
func GridSearch(x [][]float64, y []int, ks []int, folds int, seed int64) ([]SearchResult, error) {
	if len(x) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vectors, %d labels", ErrDimensionMismatch, len(x), len(y))
	}
	if folds < 2 || folds > len(x) {
		return nil, fmt.Errorf("%w: folds=%d, n=%d", ErrInvalidFolds, folds, len(x))
	}
	if len(ks) == 0 {
		ks = DefaultKGrid
	}

	perm := rand.New(rand.NewSource(seed)).Perm(len(x))

	results := make([]SearchResult, len(ks)*len(weightGrid))
	errs := make([]error, len(results))

	var wg sync.WaitGroup
	for i, k := range ks {
		for j, w := range weightGrid {
			slot := i*len(weightGrid) + j
			wg.Add(1)
			go func(slot, k int, w Weighting) {
				defer wg.Done()
				results[slot], errs[slot] = crossValidate(x, y, perm, k, w, folds)
			}(slot, k, w)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Stable selection sort keeps the grid's own order among ties:
	// smaller k first, uniform before distance.
	ordered := make([]SearchResult, 0, len(results))
	used := make([]bool, len(results))
	for range results {
		best := -1
		for i, r := range results {
			if used[i] {
				continue
			}
			if best == -1 || r.MeanAccuracy > results[best].MeanAccuracy {
				best = i
			}
		}
		used[best] = true
		ordered = append(ordered, results[best])
	}
	return ordered, nil
}

// crossValidate scores one combination over the shuffled index folds
func crossValidate(x [][]float64, y []int, perm []int, k int, w Weighting, folds int) (SearchResult, error) {
	res := SearchResult{
		K:              k,
		Weighting:      w,
		FoldAccuracies: make([]float64, folds),
	}

	for f := 0; f < folds; f++ {
		lo := f * len(perm) / folds
		hi := (f + 1) * len(perm) / folds
		hold := perm[lo:hi]

		trainX := make([][]float64, 0, len(perm)-len(hold))
		trainY := make([]int, 0, len(perm)-len(hold))
		for _, idx := range perm[:lo] {
			trainX = append(trainX, x[idx])
			trainY = append(trainY, y[idx])
		}
		for _, idx := range perm[hi:] {
			trainX = append(trainX, x[idx])
			trainY = append(trainY, y[idx])
		}

		model := NewClassifier(k, w)
		if err := model.Fit(trainX, trainY); err != nil {
			return SearchResult{}, err
		}

		correct := 0
		for _, idx := range hold {
			pred, err := model.Predict(x[idx])
			if err != nil {
				return SearchResult{}, err
			}
			if pred == y[idx] {
				correct++
			}
		}
		res.FoldAccuracies[f] = float64(correct) / float64(len(hold))
	}

	res.MeanAccuracy = stat.Mean(res.FoldAccuracies, nil)
	return res, nil
}
