// Package classify implements the species recommender: a
// distance-weighted k-nearest-neighbor classifier over standardized
// feature vectors, with its fitting pipeline (standardizer, label
// codec, cross-validated hyperparameter search) and evaluation
// report.
package classify

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Weighting selects the neighbor vote scheme
type Weighting int

const (
	WeightUniform  Weighting = iota // every neighbor counts once
	WeightDistance                  // votes weighted by inverse distance
)

func (w Weighting) String() string {
	switch w {
	case WeightUniform:
		return "uniform"
	case WeightDistance:
		return "distance"
	default:
		return fmt.Sprintf("Weighting(%d)", int(w))
	}
}

// Classifier is an instance-based k-nearest-neighbor model. Fitting
// stores the full standardized training set as the reference set; no
// data reduction is performed.
type Classifier struct {
	K         int         `json:"k"`
	Weighting Weighting   `json:"weighting"`
	X         [][]float64 `json:"x"`
	Y         []int       `json:"y"`
	Classes   int         `json:"classes"`
}

// NewClassifier returns an unfitted classifier with the given
// hyperparameters
func NewClassifier(k int, w Weighting) *Classifier {
	return &Classifier{K: k, Weighting: w}
}

// Fit stores the reference set. Labels must already be encoded to
// class indices.
func (c *Classifier) Fit(x [][]float64, y []int) error {
	if len(x) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d vectors, %d labels", ErrDimensionMismatch, len(x), len(y))
	}
	if c.K < 1 || c.K > len(x) {
		return fmt.Errorf("%w: k=%d, n=%d", ErrInvalidNeighbors, c.K, len(x))
	}

	classes := 0
	for _, label := range y {
		if label < 0 {
			return fmt.Errorf("%w: negative class index %d", ErrUnknownLabel, label)
		}
		if label+1 > classes {
			classes = label + 1
		}
	}

	c.X = x
	c.Y = y
	c.Classes = classes
	return nil
}

// neighbor pairs a reference row with its distance to the query
type neighbor struct {
	dist  float64
	label int
}

// Predict returns the class index for a standardized query vector
func (c *Classifier) Predict(vec []float64) (int, error) {
	if len(c.X) == 0 {
		return 0, ErrNotFitted
	}
	if len(vec) != len(c.X[0]) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrDimensionMismatch, len(vec), len(c.X[0]))
	}

	neighbors := make([]neighbor, len(c.X))
	for i, row := range c.X {
		neighbors[i] = neighbor{
			dist:  floats.Distance(vec, row, 2),
			label: c.Y[i],
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].dist < neighbors[j].dist
	})
	nearest := neighbors[:c.K]

	// An exact match decides outright under distance weighting: its
	// inverse-distance weight is unbounded.
	if c.Weighting == WeightDistance {
		exact := make([]neighbor, 0, c.K)
		for _, n := range nearest {
			if n.dist == 0 {
				exact = append(exact, n)
			}
		}
		if len(exact) > 0 {
			nearest = exact
		}
	}

	votes := make([]float64, c.Classes)
	for _, n := range nearest {
		switch {
		case c.Weighting == WeightUniform, n.dist == 0:
			votes[n.label]++
		default:
			votes[n.label] += 1 / n.dist
		}
	}

	// Ties break toward the smallest class index
	best := 0
	for label := 1; label < c.Classes; label++ {
		if votes[label] > votes[best] {
			best = label
		}
	}
	return best, nil
}

// PredictAll classifies a matrix of standardized vectors
func (c *Classifier) PredictAll(x [][]float64) ([]int, error) {
	out := make([]int, len(x))
	for i, vec := range x {
		label, err := c.Predict(vec)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}
