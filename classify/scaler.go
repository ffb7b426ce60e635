package classify

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Standardizer rescales feature vectors to zero mean and unit
// variance using statistics fitted once on the training corpus. The
// same fitted instance must transform every inference vector; never
// refit on live data.
type Standardizer struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitStandardizer computes per-feature mean and sample standard
// deviation over the corpus rows. A zero standard deviation means a
// feature carries no information and would blow up the transform, so
// it is rejected as a configuration error.
func FitStandardizer(x [][]float64) (*Standardizer, error) {
	if len(x) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	dims := len(x[0])

	s := &Standardizer{
		Mean: make([]float64, dims),
		Std:  make([]float64, dims),
	}

	col := make([]float64, len(x))
	for j := 0; j < dims; j++ {
		for i, row := range x {
			if len(row) != dims {
				return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), dims)
			}
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 {
			return nil, fmt.Errorf("%w: feature %d", ErrDegenerateFeature, j)
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return s, nil
}

// Transform rescales one vector with the fitted statistics
func (s *Standardizer) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Mean) {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrDimensionMismatch, len(vec), len(s.Mean))
	}
	out := make([]float64, len(vec))
	for j, v := range vec {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// TransformAll rescales a whole matrix with the fitted statistics
func (s *Standardizer) TransformAll(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		t, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
