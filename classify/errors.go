package classify

import "errors"

// Predefined error types for training and inference failures
var (
	ErrDegenerateFeature = errors.New("feature has zero standard deviation")
	ErrUnknownLabel      = errors.New("label not present in fitted codec")
	ErrEmptyTrainingSet  = errors.New("training set is empty")
	ErrDimensionMismatch = errors.New("vector dimension does not match fitted model")
	ErrNotFitted         = errors.New("model is not fitted")
	ErrInvalidNeighbors  = errors.New("neighbor count must be positive and no larger than the training set")
	ErrInvalidFolds      = errors.New("fold count must be at least 2 and no larger than the training set")
)
