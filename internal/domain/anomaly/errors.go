package anomaly

import "errors"

// Package errors.
var (
	// ErrBadTrainingData is returned when the training matrix is empty
	// or its rows are not uniformly sized.
	ErrBadTrainingData = errors.New("bad training data")
)
