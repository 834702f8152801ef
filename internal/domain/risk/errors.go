package risk

import "errors"

// Sentinel error kinds for this package. ErrModelNotTrained signals
// "model not ready"; the others are bad-argument conditions.
var (
	ErrModelNotTrained  = errors.New("supervised model not trained")
	ErrRuleBasedModel   = errors.New("scorer has no supervised model")
	ErrBadTrainingData  = errors.New("bad training data")
	ErrBadFeatureVector = errors.New("bad feature vector")
)
