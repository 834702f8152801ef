package evaluate

import "errors"

// Package errors.
var (
	// ErrBadEvalInput is returned for empty or mismatched label slices.
	ErrBadEvalInput = errors.New("bad evaluation input")
)
