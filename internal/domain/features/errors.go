package features

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownMethod = errors.New("unknown normalization method")
)
