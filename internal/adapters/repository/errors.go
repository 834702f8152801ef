package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidLimit = errors.New("invalid listing limit")
)
