package model

import "errors"

// Sentinel error kinds for domain validation.
var (
	ErrInvalidCriterion = errors.New("invalid criterion")
)
