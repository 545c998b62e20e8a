package repository

import (
	"errors"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	ErrCompanyNotFound   = errors.New("company not found")
	ErrCriterionNotFound = errors.New("criterion not found")
	ErrCriterionDisabled = errors.New("criterion is disabled")
	ErrDuplicateID       = errors.New("id already in use")
	ErrInvalidName       = errors.New("name must not be blank")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrInvalidCriterion  = model.ErrInvalidCriterion

	// errNothingToPop aborts a pop on an empty history without counting as a failure.
	errNothingToPop = errors.New("snapshot history is empty")
)
