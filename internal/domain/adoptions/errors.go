package adoptions

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("adoption request not found")

	ErrSelfAdoption     = fmt.Errorf("%w: you cannot adopt your own pet", ErrConflict)
	ErrDuplicatePending = fmt.Errorf("%w: you already have a pending request for this pet", ErrConflict)
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
