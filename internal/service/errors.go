package service

import (
	"errors"
	"fmt"

	"crm/internal/repository"
)

// Every error returned by this package wraps one of these, or is an
// unexpected infrastructure failure.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrDuplicate  = errors.New("already exists")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbiddenError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// storeError converts repository sentinels into service errors for entity.
func storeError(entity string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s not found", ErrNotFound, entity)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrDuplicate, entity)
	default:
		return err
	}
}
