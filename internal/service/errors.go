package service

import (
	"errors"
	"fmt"
)

var (
	ErrScaleNotFound      = errors.New("scale not found")
	ErrJobNotFound        = errors.New("job not found")
	ErrJobNotCompleted    = errors.New("job not completed")
	ErrJobAlreadyFinished = errors.New("job already finished")
	ErrJobCanceled        = errors.New("job canceled")
)

// ValidationError reports a catalog request that breaks a scale invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
