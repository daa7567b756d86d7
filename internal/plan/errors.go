package plan

import (
	"errors"
	"fmt"
)

var (
	ErrPlanNotFound        = errors.New("plan not found")
	ErrStepNotFound        = errors.New("step not found")
	ErrUnauthorized        = errors.New("plan not owned by caller")
	ErrInvalidReplanFormat = errors.New("invalid replan format")
	ErrInvalidRequest      = errors.New("invalid request")
)

// GenerationError reports that the model gateway produced no usable output.
// The store is never mutated when one is returned.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError wraps err unless it already is a GenerationError.
func NewGenerationError(op string, err error) error {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return err
	}
	return &GenerationError{Op: op, Err: err}
}

// IsGenerationError reports whether err carries a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
