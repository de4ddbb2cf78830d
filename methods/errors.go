package methods

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced by the sync and export paths. Views map ErrNotFound
// to 404 and ErrValidation to 400; everything else is a 500.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}
