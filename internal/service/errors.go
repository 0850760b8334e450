package service

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidTransition is returned when a lifecycle action is defined by the
// state machine but not applicable to the request's current status. This is
// also what a staff member sees after losing an accept race.
var ErrInvalidTransition = errors.New("transition not allowed from current status")

// ValidationError reports a missing or malformed request field. Handlers map
// it to a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
