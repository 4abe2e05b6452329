package services

import (
	"errors"
	"fmt"
)

var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrImportNotFound   = errors.New("import session not found")
	ErrAsyncUnavailable = errors.New("background imports are not available")
)

// ValidationError reports input that a teacher can fix.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
