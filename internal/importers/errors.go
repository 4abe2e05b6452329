package importers

import (
	"errors"
	"strings"
)

// UnknownFailureReason is reported when a rejected save carries no usable message.
const UnknownFailureReason = "Unknown error occurred"

// RejectionError is a structured refusal to save a comment, as returned by the
// comments API ({"error": ..., "details": ..., "message": ...}).
type RejectionError struct {
	StatusCode int    `json:"-"`
	Err        string `json:"error,omitempty"`
	Details    string `json:"details,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (e *RejectionError) Error() string {
	if reason := e.reason(); reason != "" {
		return reason
	}
	return "comment rejected"
}

func (e *RejectionError) reason() string {
	errText := strings.TrimSpace(e.Err)
	details := strings.TrimSpace(e.Details)
	message := strings.TrimSpace(e.Message)

	switch {
	case errText != "" && details != "":
		return errText + ": " + details
	case errText != "":
		return errText
	case message != "":
		return message
	default:
		return ""
	}
}

// FailureReason extracts a human-readable reason from a failed save.
// Priority: rejection error+details, rejection error, rejection message,
// the error's own text, then UnknownFailureReason.
func FailureReason(err error) string {
	if err == nil {
		return UnknownFailureReason
	}

	var rejection *RejectionError
	if errors.As(err, &rejection) {
		if reason := rejection.reason(); reason != "" {
			return reason
		}
		return UnknownFailureReason
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return UnknownFailureReason
}
