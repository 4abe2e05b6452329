package apiclient

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidToken = errors.New("invalid or expired commentbank API token")
	ErrRateLimited  = errors.New("commentbank API rate limit exceeded")
)

// ServerError is a 5xx answer from the commentbank server.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("commentbank server error: HTTP %d", e.StatusCode)
}
