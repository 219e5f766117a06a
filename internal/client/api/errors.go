package api

import (
	"errors"
	"fmt"
)

// Classification sentinels for callers. The CLI falls back to offline mode
// on ErrUnavailable, re-prompts on ErrUnauthorized, and explains the missing
// cache on ErrLocalDataNotAvailable.
var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// Error is the typed form of a non-2xx API response. Message carries the
// server's error body verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: %d", e.StatusCode)
}

// isStatus reports whether err is an API Error with the given status code.
func isStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
