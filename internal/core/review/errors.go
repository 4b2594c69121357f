package review

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when a response carried an empty body.
	ErrNoData = errors.New("no data received")
	// ErrDecode is returned when a payload does not match the expected schema.
	ErrDecode = errors.New("failed to decode data")
)

// NetworkError is a transport-level failure for a single request.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("network error: %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
