package decoder

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrUnexpectedPayload = errors.New("decoder: unexpected payload shape")

// StatusError is returned for a response whose status code is not among
// the acceptable ones. Content keeps the raw body for diagnostics.
type StatusError struct {
	StatusCode int
	Acceptable []int
	Content    []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("decoder: unexpected status %d %s (acceptable %v)",
		e.StatusCode, http.StatusText(e.StatusCode), e.Acceptable)
}

// NotFound reports whether the upstream answered 404.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
