package locator

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("locator: no matching record")

// NotFoundError is returned by the *OrFail lookups.
type NotFoundError struct {
	Type string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("locator: no %s record with identity %v", e.Type, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FetchError wraps an upstream failure with the route and identity that
// were requested.
type FetchError struct {
	Route    string
	Identity any
	Err      error
}

func (e *FetchError) Error() string {
	if e.Identity != nil {
		return fmt.Sprintf("locator: fetch %s (identity %v): %v", e.Route, e.Identity, e.Err)
	}
	return fmt.Sprintf("locator: fetch %s: %v", e.Route, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
