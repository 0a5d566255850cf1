package model

import (
	"errors"
	"fmt"
)

var (
	ErrUndefinedRelation = errors.New("model: undefined relation")
	ErrRelationCycle     = errors.New("model: relation is already being resolved")
)

// ConfigurationError is a programmer mistake detected while wiring types,
// relations or hydration rules. It is never retried.
type ConfigurationError struct {
	Subject string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Subject, e.Reason)
}
