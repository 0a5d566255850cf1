package specification

import (
	"errors"
	"fmt"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

var ErrUnsupported = errors.New("unsupported by encoder")

// CapabilityError reports a predicate tree shape or operator the encoder
// cannot express. Field and Operator are empty for shape violations.
type CapabilityError struct {
	Encoder  string
	Field    string
	Operator operators.Operator
	Reason   string
}

func (e *CapabilityError) Error() string {
	msg := fmt.Sprintf("%s encoder: %s", e.Encoder, e.Reason)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q", e.Field)
		if e.Operator != "" {
			msg += fmt.Sprintf(", operator %q", e.Operator)
		}
		msg += ")"
	}
	return msg
}

func (e *CapabilityError) Is(target error) bool {
	return target == ErrUnsupported
}
