package specification

import (
	"fmt"
	"strings"

	s "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

// Encoder maps a Query to the parameters of one REST dialect. Encoders hold
// no per-query state and may be shared.
type Encoder interface {
	Name() string
	Capabilities() Capabilities
	Encode(q *s.Query) (Params, error)
}

type EncoderOption func(*encoderBase)

// WithIncludeTransform rewrites every include path before it is joined.
func WithIncludeTransform(transform func(string) string) EncoderOption {
	return func(e *encoderBase) {
		e.includeTransform = transform
	}
}

func WithSnakeCaseIncludes() EncoderOption {
	return WithIncludeTransform(SnakeCase)
}

func WithoutIncludeTransform() EncoderOption {
	return WithIncludeTransform(nil)
}

type encoderBase struct {
	name             string
	caps             Capabilities
	includeTransform func(string) string
}

func newEncoderBase(name string, caps Capabilities, opts []EncoderOption) encoderBase {
	e := encoderBase{name: name, caps: caps}
	for i := range opts {
		opts[i](&e)
	}
	return e
}

func (e encoderBase) Name() string {
	return e.name
}

func (e encoderBase) Capabilities() Capabilities {
	return e.caps
}

func (e encoderBase) check(q *s.Query) (s.CompositeNode, bool, error) {
	root, ok := q.Criteria()
	if !ok {
		return root, false, nil
	}
	if err := CheckCapabilities(e.name, e.caps, root); err != nil {
		return root, false, err
	}
	return root, true, nil
}

// flatFilters maps each field to its value for dialects that carry a field
// only once. A repeated field keeps the value of its last predicate.
func (e encoderBase) flatFilters(root s.CompositeNode, value func(s.PredicateNode) any) map[string]any {
	filters := make(map[string]any)
	for _, p := range flattenPredicates(root) {
		filters[p.Field()] = value(p)
	}
	return filters
}

func (e encoderBase) includes(q *s.Query) (string, bool) {
	paths := q.Includes()
	if len(paths) == 0 {
		return "", false
	}
	if e.includeTransform != nil {
		for i := range paths {
			paths[i] = e.includeTransform(paths[i])
		}
	}
	return strings.Join(paths, ","), true
}

// signedOrder renders "-date,name".
func signedOrder(q *s.Query) (string, bool) {
	order := q.Order()
	if len(order) == 0 {
		return "", false
	}
	tokens := make([]string, len(order))
	for i, o := range order {
		if o.Direction == s.Desc {
			tokens[i] = "-" + o.Field
		} else {
			tokens[i] = o.Field
		}
	}
	return strings.Join(tokens, ","), true
}

// scalarOrJoined keeps scalars as they are and joins lists by comma.
func scalarOrJoined(value any) any {
	if _, isList := value.([]any); isList {
		return s.FormatValue(value)
	}
	return value
}

func EncoderByName(name string, opts ...EncoderOption) (Encoder, error) {
	switch strings.ToLower(name) {
	case SimpleEncoderName:
		return NewSimpleEncoder(opts...), nil
	case JsonApiEncoderName, "json:api", "json-api":
		return NewJsonApiEncoder(opts...), nil
	case OpenStackEncoderName:
		return NewOpenStackEncoder(opts...), nil
	case NestedEncoderName:
		return NewNestedEncoder(opts...), nil
	}
	return nil, fmt.Errorf("unknown encoder %q", name)
}
