package specification

import (
	s "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

const NestedEncoderName = "nested"

// NestedEncoder keeps the whole predicate tree under "filters":
//
//	{"type": "and", "parts": [{"field": "a", "operator": "eq", "value": 1}, {"type": "or", "parts": [...]}]}
//
// It suits transports that send structured bodies.
type NestedEncoder struct {
	encoderBase
}

func NewNestedEncoder(opts ...EncoderOption) *NestedEncoder {
	return &NestedEncoder{
		encoderBase: newEncoderBase(NestedEncoderName, Capabilities{
			Shape:     ShapeAndOrNested,
			Operators: operators.All(),
		}, opts),
	}
}

func (e *NestedEncoder) Encode(q *s.Query) (Params, error) {
	params := Params{}
	root, ok, err := e.check(q)
	if err != nil {
		return nil, err
	}
	if ok {
		v := &nestedVisitor{}
		if err := root.Accept(v); err != nil {
			return nil, err
		}
		params["filters"] = v.result
	}
	if order, ok := signedOrder(q); ok {
		params["order"] = order
	}
	if page, ok := q.Page().Get(); ok {
		params["page"] = page
	}
	if perPage, ok := q.PerPage().Get(); ok {
		params["per_page"] = perPage
	}
	if include, ok := e.includes(q); ok {
		params["include"] = include
	}
	return params, nil
}

type nestedVisitor struct {
	result map[string]any
}

func (v *nestedVisitor) VisitPredicate(n s.PredicateNode) error {
	v.result = map[string]any{
		"field":    n.Field(),
		"operator": string(n.Operator()),
		"value":    n.Value(),
	}
	return nil
}

func (v *nestedVisitor) VisitComposite(n s.CompositeNode) error {
	parts := make([]any, 0, n.Count())
	for _, part := range n.Parts() {
		if err := part.Accept(v); err != nil {
			return err
		}
		parts = append(parts, v.result)
	}
	v.result = map[string]any{
		"type":  string(n.Junction()),
		"parts": parts,
	}
	return nil
}
