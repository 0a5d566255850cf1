package specification

import (
	s "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

const SimpleEncoderName = "simple"

// SimpleEncoder writes "field=value" filters, "order=-date,name",
// "page"/"per_page" and "include=a,b".
type SimpleEncoder struct {
	encoderBase
}

func NewSimpleEncoder(opts ...EncoderOption) *SimpleEncoder {
	return &SimpleEncoder{
		encoderBase: newEncoderBase(SimpleEncoderName, Capabilities{
			Shape:     ShapeAndFlat,
			Operators: []operators.Operator{operators.OperatorEq, operators.OperatorIn},
		}, opts),
	}
}

func (e *SimpleEncoder) Encode(q *s.Query) (Params, error) {
	params := Params{}
	root, ok, err := e.check(q)
	if err != nil {
		return nil, err
	}
	if ok {
		filters := e.flatFilters(root, func(p s.PredicateNode) any {
			return scalarOrJoined(p.Value())
		})
		for field, value := range filters {
			params[field] = value
		}
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
