package specification

import (
	s "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

const JsonApiEncoderName = "jsonapi"

// JsonApiEncoder follows JSON:API conventions: "filter[field]=value",
// "page[page]", "page[per_page]", "sort=-date,name" and "include".
type JsonApiEncoder struct {
	encoderBase
}

func NewJsonApiEncoder(opts ...EncoderOption) *JsonApiEncoder {
	return &JsonApiEncoder{
		encoderBase: newEncoderBase(JsonApiEncoderName, Capabilities{
			Shape:     ShapeAndFlat,
			Operators: []operators.Operator{operators.OperatorEq},
		}, opts),
	}
}

func (e *JsonApiEncoder) Encode(q *s.Query) (Params, error) {
	params := Params{}
	root, ok, err := e.check(q)
	if err != nil {
		return nil, err
	}
	if ok {
		filters := e.flatFilters(root, func(p s.PredicateNode) any {
			return scalarOrJoined(p.Value())
		})
		params["filter"] = filters
	}

	page := map[string]any{}
	if n, ok := q.Page().Get(); ok {
		page["page"] = n
	}
	if n, ok := q.PerPage().Get(); ok {
		page["per_page"] = n
	}
	if len(page) > 0 {
		params["page"] = page
	}

	if order, ok := signedOrder(q); ok {
		params["sort"] = order
	}
	if include, ok := e.includes(q); ok {
		params["include"] = include
	}
	return params, nil
}

