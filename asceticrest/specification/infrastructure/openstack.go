package specification

import (
	"strings"

	s "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

const OpenStackEncoderName = "openstack"

var openStackRemap = operators.Remap{
	operators.OperatorNotIn:   "nin",
	operators.OperatorNotLike: "nlike",
}

// OpenStackEncoder inlines filters as top-level "field=op:value" tokens and
// merges route parameters into the output. Page based pagination does not
// exist in this dialect; "limit" and "marker" are used instead.
type OpenStackEncoder struct {
	encoderBase
}

func NewOpenStackEncoder(opts ...EncoderOption) *OpenStackEncoder {
	opts = append([]EncoderOption{WithSnakeCaseIncludes()}, opts...)
	return &OpenStackEncoder{
		encoderBase: newEncoderBase(OpenStackEncoderName, Capabilities{
			Shape:            ShapeAndFlat,
			Operators:        operators.All(),
			MarkerPagination: true,
		}, opts),
	}
}

func (e *OpenStackEncoder) Encode(q *s.Query) (Params, error) {
	params := Params{}
	for name, value := range q.RouteParameters() {
		params[name] = value
	}

	root, ok, err := e.check(q)
	if err != nil {
		return nil, err
	}
	if ok {
		tokens := make(map[string][]string)
		var fields []string
		for _, p := range flattenPredicates(root) {
			if _, seen := tokens[p.Field()]; !seen {
				fields = append(fields, p.Field())
			}
			tokens[p.Field()] = append(tokens[p.Field()], p.Token(openStackRemap))
		}
		for _, field := range fields {
			if len(tokens[field]) == 1 {
				params[field] = tokens[field][0]
			} else {
				params[field] = tokens[field]
			}
		}
	}

	if limit, ok := q.Limit().Get(); ok {
		params["limit"] = limit
	}
	if marker, ok := q.Offset().Get(); ok {
		params["marker"] = marker
	}
	if order := q.Order(); len(order) > 0 {
		tokens := make([]string, len(order))
		for i, o := range order {
			tokens[i] = o.Field + ":" + string(o.Direction)
		}
		params["sort"] = strings.Join(tokens, ",")
	}
	if include, ok := e.includes(q); ok {
		params["include"] = include
	}
	return params, nil
}
