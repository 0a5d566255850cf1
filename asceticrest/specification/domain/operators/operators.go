package operators

import "slices"

// Operator is the wire token of a comparison. Encoders may substitute their
// own token through a Remap.
type Operator string

const (
	OperatorEq      Operator = "eq"
	OperatorNe      Operator = "neq"
	OperatorGt      Operator = "gt"
	OperatorGte     Operator = "gte"
	OperatorLt      Operator = "lt"
	OperatorLte     Operator = "lte"
	OperatorIn      Operator = "in"
	OperatorNotIn   Operator = "!in"
	OperatorLike    Operator = "like"
	OperatorNotLike Operator = "!like"
)

var all = []Operator{
	OperatorEq, OperatorNe,
	OperatorGt, OperatorGte, OperatorLt, OperatorLte,
	OperatorIn, OperatorNotIn,
	OperatorLike, OperatorNotLike,
}

// All returns every known operator in declaration order.
func All() []Operator {
	return slices.Clone(all)
}

func (o Operator) IsKnown() bool {
	return slices.Contains(all, o)
}

// IsMembership reports whether the operator expects a list operand.
func (o Operator) IsMembership() bool {
	return o == OperatorIn || o == OperatorNotIn
}

func (o Operator) String() string {
	return string(o)
}

// Remap substitutes operator tokens, e.g. "!in" -> "nin".
type Remap map[Operator]string

func (r Remap) Token(o Operator) string {
	if token, ok := r[o]; ok {
		return token
	}
	return string(o)
}
