package specification

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

type Visitable interface {
	Accept(Visitor) error
}

// Expression is a part of a predicate tree: a PredicateNode or a CompositeNode.
type Expression interface {
	Visitable
	IsEmpty() bool
}

type Visitor interface {
	VisitPredicate(PredicateNode) error
	VisitComposite(CompositeNode) error
}

type Junction string

const (
	AndJunction Junction = "and"
	OrJunction  Junction = "or"
)

// Where builds a single comparison. Slice values are copied into []any.
func Where(field string, operator operators.Operator, value any) PredicateNode {
	return PredicateNode{
		field:    field,
		operator: operator,
		value:    normalizeValue(value),
	}
}

func Equal(field string, value any) PredicateNode {
	return Where(field, operators.OperatorEq, value)
}

func NotEqual(field string, value any) PredicateNode {
	return Where(field, operators.OperatorNe, value)
}

func GreaterThan(field string, value any) PredicateNode {
	return Where(field, operators.OperatorGt, value)
}

func GreaterThanEqual(field string, value any) PredicateNode {
	return Where(field, operators.OperatorGte, value)
}

func LessThan(field string, value any) PredicateNode {
	return Where(field, operators.OperatorLt, value)
}

func LessThanEqual(field string, value any) PredicateNode {
	return Where(field, operators.OperatorLte, value)
}

func In(field string, values any) PredicateNode {
	return Where(field, operators.OperatorIn, values)
}

func NotIn(field string, values any) PredicateNode {
	return Where(field, operators.OperatorNotIn, values)
}

func Like(field string, pattern string) PredicateNode {
	return Where(field, operators.OperatorLike, pattern)
}

func NotLike(field string, pattern string) PredicateNode {
	return Where(field, operators.OperatorNotLike, pattern)
}

type PredicateNode struct {
	field    string
	operator operators.Operator
	value    any
}

func (n PredicateNode) Field() string {
	return n.field
}

func (n PredicateNode) Operator() operators.Operator {
	return n.operator
}

func (n PredicateNode) Value() any {
	return n.value
}

func (n PredicateNode) IsEmpty() bool {
	return false
}

func (n PredicateNode) Accept(v Visitor) error {
	return v.VisitPredicate(n)
}

// String renders the value alone for equality and "operator:value" otherwise.
func (n PredicateNode) String() string {
	return n.Token(nil)
}

// Token is String with operator tokens substituted through remap.
func (n PredicateNode) Token(remap operators.Remap) string {
	value := FormatValue(n.value)
	if n.operator == operators.OperatorEq {
		return value
	}
	return remap.Token(n.operator) + ":" + value
}

// FormatValue renders a scalar with fmt and a list as comma-joined scalars.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(v))
		for i := range v {
			parts[i] = FormatValue(v[i])
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(value)
}

func normalizeValue(value any) any {
	if value == nil {
		return nil
	}
	if _, ok := value.([]any); ok {
		return append([]any(nil), value.([]any)...)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return value
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return value
	}
	result := make([]any, rv.Len())
	for i := range result {
		result[i] = rv.Index(i).Interface()
	}
	return result
}

func And(parts ...Expression) CompositeNode {
	return CompositeNode{junction: AndJunction}.Add(parts...)
}

func Or(parts ...Expression) CompositeNode {
	return CompositeNode{junction: OrJunction}.Add(parts...)
}

// CompositeNode is an immutable AND/OR group. Add returns a new node.
type CompositeNode struct {
	junction Junction
	parts    []Expression
}

func (n CompositeNode) Junction() Junction {
	return n.junction
}

// Add appends parts, dropping nil and empty composites.
func (n CompositeNode) Add(parts ...Expression) CompositeNode {
	result := CompositeNode{
		junction: n.junction,
		parts:    make([]Expression, len(n.parts), len(n.parts)+len(parts)),
	}
	copy(result.parts, n.parts)
	for _, part := range parts {
		if isEmptyPart(part) {
			continue
		}
		switch p := part.(type) {
		case *PredicateNode:
			part = *p
		case *CompositeNode:
			part = *p
		}
		result.parts = append(result.parts, part)
	}
	return result
}

func (n CompositeNode) Parts() []Expression {
	return append([]Expression(nil), n.parts...)
}

func (n CompositeNode) Count() int {
	return len(n.parts)
}

func (n CompositeNode) IsEmpty() bool {
	return len(n.parts) == 0
}

func (n CompositeNode) Accept(v Visitor) error {
	return v.VisitComposite(n)
}

func (n CompositeNode) String() string {
	parts := make([]string, len(n.parts))
	for i, part := range n.parts {
		switch p := part.(type) {
		case PredicateNode:
			parts[i] = p.field + "=" + p.String()
		case fmt.Stringer:
			parts[i] = "(" + p.String() + ")"
		}
	}
	return strings.Join(parts, " "+strings.ToUpper(string(n.junction))+" ")
}

func isEmptyPart(part Expression) bool {
	if part == nil {
		return true
	}
	if rv := reflect.ValueOf(part); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return true
	}
	return part.IsEmpty()
}
