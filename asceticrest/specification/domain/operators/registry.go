package operators

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

type BinaryOp func(left, right any) (bool, error)

type binaryKey struct {
	left  reflect.Type
	op    Operator
	right reflect.Type
}

// OperatorRegistry evaluates comparisons between attribute values in memory.
type OperatorRegistry struct {
	binary map[binaryKey]BinaryOp
}

func NewOperatorRegistry() *OperatorRegistry {
	return &OperatorRegistry{
		binary: make(map[binaryKey]BinaryOp),
	}
}

func RegisterBinary[L, R any](reg *OperatorRegistry, op Operator, fn func(L, R) bool) {
	var zeroL L
	var zeroR R
	key := binaryKey{
		left:  reflect.TypeOf(zeroL),
		op:    op,
		right: reflect.TypeOf(zeroR),
	}
	reg.binary[key] = func(left, right any) (bool, error) {
		return fn(left.(L), right.(R)), nil
	}
}

// Exec evaluates "left op right". Numbers of any Go kind (and json.Number)
// compare as float64. A nil operand only equals nil.
func (r *OperatorRegistry) Exec(left any, op Operator, right any) (bool, error) {
	switch op {
	case OperatorIn, OperatorNotIn:
		found, err := r.member(left, right)
		if err != nil {
			return false, err
		}
		return found == (op == OperatorIn), nil
	case OperatorLike, OperatorNotLike:
		matched, err := like(left, right)
		if err != nil {
			return false, err
		}
		return matched == (op == OperatorLike), nil
	}

	left, right = normalize(left), normalize(right)
	if left == nil || right == nil {
		switch op {
		case OperatorEq:
			return left == nil && right == nil, nil
		case OperatorNe:
			return !(left == nil && right == nil), nil
		default:
			return false, nil
		}
	}

	fn, err := r.lookupBinary(left, op, right)
	if err != nil {
		return false, err
	}
	return fn(left, right)
}

func (r *OperatorRegistry) member(left, right any) (bool, error) {
	rv := reflect.ValueOf(right)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, fmt.Errorf("membership operand must be a list, got %T", right)
	}
	for i := 0; i < rv.Len(); i++ {
		eq, err := r.Exec(left, OperatorEq, rv.Index(i).Interface())
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

func (r *OperatorRegistry) lookupBinary(left any, op Operator, right any) (BinaryOp, error) {
	key := binaryKey{
		left:  reflect.TypeOf(left),
		op:    op,
		right: reflect.TypeOf(right),
	}
	if fn, ok := r.binary[key]; ok {
		return fn, nil
	}
	if fallback := interfaceFallback(left, op, right); fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("operator \"%s\" is not supported for %T and %T", op, left, right)
}

func interfaceFallback(left any, op Operator, right any) BinaryOp {
	switch op {
	case OperatorEq, OperatorNe:
		l, lok := left.(EqualOperand)
		r, rok := right.(EqualOperand)
		if lok && rok {
			return func(any, any) (bool, error) { return l.Equal(r) == (op == OperatorEq), nil }
		}
	case OperatorGt:
		l, lok := left.(GreaterThanOperand)
		r, rok := right.(GreaterThanOperand)
		if lok && rok {
			return func(any, any) (bool, error) { return l.GreaterThan(r), nil }
		}
	case OperatorGte:
		l, lok := left.(GreaterThanEqualOperand)
		r, rok := right.(GreaterThanEqualOperand)
		if lok && rok {
			return func(any, any) (bool, error) { return l.GreaterThanEqual(r), nil }
		}
	case OperatorLt:
		l, lok := left.(LessThanOperand)
		r, rok := right.(LessThanOperand)
		if lok && rok {
			return func(any, any) (bool, error) { return l.LessThan(r), nil }
		}
	case OperatorLte:
		l, lok := left.(LessThanEqualOperand)
		r, rok := right.(LessThanEqualOperand)
		if lok && rok {
			return func(any, any) (bool, error) { return l.LessThanEqual(r), nil }
		}
	}
	return nil
}

func normalize(v any) any {
	switch n := v.(type) {
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

// like implements SQL LIKE: % matches any run, _ matches one character.
func like(value, pattern any) (bool, error) {
	if value == nil {
		return false, nil
	}
	p, ok := pattern.(string)
	if !ok {
		return false, fmt.Errorf("like pattern must be a string, got %T", pattern)
	}
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, ch := range p {
		switch ch {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false, err
	}
	return re.MatchString(fmt.Sprint(value)), nil
}
