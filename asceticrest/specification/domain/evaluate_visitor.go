package specification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

var ErrKeyNotFound = errors.New("key not found")

// Context exposes the attributes of the object a tree is evaluated against.
type Context interface {
	Get(string) (any, error)
}

type MapContext map[string]any

func (c MapContext) Get(key string) (any, error) {
	value, ok := c[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	if nested, ok := value.(map[string]any); ok {
		return MapContext(nested), nil
	}
	return value, nil
}

func NewEvaluateVisitor(context Context, registry *operators.OperatorRegistry) *EvaluateVisitor {
	return &EvaluateVisitor{
		context:  context,
		registry: registry,
	}
}

// EvaluateVisitor decides whether a Context satisfies a predicate tree. Missing
// attributes compare as nil.
type EvaluateVisitor struct {
	context  Context
	registry *operators.OperatorRegistry
	result   bool
}

func (v *EvaluateVisitor) VisitPredicate(n PredicateNode) error {
	value, err := v.lookup(n.Field())
	if err != nil {
		return err
	}
	result, err := v.registry.Exec(value, n.Operator(), n.Value())
	if err != nil {
		return fmt.Errorf("field %q: %w", n.Field(), err)
	}
	v.result = result
	return nil
}

func (v *EvaluateVisitor) VisitComposite(n CompositeNode) error {
	if n.IsEmpty() {
		v.result = true
		return nil
	}
	isAnd := n.Junction() != OrJunction
	result := isAnd
	for _, part := range n.Parts() {
		if err := part.Accept(v); err != nil {
			return err
		}
		if isAnd && !v.result {
			result = false
			break
		}
		if !isAnd && v.result {
			result = true
			break
		}
	}
	v.result = result
	return nil
}

func (v *EvaluateVisitor) lookup(field string) (any, error) {
	var current any = v.context
	for _, name := range strings.Split(field, ".") {
		ctx, ok := current.(Context)
		if !ok {
			return nil, nil
		}
		value, err := ctx.Get(name)
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		current = value
	}
	return current, nil
}

func (v EvaluateVisitor) Result() bool {
	return v.result
}

var defaultRegistry = operators.NewDefaultRegistry()

// Matches evaluates expr against context with the default operator registry.
// An empty group matches everything.
func Matches(expr Visitable, context Context) (bool, error) {
	v := NewEvaluateVisitor(context, defaultRegistry)
	if err := expr.Accept(v); err != nil {
		return false, err
	}
	return v.Result(), nil
}
