package specification

import (
	"slices"

	"github.com/hashicorp/go-multierror"

	s "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

// Shape is the family of predicate trees an encoder can express.
type Shape int

const (
	ShapeAndNested   Shape = iota // AND only, any depth
	ShapeAndFlat                  // AND only, predicates directly under the root
	ShapeAndOrFlat                // AND or OR root, predicates directly under it
	ShapeAndOrNested              // anything
)

func (sh Shape) allowsOr() bool {
	return sh == ShapeAndOrFlat || sh == ShapeAndOrNested
}

func (sh Shape) allowsNesting() bool {
	return sh == ShapeAndNested || sh == ShapeAndOrNested
}

type Capabilities struct {
	Shape     Shape
	Operators []operators.Operator

	// MarkerPagination is set when limit and marker reach the wire. Other
	// encoders page with page and per_page only.
	MarkerPagination bool
}

func (c Capabilities) Supports(op operators.Operator) bool {
	return slices.Contains(c.Operators, op)
}

// CheckCapabilities walks the whole tree and reports every violation. A
// single violation is returned as a *CapabilityError, several as a
// *multierror.Error of them.
func CheckCapabilities(encoder string, caps Capabilities, root s.CompositeNode) error {
	v := &capabilityVisitor{encoder: encoder, caps: caps}
	if err := root.Accept(v); err != nil {
		return err
	}
	switch len(v.errs) {
	case 0:
		return nil
	case 1:
		return v.errs[0]
	}
	var result *multierror.Error
	for _, err := range v.errs {
		result = multierror.Append(result, err)
	}
	return result
}

type capabilityVisitor struct {
	encoder string
	caps    Capabilities
	depth   int
	errs    []error
}

func (v *capabilityVisitor) violation(field string, op operators.Operator, reason string) {
	v.errs = append(v.errs, &CapabilityError{
		Encoder:  v.encoder,
		Field:    field,
		Operator: op,
		Reason:   reason,
	})
}

func (v *capabilityVisitor) VisitPredicate(n s.PredicateNode) error {
	if !v.caps.Supports(n.Operator()) {
		v.violation(n.Field(), n.Operator(), "operator is not supported")
	}
	return nil
}

func (v *capabilityVisitor) VisitComposite(n s.CompositeNode) error {
	if v.depth > 0 && !v.caps.Shape.allowsNesting() {
		v.violation("", "", "nested conditions are not supported")
		return nil
	}
	if n.Junction() == s.OrJunction && !v.caps.Shape.allowsOr() {
		if v.depth == 0 {
			v.violation("", "", "top-level OR is not supported")
		} else {
			v.violation("", "", "nested OR is not supported")
		}
	}
	v.depth++
	defer func() { v.depth-- }()
	for _, part := range n.Parts() {
		if err := part.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// flattenPredicates lists the predicates of an AND-only tree in order.
func flattenPredicates(root s.CompositeNode) []s.PredicateNode {
	var result []s.PredicateNode
	for _, part := range root.Parts() {
		switch p := part.(type) {
		case s.PredicateNode:
			result = append(result, p)
		case s.CompositeNode:
			result = append(result, flattenPredicates(p)...)
		}
	}
	return result
}
