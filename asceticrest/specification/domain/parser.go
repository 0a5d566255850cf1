package specification

import (
	"fmt"
	"slices"
	"strings"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

const operatorPrefix = "$"

var parserOperators = map[string]operators.Operator{
	"$eq":    operators.OperatorEq,
	"$ne":    operators.OperatorNe,
	"$gt":    operators.OperatorGt,
	"$gte":   operators.OperatorGte,
	"$lt":    operators.OperatorLt,
	"$lte":   operators.OperatorLte,
	"$in":    operators.OperatorIn,
	"$nin":   operators.OperatorNotIn,
	"$like":  operators.OperatorLike,
	"$nlike": operators.OperatorNotLike,
}

// ParseCriteria turns a criteria document into an AND group:
//
//	{"status": "active", "age": {"$gte": 18}, "$or": [{"role": "admin"}, {"role": "owner"}]}
//
// Scalars mean equality. Keys are visited in sorted order so the resulting
// tree is deterministic.
func ParseCriteria(document map[string]any) (CompositeNode, error) {
	return criteriaParser{}.parseGroup(AndJunction, document)
}

type criteriaParser struct{}

func (p criteriaParser) parseGroup(junction Junction, document map[string]any) (CompositeNode, error) {
	group := CompositeNode{junction: junction}
	keys := make([]string, 0, len(document))
	for k := range document {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		value := document[key]
		switch {
		case key == "$and" || key == "$or":
			sub, err := p.parseJunction(key, value)
			if err != nil {
				return CompositeNode{}, err
			}
			group = group.Add(sub)
		case strings.HasPrefix(key, operatorPrefix):
			return CompositeNode{}, fmt.Errorf("operator %s must be nested under a field", key)
		default:
			parts, err := p.parseField(key, value)
			if err != nil {
				return CompositeNode{}, err
			}
			group = group.Add(parts...)
		}
	}
	return group, nil
}

func (p criteriaParser) parseJunction(key string, value any) (CompositeNode, error) {
	list, ok := value.([]any)
	if !ok {
		return CompositeNode{}, fmt.Errorf("%s value must be list, got: %T", key, value)
	}
	junction := AndJunction
	if key == "$or" {
		junction = OrJunction
		if len(list) < 2 {
			return CompositeNode{}, fmt.Errorf("$or requires at least 2 operands, got: %d", len(list))
		}
	}
	group := CompositeNode{junction: junction}
	for _, item := range list {
		document, ok := item.(map[string]any)
		if !ok {
			return CompositeNode{}, fmt.Errorf("%s operand must be dict, got: %T", key, item)
		}
		sub, err := p.parseGroup(AndJunction, document)
		if err != nil {
			return CompositeNode{}, err
		}
		// A single-part AND operand collapses into its only part.
		if sub.Count() == 1 {
			group = group.Add(sub.parts[0])
		} else {
			group = group.Add(sub)
		}
	}
	return group, nil
}

func (p criteriaParser) parseField(field string, value any) ([]Expression, error) {
	ops, ok := value.(map[string]any)
	if !ok {
		return []Expression{Equal(field, value)}, nil
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("empty operator dict for field %q", field)
	}
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]Expression, 0, len(ops))
	for _, name := range names {
		op, known := parserOperators[name]
		if !known {
			return nil, fmt.Errorf("unknown operator: %s", name)
		}
		operand := ops[name]
		if op.IsMembership() {
			list, ok := operand.([]any)
			if !ok {
				return nil, fmt.Errorf("%s value must be list, got: %T", name, operand)
			}
			if len(list) < 1 {
				return nil, fmt.Errorf("%s requires at least 1 value, got: %d", name, len(list))
			}
		}
		parts = append(parts, Where(field, op, operand))
	}
	return parts, nil
}
