package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain/operators"
)

func TestParseCriteriaScalars(t *testing.T) {
	root, err := ParseCriteria(map[string]any{"status": "active", "age": 3})
	require.NoError(t, err)
	assert.Equal(t, "age=3 AND status=active", root.String())
}

func TestParseCriteriaOperators(t *testing.T) {
	root, err := ParseCriteria(map[string]any{
		"age":  map[string]any{"$gte": 18, "$lt": 65},
		"type": map[string]any{"$nin": []any{"bot"}},
	})
	require.NoError(t, err)
	parts := root.Parts()
	require.Len(t, parts, 3)
	assert.Equal(t, operators.OperatorGte, parts[0].(PredicateNode).Operator())
	assert.Equal(t, operators.OperatorLt, parts[1].(PredicateNode).Operator())
	assert.Equal(t, operators.OperatorNotIn, parts[2].(PredicateNode).Operator())
}

func TestParseCriteriaOr(t *testing.T) {
	root, err := ParseCriteria(map[string]any{
		"$or": []any{
			map[string]any{"role": "admin"},
			map[string]any{"role": "owner", "active": true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "(role=admin OR (active=true AND role=owner))", root.String())
}

func TestParseCriteriaErrors(t *testing.T) {
	cases := map[string]map[string]any{
		"unknown operator":  {"a": map[string]any{"$regex": "x"}},
		"bare operator":     {"$gt": 1},
		"or needs two":      {"$or": []any{map[string]any{"a": 1}}},
		"or needs list":     {"$or": map[string]any{"a": 1}},
		"in needs list":     {"a": map[string]any{"$in": 1}},
		"in needs values":   {"a": map[string]any{"$in": []any{}}},
		"empty operators":   {"a": map[string]any{}},
		"or operand object": {"$or": []any{1, 2}},
	}
	for name, document := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCriteria(document)
			assert.Error(t, err)
		})
	}
}
