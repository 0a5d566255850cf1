package operators

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type Money struct {
	amount   int
	currency string
}

func (m Money) Equal(other EqualOperand) bool {
	o, ok := other.(Money)
	return ok && m.amount == o.amount && m.currency == o.currency
}

func (m Money) GreaterThan(other GreaterThanOperand) bool {
	o, ok := other.(Money)
	return ok && m.amount > o.amount
}

func TestExecNumbersAcrossKinds(t *testing.T) {
	reg := NewDefaultRegistry()

	result, err := reg.Exec(json.Number("5"), OperatorEq, 5)
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = reg.Exec(int64(7), OperatorGt, 6.5)
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = reg.Exec(uint8(1), OperatorLte, 0)
	assert.NoError(t, err)
	assert.False(t, result)
}

func TestExecNil(t *testing.T) {
	reg := NewDefaultRegistry()

	result, err := reg.Exec(nil, OperatorEq, nil)
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = reg.Exec(nil, OperatorNe, "x")
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = reg.Exec(nil, OperatorGt, 1)
	assert.NoError(t, err)
	assert.False(t, result)
}

func TestExecMembership(t *testing.T) {
	reg := NewDefaultRegistry()

	result, err := reg.Exec("b", OperatorIn, []string{"a", "b"})
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = reg.Exec(3, OperatorNotIn, []any{1, 2})
	assert.NoError(t, err)
	assert.True(t, result)

	_, err = reg.Exec(3, OperatorIn, 3)
	assert.Error(t, err)
}

func TestExecLike(t *testing.T) {
	reg := NewDefaultRegistry()

	result, err := reg.Exec("permissions.read", OperatorLike, "perm%._ead")
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = reg.Exec("a+b", OperatorNotLike, "a+b")
	assert.NoError(t, err)
	assert.False(t, result)
}

func TestExecTime(t *testing.T) {
	reg := NewDefaultRegistry()
	now := time.Now()

	result, err := reg.Exec(now, OperatorGt, now.Add(-time.Hour))
	assert.NoError(t, err)
	assert.True(t, result)
}

func TestExecValueObjectFallback(t *testing.T) {
	reg := NewDefaultRegistry()

	result, err := reg.Exec(Money{100, "USD"}, OperatorEq, Money{100, "USD"})
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = reg.Exec(Money{100, "USD"}, OperatorGt, Money{50, "USD"})
	assert.NoError(t, err)
	assert.True(t, result)

	_, err = reg.Exec(Money{100, "USD"}, OperatorLt, Money{50, "USD"})
	assert.Error(t, err)
}

func TestUnsupportedTypes(t *testing.T) {
	reg := NewDefaultRegistry()
	_, err := reg.Exec("a", OperatorGt, 1)
	assert.Error(t, err)
}

func TestRemapToken(t *testing.T) {
	remap := Remap{OperatorNotIn: "nin"}
	assert.Equal(t, "nin", remap.Token(OperatorNotIn))
	assert.Equal(t, "gt", remap.Token(OperatorGt))
	assert.True(t, OperatorNotLike.IsKnown())
	assert.False(t, Operator("~").IsKnown())
	assert.True(t, OperatorIn.IsMembership())
}
