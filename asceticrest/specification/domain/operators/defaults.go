package operators

import (
	"cmp"
	"time"
)

func registerComparison[T cmp.Ordered](reg *OperatorRegistry) {
	RegisterBinary[T, T](reg, OperatorEq, func(a, b T) bool { return a == b })
	RegisterBinary[T, T](reg, OperatorNe, func(a, b T) bool { return a != b })
	RegisterBinary[T, T](reg, OperatorGt, func(a, b T) bool { return a > b })
	RegisterBinary[T, T](reg, OperatorGte, func(a, b T) bool { return a >= b })
	RegisterBinary[T, T](reg, OperatorLt, func(a, b T) bool { return a < b })
	RegisterBinary[T, T](reg, OperatorLte, func(a, b T) bool { return a <= b })
}

// NewDefaultRegistry covers the scalar shapes a JSON payload decodes into,
// plus time.Time for cast attributes.
func NewDefaultRegistry() *OperatorRegistry {
	reg := NewOperatorRegistry()

	registerComparison[float64](reg)
	registerComparison[string](reg)

	RegisterBinary[bool, bool](reg, OperatorEq, func(a, b bool) bool { return a == b })
	RegisterBinary[bool, bool](reg, OperatorNe, func(a, b bool) bool { return a != b })

	RegisterBinary[time.Time, time.Time](reg, OperatorEq, func(a, b time.Time) bool { return a.Equal(b) })
	RegisterBinary[time.Time, time.Time](reg, OperatorNe, func(a, b time.Time) bool { return !a.Equal(b) })
	RegisterBinary[time.Time, time.Time](reg, OperatorGt, func(a, b time.Time) bool { return a.After(b) })
	RegisterBinary[time.Time, time.Time](reg, OperatorGte, func(a, b time.Time) bool { return !a.Before(b) })
	RegisterBinary[time.Time, time.Time](reg, OperatorLt, func(a, b time.Time) bool { return a.Before(b) })
	RegisterBinary[time.Time, time.Time](reg, OperatorLte, func(a, b time.Time) bool { return !a.After(b) })

	return reg
}
