package operators

// Value objects may implement these to take part in in-memory evaluation.

type EqualOperand interface {
	Equal(EqualOperand) bool
}

type GreaterThanOperand interface {
	GreaterThan(GreaterThanOperand) bool
}

type GreaterThanEqualOperand interface {
	GreaterThanEqual(GreaterThanEqualOperand) bool
}

type LessThanOperand interface {
	LessThan(LessThanOperand) bool
}

type LessThanEqualOperand interface {
	LessThanEqual(LessThanEqualOperand) bool
}
