package option

import "fmt"

// Option is a nullable value. Query state such as page, per-page, limit and
// offset marker is unset until the caller assigns it.
type Option[T any] struct {
	val   T
	valid bool
}

func Some[T any](val T) Option[T] {
	return Option[T]{val: val, valid: true}
}

func Nothing[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) IsSome() bool {
	return o.valid
}

func (o Option[T]) IsNothing() bool {
	return !o.valid
}

// Get returns the value and whether it is set.
func (o Option[T]) Get() (T, bool) {
	return o.val, o.valid
}

// Unwrap panics if the Option is Nothing.
func (o Option[T]) Unwrap() T {
	if !o.valid {
		panic("called Unwrap on a Nothing Option")
	}
	return o.val
}

func (o Option[T]) UnwrapOr(def T) T {
	if o.valid {
		return o.val
	}
	return def
}

func (o Option[T]) String() string {
	if o.valid {
		return fmt.Sprintf("Some(%v)", o.val)
	}
	return "Nothing"
}
