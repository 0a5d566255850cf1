package signals

import (
	"reflect"

	"github.com/hashicorp/go-multierror"
)

type disposable func()

func (d disposable) Dispose() {
	d()
}

type entry[E any] struct {
	id       any
	observer Observer[E]
}

type SignalImp[E any] struct {
	observers []entry[E]
}

func NewSignal[E any]() *SignalImp[E] {
	return &SignalImp[E]{}
}

func (s *SignalImp[E]) Attach(observer Observer[E], observerID ...any) Disposable {
	id := resolveID(observer, observerID)
	detach := disposable(func() { s.Detach(observer, id) })
	for _, e := range s.observers {
		if e.id == id {
			return detach
		}
	}
	s.observers = append(s.observers, entry[E]{id: id, observer: observer})
	return detach
}

func (s *SignalImp[E]) Detach(observer Observer[E], observerID ...any) {
	id := resolveID(observer, observerID)
	for i, e := range s.observers {
		if e.id == id {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify calls every observer, even after a failure, and returns the
// combined errors.
func (s *SignalImp[E]) Notify(event E) error {
	var result *multierror.Error
	for _, e := range s.observers {
		if err := e.observer(event); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func resolveID[E any](observer Observer[E], observerID []any) any {
	if len(observerID) > 0 {
		return observerID[0]
	}
	return reflect.ValueOf(observer).Pointer()
}
