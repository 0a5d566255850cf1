package signals

type Observer[E any] func(E) error

// Disposable detaches an observer when disposed.
type Disposable interface {
	Dispose()
}

type Signal[E any] interface {
	Attach(observer Observer[E], observerID ...any) Disposable
	Detach(observer Observer[E], observerID ...any)
	Notify(event E) error
}
