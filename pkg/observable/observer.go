package observable

// Observer receives value callbacks from a Value. Observers are tracked by
// identity, so implementations must be comparable; pointer receivers are the
// usual choice.
type Observer[T any] interface {
	// OnChanged is invoked with the current value, at most once per version.
	OnChanged(value T)
}

// FuncObserver wraps f as an Observer. Each call produces a distinct
// observer identity; keep the returned value to remove the observer later.
func FuncObserver[T any](f func(value T)) Observer[T] {
	return &funcObserver[T]{f: f}
}

type funcObserver[T any] struct {
	f func(value T)
}

func (o *funcObserver[T]) OnChanged(value T) {
	o.f(value)
}
