package record

// Opt is a value that may be absent. The zero Opt is absent.
type Opt[T any] struct {
	value T
	valid bool
}

// Some wraps a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, valid: true}
}

// Absent returns an empty Opt.
func Absent[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.valid
}

// Or returns the value, or def when absent.
func (o Opt[T]) Or(def T) T {
	if o.valid {
		return o.value
	}
	return def
}
