package vars

import (
	"fmt"

	"github.com/goliatone/go-variables/internal/clone"
)

// Cloner is implemented by values that know how to duplicate themselves.
// Variable prefers it over reflective copying.
type Cloner[T any] interface {
	Clone() T
}

// Variable holds one value and keeps it until it is replaced. Reading never
// changes it and every read hands out an independent duplicate.
type Variable[T any] struct {
	value T
}

// NewVariable allocates a variable holding a duplicate of initial. It fails
// with ErrDuplicationUnsupported when T (or the value stored in it) reaches a
// channel, function or unsafe pointer.
func NewVariable[T any](initial T) (*Variable[T], error) {
	if _, ok := any(initial).(Cloner[T]); !ok {
		if err := clone.Check(initial); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDuplicationUnsupported, err)
		}
	}
	return &Variable[T]{value: duplicate(initial)}, nil
}

// MustVariable is like NewVariable but panics when T cannot be duplicated.
func MustVariable[T any](initial T) *Variable[T] {
	v, err := NewVariable(initial)
	if err != nil {
		panic(err)
	}
	return v
}

// Set replaces the stored value with a duplicate of other's current value.
// other is left untouched.
func (v *Variable[T]) Set(other *Variable[T]) {
	v.value = other.Get()
}

// Get returns a duplicate of the stored value.
func (v *Variable[T]) Get() T {
	return duplicate(v.value)
}

func duplicate[T any](value T) T {
	if c, ok := any(value).(Cloner[T]); ok {
		return c.Clone()
	}
	return clone.Value(value)
}
