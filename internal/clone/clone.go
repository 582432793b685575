// Package clone produces independent deep copies of arbitrary Go values.
//
// Copies are made by github.com/huandu/go-clone, which also reaches
// unexported struct fields. Shared pointers inside one value stay shared
// inside the copy, which also keeps cyclic structures finite.
//
// Channels, functions and unsafe pointers cannot be duplicated into an
// independent value, exported or not; Check reports them with ErrUnsupported.
package clone

import (
	"errors"
	"fmt"
	"reflect"

	goclone "github.com/huandu/go-clone/generic"
)

// ErrUnsupported indicates a value reaches a type with no independent copy.
var ErrUnsupported = errors.New("clone: type cannot be duplicated")

// Value returns a deep copy of value.
func Value[T any](value T) T {
	return goclone.Slowly(value)
}

// Check walks value and reports the first type that cannot be duplicated.
// Unexported fields are inspected as well since Value copies them too.
func Check(value any) error {
	w := walker{
		types:    map[reflect.Type]struct{}{},
		pointers: map[pointerKey]struct{}{},
	}
	return w.value(reflect.ValueOf(value))
}

type pointerKey struct {
	typ reflect.Type
	ptr uintptr
}

type walker struct {
	types    map[reflect.Type]struct{}
	pointers map[pointerKey]struct{}
}

func (w walker) value(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return unsupported(v.Type())
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.value(v.Elem())
	case reflect.Pointer:
		if v.IsNil() {
			return w.typ(v.Type().Elem())
		}
		key := pointerKey{typ: v.Type(), ptr: v.Pointer()}
		if _, ok := w.pointers[key]; ok {
			return nil
		}
		w.pointers[key] = struct{}{}
		return w.value(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := w.value(v.Field(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return w.typ(v.Type().Elem())
		}
		for i := 0; i < v.Len(); i++ {
			if err := w.value(v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if err := w.typ(v.Type().Key()); err != nil {
			return err
		}
		if v.Len() == 0 {
			return w.typ(v.Type().Elem())
		}
		iter := v.MapRange()
		for iter.Next() {
			if err := w.value(iter.Value()); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// typ checks the static shape of t. Interface types are accepted because
// their dynamic content is only known once a value is stored.
func (w walker) typ(t reflect.Type) error {
	if _, ok := w.types[t]; ok {
		return nil
	}
	w.types[t] = struct{}{}

	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return unsupported(t)
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return w.typ(t.Elem())
	case reflect.Map:
		if err := w.typ(t.Key()); err != nil {
			return err
		}
		return w.typ(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := w.typ(t.Field(i).Type); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func unsupported(t reflect.Type) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, t)
}
