// Package optional provides a tri-state field for partial updates: a value can be
// absent (not submitted), explicitly null, or set.
package optional

import (
	"bytes"
	"encoding/json"
)

// Field is one patchable value. The zero Field is absent; encoding/json leaves absent
// fields untouched on decode and `omitzero` drops them on encode.
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

// Of returns a field set to v.
func Of[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

// Null returns a field explicitly cleared.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// FromPtr maps nil to an explicit null and anything else to a set value.
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Null[T]()
	}
	return Of(*p)
}

// IsSet reports whether the field was submitted, including as null.
func (f Field[T]) IsSet() bool { return f.set }

// IsNull reports whether the field was submitted as null.
func (f Field[T]) IsNull() bool { return f.set && f.null }

// IsZero lets `omitzero` skip absent fields.
func (f Field[T]) IsZero() bool { return !f.set }

// Get returns the value and whether it holds a non-null value.
func (f Field[T]) Get() (T, bool) {
	if !f.set || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Ptr returns nil for absent or null fields.
func (f Field[T]) Ptr() *T {
	v, ok := f.Get()
	if !ok {
		return nil
	}
	return &v
}

// Apply overwrites *dst when the field was submitted.
func (f Field[T]) Apply(dst **T) {
	if !f.set {
		return
	}
	*dst = f.Ptr()
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}
