package domain

import (
	"bytes"
	"encoding/json"
)

// Optional carries an upstream dataset that may be absent. An absent value is
// distinct from a present empty one and encodes to JSON null.
type Optional[T any] struct {
	value   T
	present bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.present {
		return fallback
	}
	return o.value
}

// MarshalJSON encodes the value, or null when absent.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
