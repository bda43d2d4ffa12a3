package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Optional is a patch field. Set is false when the field was absent from the
// request; Null is true when it was present as JSON null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a set, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a set Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// SQLValue returns nil for null and the value otherwise.
func (o Optional[T]) SQLValue() any {
	if o.Null {
		return nil
	}
	return o.Value
}

// textValue is SQLValue for nullable text columns: blank text is stored as
// NULL, the same as on create.
func textValue(o Optional[string]) any {
	if o.Null || strings.TrimSpace(o.Value) == "" {
		return nil
	}
	return o.Value
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
