// Package opt provides a present-or-absent wrapper for partial updates.
package opt

import "encoding/json"

// Value holds an optional field of a patch. Set is true when the field was
// supplied, even if its value equals the zero value or the stored value.
// Use Value[*T] for fields that may be cleared with an explicit null.
type Value[T any] struct {
	Set bool
	V   T
}

// Of returns a supplied value.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, V: v}
}

// Get returns the value and whether it was supplied.
func (v Value[T]) Get() (T, bool) {
	return v.V, v.Set
}

// UnmarshalJSON marks the value as supplied. It is only called when the key
// is present in the JSON object.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &v.V); err != nil {
		return err
	}
	v.Set = true
	return nil
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.Set {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}
