package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ExpandValue is a relation expansion. Exactly one of Single or List is set,
// chosen by the shape the server sent: an object or an array.
type ExpandValue struct {
	Single *Record
	List   []*Record
}

// ExpandSingle wraps one expanded record.
func ExpandSingle(r *Record) ExpandValue { return ExpandValue{Single: r} }

// ExpandList wraps a multi-relation expansion.
func ExpandList(rs ...*Record) ExpandValue {
	if rs == nil {
		rs = []*Record{}
	}
	return ExpandValue{List: rs}
}

// IsList reports whether the expansion came from an array.
func (e ExpandValue) IsList() bool { return e.Single == nil }

// MarshalJSON writes the held variant.
func (e ExpandValue) MarshalJSON() ([]byte, error) {
	if e.Single != nil {
		return json.Marshal(e.Single)
	}
	if e.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.List)
}

// UnmarshalJSON discriminates on the first non-space byte.
func (e *ExpandValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("expand: empty value")
	}
	switch trimmed[0] {
	case '{':
		var r Record
		if err := json.Unmarshal(trimmed, &r); err != nil {
			return err
		}
		*e = ExpandValue{Single: &r}
	case '[':
		var list []*Record
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if list == nil {
			list = []*Record{}
		}
		*e = ExpandValue{List: list}
	default:
		return errors.New("expand: expected object or array")
	}
	return nil
}
