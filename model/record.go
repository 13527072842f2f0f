package model

import (
	"encoding/json"
	"fmt"
)

// recordKeys are the columns Record keeps outside Data.
var recordKeys = map[string]struct{}{
	"id":             {},
	"created":        {},
	"updated":        {},
	"collectionId":   {},
	"collectionName": {},
	"expand":         {},
}

// Record is a collection row. Columns other than the base fields live in
// Data and are merged back into the top-level object when marshaled.
type Record struct {
	BaseModel
	CollectionID   string
	CollectionName string
	Data           map[string]any
	Expand         map[string]ExpandValue
}

// NewRecord returns an empty record with Data initialized.
func NewRecord() *Record {
	return &Record{Data: make(map[string]any)}
}

// MarshalJSON writes Data first and the base fields over it, so a stray
// "id" in Data can never override the record's own.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Data)+len(recordKeys))
	for k, v := range r.Data {
		out[k] = v
	}
	out["id"] = r.ID
	out["created"] = r.Created
	out["updated"] = r.Updated
	out["collectionId"] = r.CollectionID
	out["collectionName"] = r.CollectionName
	if len(r.Expand) > 0 {
		out["expand"] = r.Expand
	} else {
		delete(out, "expand")
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the base fields out and keeps everything else in Data.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{Data: make(map[string]any, len(raw))}
	targets := map[string]*string{
		"id":             &r.ID,
		"created":        &r.Created,
		"updated":        &r.Updated,
		"collectionId":   &r.CollectionID,
		"collectionName": &r.CollectionName,
	}

	for key, value := range raw {
		if dst, ok := targets[key]; ok {
			if err := json.Unmarshal(value, dst); err != nil {
				return fmt.Errorf("record field %q: %w", key, err)
			}
			continue
		}
		if key == "expand" {
			if string(value) == "null" {
				continue
			}
			if err := json.Unmarshal(value, &r.Expand); err != nil {
				return fmt.Errorf("record expand: %w", err)
			}
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("record field %q: %w", key, err)
		}
		r.Data[key] = v
	}
	return nil
}

// Get returns a dynamic column.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.Data[key]
	return v, ok
}

// Set stores a dynamic column. Base field names set here are overwritten
// by the struct fields on marshal.
func (r *Record) Set(key string, value any) {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
}

// GetString returns a string column or "".
func (r *Record) GetString(key string) string {
	s, _ := r.Data[key].(string)
	return s
}

// GetFloat returns a numeric column or 0. JSON numbers decode as float64.
func (r *Record) GetFloat(key string) float64 {
	f, _ := r.Data[key].(float64)
	return f
}

// GetBool returns a boolean column or false.
func (r *Record) GetBool(key string) bool {
	b, _ := r.Data[key].(bool)
	return b
}

// GetStrings returns a multi-value column (relations, selects, files).
func (r *Record) GetStrings(key string) []string {
	switch v := r.Data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Decode converts Data into a typed struct through its JSON tags.
func (r *Record) Decode(v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ExpandedOne returns the single record expanded under key, if any.
func (r *Record) ExpandedOne(key string) *Record {
	ev, ok := r.Expand[key]
	if !ok {
		return nil
	}
	return ev.Single
}

// ExpandedAll returns the records expanded under key. A single expansion
// is returned as a one-element slice.
func (r *Record) ExpandedAll(key string) []*Record {
	ev, ok := r.Expand[key]
	if !ok {
		return nil
	}
	if ev.Single != nil {
		return []*Record{ev.Single}
	}
	return ev.List
}
