package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// =============================================================================
// OPAQUE PROVIDER DOCUMENTS
// =============================================================================
//
// Some assessment fields (trajectories, resume analysis, radar threats,
// positioning) have a provider-defined shape. They are kept as a generic JSON
// tree: the only boundary check is that the payload is well-formed JSON.
// Values inside are the encoding/json decode types:
//   - map[string]interface{}
//   - []interface{}
//   - string, float64, bool, nil

// Document is an opaque JSON value.
type Document struct {
	v interface{}
}

// NewDocument wraps an already-decoded JSON value.
func NewDocument(v interface{}) Document {
	return Document{v: v}
}

// IsZero reports whether the document holds nothing.
func (d Document) IsZero() bool {
	return d.v == nil
}

// Value returns the underlying decoded value.
func (d Document) Value() interface{} {
	return d.v
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.v = nil
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	d.v = v
	return nil
}

// Get walks object keys and array indexes ("0", "1", ...) and returns the
// value found, or a zero Document when the path does not exist.
func (d Document) Get(path ...string) Document {
	cur := d.v
	for _, key := range path {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[key]
			if !ok {
				return Document{}
			}
			cur = next
		case []interface{}:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return Document{}
			}
			cur = node[idx]
		default:
			return Document{}
		}
	}
	return Document{v: cur}
}

// Len returns the number of elements of an array or object, 0 otherwise.
func (d Document) Len() int {
	switch node := d.v.(type) {
	case map[string]interface{}:
		return len(node)
	case []interface{}:
		return len(node)
	default:
		return 0
	}
}

// String renders scalars as text. Objects and arrays render as compact JSON.
func (d Document) String() string {
	switch v := d.v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// Float extracts a number, accepting numeric strings.
func (d Document) Float() (float64, bool) {
	switch v := d.v.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
