package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MissingValue is rendered for a field a row does not carry.
const MissingValue = ""

// Row is an ordered mapping of field name to value. Field order follows
// insertion order so table text renders and JSON marshals deterministically.
type Row struct {
	keys   []string
	values map[string]string
}

func NewRow() Row {
	return Row{values: map[string]string{}}
}

// RowFromPairs builds a row from alternating field/value arguments.
func RowFromPairs(pairs ...string) Row {
	r := NewRow()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

func (r *Row) Set(field, value string) {
	if r.values == nil {
		r.values = map[string]string{}
	}
	if _, ok := r.values[field]; !ok {
		r.keys = append(r.keys, field)
	}
	r.values[field] = value
}

// Get returns the value for field, or MissingValue if the row lacks it.
func (r Row) Get(field string) string {
	v, ok := r.values[field]
	if !ok {
		return MissingValue
	}
	return v
}

func (r Row) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Fields returns the field names in insertion order.
func (r Row) Fields() []string {
	return r.keys
}

func (r Row) Len() int {
	return len(r.keys)
}

// MarshalJSON renders the row as a JSON object in field order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rebuilds the row keeping the object's field order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected JSON object, got %v", tok)
	}
	*r = NewRow()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row: expected string key, got %v", keyTok)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		r.Set(key, val)
	}
	_, err = dec.Token()
	return err
}

// Equal reports whether two rows have the same fields, order and values.
func (r Row) Equal(other Row) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k || r.values[k] != other.values[k] {
			return false
		}
	}
	return true
}
