package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawRow is an ordered sequence of cell text values as captured from the
// table. No column count is assumed; rows from different table variants
// may legitimately differ in width.
type RawRow []string

// PageCapture is the raw material extracted from a single rendered page of
// the table: the header cells (empty on pages without a visible header),
// the data rows, and the pager widget label if one was found.
type PageCapture struct {
	Header     []string
	Rows       []RawRow
	PagerLabel string
}

// Schema is the fixed, ordered field set every Record carries. It is
// established once per run and shared by all records so that JSON and CSV
// output keep a stable field order across runs.
type Schema struct {
	Fields []string
}

// NewSchema copies the field list so callers cannot mutate it later.
func NewSchema(fields []string) *Schema {
	s := &Schema{Fields: make([]string, len(fields))}
	copy(s.Fields, fields)
	return s
}

// Index returns the position of a field, or -1 if the schema lacks it.
func (s *Schema) Index(name string) int {
	for i, f := range s.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Record is one normalized output unit: every field of its schema is
// present, in schema order, with "" as the explicit empty sentinel for
// anything the source row did not provide.
type Record struct {
	schema *Schema
	values map[string]any
}

// NewRecord creates a Record with every schema field set to the empty
// sentinel.
func NewRecord(schema *Schema) *Record {
	values := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		values[f] = ""
	}
	return &Record{schema: schema, values: values}
}

// Set assigns a field value. Values for fields outside the schema are
// dropped and Set reports false.
func (r *Record) Set(field string, value any) bool {
	if r.schema.Index(field) < 0 {
		return false
	}
	r.values[field] = value
	return true
}

// Get returns the field value, or "" for unknown fields.
func (r *Record) Get(field string) any {
	v, ok := r.values[field]
	if !ok {
		return ""
	}
	return v
}

// GetString renders the field value as a string (used by the CSV writer).
func (r *Record) GetString(field string) string {
	switch v := r.Get(field).(type) {
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Schema returns the schema this record was built against.
func (r *Record) Schema() *Schema {
	return r.schema
}

// MarshalJSON emits the record as a JSON object preserving schema field
// order. encoding/json map marshalling would sort keys alphabetically,
// which breaks the stable-order contract.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.schema.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[f])
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
