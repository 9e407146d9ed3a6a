package record

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Record is one assembled result row. The zero value is not usable.
type Record struct {
	schema *Schema
	cells  []any
}

func newRecord(s *Schema) Record {
	cells := make([]any, len(s.columns))
	for i, c := range s.columns {
		cells[i] = c.Default
	}
	return Record{schema: s, cells: cells}
}

// Schema returns the layout the record was built from.
func (r Record) Schema() *Schema { return r.schema }

// Header returns the column names in order.
func (r Record) Header() []string { return r.schema.Header() }

// Values returns a copy of the cells in column order; nil means null.
func (r Record) Values() []any { return append([]any(nil), r.cells...) }

// Get returns one cell by column name.
func (r Record) Get(name string) (any, bool) {
	i, ok := r.schema.index[name]
	if !ok {
		return nil, false
	}
	return r.cells[i], true
}

// Strings renders every cell for tabular output; null becomes "".
func (r Record) Strings() []string {
	out := make([]string, len(r.cells))
	for i, v := range r.cells {
		out[i] = FormatCell(v)
	}
	return out
}

// Map returns the record as a column name to cell map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.cells))
	for i, c := range r.schema.columns {
		m[c.Name] = r.cells[i]
	}
	return m
}

// MarshalJSON writes the cells as an object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.schema.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.cells[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatCell renders a cell value as text.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
