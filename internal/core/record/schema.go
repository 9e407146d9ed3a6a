// Package record turns committed assignments into one ordered result row.
package record

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/labresults-extractor/constants"
	"github.com/joseph-ayodele/labresults-extractor/internal/common"
)

// ColumnKind tells the assembler which cells resolution may write.
type ColumnKind int

const (
	// KindMeta columns (Date, Intervention) are only set through overrides.
	KindMeta ColumnKind = iota
	// KindValue columns hold a field's measured value.
	KindValue
	// KindRange columns hold reference range bounds and are never touched by resolution.
	KindRange
)

func (k ColumnKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindRange:
		return "range"
	default:
		return "meta"
	}
}

// Column is one cell position of the row.
type Column struct {
	Name    string
	Field   string
	Suffix  string
	Kind    ColumnKind
	Default any
}

// Schema is an immutable, ordered row template.
type Schema struct {
	columns []Column
	index   map[string]int
}

// NewSchema builds a schema from a row template. Every field must have a value
// column; range columns are recognised as "<FIELD>_<...Range...>".
func NewSchema(template []constants.RowColumn, fields []string) (*Schema, error) {
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f] = struct{}{}
	}

	s := &Schema{index: make(map[string]int, len(template))}
	for _, rc := range template {
		if rc.Name == "" {
			return nil, common.NewAppError("SCHEMA_ERROR", "column with empty name", common.ErrInvalidInput)
		}
		if _, dup := s.index[rc.Name]; dup {
			return nil, common.NewAppError("SCHEMA_ERROR", fmt.Sprintf("duplicate column %q", rc.Name), common.ErrInvalidInput)
		}
		col := Column{Name: rc.Name, Kind: KindMeta}
		if rc.Default != nil {
			col.Default = *rc.Default
		}
		if _, ok := known[rc.Name]; ok {
			col.Kind, col.Field = KindValue, rc.Name
		} else if field, suffix, ok := splitRange(rc.Name, fields); ok {
			col.Kind, col.Field, col.Suffix = KindRange, field, suffix
		}
		s.index[rc.Name] = len(s.columns)
		s.columns = append(s.columns, col)
	}

	for _, f := range fields {
		if _, ok := s.index[f]; !ok {
			return nil, common.NewAppError("SCHEMA_ERROR", fmt.Sprintf("field %q has no column", f), common.ErrUnknownField)
		}
	}
	return s, nil
}

// DefaultSchema is the built-in row layout over the built-in vocabulary.
func DefaultSchema() *Schema {
	s, err := NewSchema(constants.DefaultRowFormat, constants.FieldNames())
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaFor extends the built-in layout with a null value column for each
// field it does not already carry, so custom vocabularies stay exportable.
func SchemaFor(fields []string) (*Schema, error) {
	template := append([]constants.RowColumn(nil), constants.DefaultRowFormat...)
	have := make(map[string]struct{}, len(template))
	for _, c := range template {
		have[c.Name] = struct{}{}
	}
	for _, f := range fields {
		if _, ok := have[f]; !ok {
			template = append(template, constants.RowColumn{Name: f})
			have[f] = struct{}{}
		}
	}
	return NewSchema(template, fields)
}

// splitRange matches the longest field prefix so FASTING_GLUCOSE_RangeLow is not read as FASTING.
func splitRange(name string, fields []string) (string, string, bool) {
	best := ""
	for _, f := range fields {
		if strings.HasPrefix(name, f+"_") && len(f) > len(best) {
			suffix := name[len(f)+1:]
			if strings.Contains(suffix, "Range") {
				best = f
			}
		}
	}
	if best == "" {
		return "", "", false
	}
	return best, name[len(best)+1:], true
}

// Columns returns a copy of the columns in order.
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Header returns the column names in order.
func (s *Schema) Header() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (s *Schema) Column(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// JSONSchema describes an exported record: values are strings or null, ranges numbers.
func (s *Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.columns))
	for _, c := range s.columns {
		switch c.Kind {
		case KindRange:
			props[c.Name] = map[string]any{"type": []string{"number", "null"}}
		default:
			props[c.Name] = map[string]any{"type": []string{"string", "number", "null"}}
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             s.Header(),
	}
}
