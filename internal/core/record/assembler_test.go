package record

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/labresults-extractor/constants"
	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

func TestDefaultSchemaKinds(t *testing.T) {
	s := DefaultSchema()
	tests := []struct {
		name   string
		kind   ColumnKind
		field  string
		suffix string
	}{
		{name: "Date", kind: KindMeta},
		{name: "AST", kind: KindValue, field: "AST"},
		{name: "FASTING_GLUCOSE_RangeLow", kind: KindRange, field: "FASTING_GLUCOSE", suffix: "RangeLow"},
		{name: "IRON_FemaleRangeHigh", kind: KindRange, field: "IRON", suffix: "FemaleRangeHigh"},
		{name: "Vitamin_D", kind: KindValue, field: "Vitamin_D"},
	}
	for _, tt := range tests {
		c, ok := s.Column(tt.name)
		if !ok {
			t.Fatalf("Column(%q) missing", tt.name)
		}
		if c.Kind != tt.kind || c.Field != tt.field || c.Suffix != tt.suffix {
			t.Fatalf("Column(%q) = %+v, want kind=%s field=%s suffix=%s", tt.name, c, tt.kind, tt.field, tt.suffix)
		}
	}
	if got := s.Header()[0]; got != "Date" {
		t.Fatalf("Header()[0] = %q", got)
	}
}

func TestNewSchemaRequiresValueColumns(t *testing.T) {
	_, err := NewSchema([]constants.RowColumn{{Name: "AST"}}, []string{"AST", "ALT"})
	if !errors.Is(err, common.ErrUnknownField) {
		t.Fatalf("NewSchema() error = %v, want ErrUnknownField", err)
	}
	_, err = NewSchema([]constants.RowColumn{{Name: "AST"}, {Name: "AST"}}, []string{"AST"})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("NewSchema() error = %v, want ErrInvalidInput", err)
	}
}

func TestAssembleFillsOnlyValueColumns(t *testing.T) {
	s := DefaultSchema()
	rec, err := NewAssembler(nil).Assemble(s, []entity.Assignment{
		{Field: "AST", Value: "30"},
		{Field: "IRON", Value: "88"},
	}, nil)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if v, _ := rec.Get("AST"); v != "30" {
		t.Fatalf("AST = %v, want 30", v)
	}
	if v, _ := rec.Get("ALT"); v != nil {
		t.Fatalf("ALT = %v, want nil", v)
	}

	for _, c := range s.Columns() {
		if c.Kind != KindRange {
			continue
		}
		v, _ := rec.Get(c.Name)
		if v != c.Default {
			t.Fatalf("range %s = %v, want default %v", c.Name, v, c.Default)
		}
	}
	if v, _ := rec.Get("IRON_MaleRangeLow"); v != 50.0 {
		t.Fatalf("IRON_MaleRangeLow = %v, want 50", v)
	}
}

func TestAssembleRejectsRangeAssignment(t *testing.T) {
	_, err := NewAssembler(nil).Assemble(DefaultSchema(), []entity.Assignment{{Field: "AST_RangeLow", Value: "1"}}, nil)
	if !errors.Is(err, common.ErrUnknownField) {
		t.Fatalf("Assemble() error = %v, want ErrUnknownField", err)
	}
}

func TestAssembleOverrides(t *testing.T) {
	s := DefaultSchema()
	ov := &entity.Overrides{
		Values: map[string]string{"Date": "2024-03-01", "AST": "31"},
		Ranges: map[string]map[string]float64{"AST": {"RangeHigh": 40}},
	}
	rec, err := NewAssembler(nil).Assemble(s, []entity.Assignment{{Field: "AST", Value: "30"}, {Field: "ALT", Value: "12"}}, ov)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	checks := map[string]any{"Date": "2024-03-01", "AST": "31", "ALT": "12", "AST_RangeHigh": 40.0, "AST_RangeLow": 8.0}
	for name, want := range checks {
		if got, _ := rec.Get(name); got != want {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestValidateOverrides(t *testing.T) {
	s := DefaultSchema()
	tests := []struct {
		name string
		ov   *entity.Overrides
		want error
	}{
		{name: "nil", ov: nil},
		{name: "unknown value", ov: &entity.Overrides{Values: map[string]string{"LDL": "1"}}, want: common.ErrUnknownField},
		{name: "range via values", ov: &entity.Overrides{Values: map[string]string{"AST_RangeLow": "1"}}, want: common.ErrUnknownField},
		{name: "unknown range field", ov: &entity.Overrides{Ranges: map[string]map[string]float64{"LDL": {"RangeLow": 1}}}, want: common.ErrUnknownField},
		{name: "unknown range key", ov: &entity.Overrides{Ranges: map[string]map[string]float64{"AST": {"RangeMid": 1}}}, want: common.ErrUnknownRangeKey},
		{name: "iron female", ov: &entity.Overrides{Ranges: map[string]map[string]float64{"IRON": {"FemaleRangeLow": 30}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOverrides(s, tt.ov)
			if tt.want == nil && err != nil {
				t.Fatalf("ValidateOverrides() error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("ValidateOverrides() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecordJSONKeepsColumnOrder(t *testing.T) {
	s := DefaultSchema()
	rec, err := NewAssembler(nil).Assemble(s, []entity.Assignment{{Field: "AST", Value: "30"}}, nil)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.HasPrefix(string(b), `{"Date":null,"Intervention":null,"AST":"30","AST_RangeLow":8,"AST_RangeHigh":33,`) {
		t.Fatalf("json = %s", b)
	}
	if err := common.ValidateJSONAgainstSchema(s.JSONSchema(), b); err != nil {
		t.Fatalf("ValidateJSONAgainstSchema() error = %v", err)
	}
	if got := rec.Strings()[2:5]; got[0] != "30" || got[1] != "8" || got[2] != "33" {
		t.Fatalf("Strings() = %v", got)
	}
}

func TestSchemaForCustomFields(t *testing.T) {
	s, err := SchemaFor([]string{"AST", "LDL"})
	if err != nil {
		t.Fatalf("SchemaFor() error = %v", err)
	}
	c, ok := s.Column("LDL")
	if !ok || c.Kind != KindValue {
		t.Fatalf("LDL column = %+v, %v", c, ok)
	}
	h := s.Header()
	if h[len(h)-1] != "LDL" {
		t.Fatalf("LDL not appended: %v", h)
	}
	if c, _ := s.Column("ALT"); c.Kind != KindMeta {
		t.Fatalf("ALT outside the vocabulary should be meta, got %s", c.Kind)
	}
}
