package record

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Assembler writes resolved values into a fresh row.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Assemble starts from the schema defaults, applies overrides, then fills each
// value column that is still at its default from the assignments. Range and
// meta columns are never written by resolution, and an explicit override is
// never replaced.
func (a *Assembler) Assemble(schema *Schema, assignments []entity.Assignment, overrides *entity.Overrides) (Record, error) {
	if err := ValidateOverrides(schema, overrides); err != nil {
		return Record{}, err
	}

	rec := newRecord(schema)
	overridden := make(map[int]struct{})
	if overrides != nil {
		for name, v := range overrides.Values {
			i := schema.index[name]
			rec.cells[i] = v
			overridden[i] = struct{}{}
		}
		for field, ranges := range overrides.Ranges {
			for suffix, v := range ranges {
				rec.cells[schema.index[field+"_"+suffix]] = v
			}
		}
	}

	filled := 0
	for _, as := range assignments {
		i, ok := schema.index[as.Field]
		if !ok || schema.columns[i].Kind != KindValue {
			return Record{}, common.NewAppError("ASSEMBLE_ERROR", fmt.Sprintf("assignment for %q has no value column", as.Field), common.ErrUnknownField)
		}
		if _, ok := overridden[i]; ok {
			a.logger.Debug("keeping override", "field", as.Field, "resolved", as.Value)
			continue
		}
		if rec.cells[i] != schema.columns[i].Default {
			continue
		}
		rec.cells[i] = as.Value
		filled++
	}

	a.logger.Info("assembled record", "assignments", len(assignments), "filled", filled, "overrides", len(overridden))
	return rec, nil
}

// ValidateOverrides checks that every override names an existing column of the right kind.
func ValidateOverrides(schema *Schema, overrides *entity.Overrides) error {
	if overrides == nil {
		return nil
	}
	for name := range overrides.Values {
		c, ok := schema.Column(name)
		if !ok || c.Kind == KindRange {
			return common.NewAppError("OVERRIDE_ERROR", fmt.Sprintf("no value column %q", name), common.ErrUnknownField)
		}
	}
	for field, ranges := range overrides.Ranges {
		if c, ok := schema.Column(field); !ok || c.Kind != KindValue {
			return common.NewAppError("OVERRIDE_ERROR", fmt.Sprintf("no field %q", field), common.ErrUnknownField)
		}
		for suffix := range ranges {
			if c, ok := schema.Column(field + "_" + suffix); !ok || c.Kind != KindRange {
				return common.NewAppError("OVERRIDE_ERROR", fmt.Sprintf("no range %q for %s", suffix, field), common.ErrUnknownRangeKey)
			}
		}
	}
	return nil
}
