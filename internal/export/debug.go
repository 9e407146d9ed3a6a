package export

import (
	"encoding/json"
	"io"

	"github.com/joseph-ayodele/labresults-extractor/constants"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/spatial"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// DebugToken is one token of the debug report.
type DebugToken struct {
	UniqueKey   string               `json:"unique_key"`
	PageID      string               `json:"page_id"`
	Text        string               `json:"text"`
	Confidence  float64              `json:"confidence"`
	Box         entity.BoundingBox   `json:"box"`
	Class       constants.TokenClass `json:"class"`
	NumberScore float64              `json:"number_score"`
	Value       string               `json:"value,omitempty"`
	Candidates  []entity.FieldMatch  `json:"candidates,omitempty"`
	Assignment  string               `json:"assignment,omitempty"`
}

// DebugReport is the annotated view of a run used to inspect pairing decisions.
type DebugReport struct {
	RunID       string              `json:"run_id"`
	Tokens      []DebugToken        `json:"tokens"`
	Assignments []entity.Assignment `json:"assignments"`
	PageErrors  []entity.PageError  `json:"page_errors,omitempty"`
}

// BuildDebugReport classifies every token for drawing.
func BuildDebugReport(runID string, tokens []entity.Token, assignments []entity.Assignment, pageErrors []entity.PageError, valueThreshold float64) DebugReport {
	rep := DebugReport{RunID: runID, Tokens: make([]DebugToken, len(tokens)), Assignments: assignments, PageErrors: pageErrors}
	if rep.Assignments == nil {
		rep.Assignments = []entity.Assignment{}
	}
	for i, t := range tokens {
		rep.Tokens[i] = DebugToken{
			UniqueKey:   t.UniqueKey,
			PageID:      t.PageID,
			Text:        t.Text,
			Confidence:  t.Confidence,
			Box:         t.Box,
			Class:       spatial.Classify(t, valueThreshold),
			NumberScore: t.NumberScore,
			Value:       t.Value,
			Candidates:  t.Candidates,
			Assignment:  t.Assignment,
		}
	}
	return rep
}

// WriteDebugReport writes the report as indented JSON.
func WriteDebugReport(w io.Writer, rep DebugReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
