package entity

// BoundingBox is an axis-aligned pixel rectangle on a page.
type BoundingBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the geometric center of the box.
func (b BoundingBox) Center() (float64, float64) {
	return float64(b.Left) + float64(b.Width)/2, float64(b.Top) + float64(b.Height)/2
}

// Word is a single recognized word as reported by the OCR engine.
type Word struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
	Block      int         `json:"block"`
	Paragraph  int         `json:"paragraph"`
	Line       int         `json:"line"`
	Index      int         `json:"index"`
}

// FieldMatch is one candidate field for a token, lower score is better.
type FieldMatch struct {
	Field string  `json:"field"`
	Score float64 `json:"score"`
}

// Token is a recognized word plus every annotation added while processing a run.
// Pipeline stages never mutate a Token in place; they return annotated copies.
type Token struct {
	Word
	PageID    string `json:"page_id"`
	UniqueKey string `json:"unique_key"`

	NumberScore  float64            `json:"number_score"`
	Corrected    string             `json:"corrected,omitempty"`
	Value        string             `json:"value,omitempty"`
	Candidates   []FieldMatch       `json:"candidates,omitempty"`
	MatchWeights map[string]float64 `json:"match_weights,omitempty"`
	Assignment   string             `json:"assignment,omitempty"`
}

// Clone returns a deep copy of the token.
func (t Token) Clone() Token {
	out := t
	if t.Candidates != nil {
		out.Candidates = append([]FieldMatch(nil), t.Candidates...)
	}
	if t.MatchWeights != nil {
		out.MatchWeights = make(map[string]float64, len(t.MatchWeights))
		for k, v := range t.MatchWeights {
			out.MatchWeights[k] = v
		}
	}
	return out
}

// IsKey reports whether the token matched at least one field name.
func (t Token) IsKey() bool { return len(t.Candidates) > 0 }

// HasCandidate reports whether field is among the token's candidates.
func (t Token) HasCandidate(field string) bool {
	for _, c := range t.Candidates {
		if c.Field == field {
			return true
		}
	}
	return false
}

// CloneTokens deep-copies a token slice.
func CloneTokens(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		out[i] = t.Clone()
	}
	return out
}
