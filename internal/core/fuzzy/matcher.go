// Package fuzzy locates field names among OCR tokens with approximate string matching.
package fuzzy

import (
	"log/slog"
	"math"
	"sort"

	"github.com/agext/levenshtein"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Config holds matcher thresholds.
type Config struct {
	// SearchThreshold is the highest edit-error ratio that still counts as a hit.
	SearchThreshold float64
	// Distance scales the penalty for token characters outside the matched window.
	Distance int
	// AcceptThreshold is the highest final score kept as a candidate.
	AcceptThreshold float64
	// MinSubstring is the pattern length below which the whole token must match.
	MinSubstring int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{SearchThreshold: 0.4, Distance: 100, AcceptThreshold: 0.3, MinSubstring: 3}
}

// TokenMatch is one token matched to a field.
type TokenMatch struct {
	UniqueKey string  `json:"unique_key"`
	Score     float64 `json:"score"`
}

// Matcher finds candidate field names for tokens.
type Matcher struct {
	cfg    Config
	logger *slog.Logger
}

// NewMatcher creates a matcher.
func NewMatcher(cfg Config, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Distance <= 0 {
		cfg.Distance = DefaultConfig().Distance
	}
	return &Matcher{cfg: cfg, logger: logger}
}

// Match searches every token for every field. The canonical name is tried first;
// synonyms are tried in order only when it has no accepted hit, stopping at the
// first synonym that has one. It returns annotated copies of tokens and, per
// field, the matching tokens ordered best first. Running it again on its own
// output yields the same candidates.
func (m *Matcher) Match(tokens []entity.Token, defs []entity.FieldDefinition) ([]entity.Token, map[string][]TokenMatch) {
	out := entity.CloneTokens(tokens)
	texts := make([][]rune, len(out))
	for i := range out {
		texts[i] = []rune(Normalize(out[i].Text))
	}

	matches := make(map[string][]TokenMatch)
	for _, def := range defs {
		hits := m.searchField(def, texts)
		if len(hits) == 0 {
			continue
		}
		list := make([]TokenMatch, 0, len(hits))
		for idx, score := range hits {
			out[idx].Candidates = mergeCandidate(out[idx].Candidates, entity.FieldMatch{Field: def.Field, Score: score})
			list = append(list, TokenMatch{UniqueKey: out[idx].UniqueKey, Score: score})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Score != list[j].Score {
				return list[i].Score < list[j].Score
			}
			return list[i].UniqueKey < list[j].UniqueKey
		})
		matches[def.Field] = list
	}

	m.logger.Debug("matched field names", "tokens", len(out), "fields_found", len(matches))
	return out, matches
}

func (m *Matcher) searchField(def entity.FieldDefinition, texts [][]rune) map[int]float64 {
	seen := make(map[string]struct{}, len(def.Synonyms)+1)
	patterns := append([]string{def.Field}, def.Synonyms...)
	for _, p := range patterns {
		norm := Normalize(p)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}

		pattern := []rune(norm)
		hits := make(map[int]float64)
		for i, text := range texts {
			if score, ok := m.score(pattern, text); ok {
				hits[i] = score
			}
		}
		if len(hits) > 0 {
			return hits
		}
	}
	return nil
}

// score returns the match quality of pattern inside text, 0 being exact.
func (m *Matcher) score(pattern, text []rune) (float64, bool) {
	pl := len(pattern)
	if pl == 0 || len(text) == 0 {
		return 0, false
	}

	errs, matched := -1, 0
	if pl >= m.cfg.MinSubstring {
		slack := int(math.Floor(float64(pl) * m.cfg.SearchThreshold))
		for start := 0; start < len(text); start++ {
			for l := pl - slack; l <= pl+slack; l++ {
				if l <= 0 || start+l > len(text) {
					continue
				}
				d := levenshtein.Distance(string(pattern), string(text[start:start+l]), nil)
				if errs < 0 || d < errs || (d == errs && l > matched) {
					errs, matched = d, l
				}
			}
		}
	}
	if errs < 0 {
		errs = levenshtein.Distance(string(pattern), string(text), nil)
		matched = len(text)
	}

	ratio := float64(errs) / float64(pl)
	if ratio > m.cfg.SearchThreshold {
		return 0, false
	}
	score := ratio + float64(len(text)-matched)/float64(m.cfg.Distance)
	if score > 1 {
		score = 1
	}
	if score > m.cfg.AcceptThreshold {
		return 0, false
	}
	return score, true
}

func mergeCandidate(existing []entity.FieldMatch, c entity.FieldMatch) []entity.FieldMatch {
	merged := false
	out := make([]entity.FieldMatch, 0, len(existing)+1)
	for _, e := range existing {
		if e.Field == c.Field {
			if c.Score < e.Score {
				e.Score = c.Score
			}
			merged = true
		}
		out = append(out, e)
	}
	if !merged {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Field < out[j].Field
	})
	return out
}
