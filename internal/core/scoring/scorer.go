// Package scoring estimates how likely an OCR token is to be a numeric lab value.
package scoring

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// reNumber accepts comma-grouped thousands and decimals without a leading digit.
var reNumber = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d*\.?\d+`)

// substitutions maps glyphs tesseract commonly confuses with digits.
var substitutions = map[rune]rune{
	'O': '0', 'o': '0',
	'I': '1', 'l': '1', 'L': '1',
	'S': '5', 's': '5',
	'B': '8',
	'q': '9', 'g': '9',
	'Z': '2', 'z': '2',
	'G': '6',
	'A': '4',
	'T': '7',
}

// Config holds the scorer weights.
type Config struct {
	// ConfidenceCutoff is the engine confidence (0-100) below which glyph substitution is attempted.
	ConfidenceCutoff float64
	// ReplacementWeight is subtracted once per substituted character.
	ReplacementWeight float64
	// RegexWeight scales the penalty for characters outside the numeric match.
	RegexWeight float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{ConfidenceCutoff: 90, ReplacementWeight: 0.2, RegexWeight: 0.3}
}

// Result is the outcome of scoring one token.
type Result struct {
	Score        float64
	Corrected    string
	Value        string
	Replacements int
}

// Scorer computes number-likelihood scores.
type Scorer struct {
	cfg    Config
	logger *slog.Logger
}

// NewScorer creates a scorer.
func NewScorer(cfg Config, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{cfg: cfg, logger: logger}
}

// Score rates text in [0,1]. Glyph substitution only applies when confidence is below the cutoff.
func (s *Scorer) Score(text string, confidence float64) Result {
	corrected, replacements := text, 0
	if confidence < s.cfg.ConfidenceCutoff {
		corrected, replacements = correct(text)
	}

	res := Result{Corrected: corrected, Replacements: replacements}
	match := longestNumber(corrected)
	total := utf8.RuneCountInString(corrected)
	if match == "" || total == 0 {
		return res
	}
	res.Value = normalizeNumber(match)

	score := 1 - float64(replacements)*s.cfg.ReplacementWeight
	penalty := 1 - float64(utf8.RuneCountInString(match))/float64(total)
	score -= penalty * s.cfg.RegexWeight
	res.Score = clamp(score)
	return res
}

// Apply returns copies of tokens annotated with their number score and parsed value.
func (s *Scorer) Apply(tokens []entity.Token) []entity.Token {
	out := entity.CloneTokens(tokens)
	numeric := 0
	for i := range out {
		r := s.Score(out[i].Text, out[i].Confidence)
		out[i].NumberScore = r.Score
		out[i].Corrected = r.Corrected
		out[i].Value = r.Value
		if r.Score > 0 {
			numeric++
		}
	}
	s.logger.Debug("scored tokens", "tokens", len(out), "numeric", numeric)
	return out
}

func correct(text string) (string, int) {
	var b strings.Builder
	b.Grow(len(text))
	n := 0
	for _, r := range text {
		if d, ok := substitutions[r]; ok {
			b.WriteRune(d)
			n++
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), n
}

func longestNumber(s string) string {
	best := ""
	for _, m := range reNumber.FindAllString(s, -1) {
		if len(m) > len(best) {
			best = m
		}
	}
	return best
}

// normalizeNumber drops thousands separators and adds the missing zero of ".5".
func normalizeNumber(m string) string {
	m = strings.ReplaceAll(m, ",", "")
	if strings.HasPrefix(m, ".") {
		m = "0" + m
	}
	return m
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
