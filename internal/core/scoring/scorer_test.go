package scoring

import (
	"math"
	"testing"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScore(t *testing.T) {
	s := NewScorer(DefaultConfig(), nil)
	tests := []struct {
		name       string
		text       string
		confidence float64
		score      float64
		value      string
		repl       int
	}{
		{name: "plain integer", text: "1234", confidence: 95, score: 1, value: "1234"},
		{name: "two substitutions", text: "I2O", confidence: 85, score: 0.6, value: "120", repl: 2},
		{name: "one substitution", text: "3O", confidence: 70, score: 0.8, value: "30", repl: 1},
		{name: "high confidence keeps letters", text: "3O", confidence: 95, score: 1 - 0.5*0.3, value: "3"},
		{name: "decimal with unit", text: "12.5mg", confidence: 95, score: 1 - (1-4.0/6.0)*0.3, value: "12.5"},
		{name: "thousands separator", text: "1,200", confidence: 96, score: 1, value: "1200"},
		{name: "grouped decimal", text: "12,345.6", confidence: 96, score: 1, value: "12345.6"},
		{name: "leading decimal point", text: ".5", confidence: 96, score: 1, value: "0.5"},
		{name: "broken grouping", text: "1,20", confidence: 96, score: 1 - 0.5*0.3, value: "20"},
		{name: "no digits", text: "Glucose", confidence: 95, score: 0},
		{name: "empty", text: "", confidence: 10, score: 0},
		{name: "clamped at zero", text: "OOOOOO", confidence: 10, score: 0, value: "000000", repl: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.text, tt.confidence)
			if !approx(got.Score, tt.score) {
				t.Fatalf("Score(%q).Score = %v, want %v", tt.text, got.Score, tt.score)
			}
			if got.Value != tt.value {
				t.Fatalf("Score(%q).Value = %q, want %q", tt.text, got.Value, tt.value)
			}
			if got.Replacements != tt.repl {
				t.Fatalf("Score(%q).Replacements = %d, want %d", tt.text, got.Replacements, tt.repl)
			}
		})
	}
}

func TestScoreStaysInUnitInterval(t *testing.T) {
	s := NewScorer(DefaultConfig(), nil)
	inputs := []string{"SOS", "1O0", "B12", "x", "9.9.9", "<5", "O.S", "LLLLLL1", "135-145"}
	for _, in := range inputs {
		for _, conf := range []float64{0, 50, 89.9, 90, 100} {
			got := s.Score(in, conf).Score
			if got < 0 || got > 1 {
				t.Fatalf("Score(%q, %v) = %v, outside [0,1]", in, conf, got)
			}
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := NewScorer(DefaultConfig(), nil)
	in := []entity.Token{{Word: entity.Word{Text: "3O", Confidence: 70}, UniqueKey: "a"}}
	out := s.Apply(in)
	if in[0].NumberScore != 0 || in[0].Value != "" {
		t.Fatalf("input mutated: %+v", in[0])
	}
	if !approx(out[0].NumberScore, 0.8) || out[0].Value != "30" {
		t.Fatalf("Apply() = %+v", out[0])
	}
}
