package spatial

import (
	"log/slog"

	"github.com/tidwall/rtree"
	"gonum.org/v1/gonum/floats"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Config holds pairing limits.
type Config struct {
	// ValueThreshold is the minimum number score for a token to be a value.
	ValueThreshold float64
	// MaxDistance drops pairs farther apart than this many pixels; 0 keeps all.
	MaxDistance float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{ValueThreshold: 0.6}
}

// Pairer computes key/value distances within each page.
type Pairer struct {
	cfg    Config
	logger *slog.Logger
}

// NewPairer creates a pairer.
func NewPairer(cfg Config, logger *slog.Logger) *Pairer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pairer{cfg: cfg, logger: logger}
}

// Pair returns copies of tokens whose MatchWeights hold, for every key token,
// the distance to each value token on the same page and the mirror entry on
// the value token. Tokens on different pages are never paired.
func (p *Pairer) Pair(tokens []entity.Token) []entity.Token {
	out := entity.CloneTokens(tokens)
	for i := range out {
		out[i].MatchWeights = nil
	}

	pages := GroupByPage(out, p.cfg.ValueThreshold)
	pairs := 0
	for _, pageID := range PageIDs(pages) {
		ps := pages[pageID]
		if len(ps.Keys) == 0 || len(ps.Values) == 0 {
			continue
		}

		var index rtree.RTreeG[int]
		for _, vi := range ps.Values {
			pt := center(out[vi].Box)
			index.Insert(pt, pt, vi)
		}

		for _, ki := range ps.Keys {
			kc := center(out[ki].Box)
			visit := func(pt, _ [2]float64, vi int) bool {
				d := floats.Distance(kc[:], pt[:], 2)
				if p.cfg.MaxDistance > 0 && d > p.cfg.MaxDistance {
					return true
				}
				setWeight(&out[ki], out[vi].UniqueKey, d)
				setWeight(&out[vi], out[ki].UniqueKey, d)
				pairs++
				return true
			}
			if p.cfg.MaxDistance > 0 {
				r := p.cfg.MaxDistance
				index.Search([2]float64{kc[0] - r, kc[1] - r}, [2]float64{kc[0] + r, kc[1] + r}, visit)
			} else {
				index.Scan(visit)
			}
		}
	}

	p.logger.Debug("paired tokens", "pages", len(pages), "pairs", pairs)
	return out
}

func center(b entity.BoundingBox) [2]float64 {
	x, y := b.Center()
	return [2]float64{x, y}
}

func setWeight(t *entity.Token, other string, w float64) {
	if t.MatchWeights == nil {
		t.MatchWeights = make(map[string]float64)
	}
	t.MatchWeights[other] = w
}
