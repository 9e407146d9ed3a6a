// Package resolve commits each field to at most one value token with a
// deferred-acceptance (Gale-Shapley) matching over pairing distances.
package resolve

import (
	"log/slog"
	"sort"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Preference is one entry of a field's proposal list.
type Preference struct {
	ValueKey string
	Weight   float64
	KeyToken string
}

// group is one field proposing to value tokens.
type group struct {
	field     string
	prefs     []Preference
	next      int
	committed *Preference
}

// Resolver runs the stable assignment.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Preferences builds each field's proposal list from the match weights of its
// key tokens, nearest first. Fields without weights get an empty list.
func Preferences(tokens []entity.Token, fieldOrder []string) map[string][]Preference {
	prefs := make(map[string][]Preference, len(fieldOrder))
	for _, field := range fieldOrder {
		var list []Preference
		for _, t := range tokens {
			if !t.HasCandidate(field) {
				continue
			}
			for valueKey, w := range t.MatchWeights {
				list = append(list, Preference{ValueKey: valueKey, Weight: w, KeyToken: t.UniqueKey})
			}
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Weight != list[j].Weight {
				return list[i].Weight < list[j].Weight
			}
			if list[i].ValueKey != list[j].ValueKey {
				return list[i].ValueKey < list[j].ValueKey
			}
			return list[i].KeyToken < list[j].KeyToken
		})
		prefs[field] = list
	}
	return prefs
}

// Resolve returns annotated copies of tokens and the committed assignments in
// field order. Fields propose in fieldOrder; a value token keeps the proposer
// with the lower weight and ties keep the current holder. A displaced field
// resumes from its next preference.
func (r *Resolver) Resolve(tokens []entity.Token, fieldOrder []string) ([]entity.Token, []entity.Assignment) {
	out := entity.CloneTokens(tokens)
	prefs := Preferences(out, fieldOrder)

	groups := make([]*group, 0, len(fieldOrder))
	for _, field := range fieldOrder {
		groups = append(groups, &group{field: field, prefs: prefs[field]})
	}

	holders := make(map[string]*group)
	rounds := 0
	for {
		progressed := false
		for _, g := range groups {
			if g.committed != nil || g.next >= len(g.prefs) {
				continue
			}
			p := g.prefs[g.next]
			g.next++
			progressed = true

			holder, held := holders[p.ValueKey]
			switch {
			case !held:
			case p.Weight < holder.committed.Weight:
				holder.committed = nil
			default:
				continue
			}
			pc := p
			g.committed = &pc
			holders[p.ValueKey] = g
		}
		if !progressed {
			break
		}
		rounds++
	}

	byKey := make(map[string]int, len(out))
	for i, t := range out {
		byKey[t.UniqueKey] = i
	}

	var assignments []entity.Assignment
	for _, g := range groups {
		if g.committed == nil {
			continue
		}
		c := g.committed
		a := entity.Assignment{Field: g.field, KeyToken: c.KeyToken, ValueKey: c.ValueKey, Weight: c.Weight}
		if vi, ok := byKey[c.ValueKey]; ok {
			a.Value = out[vi].Value
			out[vi].Assignment = c.KeyToken
		}
		if ki, ok := byKey[c.KeyToken]; ok && out[ki].Assignment == "" {
			out[ki].Assignment = c.ValueKey
		}
		assignments = append(assignments, a)
	}

	r.logger.Debug("resolved assignments", "fields", len(fieldOrder), "assigned", len(assignments), "rounds", rounds)
	return out, assignments
}

// IsStable reports whether no field and value token would both rather be
// matched to each other than to their current partners.
func IsStable(prefs map[string][]Preference, assignments []entity.Assignment) bool {
	byField := make(map[string]entity.Assignment, len(assignments))
	byValue := make(map[string]entity.Assignment, len(assignments))
	for _, a := range assignments {
		byField[a.Field] = a
		byValue[a.ValueKey] = a
	}
	for field, list := range prefs {
		current, matched := byField[field]
		for _, p := range list {
			if matched && p.Weight >= current.Weight {
				break
			}
			if matched && p.ValueKey == current.ValueKey {
				continue
			}
			holder, held := byValue[p.ValueKey]
			if !held || p.Weight < holder.Weight {
				return false
			}
		}
	}
	return true
}
