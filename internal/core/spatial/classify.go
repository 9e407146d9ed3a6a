// Package spatial pairs field-name tokens with nearby numeric tokens on the same page.
package spatial

import (
	"sort"

	"github.com/joseph-ayodele/labresults-extractor/constants"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// PageSet holds the indexes of key and value tokens of one page.
type PageSet struct {
	Keys   []int
	Values []int
}

// Classify returns the token class used for pairing and debug drawing.
// A field match wins over a numeric score.
func Classify(t entity.Token, valueThreshold float64) constants.TokenClass {
	switch {
	case t.IsKey():
		return constants.TokenClassFieldMatch
	case t.Value != "" && t.NumberScore > 0 && t.NumberScore >= valueThreshold:
		return constants.TokenClassNumeric
	default:
		return constants.TokenClassNeither
	}
}

// GroupByPage splits token indexes into keys and values per page.
func GroupByPage(tokens []entity.Token, valueThreshold float64) map[string]PageSet {
	pages := make(map[string]PageSet)
	for i, t := range tokens {
		ps := pages[t.PageID]
		switch Classify(t, valueThreshold) {
		case constants.TokenClassFieldMatch:
			ps.Keys = append(ps.Keys, i)
		case constants.TokenClassNumeric:
			ps.Values = append(ps.Values, i)
		default:
			continue
		}
		pages[t.PageID] = ps
	}
	return pages
}

// PageIDs returns the keys of a page grouping in sorted order.
func PageIDs(pages map[string]PageSet) []string {
	ids := make([]string, 0, len(pages))
	for id := range pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
