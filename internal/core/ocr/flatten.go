package ocr

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// UniqueKey identifies a word within a run.
func UniqueKey(pageID string, w entity.Word) string {
	return fmt.Sprintf("%s#block_%d;paragraph_%d;line_%d;word_%d", pageID, w.Block, w.Paragraph, w.Line, w.Index)
}

// Flatten turns the words of every successful page into one token list in page order.
func Flatten(results []entity.PageResult) []entity.Token {
	var tokens []entity.Token
	seen := make(map[string]int)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, w := range r.Words {
			w.Text = strings.TrimSpace(w.Text)
			if w.Text == "" {
				continue
			}
			key := UniqueKey(r.PageID, w)
			if n := seen[key]; n > 0 {
				seen[key] = n + 1
				key = fmt.Sprintf("%s#%d", key, n)
			} else {
				seen[key] = 1
			}
			tokens = append(tokens, entity.Token{Word: w, PageID: r.PageID, UniqueKey: key})
		}
	}
	return tokens
}
