package tree

import (
	"github.com/sahilm/fuzzy"

	"mindtree/local-app/internal/model"
)

// Match is a node whose text matched a search query.
type Match struct {
	ID             string
	Text           string
	Score          int
	MatchedIndexes []int
}

type nodeSource []*model.Node

func (s nodeSource) String(i int) string { return s[i].Text }
func (s nodeSource) Len() int            { return len(s) }

// Search fuzzy-matches query against every node's text, collapsed subtrees included.
// Results are ordered best match first.
func Search(root *model.Node, query string) []Match {
	if query == "" {
		return nil
	}
	var nodes nodeSource
	Walk(root, func(n, _ *model.Node, _ int) {
		nodes = append(nodes, n)
	})

	found := fuzzy.FindFrom(query, nodes)
	matches := make([]Match, 0, len(found))
	for _, m := range found {
		matches = append(matches, Match{
			ID:             nodes[m.Index].ID,
			Text:           m.Str,
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		})
	}
	return matches
}
