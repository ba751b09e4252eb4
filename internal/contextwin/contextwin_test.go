package contextwin

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/tree"
)

func n(id string, children ...*model.Node) *model.Node {
	if children == nil {
		children = []*model.Node{}
	}
	return &model.Node{ID: id, Text: id, Children: children, IsExpanded: true}
}

func TestSmallTreeFullOutline(t *testing.T) {
	root := n("A", n("B", n("C")), n("D"))
	want := "- A\n  👉 B\n    - C\n  - D\n"
	assert.Equal(t, want, Build(root, "B"))
}

func TestSmallTreeSkipsCollapsedChildren(t *testing.T) {
	root := n("A", n("B", n("C")), n("D"))
	root.Children[0].IsExpanded = false
	assert.Equal(t, "- A\n  - B\n  - D\n", Build(root, ""))
}

// largeTree has 11 nodes; X has ancestors R and P, sibling S and children C1..C3.
func largeTree() *model.Node {
	return n("R",
		n("P",
			n("X", n("C1"), n("C2"), n("C3")),
			n("S"),
		),
		n("Q", n("Q1"), n("Q2"), n("Q3")),
	)
}

func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if l != "" {
			out = append(out, strings.TrimLeft(l, " -👉"))
		}
	}
	return out
}

func TestLargeTreeLocalContext(t *testing.T) {
	root := largeTree()
	require.Equal(t, 11, tree.Count(root))

	got := Build(root, "X")
	assert.ElementsMatch(t, []string{"R", "P", "S", "C1", "C2", "C3"}, lines(got))
	assert.Equal(t, "- R\n  - P\n    - S\n      - C1\n      - C2\n      - C3\n", got)
}

func TestLargeTreeWithoutSelectionIsEmpty(t *testing.T) {
	assert.Equal(t, "", Build(largeTree(), ""))
	assert.Equal(t, "", Build(largeTree(), "missing"))
}

func TestLargeTreeCollapsedSelection(t *testing.T) {
	root := largeTree()
	tree.Find(root, "X").IsExpanded = false
	assert.ElementsMatch(t, []string{"R", "P", "S"}, lines(Build(root, "X")))

	root = largeTree()
	tree.Find(root, "P").IsExpanded = false
	assert.ElementsMatch(t, []string{"R", "P"}, lines(Build(root, "X")))
}

func TestThresholdIsConfigurable(t *testing.T) {
	root := n("A", n("B"), n("C"))
	assert.Equal(t, "👉 A\n  - B\n  - C\n", Selector{Threshold: 3}.Build(root, "A"))
	// local mode leaves out the selected node itself
	assert.Equal(t, "  - B\n  - C\n", Selector{Threshold: 2}.Build(root, "A"))
}

// hiddenIDs returns ids of nodes that have a collapsed ancestor.
func hiddenIDs(root *model.Node) map[string]bool {
	hidden := map[string]bool{}
	var visit func(n *model.Node, isHidden bool)
	visit = func(n *model.Node, isHidden bool) {
		if isHidden {
			hidden[n.ID] = true
		}
		for _, c := range n.Children {
			visit(c, isHidden || !n.IsExpanded)
		}
	}
	visit(root, false)
	return hidden
}

func TestNeverEmitsCollapsedChildren(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 30).Draw(t, "size")
		nodes := make([]*model.Node, size+1)
		for i := 1; i <= size; i++ {
			nodes[i] = n(fmt.Sprintf("n%d", i))
			nodes[i].IsExpanded = rapid.Bool().Draw(t, fmt.Sprintf("expanded%d", i))
			if i > 1 {
				p := rapid.IntRange(1, i-1).Draw(t, fmt.Sprintf("parent%d", i))
				nodes[p].Children = append(nodes[p].Children, nodes[i])
			}
		}
		root := nodes[1]
		selected := fmt.Sprintf("n%d", rapid.IntRange(1, size).Draw(t, "selected"))
		threshold := rapid.IntRange(1, 15).Draw(t, "threshold")

		hidden := hiddenIDs(root)
		for _, text := range lines(Selector{Threshold: threshold}.Build(root, selected)) {
			require.False(t, hidden[text], "collapsed subtree leaked %s", text)
		}
	})
}

func TestPrompt(t *testing.T) {
	p := Prompt(3, "- A\n", "A")
	assert.Contains(t, p, "3個のノード")
	assert.Contains(t, p, "選択中のノード: A")
	assert.True(t, strings.HasSuffix(p, "- A\n"))
}
