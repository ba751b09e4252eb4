// Package contextwin builds the bounded outline of a tree that accompanies a
// generation request.
package contextwin

import (
	"fmt"
	"strings"

	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/tree"
)

const (
	// DefaultThreshold is the largest tree, in nodes, sent in full.
	DefaultThreshold = 10

	selectedMarker = "👉 "
	plainMarker    = "- "
	indent         = "  "
)

// Selector builds context text. The zero value uses DefaultThreshold.
type Selector struct {
	Threshold int
}

// Build is Selector{}.Build.
func Build(root *model.Node, selectedID string) string {
	return Selector{}.Build(root, selectedID)
}

// Build returns the whole visible outline when the tree is small. For larger trees it
// returns the visible ancestors, siblings and children of the selected node, or ""
// when nothing valid is selected. Children of collapsed nodes are never emitted.
func (s Selector) Build(root *model.Node, selectedID string) string {
	if root == nil {
		return ""
	}
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var b strings.Builder
	if tree.Count(root) <= threshold {
		writeOutline(&b, root, selectedID, 0)
		return b.String()
	}

	path := ancestry(root, selectedID)
	if path == nil {
		return ""
	}
	selected := path[len(path)-1]
	depth := len(path) - 1

	// A node is visible only while every ancestor is expanded.
	for i, a := range path[:depth] {
		writeLine(&b, a, selectedID, i)
		if !a.IsExpanded {
			return b.String()
		}
	}
	if depth > 0 {
		for _, sib := range path[depth-1].Children {
			if sib.ID != selectedID {
				writeLine(&b, sib, selectedID, depth)
			}
		}
	}
	if selected.IsExpanded {
		for _, child := range selected.Children {
			writeLine(&b, child, selectedID, depth+1)
		}
	}
	return b.String()
}

func writeOutline(b *strings.Builder, n *model.Node, selectedID string, depth int) {
	writeLine(b, n, selectedID, depth)
	if !n.IsExpanded {
		return
	}
	for _, child := range n.Children {
		writeOutline(b, child, selectedID, depth+1)
	}
}

func writeLine(b *strings.Builder, n *model.Node, selectedID string, depth int) {
	b.WriteString(strings.Repeat(indent, depth))
	if n.ID == selectedID {
		b.WriteString(selectedMarker)
	} else {
		b.WriteString(plainMarker)
	}
	b.WriteString(n.Text)
	b.WriteByte('\n')
}

// ancestry returns the nodes from root down to id, or nil when id is absent.
func ancestry(root *model.Node, id string) []*model.Node {
	if id == "" {
		return nil
	}
	if root.ID == id {
		return []*model.Node{root}
	}
	for _, child := range root.Children {
		if path := ancestry(child, id); path != nil {
			return append([]*model.Node{root}, path...)
		}
	}
	return nil
}

// Prompt builds the system prompt of a generation request.
func Prompt(count int, context, selectedText string) string {
	var b strings.Builder
	b.WriteString("あなたはマインドマップの作成を支援するAIアシスタントです。\n")
	fmt.Fprintf(&b, "与えられたトピックに関連する%d個のノードを生成してください。\n", count)
	b.WriteString("各ノードは簡潔で具体的な内容にしてください。\n")
	b.WriteString("出力は配列形式で、各要素が1つのノードを表します。\n")
	if selectedText != "" {
		fmt.Fprintf(&b, "\n選択中のノード: %s\n", selectedText)
	}
	if context != "" {
		b.WriteString("\n現在のマインドマップ:\n")
		b.WriteString(context)
	}
	return b.String()
}
