package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mindtree/local-app/internal/model"
)

const (
	selectedMarker  = "👉"
	collapsedMarker = "▸"
	emptyText       = "…"
)

// TreeUI handles the visualization of trees.
type TreeUI struct {
	visualizer *Visualizer
}

// NewTreeUI creates a new TreeUI instance.
func NewTreeUI(w io.Writer, useColor bool) *TreeUI {
	return &TreeUI{
		visualizer: NewVisualizer(w, useColor),
	}
}

// Visualizer returns the underlying writer
func (tui *TreeUI) Visualizer() *Visualizer {
	return tui.visualizer
}

// TreeList displays a list of trees, marking the open one
func (tui *TreeUI) TreeList(trees []*model.Tree, openID int64) {
	if len(trees) == 0 {
		tui.visualizer.Println("No trees available")
		return
	}

	tui.visualizer.Println("Available trees:")
	for _, t := range trees {
		marker := "  "
		if t.ID == openID {
			marker = tui.visualizer.Styled("* ", markerStyle)
		}
		tui.visualizer.Printf("%s%s %s %s\n",
			marker,
			tui.visualizer.Styled(fmt.Sprintf("[%d]", t.ID), idStyle),
			t.Name,
			tui.visualizer.Styled(t.LastAccessedAt.Local().Format("2006-01-02 15:04"), dimStyle),
		)
	}
}

// TreeView displays the visible part of a tree. Children of collapsed nodes are hidden.
func (tui *TreeUI) TreeView(root *model.Node, selectedID, editID string) {
	if root == nil {
		tui.visualizer.Println("No tree is open")
		return
	}
	for _, line := range tui.visualizeTree(root, selectedID, editID) {
		tui.visualizer.Println(line)
	}
}

// visualizeTree generates one line per visible node.
func (tui *TreeUI) visualizeTree(root *model.Node, selectedID, editID string) []string {
	var output []string

	var buildTree func(n *model.Node, prefix string, isRoot, isLast bool)
	buildTree = func(n *model.Node, prefix string, isRoot, isLast bool) {
		var line strings.Builder
		line.WriteString(prefix)

		childPrefix := prefix
		if !isRoot {
			if isLast {
				line.WriteString(tui.visualizer.Styled("└── ", branchStyle))
				childPrefix += "    "
			} else {
				line.WriteString(tui.visualizer.Styled("├── ", branchStyle))
				childPrefix += tui.visualizer.Styled("│   ", branchStyle)
			}
		}

		line.WriteString(tui.nodeLabel(n, selectedID, editID))
		output = append(output, line.String())

		if !n.IsExpanded {
			return
		}
		for i, child := range n.Children {
			buildTree(child, childPrefix, false, i == len(n.Children)-1)
		}
	}

	buildTree(root, "", true, true)
	return output
}

// nodeLabel renders "<text> [id]" with the node's background color and state markers
func (tui *TreeUI) nodeLabel(n *model.Node, selectedID, editID string) string {
	text := n.Text
	if text == "" {
		text = emptyText
	}

	style := lipgloss.NewStyle()
	if n.BackgroundColor != nil {
		style = style.Background(lipgloss.Color(*n.BackgroundColor)).Foreground(lipgloss.Color("#000000"))
	}
	switch n.ID {
	case editID:
		style = style.Inherit(editingStyle)
	case selectedID:
		style = style.Inherit(selectedStyle)
	}

	var b strings.Builder
	if n.ID == selectedID {
		b.WriteString(selectedMarker + " ")
	}
	if !n.IsExpanded && len(n.Children) > 0 {
		b.WriteString(tui.visualizer.Styled(collapsedMarker, markerStyle) + " ")
	}
	b.WriteString(tui.visualizer.Styled(text, style))
	if n.ID == editID {
		b.WriteString(tui.visualizer.Styled(" (editing)", dimStyle))
	}
	if !n.IsTransient() {
		b.WriteString(" " + tui.visualizer.Styled("["+n.ID+"]", idStyle))
	}
	if !n.IsExpanded && len(n.Children) > 0 {
		b.WriteString(tui.visualizer.Styled(fmt.Sprintf(" (+%d)", len(n.Children)), dimStyle))
	}
	return b.String()
}

// Lines prints plain result lines
func (tui *TreeUI) Lines(lines []string) {
	for _, l := range lines {
		tui.visualizer.Println(l)
	}
}

// Palette prints each palette color as a colored swatch
func (tui *TreeUI) Palette(colors []string) {
	for _, c := range colors {
		swatch := tui.visualizer.Styled("    ", lipgloss.NewStyle().Background(lipgloss.Color(c)))
		tui.visualizer.Printf("%s %s\n", swatch, c)
	}
}
