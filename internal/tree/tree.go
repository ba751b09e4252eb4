// Package tree implements pure operations over an in-memory mind-map tree.
//
// Every function that changes the tree works on a deep copy and returns it, so callers
// can keep the previous tree around (history, canonical state) without aliasing.
// Structurally invalid requests (missing ids, moves that would create a cycle, siblings
// of the root) return an unchanged copy rather than an error.
package tree

import (
	"github.com/google/uuid"

	"mindtree/local-app/internal/model"
)

// PlaceholderID is the id of the placeholder root until the store assigns one.
const PlaceholderID = "0"

// Placeholder returns the tree substituted when the root is deleted.
func Placeholder() *model.Node {
	return &model.Node{
		ID:         PlaceholderID,
		Text:       model.PlaceholderText,
		Children:   []*model.Node{},
		IsExpanded: true,
	}
}

// Transient returns an unsaved node with a client-generated id.
func Transient(text string) *model.Node {
	return &model.Node{
		ID:         model.TransientPrefix + uuid.NewString(),
		Text:       text,
		Children:   []*model.Node{},
		IsExpanded: true,
	}
}

// Clone deep-copies a subtree. Children slices are never nil in the copy.
func Clone(n *model.Node) *model.Node {
	if n == nil {
		return nil
	}
	c := &model.Node{
		ID:         n.ID,
		Text:       n.Text,
		IsExpanded: n.IsExpanded,
		Children:   make([]*model.Node, 0, len(n.Children)),
	}
	if n.BackgroundColor != nil {
		color := *n.BackgroundColor
		c.BackgroundColor = &color
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, Clone(child))
	}
	return c
}

// Walk visits every node depth-first in pre-order. parent is nil for the root.
func Walk(root *model.Node, fn func(n, parent *model.Node, depth int)) {
	var visit func(n, parent *model.Node, depth int)
	visit = func(n, parent *model.Node, depth int) {
		fn(n, parent, depth)
		for _, child := range n.Children {
			visit(child, n, depth+1)
		}
	}
	if root != nil {
		visit(root, nil, 0)
	}
}

// Find returns the node with the given id, searching depth-first in pre-order.
func Find(root *model.Node, id string) *model.Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := Find(child, id); found != nil {
			return found
		}
	}
	return nil
}

// FindParent returns the node whose immediate children contain id.
func FindParent(root *model.Node, id string) *model.Node {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if child.ID == id {
			return root
		}
		if found := FindParent(child, id); found != nil {
			return found
		}
	}
	return nil
}

// Locate reports the parent id and sibling index of a node. The root has
// an empty parent id and index 0.
func Locate(root *model.Node, id string) (parentID string, index int, ok bool) {
	if root == nil {
		return "", 0, false
	}
	if root.ID == id {
		return "", 0, true
	}
	parent := FindParent(root, id)
	if parent == nil {
		return "", 0, false
	}
	return parent.ID, indexOf(parent.Children, id), true
}

// PrevSiblingID returns the id of the sibling right before id, or "" when it is first.
func PrevSiblingID(root *model.Node, id string) string {
	parent := FindParent(root, id)
	if parent == nil {
		return ""
	}
	i := indexOf(parent.Children, id)
	if i <= 0 {
		return ""
	}
	return parent.Children[i-1].ID
}

// Count returns the number of nodes including the root.
func Count(root *model.Node) int {
	n := 0
	Walk(root, func(*model.Node, *model.Node, int) { n++ })
	return n
}

// IsDescendant reports whether id lies strictly below ancestorID.
func IsDescendant(root *model.Node, ancestorID, id string) bool {
	ancestor := Find(root, ancestorID)
	if ancestor == nil {
		return false
	}
	for _, child := range ancestor.Children {
		if Find(child, id) != nil {
			return true
		}
	}
	return false
}

// InsertChild appends n as the last child of parentID.
func InsertChild(root *model.Node, parentID string, n *model.Node) *model.Node {
	out := Clone(root)
	parent := Find(out, parentID)
	if parent == nil || n == nil {
		return out
	}
	parent.Children = append(parent.Children, Clone(n))
	return out
}

// InsertSibling inserts n right after siblingID. The root has no siblings.
func InsertSibling(root *model.Node, siblingID string, n *model.Node) *model.Node {
	out := Clone(root)
	parent := FindParent(out, siblingID)
	if parent == nil || n == nil {
		return out
	}
	parent.Children = insertAt(parent.Children, indexOf(parent.Children, siblingID)+1, Clone(n))
	return out
}

// InsertAt inserts n under parentID at index, clamped to the child range.
func InsertAt(root *model.Node, parentID string, index int, n *model.Node) *model.Node {
	out := Clone(root)
	parent := Find(out, parentID)
	if parent == nil || n == nil {
		return out
	}
	parent.Children = insertAt(parent.Children, index, Clone(n))
	return out
}

// DeleteSubtree removes id and its descendants. The second result is true when id is
// the root: the tree is emptied and the caller substitutes Placeholder.
func DeleteSubtree(root *model.Node, id string) (*model.Node, bool) {
	if root != nil && root.ID == id {
		return nil, true
	}
	out := Clone(root)
	detach(out, id)
	return out, false
}

// Rename replaces the text of a single node.
func Rename(root *model.Node, id, text string) *model.Node {
	out := Clone(root)
	if n := Find(out, id); n != nil {
		n.Text = text
	}
	return out
}

// Recolor sets the background color of a node; nil clears it.
func Recolor(root *model.Node, id string, color *string) *model.Node {
	out := Clone(root)
	if n := Find(out, id); n != nil {
		if color == nil {
			n.BackgroundColor = nil
		} else {
			c := *color
			n.BackgroundColor = &c
		}
	}
	return out
}

// SetExpanded sets the expansion flag of a node.
func SetExpanded(root *model.Node, id string, expanded bool) *model.Node {
	out := Clone(root)
	if n := Find(out, id); n != nil {
		n.IsExpanded = expanded
	}
	return out
}

// Move detaches sourceID and re-attaches it relative to targetID: inside appends it as
// the last child of the target, before and after make it the target's sibling.
// Moving onto itself or into its own subtree leaves the tree unchanged.
func Move(root *model.Node, sourceID, targetID string, pos model.Position) *model.Node {
	out := Clone(root)
	if sourceID == targetID || IsDescendant(out, sourceID, targetID) {
		return out
	}
	source, target := Find(out, sourceID), Find(out, targetID)
	if source == nil || target == nil || source == out {
		return out
	}

	switch pos {
	case model.PositionInside:
		detach(out, sourceID)
		target.Children = append(target.Children, source)
	case model.PositionBefore, model.PositionAfter:
		if FindParent(out, targetID) == nil {
			return out
		}
		detach(out, sourceID)
		parent := FindParent(out, targetID)
		i := indexOf(parent.Children, targetID)
		if pos == model.PositionAfter {
			i++
		}
		parent.Children = insertAt(parent.Children, i, source)
	}
	return out
}

// MoveTo detaches id and inserts it under parentID at index, clamped to the child
// range after detaching.
func MoveTo(root *model.Node, id, parentID string, index int) *model.Node {
	out := Clone(root)
	if id == parentID || IsDescendant(out, id, parentID) {
		return out
	}
	source, parent := Find(out, id), Find(out, parentID)
	if source == nil || parent == nil || source == out {
		return out
	}
	detach(out, id)
	parent.Children = insertAt(parent.Children, index, source)
	return out
}

func detach(root *model.Node, id string) {
	parent := FindParent(root, id)
	if parent == nil {
		return
	}
	i := indexOf(parent.Children, id)
	parent.Children = append(parent.Children[:i:i], parent.Children[i+1:]...)
}

func indexOf(nodes []*model.Node, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func insertAt(nodes []*model.Node, i int, n *model.Node) []*model.Node {
	if i < 0 {
		i = 0
	}
	if i > len(nodes) {
		i = len(nodes)
	}
	out := make([]*model.Node, 0, len(nodes)+1)
	out = append(out, nodes[:i]...)
	out = append(out, n)
	return append(out, nodes[i:]...)
}
