package history

import (
	"fmt"

	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/tree"
)

// Kind tags the concrete type of an Action.
type Kind string

const (
	KindAddNode     Kind = "AddNode"
	KindEditNode    Kind = "EditNode"
	KindDeleteNode  Kind = "DeleteNode"
	KindMoveNode    Kind = "MoveNode"
	KindChangeColor Kind = "ChangeColor"
)

// Action is a recorded mutation carrying enough state to invert itself.
// The set of implementations is closed: AddNode, EditNode, DeleteNode, MoveNode
// and ChangeColor.
type Action interface {
	Kind() Kind
	String() string
	remap(ids map[string]string) Action
}

// AddNode records the creation of Node under ParentID at Index.
type AddNode struct {
	Node          *model.Node
	ParentID      string
	PrevSiblingID string
	Index         int
}

// EditNode records a text change.
type EditNode struct {
	NodeID  string
	OldText string
	NewText string
}

// DeleteNode records the removal of the subtree Node. An empty ParentID means the root
// was deleted and replaced by a placeholder whose stored id is ReplacementID.
type DeleteNode struct {
	Node          *model.Node
	ParentID      string
	PrevSiblingID string
	Index         int
	ReplacementID string
}

// MoveNode records a reparent with exact former and new positions.
type MoveNode struct {
	Node             *model.Node
	OldParentID      string
	OldPrevSiblingID string
	OldIndex         int
	NewParentID      string
	NewIndex         int
}

// ChangeColor records a background color change. nil means no color.
type ChangeColor struct {
	NodeID   string
	OldColor *string
	NewColor *string
}

func (AddNode) Kind() Kind     { return KindAddNode }
func (EditNode) Kind() Kind    { return KindEditNode }
func (DeleteNode) Kind() Kind  { return KindDeleteNode }
func (MoveNode) Kind() Kind    { return KindMoveNode }
func (ChangeColor) Kind() Kind { return KindChangeColor }

func (a AddNode) String() string {
	return fmt.Sprintf("add %q under %s", a.Node.Text, a.ParentID)
}

func (a EditNode) String() string {
	return fmt.Sprintf("edit %s %q -> %q", a.NodeID, a.OldText, a.NewText)
}

func (a DeleteNode) String() string {
	return fmt.Sprintf("delete %q (%d nodes)", a.Node.Text, tree.Count(a.Node))
}

func (a MoveNode) String() string {
	return fmt.Sprintf("move %q from %s[%d] to %s[%d]", a.Node.Text, a.OldParentID, a.OldIndex, a.NewParentID, a.NewIndex)
}

func (a ChangeColor) String() string {
	return fmt.Sprintf("color %s %s -> %s", a.NodeID, colorName(a.OldColor), colorName(a.NewColor))
}

func colorName(c *string) string {
	if c == nil {
		return "none"
	}
	return *c
}

func (a AddNode) remap(ids map[string]string) Action {
	a.Node = remapNode(a.Node, ids)
	a.ParentID = remapID(a.ParentID, ids)
	a.PrevSiblingID = remapID(a.PrevSiblingID, ids)
	return a
}

func (a EditNode) remap(ids map[string]string) Action {
	a.NodeID = remapID(a.NodeID, ids)
	return a
}

func (a DeleteNode) remap(ids map[string]string) Action {
	a.Node = remapNode(a.Node, ids)
	a.ParentID = remapID(a.ParentID, ids)
	a.PrevSiblingID = remapID(a.PrevSiblingID, ids)
	a.ReplacementID = remapID(a.ReplacementID, ids)
	return a
}

func (a MoveNode) remap(ids map[string]string) Action {
	a.Node = remapNode(a.Node, ids)
	a.OldParentID = remapID(a.OldParentID, ids)
	a.OldPrevSiblingID = remapID(a.OldPrevSiblingID, ids)
	a.NewParentID = remapID(a.NewParentID, ids)
	return a
}

func (a ChangeColor) remap(ids map[string]string) Action {
	a.NodeID = remapID(a.NodeID, ids)
	return a
}

func remapID(id string, ids map[string]string) string {
	if to, ok := ids[id]; ok {
		return to
	}
	return id
}

func remapNode(n *model.Node, ids map[string]string) *model.Node {
	out := tree.Clone(n)
	tree.Walk(out, func(c, _ *model.Node, _ int) {
		c.ID = remapID(c.ID, ids)
	})
	return out
}

// Apply performs the forward mutation of a on a pure tree.
func Apply(root *model.Node, a Action) *model.Node {
	switch a := a.(type) {
	case AddNode:
		return tree.InsertAt(root, a.ParentID, a.Index, a.Node)
	case EditNode:
		return tree.Rename(root, a.NodeID, a.NewText)
	case DeleteNode:
		out, emptied := tree.DeleteSubtree(root, a.Node.ID)
		if emptied {
			return tree.Placeholder()
		}
		return out
	case MoveNode:
		return tree.MoveTo(root, a.Node.ID, a.NewParentID, a.NewIndex)
	case ChangeColor:
		return tree.Recolor(root, a.NodeID, a.NewColor)
	}
	return tree.Clone(root)
}

// Invert performs the inverse mutation of a on a pure tree.
func Invert(root *model.Node, a Action) *model.Node {
	switch a := a.(type) {
	case AddNode:
		out, _ := tree.DeleteSubtree(root, a.Node.ID)
		return out
	case EditNode:
		return tree.Rename(root, a.NodeID, a.OldText)
	case DeleteNode:
		if a.ParentID == "" {
			return tree.Clone(a.Node)
		}
		return tree.InsertAt(root, a.ParentID, a.Index, a.Node)
	case MoveNode:
		return tree.MoveTo(root, a.Node.ID, a.OldParentID, a.OldIndex)
	case ChangeColor:
		return tree.Recolor(root, a.NodeID, a.OldColor)
	}
	return tree.Clone(root)
}

// Target returns the id of the node an action operates on.
func Target(a Action) string {
	switch a := a.(type) {
	case AddNode:
		return a.Node.ID
	case EditNode:
		return a.NodeID
	case DeleteNode:
		return a.Node.ID
	case MoveNode:
		return a.Node.ID
	case ChangeColor:
		return a.NodeID
	}
	return ""
}
