package tree

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"mindtree/local-app/internal/model"
)

var (
	ErrNoRoot        = errors.New("no root row")
	ErrMultipleRoots = errors.New("more than one root row")
)

// FromRows reassembles flat persisted rows into a rooted tree. Children are grouped by
// parent and ordered by order_index, then id. Rows whose parent is absent are skipped.
func FromRows(rows []model.NodeRow) (*model.Node, error) {
	byParent := make(map[int64][]model.NodeRow)
	var roots []model.NodeRow
	for _, r := range rows {
		if r.ParentID == nil {
			roots = append(roots, r)
			continue
		}
		byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
	}
	switch len(roots) {
	case 0:
		return nil, ErrNoRoot
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d roots", ErrMultipleRoots, len(roots))
	}

	var build func(r model.NodeRow) *model.Node
	build = func(r model.NodeRow) *model.Node {
		n := rowToNode(r)
		children := byParent[r.ID]
		sort.SliceStable(children, func(i, j int) bool {
			if children[i].OrderIndex != children[j].OrderIndex {
				return children[i].OrderIndex < children[j].OrderIndex
			}
			return children[i].ID < children[j].ID
		})
		for _, c := range children {
			n.Children = append(n.Children, build(c))
		}
		return n
	}
	return build(roots[0]), nil
}

// ToRows flattens a tree in pre-order. OrderIndex is the position among siblings.
// All ids must be persisted integer ids.
func ToRows(root *model.Node, treeID int64) ([]model.NodeRow, error) {
	var rows []model.NodeRow
	var visit func(n *model.Node, parentID *int64, index int) error
	visit = func(n *model.Node, parentID *int64, index int) error {
		id, err := ParseID(n.ID)
		if err != nil {
			return err
		}
		rows = append(rows, model.NodeRow{
			ID:              id,
			TreeID:          treeID,
			ParentID:        parentID,
			Text:            n.Text,
			OrderIndex:      index,
			IsExpanded:      n.IsExpanded,
			BackgroundColor: copyColor(n.BackgroundColor),
		})
		for i, c := range n.Children {
			if err := visit(c, &id, i); err != nil {
				return err
			}
		}
		return nil
	}
	if root == nil {
		return nil, ErrNoRoot
	}
	if err := visit(root, nil, 0); err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseID converts a persisted node id back to its integer key.
func ParseID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("node id %q is not persisted: %w", id, err)
	}
	return v, nil
}

// FormatID renders an integer key as a node id.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func rowToNode(r model.NodeRow) *model.Node {
	return &model.Node{
		ID:              FormatID(r.ID),
		Text:            r.Text,
		Children:        []*model.Node{},
		IsExpanded:      r.IsExpanded,
		BackgroundColor: copyColor(r.BackgroundColor),
	}
}

func copyColor(c *string) *string {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
