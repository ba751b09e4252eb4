// Package model defines the data structures used throughout the mindtree application.
package model

import (
	"strings"
	"time"
)

// PlaceholderText is the label of a freshly created or cleared root node.
const PlaceholderText = "新規ツリー"

// TransientPrefix marks ids of nodes that exist only in memory.
const TransientPrefix = "tmp-"

// Node is a single mind-map entry. Persisted nodes carry their integer primary key
// rendered in decimal; nodes being composed carry a TransientPrefix id.
type Node struct {
	ID              string  `json:"id" yaml:"id"`
	Text            string  `json:"text" yaml:"text"`
	Children        []*Node `json:"children" yaml:"children"`
	IsExpanded      bool    `json:"isExpanded" yaml:"isExpanded"`
	BackgroundColor *string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
}

// IsTransient reports whether the node has not been persisted yet.
func (n *Node) IsTransient() bool {
	return strings.HasPrefix(n.ID, TransientPrefix)
}

// NodeRow is the flat persisted form of a node.
type NodeRow struct {
	ID              int64
	TreeID          int64
	ParentID        *int64
	Text            string
	OrderIndex      int
	IsExpanded      bool
	BackgroundColor *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Position is where a moved node lands relative to its target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// ParsePosition maps user input to a Position.
func ParsePosition(s string) (Position, bool) {
	switch Position(s) {
	case PositionBefore, PositionAfter, PositionInside:
		return Position(s), true
	}
	return "", false
}

// Palette lists the background colors offered for nodes.
var Palette = []string{
	"#ffcdd2", "#f8bbd0", "#e1bee7", "#d1c4e9", "#c5cae9",
	"#bbdefb", "#b3e5fc", "#b2ebf2", "#b2dfdb", "#c8e6c9",
	"#dcedc8", "#f0f4c3", "#fff9c4", "#ffecb3", "#ffe0b2",
}
