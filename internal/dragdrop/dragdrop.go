// Package dragdrop turns pointer drops into validated move requests.
package dragdrop

import (
	"context"

	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/tree"
)

// DefaultThreshold is the distance in pixels from a target's top or bottom edge
// that selects a before or after drop.
const DefaultThreshold = 5

// Mover receives validated drops.
type Mover interface {
	MoveNode(ctx context.Context, sourceID, targetID string, pos model.Position) error
}

// MoverFunc adapts a function to Mover.
type MoverFunc func(ctx context.Context, sourceID, targetID string, pos model.Position) error

func (f MoverFunc) MoveNode(ctx context.Context, sourceID, targetID string, pos model.Position) error {
	return f(ctx, sourceID, targetID, pos)
}

// ResolveDropPosition picks before or after within threshold of the target's top or
// bottom edge and inside for the rest.
func ResolveDropPosition(offset, height, threshold float64) model.Position {
	switch {
	case offset < threshold:
		return model.PositionBefore
	case offset > height-threshold:
		return model.PositionAfter
	default:
		return model.PositionInside
	}
}

// ValidateDrop rejects dropping a node onto itself or into its own subtree.
func ValidateDrop(root *model.Node, sourceID, targetID string) bool {
	if sourceID == targetID {
		return false
	}
	source := tree.Find(root, sourceID)
	if source == nil {
		return true
	}
	return tree.Find(source, targetID) == nil
}

// Resolver validates drops and forwards them to a Mover.
type Resolver struct {
	Threshold float64
	Mover     Mover
}

// NewResolver creates a Resolver; a non-positive threshold uses DefaultThreshold.
func NewResolver(threshold float64, mover Mover) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{Threshold: threshold, Mover: mover}
}

// Drop resolves the position of a drop on targetID and emits the move. It reports
// whether a move was emitted; invalid drops are ignored.
func (r *Resolver) Drop(ctx context.Context, root *model.Node, sourceID, targetID string, offset, height float64) (bool, error) {
	if !ValidateDrop(root, sourceID, targetID) {
		return false, nil
	}
	pos := ResolveDropPosition(offset, height, r.Threshold)
	if err := r.Mover.MoveNode(ctx, sourceID, targetID, pos); err != nil {
		return false, err
	}
	return true, nil
}
