package dragdrop

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/tree"
)

func TestResolveDropPosition(t *testing.T) {
	tests := []struct {
		offset float64
		want   model.Position
	}{
		{0, model.PositionBefore},
		{4.9, model.PositionBefore},
		{5, model.PositionInside},
		{15, model.PositionInside},
		{25, model.PositionInside},
		{25.1, model.PositionAfter},
		{30, model.PositionAfter},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.offset), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDropPosition(tt.offset, 30, DefaultThreshold))
		})
	}
}

func genTree(t *rapid.T) *model.Node {
	n := rapid.IntRange(1, 20).Draw(t, "size")
	nodes := make([]*model.Node, n+1)
	for i := 1; i <= n; i++ {
		nodes[i] = &model.Node{ID: fmt.Sprint(i), Children: []*model.Node{}}
		if i > 1 {
			p := rapid.IntRange(1, i-1).Draw(t, fmt.Sprintf("parent%d", i))
			nodes[p].Children = append(nodes[p].Children, nodes[i])
		}
	}
	return nodes[1]
}

func TestValidateDrop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t)
		n := tree.Count(root)
		a := fmt.Sprint(rapid.IntRange(1, n).Draw(t, "a"))
		b := fmt.Sprint(rapid.IntRange(1, n).Draw(t, "b"))

		want := a != b && !tree.IsDescendant(root, a, b)
		require.Equal(t, want, ValidateDrop(root, a, b))
	})
}

func TestDropEmitsMove(t *testing.T) {
	root := &model.Node{ID: "1", Children: []*model.Node{
		{ID: "2", Children: []*model.Node{{ID: "3", Children: []*model.Node{}}}},
		{ID: "4", Children: []*model.Node{}},
	}}

	type move struct {
		source, target string
		pos            model.Position
	}
	var got []move
	r := NewResolver(0, MoverFunc(func(_ context.Context, s, tg string, p model.Position) error {
		got = append(got, move{s, tg, p})
		return nil
	}))

	ok, err := r.Drop(context.Background(), root, "4", "2", 2, 30)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Drop(context.Background(), root, "2", "3", 15, 30)
	require.NoError(t, err)
	assert.False(t, ok, "drop into own subtree")

	ok, err = r.Drop(context.Background(), root, "2", "2", 15, 30)
	require.NoError(t, err)
	assert.False(t, ok, "drop onto self")

	assert.Equal(t, []move{{"4", "2", model.PositionBefore}}, got)
}

func TestDropPropagatesMoverError(t *testing.T) {
	root := &model.Node{ID: "1", Children: []*model.Node{{ID: "2", Children: []*model.Node{}}}}
	boom := errors.New("boom")
	r := NewResolver(5, MoverFunc(func(context.Context, string, string, model.Position) error { return boom }))

	ok, err := r.Drop(context.Background(), root, "2", "1", 15, 30)
	require.ErrorIs(t, err, boom)
	assert.False(t, ok)
}
