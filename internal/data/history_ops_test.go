package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"mindtree/local-app/internal/history"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/tree"
)

func TestUndoRedoRename(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	root := e.State().Root.ID
	require.NoError(t, e.Rename(ctx, root, "A"))
	require.NoError(t, e.Rename(ctx, root, "A2"))

	past, _ := e.History()
	assert.Equal(t, history.EditNode{NodeID: root, OldText: "A", NewText: "A2"}, past[len(past)-1])

	ok, err := e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", e.State().Root.Text)
	assert.Equal(t, "A", e.State().TreeName)

	ok, err = e.Redo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A2", e.State().Root.Text)
	requireMirrorsStore(t, m, e)
}

func TestUndoRedoUnderflow(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()

	ok, err := e.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = e.Redo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewActionClearsRedo(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B")

	_, err := e.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, e.State().CanRedo)

	require.NoError(t, e.Rename(ctx, e.State().Root.ID, "A3"))
	assert.False(t, e.State().CanRedo)
	_, future := e.History()
	assert.Empty(t, future)
	assert.Nil(t, tree.Find(e.State().Root, ids[0]))
}

func TestUndoDeleteRecreatesSubtree(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B", "C")
	_, err := e.AddChild(ctx, ids[0], "B1")
	require.NoError(t, err)
	color := model.Palette[0]
	require.NoError(t, e.Recolor(ctx, ids[0], &color))
	require.NoError(t, e.SetExpanded(ctx, ids[0], false))
	before := shape(e.State().Root)

	require.NoError(t, e.Delete(ctx, ids[0]))
	assert.Equal(t, "A(C())", shape(e.State().Root))

	// undo recreates the nodes under new ids; the recolor below it in history must follow
	for i := 0; i < 2; i++ {
		ok, err := e.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, before, shape(e.State().Root))
		requireMirrorsStore(t, m, e)

		ok, err = e.Redo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "A(C())", shape(e.State().Root))
	}

	ok, err := e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A(B-(B1()),C())", shape(e.State().Root), "expansion is not part of history")
	requireMirrorsStore(t, m, e)
}

func TestRedoAfterRootDeleteKeepsPlaceholderChildren(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	seed(t, e, "A", "B")

	require.NoError(t, e.Delete(ctx, e.State().Root.ID))
	_, err := e.AddChild(ctx, e.State().Root.ID, "x")
	require.NoError(t, err)
	want := shape(e.State().Root)
	assert.Equal(t, model.PlaceholderText+"(x())", want)

	for i := 0; i < 2; i++ {
		ok, err := e.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, "A(B())", shape(e.State().Root))

	for i := 0; i < 2; i++ {
		ok, err := e.Redo(ctx)
		require.NoError(t, err)
		require.True(t, ok, "redo %d", i+1)
	}
	assert.Equal(t, want, shape(e.State().Root))
	_, future := e.History()
	assert.Empty(t, future)
	requireMirrorsStore(t, m, e)
}

func TestHistorySkipsNodesDeletedElsewhere(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	first, err := m.NewEditor(ctx, "first")
	require.NoError(t, err)
	ids := seed(t, first, "A", "B")
	require.NoError(t, first.Rename(ctx, ids[0], "B2"))

	second, err := m.NewEditor(ctx, "second")
	require.NoError(t, err)
	require.Equal(t, first.TreeID(), second.TreeID())
	require.NoError(t, second.Delete(ctx, ids[0]))

	m.EventManager.Wait()
	require.NoError(t, first.Reload(ctx))
	assert.Nil(t, tree.Find(first.State().Root, ids[0]))

	pastBefore, _ := first.History()
	ok, err := first.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	requireMirrorsStore(t, m, first)

	// the skipped rename is on neither stack
	past, future := first.History()
	assert.Len(t, past, len(pastBefore)-1)
	assert.Empty(t, future)
}

// TestUndoRedoAllRestoresTrees drives random edits and checks that the canonical tree
// mirrors storage after each step, that undoing everything restores the start and that
// redoing everything restores the end.
func TestUndoRedoAllRestoresTrees(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	seed(t, e, "root", "a", "b")

	rapid.Check(t, func(rt *rapid.T) {
		require.NoError(rt, e.OpenTree(ctx, e.TreeID()))
		initial := shape(e.State().Root)

		steps := rapid.IntRange(1, 8).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			var ids []string
			tree.Walk(e.State().Root, func(n, _ *model.Node, _ int) { ids = append(ids, n.ID) })
			id := rapid.SampledFrom(ids).Draw(rt, "node")
			other := rapid.SampledFrom(ids).Draw(rt, "other")

			var err error
			switch rapid.IntRange(0, 5).Draw(rt, "op") {
			case 0:
				_, err = e.AddChild(ctx, id, rapid.StringMatching(`[a-z]{1,4}`).Draw(rt, "text"))
			case 1:
				_, err = e.AddSibling(ctx, id, rapid.StringMatching(`[a-z]{1,4}`).Draw(rt, "text"))
			case 2:
				err = e.Rename(ctx, id, rapid.StringMatching(`[a-z]{1,4}`).Draw(rt, "text"))
			case 3:
				err = e.Delete(ctx, id)
			case 4:
				pos := rapid.SampledFrom([]model.Position{model.PositionBefore, model.PositionAfter, model.PositionInside}).Draw(rt, "pos")
				err = e.Move(ctx, id, other, pos)
			case 5:
				color := rapid.SampledFrom(model.Palette).Draw(rt, "color")
				err = e.Recolor(ctx, id, &color)
			}
			require.NoError(rt, err)
			requireMirrorsStore(rt, m, e)
		}

		final := shape(e.State().Root)

		for {
			ok, err := e.Undo(ctx)
			require.NoError(rt, err)
			if !ok {
				break
			}
		}
		require.Equal(rt, initial, shape(e.State().Root))
		requireMirrorsStore(rt, m, e)

		_, future := e.History()
		redone := 0
		for {
			ok, err := e.Redo(ctx)
			require.NoError(rt, err)
			if !ok {
				break
			}
			redone++
		}
		require.Equal(rt, len(future), redone, "every redo applied")
		require.Equal(rt, final, shape(e.State().Root))
		requireMirrorsStore(rt, m, e)
	})
}
