package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindtree/local-app/internal/config"
	"mindtree/local-app/internal/generate"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/storage"
	"mindtree/local-app/internal/tree"
)

func testConfig(dir string) *model.Config {
	cfg := config.Default()
	cfg.DatabaseDir = dir
	cfg.EditDebounceMs = 20
	return cfg
}

func newTestManagerWithStore(t *testing.T, wrap func(storage.Store) storage.Store, gen generate.Generator) *DataManager {
	t.Helper()
	cfg := testConfig(t.TempDir())
	s, err := storage.NewStorage(cfg, log.NewNopLogger())
	require.NoError(t, err)

	var store storage.Store = s
	if wrap != nil {
		store = wrap(s)
	}
	m, err := NewDataManager(store, gen, cfg, log.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		m.EventManager.Wait()
		_ = s.Close()
	})
	return m
}

func newTestManager(t *testing.T, gen generate.Generator) *DataManager {
	return newTestManagerWithStore(t, nil, gen)
}

func newTestEditor(t *testing.T) (*Editor, *DataManager) {
	t.Helper()
	m := newTestManager(t, nil)
	e, err := m.NewEditor(context.Background(), "test")
	require.NoError(t, err)
	return e, m
}

// seed renames the root to rootText and appends children with the given texts.
func seed(t *testing.T, e *Editor, rootText string, children ...string) []string {
	t.Helper()
	ctx := context.Background()
	root := e.State().Root
	require.NoError(t, e.Rename(ctx, root.ID, rootText))
	ids := make([]string, 0, len(children))
	for _, c := range children {
		id, err := e.AddChild(ctx, root.ID, c)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func childTexts(n *model.Node) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Text)
	}
	return out
}

// shape renders a tree without its ids.
func shape(n *model.Node) string {
	var b strings.Builder
	var visit func(n *model.Node)
	visit = func(n *model.Node) {
		b.WriteString(n.Text)
		if n.BackgroundColor != nil {
			fmt.Fprintf(&b, "[%s]", *n.BackgroundColor)
		}
		if !n.IsExpanded {
			b.WriteString("-")
		}
		b.WriteString("(")
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString(",")
			}
			visit(c)
		}
		b.WriteString(")")
	}
	visit(n)
	return b.String()
}

// requireMirrorsStore checks that the canonical tree equals the persisted one.
func requireMirrorsStore(t require.TestingT, m *DataManager, e *Editor) {
	st := e.State()
	rows, err := m.Store.GetTreeNodes(context.Background(), st.TreeID)
	require.NoError(t, err)
	persisted, err := tree.FromRows(rows)
	require.NoError(t, err)
	require.Equal(t, persisted, st.Root)

	got, err := m.Store.GetTree(context.Background(), st.TreeID)
	require.NoError(t, err)
	require.Equal(t, got.Name, st.TreeName)
}

func TestOpenDefaultCreatesPlaceholderTree(t *testing.T) {
	e, m := newTestEditor(t)

	st := e.State()
	assert.Equal(t, model.PlaceholderText, st.Root.Text)
	assert.Equal(t, model.PlaceholderText, st.TreeName)
	assert.Equal(t, st.Root.ID, st.Selected)
	assert.False(t, st.CanUndo)

	trees, err := e.ListTrees(context.Background())
	require.NoError(t, err)
	assert.Len(t, trees, 1)

	// a second session opens the same, most recent tree
	other, err := m.NewEditor(context.Background(), "other")
	require.NoError(t, err)
	assert.Equal(t, st.TreeID, other.TreeID())
}

func TestAddSiblingKeepsOrder(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B")

	c, err := e.AddSibling(ctx, ids[0], "C")
	require.NoError(t, err)
	require.NotEmpty(t, c)

	_, err = e.AddSibling(ctx, ids[0], "B2")
	require.NoError(t, err)

	st := e.State()
	assert.Equal(t, []string{"B", "B2", "C"}, childTexts(st.Root))
	assert.Equal(t, "B2", tree.Find(st.Root, st.Selected).Text)
	requireMirrorsStore(t, m, e)
}

func TestAddSiblingOfRootIsNoop(t *testing.T) {
	e, _ := newTestEditor(t)
	before := e.State()

	id, err := e.AddSibling(context.Background(), before.Root.ID, "nope")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, before.Root, e.State().Root)
	assert.False(t, e.State().CanUndo)
}

func TestAddChildExpandsParent(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B")

	require.NoError(t, e.SetExpanded(ctx, ids[0], false))
	_, err := e.AddChild(ctx, ids[0], "B1")
	require.NoError(t, err)

	b := tree.Find(e.State().Root, ids[0])
	assert.True(t, b.IsExpanded)
	assert.Equal(t, []string{"B1"}, childTexts(b))
	requireMirrorsStore(t, m, e)
}

func TestValidationErrors(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B")
	before := e.State().Root

	require.ErrorIs(t, e.Rename(ctx, ids[0], "   "), ErrValidation)
	_, err := e.AddChild(ctx, ids[0], "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = e.CreateTree(ctx, " ")
	require.ErrorIs(t, err, ErrValidation)
	red := "#123456"
	require.ErrorIs(t, e.Recolor(ctx, ids[0], &red), ErrValidation)
	require.ErrorIs(t, e.Select("missing"), ErrValidation)

	assert.Equal(t, before, e.State().Root)
}

func TestRenameRootRenamesTree(t *testing.T) {
	e, m := newTestEditor(t)
	seed(t, e, "Project")

	assert.Equal(t, "Project", e.State().TreeName)
	requireMirrorsStore(t, m, e)
}

func TestRecolorAndClear(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B")

	color := model.Palette[3]
	require.NoError(t, e.Recolor(ctx, ids[0], &color))
	got := tree.Find(e.State().Root, ids[0]).BackgroundColor
	require.NotNil(t, got)
	assert.Equal(t, color, *got)
	requireMirrorsStore(t, m, e)

	require.NoError(t, e.Recolor(ctx, ids[0], nil))
	assert.Nil(t, tree.Find(e.State().Root, ids[0]).BackgroundColor)
	requireMirrorsStore(t, m, e)
}

func TestToggleExpandedIsNotRecorded(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B")
	past, _ := e.History()

	require.NoError(t, e.ToggleExpanded(ctx, ids[0]))
	assert.False(t, tree.Find(e.State().Root, ids[0]).IsExpanded)
	requireMirrorsStore(t, m, e)

	after, _ := e.History()
	assert.Equal(t, len(past), len(after))
}

func TestDeleteRootResetsToPlaceholder(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	seed(t, e, "A", "B", "C")
	before := shape(e.State().Root)

	require.NoError(t, e.Delete(ctx, e.State().Root.ID))
	st := e.State()
	assert.Equal(t, model.PlaceholderText, st.Root.Text)
	assert.Empty(t, st.Root.Children)
	assert.Equal(t, model.PlaceholderText, st.TreeName)
	assert.Equal(t, st.Root.ID, st.Selected)
	requireMirrorsStore(t, m, e)

	ok, err := e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, shape(e.State().Root))
	assert.Equal(t, "A", e.State().TreeName)
	requireMirrorsStore(t, m, e)
}

func TestDeleteMovesSelectionToParent(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B")
	child, err := e.AddChild(ctx, ids[0], "B1")
	require.NoError(t, err)
	require.NoError(t, e.Select(child))

	require.NoError(t, e.Delete(ctx, ids[0]))
	assert.Equal(t, e.State().Root.ID, e.State().Selected)
}

func TestMoveSelfIsNoop(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B", "C")
	child, err := e.AddChild(ctx, ids[0], "B1")
	require.NoError(t, err)
	before := e.State().Root
	past, _ := e.History()

	require.NoError(t, e.Move(ctx, ids[0], ids[0], model.PositionInside))
	require.NoError(t, e.Move(ctx, ids[0], child, model.PositionInside))
	require.NoError(t, e.Move(ctx, ids[0], before.ID, model.PositionBefore))

	assert.Equal(t, before, e.State().Root)
	after, _ := e.History()
	assert.Len(t, after, len(past))
}

func TestMoveUndoRestoresExactPosition(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B", "C", "D")

	require.NoError(t, e.Move(ctx, ids[2], ids[0], model.PositionBefore))
	assert.Equal(t, []string{"D", "B", "C"}, childTexts(e.State().Root))
	requireMirrorsStore(t, m, e)

	require.NoError(t, e.Move(ctx, ids[0], ids[1], model.PositionInside))
	assert.Equal(t, []string{"D", "C"}, childTexts(e.State().Root))
	requireMirrorsStore(t, m, e)

	for _, want := range [][]string{{"D", "B", "C"}, {"B", "C", "D"}} {
		ok, err := e.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, childTexts(e.State().Root))
		requireMirrorsStore(t, m, e)
	}
}

func TestDropResolvesPosition(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "A", "B", "C")

	moved, err := e.Drop(ctx, ids[1], ids[0], 2, 30)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"C", "B"}, childTexts(e.State().Root))

	moved, err = e.Drop(ctx, ids[1], ids[0], 15, 30)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"B"}, childTexts(e.State().Root))
	assert.Equal(t, []string{"C"}, childTexts(tree.Find(e.State().Root, ids[0])))
	requireMirrorsStore(t, m, e)

	moved, err = e.Drop(ctx, ids[0], ids[1], 15, 30)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestTreeLifecycle(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()
	first := e.TreeID()

	created, err := e.CreateTree(ctx, "  Second  ")
	require.NoError(t, err)
	assert.Equal(t, "Second", created.Name)
	assert.Equal(t, created.ID, e.TreeID())
	assert.Equal(t, "Second", e.State().Root.Text)

	require.NoError(t, e.RenameTree(ctx, created.ID, "Renamed"))
	assert.Equal(t, "Renamed", e.State().TreeName)

	require.NoError(t, e.OpenTree(ctx, first))
	assert.Equal(t, first, e.TreeID())
	require.ErrorIs(t, e.OpenTree(ctx, 9999), ErrValidation)

	require.NoError(t, e.DeleteTree(ctx, first))
	assert.Equal(t, created.ID, e.TreeID())

	require.NoError(t, e.DeleteTree(ctx, created.ID))
	assert.NotZero(t, e.TreeID())
	assert.Equal(t, model.PlaceholderText, e.State().TreeName)
	require.ErrorIs(t, e.DeleteTree(ctx, created.ID), ErrValidation)
}

func TestSearchAndContext(t *testing.T) {
	e, _ := newTestEditor(t)
	ids := seed(t, e, "Trip", "Budget", "Packing list")

	matches := e.Search("pack")
	require.NotEmpty(t, matches)
	assert.Equal(t, ids[1], matches[0].ID)

	assert.Equal(t, "- Trip\n  👉 Budget\n  - Packing list\n", e.Context(ids[0]))
}

// failingStore fails every text update, inside or outside transactions.
type failingStore struct {
	storage.Store
}

var errDiskFull = errors.New("disk full")

func (f failingStore) UpdateNodeText(context.Context, int64, string) error {
	return errDiskFull
}

func (f failingStore) Tx(ctx context.Context, fn func(storage.Store) error) error {
	return f.Store.Tx(ctx, func(tx storage.Store) error {
		return fn(failingStore{tx})
	})
}

func TestPersistenceFailureLeavesTreeUnchanged(t *testing.T) {
	m := newTestManagerWithStore(t, func(s storage.Store) storage.Store { return failingStore{s} }, nil)
	e, err := m.NewEditor(context.Background(), "test")
	require.NoError(t, err)
	ctx := context.Background()

	id, err := e.AddChild(ctx, e.State().Root.ID, "B")
	require.NoError(t, err)
	before := e.State()

	err = e.Rename(ctx, id, "B2")
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, errDiskFull)

	after := e.State()
	assert.Equal(t, before.Root, after.Root)
	past, _ := e.History()
	assert.Len(t, past, 1)
	requireMirrorsStore(t, m, e)
}
