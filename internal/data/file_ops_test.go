package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/storage"
)

func TestExportImportRoundTrip(t *testing.T) {
	e, m := newTestEditor(t)
	ctx := context.Background()
	ids := seed(t, e, "Plans", "Work", "Home")
	_, err := e.AddChild(ctx, ids[0], "Report")
	require.NoError(t, err)
	color := model.Palette[5]
	require.NoError(t, e.Recolor(ctx, ids[1], &color))
	require.NoError(t, e.SetExpanded(ctx, ids[0], false))
	original := e.State()

	for _, format := range []string{storage.FormatJSON, storage.FormatYAML} {
		path := filepath.Join(t.TempDir(), "plans."+format)
		require.NoError(t, e.OpenTree(ctx, original.TreeID))
		require.NoError(t, e.Export(ctx, path, format))

		treeID, err := e.Import(ctx, path, format)
		require.NoError(t, err)
		assert.NotEqual(t, original.TreeID, treeID)
		assert.Equal(t, treeID, e.TreeID())
		assert.Equal(t, "Plans", e.State().TreeName)
		assert.Equal(t, shape(original.Root), shape(e.State().Root))
		assert.False(t, e.State().CanUndo)
		requireMirrorsStore(t, m, e)
	}
}

func TestExportIsStable(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()
	seed(t, e, "Plans", "Work")

	path := filepath.Join(t.TempDir(), "plans.json")
	require.NoError(t, e.Export(ctx, path, storage.FormatJSON))
	exported, err := os.ReadFile(path)
	require.NoError(t, err)

	encoded, err := e.Encode(storage.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, string(exported), string(encoded))

	root, err := storage.DecodeTree(exported, storage.FormatJSON)
	require.NoError(t, err)
	again, err := storage.EncodeTree(root, storage.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, string(exported), string(again))
}

func TestImportMissingIDIsRejected(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()
	seed(t, e, "Keep", "me")
	before := e.State()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"text": "no id"}`), 0644))

	_, err := e.Import(ctx, path, storage.FormatJSON)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, storage.ErrInvalidDocument)

	after := e.State()
	assert.Equal(t, before.TreeID, after.TreeID)
	assert.Equal(t, before.Root, after.Root)
	trees, err := e.ListTrees(ctx)
	require.NoError(t, err)
	assert.Len(t, trees, 1)
}

func TestImportEmptyChildIsRejected(t *testing.T) {
	e, _ := newTestEditor(t)
	ctx := context.Background()
	before := e.State()

	path := filepath.Join(t.TempDir(), "empty.json")
	doc := `{"id": "1", "text": "Trip", "children": [{"id": "2", "text": "Budget"}, {"id": "3", "text": ""}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := e.Import(ctx, path, storage.FormatJSON)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, storage.ErrInvalidDocument)

	assert.Equal(t, before.TreeID, e.State().TreeID)
	trees, err := e.ListTrees(ctx)
	require.NoError(t, err)
	assert.Len(t, trees, 1)
}

func TestExportUnsupportedFormat(t *testing.T) {
	e, _ := newTestEditor(t)
	err := e.Export(context.Background(), filepath.Join(t.TempDir(), "x.xml"), "xml")
	require.ErrorIs(t, err, ErrValidation)
}
