package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindtree/local-app/internal/model"
)

func sampleDoc() *model.Node {
	red := "#ffcdd2"
	return &model.Node{
		ID: "1", Text: "新規ツリー", IsExpanded: true,
		Children: []*model.Node{
			{ID: "2", Text: "child <a&b>", IsExpanded: false, BackgroundColor: &red, Children: []*model.Node{}},
			{ID: "3", Text: " notes ", IsExpanded: true, Children: []*model.Node{
				{ID: "4", Text: "leaf", IsExpanded: true, Children: []*model.Node{}},
			}},
		},
	}
}

func TestJSONRoundTripIsExact(t *testing.T) {
	exported, err := EncodeTree(sampleDoc(), FormatJSON)
	require.NoError(t, err)

	imported, err := DecodeTree(exported, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(), imported)

	again, err := EncodeTree(imported, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, string(exported), string(again))
}

func TestJSONShape(t *testing.T) {
	data, err := EncodeTree(&model.Node{ID: "1", Text: "a", Children: []*model.Node{}}, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"id\": \"1\",\n  \"text\": \"a\",\n  \"children\": [],\n  \"isExpanded\": false\n}", string(data))
}

func TestYAMLRoundTrip(t *testing.T) {
	data, err := EncodeTree(sampleDoc(), FormatYAML)
	require.NoError(t, err)
	back, err := DecodeTree(data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(), back)
}

func TestDecodeRejectsInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"missing id":        `{"text": "no id"}`,
		"empty id":          `{"id": "", "text": "x"}`,
		"missing text":      `{"id": "1"}`,
		"text not a string": `{"id": "1", "text": 5}`,
		"invalid child":     `{"id": "1", "text": "x", "children": [{"text": "y"}]}`,
		"null child":        `{"id": "1", "text": "x", "children": [null]}`,
		"null document":     `null`,
		"not json":          `{`,
		"fractional id":     `{"id": 1.5, "text": "x"}`,
		"empty child text":  `{"id": "1", "text": "x", "children": [{"id": "2", "text": ""}]}`,
		"blank grandchild":  `{"id": "1", "text": "x", "children": [{"id": "2", "text": "y", "children": [{"id": "3", "text": "  "}]}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTree([]byte(doc), FormatJSON)
			require.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestDecodeAcceptsEmptyRootText(t *testing.T) {
	root, err := DecodeTree([]byte(`{"id": "1", "text": "", "children": [{"id": "2", "text": "y"}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "", root.Text)
	assert.Equal(t, "y", root.Children[0].Text)
}

func TestDecodeAcceptsNumericIDs(t *testing.T) {
	root, err := DecodeTree([]byte(`{"id": 7, "text": "x", "children": [{"id": 8, "text": "y"}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "7", root.ID)
	assert.Equal(t, "8", root.Children[0].ID)
	assert.True(t, root.Children[0].IsExpanded, "isExpanded defaults to true")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := EncodeTree(sampleDoc(), "xml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = DecodeTree([]byte("{}"), "xml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, FileExport(sampleDoc(), path, FormatJSON))

	root, err := FileImport(path, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(), root)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"text": "no id"}`), 0644))
	_, err = FileImport(bad, FormatJSON)
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = FileImport(filepath.Join(t.TempDir(), "missing.json"), FormatJSON)
	require.Error(t, err)
}
