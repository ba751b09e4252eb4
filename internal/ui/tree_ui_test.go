package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mindtree/local-app/internal/model"
)

func sampleTree() *model.Node {
	color := model.Palette[0]
	return &model.Node{ID: "1", Text: "Root", IsExpanded: true, Children: []*model.Node{
		{ID: "2", Text: "A", IsExpanded: true, BackgroundColor: &color, Children: []*model.Node{
			{ID: "4", Text: "A1", IsExpanded: true, Children: []*model.Node{}},
		}},
		{ID: "3", Text: "B", IsExpanded: false, Children: []*model.Node{
			{ID: "5", Text: "hidden", IsExpanded: true, Children: []*model.Node{}},
		}},
		{ID: model.TransientPrefix + "x", Text: "", IsExpanded: true, Children: []*model.Node{}},
	}}
}

func TestTreeViewPlain(t *testing.T) {
	var buf bytes.Buffer
	NewTreeUI(&buf, false).TreeView(sampleTree(), "2", model.TransientPrefix+"x")

	want := strings.Join([]string{
		"Root [1]",
		"├── 👉 A [2]",
		"│   └── A1 [4]",
		"├── ▸ B [3] (+1)",
		"└── … (editing)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTreeViewNoTree(t *testing.T) {
	var buf bytes.Buffer
	NewTreeUI(&buf, false).TreeView(nil, "", "")
	assert.Equal(t, "No tree is open\n", buf.String())
}

func TestTreeList(t *testing.T) {
	var buf bytes.Buffer
	ui := NewTreeUI(&buf, false)
	ui.TreeList(nil, 0)
	assert.Equal(t, "No trees available\n", buf.String())

	buf.Reset()
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)
	ui.TreeList([]*model.Tree{
		{ID: 2, Name: "Second", LastAccessedAt: at},
		{ID: 1, Name: "First", LastAccessedAt: at},
	}, 1)
	assert.Equal(t, "Available trees:\n  [2] Second 2024-05-01 10:30\n* [1] First 2024-05-01 10:30\n", buf.String())
}

func TestPalettePlain(t *testing.T) {
	var buf bytes.Buffer
	NewTreeUI(&buf, false).Palette([]string{"#ffcdd2"})
	assert.Equal(t, "     #ffcdd2\n", buf.String())
}
