// Package storage provides functionality for persisting and retrieving mindtree data.
// This file handles the import and export of trees to and from files.
package storage

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"mindtree/local-app/internal/model"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// EncodeTree serializes a tree. JSON output uses two-space indentation and is stable,
// so decoding and re-encoding an exported document reproduces it byte for byte.
func EncodeTree(root *model.Node, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(root, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// rawNode accepts what a document may contain so that validation can report
// missing fields instead of silently zeroing them.
type rawNode struct {
	ID              interface{} `json:"id" yaml:"id"`
	Text            *string     `json:"text" yaml:"text"`
	Children        []*rawNode  `json:"children" yaml:"children"`
	IsExpanded      *bool       `json:"isExpanded" yaml:"isExpanded"`
	BackgroundColor *string     `json:"backgroundColor" yaml:"backgroundColor"`
}

// DecodeTree parses and validates a document: every node needs an id and a string text,
// and only the root may have empty text.
func DecodeTree(data []byte, format string) (*model.Node, error) {
	var raw *rawNode
	var err error
	switch format {
	case FormatJSON, "":
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}
	return raw.toNode("root")
}

func (r *rawNode) toNode(path string) (*model.Node, error) {
	id, ok := normalizeID(r.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing id", ErrInvalidDocument, path)
	}
	if r.Text == nil {
		return nil, fmt.Errorf("%w: %s: text must be a string", ErrInvalidDocument, path)
	}
	n := &model.Node{
		ID:              id,
		Text:            *r.Text,
		Children:        make([]*model.Node, 0, len(r.Children)),
		IsExpanded:      r.IsExpanded == nil || *r.IsExpanded,
		BackgroundColor: r.BackgroundColor,
	}
	for i, c := range r.Children {
		if c == nil {
			return nil, fmt.Errorf("%w: %s.children[%d]: null node", ErrInvalidDocument, path, i)
		}
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		child, err := c.toNode(childPath)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(child.Text) == "" {
			return nil, fmt.Errorf("%w: %s: empty text", ErrInvalidDocument, childPath)
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// normalizeID accepts non-empty strings and integral numbers.
func normalizeID(v interface{}) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		if id != math.Trunc(id) {
			return "", false
		}
		return strconv.FormatInt(int64(id), 10), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	default:
		return "", false
	}
}

// FileExport writes a tree to a file in the specified format (json or yaml).
func FileExport(root *model.Node, filename, format string) error {
	data, err := EncodeTree(root, format)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// FileImport reads and validates a tree from a file in the specified format.
func FileImport(filename, format string) (*model.Node, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	root, err := DecodeTree(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", filename, err)
	}
	return root, nil
}
