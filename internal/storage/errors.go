package storage

import "errors"

var (
	// ErrTreeNotFound is returned when a tree id has no row.
	ErrTreeNotFound = errors.New("tree not found")
	// ErrNodeNotFound is returned when a node id has no row.
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidDocument is returned when an imported file is not a node tree.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnsupportedFormat is returned for export/import formats other than json and yaml.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
