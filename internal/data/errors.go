package data

import "errors"

var (
	// ErrValidation is returned for rejected input. Nothing was changed.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence wraps storage failures. The canonical tree is left as it was
	// before the operation and the operation can be retried.
	ErrPersistence = errors.New("persistence failed")
	// ErrGeneration wraps generation client failures. The preview is cleared.
	ErrGeneration = errors.New("generation failed")
	// ErrNoTree is returned when an operation needs an open tree.
	ErrNoTree = errors.New("no tree is open")
)
