package graph

import "errors"

var (
	// ErrNotFound is returned when a node or edge lookup fails.
	ErrNotFound = errors.New("not found")

	// ErrUnknownNode is returned when an edge references a source or
	// target node that is not part of the catalog.
	ErrUnknownNode = errors.New("unknown node")
)
