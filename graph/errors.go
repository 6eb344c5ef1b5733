package graph

import "errors"

var (
	// ErrEmptyNodeId is returned when a node is added without an id.
	ErrEmptyNodeId = errors.New("node id must not be empty")

	// ErrInvalidDepth is returned for impact queries with depth < 1.
	ErrInvalidDepth = errors.New("max depth must be at least 1")
)
