package model

import "errors"

// Graph errors
var (
	// ErrDuplicateID is returned when creating a node whose id is already used
	// in the graph.
	ErrDuplicateID = errors.New("duplicate node id")

	// ErrInvalidNode is returned when node data lacks an id or a type, or when
	// the factory could not build a node from it.
	ErrInvalidNode = errors.New("invalid node")

	// ErrNodeNotFound is returned when a path points to a node that does not
	// exist.
	ErrNodeNotFound = errors.New("node not found")
)

// Diff errors
var (
	// ErrUnsupportedDiff is returned when a diff does not fit the value it is
	// applied to (a text diff on an array, an unknown diff operation...).
	ErrUnsupportedDiff = errors.New("unsupported diff")

	// ErrInvalidPosition is returned when an offset is out of bounds.
	ErrInvalidPosition = errors.New("position out of bounds")
)

// Schema errors
var (
	// ErrUnknownType is returned when a node type is not registered in the
	// schema.
	ErrUnknownType = errors.New("unknown node type")

	// ErrInvalidSchema is returned when a node spec can't be registered.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrInvalidContent is returned when the children of a container don't
	// match the content expression of its type.
	ErrInvalidContent = errors.New("invalid content")
)
