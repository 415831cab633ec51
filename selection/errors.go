package selection

import "errors"

var (
	// ErrUnsupportedSelectionType is returned for a descriptor whose type is
	// not property, container, table or null.
	ErrUnsupportedSelectionType = errors.New("unsupported selection type")
	// ErrInvalidSelection is returned when the fields of a descriptor are
	// not valid for its type.
	ErrInvalidSelection = errors.New("invalid selection")
)
