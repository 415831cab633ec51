package document

import "errors"

var (
	// ErrIntegrity is returned when a commit, an edit or a seed would leave a
	// container pointing to a missing node, or an annotation out of its
	// text.
	ErrIntegrity = errors.New("document integrity violation")

	// ErrSchemaMismatch is returned when loading a snapshot made with
	// another schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInvalidObserver is returned when registering an observer that
	// can't be compared with ==.
	ErrInvalidObserver = errors.New("invalid observer")
)
