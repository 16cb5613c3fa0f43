package badger

import "errors"

var (
	// ErrBackendRequired is returned when a vector index is created without a backend.
	ErrBackendRequired = errors.New("badger backend is required")

	// ErrInvalidCollectionName is returned for empty names or names containing ':'.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)
