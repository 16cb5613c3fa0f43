package api

import "errors"

var (
	// ErrBackendRequired indicates the server was constructed without a search backend.
	ErrBackendRequired = errors.New("search backend is required")
)
