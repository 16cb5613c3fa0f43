// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrCollectionNotFound indicates the vector collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionNotLoaded indicates a search against a collection that was not loaded.
	ErrCollectionNotLoaded = errors.New("collection not loaded")

	// ErrIndexNotBuilt indicates Load was called before an index was built.
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrDimensionMismatch indicates a vector does not match the collection dimension.
	ErrDimensionMismatch = errors.New("vector dimension does not match collection")

	// ErrUnsupportedDriver indicates an unknown relational driver name.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// IsUnavailable reports whether err means the vector collection cannot serve
// queries right now, typically because it is being recreated.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrCollectionNotFound) ||
		errors.Is(err, ErrCollectionNotLoaded) ||
		errors.Is(err, ErrStorageClosed)
}
