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


package core

import "errors"

// Failure taxonomy shared by the indexing and query pipelines.
var (
	// ErrConfiguration indicates missing or invalid configuration. Fatal at startup.
	ErrConfiguration = errors.New("configuration fault")

	// ErrSchemaMismatch indicates an existing collection does not match the declared schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrEmbedding indicates the embedding model failed or returned an unusable vector.
	ErrEmbedding = errors.New("embedding fault")

	// ErrStoreUnavailable indicates the vector index or relational store failed or timed out.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong indicates the Title exceeds the relational column width.
	ErrTitleTooLong = errors.New("title exceeds 255 characters")

	// ErrInvalidPublicationDate indicates a publication date in the future.
	ErrInvalidPublicationDate = errors.New("publication date cannot be in the future")

	// ErrDimensionMismatch indicates vectors of different or unexpected lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidWeights indicates fusion weights that do not match the field count.
	ErrInvalidWeights = errors.New("invalid fusion weights")

	// ErrNegativeLength indicates an encoded vector with a negative element count.
	ErrNegativeLength = errors.New("negative length")
)
