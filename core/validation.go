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

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the width of the title column in the relational store.
const MaxTitleLength = 255

// ValidateDocument validates a Document before it is written to the relational store.
//
// Validation rules:
//   - Title must not be empty
//   - Title must fit the relational column
//   - PublicationDate, when set, must not be in the future
//
// NOT validated:
//   - ID (assigned by the relational store)
//   - Summary and Keywords (derived metadata, may be absent)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if utf8.RuneCountInString(doc.Title) > MaxTitleLength {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrTitleTooLong)
	}

	if doc.PublicationDate != nil && !IsValidPublicationDate(*doc.PublicationDate) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidPublicationDate)
	}

	return nil
}

// IsValidPublicationDate checks if a publication date is valid (not after today).
func IsValidPublicationDate(ts time.Time) bool {
	return !TruncateDay(ts).After(TruncateDay(time.Now().In(ts.Location())))
}

// ValidateVector checks that a vector has the expected dimension.
func ValidateVector(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), dim)
	}
	return nil
}

// Validate compares an existing schema against the declared one.
// Returns an error wrapping ErrSchemaMismatch when they differ.
func (s CollectionSchema) Validate(declared CollectionSchema) error {
	if s == declared {
		return nil
	}
	return fmt.Errorf("%w: have %+v, want %+v", ErrSchemaMismatch, s, declared)
}
