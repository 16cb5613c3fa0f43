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

// Package search implements the hybrid article query.
//
// A query is embedded while a publication date range is extracted from its
// text. The embedding drives an approximate nearest neighbor search over the
// vector index; the returned IDs are then fetched from the relational store
// under the date range and put back into vector rank order.
//
// A search either returns the complete ordered result or an empty result
// together with an error wrapping core.ErrEmbedding, core.ErrStoreUnavailable
// or the context error. Zero matches is not an error.
package search
