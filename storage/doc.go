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


// Package storage provides the storage abstraction layer for the article pipeline.
//
// Two stores back the system:
//
//   - DocumentRepository: the relational store holding article records,
//     summaries and keywords (storage/sqlstore, SQLite or MySQL)
//   - VectorIndex: one fused embedding per article with an IVF index for
//     approximate nearest neighbor search (storage/badger)
//
// The document ID is the join key between them.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces so backends stay swappable:
//
//	docs, err := sqlstore.Open(ctx, cfg)      // returns storage.DocumentRepository
//	index, err := badger.NewVectorIndex(b, name) // returns storage.VectorIndex
//
// # Usage in Tests
//
//	index, backend, err := badger.NewMemoryVectorIndex("articles")
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer backend.Close()
package storage
