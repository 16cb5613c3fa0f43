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


// Package ai provides the embedding abstraction used by the article pipeline.
//
// Embedders map text to L2-normalized vectors of a fixed dimension. The
// indexer embeds the title, abstract and summary of each article and the
// searcher embeds free-text queries; both depend only on the Embedder
// interface defined here.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types. Test constructors (mock.NewMockEmbedder) return concrete
// types so tests can inject behavior and assert call counts.
//
// # Caching
//
// CachedEmbedder wraps any Embedder with an LRU cache keyed by text. The
// openai provider enables it when Config.CacheSize is positive.
package ai
