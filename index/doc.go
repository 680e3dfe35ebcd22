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


// Package index provides the artifact structures behind each search tier and
// the builder that assembles them into versioned, immutable sets.
//
// Artifact kinds:
//   - ExactIndex: hash map from normalized source to variation group
//   - LengthBuckets: candidate pre-filter by source length
//   - PrefixTrie: rune trie over normalized sources
//   - BKTree: metric tree for bounded edit-distance queries
//   - NGramIndex: inverted character-trigram and word-bigram postings
//   - VectorIndex: HNSW graph over unit-normalized embeddings, one per
//     granularity (whole text, line, sentence)
//
// A Set is never mutated after the builder returns it. Readers of a
// published set need no locks; updates build a new set and swap a pointer.
package index
