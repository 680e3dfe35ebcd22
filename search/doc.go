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


// Package search runs the tiered matching cascade over built index
// artifacts.
//
// Tiers execute cheapest first: exact hash lookup, prefix trie, bounded
// edit distance, vector similarity at three granularities, n-gram overlap
// and finally fuzzy ratio scoring. The cascade terminates as soon as a
// match reaches the high-confidence threshold, so expensive tiers only run
// when the cheap ones come up short. Results are classified by the dual
// thresholds into primary matches and at most one lower-band context
// candidate.
//
// Every query runs against a single immutable artifact set, so searches
// need no locks and proceed in parallel with builds. A bounded LRU cache
// keyed by artifact version sits in front of the cascade.
package search
