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


package search

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyQuery is returned when the query normalizes to an empty string.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNoArtifacts is returned when no artifact set is available to search.
	ErrNoArtifacts = errors.New("no artifact set available")

	// ErrAllTiersFailed is returned when every eligible tier failed or timed
	// out and no results were collected.
	ErrAllTiersFailed = errors.New("all search tiers failed")

	// ErrInvalidThresholds is returned when the low threshold is not below
	// the high threshold or either falls outside [0,1].
	ErrInvalidThresholds = errors.New("invalid search thresholds")
)
