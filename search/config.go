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

import (
	"strconv"
	"time"
)

// Config holds the tuning parameters of the cascade. The source tunings for
// the thresholds varied between deployments, so nothing here is fixed; the
// defaults are a reasonable middle ground.
type Config struct {
	// HighThreshold is the primary-match cutoff. A tier result at or above
	// it classifies as primary and terminates the cascade early.
	HighThreshold float64

	// LowThreshold is the floor of the context band. Results in
	// [LowThreshold, HighThreshold) compete for the single context slot.
	LowThreshold float64

	// MaxResults bounds the number of primary matches returned.
	MaxResults int

	// TierBudget is the soft time budget per tier. A tier exceeding it is
	// abandoned and the cascade moves on.
	TierBudget time.Duration

	// EditRadius bounds the edit-distance tier, counted in runes.
	EditRadius int

	// BucketTolerance widens the length-bucket prefilter of the fuzzy tier,
	// as a fraction of the query length.
	BucketTolerance float64

	// BoostProject and BoostFileType are the additive context-affinity
	// adjustments, applied before classification and capped at 1.0.
	BoostProject  float64
	BoostFileType float64

	// CacheSize is the capacity of the query result cache. Zero disables
	// caching.
	CacheSize int
}

// DefaultConfig returns the default cascade configuration.
func DefaultConfig() *Config {
	return &Config{
		HighThreshold:   0.92,
		LowThreshold:    0.49,
		MaxResults:      10,
		TierBudget:      250 * time.Millisecond,
		EditRadius:      2,
		BucketTolerance: 0.30,
		BoostProject:    0.05,
		BoostFileType:   0.03,
		CacheSize:       256,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.HighThreshold <= 0 || c.HighThreshold > 1 {
		return ErrInvalidThresholds
	}
	if c.LowThreshold < 0 || c.LowThreshold >= c.HighThreshold {
		return ErrInvalidThresholds
	}
	return nil
}

// Options tune a single query. The zero value means "searcher defaults".
type Options struct {
	// MaxResults overrides the configured primary-result bound when > 0.
	MaxResults int

	// MinScore drops any result below it, past classification.
	MinScore float64

	// TierCutoff stops the cascade after the given tier number when > 0.
	// Meant for diagnostics.
	TierCutoff int

	// Project and FileType are affinity hints matched against each entry's
	// context id for boosting.
	Project  string
	FileType string
}

func (o Options) cacheKey() string {
	// MinScore and MaxResults shape the returned slice, so they key the
	// cache too.
	return o.Project + "\x1f" + o.FileType + "\x1f" +
		strconv.Itoa(o.TierCutoff) + "\x1f" +
		strconv.FormatFloat(o.MinScore, 'f', -1, 64) + "\x1f" +
		strconv.Itoa(o.MaxResults)
}
