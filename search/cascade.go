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
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/transmem/ai"
	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/index"
)

// Result is the classified outcome of one cascade run.
type Result struct {
	// BestMatch is the highest-scoring primary match, nil when no match
	// reached the high threshold.
	BestMatch *core.QueryResult

	// Suggestions are the remaining primary matches, sorted descending.
	Suggestions []core.QueryResult

	// Context is the single best match from the secondary band, nil when
	// nothing landed between the two thresholds.
	Context *core.QueryResult

	// TierReached is the number of the deepest tier that ran to completion.
	TierReached int
}

// Searcher runs the tier cascade against immutable artifact sets.
// A Searcher is safe for concurrent use; every query reads one Set
// snapshot and shared state is limited to the bounded result cache.
type Searcher struct {
	embedder ai.Embedder
	config   *Config
	tiers    []Tier
	cache    *queryCache
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithConfig replaces the default cascade configuration.
func WithConfig(config *Config) Option {
	return func(s *Searcher) error {
		if config == nil {
			config = DefaultConfig()
		}
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTiers replaces the default tier list. Tiers run in slice order.
func WithTiers(tiers []Tier) Option {
	return func(s *Searcher) error {
		s.tiers = tiers
		return nil
	}
}

// NewSearcher creates a cascade searcher backed by the given embedder.
func NewSearcher(embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		embedder: embedder,
		config:   DefaultConfig(),
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.tiers == nil {
		s.tiers = defaultTiers(s.config)
	}

	cache, err := newQueryCache(s.config.CacheSize)
	if err != nil {
		return nil, err
	}
	s.cache = cache

	return s, nil
}

// InvalidateCache drops the cached results of one corpus. Call after
// swapping that corpus's active artifact version; other corpora served by
// the same Searcher keep their cache.
func (s *Searcher) InvalidateCache(corpusId string) {
	s.cache.purgeCorpus(corpusId)
}

// Search runs the cascade for a query against one artifact set.
func (s *Searcher) Search(ctx context.Context, set *index.Set, queryText string, opts Options) (*Result, error) {
	return s.SearchWithMonitor(ctx, set, queryText, opts, nil)
}

// SearchWithMonitor runs the cascade with per-tier observation hooks.
// Tiers execute cheapest first and the cascade terminates as soon as any
// boosted score reaches the high threshold. A tier whose artifact is
// missing or errored is skipped; a tier that fails or exceeds its time
// budget is abandoned and the cascade continues.
func (s *Searcher) SearchWithMonitor(ctx context.Context, set *index.Set, queryText string, opts Options, monitor SearchMonitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if set == nil {
		return nil, ErrNoArtifacts
	}

	normalized := analysis.Normalize(queryText)
	if normalized == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(queryText)

	key := cacheKey(set.CorpusId, set.Version, normalized, opts)
	if cached, ok := s.cache.get(key); ok {
		monitor.CacheHit(set.Version)
		monitor.Finish(cached)
		return cached, nil
	}

	maxResults := s.config.MaxResults
	if opts.MaxResults > 0 {
		maxResults = opts.MaxResults
	}

	q := &query{
		raw:        queryText,
		normalized: normalized,
		hash:       analysis.HashText(queryText),
		runeLen:    utf8.RuneCountInString(normalized),
		limit:      candidateLimit(maxResults),
		embed:      s.embedder.EmbedText,
	}

	best := make(map[core.ID]accumulated)
	tierReached := 0
	ran, failed := 0, 0

cascade:
	for _, tier := range s.tiers {
		if opts.TierCutoff > 0 && tier.Number() > opts.TierCutoff {
			break
		}
		if !tier.Ready(set) {
			monitor.TierSkipped(tier.Number(), tier.Kind())
			continue
		}

		monitor.TierStart(tier.Number(), tier.Kind())
		ran++

		tierCtx, cancel := context.WithTimeout(ctx, s.config.TierBudget)
		matches, err := tier.Match(tierCtx, q, set)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			s.logger.Warn("search tier abandoned",
				"tier", tier.Number(), "kind", tier.Kind().String(), "err", err)
			monitor.TierFailed(tier.Number(), tier.Kind(), err)
			continue
		}

		tierReached = tier.Number()
		terminate := false
		ids := make([]core.ID, 0, len(matches))
		for _, m := range matches {
			if set.Tombstoned(m.entry.Id) {
				continue
			}
			score := s.boost(m.score, m.entry.ContextId, opts)
			ids = append(ids, m.entry.Id)
			prev, seen := best[m.entry.Id]
			if !seen || score > prev.score {
				best[m.entry.Id] = accumulated{
					entry: m.entry,
					score: score,
					tier:  tier.Number(),
					kind:  tier.Kind(),
				}
			}
			if score >= s.config.HighThreshold {
				terminate = true
			}
		}
		monitor.TierResults(tier.Number(), ids)
		if terminate {
			break cascade
		}
	}

	if ran > 0 && failed == ran && len(best) == 0 {
		return nil, ErrAllTiersFailed
	}

	result := s.classify(best, maxResults, opts)
	result.TierReached = tierReached
	s.cache.put(key, result)
	monitor.Finish(result)
	return result, nil
}

type accumulated struct {
	entry *core.Entry
	score float64
	tier  int
	kind  core.MatchKind
}

// boost applies the additive context-affinity adjustments, capped at 1.0.
func (s *Searcher) boost(score float64, contextId string, opts Options) float64 {
	if contextId != "" {
		if opts.Project != "" && contextId == opts.Project {
			score += s.config.BoostProject
		}
		if opts.FileType != "" && strings.HasSuffix(contextId, opts.FileType) {
			score += s.config.BoostFileType
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// classify deduplicates by normalized source and splits the survivors into
// primaries at or above the high threshold and a single context candidate
// from the band between the thresholds. An exact match keeps all of its
// context variations; everything else keeps the best-scoring variant.
func (s *Searcher) classify(best map[core.ID]accumulated, maxResults int, opts Options) *Result {
	groups := make(map[string][]accumulated)
	for _, acc := range best {
		groups[acc.entry.NormalizedSource] = append(groups[acc.entry.NormalizedSource], acc)
	}

	var survivors []accumulated
	for _, group := range groups {
		exact := false
		for _, acc := range group {
			if acc.kind == core.MatchExact {
				exact = true
				break
			}
		}
		if exact {
			for _, acc := range group {
				if acc.kind == core.MatchExact {
					survivors = append(survivors, acc)
				}
			}
			continue
		}
		top := group[0]
		for _, acc := range group[1:] {
			if acc.score > top.score || (acc.score == top.score && acc.entry.Id < top.entry.Id) {
				top = acc
			}
		}
		survivors = append(survivors, top)
	}

	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].score != survivors[j].score {
			return survivors[i].score > survivors[j].score
		}
		return survivors[i].entry.Id < survivors[j].entry.Id
	})

	result := &Result{}
	for _, acc := range survivors {
		if acc.score < opts.MinScore {
			continue
		}
		switch {
		case acc.score >= s.config.HighThreshold:
			if result.BestMatch == nil {
				qr := acc.queryResult()
				result.BestMatch = &qr
			} else if len(result.Suggestions) < maxResults-1 {
				result.Suggestions = append(result.Suggestions, acc.queryResult())
			}
		case acc.score >= s.config.LowThreshold:
			// Survivors are sorted, so the first one in the band wins the
			// single context slot.
			if result.Context == nil {
				qr := acc.queryResult()
				result.Context = &qr
			}
		}
	}
	return result
}

func (a accumulated) queryResult() core.QueryResult {
	return core.QueryResult{
		EntryId:       a.entry.Id,
		MatchedSource: a.entry.SourceText,
		Target:        a.entry.TargetText,
		ContextId:     a.entry.ContextId,
		Score:         a.score,
		Tier:          a.tier,
		Kind:          a.kind,
	}
}

func candidateLimit(maxResults int) int {
	limit := maxResults * 4
	if limit < 20 {
		limit = 20
	}
	return limit
}
