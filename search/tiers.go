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

	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/index"
	"github.com/xrash/smetrics"
)

// checkEvery bounds how often candidate loops poll the tier deadline.
const checkEvery = 64

// exactTier resolves the normalized query hash against the exact index and
// returns every context variation of the matched source at score 1.0.
type exactTier struct{}

func (exactTier) Number() int               { return 1 }
func (exactTier) Kind() core.MatchKind      { return core.MatchExact }
func (exactTier) Ready(set *index.Set) bool { return set.Ready(core.ArtifactExact) }

func (exactTier) Match(_ context.Context, q *query, set *index.Set) ([]rawMatch, error) {
	group := set.Exact.Lookup(q.hash)
	matches := make([]rawMatch, 0, len(group))
	for _, e := range group {
		matches = append(matches, rawMatch{entry: e, score: 1.0})
	}
	return matches, nil
}

// prefixTier scores trie hits by shared prefix length relative to the longer
// of query and candidate.
type prefixTier struct{}

func (prefixTier) Number() int               { return 2 }
func (prefixTier) Kind() core.MatchKind      { return core.MatchPrefix }
func (prefixTier) Ready(set *index.Set) bool { return set.Ready(core.ArtifactPrefixTrie) }

func (prefixTier) Match(_ context.Context, q *query, set *index.Set) ([]rawMatch, error) {
	hits := set.Trie.Lookup(q.normalized, q.limit)
	matches := make([]rawMatch, 0, len(hits))
	for _, hit := range hits {
		e := set.Entry(hit.Id)
		if e == nil {
			continue
		}
		denom := maxRuneLen(q.runeLen, e.NormalizedSource)
		if denom == 0 {
			continue
		}
		matches = append(matches, rawMatch{entry: e, score: float64(hit.SharedPrefix) / float64(denom)})
	}
	return matches, nil
}

// editTier runs a bounded edit-distance search and scores each hit by how
// much of the longer string survives the edits.
type editTier struct {
	radius int
}

func (editTier) Number() int               { return 3 }
func (editTier) Kind() core.MatchKind      { return core.MatchEditDistance }
func (editTier) Ready(set *index.Set) bool { return set.Ready(core.ArtifactEditDistance) }

func (t editTier) Match(ctx context.Context, q *query, set *index.Set) ([]rawMatch, error) {
	var matches []rawMatch
	for i, hit := range set.EditTree.Search(q.normalized, t.radius) {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		denom := maxRuneLen(q.runeLen, hit.Term)
		if denom == 0 {
			continue
		}
		score := 1.0 - float64(hit.Distance)/float64(denom)
		for _, id := range hit.Ids {
			if e := set.Entry(id); e != nil {
				matches = append(matches, rawMatch{entry: e, score: score})
			}
		}
	}
	return matches, nil
}

// vectorTier answers one embedding granularity. Three instances cover
// whole-text, line and sentence vectors; they share the lazily embedded
// query vector.
type vectorTier struct {
	number   int
	kind     core.MatchKind
	artifact core.ArtifactKind
	pick     func(*index.Set) *index.VectorIndex
}

func (t vectorTier) Number() int               { return t.number }
func (t vectorTier) Kind() core.MatchKind      { return t.kind }
func (t vectorTier) Ready(set *index.Set) bool { return set.Ready(t.artifact) }

func (t vectorTier) Match(ctx context.Context, q *query, set *index.Set) ([]rawMatch, error) {
	vec, err := q.queryVector(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits := t.pick(set).Search(vec, q.limit)
	matches := make([]rawMatch, 0, len(hits))
	for _, hit := range hits {
		if e := set.Entry(hit.Id); e != nil {
			matches = append(matches, rawMatch{entry: e, score: float64(hit.Score)})
		}
	}
	return matches, nil
}

// ngramTier blends character and word n-gram Jaccard overlap. A candidate
// missing from one of the two indexes scores zero on that side.
type ngramTier struct{}

func (ngramTier) Number() int          { return 7 }
func (ngramTier) Kind() core.MatchKind { return core.MatchNGram }

func (ngramTier) Ready(set *index.Set) bool {
	return set.Ready(core.ArtifactCharNGram) || set.Ready(core.ArtifactWordNGram)
}

func (ngramTier) Match(ctx context.Context, q *query, set *index.Set) ([]rawMatch, error) {
	scores := make(map[core.ID]float64)
	if set.Ready(core.ArtifactCharNGram) {
		for _, cand := range set.CharGrams.Candidates(q.normalized, q.limit) {
			scores[cand.Id] += 0.5 * cand.Jaccard
		}
	}
	if set.Ready(core.ArtifactWordNGram) {
		for _, cand := range set.WordGrams.Candidates(q.normalized, q.limit) {
			scores[cand.Id] += 0.5 * cand.Jaccard
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := make([]rawMatch, 0, len(scores))
	for id, score := range scores {
		if e := set.Entry(id); e != nil {
			matches = append(matches, rawMatch{entry: e, score: score})
		}
	}
	return matches, nil
}

// fuzzyTier scores Jaro-Winkler similarity against candidates whose length
// falls within the bucket tolerance of the query.
type fuzzyTier struct {
	tolerance float64
}

func (fuzzyTier) Number() int               { return 8 }
func (fuzzyTier) Kind() core.MatchKind      { return core.MatchFuzzy }
func (fuzzyTier) Ready(set *index.Set) bool { return set.Ready(core.ArtifactLengthBuckets) }

func (t fuzzyTier) Match(ctx context.Context, q *query, set *index.Set) ([]rawMatch, error) {
	candidates := set.Buckets.InRange(q.runeLen, t.tolerance)
	var matches []rawMatch
	for i, id := range candidates {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		e := set.Entry(id)
		if e == nil {
			continue
		}
		score := smetrics.JaroWinkler(q.normalized, e.NormalizedSource, 0.7, 4)
		matches = append(matches, rawMatch{entry: e, score: score})
	}
	return matches, nil
}

func defaultTiers(cfg *Config) []Tier {
	return []Tier{
		exactTier{},
		prefixTier{},
		editTier{radius: cfg.EditRadius},
		vectorTier{
			number:   4,
			kind:     core.MatchSemanticText,
			artifact: core.ArtifactVectorText,
			pick:     func(s *index.Set) *index.VectorIndex { return s.VectorText },
		},
		vectorTier{
			number:   5,
			kind:     core.MatchSemanticLine,
			artifact: core.ArtifactVectorLine,
			pick:     func(s *index.Set) *index.VectorIndex { return s.VectorLine },
		},
		vectorTier{
			number:   6,
			kind:     core.MatchSemanticSentence,
			artifact: core.ArtifactVectorSentence,
			pick:     func(s *index.Set) *index.VectorIndex { return s.VectorSentence },
		},
		ngramTier{},
		fuzzyTier{tolerance: cfg.BucketTolerance},
	}
}
