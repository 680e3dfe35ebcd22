package search

import (
	"context"
	"unicode/utf8"

	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/index"
)

// Tier is one matching strategy in the cascade. Tiers are ordered cheapest
// first; each one answers against a single immutable artifact set.
type Tier interface {
	// Number is the tier's position in the cascade, starting at 1.
	Number() int

	// Kind identifies the matching strategy for results and monitoring.
	Kind() core.MatchKind

	// Ready reports whether the artifact this tier depends on built
	// successfully in the given set.
	Ready(set *index.Set) bool

	// Match runs the tier and returns raw scored matches. An error,
	// including a deadline, discards the tier's output without failing
	// the query.
	Match(ctx context.Context, q *query, set *index.Set) ([]rawMatch, error)
}

// rawMatch is a tier-local scored hit before boosting and classification.
type rawMatch struct {
	entry *core.Entry
	score float64
}

// query carries the analyzed forms of one search input so tiers don't
// repeat the work. The embedding is resolved lazily by the first vector
// tier that runs.
type query struct {
	raw        string
	normalized string
	hash       string
	runeLen    int
	limit      int

	vector       []float32
	vectorErr    error
	vectorLoaded bool
	embed        func(ctx context.Context, text string) ([]float32, error)
}

func (q *query) queryVector(ctx context.Context) ([]float32, error) {
	if !q.vectorLoaded {
		q.vectorLoaded = true
		v, err := q.embed(ctx, q.normalized)
		if err != nil {
			q.vectorErr = err
		} else {
			q.vector = index.NormalizeVector(v)
		}
	}
	return q.vector, q.vectorErr
}

func maxRuneLen(a int, s string) int {
	if n := utf8.RuneCountInString(s); n > a {
		return n
	}
	return a
}
