package index

import (
	"sort"

	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
)

const (
	// CharNGramSize is the character n-gram width (trigrams).
	CharNGramSize = 3
	// WordNGramSize is the word n-gram width (bigrams).
	WordNGramSize = 2
)

// NGramIndex is an inverted index from an n-gram to the set of entries
// containing it, used to pre-filter candidates before Jaccard scoring.
// Separate instances cover character trigrams and word bigrams.
type NGramIndex struct {
	n        int
	word     bool
	postings map[string]map[core.ID]struct{}
	gramLen  map[core.ID]int // n-gram count per entry, for Jaccard
}

// NewNGramIndex creates an empty inverted index. word selects word n-grams
// over character n-grams.
func NewNGramIndex(n int, word bool) *NGramIndex {
	return &NGramIndex{
		n:        n,
		word:     word,
		postings: make(map[string]map[core.ID]struct{}),
		gramLen:  make(map[core.ID]int),
	}
}

func (ix *NGramIndex) extract(text string) map[string]struct{} {
	if ix.word {
		return analysis.WordNGrams(text, ix.n)
	}
	return analysis.CharNGrams(text, ix.n)
}

// Add indexes every n-gram of the normalized source for an entry.
func (ix *NGramIndex) Add(normalizedSource string, id core.ID) {
	grams := ix.extract(normalizedSource)
	ix.gramLen[id] = len(grams)
	for gram := range grams {
		set, ok := ix.postings[gram]
		if !ok {
			set = make(map[core.ID]struct{})
			ix.postings[gram] = set
		}
		set[id] = struct{}{}
	}
}

// NGramCandidate is one pre-filtered entry with its Jaccard overlap score.
type NGramCandidate struct {
	Id      core.ID
	Jaccard float64
}

// Candidates returns up to limit entries ranked by Jaccard overlap between
// the query's n-gram set and each entry's, highest first. Entries sharing no
// n-gram with the query are never considered.
func (ix *NGramIndex) Candidates(query string, limit int) []NGramCandidate {
	queryGrams := ix.extract(query)
	overlap := make(map[core.ID]int)
	for gram := range queryGrams {
		for id := range ix.postings[gram] {
			overlap[id]++
		}
	}
	if len(overlap) == 0 {
		return nil
	}

	candidates := make([]NGramCandidate, 0, len(overlap))
	for id, inter := range overlap {
		union := len(queryGrams) + ix.gramLen[id] - inter
		if union == 0 {
			continue
		}
		candidates = append(candidates, NGramCandidate{
			Id:      id,
			Jaccard: float64(inter) / float64(union),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Jaccard != candidates[j].Jaccard {
			return candidates[i].Jaccard > candidates[j].Jaccard
		}
		return candidates[i].Id < candidates[j].Id
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// Len returns the number of indexed entries.
func (ix *NGramIndex) Len() int {
	return len(ix.gramLen)
}
