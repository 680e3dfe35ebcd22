package index

import (
	"time"

	"github.com/poiesic/transmem/core"
)

// EntryVectors holds the unit-normalized embeddings of one entry at every
// granularity. Cached vectors let incremental updates skip re-embedding
// unchanged entries.
type EntryVectors struct {
	Text      []float32
	Lines     [][]float32
	Sentences [][]float32
}

// Set is one complete, versioned collection of index artifacts. A Set is
// immutable once published: readers share it without locks and a new version
// replaces it wholesale via an atomic pointer swap.
type Set struct {
	// CorpusId scopes the set to one corpus. Version numbers restart per
	// corpus, so readers keying on a Set must use both.
	CorpusId string

	Version      uint64
	ModelVersion string
	BuiltAt      time.Time

	Exact          *ExactIndex
	Buckets        *LengthBuckets
	Trie           *PrefixTrie
	EditTree       *BKTree
	CharGrams      *NGramIndex
	WordGrams      *NGramIndex
	VectorText     *VectorIndex
	VectorLine     *VectorIndex
	VectorSentence *VectorIndex

	// Vectors caches per-entry embeddings for incremental rebuilds.
	Vectors map[core.ID]*EntryVectors

	// Tombstones marks lazily deleted entries, filtered at query time.
	Tombstones map[core.ID]struct{}

	states map[core.ArtifactKind]*core.ArtifactState
}

// Ready reports whether an artifact built successfully and its tier may run.
func (s *Set) Ready(kind core.ArtifactKind) bool {
	state, ok := s.states[kind]
	return ok && state.Status == core.StatusReady
}

// State returns the build record for one artifact kind, or nil.
func (s *Set) State(kind core.ArtifactKind) *core.ArtifactState {
	return s.states[kind]
}

// ArtifactStates returns the per-artifact build records in build order.
func (s *Set) ArtifactStates() []core.ArtifactState {
	states := make([]core.ArtifactState, 0, len(core.ArtifactKinds))
	for _, kind := range core.ArtifactKinds {
		if state, ok := s.states[kind]; ok {
			states = append(states, *state)
		}
	}
	return states
}

// Entry returns the indexed entry for an ID, or nil.
func (s *Set) Entry(id core.ID) *core.Entry {
	return s.Exact.Entry(id)
}

// Tombstoned reports whether an entry has been lazily deleted.
func (s *Set) Tombstoned(id core.ID) bool {
	_, ok := s.Tombstones[id]
	return ok
}

// EntryCount returns the number of indexed entries including tombstoned ones.
func (s *Set) EntryCount() int {
	return s.Exact.Len()
}

// LiveCount returns the number of entries visible to queries.
func (s *Set) LiveCount() int {
	return s.Exact.Len() - len(s.Tombstones)
}

// LiveEntries returns every non-tombstoned entry. Order is unspecified.
func (s *Set) LiveEntries() []*core.Entry {
	entries := make([]*core.Entry, 0, s.LiveCount())
	for id, e := range s.Exact.byId {
		if !s.Tombstoned(id) {
			entries = append(entries, e)
		}
	}
	return entries
}

// AllEntries returns every indexed entry including tombstoned ones.
func (s *Set) AllEntries() []*core.Entry {
	entries := make([]*core.Entry, 0, s.Exact.Len())
	for _, e := range s.Exact.byId {
		entries = append(entries, e)
	}
	return entries
}
