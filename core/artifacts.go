package core

import "time"

// ArtifactKind identifies one index structure within an artifact set.
type ArtifactKind int

const (
	// ArtifactExact is the hash map from normalized source to variation group.
	ArtifactExact ArtifactKind = iota + 1
	// ArtifactLengthBuckets is the length-bucket candidate filter.
	ArtifactLengthBuckets
	// ArtifactPrefixTrie is the prefix trie over normalized sources.
	ArtifactPrefixTrie
	// ArtifactEditDistance is the metric tree for bounded edit-distance search.
	ArtifactEditDistance
	// ArtifactCharNGram is the inverted character-trigram index.
	ArtifactCharNGram
	// ArtifactWordNGram is the inverted word-bigram index.
	ArtifactWordNGram
	// ArtifactVectorText is the ANN index over whole-text embeddings.
	ArtifactVectorText
	// ArtifactVectorLine is the ANN index over line embeddings.
	ArtifactVectorLine
	// ArtifactVectorSentence is the ANN index over sentence embeddings.
	ArtifactVectorSentence
)

var artifactKindNames = map[ArtifactKind]string{
	ArtifactExact:          "exact-hash",
	ArtifactLengthBuckets:  "length-buckets",
	ArtifactPrefixTrie:     "prefix-trie",
	ArtifactEditDistance:   "edit-distance-tree",
	ArtifactCharNGram:      "char-ngram",
	ArtifactWordNGram:      "word-ngram",
	ArtifactVectorText:     "vector-text",
	ArtifactVectorLine:     "vector-line",
	ArtifactVectorSentence: "vector-sentence",
}

func (k ArtifactKind) String() string {
	if name, ok := artifactKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ArtifactKinds lists every artifact kind in build order, cheapest first.
var ArtifactKinds = []ArtifactKind{
	ArtifactExact,
	ArtifactLengthBuckets,
	ArtifactPrefixTrie,
	ArtifactEditDistance,
	ArtifactCharNGram,
	ArtifactWordNGram,
	ArtifactVectorText,
	ArtifactVectorLine,
	ArtifactVectorSentence,
}

// ArtifactStatus is the lifecycle state of one artifact within a version.
type ArtifactStatus int

const (
	StatusPending ArtifactStatus = iota
	StatusBuilding
	StatusReady
	StatusError
)

var artifactStatusNames = map[ArtifactStatus]string{
	StatusPending:  "pending",
	StatusBuilding: "building",
	StatusReady:    "ready",
	StatusError:    "error",
}

func (s ArtifactStatus) String() string {
	if name, ok := artifactStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ArtifactState is the per-artifact build record carried by a version and
// persisted in the corpus metadata.
type ArtifactState struct {
	Kind          ArtifactKind
	Status        ArtifactStatus
	EntryCount    int
	BuildDuration time.Duration
	Error         string // empty unless Status == StatusError
}

// CorpusMeta is the persisted metadata record for one corpus.
type CorpusMeta struct {
	CorpusId       string
	ActiveVersion  uint64
	EntryCount     int
	EmbeddingModel string
	LastBuiltAt    time.Time
	LastModifiedAt time.Time
	Artifacts      []ArtifactState
}

// Stale reports whether the corpus has been modified since the active
// version was built. Callers are expected to trigger an update before
// relying on search results when stale.
func (m *CorpusMeta) Stale() bool {
	if m.ActiveVersion == 0 {
		return m.EntryCount > 0 || !m.LastModifiedAt.IsZero()
	}
	return m.LastModifiedAt.After(m.LastBuiltAt)
}
