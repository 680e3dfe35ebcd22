package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from entry content using BLAKE2b hashing, so identical
// (source, context, target) tuples always produce identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// RawEntry is a translation pair as delivered by the ingestion collaborator,
// before normalization and hashing.
type RawEntry struct {
	SourceText string
	TargetText string
	ContextId  string // optional; "" means no context
}

// Entry is one translation-memory record. Entries are immutable once created:
// an edit produces a new entry for the same source/context and the old one is
// retired, never mutated in place.
type Entry struct {
	Id         ID
	SourceText string
	TargetText string
	ContextId  string
	// NormalizedSource is the canonical form of SourceText (NFC, trimmed,
	// whitespace collapsed). All index structures key on this.
	NormalizedSource string
	// SourceHash is the hex BLAKE2b digest of NormalizedSource. It is the
	// exact-match key and the change-detection key.
	SourceHash string
	InsertedAt time.Time
	RetiredAt  time.Time // zero while the entry is live
}

// NewEntry assembles an Entry from a raw tuple and its analyzed source form.
// The ID covers source hash, context and target so a retranslation of the
// same source yields a distinct entry.
func NewEntry(raw RawEntry, normalizedSource, sourceHash string) *Entry {
	return &Entry{
		Id:               IDFromContent(sourceHash + "\x1f" + raw.ContextId + "\x1f" + raw.TargetText),
		SourceText:       raw.SourceText,
		TargetText:       raw.TargetText,
		ContextId:        raw.ContextId,
		NormalizedSource: normalizedSource,
		SourceHash:       sourceHash,
		InsertedAt:       time.Now().UTC(),
	}
}

// Retired reports whether the entry has been superseded or deleted.
func (e *Entry) Retired() bool {
	return !e.RetiredAt.IsZero()
}

// MatchKind identifies the matching strategy that produced a result.
type MatchKind int

const (
	// MatchExact is a hash lookup of the normalized query.
	MatchExact MatchKind = iota + 1
	// MatchPrefix is a prefix trie lookup.
	MatchPrefix
	// MatchEditDistance is a bounded edit-distance search.
	MatchEditDistance
	// MatchSemanticText is vector similarity over whole-text embeddings.
	MatchSemanticText
	// MatchSemanticLine is vector similarity over line embeddings.
	MatchSemanticLine
	// MatchSemanticSentence is vector similarity over sentence embeddings.
	MatchSemanticSentence
	// MatchNGram is n-gram Jaccard overlap scoring.
	MatchNGram
	// MatchFuzzy is fuzzy ratio scoring over length-bucketed candidates.
	MatchFuzzy
)

var matchKindNames = map[MatchKind]string{
	MatchExact:            "exact",
	MatchPrefix:           "prefix",
	MatchEditDistance:     "edit-distance",
	MatchSemanticText:     "semantic-text",
	MatchSemanticLine:     "semantic-line",
	MatchSemanticSentence: "semantic-sentence",
	MatchNGram:            "ngram",
	MatchFuzzy:            "fuzzy",
}

func (k MatchKind) String() string {
	if name, ok := matchKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// QueryResult is one scored match returned by the cascade.
type QueryResult struct {
	EntryId       ID
	MatchedSource string
	Target        string
	ContextId     string
	Score         float64 // in [0,1]
	Tier          int
	Kind          MatchKind
}
