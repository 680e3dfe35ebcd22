package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("same content produces same ID", func(t *testing.T) {
		assert.Equal(t, IDFromContent("test content"), IDFromContent("test content"))
	})

	t.Run("different content produces different IDs", func(t *testing.T) {
		assert.NotEqual(t, IDFromContent("content1"), IDFromContent("content2"))
	})

	t.Run("empty string is stable", func(t *testing.T) {
		assert.Equal(t, IDFromContent(""), IDFromContent(""))
	})
}

func TestNewEntry(t *testing.T) {
	raw := RawEntry{SourceText: "Start the game", TargetText: "게임 시작", ContextId: "menu"}
	e := NewEntry(raw, "Start the game", "abc123")

	assert.Equal(t, "Start the game", e.SourceText)
	assert.Equal(t, "게임 시작", e.TargetText)
	assert.Equal(t, "menu", e.ContextId)
	assert.Equal(t, "abc123", e.SourceHash)
	assert.False(t, e.Retired())
	assert.False(t, e.InsertedAt.IsZero())

	t.Run("identical tuples share an ID", func(t *testing.T) {
		again := NewEntry(raw, "Start the game", "abc123")
		assert.Equal(t, e.Id, again.Id)
	})

	t.Run("retranslation gets a new ID", func(t *testing.T) {
		edited := raw
		edited.TargetText = "스타트"
		other := NewEntry(edited, "Start the game", "abc123")
		assert.NotEqual(t, e.Id, other.Id)
	})

	t.Run("context distinguishes variations", func(t *testing.T) {
		variant := raw
		variant.ContextId = "dialog"
		other := NewEntry(variant, "Start the game", "abc123")
		assert.NotEqual(t, e.Id, other.Id)
	})
}

func TestValidateRawEntry(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawEntry
		wantErr error
	}{
		{
			name: "valid entry",
			raw:  RawEntry{SourceText: "Save", TargetText: "저장"},
		},
		{
			name:    "empty source",
			raw:     RawEntry{SourceText: "", TargetText: "저장"},
			wantErr: ErrEmptySource,
		},
		{
			name:    "whitespace-only source",
			raw:     RawEntry{SourceText: "   \t", TargetText: "저장"},
			wantErr: ErrEmptySource,
		},
		{
			name:    "empty target",
			raw:     RawEntry{SourceText: "Save", TargetText: ""},
			wantErr: ErrEmptyTarget,
		},
		{
			name:    "oversized source",
			raw:     RawEntry{SourceText: string(make([]byte, MaxEntryBytes+1)), TargetText: "x"},
			wantErr: ErrOversizedEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRawEntry(tt.raw)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEntry)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCorpusMetaStale(t *testing.T) {
	t.Run("never built with entries", func(t *testing.T) {
		m := &CorpusMeta{CorpusId: "c", EntryCount: 10}
		assert.True(t, m.Stale())
	})

	t.Run("built after last modification", func(t *testing.T) {
		m := &CorpusMeta{CorpusId: "c", ActiveVersion: 1}
		m.LastModifiedAt = m.LastBuiltAt
		assert.False(t, m.Stale())
	})
}

func TestCorpusMetaRoundTrip(t *testing.T) {
	meta := CorpusMeta{
		CorpusId:       "game-ui",
		ActiveVersion:  7,
		EntryCount:     1234,
		EmbeddingModel: "embeddinggemma",
		Artifacts: []ArtifactState{
			{Kind: ArtifactExact, Status: StatusReady, EntryCount: 1234},
			{Kind: ArtifactVectorText, Status: StatusError, Error: "embedding service unavailable"},
		},
	}

	bs := make([]byte, CorpusMetaMUS.Size(meta))
	CorpusMetaMUS.Marshal(meta, bs)

	got, n, err := CorpusMetaMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, meta, got)
}
