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


package index

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/transmem/ai/mock"
	"github.com/poiesic/transmem/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpusEntries() []*core.Entry {
	sources := []string{
		"Start the game",
		"Save your progress",
		"Load a saved game",
		"Quit to desktop",
		"Settings have been applied. Restart to continue.",
	}
	entries := make([]*core.Entry, 0, len(sources))
	for _, s := range sources {
		entries = append(entries, makeEntry(s, "번역 "+s, ""))
	}
	return entries
}

func TestBuilderBuildsAllArtifacts(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := NewBuilder(embedder)
	require.NoError(t, err)
	defer builder.Release()

	set, err := builder.Build(context.Background(), corpusEntries(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), set.Version)
	assert.Equal(t, embedder.ModelVersion(), set.ModelVersion)
	assert.Equal(t, 5, set.EntryCount())
	assert.Equal(t, 5, set.LiveCount())

	for _, kind := range core.ArtifactKinds {
		state := set.State(kind)
		assert.Equal(t, core.StatusReady, state.Status, kind.String())
		assert.Equal(t, 5, state.EntryCount, kind.String())
		assert.True(t, set.Ready(kind), kind.String())
	}

	t.Run("vectors cached per entry", func(t *testing.T) {
		for _, e := range corpusEntries() {
			ev, ok := set.Vectors[e.Id]
			require.True(t, ok, e.SourceText)
			assert.NotEmpty(t, ev.Text)
		}
	})
}

func TestBuilderEmbedFailureIsolation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model unavailable")
	}
	builder, err := NewBuilder(embedder)
	require.NoError(t, err)
	defer builder.Release()

	set, err := builder.Build(context.Background(), corpusEntries(), 1)
	require.NoError(t, err)

	for _, kind := range []core.ArtifactKind{core.ArtifactVectorText, core.ArtifactVectorLine, core.ArtifactVectorSentence} {
		state := set.State(kind)
		assert.Equal(t, core.StatusError, state.Status, kind.String())
		assert.NotEmpty(t, state.Error)
		assert.False(t, set.Ready(kind))
	}
	assert.True(t, set.Ready(core.ArtifactExact))
	assert.True(t, set.Ready(core.ArtifactEditDistance))
	assert.True(t, set.Ready(core.ArtifactCharNGram))
}

func TestBuilderReusesCachedVectors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := NewBuilder(embedder)
	require.NoError(t, err)
	defer builder.Release()

	entries := corpusEntries()
	first, err := builder.Build(context.Background(), entries, 1)
	require.NoError(t, err)
	embedder.Reset()

	changed := makeEntry("A brand new string", "새 문자열", "")
	next := append(append([]*core.Entry{}, entries...), changed)
	second, err := builder.BuildWithVectors(context.Background(), next, first.Vectors, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{changed.NormalizedSource}, embedder.EmbeddedTexts())
	assert.Equal(t, 6, second.LiveCount())
}

func TestBuilderTombstones(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := NewBuilder(embedder)
	require.NoError(t, err)
	defer builder.Release()

	entries := corpusEntries()
	dead := map[core.ID]struct{}{entries[0].Id: {}}
	set, err := builder.BuildWithVectors(context.Background(), entries, nil, dead, 3)
	require.NoError(t, err)

	assert.Equal(t, 5, set.EntryCount())
	assert.Equal(t, 4, set.LiveCount())
	assert.True(t, set.Tombstoned(entries[0].Id))
	assert.Len(t, set.LiveEntries(), 4)
}

func TestBuilderDeterministicRebuild(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := NewBuilder(embedder)
	require.NoError(t, err)
	defer builder.Release()

	entries := corpusEntries()
	// Reversed input order must not change the built artifacts.
	reversed := make([]*core.Entry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}

	a, err := builder.Build(context.Background(), entries, 1)
	require.NoError(t, err)
	b, err := builder.Build(context.Background(), reversed, 1)
	require.NoError(t, err)

	query := NormalizeVector(mustEmbed(t, embedder, "Start the game"))
	ra := a.VectorText.Search(query, 3)
	rb := b.VectorText.Search(query, 3)
	require.Equal(t, len(ra), len(rb))
	for i := range ra {
		assert.Equal(t, ra[i].Id, rb[i].Id)
		assert.InDelta(t, float64(ra[i].Score), float64(rb[i].Score), 1e-6)
	}
}

func TestBuilderProgress(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var steps []string
	builder, err := NewBuilder(embedder, WithProgress(func(completed, total int, step string) {
		steps = append(steps, step)
	}))
	require.NoError(t, err)
	defer builder.Release()

	_, err = builder.Build(context.Background(), corpusEntries(), 1)
	require.NoError(t, err)
	require.Len(t, steps, buildSteps+1)
	assert.Equal(t, "done", steps[len(steps)-1])
}

func TestBuilderContextCancellation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := NewBuilder(embedder)
	require.NoError(t, err)
	defer builder.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = builder.Build(ctx, corpusEntries(), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewBuilderRequiresEmbedder(t *testing.T) {
	_, err := NewBuilder(nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func mustEmbed(t *testing.T, embedder *mock.MockEmbedder, text string) []float32 {
	t.Helper()
	v, err := embedder.EmbedText(context.Background(), text)
	require.NoError(t, err)
	return v
}
