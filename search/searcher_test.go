package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/transmem/ai/mock"
	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMonitor captures cascade callbacks for assertions.
type recordingMonitor struct {
	started   []int
	skipped   []int
	failed    []int
	cacheHits int
}

func (m *recordingMonitor) Start(_ string)                              {}
func (m *recordingMonitor) CacheHit(_ uint64)                           { m.cacheHits++ }
func (m *recordingMonitor) TierStart(tier int, _ core.MatchKind)        { m.started = append(m.started, tier) }
func (m *recordingMonitor) TierSkipped(tier int, _ core.MatchKind)      { m.skipped = append(m.skipped, tier) }
func (m *recordingMonitor) TierFailed(tier int, _ core.MatchKind, _ error) {
	m.failed = append(m.failed, tier)
}
func (m *recordingMonitor) TierResults(_ int, _ []core.ID) {}
func (m *recordingMonitor) Finish(_ *Result)               {}

func makeEntry(source, target, contextId string) *core.Entry {
	raw := core.RawEntry{SourceText: source, TargetText: target, ContextId: contextId}
	return core.NewEntry(raw, analysis.Normalize(source), analysis.HashText(source))
}

func buildSet(t *testing.T, embedder *mock.MockEmbedder, entries []*core.Entry) *index.Set {
	t.Helper()
	builder, err := index.NewBuilder(embedder)
	require.NoError(t, err)
	defer builder.Release()
	set, err := builder.Build(context.Background(), entries, 1)
	require.NoError(t, err)
	return set
}

func gameCorpus() []*core.Entry {
	return []*core.Entry{
		makeEntry("Start the game", "스타트", "arcade"),
		makeEntry("Start the game", "게임 시작", "menu"),
		makeEntry("Save your progress", "진행 상황을 저장", ""),
		makeEntry("Load a saved game", "저장된 게임 불러오기", ""),
		makeEntry("Quit to desktop", "바탕 화면으로 나가기", ""),
	}
}

func TestExactMatchReturnsAllVariations(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())
	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)

	result, err := searcher.Search(context.Background(), set, "Start the game", Options{})
	require.NoError(t, err)

	require.NotNil(t, result.BestMatch)
	assert.Equal(t, 1, result.TierReached)
	assert.Equal(t, 1, result.BestMatch.Tier)
	assert.Equal(t, core.MatchExact, result.BestMatch.Kind)
	assert.Equal(t, 1.0, result.BestMatch.Score)

	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, 1.0, result.Suggestions[0].Score)
	targets := map[string]bool{
		result.BestMatch.Target:      true,
		result.Suggestions[0].Target: true,
	}
	assert.True(t, targets["스타트"])
	assert.True(t, targets["게임 시작"])
}

func TestEarlyTerminationAfterExactHit(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())
	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = searcher.SearchWithMonitor(context.Background(), set, "Start the game", Options{}, monitor)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, monitor.started)
	assert.Empty(t, monitor.skipped)
}

func TestNearDuplicateSurfacesViaEditDistance(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())
	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	// One character inserted, so the hash tier misses.
	result, err := searcher.SearchWithMonitor(context.Background(), set, "Start thje game", Options{}, monitor)
	require.NoError(t, err)

	require.NotNil(t, result.BestMatch)
	assert.Equal(t, core.MatchEditDistance, result.BestMatch.Kind)
	assert.Equal(t, "Start the game", result.BestMatch.MatchedSource)
	// Distance 1 over 15 runes.
	assert.InDelta(t, 1.0-1.0/15.0, result.BestMatch.Score, 1e-9)
	assert.NotContains(t, monitor.started, 4, "vector tiers must not run after termination")

	t.Run("one cjk rune inserted", func(t *testing.T) {
		set := buildSet(t, embedder, []*core.Entry{
			makeEntry("게임을 시작하려면 버튼을 누르세요", "Press the button to start the game", ""),
			makeEntry("진행 상황이 저장되었습니다", "Progress saved", ""),
		})
		monitor := &recordingMonitor{}
		result, err := searcher.SearchWithMonitor(context.Background(), set,
			"게임임을 시작하려면 버튼을 누르세요", Options{}, monitor)
		require.NoError(t, err)

		require.NotNil(t, result.BestMatch)
		assert.Equal(t, core.MatchEditDistance, result.BestMatch.Kind)
		assert.Equal(t, "게임을 시작하려면 버튼을 누르세요", result.BestMatch.MatchedSource)
		// Distance 1 over 19 runes.
		assert.InDelta(t, 1.0-1.0/19.0, result.BestMatch.Score, 1e-9)
		assert.NotContains(t, monitor.started, 4)
	})
}

func TestErroredArtifactsAreSkipped(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model unavailable")
	}
	set := buildSet(t, embedder, gameCorpus())
	embedder.EmbedTextsFunc = nil

	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = searcher.SearchWithMonitor(context.Background(), set, "nothing like the corpus", Options{}, monitor)
	require.NoError(t, err)

	assert.Subset(t, monitor.skipped, []int{4, 5, 6})
	assert.Contains(t, monitor.started, 7)
	assert.Contains(t, monitor.started, 8)
}

func TestTombstonedEntriesFiltered(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	entries := gameCorpus()
	builder, err := index.NewBuilder(embedder)
	require.NoError(t, err)
	defer builder.Release()
	dead := map[core.ID]struct{}{entries[4].Id: {}}
	set, err := builder.BuildWithVectors(context.Background(), entries, nil, dead, 1)
	require.NoError(t, err)

	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)

	result, err := searcher.Search(context.Background(), set, "Quit to desktop", Options{})
	require.NoError(t, err)
	assert.Nil(t, result.BestMatch)
	for _, s := range result.Suggestions {
		assert.NotEqual(t, entries[4].Id, s.EntryId)
	}
	if result.Context != nil {
		assert.NotEqual(t, entries[4].Id, result.Context.EntryId)
	}
}

// stubTier feeds fixed matches into the cascade for classification tests.
type stubTier struct {
	number  int
	kind    core.MatchKind
	matches []rawMatch
}

func (t stubTier) Number() int             { return t.number }
func (t stubTier) Kind() core.MatchKind    { return t.kind }
func (t stubTier) Ready(_ *index.Set) bool { return true }
func (t stubTier) Match(_ context.Context, _ *query, _ *index.Set) ([]rawMatch, error) {
	return t.matches, nil
}

func TestDualThresholdClassification(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())

	a := makeEntry("alpha source", "one", "")
	b := makeEntry("beta source", "two", "")
	c := makeEntry("gamma source", "three", "")
	tier := stubTier{
		number: 4,
		kind:   core.MatchSemanticText,
		matches: []rawMatch{
			{entry: a, score: 0.95},
			{entry: b, score: 0.60},
			{entry: c, score: 0.55},
		},
	}

	searcher, err := NewSearcher(embedder, WithTiers([]Tier{tier}))
	require.NoError(t, err)

	result, err := searcher.Search(context.Background(), set, "anything", Options{})
	require.NoError(t, err)

	require.NotNil(t, result.BestMatch)
	assert.Equal(t, 0.95, result.BestMatch.Score)
	assert.Empty(t, result.Suggestions)

	require.NotNil(t, result.Context, "band match must survive as context candidate")
	assert.Equal(t, 0.60, result.Context.Score)
	assert.Equal(t, "two", result.Context.Target)
}

func TestContextBoosting(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())

	hinted := makeEntry("shared source", "hinted", "projX")
	plain := makeEntry("other source", "plain", "projY")
	tier := stubTier{
		number: 4,
		kind:   core.MatchSemanticText,
		matches: []rawMatch{
			{entry: hinted, score: 0.90},
			{entry: plain, score: 0.90},
		},
	}
	searcher, err := NewSearcher(embedder, WithTiers([]Tier{tier}))
	require.NoError(t, err)

	result, err := searcher.Search(context.Background(), set, "anything", Options{Project: "projX"})
	require.NoError(t, err)

	require.NotNil(t, result.BestMatch)
	assert.Equal(t, "hinted", result.BestMatch.Target)
	assert.InDelta(t, 0.95, result.BestMatch.Score, 1e-9)
	require.NotNil(t, result.Context)
	assert.Equal(t, "plain", result.Context.Target)

	t.Run("boost is capped at one", func(t *testing.T) {
		capped := stubTier{
			number:  4,
			kind:    core.MatchSemanticText,
			matches: []rawMatch{{entry: hinted, score: 0.99}},
		}
		s2, err := NewSearcher(embedder, WithTiers([]Tier{capped}))
		require.NoError(t, err)
		result, err := s2.Search(context.Background(), set, "anything", Options{Project: "projX"})
		require.NoError(t, err)
		require.NotNil(t, result.BestMatch)
		assert.Equal(t, 1.0, result.BestMatch.Score)
	})
}

func TestDeduplicationKeepsBestVariant(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())

	e := makeEntry("same source", "dup", "")
	low := stubTier{number: 4, kind: core.MatchSemanticText,
		matches: []rawMatch{{entry: e, score: 0.55}}}
	high := stubTier{number: 7, kind: core.MatchNGram,
		matches: []rawMatch{{entry: e, score: 0.65}}}

	searcher, err := NewSearcher(embedder, WithTiers([]Tier{low, high}))
	require.NoError(t, err)

	result, err := searcher.Search(context.Background(), set, "anything", Options{})
	require.NoError(t, err)
	require.NotNil(t, result.Context)
	assert.Equal(t, 0.65, result.Context.Score)
	assert.Equal(t, core.MatchNGram, result.Context.Kind)
}

func TestQueryCache(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())
	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)

	first := &recordingMonitor{}
	_, err = searcher.SearchWithMonitor(context.Background(), set, "Start the game", Options{}, first)
	require.NoError(t, err)
	assert.Zero(t, first.cacheHits)

	second := &recordingMonitor{}
	_, err = searcher.SearchWithMonitor(context.Background(), set, "Start the game", Options{}, second)
	require.NoError(t, err)
	assert.Equal(t, 1, second.cacheHits)
	assert.Empty(t, second.started)

	t.Run("invalidation forces a fresh run", func(t *testing.T) {
		searcher.InvalidateCache(set.CorpusId)
		third := &recordingMonitor{}
		_, err = searcher.SearchWithMonitor(context.Background(), set, "Start the game", Options{}, third)
		require.NoError(t, err)
		assert.Zero(t, third.cacheHits)
		assert.NotEmpty(t, third.started)
	})

	t.Run("different options miss", func(t *testing.T) {
		monitor := &recordingMonitor{}
		_, err = searcher.SearchWithMonitor(context.Background(), set, "Start the game", Options{Project: "arcade"}, monitor)
		require.NoError(t, err)
		assert.Zero(t, monitor.cacheHits)
	})
}

func TestQueryCacheScopedByCorpus(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	setA := buildSet(t, embedder, gameCorpus())
	setA.CorpusId = "game-ui"
	setB := buildSet(t, embedder, []*core.Entry{
		makeEntry("Start the game", "게임을 시작하세요", ""),
	})
	setB.CorpusId = "manual"

	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = searcher.Search(ctx, setA, "Start the game", Options{})
	require.NoError(t, err)

	// Both corpora sit at version 1; the second lookup must not see the
	// first corpus's cached result.
	monitor := &recordingMonitor{}
	result, err := searcher.SearchWithMonitor(ctx, setB, "Start the game", Options{}, monitor)
	require.NoError(t, err)
	assert.Zero(t, monitor.cacheHits)
	require.NotNil(t, result.BestMatch)
	assert.Equal(t, "게임을 시작하세요", result.BestMatch.Target)

	t.Run("invalidation spares other corpora", func(t *testing.T) {
		searcher.InvalidateCache("game-ui")
		monitor := &recordingMonitor{}
		_, err := searcher.SearchWithMonitor(ctx, setB, "Start the game", Options{}, monitor)
		require.NoError(t, err)
		assert.Equal(t, 1, monitor.cacheHits)

		monitor = &recordingMonitor{}
		_, err = searcher.SearchWithMonitor(ctx, setA, "Start the game", Options{}, monitor)
		require.NoError(t, err)
		assert.Zero(t, monitor.cacheHits)
	})
}

func TestMinScoreFloor(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())

	e := makeEntry("weak source", "weak", "")
	tier := stubTier{number: 7, kind: core.MatchNGram,
		matches: []rawMatch{{entry: e, score: 0.60}}}
	searcher, err := NewSearcher(embedder, WithTiers([]Tier{tier}))
	require.NoError(t, err)

	result, err := searcher.Search(context.Background(), set, "anything", Options{MinScore: 0.70})
	require.NoError(t, err)
	assert.Nil(t, result.BestMatch)
	assert.Nil(t, result.Context)
}

func TestTierCutoff(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())
	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = searcher.SearchWithMonitor(context.Background(), set, "no such text at all", Options{TierCutoff: 3}, monitor)
	require.NoError(t, err)
	for _, tier := range monitor.started {
		assert.LessOrEqual(t, tier, 3)
	}
}

func TestSearchValidation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	set := buildSet(t, embedder, gameCorpus())
	searcher, err := NewSearcher(embedder)
	require.NoError(t, err)

	t.Run("empty query", func(t *testing.T) {
		_, err := searcher.Search(context.Background(), set, "   ", Options{})
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("nil set", func(t *testing.T) {
		_, err := searcher.Search(context.Background(), nil, "query", Options{})
		assert.ErrorIs(t, err, ErrNoArtifacts)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("bad thresholds", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LowThreshold = cfg.HighThreshold
		_, err := NewSearcher(embedder, WithConfig(cfg))
		assert.ErrorIs(t, err, ErrInvalidThresholds)
	})
}
