package index

import (
	"testing"

	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEntry(source, target, context string) *core.Entry {
	raw := core.RawEntry{SourceText: source, TargetText: target, ContextId: context}
	return core.NewEntry(raw, analysis.Normalize(source), analysis.HashText(source))
}

func TestExactIndexVariationGroups(t *testing.T) {
	x := NewExactIndex()
	a := makeEntry("Start the game", "스타트", "arcade")
	b := makeEntry("Start the game", "게임 시작", "menu")
	c := makeEntry("Save", "저장", "")
	x.Add(a)
	x.Add(b)
	x.Add(c)

	group := x.Lookup(a.SourceHash)
	require.Len(t, group, 2)
	assert.Equal(t, 3, x.Len())
	assert.Equal(t, 2, x.Groups())
	assert.Equal(t, a, x.Entry(a.Id))

	t.Run("duplicate ids ignored", func(t *testing.T) {
		x.Add(a)
		assert.Equal(t, 3, x.Len())
	})
}

func TestLengthBucketsRange(t *testing.T) {
	b := NewLengthBuckets(8)
	short := makeEntry("Save", "저장", "")
	medium := makeEntry("Start the game", "게임 시작", "")
	long := makeEntry("Please restart the application to apply settings", "...", "")
	b.Add(short.NormalizedSource, short.Id)
	b.Add(medium.NormalizedSource, medium.Id)
	b.Add(long.NormalizedSource, long.Id)

	// 14 runes ±30% covers "Start the game" but not the extremes
	ids := b.InRange(14, 0.30)
	assert.Contains(t, ids, medium.Id)
	assert.NotContains(t, ids, long.Id)
}

func TestPrefixTrieLookup(t *testing.T) {
	trie := NewPrefixTrie()
	a := makeEntry("Start the game", "게임 시작", "")
	b := makeEntry("Start the game now", "지금 게임 시작", "")
	c := makeEntry("Stop", "정지", "")
	trie.Insert(a.NormalizedSource, a.Id)
	trie.Insert(b.NormalizedSource, b.Id)
	trie.Insert(c.NormalizedSource, c.Id)

	t.Run("exact and extension candidates", func(t *testing.T) {
		matches := trie.Lookup("Start the game", 10)
		ids := make(map[core.ID]int)
		for _, m := range matches {
			ids[m.Id] = m.SharedPrefix
		}
		assert.Equal(t, len("Start the game"), ids[a.Id])
		assert.Equal(t, len("Start the game"), ids[b.Id])
		assert.NotContains(t, ids, c.Id)
	})

	t.Run("indexed prefix of a longer query", func(t *testing.T) {
		matches := trie.Lookup("Start the game immediately", 10)
		found := false
		for _, m := range matches {
			if m.Id == a.Id {
				found = true
				assert.Equal(t, len("Start the game"), m.SharedPrefix)
			}
		}
		assert.True(t, found)
	})

	t.Run("no shared prefix", func(t *testing.T) {
		assert.Empty(t, trie.Lookup("zzz", 10))
	})
}

func TestBKTreeSearch(t *testing.T) {
	tree := NewBKTree()
	a := makeEntry("Start the game", "게임 시작", "")
	b := makeEntry("Start the games", "게임들 시작", "")
	c := makeEntry("Completely different", "전혀 다름", "")
	tree.Add(a.NormalizedSource, a.Id)
	tree.Add(b.NormalizedSource, b.Id)
	tree.Add(c.NormalizedSource, c.Id)

	t.Run("radius 2 finds near neighbors", func(t *testing.T) {
		matches := tree.Search("Start the game", 2)
		byTerm := make(map[string]int)
		for _, m := range matches {
			byTerm[m.Term] = m.Distance
		}
		assert.Equal(t, 0, byTerm["Start the game"])
		assert.Equal(t, 1, byTerm["Start the games"])
		assert.NotContains(t, byTerm, "Completely different")
	})

	t.Run("one character insertion is distance 1", func(t *testing.T) {
		matches := tree.Search("Start thje game", 2)
		found := false
		for _, m := range matches {
			if m.Term == "Start the game" {
				found = true
				assert.Equal(t, 1, m.Distance)
			}
		}
		assert.True(t, found)
	})

	t.Run("a cjk rune insertion is distance 1", func(t *testing.T) {
		korean := makeEntry("게임 시작", "start the game", "")
		tree.Add(korean.NormalizedSource, korean.Id)
		matches := tree.Search("게임 시작요", 2)
		found := false
		for _, m := range matches {
			if m.Term == "게임 시작" {
				found = true
				assert.Equal(t, 1, m.Distance)
			}
		}
		assert.True(t, found)
	})

	t.Run("shared source shares a node", func(t *testing.T) {
		variant := makeEntry("Start the game", "스타트", "arcade")
		tree.Add(variant.NormalizedSource, variant.Id)
		matches := tree.Search("Start the game", 0)
		require.Len(t, matches, 1)
		assert.Len(t, matches[0].Ids, 2)
	})
}

func TestNGramIndexCandidates(t *testing.T) {
	ix := NewNGramIndex(CharNGramSize, false)
	a := makeEntry("start the game", "게임 시작", "")
	b := makeEntry("start the engine", "엔진 시작", "")
	c := makeEntry("quit", "종료", "")
	ix.Add(a.NormalizedSource, a.Id)
	ix.Add(b.NormalizedSource, b.Id)
	ix.Add(c.NormalizedSource, c.Id)

	candidates := ix.Candidates("start the game", 10)
	require.NotEmpty(t, candidates)
	assert.Equal(t, a.Id, candidates[0].Id)
	assert.InDelta(t, 1.0, candidates[0].Jaccard, 1e-9)

	var engineScore float64
	for _, cand := range candidates {
		assert.NotEqual(t, c.Id, cand.Id, "no shared n-grams means no candidacy")
		if cand.Id == b.Id {
			engineScore = cand.Jaccard
		}
	}
	assert.Greater(t, engineScore, 0.0)
	assert.Less(t, engineScore, 1.0)
}

func TestVectorIndexSearch(t *testing.T) {
	ix := NewVectorIndex()
	a := makeEntry("alpha", "알파", "")
	b := makeEntry("beta", "베타", "")
	ix.Add(a.Id, NormalizeVector([]float32{1, 0, 0}))
	ix.Add(b.Id, NormalizeVector([]float32{0, 1, 0}))

	matches := ix.Search(NormalizeVector([]float32{0.9, 0.1, 0}), 2)
	require.Len(t, matches, 2)
	assert.Equal(t, a.Id, matches[0].Id)
	assert.Greater(t, matches[0].Score, matches[1].Score)

	t.Run("segments deduplicate by owner", func(t *testing.T) {
		multi := NewVectorIndex()
		multi.Add(a.Id, NormalizeVector([]float32{1, 0, 0}))
		multi.Add(a.Id, NormalizeVector([]float32{0.8, 0.2, 0}))
		got := multi.Search(NormalizeVector([]float32{1, 0, 0}), 5)
		require.Len(t, got, 1)
		assert.InDelta(t, 1.0, float64(got[0].Score), 1e-5)
	})

	t.Run("empty index", func(t *testing.T) {
		assert.Nil(t, NewVectorIndex().Search([]float32{1, 0, 0}, 3))
	})
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	zero := NormalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
