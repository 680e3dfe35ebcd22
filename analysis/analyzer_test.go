package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text unchanged", in: "Start the game", want: "Start the game"},
		{name: "trims whitespace", in: "  Start the game  ", want: "Start the game"},
		{name: "collapses interior runs", in: "Start \t the\n\ngame", want: "Start the game"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \t\n ", want: ""},
		{name: "composes decomposed hangul", in: "한", want: "한"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Start the game",
		"  mixed \t whitespace \n runs ",
		"게임을 시작합니다",
		"한글", // decomposed 한글
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestHashText(t *testing.T) {
	t.Run("normalization-equivalent texts share a hash", func(t *testing.T) {
		assert.Equal(t, HashText("Start the game"), HashText("  Start \t the game "))
	})

	t.Run("different texts differ", func(t *testing.T) {
		assert.NotEqual(t, HashText("Start the game"), HashText("Stop the game"))
	})

	t.Run("digest is hex of 32 bytes", func(t *testing.T) {
		assert.Len(t, HashText("anything"), 64)
	})
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "identical", a: "Start the game", b: "Start the game", want: 0},
		{name: "one insertion", a: "Start the game", b: "Start thje game", want: 1},
		{name: "two substitutions", a: "Start the game", b: "Start the gone", want: 2},
		{name: "empty against text", a: "", b: "abc", want: 3},
		{name: "both empty", a: "", b: "", want: 0},
		// One rune, not three bytes.
		{name: "cjk insertion", a: "게임 시작", b: "게임 시작요", want: 1},
		{name: "cjk substitution", a: "게임 시작", b: "게임 중단", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EditDistance(tt.a, tt.b))
			assert.Equal(t, tt.want, EditDistance(tt.b, tt.a))
		})
	}
}

func TestCharNGrams(t *testing.T) {
	t.Run("trigrams", func(t *testing.T) {
		grams := CharNGrams("abcd", 3)
		assert.Equal(t, map[string]struct{}{"abc": {}, "bcd": {}}, grams)
	})

	t.Run("short input yields whole text", func(t *testing.T) {
		grams := CharNGrams("ab", 3)
		assert.Equal(t, map[string]struct{}{"ab": {}}, grams)
	})

	t.Run("operates on runes not bytes", func(t *testing.T) {
		grams := CharNGrams("게임시작", 3)
		assert.Equal(t, map[string]struct{}{"게임시": {}, "임시작": {}}, grams)
	})
}

func TestWordNGrams(t *testing.T) {
	t.Run("bigrams", func(t *testing.T) {
		grams := WordNGrams("start the game", 2)
		assert.Equal(t, map[string]struct{}{"start the": {}, "the game": {}}, grams)
	})

	t.Run("single word yields whole text", func(t *testing.T) {
		grams := WordNGrams("start", 2)
		assert.Equal(t, map[string]struct{}{"start": {}}, grams)
	})
}

func TestLengthBucket(t *testing.T) {
	assert.Equal(t, 0, LengthBucket("abc", 10))
	assert.Equal(t, 1, LengthBucket("abcdefghij", 10))
	assert.Equal(t, 2, LengthBucket("게임을 시작합니다 지금 바로요!", 8))
	// bucket is computed on the normalized form
	assert.Equal(t, LengthBucket("a  b", 2), LengthBucket("a b", 2))
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("first line\n\n  second line \r\nthird")
	assert.Equal(t, []string{"first line", "second line", "third"}, lines)

	assert.Empty(t, SplitLines("\n \n"))
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "period boundaries",
			in:   "First sentence. Second one! Third?",
			want: []string{"First sentence.", "Second one!", "Third?"},
		},
		{
			name: "period without following space is not a boundary",
			in:   "Version 1.2 is out. Done.",
			want: []string{"Version 1.2 is out.", "Done."},
		},
		{
			name: "ideographic full stop needs no whitespace",
			in:   "ゲームを開始します。設定を保存しました。",
			want: []string{"ゲームを開始します。", "設定を保存しました。"},
		},
		{
			name: "trailing fragment kept",
			in:   "Complete sentence. trailing fragment",
			want: []string{"Complete sentence.", "trailing fragment"},
		},
		{
			name: "empty input",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}
