package analysis

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/go-crypt/x/blake2b"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of text: Unicode NFC composition,
// leading/trailing whitespace trimmed, interior whitespace runs collapsed to
// single spaces. Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	composed := norm.NFC.String(text)
	fields := strings.Fields(composed)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// HashText returns the hex BLAKE2b-256 digest of Normalize(text).
// It serves as both the exact-match key and the change-detection key.
func HashText(text string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(Normalize(text)))
	return hex.EncodeToString(h.Sum(nil))
}

// CharNGrams extracts the set of character n-grams from the normalized text.
// When the text is shorter than n runes the set contains only the normalized
// text itself.
func CharNGrams(text string, n int) map[string]struct{} {
	normalized := Normalize(text)
	runes := []rune(normalized)
	grams := make(map[string]struct{})
	if len(runes) < n || n < 1 {
		grams[normalized] = struct{}{}
		return grams
	}
	for i := 0; i+n <= len(runes); i++ {
		grams[string(runes[i:i+n])] = struct{}{}
	}
	return grams
}

// WordNGrams extracts the set of word n-grams from the normalized text.
// When the text has fewer than n words the set contains only the normalized
// text itself.
func WordNGrams(text string, n int) map[string]struct{} {
	normalized := Normalize(text)
	words := strings.Fields(normalized)
	grams := make(map[string]struct{})
	if len(words) < n || n < 1 {
		grams[normalized] = struct{}{}
		return grams
	}
	for i := 0; i+n <= len(words); i++ {
		grams[strings.Join(words[i:i+n], " ")] = struct{}{}
	}
	return grams
}

// LengthBucket maps the normalized rune length of text to a bucket id via
// integer division by bucketSize.
func LengthBucket(text string, bucketSize int) int {
	if bucketSize < 1 {
		bucketSize = 1
	}
	return len([]rune(Normalize(text))) / bucketSize
}

// EditDistance returns the Levenshtein distance between a and b with unit
// costs, counted in runes so a single multi-byte character edit costs one.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// SplitLines splits text on newlines, trims each segment, and drops empty ones.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// SplitSentences splits text on sentence boundaries: '.', '!' or '?' followed
// by whitespace, and the ideographic full stop '。' (which CJK text does not
// follow with whitespace). Segments are trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		boundary := false
		switch r {
		case '.', '!', '?':
			boundary = i+1 >= len(runes) || unicode.IsSpace(runes[i+1])
		case '。':
			boundary = true
		}
		if boundary {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
