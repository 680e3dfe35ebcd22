package index

import (
	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
)

// DefaultBucketSize is the rune-length width of one bucket.
const DefaultBucketSize = 8

// LengthBuckets groups entry IDs by the length bucket of their normalized
// source. It pre-filters fuzzy-ratio candidates to sources of comparable
// length before any expensive scoring runs.
type LengthBuckets struct {
	size    int
	buckets map[int][]core.ID
}

// NewLengthBuckets creates an empty filter with the given bucket width.
func NewLengthBuckets(bucketSize int) *LengthBuckets {
	if bucketSize < 1 {
		bucketSize = DefaultBucketSize
	}
	return &LengthBuckets{
		size:    bucketSize,
		buckets: make(map[int][]core.ID),
	}
}

// Add records an entry under the bucket of its normalized source length.
func (b *LengthBuckets) Add(normalizedSource string, id core.ID) {
	bucket := analysis.LengthBucket(normalizedSource, b.size)
	b.buckets[bucket] = append(b.buckets[bucket], id)
}

// InRange returns candidate IDs whose source length falls within
// length*(1±tolerance), collected from every bucket overlapping that range.
func (b *LengthBuckets) InRange(length int, tolerance float64) []core.ID {
	if tolerance < 0 {
		tolerance = 0
	}
	lo := int(float64(length) * (1 - tolerance))
	hi := int(float64(length)*(1+tolerance)) + 1
	if lo < 0 {
		lo = 0
	}

	var ids []core.ID
	for bucket := lo / b.size; bucket <= hi/b.size; bucket++ {
		ids = append(ids, b.buckets[bucket]...)
	}
	return ids
}

// Len returns the number of indexed entries.
func (b *LengthBuckets) Len() int {
	total := 0
	for _, ids := range b.buckets {
		total += len(ids)
	}
	return total
}
