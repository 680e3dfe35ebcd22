package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/transmem/ai"
	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc receives best-effort build progress. Implementations must be
// fast and must not block; the builder calls it inline.
type ProgressFunc func(completed, total int, step string)

// Builder constructs complete artifact sets from analyzed entries.
// Cheap structures are built first, the embedding-backed vector indexes last,
// so a cancelled build wastes as little embedding work as possible.
type Builder struct {
	embedder   ai.Embedder
	pool       *ants.Pool
	batchSize  int
	bucketSize int
	logger     *slog.Logger
	progress   ProgressFunc
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithPoolSize sets the worker pool size for batch embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BuilderOption {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		if b.pool != nil {
			b.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of texts per embedding request.
func WithBatchSize(size int) BuilderOption {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		b.batchSize = size
		return nil
	}
}

// WithBucketSize sets the length-bucket width.
func WithBucketSize(size int) BuilderOption {
	return func(b *Builder) error {
		b.bucketSize = size
		return nil
	}
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressFunc) BuilderOption {
	return func(b *Builder) error {
		b.progress = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a builder around an embedding collaborator.
func NewBuilder(embedder ai.Embedder, opts ...BuilderOption) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		embedder:   embedder,
		pool:       pool,
		batchSize:  64,
		bucketSize: DefaultBucketSize,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(b); optErr != nil {
			b.Release()
			return nil, optErr
		}
	}

	return b, nil
}

// Release releases the embedding worker pool.
// The builder should not be used after calling Release.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// buildSteps is the artifact count plus the embedding phase.
const buildSteps = 10

// Build constructs a complete artifact set for the given version, embedding
// every entry. A per-artifact failure is recorded in that artifact's state
// and disables its tier; it never aborts sibling artifacts. Cancelling the
// context aborts the build and nothing is published.
func (b *Builder) Build(ctx context.Context, entries []*core.Entry, version uint64) (*Set, error) {
	return b.BuildWithVectors(ctx, entries, nil, nil, version)
}

// BuildWithVectors is Build with a cache of already-computed embeddings.
// Entries present in cached are not re-embedded; incremental updates pass the
// previous version's vectors so only new and modified entries cost embedding
// calls. tombstones marks entries that stay indexed but invisible to queries.
func (b *Builder) BuildWithVectors(
	ctx context.Context,
	entries []*core.Entry,
	cached map[core.ID]*EntryVectors,
	tombstones map[core.ID]struct{},
	version uint64,
) (*Set, error) {
	// Deterministic insertion order: identical inputs build artifact sets
	// that answer queries identically, whatever the caller's slice order.
	// Duplicate ids collapse to the first occurrence.
	sorted := make([]*core.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Id < sorted[j].Id })
	unique := sorted[:0]
	for _, e := range sorted {
		if len(unique) > 0 && e.Id == unique[len(unique)-1].Id {
			continue
		}
		unique = append(unique, e)
	}
	sorted = unique

	set := &Set{
		Version:        version,
		ModelVersion:   b.embedder.ModelVersion(),
		Exact:          NewExactIndex(),
		Buckets:        NewLengthBuckets(b.bucketSize),
		Trie:           NewPrefixTrie(),
		EditTree:       NewBKTree(),
		CharGrams:      NewNGramIndex(CharNGramSize, false),
		WordGrams:      NewNGramIndex(WordNGramSize, true),
		VectorText:     NewVectorIndex(),
		VectorLine:     NewVectorIndex(),
		VectorSentence: NewVectorIndex(),
		Vectors:        make(map[core.ID]*EntryVectors, len(sorted)),
		Tombstones:     make(map[core.ID]struct{}, len(tombstones)),
		states:         make(map[core.ArtifactKind]*core.ArtifactState, len(core.ArtifactKinds)),
	}
	for id := range tombstones {
		set.Tombstones[id] = struct{}{}
	}
	for _, kind := range core.ArtifactKinds {
		set.states[kind] = &core.ArtifactState{Kind: kind, Status: core.StatusPending}
	}

	type cheapStep struct {
		kind  core.ArtifactKind
		build func() int
	}
	steps := []cheapStep{
		{core.ArtifactExact, func() int {
			for _, e := range sorted {
				set.Exact.Add(e)
			}
			return set.Exact.Len()
		}},
		{core.ArtifactLengthBuckets, func() int {
			for _, e := range sorted {
				set.Buckets.Add(e.NormalizedSource, e.Id)
			}
			return set.Buckets.Len()
		}},
		{core.ArtifactPrefixTrie, func() int {
			for _, e := range sorted {
				set.Trie.Insert(e.NormalizedSource, e.Id)
			}
			return set.Trie.Len()
		}},
		{core.ArtifactEditDistance, func() int {
			for _, e := range sorted {
				set.EditTree.Add(e.NormalizedSource, e.Id)
			}
			return set.EditTree.Len()
		}},
		{core.ArtifactCharNGram, func() int {
			for _, e := range sorted {
				set.CharGrams.Add(e.NormalizedSource, e.Id)
			}
			return set.CharGrams.Len()
		}},
		{core.ArtifactWordNGram, func() int {
			for _, e := range sorted {
				set.WordGrams.Add(e.NormalizedSource, e.Id)
			}
			return set.WordGrams.Len()
		}},
	}

	completed := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.report(completed, buildSteps, step.kind.String())
		started := time.Now()
		count := step.build()
		state := set.states[step.kind]
		state.Status = core.StatusReady
		state.EntryCount = count
		state.BuildDuration = time.Since(started)
		completed++
	}

	// Embedding phase, then the three vector graphs.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.report(completed, buildSteps, "embed")
	embedErr := b.embedEntries(ctx, sorted, cached, set)
	completed++
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectorKinds := []core.ArtifactKind{
		core.ArtifactVectorText,
		core.ArtifactVectorLine,
		core.ArtifactVectorSentence,
	}
	if embedErr != nil {
		b.logger.Error("embedding phase failed, vector tiers disabled for this version",
			"version", version, "err", embedErr)
		for _, kind := range vectorKinds {
			state := set.states[kind]
			state.Status = core.StatusError
			state.Error = embedErr.Error()
		}
		completed += len(vectorKinds)
	} else {
		g, _ := errgroup.WithContext(ctx)
		starts := make(map[core.ArtifactKind]time.Time, len(vectorKinds))
		for _, kind := range vectorKinds {
			kind := kind
			starts[kind] = time.Now()
			g.Go(func() error {
				for _, e := range sorted {
					vectors := set.Vectors[e.Id]
					if vectors == nil {
						continue
					}
					switch kind {
					case core.ArtifactVectorText:
						if len(vectors.Text) > 0 {
							set.VectorText.Add(e.Id, vectors.Text)
						}
					case core.ArtifactVectorLine:
						for _, v := range vectors.Lines {
							set.VectorLine.Add(e.Id, v)
						}
					case core.ArtifactVectorSentence:
						for _, v := range vectors.Sentences {
							set.VectorSentence.Add(e.Id, v)
						}
					}
				}
				return nil
			})
		}
		_ = g.Wait()
		for _, kind := range vectorKinds {
			state := set.states[kind]
			state.Status = core.StatusReady
			state.BuildDuration = time.Since(starts[kind])
			b.report(completed, buildSteps, kind.String())
			completed++
		}
		set.states[core.ArtifactVectorText].EntryCount = set.VectorText.Len()
		set.states[core.ArtifactVectorLine].EntryCount = set.VectorLine.Len()
		set.states[core.ArtifactVectorSentence].EntryCount = set.VectorSentence.Len()
	}

	b.report(buildSteps, buildSteps, "done")
	set.BuiltAt = time.Now().UTC()
	return set, nil
}

// embedEntries fills set.Vectors for every entry, reusing cached vectors and
// batching the rest through the worker pool. Texts are deduplicated before
// embedding so a k-entry change costs exactly the embeddings of those k
// entries' distinct texts.
func (b *Builder) embedEntries(ctx context.Context, entries []*core.Entry, cached map[core.ID]*EntryVectors, set *Set) error {
	type segments struct {
		text      string
		lines     []string
		sentences []string
	}

	need := make(map[core.ID]segments)
	textSet := make(map[string]struct{})
	for _, e := range entries {
		if vectors, ok := cached[e.Id]; ok {
			set.Vectors[e.Id] = vectors
			continue
		}
		seg := segments{
			text:      e.NormalizedSource,
			lines:     analysis.SplitLines(e.SourceText),
			sentences: analysis.SplitSentences(e.SourceText),
		}
		need[e.Id] = seg
		textSet[seg.text] = struct{}{}
		for _, line := range seg.lines {
			textSet[line] = struct{}{}
		}
		for _, sentence := range seg.sentences {
			textSet[sentence] = struct{}{}
		}
	}
	if len(need) == 0 {
		return nil
	}

	texts := make([]string, 0, len(textSet))
	for text := range textSet {
		texts = append(texts, text)
	}
	sort.Strings(texts)

	vectorsByText := make(map[string][]float32, len(texts))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			embedded, err := b.embedder.EmbedTexts(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if len(embedded) != len(batch) {
				if firstErr == nil {
					firstErr = fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embedded))
				}
				return
			}
			for i, text := range batch {
				vectorsByText[text] = NormalizeVector(embedded[i])
			}
		}
		if err := b.pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	for id, seg := range need {
		vectors := &EntryVectors{Text: vectorsByText[seg.text]}
		for _, line := range seg.lines {
			vectors.Lines = append(vectors.Lines, vectorsByText[line])
		}
		for _, sentence := range seg.sentences {
			vectors.Sentences = append(vectors.Sentences, vectorsByText[sentence])
		}
		set.Vectors[id] = vectors
	}
	return nil
}

func (b *Builder) report(completed, total int, step string) {
	if b.progress == nil {
		return
	}
	b.progress(completed, total, step)
}
