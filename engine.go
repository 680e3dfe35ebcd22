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


package transmem

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/transmem/ai"
	"github.com/poiesic/transmem/ai/openai"
	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/index"
	"github.com/poiesic/transmem/ingestion"
	"github.com/poiesic/transmem/search"
	"github.com/poiesic/transmem/storage"
	"github.com/poiesic/transmem/storage/badger"
	"github.com/poiesic/transmem/update"
)

// Engine ties the translation-memory components together: one durable
// entry store and, per corpus, an in-memory versioned artifact set that
// queries read through an atomic pointer. Builds and updates construct a
// complete new version off to the side and swap it in; readers never
// block.
type Engine struct {
	backend    *badger.Backend
	entryRepo  storage.EntryRepository
	corpusRepo storage.CorpusRepository
	embedder   ai.Embedder
	builder    *index.Builder
	updater    *update.Updater
	searcher   *search.Searcher
	pipeline   *ingestion.Pipeline
	logger     *slog.Logger

	mu      sync.Mutex
	corpora map[string]*corpusState
}

// corpusState is the per-corpus mutable slot. The active pointer swap is
// the only synchronization readers ever touch; previous holds the last
// version for the rollback window.
type corpusState struct {
	active   atomic.Pointer[index.Set]
	previous atomic.Pointer[index.Set]
	buildMu  sync.Mutex
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	searchConfig *search.Config
	embedder     ai.Embedder
	inMemory     bool
	logger       *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithSearchConfig sets the cascade configuration.
func WithSearchConfig(config *search.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.searchConfig = config
		}
	}
}

// WithEmbedder overrides the embedding client. Meant for tests and for
// callers that bring their own embedding transport.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithInMemoryStorage keeps all persisted state in memory.
func WithInMemoryStorage() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEngine opens the entry store at filePath and wires the build, update
// and search components around it.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	entryRepo, err := badger.NewEntryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	corpusRepo, err := badger.NewCorpusRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	builder, err := index.NewBuilder(embedder, index.WithLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	updater, err := update.NewUpdater(builder, update.WithLogger(options.logger))
	if err != nil {
		builder.Release()
		backend.Close()
		return nil, err
	}

	searchOpts := []search.Option{search.WithLogger(options.logger)}
	if options.searchConfig != nil {
		searchOpts = append(searchOpts, search.WithConfig(options.searchConfig))
	}
	searcher, err := search.NewSearcher(embedder, searchOpts...)
	if err != nil {
		builder.Release()
		backend.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(entryRepo, corpusRepo, ingestion.WithLogger(options.logger))
	if err != nil {
		builder.Release()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:    backend,
		entryRepo:  entryRepo,
		corpusRepo: corpusRepo,
		embedder:   embedder,
		builder:    builder,
		updater:    updater,
		searcher:   searcher,
		pipeline:   pipeline,
		logger:     options.logger,
		corpora:    make(map[string]*corpusState),
	}, nil
}

// Close releases the worker pools and the storage backend.
func (e *Engine) Close() error {
	e.builder.Release()
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (e *Engine) corpus(corpusId string) *corpusState {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.corpora[corpusId]
	if !ok {
		state = &corpusState{}
		e.corpora[corpusId] = state
	}
	return state
}

// Import validates and persists a batch of raw tuples. It does not build
// artifacts; call Build or Update afterwards.
func (e *Engine) Import(ctx context.Context, corpusId string, raws []core.RawEntry) (*ingestion.Report, error) {
	report, _, err := e.pipeline.Ingest(ctx, corpusId, raws)
	return report, err
}

// Build constructs a complete artifact set from the stored entries and
// swaps it in as the active version. The previous version stays available
// to in-flight readers and for Rollback. Only one build or update runs per
// corpus at a time.
func (e *Engine) Build(ctx context.Context, corpusId string) (*CorpusStatus, error) {
	state := e.corpus(corpusId)
	if !state.buildMu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer state.buildMu.Unlock()

	buildId := uuid.NewString()
	logger := e.logger.With("corpus", corpusId, "build_id", buildId)

	meta := e.loadMeta(ctx, corpusId, logger)

	entries, err := e.entryRepo.GetEntries(ctx, corpusId)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	version := meta.ActiveVersion + 1
	logger.Info("full build starting", "version", version, "entries", len(entries))

	started := time.Now()
	set, err := e.builder.Build(ctx, entries, version)
	if err != nil {
		logger.Error("build failed", "err", err)
		return nil, err
	}
	logger.Info("full build finished", "version", version, "took", time.Since(started))

	return e.publish(ctx, corpusId, state, set, meta)
}

// Update applies an incremental batch: the full intended corpus content is
// diffed against the active version and only the changed entries pay the
// embedding cost. Falls back to a full build when no version is active.
func (e *Engine) Update(ctx context.Context, corpusId string, raws []core.RawEntry) (*CorpusStatus, error) {
	state := e.corpus(corpusId)
	active := state.active.Load()
	if active == nil {
		if _, err := e.Import(ctx, corpusId, raws); err != nil {
			return nil, err
		}
		return e.Build(ctx, corpusId)
	}

	if !state.buildMu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer state.buildMu.Unlock()

	logger := e.logger.With("corpus", corpusId, "update_id", uuid.NewString())
	meta := e.loadMeta(ctx, corpusId, logger)

	set, changes, err := e.updater.Update(ctx, raws, active)
	if err != nil {
		return nil, err
	}

	if err := e.persistChanges(ctx, corpusId, changes); err != nil {
		return nil, err
	}

	logger.Info("incremental update finished",
		"version", set.Version,
		"new", len(changes.New),
		"modified", len(changes.Modified),
		"deleted", len(changes.Deleted))

	return e.publish(ctx, corpusId, state, set, meta)
}

// Search runs the cascade against the corpus's active artifact version.
func (e *Engine) Search(ctx context.Context, corpusId, query string, opts search.Options) (*search.Result, error) {
	return e.SearchWithMonitor(ctx, corpusId, query, opts, nil)
}

// SearchWithMonitor runs the cascade with per-tier observation hooks.
func (e *Engine) SearchWithMonitor(ctx context.Context, corpusId, query string, opts search.Options, monitor search.SearchMonitor) (*search.Result, error) {
	set := e.corpus(corpusId).active.Load()
	if set == nil {
		return nil, ErrNoActiveVersion
	}
	return e.searcher.SearchWithMonitor(ctx, set, query, opts, monitor)
}

// CorpusStatus reports the per-corpus build state exposed to callers.
type CorpusStatus struct {
	CorpusId       string
	ActiveVersion  uint64
	EntryCount     int
	EmbeddingModel string
	LastBuiltAt    time.Time
	LastModifiedAt time.Time
	Stale          bool
	Artifacts      []core.ArtifactState
}

// Status returns the persisted metadata and artifact states of a corpus.
// Staleness means entries changed after the active version was built;
// callers should trigger an update before trusting search results.
func (e *Engine) Status(ctx context.Context, corpusId string) (*CorpusStatus, error) {
	meta, err := e.corpusRepo.GetMeta(ctx, corpusId)
	if err != nil {
		return nil, err
	}
	return &CorpusStatus{
		CorpusId:       meta.CorpusId,
		ActiveVersion:  meta.ActiveVersion,
		EntryCount:     meta.EntryCount,
		EmbeddingModel: meta.EmbeddingModel,
		LastBuiltAt:    meta.LastBuiltAt,
		LastModifiedAt: meta.LastModifiedAt,
		Stale:          meta.Stale(),
		Artifacts:      meta.Artifacts,
	}, nil
}

// Rollback reactivates the previous artifact version. Only one step of
// history is retained.
func (e *Engine) Rollback(ctx context.Context, corpusId string) (*CorpusStatus, error) {
	state := e.corpus(corpusId)
	if !state.buildMu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer state.buildMu.Unlock()

	previous := state.previous.Load()
	if previous == nil {
		return nil, ErrNoRollbackVersion
	}

	state.previous.Store(nil)
	state.active.Store(previous)
	e.searcher.InvalidateCache(corpusId)

	logger := e.logger.With("corpus", corpusId)
	logger.Info("rolled back", "version", previous.Version)

	meta := e.loadMeta(ctx, corpusId, logger)
	meta.ActiveVersion = previous.Version
	meta.EntryCount = previous.LiveCount()
	meta.EmbeddingModel = previous.ModelVersion
	meta.LastBuiltAt = previous.BuiltAt
	meta.Artifacts = previous.ArtifactStates()
	if err := e.corpusRepo.SaveMeta(ctx, meta); err != nil {
		return nil, err
	}
	return e.Status(ctx, corpusId)
}

// publish swaps the new version in, retains the old one for rollback and
// persists the metadata readers use for staleness checks.
func (e *Engine) publish(ctx context.Context, corpusId string, state *corpusState, set *index.Set, meta *core.CorpusMeta) (*CorpusStatus, error) {
	// Stamped before the swap so cached results stay scoped to one corpus.
	set.CorpusId = corpusId
	if old := state.active.Load(); old != nil {
		state.previous.Store(old)
	}
	state.active.Store(set)
	e.searcher.InvalidateCache(corpusId)

	meta.CorpusId = corpusId
	meta.ActiveVersion = set.Version
	meta.EntryCount = set.LiveCount()
	meta.EmbeddingModel = set.ModelVersion
	meta.LastBuiltAt = set.BuiltAt
	meta.Artifacts = set.ArtifactStates()
	if err := e.corpusRepo.SaveMeta(ctx, meta); err != nil {
		return nil, err
	}
	return e.Status(ctx, corpusId)
}

// loadMeta reads corpus metadata, treating corruption as absence so a
// fresh build can replace the damaged record instead of serving it.
func (e *Engine) loadMeta(ctx context.Context, corpusId string, logger *slog.Logger) *core.CorpusMeta {
	meta, err := e.corpusRepo.GetMeta(ctx, corpusId)
	switch {
	case errors.Is(err, storage.ErrCorruptData):
		logger.Error("corpus metadata corrupt, forcing rebuild", "err", err)
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		logger.Error("error reading corpus metadata", "err", err)
	default:
		return meta
	}
	return &core.CorpusMeta{CorpusId: corpusId}
}

// persistChanges writes an update's diff through to the entry store in one
// transaction, so the additions and retirements land together or not at all.
func (e *Engine) persistChanges(ctx context.Context, corpusId string, changes *update.ChangeSet) error {
	err := e.entryRepo.WithTransaction(ctx, func(ctx context.Context) error {
		if len(changes.New)+len(changes.Modified) > 0 {
			added := append(append([]*core.Entry{}, changes.New...), changes.Modified...)
			if err := e.entryRepo.AddEntries(ctx, corpusId, added...); err != nil {
				return err
			}
		}
		if changes.Removed() > 0 {
			now := time.Now().UTC()
			ids := make([]core.ID, 0, changes.Removed())
			for _, entry := range changes.Superseded {
				ids = append(ids, entry.Id)
			}
			for _, entry := range changes.Deleted {
				ids = append(ids, entry.Id)
			}
			if err := e.entryRepo.RetireEntries(ctx, corpusId, now, ids...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := e.corpusRepo.TouchModified(ctx, corpusId, time.Now().UTC()); err != nil {
		return err
	}
	return nil
}
