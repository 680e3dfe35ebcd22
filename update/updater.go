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


package update

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/index"
)

// DefaultCompactionThreshold is the deleted-entry ratio above which an
// update compacts instead of tombstoning.
const DefaultCompactionThreshold = 0.20

// Updater produces a new artifact version from an incoming batch, touching
// only what changed. Unchanged entries keep their cached embeddings, so the
// embedding cost of an update is proportional to the diff, not the corpus.
type Updater struct {
	builder   *index.Builder
	threshold float64
	logger    *slog.Logger
	mu        sync.Mutex
}

// Option configures an Updater.
type Option func(*Updater) error

// WithCompactionThreshold overrides the deleted-entry ratio that triggers
// a full compaction rebuild.
func WithCompactionThreshold(threshold float64) Option {
	return func(u *Updater) error {
		if threshold > 0 {
			u.threshold = threshold
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(u *Updater) error {
		if logger == nil {
			logger = slog.Default()
		}
		u.logger = logger
		return nil
	}
}

// NewUpdater creates an updater around a builder.
func NewUpdater(builder *index.Builder, opts ...Option) (*Updater, error) {
	if builder == nil {
		return nil, ErrBuilderRequired
	}

	u := &Updater{
		builder:   builder,
		threshold: DefaultCompactionThreshold,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(u); err != nil {
			return nil, err
		}
	}

	return u, nil
}

// Update diffs the batch against the active set and builds the next
// version. Removals below the compaction threshold become tombstones and
// the dense structures are rebuilt around them; above it the survivors are
// compacted into a clean set. Either way only new and modified entries are
// embedded. At most one update runs at a time; a second concurrent call
// returns ErrUpdateInProgress.
func (u *Updater) Update(ctx context.Context, raws []core.RawEntry, active *index.Set) (*index.Set, *ChangeSet, error) {
	if active == nil {
		return nil, nil, ErrNoActiveSet
	}
	if !u.mu.TryLock() {
		return nil, nil, ErrUpdateInProgress
	}
	defer u.mu.Unlock()

	changes := DetectChanges(raws, active)
	version := active.Version + 1

	removed := changes.Removed() + len(active.Tombstones)
	total := active.EntryCount() + changes.Changed()
	ratio := 0.0
	if total > 0 {
		ratio = float64(removed) / float64(total)
	}

	u.logger.Info("incremental update",
		"version", version,
		"new", len(changes.New),
		"modified", len(changes.Modified),
		"unchanged", len(changes.Unchanged),
		"deleted", len(changes.Deleted),
		"deleted_ratio", ratio,
		"compacting", ratio >= u.threshold)

	var (
		next *index.Set
		err  error
	)
	if ratio >= u.threshold {
		next, err = u.compact(ctx, changes, active, version)
	} else {
		next, err = u.tombstone(ctx, changes, active, version)
	}
	if err != nil {
		return nil, nil, err
	}
	return next, changes, nil
}

// tombstone rebuilds the structures over the full entry population and
// marks removals for lazy filtering at query time.
func (u *Updater) tombstone(ctx context.Context, changes *ChangeSet, active *index.Set, version uint64) (*index.Set, error) {
	entries := active.AllEntries()
	entries = append(entries, changes.New...)
	entries = append(entries, changes.Modified...)

	dead := make(map[core.ID]struct{}, len(active.Tombstones)+changes.Removed())
	for id := range active.Tombstones {
		dead[id] = struct{}{}
	}
	for _, e := range changes.Superseded {
		dead[e.Id] = struct{}{}
	}
	for _, e := range changes.Deleted {
		dead[e.Id] = struct{}{}
	}
	// A batch may restore an entry that was previously deleted. Content
	// hashing gives the restored entry its old id, which must come back
	// to life.
	for _, e := range changes.New {
		delete(dead, e.Id)
	}
	for _, e := range changes.Modified {
		delete(dead, e.Id)
	}

	return u.builder.BuildWithVectors(ctx, entries, active.Vectors, dead, version)
}

// compact rebuilds from the survivors only, dropping tombstones and
// restoring the density of the vector and edit-distance structures.
func (u *Updater) compact(ctx context.Context, changes *ChangeSet, active *index.Set, version uint64) (*index.Set, error) {
	entries := make([]*core.Entry, 0, len(changes.Unchanged)+changes.Changed())
	entries = append(entries, changes.Unchanged...)
	entries = append(entries, changes.New...)
	entries = append(entries, changes.Modified...)

	return u.builder.BuildWithVectors(ctx, entries, active.Vectors, nil, version)
}
