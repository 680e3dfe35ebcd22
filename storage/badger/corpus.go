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


package badger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/storage"
)

// CorpusRepository implements storage.CorpusRepository for BadgerDB.
type CorpusRepository struct {
	backend *Backend
}

var _ storage.CorpusRepository = (*CorpusRepository)(nil)

// NewCorpusRepository creates a new CorpusRepository.
func NewCorpusRepository(backend *Backend) (*CorpusRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &CorpusRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (r *CorpusRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CorpusRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveMeta stores corpus metadata, overwriting any previous state.
func (r *CorpusRepository) SaveMeta(ctx context.Context, meta *core.CorpusMeta) error {
	if meta == nil || meta.CorpusId == "" {
		return storage.ErrInvalidCorpusId
	}
	return r.backend.WithTx(ctx, true, func(tx *badger.Txn) error {
		key := makeCorpusMetaKey(meta.CorpusId)
		return tx.Set(key, storage.MarshalCorpusMeta(meta))
	})
}

// GetMeta retrieves corpus metadata.
func (r *CorpusRepository) GetMeta(ctx context.Context, corpusId string) (*core.CorpusMeta, error) {
	if corpusId == "" {
		return nil, storage.ErrInvalidCorpusId
	}
	var meta *core.CorpusMeta
	err := r.backend.WithTx(ctx, false, func(tx *badger.Txn) error {
		item, err := tx.Get(makeCorpusMetaKey(corpusId))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			meta, err = storage.UnmarshalCorpusMeta(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// TouchModified advances the corpus modification timestamp.
func (r *CorpusRepository) TouchModified(ctx context.Context, corpusId string, at time.Time) error {
	meta, err := r.GetMeta(ctx, corpusId)
	if errors.Is(err, storage.ErrNotFound) {
		meta = &core.CorpusMeta{CorpusId: corpusId}
	} else if err != nil {
		return err
	}
	meta.LastModifiedAt = at
	return r.SaveMeta(ctx, meta)
}

// ListCorpora returns the ids of every known corpus.
func (r *CorpusRepository) ListCorpora(ctx context.Context) ([]string, error) {
	var ids []string
	prefix := corpusMetaScanPrefix()
	err := r.backend.WithTx(ctx, false, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
