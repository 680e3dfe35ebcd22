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
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(backend *Backend) (*EntryRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &EntryRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (r *EntryRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EntryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntries stores entries under a corpus. IDs derive from entry content,
// so re-adding an identical tuple overwrites its previous record.
func (r *EntryRepository) AddEntries(ctx context.Context, corpusId string, entries ...*core.Entry) error {
	if corpusId == "" {
		return storage.ErrInvalidCorpusId
	}
	return r.backend.WithTx(ctx, true, func(tx *badger.Txn) error {
		for _, entry := range entries {
			key := makeEntryKey(corpusId, entry.Id)
			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetEntry retrieves a single entry.
func (r *EntryRepository) GetEntry(ctx context.Context, corpusId string, id core.ID) (*core.Entry, error) {
	if corpusId == "" {
		return nil, storage.ErrInvalidCorpusId
	}
	var entry *core.Entry
	err := r.backend.WithTx(ctx, false, func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(corpusId, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalEntry(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntries retrieves every live entry of a corpus.
func (r *EntryRepository) GetEntries(ctx context.Context, corpusId string) ([]*core.Entry, error) {
	if corpusId == "" {
		return nil, storage.ErrInvalidCorpusId
	}
	var entries []*core.Entry
	err := r.backend.WithTx(ctx, false, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryScanPrefix(corpusId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.Entry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if !entry.Retired() {
				entries = append(entries, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// RetireEntries stamps entries as retired at the given time.
func (r *EntryRepository) RetireEntries(ctx context.Context, corpusId string, at time.Time, ids ...core.ID) error {
	if corpusId == "" {
		return storage.ErrInvalidCorpusId
	}
	return r.backend.WithTx(ctx, true, func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEntryKey(corpusId, id)
			item, err := tx.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			if err != nil {
				return err
			}
			var entry *core.Entry
			if err := item.Value(func(val []byte) error {
				entry, err = storage.UnmarshalEntry(val)
				return err
			}); err != nil {
				return err
			}
			entry.RetiredAt = at
			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return nil
	})
}

// PurgeRetired deletes retired entries and returns how many went away.
func (r *EntryRepository) PurgeRetired(ctx context.Context, corpusId string) (int, error) {
	if corpusId == "" {
		return 0, storage.ErrInvalidCorpusId
	}
	purged := 0
	err := r.backend.WithTx(ctx, true, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryScanPrefix(corpusId)
		iter := tx.NewIterator(opts)

		var dead [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			var entry *core.Entry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				iter.Close()
				return err
			}
			if entry.Retired() {
				dead = append(dead, item.KeyCopy(nil))
			}
		}
		iter.Close()

		for _, key := range dead {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		purged = len(dead)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

// CountEntries returns the number of live entries in a corpus.
func (r *EntryRepository) CountEntries(ctx context.Context, corpusId string) (int, error) {
	entries, err := r.GetEntries(ctx, corpusId)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
