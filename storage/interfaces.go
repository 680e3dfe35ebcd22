package storage

import (
	"context"
	"time"

	"github.com/poiesic/transmem/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction. Repository
	// calls made with the callback's context join that transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// EntryRepository persists translation entries per corpus. Entries carry
// content-derived IDs, so adding the same tuple twice is a no-op overwrite.
type EntryRepository interface {
	Repository

	// AddEntries stores entries under a corpus.
	AddEntries(ctx context.Context, corpusId string, entries ...*core.Entry) error

	// GetEntry retrieves a single entry.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, corpusId string, id core.ID) (*core.Entry, error)

	// GetEntries retrieves every live entry of a corpus.
	GetEntries(ctx context.Context, corpusId string) ([]*core.Entry, error)

	// RetireEntries stamps entries as retired at the given time.
	// Retired entries are excluded from GetEntries but remain readable.
	RetireEntries(ctx context.Context, corpusId string, at time.Time, ids ...core.ID) error

	// PurgeRetired deletes retired entries and returns how many went away.
	PurgeRetired(ctx context.Context, corpusId string) (int, error)

	// CountEntries returns the number of live entries in a corpus.
	CountEntries(ctx context.Context, corpusId string) (int, error)
}

// CorpusRepository persists per-corpus metadata: the active artifact
// version, per-artifact build states and the staleness timestamps.
type CorpusRepository interface {
	Repository

	// SaveMeta stores corpus metadata, overwriting any previous state.
	SaveMeta(ctx context.Context, meta *core.CorpusMeta) error

	// GetMeta retrieves corpus metadata.
	// Returns ErrNotFound if the corpus is unknown and ErrCorruptData if
	// the stored bytes fail to deserialize.
	GetMeta(ctx context.Context, corpusId string) (*core.CorpusMeta, error)

	// TouchModified advances the corpus modification timestamp, marking
	// built artifacts stale.
	TouchModified(ctx context.Context, corpusId string, at time.Time) error

	// ListCorpora returns the ids of every known corpus.
	ListCorpora(ctx context.Context) ([]string, error)
}
