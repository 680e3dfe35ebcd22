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


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/storage"
)

// Report counts the outcome of one ingested batch. Invalid tuples are
// skipped and counted, never fatal to the batch.
type Report struct {
	Accepted         int
	SkippedEmpty     int
	SkippedOversized int
	Duplicates       int
}

// Total returns the number of tuples the batch delivered.
func (r *Report) Total() int {
	return r.Accepted + r.SkippedEmpty + r.SkippedOversized + r.Duplicates
}

// Pipeline validates raw translation tuples, assembles entries and
// persists them. It never parses source files; decoding uploads into raw
// tuples is the caller's concern.
type Pipeline struct {
	entryRepository  storage.EntryRepository
	corpusRepository storage.CorpusRepository
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	entryRepository storage.EntryRepository,
	corpusRepository storage.CorpusRepository,
	opts ...Option,
) (*Pipeline, error) {
	if entryRepository == nil {
		return nil, ErrEntryRepositoryRequired
	}
	if corpusRepository == nil {
		return nil, ErrCorpusRepositoryRequired
	}

	p := &Pipeline{
		entryRepository:  entryRepository,
		corpusRepository: corpusRepository,
		logger:           slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Ingest validates and persists a batch of raw tuples for a corpus.
// Returns the assembled entries alongside the per-batch report. The corpus
// modification timestamp advances whenever at least one entry lands, which
// marks existing artifacts stale.
func (p *Pipeline) Ingest(ctx context.Context, corpusId string, raws []core.RawEntry) (*Report, []*core.Entry, error) {
	if corpusId == "" {
		return nil, nil, storage.ErrInvalidCorpusId
	}

	report := &Report{}
	seen := make(map[core.ID]struct{}, len(raws))
	entries := make([]*core.Entry, 0, len(raws))

	for _, raw := range raws {
		if err := core.ValidateRawEntry(raw); err != nil {
			switch {
			case errors.Is(err, core.ErrOversizedEntry):
				report.SkippedOversized++
			default:
				report.SkippedEmpty++
			}
			p.logger.Debug("skipping invalid entry", "err", err)
			continue
		}

		entry := core.NewEntry(raw, analysis.Normalize(raw.SourceText), analysis.HashText(raw.SourceText))
		if _, dup := seen[entry.Id]; dup {
			report.Duplicates++
			continue
		}
		seen[entry.Id] = struct{}{}
		entries = append(entries, entry)
		report.Accepted++
	}

	if len(entries) > 0 {
		if err := p.entryRepository.AddEntries(ctx, corpusId, entries...); err != nil {
			return nil, nil, err
		}
		if err := p.corpusRepository.TouchModified(ctx, corpusId, time.Now().UTC()); err != nil {
			return nil, nil, err
		}
	}

	p.logger.Info("batch ingested",
		"corpus", corpusId,
		"accepted", report.Accepted,
		"skipped_empty", report.SkippedEmpty,
		"skipped_oversized", report.SkippedOversized,
		"duplicates", report.Duplicates)

	return report, entries, nil
}
