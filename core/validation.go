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


package core

import (
	"fmt"
	"strings"
)

// MaxEntryBytes is the upper bound on source or target text size.
// Localization strings far beyond this are almost always ingestion mistakes
// (whole documents pasted into a cell) and would distort the length buckets.
const MaxEntryBytes = 16 * 1024

// ValidateRawEntry validates a raw tuple before it is admitted to a corpus.
//
// Validation rules:
//   - SourceText must not be empty or whitespace-only
//   - TargetText must not be empty
//   - Neither text may exceed MaxEntryBytes
//
// Validation failures are expected to be skipped and counted by callers,
// never treated as fatal for the surrounding batch.
func ValidateRawEntry(raw RawEntry) error {
	if strings.TrimSpace(raw.SourceText) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptySource)
	}
	if raw.TargetText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyTarget)
	}
	if len(raw.SourceText) > MaxEntryBytes || len(raw.TargetText) > MaxEntryBytes {
		return fmt.Errorf("%w: %w (limit %d bytes)", ErrInvalidEntry, ErrOversizedEntry, MaxEntryBytes)
	}
	return nil
}
