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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates an entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrEmptySource indicates the source text is empty after normalization.
	ErrEmptySource = errors.New("source text cannot be empty")

	// ErrEmptyTarget indicates the target text is empty.
	ErrEmptyTarget = errors.New("target text cannot be empty")

	// ErrOversizedEntry indicates source or target exceeds MaxEntryBytes.
	ErrOversizedEntry = errors.New("entry exceeds maximum size")
)
