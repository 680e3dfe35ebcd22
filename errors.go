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

import "errors"

var (
	// ErrNoActiveVersion is returned when a corpus has no built artifact
	// set to search or update against.
	ErrNoActiveVersion = errors.New("no active artifact version")

	// ErrBuildInProgress is returned when a build or update is requested
	// while another one is still running for the same corpus.
	ErrBuildInProgress = errors.New("build already in progress")

	// ErrNoRollbackVersion is returned when a rollback is requested but no
	// previous version is retained.
	ErrNoRollbackVersion = errors.New("no version to roll back to")

	// ErrNoEntries is returned when a build is requested for a corpus with
	// no stored entries.
	ErrNoEntries = errors.New("corpus has no entries")
)
