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

import "errors"

var (
	// ErrUpdateInProgress is returned when an update is requested while
	// another build or update is still running for the same corpus.
	ErrUpdateInProgress = errors.New("update already in progress")

	// ErrBuilderRequired is returned when a builder is not provided.
	ErrBuilderRequired = errors.New("builder required")

	// ErrNoActiveSet is returned when an incremental update is requested
	// without an active artifact set to diff against.
	ErrNoActiveSet = errors.New("no active artifact set")
)
