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


// Package storage defines the persistence contracts for translation
// entries and corpus metadata.
//
// Entries are the durable source of truth; index artifacts are derived
// from them and rebuilt on demand, so only entries and the lightweight
// per-corpus metadata (active version, artifact states, staleness
// timestamps) are ever written to disk. Values are serialized with the
// MUS format for compact storage and fast deserialization.
//
// The badger subpackage provides the embedded BadgerDB implementation.
package storage
