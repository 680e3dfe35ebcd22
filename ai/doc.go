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


// Package ai defines the embedding collaborator boundary.
//
// The engine is agnostic to model identity; it only requires an Embedder
// that turns text into fixed-length vectors and names its model version so
// artifact staleness can be detected. The openai subpackage provides an
// implementation for OpenAI-compatible APIs, the mock subpackage a
// deterministic test double.
package ai
