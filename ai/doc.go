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


// Package ai defines the external collaborator interfaces the indexing core
// depends on.
//
// The core never calls a model or a parser directly; it depends on three
// abstractions:
//
//   - Generator: the opaque generative-model call, text in, text out. It is
//     the only non-deterministic, highest-latency dependency in the system.
//   - Embedder: converts text into a vector.
//   - FeatureExtractor: deterministic, synchronous structural feature
//     extraction for a given language tag.
//
// Provider aggregates the remote services for convenient initialization and
// lifecycle management.
//
// Production constructors (ai/openai) return interface types to enforce
// abstraction; test doubles (ai/mock) return concrete types so tests can
// inject behavior and assert on call counts.
package ai
