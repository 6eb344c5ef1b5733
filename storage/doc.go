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


// Package storage provides the storage abstraction layer for indexit.
//
// This package defines repository interfaces that decouple storage
// implementation from the pipeline: CheckpointRepository persists the
// append-oriented checkpoint log that makes runs resumable, and
// EmbeddingRepository persists committed multi-vector embeddings so the
// in-memory vector index can be rebuilt without re-embedding anything.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return these interfaces rather
// than concrete types:
//
//	repo, err := badger.NewCheckpointRepository(backend)  // storage.CheckpointRepository
//
// This keeps callers decoupled from BadgerDB specifics and lets tests
// substitute in-memory implementations without modification.
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
