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


package storage

import (
	"context"

	"github.com/poiesic/indexit/core"
)

// CheckpointRepository persists the append-oriented checkpoint log. Each
// pipeline batch appends one entry; the union of completed inputs over the
// whole log is the resume set. Entries are never rewritten.
type CheckpointRepository interface {
	// Append persists a checkpoint for its batch id. Appending the same
	// batch id twice fails with ErrDuplicateKey.
	Append(ctx context.Context, checkpoint *core.Checkpoint) error

	// Latest returns the checkpoint with the highest batch id, or nil
	// when the log is empty.
	Latest(ctx context.Context) (*core.Checkpoint, error)

	// CompletedInputs returns the union of completed input identifiers
	// over the entire log.
	CompletedInputs(ctx context.Context) (map[string]bool, error)

	// Close releases resources held by the repository.
	Close() error
}

// EmbeddingRepository persists committed multi-vector embeddings. The
// in-memory vector index is rebuilt from this store on startup, so nothing
// needs re-embedding after a restart.
type EmbeddingRepository interface {
	// Put persists embeddings keyed by their ids. Re-putting an existing
	// id with identical content is a no-op, which is what makes batch
	// replay after a resume safe.
	Put(ctx context.Context, embeddings ...*core.MultiVectorEmbedding) error

	// Get retrieves a single embedding by id. Returns ErrNotFound when
	// the id is unknown.
	Get(ctx context.Context, id core.ID) (*core.MultiVectorEmbedding, error)

	// All streams every persisted embedding to fn. Iteration stops on the
	// first error fn returns.
	All(ctx context.Context, fn func(*core.MultiVectorEmbedding) error) error

	// Count returns the number of persisted embeddings.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}
