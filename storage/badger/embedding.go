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


package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates an embedding repository on the backend.
func NewEmbeddingRepository(backend *Backend) (storage.EmbeddingRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	return &EmbeddingRepository{backend: backend}, nil
}

// Put persists embeddings keyed by their ids. Ids derive deterministically
// from provenance, so re-putting after a resume simply overwrites a record
// with identical bytes.
func (r *EmbeddingRepository) Put(ctx context.Context, embeddings ...*core.MultiVectorEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, embedding := range embeddings {
			if err := core.ValidateMultiVector(embedding); err != nil {
				return err
			}
			key := makeEmbeddingKey(embedding.Id)
			if err := tx.Set(key, storage.MarshalEmbedding(embedding)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a single embedding by id.
// Returns storage.ErrNotFound when the id is unknown.
func (r *EmbeddingRepository) Get(ctx context.Context, id core.ID) (*core.MultiVectorEmbedding, error) {
	var embedding *core.MultiVectorEmbedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: embedding %d", storage.ErrNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			embedding, unmarshalErr = storage.UnmarshalEmbedding(val)
			return unmarshalErr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return embedding, nil
}

// All streams every persisted embedding to fn in key order.
func (r *EmbeddingRepository) All(ctx context.Context, fn func(*core.MultiVectorEmbedding) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				embedding, unmarshalErr := storage.UnmarshalEmbedding(val)
				if unmarshalErr != nil {
					return unmarshalErr
				}
				return fn(embedding)
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Count returns the number of persisted embeddings.
func (r *EmbeddingRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close implements storage.EmbeddingRepository. The shared backend is
// closed by its owner.
func (r *EmbeddingRepository) Close() error {
	return nil
}
