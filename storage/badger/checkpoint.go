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
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/storage"
)

// CheckpointRepository implements storage.CheckpointRepository for BadgerDB.
// Checkpoints form an append-oriented log keyed by big-endian batch id, so
// iterating the key range visits batches in order.
type CheckpointRepository struct {
	backend *Backend
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

// NewCheckpointRepository creates a checkpoint repository on the backend.
func NewCheckpointRepository(backend *Backend) (storage.CheckpointRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	return &CheckpointRepository{backend: backend}, nil
}

// Append persists a checkpoint under its batch id. An existing entry for
// the batch id fails with ErrDuplicateKey; log entries are never rewritten.
func (r *CheckpointRepository) Append(ctx context.Context, checkpoint *core.Checkpoint) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckpointKey(checkpoint.BatchId)
		if _, err := tx.Get(key); err == nil {
			return fmt.Errorf("%w: checkpoint batch %d", storage.ErrDuplicateKey, checkpoint.BatchId)
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		checkpoint.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalCheckpoint(checkpoint)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Latest returns the checkpoint with the highest batch id.
// Returns nil, nil when the log is empty.
func (r *CheckpointRepository) Latest(ctx context.Context) (*core.Checkpoint, error) {
	var checkpoint *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(checkpointPrefix + ":")
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration starts past the end of the prefix range.
		seek := append([]byte(checkpointPrefix+":"), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		iter.Seek(seek)
		if !iter.Valid() {
			return nil
		}

		return iter.Item().Value(func(val []byte) error {
			var unmarshalErr error
			checkpoint, unmarshalErr = storage.UnmarshalCheckpoint(val)
			return unmarshalErr
		})
	}, false)

	return checkpoint, err
}

// CompletedInputs returns the union of completed input identifiers over the
// entire log.
func (r *CheckpointRepository) CompletedInputs(ctx context.Context) (map[string]bool, error) {
	completed := make(map[string]bool)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(checkpointPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				checkpoint, unmarshalErr := storage.UnmarshalCheckpoint(val)
				if unmarshalErr != nil {
					return unmarshalErr
				}
				for _, input := range checkpoint.CompletedInputs {
					completed[input] = true
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return completed, nil
}

// Close implements storage.CheckpointRepository. The shared backend is
// closed by its owner.
func (r *CheckpointRepository) Close() error {
	return nil
}
