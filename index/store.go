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


package index

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/poiesic/indexit/core"
)

// Store is the multi-granularity vector index. Writers serialize through a
// mutex; readers load the committed snapshot atomically and search it
// without locking.
type Store struct {
	mu       sync.Mutex
	pending  []core.IndexEntry
	staged   map[core.ID]struct{}
	snapshot atomic.Pointer[snapshot]
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty index store with an empty committed snapshot.
func NewStore(opts ...Option) *Store {
	s := &Store{
		staged: make(map[core.ID]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(emptySnapshot())
	return s
}

// EntryFromEmbedding projects a committed multi-vector record into the index
// entry indexed under its combined vector.
func EntryFromEmbedding(m *core.MultiVectorEmbedding, language, contentType string) core.IndexEntry {
	vector := make([]float32, len(m.Combined))
	copy(vector, m.Combined)
	return core.IndexEntry{
		Id:          m.Id,
		Vector:      vector,
		Language:    language,
		ContentType: contentType,
		Path:        m.Provenance.Path,
		Granularity: m.Provenance.Granularity,
		Degraded:    m.Degraded,
	}
}

// Add stages an entry for the next commit. The entry is not visible to
// queries until Commit publishes a snapshot containing it. A duplicate id,
// staged or committed, fails with a CollisionError.
func (s *Store) Add(entry core.IndexEntry) error {
	if len(entry.Vector) == 0 {
		return ErrInvalidVector
	}
	if err := core.ValidateGranularity(entry.Granularity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staged[entry.Id]; ok {
		return &core.CollisionError{Id: entry.Id}
	}
	if s.snapshot.Load().contains(entry.Id) {
		return &core.CollisionError{Id: entry.Id}
	}

	s.pending = append(s.pending, entry)
	s.staged[entry.Id] = struct{}{}
	return nil
}

// Build batch-inserts entries and commits them as one snapshot, returning
// the published snapshot id. On any entry error nothing is staged.
func (s *Store) Build(entries []core.IndexEntry) (uint64, error) {
	for _, entry := range entries {
		if err := s.Add(entry); err != nil {
			s.Discard()
			return 0, err
		}
	}
	return s.Commit(), nil
}

// Commit atomically publishes a new read-only snapshot that includes all
// pending entries. Readers in flight keep the snapshot they loaded. With
// nothing pending it is a no-op returning the current snapshot id.
func (s *Store) Commit() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.snapshot.Load()
	if len(s.pending) == 0 {
		return current.id
	}

	next := current.extend(s.pending)
	s.snapshot.Store(next)
	s.logger.Debug("index snapshot published",
		"snapshot", next.id, "added", len(s.pending), "total", len(next.entries))

	s.pending = nil
	s.staged = make(map[core.ID]struct{})
	return next.id
}

// Discard drops all pending entries without publishing them.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.staged = make(map[core.ID]struct{})
}

// SnapshotId returns the id of the last committed snapshot. Zero means no
// commit has happened yet.
func (s *Store) SnapshotId() uint64 {
	return s.snapshot.Load().id
}

// Len returns the number of committed entries, optionally limited to one
// granularity (zero means all).
func (s *Store) Len(granularity core.Granularity) int {
	snap := s.snapshot.Load()
	if granularity == 0 {
		return len(snap.entries)
	}
	return len(snap.byGranularity[granularity])
}

// Query returns up to k entries most similar to the vector, scores
// non-increasing, every result satisfying the filters. Granularity zero
// searches the combined index. An empty index yields an empty result set.
func (s *Store) Query(vector []float32, k int, filters Filters) ([]Result, error) {
	if len(vector) == 0 {
		return nil, ErrInvalidVector
	}
	if k <= 0 {
		return nil, nil
	}
	return s.snapshot.Load().search(vector, k, filters), nil
}
