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
	"sort"
	"strings"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/embedding"
)

// Filters restricts a query to entries matching every set predicate.
// Zero values mean no restriction.
type Filters struct {
	Granularity     core.Granularity
	Language        string
	ContentType     string
	PathPrefix      string
	ExcludeDegraded bool
}

// Result is one query hit: the matched entry and its cosine similarity.
type Result struct {
	Entry core.IndexEntry
	Score float32
}

// snapshot is an immutable committed view of the index. All slices and maps
// are built once and never mutated; candidate lists hold positions into
// entries.
type snapshot struct {
	id      uint64
	entries []core.IndexEntry
	ids     map[core.ID]int

	byGranularity map[core.Granularity][]int
	byLanguage    map[string][]int
	byContentType map[string][]int
}

func emptySnapshot() *snapshot {
	return &snapshot{
		ids:           make(map[core.ID]int),
		byGranularity: make(map[core.Granularity][]int),
		byLanguage:    make(map[string][]int),
		byContentType: make(map[string][]int),
	}
}

func (s *snapshot) contains(id core.ID) bool {
	_, ok := s.ids[id]
	return ok
}

// extend builds the successor snapshot containing this snapshot's entries
// plus the additions. The receiver is left untouched.
func (s *snapshot) extend(additions []core.IndexEntry) *snapshot {
	next := &snapshot{
		id:            s.id + 1,
		entries:       make([]core.IndexEntry, 0, len(s.entries)+len(additions)),
		ids:           make(map[core.ID]int, len(s.ids)+len(additions)),
		byGranularity: make(map[core.Granularity][]int),
		byLanguage:    make(map[string][]int),
		byContentType: make(map[string][]int),
	}
	next.entries = append(next.entries, s.entries...)
	next.entries = append(next.entries, additions...)

	for i, entry := range next.entries {
		next.ids[entry.Id] = i
		next.byGranularity[entry.Granularity] = append(next.byGranularity[entry.Granularity], i)
		if entry.Language != "" {
			next.byLanguage[entry.Language] = append(next.byLanguage[entry.Language], i)
		}
		if entry.ContentType != "" {
			next.byContentType[entry.ContentType] = append(next.byContentType[entry.ContentType], i)
		}
	}
	return next
}

// candidates picks the most selective inverted list applicable to the
// filters, falling back to the full entry range. Per-entry predicates still
// verify every filter, so over-selection is impossible.
func (s *snapshot) candidates(filters Filters) []int {
	best := []int(nil)
	narrowed := false

	consider := func(list []int) {
		if !narrowed || len(list) < len(best) {
			best = list
			narrowed = true
		}
	}

	if filters.Granularity != 0 {
		consider(s.byGranularity[filters.Granularity])
	}
	if filters.Language != "" {
		consider(s.byLanguage[filters.Language])
	}
	if filters.ContentType != "" {
		consider(s.byContentType[filters.ContentType])
	}

	if narrowed {
		return best
	}
	all := make([]int, len(s.entries))
	for i := range all {
		all[i] = i
	}
	return all
}

func (s *snapshot) matches(entry core.IndexEntry, filters Filters) bool {
	if filters.Granularity != 0 && entry.Granularity != filters.Granularity {
		return false
	}
	if filters.Language != "" && entry.Language != filters.Language {
		return false
	}
	if filters.ContentType != "" && entry.ContentType != filters.ContentType {
		return false
	}
	if filters.PathPrefix != "" && !strings.HasPrefix(entry.Path, filters.PathPrefix) {
		return false
	}
	if filters.ExcludeDegraded && entry.Degraded {
		return false
	}
	return true
}

// search scans the filtered candidate set and returns the exact top k by
// cosine similarity, non-increasing.
func (s *snapshot) search(vector []float32, k int, filters Filters) []Result {
	if len(s.entries) == 0 {
		return nil
	}

	var results []Result
	for _, i := range s.candidates(filters) {
		entry := s.entries[i]
		if !s.matches(entry, filters) {
			continue
		}
		results = append(results, Result{
			Entry: entry,
			Score: embedding.Cosine(vector, entry.Vector),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
