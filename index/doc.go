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


// Package index maintains the multi-granularity vector indices.
//
// A Store holds one index per granularity (chunk, file, function, module)
// plus a combined view spanning all of them, with inverted metadata maps for
// filter predicates. Writes accumulate as pending entries and become visible
// only when Commit publishes a new immutable snapshot; readers always query
// the last committed snapshot and are never blocked by a writer. Similarity
// is cosine over unit-normalized vectors.
package index
