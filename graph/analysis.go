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


package graph

import (
	"sort"

	"github.com/poiesic/indexit/core"
)

// NodeRank is one entry of the centrality ranking.
type NodeRank struct {
	ID     string
	FanIn  int
	FanOut int
	Degree int
}

// Analysis is the structural report over one graph view.
type Analysis struct {
	// Components lists every strongly-connected component with more than
	// one node, largest first. Cycles are expected in real codebases and
	// are reported here, never treated as errors.
	Components [][]string

	// SelfLoops lists nodes with an edge to themselves.
	SelfLoops []string

	FanIn  map[string]int
	FanOut map[string]int

	// Centrality ranks all nodes by total degree, descending; ties break
	// by id for deterministic output.
	Centrality []NodeRank
}

// Analyze computes the structural report for the graph of one edge kind,
// or for the combined view when kind is zero.
func (s *Store) Analyze(kind core.EdgeKind) *Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.out[kind]
	in := s.in[kind]

	analysis := &Analysis{
		FanIn:  make(map[string]int, len(s.nodes)),
		FanOut: make(map[string]int, len(s.nodes)),
	}

	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
		analysis.FanOut[id] = len(uniqueOf(out[id]))
		analysis.FanIn[id] = len(uniqueOf(in[id]))
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, neighbor := range out[id] {
			if neighbor == id {
				analysis.SelfLoops = append(analysis.SelfLoops, id)
				break
			}
		}
	}

	for _, component := range stronglyConnected(ids, out) {
		if len(component) > 1 {
			sort.Strings(component)
			analysis.Components = append(analysis.Components, component)
		}
	}
	sort.Slice(analysis.Components, func(a, b int) bool {
		if len(analysis.Components[a]) != len(analysis.Components[b]) {
			return len(analysis.Components[a]) > len(analysis.Components[b])
		}
		return analysis.Components[a][0] < analysis.Components[b][0]
	})

	analysis.Centrality = make([]NodeRank, 0, len(ids))
	for _, id := range ids {
		analysis.Centrality = append(analysis.Centrality, NodeRank{
			ID:     id,
			FanIn:  analysis.FanIn[id],
			FanOut: analysis.FanOut[id],
			Degree: analysis.FanIn[id] + analysis.FanOut[id],
		})
	}
	sort.SliceStable(analysis.Centrality, func(a, b int) bool {
		return analysis.Centrality[a].Degree > analysis.Centrality[b].Degree
	})

	return analysis
}

func uniqueOf(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var unique []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique
}

// stronglyConnected runs Tarjan's algorithm iteratively so deep dependency
// chains cannot overflow the goroutine stack.
func stronglyConnected(ids []string, out map[string][]string) [][]string {
	index := 0
	indices := make(map[string]int, len(ids))
	lowlink := make(map[string]int, len(ids))
	onStack := make(map[string]bool, len(ids))
	var stack []string
	var components [][]string

	type frame struct {
		id   string
		next int
	}

	for _, root := range ids {
		if _, visited := indices[root]; visited {
			continue
		}

		work := []frame{{id: root}}
		for len(work) > 0 {
			top := &work[len(work)-1]
			id := top.id

			if top.next == 0 {
				indices[id] = index
				lowlink[id] = index
				index++
				stack = append(stack, id)
				onStack[id] = true
			}

			advanced := false
			neighbors := out[id]
			for top.next < len(neighbors) {
				neighbor := neighbors[top.next]
				top.next++
				if _, visited := indices[neighbor]; !visited {
					work = append(work, frame{id: neighbor})
					advanced = true
					break
				}
				if onStack[neighbor] && indices[neighbor] < lowlink[id] {
					lowlink[id] = indices[neighbor]
				}
			}
			if advanced {
				continue
			}

			if lowlink[id] == indices[id] {
				var component []string
				for {
					n := len(stack) - 1
					member := stack[n]
					stack = stack[:n]
					onStack[member] = false
					component = append(component, member)
					if member == id {
						break
					}
				}
				components = append(components, component)
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if lowlink[id] < lowlink[parent.id] {
					lowlink[parent.id] = lowlink[id]
				}
			}
		}
	}

	return components
}
