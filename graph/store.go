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
	"fmt"
	"sort"
	"sync"

	"github.com/poiesic/indexit/core"
)

// Direction selects which way edges are followed during impact queries.
type Direction int

const (
	// Downstream follows outgoing edges: what the node affects.
	Downstream Direction = iota + 1
	// Upstream follows incoming edges: what affects the node.
	Upstream
)

func (d Direction) String() string {
	switch d {
	case Downstream:
		return "downstream"
	case Upstream:
		return "upstream"
	default:
		return "unknown"
	}
}

type edgeKey struct {
	from string
	to   string
	kind core.EdgeKind
}

// Store holds the relationship graphs. All methods are safe for concurrent
// use; reads take the shared lock and never see a half-inserted edge.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]core.GraphNode
	edges map[edgeKey]core.GraphEdge

	// adjacency per edge kind, and the combined view under kind 0
	out map[core.EdgeKind]map[string][]string
	in  map[core.EdgeKind]map[string][]string
}

// NewStore creates an empty relationship graph store.
func NewStore() *Store {
	s := &Store{
		nodes: make(map[string]core.GraphNode),
		edges: make(map[edgeKey]core.GraphEdge),
		out:   make(map[core.EdgeKind]map[string][]string),
		in:    make(map[core.EdgeKind]map[string][]string),
	}
	for _, kind := range append([]core.EdgeKind{0}, core.EdgeKinds...) {
		s.out[kind] = make(map[string][]string)
		s.in[kind] = make(map[string][]string)
	}
	return s
}

// AddNode inserts or refreshes a node. Re-adding is a no-op when nothing
// changed; diverging fields overwrite the stored node.
func (s *Store) AddNode(node core.GraphNode) error {
	if node.ID == "" {
		return ErrEmptyNodeId
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[node.ID] = node
	return nil
}

// AddEdge inserts a directed edge fact into the graph of its kind and into
// the combined view. Both endpoints must already be known; an edge against
// a missing node fails with ErrUnknownNode so the caller can count it as
// unresolved and retry once the node arrives. Re-adding an identical edge
// is a no-op.
func (s *Store) AddEdge(edge core.GraphEdge) error {
	if err := core.ValidateEdge(edge); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[edge.From]; !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownNode, edge.From)
	}
	if _, ok := s.nodes[edge.To]; !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownNode, edge.To)
	}

	key := edgeKey{from: edge.From, to: edge.To, kind: edge.Kind}
	if _, ok := s.edges[key]; ok {
		return nil
	}
	s.edges[key] = edge

	s.out[edge.Kind][edge.From] = append(s.out[edge.Kind][edge.From], edge.To)
	s.in[edge.Kind][edge.To] = append(s.in[edge.Kind][edge.To], edge.From)
	s.out[0][edge.From] = append(s.out[0][edge.From], edge.To)
	s.in[0][edge.To] = append(s.in[0][edge.To], edge.From)
	return nil
}

// Node returns a stored node by id.
func (s *Store) Node(id string) (core.GraphNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	return node, ok
}

// NodeCount returns the number of distinct nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of distinct edges of one kind, or across
// all kinds when kind is zero.
func (s *Store) EdgeCount(kind core.EdgeKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if kind == 0 {
		return len(s.edges)
	}
	count := 0
	for key := range s.edges {
		if key.kind == kind {
			count++
		}
	}
	return count
}

// Nodes returns all nodes ordered by id.
func (s *Store) Nodes() []core.GraphNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]core.GraphNode, 0, len(s.nodes))
	for _, node := range s.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(a, b int) bool { return nodes[a].ID < nodes[b].ID })
	return nodes
}

// Edges returns all edges of one kind (zero for all), ordered by
// from/to/kind for deterministic output.
func (s *Store) Edges(kind core.EdgeKind) []core.GraphEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]core.GraphEdge, 0, len(s.edges))
	for key, edge := range s.edges {
		if kind == 0 || key.kind == kind {
			edges = append(edges, edge)
		}
	}
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].From != edges[b].From {
			return edges[a].From < edges[b].From
		}
		if edges[a].To != edges[b].To {
			return edges[a].To < edges[b].To
		}
		return edges[a].Kind < edges[b].Kind
	})
	return edges
}

// Impact is the reachable subgraph of an impact query.
type Impact struct {
	Origin    string
	Direction Direction
	Nodes     []core.GraphNode
	Edges     []core.GraphEdge
}

// ImpactSet returns every node reachable from the origin within maxDepth
// hops following edges of any kind in the given direction, together with
// the edges traversed. The origin itself is not part of Nodes unless it is
// reachable from itself through a cycle.
func (s *Store) ImpactSet(origin string, direction Direction, maxDepth int) (*Impact, error) {
	if maxDepth < 1 {
		return nil, ErrInvalidDepth
	}
	if direction != Downstream && direction != Upstream {
		return nil, fmt.Errorf("%w: direction %d", core.ErrMalformedEdge, direction)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[origin]; !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownNode, origin)
	}

	adjacency := s.out[0]
	if direction == Upstream {
		adjacency = s.in[0]
	}

	impact := &Impact{Origin: origin, Direction: direction}
	visited := map[string]bool{}
	traversed := map[edgeKey]bool{}
	frontier := []string{origin}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range adjacency[id] {
				from, to := id, neighbor
				if direction == Upstream {
					from, to = neighbor, id
				}
				for _, kind := range core.EdgeKinds {
					key := edgeKey{from: from, to: to, kind: kind}
					if edge, ok := s.edges[key]; ok && !traversed[key] {
						traversed[key] = true
						impact.Edges = append(impact.Edges, edge)
					}
				}

				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				impact.Nodes = append(impact.Nodes, s.nodes[neighbor])
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	sort.Slice(impact.Nodes, func(a, b int) bool {
		return impact.Nodes[a].ID < impact.Nodes[b].ID
	})
	return impact, nil
}
