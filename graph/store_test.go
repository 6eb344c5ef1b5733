package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/indexit/core"
)

func fileNode(id string) core.GraphNode {
	return core.GraphNode{ID: id, Name: id, Kind: core.NodeFile, Path: id, Language: "go"}
}

func addNodes(t *testing.T, s *Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, s.AddNode(fileNode(id)))
	}
}

func TestStoreAddNode(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.AddNode(fileNode("a")))
		require.NoError(t, s.AddNode(fileNode("a")))
		assert.Equal(t, 1, s.NodeCount())
	})

	t.Run("diverging fields overwrite", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.AddNode(fileNode("a")))

		updated := fileNode("a")
		updated.Language = "python"
		require.NoError(t, s.AddNode(updated))

		node, ok := s.Node("a")
		require.True(t, ok)
		assert.Equal(t, "python", node.Language)
		assert.Equal(t, 1, s.NodeCount())
	})

	t.Run("empty id rejected", func(t *testing.T) {
		s := NewStore()
		assert.ErrorIs(t, s.AddNode(core.GraphNode{}), ErrEmptyNodeId)
	})
}

func TestStoreAddEdge(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		s := NewStore()
		addNodes(t, s, "a", "b")
		edge := core.GraphEdge{From: "a", To: "b", Kind: core.EdgeImport}

		require.NoError(t, s.AddEdge(edge))
		require.NoError(t, s.AddEdge(edge))

		assert.Equal(t, 1, s.EdgeCount(0))
		assert.Equal(t, 1, s.EdgeCount(core.EdgeImport))
	})

	t.Run("kinds are separate graphs", func(t *testing.T) {
		s := NewStore()
		addNodes(t, s, "a", "b")

		require.NoError(t, s.AddEdge(core.GraphEdge{From: "a", To: "b", Kind: core.EdgeImport}))
		require.NoError(t, s.AddEdge(core.GraphEdge{From: "a", To: "b", Kind: core.EdgeCall}))

		assert.Equal(t, 2, s.EdgeCount(0))
		assert.Equal(t, 1, s.EdgeCount(core.EdgeImport))
		assert.Equal(t, 1, s.EdgeCount(core.EdgeCall))
		assert.Equal(t, 0, s.EdgeCount(core.EdgeDataFlow))
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		s := NewStore()
		addNodes(t, s, "a")

		err := s.AddEdge(core.GraphEdge{From: "a", To: "ghost", Kind: core.EdgeCall})
		assert.ErrorIs(t, err, core.ErrUnknownNode)

		err = s.AddEdge(core.GraphEdge{From: "ghost", To: "a", Kind: core.EdgeCall})
		assert.ErrorIs(t, err, core.ErrUnknownNode)
		assert.Equal(t, 0, s.EdgeCount(0))
	})

	t.Run("malformed edge", func(t *testing.T) {
		s := NewStore()
		addNodes(t, s, "a", "b")

		assert.ErrorIs(t, s.AddEdge(core.GraphEdge{From: "", To: "b", Kind: core.EdgeCall}), core.ErrMalformedEdge)
		assert.ErrorIs(t, s.AddEdge(core.GraphEdge{From: "a", To: "b", Kind: 99}), core.ErrMalformedEdge)
	})

	t.Run("self-loop accepted", func(t *testing.T) {
		s := NewStore()
		addNodes(t, s, "a")
		require.NoError(t, s.AddEdge(core.GraphEdge{From: "a", To: "a", Kind: core.EdgeCall}))
		assert.Equal(t, 1, s.EdgeCount(core.EdgeCall))
	})
}

func TestStoreEdgesOrdering(t *testing.T) {
	s := NewStore()
	addNodes(t, s, "a", "b", "c")
	require.NoError(t, s.AddEdge(core.GraphEdge{From: "c", To: "a", Kind: core.EdgeImport}))
	require.NoError(t, s.AddEdge(core.GraphEdge{From: "a", To: "b", Kind: core.EdgeImport}))
	require.NoError(t, s.AddEdge(core.GraphEdge{From: "b", To: "c", Kind: core.EdgeImport}))

	edges := s.Edges(core.EdgeImport)
	require.Len(t, edges, 3)
	assert.Equal(t, "a", edges[0].From)
	assert.Equal(t, "b", edges[1].From)
	assert.Equal(t, "c", edges[2].From)
}

func TestImpactSet(t *testing.T) {
	// a -> b -> c -> d, plus x -> b
	build := func(t *testing.T) *Store {
		s := NewStore()
		addNodes(t, s, "a", "b", "c", "d", "x")
		require.NoError(t, s.AddEdge(core.GraphEdge{From: "a", To: "b", Kind: core.EdgeImport}))
		require.NoError(t, s.AddEdge(core.GraphEdge{From: "b", To: "c", Kind: core.EdgeImport}))
		require.NoError(t, s.AddEdge(core.GraphEdge{From: "c", To: "d", Kind: core.EdgeImport}))
		require.NoError(t, s.AddEdge(core.GraphEdge{From: "x", To: "b", Kind: core.EdgeCall}))
		return s
	}

	t.Run("downstream bounded by depth", func(t *testing.T) {
		s := build(t)

		impact, err := s.ImpactSet("a", Downstream, 2)
		require.NoError(t, err)

		ids := nodeIds(impact.Nodes)
		assert.Equal(t, []string{"b", "c"}, ids, "depth 2 must not reach d")
		assert.Len(t, impact.Edges, 2)
	})

	t.Run("downstream full reach", func(t *testing.T) {
		s := build(t)

		impact, err := s.ImpactSet("a", Downstream, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "d"}, nodeIds(impact.Nodes))
	})

	t.Run("upstream crosses edge kinds", func(t *testing.T) {
		s := build(t)

		impact, err := s.ImpactSet("c", Upstream, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "x"}, nodeIds(impact.Nodes))
	})

	t.Run("cycle does not loop forever", func(t *testing.T) {
		s := NewStore()
		addNodes(t, s, "a", "b")
		require.NoError(t, s.AddEdge(core.GraphEdge{From: "a", To: "b", Kind: core.EdgeCall}))
		require.NoError(t, s.AddEdge(core.GraphEdge{From: "b", To: "a", Kind: core.EdgeCall}))

		impact, err := s.ImpactSet("a", Downstream, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, nodeIds(impact.Nodes),
			"origin reachable through the cycle is part of its own impact")
	})

	t.Run("unknown origin", func(t *testing.T) {
		s := build(t)
		_, err := s.ImpactSet("ghost", Downstream, 3)
		assert.ErrorIs(t, err, core.ErrUnknownNode)
	})

	t.Run("invalid depth", func(t *testing.T) {
		s := build(t)
		_, err := s.ImpactSet("a", Downstream, 0)
		assert.ErrorIs(t, err, ErrInvalidDepth)
	})

	t.Run("leaf has empty impact", func(t *testing.T) {
		s := build(t)
		impact, err := s.ImpactSet("d", Downstream, 5)
		require.NoError(t, err)
		assert.Empty(t, impact.Nodes)
		assert.Empty(t, impact.Edges)
	})
}

func nodeIds(nodes []core.GraphNode) []string {
	ids := make([]string, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
	}
	return ids
}
