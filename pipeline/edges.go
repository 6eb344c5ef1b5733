package pipeline

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/graph"
)

// EdgeSource discovers relationship facts for one input. Implementations
// are language analyzers living outside this module; the pipeline only
// merges what they report.
type EdgeSource interface {
	// Discover returns the nodes and directed edges found in the content
	// of one input. Edges may reference nodes of other inputs; edges
	// whose endpoint is still unknown are counted as unresolved, not
	// treated as failures.
	Discover(ctx context.Context, input Input, content string) ([]core.GraphNode, []core.GraphEdge, error)
}

// EdgeSourceFunc adapts a function to the EdgeSource interface.
type EdgeSourceFunc func(ctx context.Context, input Input, content string) ([]core.GraphNode, []core.GraphEdge, error)

// Discover implements EdgeSource.
func (f EdgeSourceFunc) Discover(ctx context.Context, input Input, content string) ([]core.GraphNode, []core.GraphEdge, error) {
	return f(ctx, input, content)
}

// fileNodeOf is the node the pipeline registers for every input, so edge
// facts between files always resolve even without a configured EdgeSource.
func fileNodeOf(input Input) core.GraphNode {
	return core.GraphNode{
		ID:       input.Path,
		Name:     input.Path,
		Kind:     core.NodeFile,
		Path:     input.Path,
		Language: input.Language,
	}
}

// GoImportEdgeSource reports module dependency edges for Go files by
// parsing their import declarations. Non-Go inputs yield nothing.
type GoImportEdgeSource struct{}

var _ EdgeSource = GoImportEdgeSource{}

// Discover parses the file's imports and returns one module node plus one
// dependency edge per imported path.
func (GoImportEdgeSource) Discover(ctx context.Context, input Input, content string) ([]core.GraphNode, []core.GraphEdge, error) {
	if input.Language != "go" {
		return nil, nil, nil
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, input.Path, content, parser.ImportsOnly)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing imports of %s: %w", input.Path, err)
	}

	var nodes []core.GraphNode
	var edges []core.GraphEdge
	for _, imp := range file.Imports {
		path, unquoteErr := strconv.Unquote(imp.Path.Value)
		if unquoteErr != nil {
			continue
		}
		nodes = append(nodes, core.GraphNode{
			ID:       "mod:" + path,
			Name:     path,
			Kind:     core.NodeModule,
			Language: "go",
		})
		edges = append(edges, core.GraphEdge{
			From:   input.Path,
			To:     "mod:" + path,
			Kind:   core.EdgeModuleDependency,
			Static: true,
		})
	}
	return nodes, edges, nil
}

// DiscoverGraph builds a relationship graph from a source without running
// the embedding pipeline. Every listed input gets a file node; discovered
// nodes merge before edges so intra-source references resolve. Returns the
// number of edges whose endpoint stayed unknown.
func DiscoverGraph(ctx context.Context, source ContentSource, edgeSource EdgeSource, store *graph.Store) (int, error) {
	inputs, err := source.List(ctx)
	if err != nil {
		return 0, err
	}

	var pendingNodes []core.GraphNode
	var pendingEdges []core.GraphEdge
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		pendingNodes = append(pendingNodes, fileNodeOf(input))
		if edgeSource == nil {
			continue
		}
		content, readErr := source.Read(ctx, input.Path)
		if readErr != nil {
			return 0, readErr
		}
		nodes, edges, discoverErr := edgeSource.Discover(ctx, input, content)
		if discoverErr != nil {
			continue
		}
		pendingNodes = append(pendingNodes, nodes...)
		pendingEdges = append(pendingEdges, edges...)
	}

	for _, node := range pendingNodes {
		if err := store.AddNode(node); err != nil {
			return 0, err
		}
	}
	unresolved := 0
	for _, edge := range pendingEdges {
		if err := store.AddEdge(edge); err != nil {
			if errors.Is(err, core.ErrUnknownNode) {
				unresolved++
				continue
			}
			return 0, err
		}
	}
	return unresolved, nil
}
