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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/indexit"
	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/graph"
	"github.com/poiesic/indexit/index"
	"github.com/poiesic/indexit/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "indexit",
		Usage: "Memory-aware semantic indexing for source trees",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Chunk, embed and index a source tree",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "root",
						Aliases:  []string{"r"},
						Usage:    "Root of the source tree to index",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "generator-model",
						Usage:    "Generative model name for content descriptions",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of files to process in each batch",
						Value: pipeline.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (0 picks a CPU-based default)",
					},
					&cli.Uint64Flag{
						Name:  "memory-ceiling",
						Usage: "Heap usage in bytes above which batches shrink (0 disables)",
					},
					&cli.BoolFlag{
						Name:  "go-imports",
						Usage: "Discover module dependency edges from Go imports",
						Value: true,
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Search the index for content similar to a text",
				ArgsUsage: "<query text>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "generator-model",
						Usage:    "Generative model name for content descriptions",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "granularity",
						Usage: "Restrict results to one granularity (chunk, file, function, module)",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Restrict results to one language tag",
					},
					&cli.StringFlag{
						Name:  "path-prefix",
						Usage: "Restrict results to paths under a prefix",
					},
					&cli.BoolFlag{
						Name:  "exclude-degraded",
						Usage: "Drop entries whose semantic aspect is missing",
					},
				},
			},
			{
				Name:      "impact",
				Usage:     "Report the impact set of a graph node in a source tree",
				ArgsUsage: "<node id>",
				Action:    impactCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "root",
						Aliases:  []string{"r"},
						Usage:    "Root of the source tree to analyze",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "direction",
						Usage: "Traversal direction (downstream, upstream)",
						Value: "upstream",
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Maximum traversal depth",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:  "analyze",
						Usage: "Also report cycles and centrality for the whole graph",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*indexit.Database, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorModel(c.String("generator-model")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return indexit.NewDatabase(c.String("db"), indexit.WithAIConfig(config))
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipelineOpts := []pipeline.Option{
		pipeline.WithBatchSize(c.Int("batch-size")),
	}
	if workers := c.Int("workers"); workers > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithPoolSize(workers))
	}
	if ceiling := c.Uint64("memory-ceiling"); ceiling > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithMemoryCeiling(ceiling))
	}
	if c.Bool("go-imports") {
		pipelineOpts = append(pipelineOpts, pipeline.WithEdgeSource(pipeline.GoImportEdgeSource{}))
	}

	orchestrator, err := db.NewOrchestrator(nil, pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	summary, err := orchestrator.Run(ctx, pipeline.NewFSSource(c.String("root")))
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Inputs: %d (skipped %d)\n", summary.Inputs, summary.Skipped)
	fmt.Fprintf(os.Stderr, "Files indexed: %d (failed %d)\n", summary.Files, summary.Failed)
	fmt.Fprintf(os.Stderr, "Embeddings: %d (degraded %d)\n", summary.Embeddings, summary.Degraded)
	fmt.Fprintf(os.Stderr, "Batches: %d, snapshot %d\n", summary.Batches, summary.SnapshotId)
	if summary.UnresolvedEdges > 0 {
		fmt.Fprintf(os.Stderr, "Unresolved edges: %d\n", summary.UnresolvedEdges)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("query text is required")
	}

	filters := index.Filters{
		Language:        c.String("language"),
		PathPrefix:      c.String("path-prefix"),
		ExcludeDegraded: c.Bool("exclude-degraded"),
	}
	if tag := c.String("granularity"); tag != "" {
		granularity, err := parseGranularity(tag)
		if err != nil {
			return err
		}
		filters.Granularity = granularity
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	restored, err := db.RestoreIndex(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore index: %w", err)
	}
	if restored == 0 {
		return fmt.Errorf("index is empty; run 'indexit index' first")
	}

	queryEmbedding, err := db.QueryEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := db.Index().Query(queryEmbedding, c.Int("top-k"), filters)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		marker := ""
		if hit.Entry.Degraded {
			marker = " (degraded)"
		}
		fmt.Printf("%d: %s [%s/%s] score %.3f%s\n",
			i, hit.Entry.Path, hit.Entry.Granularity, hit.Entry.Language,
			hit.Score, marker)
	}
	return nil
}

func impactCommand(c *cli.Context) error {
	ctx := context.Background()

	origin := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if origin == "" {
		return fmt.Errorf("node id is required")
	}

	direction := graph.Upstream
	switch strings.ToLower(c.String("direction")) {
	case "upstream":
	case "downstream":
		direction = graph.Downstream
	default:
		return fmt.Errorf("invalid direction %q: must be downstream or upstream", c.String("direction"))
	}

	store := graph.NewStore()
	unresolved, err := pipeline.DiscoverGraph(ctx,
		pipeline.NewFSSource(c.String("root")), pipeline.GoImportEdgeSource{}, store)
	if err != nil {
		return fmt.Errorf("graph discovery failed: %w", err)
	}
	if unresolved > 0 {
		fmt.Fprintf(os.Stderr, "Unresolved edges: %d\n", unresolved)
	}

	impact, err := store.ImpactSet(origin, direction, c.Int("depth"))
	if err != nil {
		return fmt.Errorf("impact query failed: %w", err)
	}

	fmt.Printf("%s impact of %s: %d nodes, %d edges\n",
		direction, origin, len(impact.Nodes), len(impact.Edges))
	for _, node := range impact.Nodes {
		fmt.Printf("  %s (%s)\n", node.ID, node.Kind)
	}

	if c.Bool("analyze") {
		analysis := store.Analyze(0)
		fmt.Printf("Cycles: %d, self-loops: %d\n", len(analysis.Components), len(analysis.SelfLoops))
		for _, component := range analysis.Components {
			fmt.Printf("  cycle: %s\n", strings.Join(component, " -> "))
		}
		for i, rank := range analysis.Centrality {
			if i >= 5 {
				break
			}
			fmt.Printf("  central: %s (in %d, out %d)\n", rank.ID, rank.FanIn, rank.FanOut)
		}
	}
	return nil
}

func parseGranularity(tag string) (core.Granularity, error) {
	for _, granularity := range core.Granularities {
		if granularity.String() == strings.ToLower(tag) {
			return granularity, nil
		}
	}
	return 0, fmt.Errorf("invalid granularity %q: must be one of chunk, file, function, module", tag)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
