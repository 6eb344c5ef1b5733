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


package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/indexit/chunking"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/embedding"
	"github.com/poiesic/indexit/graph"
	"github.com/poiesic/indexit/index"
	"github.com/poiesic/indexit/storage"
)

// DefaultBatchSize is the number of inputs per batch before derating.
const DefaultBatchSize = 32

// RunSummary reports the outcome of one indexing run. Per-unit failures
// degrade or skip individual inputs; they surface here, not as run errors.
type RunSummary struct {
	Inputs          int
	Skipped         int
	Files           int
	Embeddings      int
	Degraded        int
	Failed          int
	UnresolvedEdges int
	Batches         int
	SnapshotId      uint64
}

// Orchestrator drives chunking, embedding, indexing and graph construction
// over a content source, in bounded batches with a checkpoint after each.
type Orchestrator struct {
	monitor     *chunking.Monitor
	chunker     *chunking.Chunker
	generator   *embedding.Generator
	index       *index.Store
	graph       *graph.Store
	checkpoints storage.CheckpointRepository
	embeddings  storage.EmbeddingRepository
	edgeSource  EdgeSource

	pool          *ants.Pool
	batchSize     int
	memoryCeiling uint64
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for concurrent file processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithBatchSize sets the batch size before memory derating.
func WithBatchSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		o.batchSize = size
		return nil
	}
}

// WithMemoryCeiling sets the heap usage ceiling in bytes. Batches shrink
// while sampled usage approaches the ceiling. Zero disables derating.
func WithMemoryCeiling(bytes uint64) Option {
	return func(o *Orchestrator) error {
		o.memoryCeiling = bytes
		return nil
	}
}

// WithEdgeSource sets the relationship discovery collaborator. Without one,
// only per-file nodes are registered and the graph carries no edges.
func WithEdgeSource(source EdgeSource) Option {
	return func(o *Orchestrator) error {
		o.edgeSource = source
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a pipeline orchestrator over the given components.
func NewOrchestrator(
	monitor *chunking.Monitor,
	chunker *chunking.Chunker,
	generator *embedding.Generator,
	indexStore *index.Store,
	graphStore *graph.Store,
	checkpoints storage.CheckpointRepository,
	embeddings storage.EmbeddingRepository,
	opts ...Option,
) (*Orchestrator, error) {
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if indexStore == nil {
		return nil, ErrIndexRequired
	}
	if graphStore == nil {
		return nil, ErrGraphRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointsRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingsRequired
	}
	if monitor == nil {
		monitor = chunking.NewMonitor()
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		monitor:     monitor,
		chunker:     chunker,
		generator:   generator,
		index:       indexStore,
		graph:       graphStore,
		checkpoints: checkpoints,
		embeddings:  embeddings,
		pool:        pool,
		batchSize:   DefaultBatchSize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}
	return o, nil
}

// Release releases the worker pool. The orchestrator should not be used
// after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// fileResult carries everything one worker produced for one input. Nothing
// in it touches shared state until the commit phase.
type fileResult struct {
	input      Input
	embeddings []*core.MultiVectorEmbedding
	nodes      []core.GraphNode
	edges      []core.GraphEdge
	degraded   int
	err        error
}

// Run processes every input of the source not yet recorded complete in the
// checkpoint log. It returns the run summary together with the first fatal
// error; per-unit failures only count into the summary.
func (o *Orchestrator) Run(ctx context.Context, source ContentSource) (*RunSummary, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	summary := &RunSummary{}

	completed, err := o.checkpoints.CompletedInputs(ctx)
	if err != nil {
		return summary, err
	}
	nextBatch := uint64(1)
	if latest, latestErr := o.checkpoints.Latest(ctx); latestErr != nil {
		return summary, latestErr
	} else if latest != nil {
		nextBatch = latest.BatchId + 1
		summary.SnapshotId = latest.SnapshotId
	}

	inputs, err := source.List(ctx)
	if err != nil {
		return summary, err
	}
	summary.Inputs = len(inputs)

	var pending []Input
	for _, input := range inputs {
		if completed[input.Path] {
			summary.Skipped++
			continue
		}
		pending = append(pending, input)
	}

	o.logger.Info("indexing run starting",
		"inputs", len(inputs), "pending", len(pending), "skipped", summary.Skipped)

	for start := 0; start < len(pending); {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		size := o.nextBatchSize()
		end := min(start+size, len(pending))
		batch := pending[start:end]

		results := o.processBatch(ctx, source, batch)

		// A cancelled batch is discarded whole; nothing partial is ever
		// published or checkpointed.
		if err := ctx.Err(); err != nil {
			o.index.Discard()
			return summary, err
		}

		if err := o.commitBatch(ctx, nextBatch, results, summary); err != nil {
			o.index.Discard()
			return summary, err
		}
		nextBatch++
		summary.Batches++

		o.logger.Info("batch committed",
			"batch", summary.Batches, "processed", end, "pending", len(pending)-end,
			"embeddings", summary.Embeddings, "failed", summary.Failed)

		o.chunker.Adapt()
		start = end
	}

	o.logger.Info("indexing run complete",
		"files", summary.Files, "embeddings", summary.Embeddings,
		"degraded", summary.Degraded, "failed", summary.Failed,
		"unresolvedEdges", summary.UnresolvedEdges, "batches", summary.Batches)
	return summary, nil
}

// nextBatchSize derates the configured batch size as sampled heap usage
// approaches the memory ceiling.
func (o *Orchestrator) nextBatchSize() int {
	if o.memoryCeiling == 0 {
		return o.batchSize
	}

	usage := o.monitor.Sample()
	size := o.batchSize
	switch {
	case usage >= o.memoryCeiling:
		size = 1
	case usage*2 >= o.memoryCeiling:
		size = o.batchSize / 2
	}
	if size < 1 {
		size = 1
	}
	return size
}

// processBatch fans the batch out over the worker pool and joins on all of
// it. Workers never touch the index, graph or repositories; they only
// produce fileResults for the commit phase.
func (o *Orchestrator) processBatch(ctx context.Context, source ContentSource, batch []Input) []fileResult {
	results := make([]fileResult, len(batch))
	var wg sync.WaitGroup

	for i, input := range batch {
		wg.Add(1)
		submitErr := o.pool.Submit(func() {
			defer wg.Done()
			results[i] = o.processInput(ctx, source, input)
		})
		if submitErr != nil {
			results[i] = fileResult{input: input, err: submitErr}
			wg.Done()
		}
	}
	wg.Wait()
	return results
}

// processInput chunks, embeds and aggregates one input. The file embedding
// is produced strictly after every chunk embedding of the file.
func (o *Orchestrator) processInput(ctx context.Context, source ContentSource, input Input) fileResult {
	result := fileResult{input: input}

	content, err := source.Read(ctx, input.Path)
	if err != nil {
		result.err = err
		return result
	}

	chunks, err := o.chunker.Chunk(input.Path, input.Language, content)
	if err != nil {
		result.err = err
		return result
	}

	var chunkEmbeddings []*core.MultiVectorEmbedding
	for chunk := range chunks {
		m, genErr := o.generator.GenerateChunk(ctx, chunk)
		if genErr != nil {
			result.err = genErr
			return result
		}
		if m.Degraded {
			result.degraded++
		}
		chunkEmbeddings = append(chunkEmbeddings, m)
	}

	file, err := o.generator.AggregateFile(input.Path, input.Language, chunkEmbeddings)
	if err != nil {
		result.err = err
		return result
	}
	if file.Degraded {
		result.degraded++
	}
	result.embeddings = append(chunkEmbeddings, file)

	result.nodes = append(result.nodes, fileNodeOf(input))
	if o.edgeSource != nil {
		nodes, edges, discoverErr := o.edgeSource.Discover(ctx, input, content)
		if discoverErr != nil {
			o.logger.Warn("edge discovery failed", "path", input.Path, "err", discoverErr)
		} else {
			result.nodes = append(result.nodes, nodes...)
			result.edges = append(result.edges, edges...)
		}
	}
	return result
}

// commitBatch publishes one batch: embeddings persist and enter the index,
// the index snapshot commits, nodes and edges merge into the graph, and a
// checkpoint records the batch's completed inputs.
func (o *Orchestrator) commitBatch(ctx context.Context, batchId uint64, results []fileResult, summary *RunSummary) error {
	var completedPaths []string

	for _, result := range results {
		if result.err != nil {
			summary.Failed++
			o.logger.Warn("input failed", "path", result.input.Path, "err", result.err)
			continue
		}

		if err := o.embeddings.Put(ctx, result.embeddings...); err != nil {
			summary.Failed++
			o.logger.Error("persisting embeddings failed", "path", result.input.Path, "err", err)
			continue
		}

		for _, m := range result.embeddings {
			entry := index.EntryFromEmbedding(m, result.input.Language, result.input.ContentType)
			if err := o.index.Add(entry); err != nil {
				var collision *core.CollisionError
				if errors.As(err, &collision) {
					// Replay of a batch interrupted before its
					// checkpoint; the entry is already present.
					continue
				}
				return err
			}
			summary.Embeddings++
		}

		summary.Files++
		summary.Degraded += result.degraded
		completedPaths = append(completedPaths, result.input.Path)
	}

	snapshotId := o.index.Commit()
	summary.SnapshotId = snapshotId

	for _, result := range results {
		if result.err != nil {
			continue
		}
		for _, node := range result.nodes {
			if err := o.graph.AddNode(node); err != nil {
				o.logger.Warn("adding node failed", "node", node.ID, "err", err)
			}
		}
	}
	for _, result := range results {
		if result.err != nil {
			continue
		}
		for _, edge := range result.edges {
			if err := o.graph.AddEdge(edge); err != nil {
				if errors.Is(err, core.ErrUnknownNode) {
					summary.UnresolvedEdges++
					continue
				}
				o.logger.Warn("adding edge failed",
					"from", edge.From, "to", edge.To, "err", err)
			}
		}
	}

	return o.checkpoints.Append(ctx, &core.Checkpoint{
		BatchId:         batchId,
		CompletedInputs: completedPaths,
		SnapshotId:      snapshotId,
	})
}

// RebuildIndex restores an index store from persisted embeddings, so a
// query surface can come up without re-embedding anything. Entries already
// present are skipped. Returns the number of entries added.
func RebuildIndex(ctx context.Context, repo storage.EmbeddingRepository, store *index.Store) (int, error) {
	added := 0
	err := repo.All(ctx, func(m *core.MultiVectorEmbedding) error {
		entry := index.EntryFromEmbedding(m,
			DetectLanguage(m.Provenance.Path), ContentTypeOf(m.Provenance.Path))
		if addErr := store.Add(entry); addErr != nil {
			var collision *core.CollisionError
			if errors.As(addErr, &collision) {
				return nil
			}
			return addErr
		}
		added++
		return nil
	})
	if err != nil {
		store.Discard()
		return 0, err
	}
	store.Commit()
	return added, nil
}
