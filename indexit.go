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


package indexit

import (
	"context"
	"log/slog"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/ai/openai"
	"github.com/poiesic/indexit/chunking"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/embedding"
	"github.com/poiesic/indexit/graph"
	"github.com/poiesic/indexit/index"
	"github.com/poiesic/indexit/pipeline"
	"github.com/poiesic/indexit/storage"
	"github.com/poiesic/indexit/storage/badger"
)

// Database bundles the persistent stores, the in-memory index and graph,
// and the AI provider behind one lifecycle.
type Database struct {
	backend        *badger.Backend
	checkpointRepo storage.CheckpointRepository
	embeddingRepo  storage.EmbeddingRepository
	provider       ai.Provider
	indexStore     *index.Store
	graphStore     *graph.Store
	monitor        *chunking.Monitor
	chunkConfig    chunking.Config
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig    *ai.Config
	provider    ai.Provider
	chunkConfig chunking.Config
	inMemory    bool
}

// WithAIConfig overrides the provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider, bypassing the
// OpenAI-compatible default.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithChunkConfig overrides the chunking parameters.
func WithChunkConfig(config chunking.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.chunkConfig = config
	}
}

// WithInMemoryStorage keeps all persistent state in memory. Intended for
// tests and throwaway runs.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:    ai.DefaultConfig(),
		chunkConfig: chunking.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	checkpointRepo, err := badger.NewCheckpointRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embeddingRepo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		checkpointRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			embeddingRepo.Close()
			checkpointRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:        backend,
		checkpointRepo: checkpointRepo,
		embeddingRepo:  embeddingRepo,
		provider:       provider,
		indexStore:     index.NewStore(),
		graphStore:     graph.NewStore(),
		monitor:        chunking.NewMonitor(),
		chunkConfig:    options.chunkConfig,
		logger:         slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.embeddingRepo.Close(); err != nil {
		db.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := db.checkpointRepo.Close(); err != nil {
		db.logger.Error("error closing checkpoint repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) Index() *index.Store {
	return db.indexStore
}

func (db *Database) Graph() *graph.Store {
	return db.graphStore
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpointRepo
}

func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.embeddingRepo
}

// NewOrchestrator wires an indexing pipeline over the database's stores and
// provider. The caller owns the orchestrator and must Release it.
func (db *Database) NewOrchestrator(genOpts []embedding.GeneratorOption, opts ...pipeline.Option) (*pipeline.Orchestrator, error) {
	chunker, err := chunking.NewChunker(db.monitor, db.chunkConfig)
	if err != nil {
		return nil, err
	}

	generator, err := embedding.NewGenerator(
		db.provider.Embedder(), db.provider.Generator(), genOpts...)
	if err != nil {
		return nil, err
	}

	return pipeline.NewOrchestrator(
		db.monitor, chunker, generator,
		db.indexStore, db.graphStore,
		db.checkpointRepo, db.embeddingRepo,
		opts...)
}

// QueryEmbedding produces the combined-space vector for a free-text query,
// suitable for passing to Index().Query. Options must match those the index
// was built with, in particular the dimension.
func (db *Database) QueryEmbedding(ctx context.Context, text string, opts ...embedding.GeneratorOption) ([]float32, error) {
	generator, err := embedding.NewGenerator(
		db.provider.Embedder(), db.provider.Generator(), opts...)
	if err != nil {
		return nil, err
	}

	m, err := generator.Generate(ctx, embedding.Unit{
		Path:        "query",
		Language:    "text",
		ContentType: "doc",
		Content:     text,
		Granularity: core.GranularityChunk,
	})
	if err != nil {
		return nil, err
	}
	return m.Combined, nil
}

// RestoreIndex reloads the in-memory index from persisted embeddings, so
// queries work without re-running the pipeline. Returns the number of
// entries restored.
func (db *Database) RestoreIndex(ctx context.Context) (int, error) {
	return pipeline.RebuildIndex(ctx, db.embeddingRepo, db.indexStore)
}
