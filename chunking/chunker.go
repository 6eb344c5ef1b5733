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


package chunking

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/poiesic/indexit/core"
)

const (
	// defaultAvgLineLength is assumed when content has no line structure.
	defaultAvgLineLength = 80

	// growFactor and shrinkFactor adjust the chunk size by 20% per step.
	growFactor   = 1.2
	shrinkFactor = 0.8
)

// Config holds the chunking parameters. Sizes are in bytes.
type Config struct {
	MinSize      int
	MaxSize      int
	OverlapBytes int
	TargetMemory uint64 // Memory usage above which chunk sizes shrink
}

// DefaultConfig returns chunking parameters suited to source trees of
// ordinary file sizes.
func DefaultConfig() Config {
	return Config{
		MinSize:      1 << 10,
		MaxSize:      16 << 10,
		OverlapBytes: 256,
		TargetMemory: 512 << 20,
	}
}

// Validate checks the configuration for degenerate bounds.
func (c Config) Validate() error {
	if c.MinSize <= 0 || c.MaxSize < c.MinSize {
		return fmt.Errorf("%w: min=%d max=%d", core.ErrInvalidChunkBounds, c.MinSize, c.MaxSize)
	}
	if c.OverlapBytes < 0 {
		return fmt.Errorf("%w: negative overlap %d", core.ErrInvalidChunkBounds, c.OverlapBytes)
	}
	return nil
}

// Chunker splits content into overlapping chunks whose target size tracks
// memory pressure. It is safe for concurrent use; the adaptive size is the
// only shared state and is held atomically.
type Chunker struct {
	monitor *Monitor
	config  Config
	size    atomic.Int64 // current target chunk size in bytes
	logger  *slog.Logger
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) ChunkerOption {
	return func(c *Chunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChunker creates an adaptive chunker. The initial chunk size is the
// configured maximum; memory pressure walks it down toward the minimum.
func NewChunker(monitor *Monitor, config Config, opts ...ChunkerOption) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if monitor == nil {
		monitor = NewMonitor()
	}

	c := &Chunker{
		monitor: monitor,
		config:  config,
		logger:  slog.Default(),
	}
	c.size.Store(int64(config.MaxSize))
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CurrentSize returns the chunk size the next Chunk call will target.
func (c *Chunker) CurrentSize() int {
	return int(c.size.Load())
}

// Adapt re-evaluates the target chunk size against the latest memory sample:
// shrink 20% above the target, grow 20% below half the target, clamped to
// [MinSize, MaxSize]. Returns the new size.
func (c *Chunker) Adapt() int {
	usage := c.monitor.Sample()
	size := float64(c.size.Load())

	switch {
	case usage > c.config.TargetMemory:
		size *= shrinkFactor
	case usage < c.config.TargetMemory/2:
		size *= growFactor
	}

	clamped := min(max(int(size), c.config.MinSize), c.config.MaxSize)
	c.size.Store(int64(clamped))
	return clamped
}

// Chunk splits content into an ordered, lazily produced chunk sequence.
// The sequence is finite and non-restartable; re-invoke Chunk to iterate
// again. Returns an error for empty content or a configuration that would
// prevent the split loop from making progress.
func (c *Chunker) Chunk(source, language, content string) (iter.Seq[core.Chunk], error) {
	size := c.Adapt()
	c.logger.Debug("chunking content",
		"source", source, "bytes", len(content), "chunkSize", size)
	return Split(source, language, content, size, c.config.OverlapBytes)
}

// Split is the standalone chunking utility: it divides content into chunks
// of roughly chunkSize bytes with overlapBytes of shared context between
// neighbours, independent of any adaptive policy.
//
// The non-overlapped chunk ranges cover every line of the content exactly
// once, with strictly increasing start lines.
func Split(source, language, content string, chunkSize, overlapBytes int) (iter.Seq[core.Chunk], error) {
	if len(content) == 0 {
		return nil, core.ErrEmptyContent
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", core.ErrInvalidChunkBounds, chunkSize)
	}

	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	// Whole content fits in one chunk.
	if len(content) <= chunkSize {
		return func(yield func(core.Chunk) bool) {
			yield(core.Chunk{
				Source:    source,
				Language:  language,
				Content:   content,
				StartLine: 0,
				EndLine:   totalLines,
				Index:     0,
			})
		}, nil
	}

	avgLineLength := len(content) / totalLines
	if avgLineLength == 0 {
		avgLineLength = defaultAvgLineLength
	}

	linesPerChunk := chunkSize / avgLineLength
	if linesPerChunk < 1 {
		linesPerChunk = 1
	}
	overlapLines := max(1, overlapBytes/avgLineLength)

	// The loop advances by linesPerChunk-overlapLines each iteration; an
	// overlap that large would never terminate. Fail fast instead.
	if overlapLines >= linesPerChunk {
		return nil, fmt.Errorf("%w: overlap %d lines, chunk %d lines",
			core.ErrOverlapTooLarge, overlapLines, linesPerChunk)
	}

	return func(yield func(core.Chunk) bool) {
		index := 0
		for start := 0; start < totalLines; {
			end := min(start+linesPerChunk, totalLines)
			chunk := core.Chunk{
				Source:    source,
				Language:  language,
				Content:   strings.Join(lines[start:end], "\n"),
				StartLine: start,
				EndLine:   end,
				Index:     index,
			}
			if !yield(chunk) {
				return
			}
			if end >= totalLines {
				return
			}
			start = end - overlapLines
			index++
		}
	}, nil
}
