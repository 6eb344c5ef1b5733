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


package core

import (
	"errors"
	"fmt"
)

// Chunking errors
var (
	// ErrEmptyContent indicates the chunker was given empty content.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidChunkBounds indicates min/max size bounds are degenerate.
	ErrInvalidChunkBounds = errors.New("invalid chunk size bounds")

	// ErrOverlapTooLarge indicates the configured overlap is at least as
	// large as the chunk size, which would make the chunk loop non-progressing.
	ErrOverlapTooLarge = errors.New("overlap must be smaller than chunk size")
)

// Feature extraction and embedding errors
var (
	// ErrFeatureExtraction indicates structural feature extraction failed
	// on malformed input.
	ErrFeatureExtraction = errors.New("feature extraction failed")

	// ErrEmbeddingFailed indicates the external embedding call failed after
	// exhausted retries.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrNoVectors indicates a combination was requested with no input vectors.
	ErrNoVectors = errors.New("no vectors to combine")

	// ErrNegativeWeight indicates a fusion weight below zero.
	ErrNegativeWeight = errors.New("fusion weights must be non-negative")
)

// Index errors
var (
	// ErrEmptyVector indicates an index operation was given a zero-length vector.
	ErrEmptyVector = errors.New("vector cannot be empty")
)

// Graph errors
var (
	// ErrMalformedEdge indicates an edge fact with an empty endpoint.
	ErrMalformedEdge = errors.New("edge endpoints cannot be empty")

	// ErrUnknownNode indicates a traversal was requested from a node that
	// does not exist in the graph.
	ErrUnknownNode = errors.New("unknown graph node")
)

// Storage errors are defined in the storage package; core keeps only the
// programming-contract failures below.

// DimensionMismatchError reports an attempt to combine vectors of unequal
// dimension. This is a contract violation, never retried.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, found %d", e.Want, e.Got)
}

// CollisionError reports insertion of an embedding whose identifier is
// already present in the index.
type CollisionError struct {
	Id ID
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("duplicate embedding identifier %d", e.Id)
}
