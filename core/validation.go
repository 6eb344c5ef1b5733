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

import "fmt"

// ValidateGranularity validates that a Granularity has a valid value.
func ValidateGranularity(g Granularity) error {
	if g < GranularityChunk || g > GranularityModule {
		return fmt.Errorf("invalid granularity: value %d", g)
	}
	return nil
}

// ValidateEdge validates an edge fact before it reaches the graph store.
//
// Validation rules:
//   - From and To must not be empty
//   - Kind must be a known EdgeKind
//
// Self-loops (From == To) are valid; they are flagged during analysis
// rather than rejected here.
func ValidateEdge(edge GraphEdge) error {
	if edge.From == "" || edge.To == "" {
		return fmt.Errorf("%w: from=%q to=%q", ErrMalformedEdge, edge.From, edge.To)
	}
	if edge.Kind < EdgeImport || edge.Kind > EdgeModuleDependency {
		return fmt.Errorf("%w: unknown kind %d", ErrMalformedEdge, edge.Kind)
	}
	return nil
}

// ValidateMultiVector validates a MultiVectorEmbedding before indexing.
//
// Validation rules:
//   - Dimension must be positive and match the stored vectors
//   - Structural and Combined must be present
//   - Semantic may be empty only when the record is flagged Degraded
func ValidateMultiVector(m *MultiVectorEmbedding) error {
	if m == nil {
		return fmt.Errorf("%w: embedding is nil", ErrEmptyVector)
	}
	if m.Dimension <= 0 {
		return fmt.Errorf("%w: dimension %d", ErrEmptyVector, m.Dimension)
	}
	if len(m.Structural) != m.Dimension {
		return &DimensionMismatchError{Want: m.Dimension, Got: len(m.Structural)}
	}
	if len(m.Combined) != m.Dimension {
		return &DimensionMismatchError{Want: m.Dimension, Got: len(m.Combined)}
	}
	if !m.Degraded && len(m.Semantic) != m.Dimension {
		return &DimensionMismatchError{Want: m.Dimension, Got: len(m.Semantic)}
	}
	return ValidateGranularity(m.Provenance.Granularity)
}
