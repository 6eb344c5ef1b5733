package core

import (
	"encoding/binary"
	"time"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing of the entity's provenance.
type ID uint64

// Granularity is the unit level an embedding or index entry represents.
type Granularity int

const (
	// GranularityChunk represents a sub-file span produced by the chunker.
	GranularityChunk Granularity = iota + 1
	// GranularityFile represents a whole source file.
	GranularityFile
	// GranularityFunction represents a single callable unit.
	GranularityFunction
	// GranularityModule represents a module or package.
	GranularityModule
)

// String returns the lowercase name used in keys and logs.
func (g Granularity) String() string {
	switch g {
	case GranularityChunk:
		return "chunk"
	case GranularityFile:
		return "file"
	case GranularityFunction:
		return "function"
	case GranularityModule:
		return "module"
	default:
		return "unknown"
	}
}

// Granularities lists every valid granularity, in key order.
var Granularities = []Granularity{
	GranularityChunk,
	GranularityFile,
	GranularityFunction,
	GranularityModule,
}

// Aspect identifies which view of the content an embedding vector captures.
type Aspect int

const (
	// AspectStructural is derived from local syntactic features.
	AspectStructural Aspect = iota + 1
	// AspectSemantic is derived from a generated natural-language description.
	AspectSemantic
	// AspectBolted is the weighted fusion of structural and semantic vectors.
	AspectBolted
)

// String returns the lowercase aspect tag.
func (a Aspect) String() string {
	switch a {
	case AspectStructural:
		return "structural"
	case AspectSemantic:
		return "semantic"
	case AspectBolted:
		return "bolted"
	default:
		return "unknown"
	}
}

// Chunk is a contiguous span of source content with line-based offsets.
// Chunks are produced by the chunker, consumed by the embedding generator,
// and never persisted.
type Chunk struct {
	Source    string // Source identifier, typically a file path
	Language  string // Language or content-type tag
	Content   string
	StartLine int // Inclusive, 0-based
	EndLine   int // Exclusive
	Index     int // Ordinal within the source
}

// Provenance records where an embedding came from.
type Provenance struct {
	Path        string
	Granularity Granularity
	ChunkIndex  int // Meaningful only for GranularityChunk
}

// ID derives the identity of the unit this provenance describes. Identical
// provenance always yields the same ID, which is what makes re-insertion
// after a checkpoint resume idempotent.
func (p Provenance) ID() ID {
	buf := make([]byte, 0, len(p.Path)+9)
	buf = append(buf, p.Path...)
	buf = append(buf, ':')
	buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Granularity))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(p.ChunkIndex))
	return IDFromBytes(buf)
}

// Embedding is a single aspect vector with its provenance.
type Embedding struct {
	Id          ID
	Vector      []float32
	Dimension   int
	Aspect      Aspect
	Provenance  Provenance
	SourceBytes int // Byte size of the content the vector was derived from
}

// MultiVectorEmbedding retains each aspect vector plus a default-weighted
// combined vector. The combined vector can be recomputed at custom weights
// without regenerating either source vector.
type MultiVectorEmbedding struct {
	Id          ID
	Structural  []float32
	Semantic    []float32 // Empty when Degraded
	Combined    []float32
	Dimension   int
	Provenance  Provenance
	SourceBytes int
	Degraded    bool // Semantic generation failed; Combined equals Structural
	CreatedAt   time.Time
}

// AspectVector returns the stored vector for the given aspect, or nil if the
// record does not carry it.
func (m *MultiVectorEmbedding) AspectVector(a Aspect) []float32 {
	switch a {
	case AspectStructural:
		return m.Structural
	case AspectSemantic:
		return m.Semantic
	case AspectBolted:
		return m.Combined
	default:
		return nil
	}
}

// IndexEntry is an embedding as held by a vector index snapshot, with the
// metadata used for filter predicates.
type IndexEntry struct {
	Id          ID
	Vector      []float32
	Language    string
	ContentType string
	Path        string
	Granularity Granularity
	Degraded    bool
}

// NodeKind classifies relationship graph nodes.
type NodeKind int

const (
	NodeFile NodeKind = iota + 1
	NodeFunction
	NodeModule
	NodeDataStructure
)

// String returns the lowercase node kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeFile:
		return "file"
	case NodeFunction:
		return "function"
	case NodeModule:
		return "module"
	case NodeDataStructure:
		return "datastructure"
	default:
		return "unknown"
	}
}

// EdgeKind classifies directed relationships between graph nodes.
type EdgeKind int

const (
	EdgeImport EdgeKind = iota + 1
	EdgeCall
	EdgeDataFlow
	EdgeModuleDependency
)

// String returns the lowercase edge kind name.
func (k EdgeKind) String() string {
	switch k {
	case EdgeImport:
		return "import"
	case EdgeCall:
		return "call"
	case EdgeDataFlow:
		return "dataflow"
	case EdgeModuleDependency:
		return "moduledep"
	default:
		return "unknown"
	}
}

// EdgeKinds lists every valid edge kind.
var EdgeKinds = []EdgeKind{EdgeImport, EdgeCall, EdgeDataFlow, EdgeModuleDependency}

// GraphNode is a node in a relationship graph.
type GraphNode struct {
	ID       string
	Name     string
	Kind     NodeKind
	Path     string
	Language string
}

// GraphEdge is a directed edge fact submitted by an external analyzer.
type GraphEdge struct {
	From   string
	To     string
	Kind   EdgeKind
	Static bool // True when the relationship is statically resolved
}

// Checkpoint records the completion of one pipeline batch. Checkpoints form
// an append-oriented log; the union of CompletedInputs over the log is the
// resume set.
type Checkpoint struct {
	BatchId         uint64
	CompletedInputs []string
	SnapshotId      uint64
	UpdatedAt       time.Time
}
