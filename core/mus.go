package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the records that cross the storage
// boundary. Vectors dominate the encoded size, so elements use fixed-width
// raw encoding while counts and ids use varint.

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// vectorMUS serializes float32 vectors with a varint length prefix.
var vectorMUS = vecMUS{}

type vecMUS struct{}

func (vecMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vecMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, 0, length)
	for i := 0; i < length; i++ {
		f, m, err := raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v = append(v, f)
	}
	return v, n, nil
}

func (vecMUS) Size(v []float32) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// provenanceMUS serializes Provenance values.
var provenanceMUS = provMUS{}

type provMUS struct{}

func (provMUS) Marshal(p Provenance, bs []byte) (n int) {
	n = ord.String.Marshal(p.Path, bs)
	n += varint.Int.Marshal(int(p.Granularity), bs[n:])
	n += varint.Int.Marshal(p.ChunkIndex, bs[n:])
	return n
}

func (provMUS) Unmarshal(bs []byte) (p Provenance, n int, err error) {
	p.Path, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return p, n, err
	}
	g, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return p, n, err
	}
	p.Granularity = Granularity(g)
	p.ChunkIndex, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	return p, n, err
}

func (provMUS) Size(p Provenance) int {
	return ord.String.Size(p.Path) +
		varint.Int.Size(int(p.Granularity)) +
		varint.Int.Size(p.ChunkIndex)
}

// MultiVectorEmbeddingMUS serializes MultiVectorEmbedding records.
var MultiVectorEmbeddingMUS = mveMUS{}

type mveMUS struct{}

func (mveMUS) Marshal(e MultiVectorEmbedding, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += vectorMUS.Marshal(e.Structural, bs[n:])
	n += vectorMUS.Marshal(e.Semantic, bs[n:])
	n += vectorMUS.Marshal(e.Combined, bs[n:])
	n += varint.Int.Marshal(e.Dimension, bs[n:])
	n += provenanceMUS.Marshal(e.Provenance, bs[n:])
	n += varint.Int.Marshal(e.SourceBytes, bs[n:])
	n += ord.Bool.Marshal(e.Degraded, bs[n:])
	n += varint.Int64.Marshal(e.CreatedAt.UnixMicro(), bs[n:])
	return n
}

func (mveMUS) Unmarshal(bs []byte) (e MultiVectorEmbedding, n int, err error) {
	e.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return e, n, err
	}
	var m int
	if e.Structural, m, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.Semantic, m, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.Combined, m, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.Dimension, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.Provenance, m, err = provenanceMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.SourceBytes, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.Degraded, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	micros, m, err := varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return e, n, err
	}
	e.CreatedAt = time.UnixMicro(micros).UTC()
	return e, n, nil
}

func (mveMUS) Size(e MultiVectorEmbedding) int {
	return IDMUS.Size(e.Id) +
		vectorMUS.Size(e.Structural) +
		vectorMUS.Size(e.Semantic) +
		vectorMUS.Size(e.Combined) +
		varint.Int.Size(e.Dimension) +
		provenanceMUS.Size(e.Provenance) +
		varint.Int.Size(e.SourceBytes) +
		ord.Bool.Size(e.Degraded) +
		varint.Int64.Size(e.CreatedAt.UnixMicro())
}

// CheckpointMUS serializes Checkpoint records.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(c Checkpoint, bs []byte) (n int) {
	n = varint.Uint64.Marshal(c.BatchId, bs)
	n += varint.PositiveInt.Marshal(len(c.CompletedInputs), bs[n:])
	for _, input := range c.CompletedInputs {
		n += ord.String.Marshal(input, bs[n:])
	}
	n += varint.Uint64.Marshal(c.SnapshotId, bs[n:])
	n += varint.Int64.Marshal(c.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (checkpointMUS) Unmarshal(bs []byte) (c Checkpoint, n int, err error) {
	c.BatchId, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return c, n, err
	}
	count, m, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return c, n, err
	}
	c.CompletedInputs = make([]string, 0, count)
	for i := 0; i < count; i++ {
		input, m, err := ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return c, n, err
		}
		c.CompletedInputs = append(c.CompletedInputs, input)
	}
	if c.SnapshotId, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	micros, m, err := varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return c, n, err
	}
	c.UpdatedAt = time.UnixMicro(micros).UTC()
	return c, n, nil
}

func (checkpointMUS) Size(c Checkpoint) (size int) {
	size = varint.Uint64.Size(c.BatchId)
	size += varint.PositiveInt.Size(len(c.CompletedInputs))
	for _, input := range c.CompletedInputs {
		size += ord.String.Size(input)
	}
	size += varint.Uint64.Size(c.SnapshotId)
	size += varint.Int64.Size(c.UpdatedAt.UnixMicro())
	return size
}
