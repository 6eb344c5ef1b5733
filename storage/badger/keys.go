package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/indexit/core"
)

// Key prefixes for different data types
const (
	embeddingPrefix  = "embrec"
	checkpointPrefix = "chkpt"
)

// makeEmbeddingKey generates a key for an embedding by ID.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, id))
}

// makeCheckpointKey generates a log key for a checkpoint batch.
// Format: prefix:batchId with the id in BigEndian order so lexicographic
// iteration visits the log in batch order.
func makeCheckpointKey(batchId uint64) []byte {
	prefix := checkpointPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], batchId)
	return buf
}
