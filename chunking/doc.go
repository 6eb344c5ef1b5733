// Package chunking splits arbitrarily large content into overlapping,
// size-bounded chunks while keeping peak memory under a configured target.
//
// The Chunker adapts its target chunk size between invocations based on
// readings from a Monitor: sizes shrink when the process is over the memory
// target and grow back when usage falls below half of it. The chunk sequence
// itself is produced lazily, so callers never hold more than one chunk of a
// large input in memory at a time.
package chunking
