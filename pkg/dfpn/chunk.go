package dfpn

// ChunkSize is the fixed capacity of a Chunk (spec.md §3: "Fixed-capacity
// array (16) of Tasks").
const ChunkSize = 16

// Chunk is a fixed-size batch of tasks promoted from LocalHeap to
// GlobalChunkQueue to amortize locking (spec.md §3, §4.9 "Chunk export").
type Chunk struct {
	Tasks       [ChunkSize]Task
	Len         int
	TopPriority int32 // cached for heap ordering at the chunk level
}
