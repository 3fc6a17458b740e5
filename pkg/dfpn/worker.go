package dfpn

// Worker bundles one worker's private, unsynchronized state: its node
// arena and LocalHeap. Exactly one goroutine ever touches a Worker's
// fields, so no field here needs atomics or locking (spec.md §4.2, §4.3).
type Worker struct {
	ID    int
	Local *LocalHeap
	arena *arena

	nodes      uint64 // nodes visited in the current task
	iterations uint64 // main-loop iterations, for Trigger C's "every 50"
}

// NewWorker creates worker state for the given id, with a fresh arena and
// a LocalHeap of the configured capacity.
func NewWorker(id int, cfg Config) *Worker {
	return &Worker{
		ID:    id,
		Local: NewLocalHeap(cfg.LocalHeapCapacity),
		arena: newArena(),
	}
}
