package dfpn

// Dispatcher decides where a worker's next task comes from: LocalHeap,
// GlobalChunkQueue, or SharedTaskArray, in fast-sharing or normal mode
// (spec.md §4.7).
type Dispatcher struct {
	local   *LocalHeap
	global  *GlobalChunkQueue
	shared  *SharedTaskArray
	workers *WorkerState
	worker  int
}

// NewDispatcher builds a dispatcher for one worker's view of the shared
// substrate.
func NewDispatcher(worker int, local *LocalHeap, global *GlobalChunkQueue, shared *SharedTaskArray, workers *WorkerState) *Dispatcher {
	return &Dispatcher{local: local, global: global, shared: shared, workers: workers, worker: worker}
}

// fastSharing reports whether the dispatcher should run in fast-sharing
// mode: while any worker is idle, or unconditionally while fewer than
// 100% of workers are active (spec.md §4.7). In this engine's fixed-pool
// model, "active" means not yet exited, so in steady state this reduces
// to "any worker idle."
func (d *Dispatcher) fastSharing() bool {
	return d.workers.HasIdle()
}

// Next returns the next task for this worker to run, per spec.md §4.7's
// two-mode protocol. ok is false when every source the current mode
// consults was empty at the moment of the check (fast-sharing mode does
// not consult GlobalChunkQueue) -- the caller is expected to wait on the
// GlobalChunkQueue condition variable and retry.
func (d *Dispatcher) Next() (Task, bool) {
	if d.fastSharing() {
		if t, ok := d.local.Pop(); ok {
			return t, true
		}
		if t, ok := d.shared.Pop(); ok {
			return t, true
		}
		return Task{}, false
	}

	if d.global.TopPriority() > d.local.TopPriority() {
		if c, ok := d.global.Pop(); ok {
			return d.importChunk(c)
		}
	}
	if t, ok := d.local.Pop(); ok {
		return t, true
	}
	if c, ok := d.global.Pop(); ok {
		return d.importChunk(c)
	}
	if t, ok := d.shared.Pop(); ok {
		return t, true
	}
	return Task{}, false
}

// importChunk returns the chunk's first task as this call's result and
// pushes the rest into LocalHeap (spec.md §4.7 step 1). Any task that
// does not fit (LocalHeap full) is dropped back onto SharedTaskArray on a
// best-effort basis rather than lost, since capacity exhaustion must
// never be fatal (spec.md §7).
func (d *Dispatcher) importChunk(c Chunk) (Task, bool) {
	if c.Len == 0 {
		return Task{}, false
	}
	first := c.Tasks[0]
	for i := 1; i < c.Len; i++ {
		if !d.local.Push(c.Tasks[i]) {
			d.shared.Push(c.Tasks[i])
		}
	}
	return first, true
}
