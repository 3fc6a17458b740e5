package dfpn

// childPriority ranks a child for both best-child selection (spec.md
// §4.8 step 3) and spawn-candidate selection (§4.9): for an OR node,
// children that are cheaper to prove (lower pn) and better-evaluated
// rank higher; for an AND node, children that are cheaper to disprove
// (lower dn) and worse-evaluated (for the side to move) rank higher,
// hence the negated eval term.
func childPriority(parent *node, c *node) float64 {
	if parent.typ == OR {
		return float64(INF-c.pn)/1000 + float64(c.evalScore)
	}
	return float64(INF-c.dn)/1000 - float64(c.evalScore)
}

// bestChildIndex returns the index of the highest-priority child.
func bestChildIndex(n *node) int {
	best := 0
	bestPri := childPriority(n, n.children[0])
	for i := 1; i < len(n.children); i++ {
		if p := childPriority(n, n.children[i]); p > bestPri {
			best, bestPri = i, p
		}
	}
	return best
}

// effectiveParams holds the spawn parameters after the environmental-
// pressure adjustments of spec.md §4.9's table are applied.
type effectiveParams struct {
	maxGen     int
	spawnLimit int
	minDepth   int
	abort      bool // backpressure: spawning must not proceed at all
}

// computeEffectiveParams applies the pressure table in order: first the
// LocalHeap-below-ChunkSize pair (relax, or abort under SharedTaskArray
// backpressure), then at most one idle-rate tier -- the highest one that
// holds -- on top of the running parameters.
func computeEffectiveParams(cfg Config, global *Global, w *Worker) effectiveParams {
	p := effectiveParams{maxGen: cfg.SpawnMaxGeneration, spawnLimit: cfg.SpawnLimitPerNode, minDepth: cfg.SpawnMinDepth}

	localLow := w.Local.Len() < ChunkSize
	if localLow {
		if global.Shared.FullAbove(0.8) {
			p.abort = true
			return p
		}
		p.maxGen += 20
		p.spawnLimit = 50
		p.minDepth /= 2
	}

	idleRate := global.Busy.IdleRate()
	switch {
	case idleRate > 0.9:
		p.maxGen += 10
		p.spawnLimit *= 5
		p.minDepth /= 2
	case idleRate > 0.7:
		p.maxGen += 5
		p.spawnLimit = p.spawnLimit * 3
		p.minDepth = p.minDepth * 2 / 3
	case idleRate > 0.5:
		p.maxGen += 2
		p.spawnLimit *= 2
	}
	return p
}

// spawnRootSplit is Trigger A (spec.md §4.9): when a worker receives a
// generation==0 root task, push all but the best child with a large
// priority boost, unconditionally (no pressure table, no min-depth gate
// -- the root split happens every time a generation-0 task is run).
func spawnRootSplit(global *Global, cfg Config, w *Worker, parentTask Task, n *node) int {
	if len(n.children) == 0 {
		return 0
	}
	best := bestChildIndex(n)
	spawned := 0
	for i, c := range n.children {
		if i == best {
			continue
		}
		t := Task{
			Player:     c.player,
			Opponent:   c.opponent,
			RootMove:   parentTask.RootMove,
			Priority:   parentTask.Priority + 10000,
			Depth:      c.depth,
			Type:       c.typ,
			Generation: 1,
		}
		if global.Shared.Push(t) {
			spawned++
		}
	}
	return spawned
}

// spawnEarly is Trigger B: right after expansion, before the first main-
// loop iteration, if there is slack in the system (an idle worker, or
// this worker's own LocalHeap running low), push up to 15 unproven
// children into SharedTaskArray.
func spawnEarly(global *Global, cfg Config, w *Worker, parentTask Task, n *node) int {
	if !global.Busy.HasIdle() && w.Local.Len() >= ChunkSize {
		return 0
	}
	return spawnChildTasksToShared(global, cfg, w, parentTask, n, 15, 4000, 3)
}

// spawnMidSearch is Trigger C: every 50 main-loop iterations, if idle
// workers exist, push up to 2 unproven children.
func spawnMidSearch(global *Global, cfg Config, w *Worker, parentTask Task, n *node) int {
	if !global.Busy.HasIdle() {
		return 0
	}
	return spawnChildTasksToShared(global, cfg, w, parentTask, n, 2, 3000, 5)
}

// spawnChildTasksToShared is the spawn decision procedure used by
// Triggers B/C. It always pushes to SharedTaskArray, since both triggers
// exist to hand work to idle workers; no variant of it spawns into this
// worker's own LocalHeap.
func spawnChildTasksToShared(global *Global, cfg Config, w *Worker, parentTask Task, n *node, hardLimit int, priorityBoost int32, generation int) int {
	if len(n.children) == 0 {
		return 0
	}
	params := computeEffectiveParams(cfg, global, w)
	if params.abort {
		return 0
	}
	hasIdle := global.Busy.HasIdle()
	sufficientWork := w.Local.Len() >= ChunkSize
	if parentTask.Generation >= params.maxGen && !hasIdle && sufficientWork {
		return 0
	}
	if n.depth < params.minDepth {
		return 0
	}

	best := bestChildIndex(n)
	threshold := 0.8 * childPriority(n, n.children[best])

	limit := params.spawnLimit
	if hardLimit < limit {
		limit = hardLimit
	}

	spawned := 0
	for i, c := range n.children {
		if i == best || spawned >= limit || c.isProven {
			continue
		}
		if childPriority(n, c) < threshold {
			continue
		}
		t := Task{
			Player:     c.player,
			Opponent:   c.opponent,
			RootMove:   parentTask.RootMove,
			Priority:   parentTask.Priority + priorityBoost,
			Depth:      c.depth,
			Type:       c.typ,
			Generation: generation,
		}
		if global.Shared.Push(t) {
			spawned++
		}
	}
	return spawned
}

// localExportThreshold is LOCAL_EXPORT_THRESHOLD ~= CHUNK_SIZE+4
// (spec.md §4.9).
const localExportThreshold = ChunkSize + 4

// exportChunks implements the periodic chunk-export step (spec.md §4.9,
// "Chunk export"), run by the caller every 1000 nodes. When no worker is
// idle it exports the worker's top ChunkSize-worth of tasks (minus the very best,
// which it keeps) to GlobalChunkQueue while this worker's local top is
// worse than the global top (or the global queue is empty), and
// separately drains all-but-one task straight to SharedTaskArray if idle
// workers exist.
func exportChunks(global *Global, w *Worker) {
	if global.Busy.HasIdle() && w.Local.Len() > 1 {
		best, ok := w.Local.Pop()
		if ok {
			for {
				t, ok := w.Local.Pop()
				if !ok {
					break
				}
				if !global.Shared.Push(t) {
					w.Local.Push(t) // shared full: keep it locally rather than drop it.
				}
			}
			w.Local.Push(best)
		}
		return
	}

	if w.Local.Len() < localExportThreshold {
		return
	}
	for {
		globalTop := global.Chunks.TopPriority()
		localTop := w.Local.TopPriority()
		if global.Chunks.Len() != 0 && localTop >= globalTop {
			return
		}

		best, ok := w.Local.Pop()
		if !ok {
			return
		}
		var c Chunk
		for c.Len < ChunkSize {
			t, ok := w.Local.Pop()
			if !ok {
				break
			}
			c.Tasks[c.Len] = t
			c.Len++
		}
		if c.Len == 0 {
			w.Local.Push(best)
			return
		}
		c.TopPriority = c.Tasks[0].Priority
		for i := 1; i < c.Len; i++ {
			if c.Tasks[i].Priority > c.TopPriority {
				c.TopPriority = c.Tasks[i].Priority
			}
		}
		if !global.Chunks.Push(c) {
			for i := 0; i < c.Len; i++ {
				w.Local.Push(c.Tasks[i])
			}
		}
		w.Local.Push(best)
		return
	}
}
