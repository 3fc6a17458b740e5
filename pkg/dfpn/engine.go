package dfpn

import (
	"github.com/herohde/othellodfpn/pkg/bitboard"
)

// periodicCheckInterval is how often (in nodes visited) the main loop
// checks the wall-clock deadline (spec.md §4.8 step 2, §5 "Timeouts").
const periodicCheckInterval = 1024

// chunkExportInterval is how often (in nodes visited) a worker considers
// exporting a chunk (spec.md §4.9 "Chunk export").
const chunkExportInterval = 1000

// midSearchSpawnInterval is Trigger C's cadence, in main-loop iterations
// (spec.md §4.9).
const midSearchSpawnInterval = 50

// TaskResult is what RunTask reports back to its caller (pkg/solve's
// worker loop, for root tasks and subtasks alike).
type TaskResult struct {
	PN, DN    uint32
	Result    Result
	Eval      int32
	Aborted   bool // true if the task returned early (should_abort_task, shutdown, or found_win)
	Requeue   Task // set iff Aborted -- the task to push back for resumption
}

// RunTask runs one task to completion or voluntary abort (spec.md §4.8).
// It allocates a root node in w's arena, descends recursively, and
// returns the node's final (pn, dn, result, eval). The arena is reset
// before use so that no state from a prior task on this worker leaks in
// (spec.md §3, §4.2).
func RunTask(global *Global, cfg Config, w *Worker, task Task) TaskResult {
	w.arena.reset()
	w.nodes = 0
	w.iterations = 0

	n := w.arena.alloc()
	n.player, n.opponent = task.Player, task.Opponent
	n.typ = task.Type
	n.depth = task.Depth
	n.thresholdPN, n.thresholdDN = INF+1, INF+1

	hash := cfg.Zobrist.Hash(n.player, n.opponent)
	n.ttHash = uint64(hash)

	if !probeInto(global, cfg, w, n, task.Priority) {
		expand(global, cfg, w, n, task.Priority)
	}

	if task.Generation == 0 && len(n.children) > 0 {
		spawnRootSplit(global, cfg, w, task, n)
	}
	if len(n.children) > 0 {
		spawnEarly(global, cfg, w, task, n)
	}

	aborted := descend(global, cfg, w, task, n)
	global.AddNodes(w.nodes)

	global.TT.Store(n.ttHash, n.depth, n.pn, n.dn, n.result, n.evalScore)

	if aborted {
		return TaskResult{
			PN: n.pn, DN: n.dn, Result: n.result, Eval: n.evalScore,
			Aborted: true,
			Requeue: Task{
				Player: n.player, Opponent: n.opponent,
				RootMove: task.RootMove, Priority: task.Priority, IsRootTask: task.IsRootTask,
				Depth: task.Depth, Type: task.Type, Generation: task.Generation,
			},
		}
	}
	return TaskResult{PN: n.pn, DN: n.dn, Result: n.result, Eval: n.evalScore}
}

// probeInto adopts a cached TT entry into n, iff present at depth >= n's
// depth (spec.md §4.8 "Entry"). Returns true if n is now a fully proven
// leaf and needs no expansion.
//
// On any TT hit it also implements the "TT-hit side-channel" (spec.md
// §4.8): if the global chunk queue currently offers a better top
// priority than this task's own priority, the worker's should_abort_task
// flag is set so the main loop switches to the more promising work.
func probeInto(global *Global, cfg Config, w *Worker, n *node, taskPriority int32) bool {
	pn, dn, result, evalScore, ok := global.TT.Probe(n.ttHash, n.depth)
	if !ok {
		return false
	}
	n.pn, n.dn, n.result, n.evalScore = pn, dn, result, evalScore
	n.isProven = result != Unknown

	if global.Chunks.TopPriority() > taskPriority {
		global.SetAbort(w.ID)
	}

	return n.isProven
}

// expand generates n's children: legal moves, or a single pass-child, or
// -- if neither side can move -- marks n terminal directly (spec.md §4.8
// "Terminal handling at expansion"). taskPriority is the owning task's
// priority, threaded through for probeInto's TT-hit side-channel check.
func expand(global *Global, cfg Config, w *Worker, n *node, taskPriority int32) {
	n.expanded = true
	n.evalScore = cfg.evaluator().Evaluate(n.player, n.opponent)

	moves := bitboard.Moves(n.player, n.opponent)
	if moves == 0 {
		passMoves := bitboard.Moves(n.opponent, n.player)
		if passMoves == 0 {
			setTerminalFromScore(n)
			return
		}
		// Pass: the opponent's board becomes a child at the same depth,
		// with sides already swapped by construction (player/opponent
		// simply relabeled, not moved).
		c := w.arena.alloc()
		c.player, c.opponent = n.opponent, n.player
		c.typ = n.typ.Opposite()
		c.depth = n.depth
		c.ttHash = uint64(cfg.Zobrist.Hash(c.player, c.opponent))
		n.children = append(n.children, c)
		if !probeInto(global, cfg, w, c, taskPriority) {
			expand(global, cfg, w, c, taskPriority)
		}
		n.update()
		return
	}

	for sq := 0; sq < 64; sq++ {
		if moves&(uint64(1)<<uint(sq)) == 0 {
			continue
		}
		np, no := bitboard.MakeMove(n.player, n.opponent, sq)
		c := w.arena.alloc()
		c.player, c.opponent = np, no
		c.typ = n.typ.Opposite()
		c.depth = n.depth - 1
		c.ttHash = uint64(cfg.Zobrist.Hash(c.player, c.opponent))
		c.evalScore = cfg.evaluator().Evaluate(c.player, c.opponent)
		n.children = append(n.children, c)
	}
	n.update()
}

// setTerminalFromScore computes the final disc differential and maps it
// to (pn, dn, result) relative to the side that played the root move,
// flipping sign at AND nodes (spec.md §4.8 "Terminal handling at
// expansion").
func setTerminalFromScore(n *node) {
	diff := bitboard.FinalScore(n.player, n.opponent)
	if n.typ == AND {
		diff = -diff
	}
	switch {
	case diff > 0:
		n.setTerminal(Win)
	case diff < 0:
		n.setTerminal(Lose)
	default:
		n.setTerminal(Draw)
	}
	n.evalScore = int32(diff)
}

// descend runs the df-pn+ main loop over n until it is proven, its
// thresholds are exceeded, or cancellation/abort fires. Returns true iff
// this task must be abandoned (should_abort_task, shutdown, or found_win)
// with n's partial state left for a future probe to resume.
func descend(global *Global, cfg Config, w *Worker, task Task, n *node) bool {
	for n.pn > 0 && n.pn < n.thresholdPN && n.dn > 0 && n.dn < n.thresholdDN {
		if global.FoundWin() || global.ShouldShutdown() || global.ShouldAbort(w.ID) {
			global.ClearAbort(w.ID)
			return true
		}

		w.nodes++
		if w.nodes%periodicCheckInterval == 0 && global.TimedOut() {
			global.RequestShutdown()
			return true
		}
		if w.nodes%chunkExportInterval == 0 {
			exportChunks(global, w)
		}

		if len(n.children) == 0 {
			// Terminal leaf: for WIN/LOSE the loop condition is already
			// false, but a DRAW terminal (pn = dn = INF) stays below the
			// INF+1 thresholds and leaves the loop here. Also guards
			// against an empty non-terminal.
			break
		}

		w.iterations++
		if w.iterations%midSearchSpawnInterval == 0 && hasUnprovenDeepChild(n, cfg) {
			spawnMidSearch(global, cfg, w, task, n)
		}

		best := bestChildIndex(n)
		c := n.children[best]
		if c.isProven {
			// Every child already proven (can happen after a spawn
			// siphoned off work and TT adoption resolved the rest):
			// nothing left to recurse into.
			break
		}

		// Narrow the child's thresholds by the sibling sum, the standard
		// df-pn+ recurrence (spec.md §4.8 step 4).
		c.thresholdPN, c.thresholdDN = narrowThresholds(n, c)

		if !c.expanded {
			if !probeInto(global, cfg, w, c, task.Priority) {
				expand(global, cfg, w, c, task.Priority)
			}
		}
		if len(c.children) > 0 && !c.isProven {
			if descend(global, cfg, w, childTask(task, c), c) {
				return true
			}
		}

		n.update()
	}
	return false
}

// narrowThresholds computes the child's (thresholdPN, thresholdDN) from
// the parent's own thresholds and the other children's current pn/dn,
// per the standard df-pn+ recurrence: an OR child's disproof threshold is
// capped by how much disproof "budget" remains after the other children's
// contributions; an AND child's proof threshold is capped symmetrically.
func narrowThresholds(parent, child *node) (pn, dn uint32) {
	if parent.typ == OR {
		var siblingDN uint32
		for _, s := range parent.children {
			if s != child {
				siblingDN = addSaturated(siblingDN, s.dn)
			}
		}
		pn = parent.thresholdPN
		if parent.thresholdDN <= siblingDN {
			dn = 1
		} else {
			dn = parent.thresholdDN - siblingDN
		}
		return pn, dn
	}

	var siblingPN uint32
	for _, s := range parent.children {
		if s != child {
			siblingPN = addSaturated(siblingPN, s.pn)
		}
	}
	if parent.thresholdPN <= siblingPN {
		pn = 1
	} else {
		pn = parent.thresholdPN - siblingPN
	}
	dn = parent.thresholdDN
	return pn, dn
}

// hasUnprovenDeepChild reports whether n still has a child deep enough
// (and unproven) to be worth mid-search spawning -- a cheap gate before
// paying for the full spawn decision procedure.
func hasUnprovenDeepChild(n *node, cfg Config) bool {
	for _, c := range n.children {
		if !c.isProven && c.depth >= cfg.SpawnMinDepth {
			return true
		}
	}
	return false
}

// childTask builds the Task metadata a recursive descend call is
// conceptually running under -- RootMove, Priority and Generation are
// inherited; the position, Depth and Type reflect the child. Recursion within one worker's
// call to RunTask never actually enqueues this value anywhere; it exists
// only so spawnMidSearch/spawnEarly (invoked from nested descend frames)
// have a parentTask to stamp onto newly spawned subtasks.
func childTask(parent Task, c *node) Task {
	return Task{
		Player: c.player, Opponent: c.opponent,
		RootMove: parent.RootMove, Priority: parent.Priority,
		Depth: c.depth, Type: c.typ, Generation: parent.Generation,
	}
}
