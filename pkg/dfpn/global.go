package dfpn

import (
	"time"

	"go.uber.org/atomic"
)

// Global bundles every piece of state genuinely shared and mutated across
// workers: the transposition table, the three work-distribution
// containers, the worker-busy bitmap, and the three cancellation flags
// (spec.md §5 "Cancellation"). Config is deliberately kept separate
// (logically immutable, see config.go) -- this struct is passed by
// pointer everywhere a worker needs to observe or publish shared state,
// the same role the teacher's search.Context plays for alphabeta/
// quiescence, generalized here into an explicit value rather than folded
// into a per-call parameter list because df-pn+ has many more concurrent
// readers/writers than a single-threaded alphabeta search ever did.
type Global struct {
	TT     *TranspositionTable
	Chunks *GlobalChunkQueue
	Shared *SharedTaskArray
	Busy   *WorkerState

	shutdown atomic.Bool
	foundWin atomic.Bool
	winMove  atomic.Int32 // valid only once foundWin is true

	deadline time.Time // zero means no time limit

	aborts []atomic.Bool // per-worker should_abort_task flags

	totalNodes atomic.Uint64 // sum of every node visited by every worker (spec.md §8 "Total-nodes identity")
}

// NewGlobal allocates the shared substrate for n workers around a
// caller-provided transposition table (sized from the solver's
// tt_size_mb option -- see pkg/solve).
func NewGlobal(tt *TranspositionTable, cfg Config, n int) *Global {
	g := &Global{
		TT:     tt,
		Chunks: NewGlobalChunkQueue(cfg.GlobalChunkCapacity),
		Shared: NewSharedTaskArray(cfg.SharedArrayCapacity),
		Busy:   NewWorkerState(n),
		aborts: make([]atomic.Bool, n),
	}
	g.winMove.Store(int32(NoMove))
	return g
}

// SetDeadline arms the wall-clock limit. A zero time disables it
// (spec.md §7 "Time limit 0: solver runs to completion").
func (g *Global) SetDeadline(d time.Time) {
	g.deadline = d
}

// TimedOut reports whether the wall-clock deadline has passed.
func (g *Global) TimedOut() bool {
	return !g.deadline.IsZero() && time.Now().After(g.deadline)
}

// RequestShutdown sets the shutdown flag and wakes every waiter on
// GlobalChunkQueue so idle workers notice promptly (spec.md §4.10
// "On time limit, request shutdown regardless").
func (g *Global) RequestShutdown() {
	g.shutdown.Store(true)
	g.Chunks.Broadcast()
}

func (g *Global) ShouldShutdown() bool {
	return g.shutdown.Load()
}

// TryWin attempts the one-shot UNKNOWN->true transition on found_win. On
// success it records the winning move, wakes every waiter, and requests
// shutdown (spec.md §4.10, "WIN is final and globally signals").
func (g *Global) TryWin(move int) bool {
	if !g.foundWin.CAS(false, true) {
		return false
	}
	g.winMove.Store(int32(move))
	g.Chunks.Broadcast()
	g.RequestShutdown()
	return true
}

func (g *Global) FoundWin() bool {
	return g.foundWin.Load()
}

func (g *Global) WinningMove() int {
	return int(g.winMove.Load())
}

// SetAbort/ClearAbort/ShouldAbort manage a single worker's
// should_abort_task flag (spec.md §4.8 "TT-hit side-channel").
func (g *Global) SetAbort(worker int)   { g.aborts[worker].Store(true) }
func (g *Global) ClearAbort(worker int) { g.aborts[worker].Store(false) }
func (g *Global) ShouldAbort(worker int) bool {
	return g.aborts[worker].Load()
}

// AddNodes accumulates the node count a worker visited on one task into
// the global total, reported to the caller as Stats.TotalNodes.
func (g *Global) AddNodes(n uint64) {
	g.totalNodes.Add(n)
}

func (g *Global) TotalNodes() uint64 {
	return g.totalNodes.Load()
}
