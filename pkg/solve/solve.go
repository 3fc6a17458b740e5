// Package solve implements the top-level parallel df-pn+ solver:
// allocates the shared substrate, enumerates root moves, runs a fixed
// worker pool, and aggregates the final result (spec.md §4.10).
package solve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/herohde/othellodfpn/pkg/bitboard"
	"github.com/herohde/othellodfpn/pkg/dfpn"
	"github.com/herohde/othellodfpn/pkg/eval"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"golang.org/x/sync/errgroup"
)

// Options configures a solve (spec.md §6 "Configuration").
type Options struct {
	// Threads is the number of worker goroutines. Defaults to 1 if <= 0.
	Threads int
	// TimeLimit is the wall-clock budget. Unset means unlimited
	// (spec.md §7 "Time limit 0: solver runs to completion").
	TimeLimit lang.Optional[time.Duration]
	// TTSizeBytes sizes the transposition table.
	TTSizeBytes uint64

	SpawnMaxGeneration int
	SpawnMinDepth      int
	SpawnLimitPerNode  int

	UseEvaluation bool
	Eval          eval.Evaluator

	// ZobristSeed seeds the hash table; irrelevant to correctness, only
	// to consistency within one run (spec.md §6 "Hash seed").
	ZobristSeed int64
}

func (o Options) String() string {
	tl, ok := o.TimeLimit.V()
	if !ok {
		tl = 0
	}
	return fmt.Sprintf("{threads=%v time_limit=%v tt=%vMB max_gen=%v min_depth=%v limit=%v use_eval=%v}",
		o.Threads, tl, o.TTSizeBytes>>20, o.SpawnMaxGeneration, o.SpawnMinDepth, o.SpawnLimitPerNode, o.UseEvaluation)
}

// withDefaults fills unset fields with spec.md §6's documented defaults.
func (o Options) withDefaults() Options {
	if o.Threads <= 0 {
		o.Threads = 1
	}
	if o.SpawnMaxGeneration == 0 {
		o.SpawnMaxGeneration = 1
	}
	if o.SpawnMinDepth == 0 {
		o.SpawnMinDepth = 5
	}
	if o.SpawnLimitPerNode == 0 {
		o.SpawnLimitPerNode = 1 << 30
	}
	if o.Eval == nil {
		o.Eval = eval.DefaultFeature
	}
	return o
}

func (o Options) toConfig(zt *bitboard.ZobristTable) dfpn.Config {
	return dfpn.Config{
		SpawnMaxGeneration:  o.SpawnMaxGeneration,
		SpawnMinDepth:       o.SpawnMinDepth,
		SpawnLimitPerNode:   o.SpawnLimitPerNode,
		LocalHeapCapacity:   1024,
		GlobalChunkCapacity: 4096,
		SharedArrayCapacity: 65536,
		UseEvaluation:       o.UseEvaluation,
		Eval:                o.Eval,
		Zobrist:             zt,
	}
}

// RootResult tracks one root move's final outcome (spec.md §4.10).
type RootResult struct {
	Move   int
	Result dfpn.Result
	Eval   int32
}

// Result is the solver's final, aggregated answer.
type Result struct {
	Result   dfpn.Result
	BestMove int
	FoundWin bool
	Roots    []RootResult
	Stats    Stats
}

// Stats are diagnostic counters (spec.md §6 "Output").
type Stats struct {
	TotalNodes uint64
	TTHits     uint64
	TTStores   uint64
	TTCollis   uint64
	Elapsed    time.Duration
}

// rootTable guards the shared per-root-move result array. Root tasks
// complete far less often than nodes are visited, so a single mutex
// (rather than the per-field CAS the spec sketches) is a reasonable,
// simple stand-in: updates are still monotonic (UNKNOWN -> definitive,
// never overwritten, see setResult).
type rootTable struct {
	mu      sync.Mutex
	results []RootResult
	index   map[int]int
}

func newRootTable(squares []int, evals []int32) *rootTable {
	rt := &rootTable{
		results: make([]RootResult, len(squares)),
		index:   make(map[int]int, len(squares)),
	}
	for i, sq := range squares {
		rt.results[i] = RootResult{Move: sq, Eval: evals[i]}
		rt.index[sq] = i
	}
	return rt
}

// setResult performs the UNKNOWN->definitive transition for move, exactly
// once (spec.md §4.10 "result[i] may transition only UNKNOWN -> definitive").
func (rt *rootTable) setResult(move int, result dfpn.Result) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	i, ok := rt.index[move]
	if !ok || rt.results[i].Result != dfpn.Unknown {
		return
	}
	rt.results[i].Result = result
}

func (rt *rootTable) allDefinitive() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	for _, r := range rt.results {
		if r.Result == dfpn.Unknown {
			return false
		}
	}
	return true
}

func (rt *rootTable) snapshot() []RootResult {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	out := make([]RootResult, len(rt.results))
	copy(out, rt.results)
	return out
}

// Solve runs the parallel df-pn+ search to completion, to a proof of WIN,
// or to the time limit, whichever comes first (spec.md §4.10).
func Solve(ctx context.Context, player, opponent uint64, opt Options) (Result, error) {
	opt = opt.withDefaults()
	start := time.Now()

	zt := bitboard.NewZobristTable(opt.ZobristSeed)
	cfg := opt.toConfig(zt)

	tt := dfpn.NewTranspositionTable(opt.TTSizeBytes)
	if tt.Size() == 0 {
		return Result{}, fmt.Errorf("solve: failed to allocate transposition table (%d bytes requested)", opt.TTSizeBytes)
	}

	moves := bitboard.Moves(player, opponent)
	var rootSquares []int
	for sq := 0; sq < 64; sq++ {
		if moves&(uint64(1)<<uint(sq)) != 0 {
			rootSquares = append(rootSquares, sq)
		}
	}
	if len(rootSquares) == 0 {
		// The root itself has no moves: resolve directly without
		// spinning up workers (spec.md §8 "Position with no legal
		// moves where opponent also has none").
		return solveNoRootMoves(ctx, player, opponent, opt, start, tt)
	}

	global := dfpn.NewGlobal(tt, cfg, opt.Threads)
	if tl, ok := opt.TimeLimit.V(); ok && tl > 0 {
		global.SetDeadline(start.Add(tl))
	}

	rootEval := eval.Evaluator(eval.Zero{})
	if opt.UseEvaluation {
		rootEval = cfg.Eval
	}

	evals := make([]int32, len(rootSquares))
	for i, sq := range rootSquares {
		np, no := bitboard.MakeMove(player, opponent, sq)
		evals[i] = rootEval.Evaluate(np, no)

		global.Shared.Push(dfpn.Task{
			Player: np, Opponent: no,
			RootMove:   sq,
			Priority:   evals[i],
			IsRootTask: true,
			Depth:      bitboard.EmptyCount(np, no),
			Type:       dfpn.AND,
			Generation: 0,
		})
	}
	rt := newRootTable(rootSquares, evals)

	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < opt.Threads; w++ {
		worker := dfpn.NewWorker(w, cfg)
		g.Go(func() error {
			runWorker(gctx, global, cfg, worker, rt)
			return nil
		})
	}
	g.Go(func() error {
		pollUntilDone(gctx, global, rt)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return aggregate(global, rt, tt, start), nil
}

// solveNoRootMoves handles the boundary case where the position passed to
// Solve already has no legal move for the side to move (spec.md §8).
func solveNoRootMoves(ctx context.Context, player, opponent uint64, opt Options, start time.Time, tt *dfpn.TranspositionTable) (Result, error) {
	passMoves := bitboard.Moves(opponent, player)
	if passMoves != 0 {
		// The side to move passes: solve from the opponent's side and
		// invert the outcome back to this side's perspective.
		res, err := Solve(ctx, opponent, player, opt)
		if err != nil {
			return Result{}, err
		}
		switch res.Result {
		case dfpn.Win:
			res.Result = dfpn.Lose
		case dfpn.Lose:
			res.Result = dfpn.Win
		}
		res.BestMove, res.FoundWin, res.Roots = dfpn.NoMove, false, nil
		return res, nil
	}

	diff := bitboard.FinalScore(player, opponent)
	var res dfpn.Result
	switch {
	case diff > 0:
		res = dfpn.Win
	case diff < 0:
		res = dfpn.Lose
	default:
		res = dfpn.Draw
	}
	return Result{
		Result:   res,
		BestMove: dfpn.NoMove,
		Stats:    Stats{TotalNodes: 1, Elapsed: time.Since(start), TTHits: tt.Hits(), TTStores: tt.Stores()},
	}, nil
}

// runWorker is one worker goroutine's outer loop: dispatch a task, run it
// to completion/abort, update the owning root's result, repeat until
// shutdown (spec.md §5 "Scheduling").
func runWorker(ctx context.Context, global *dfpn.Global, cfg dfpn.Config, w *dfpn.Worker, rt *rootTable) {
	dispatcher := dfpn.NewDispatcher(w.ID, w.Local, global.Chunks, global.Shared, global.Busy)

	for {
		if global.ShouldShutdown() || global.FoundWin() || contextx.IsCancelled(ctx) {
			return
		}

		task, ok := dispatcher.Next()
		if !ok {
			global.Busy.SetIdle(w.ID)
			global.Chunks.Wait(5 * time.Millisecond)
			continue
		}
		global.Busy.SetBusy(w.ID)

		res := dfpn.RunTask(global, cfg, w, task)

		if res.Aborted {
			if !w.Local.Push(res.Requeue) {
				global.Shared.Push(res.Requeue)
			}
			continue
		}

		if !task.IsRootTask {
			continue
		}

		if res.Result == dfpn.Unknown {
			// Root-task requeue (spec.md §4.10): partial (pn, dn) is
			// already in the TT via RunTask's exit-time store; push back
			// with a priority penalty and generation=1 to force the
			// normal (non-splitting) path on resumption.
			requeue := dfpn.Task{
				Player: task.Player, Opponent: task.Opponent,
				RootMove: task.RootMove, Priority: task.Priority - 100,
				IsRootTask: true, Depth: task.Depth, Type: task.Type, Generation: 1,
			}
			if !w.Local.Push(requeue) {
				global.Shared.Push(requeue)
			}
			continue
		}

		rt.setResult(task.RootMove, res.Result)
		if res.Result == dfpn.Win {
			global.TryWin(task.RootMove)
		}
	}
}

// pollUntilDone implements the main thread's 50ms completion/time-limit
// poll (spec.md §4.10). Completion is every root result definitive.
func pollUntilDone(ctx context.Context, global *dfpn.Global, rt *rootTable) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if rt.allDefinitive() || global.FoundWin() {
			global.RequestShutdown()
			return
		}
		if global.TimedOut() {
			global.RequestShutdown()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// aggregate computes the final solver Result from the root-move table
// (spec.md §4.10 "Final-result aggregation").
func aggregate(global *dfpn.Global, rt *rootTable, tt *dfpn.TranspositionTable, start time.Time) Result {
	roots := rt.snapshot()
	stats := Stats{
		TotalNodes: global.TotalNodes(),
		TTHits:     tt.Hits(),
		TTStores:   tt.Stores(),
		TTCollis:   tt.Collisions(),
		Elapsed:    time.Since(start),
	}

	if global.FoundWin() {
		return Result{Result: dfpn.Win, BestMove: global.WinningMove(), FoundWin: true, Roots: roots, Stats: stats}
	}

	anyDraw, allLose := false, true
	for _, r := range roots {
		if r.Result == dfpn.Win {
			return Result{Result: dfpn.Win, BestMove: r.Move, Roots: roots, Stats: stats}
		}
		if r.Result == dfpn.Draw {
			anyDraw = true
		}
		if r.Result != dfpn.Lose {
			allLose = false
		}
	}

	if anyDraw {
		for _, r := range roots {
			if r.Result == dfpn.Draw {
				return Result{Result: dfpn.Draw, BestMove: r.Move, Roots: roots, Stats: stats}
			}
		}
	}
	if allLose {
		return Result{Result: dfpn.Lose, BestMove: roots[0].Move, Roots: roots, Stats: stats}
	}

	best := roots[0]
	for _, r := range roots[1:] {
		if r.Eval > best.Eval {
			best = r
		}
	}
	return Result{Result: dfpn.Unknown, BestMove: best.Move, Roots: roots, Stats: stats}
}
