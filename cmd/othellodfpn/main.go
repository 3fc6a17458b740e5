// othellodfpn is a CLI front end for the parallel df-pn+ endgame solver:
// it takes a bitboard position (or the standard opening) and prints the
// proven result and best move (spec.md §6 "Output").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/herohde/othellodfpn/pkg/bitboard"
	"github.com/herohde/othellodfpn/pkg/dfpn"
	"github.com/herohde/othellodfpn/pkg/eval"
	"github.com/herohde/othellodfpn/pkg/solve"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 1, 0)

var (
	player   = flag.String("player", "", "Side-to-move bitboard, hex (default: standard opening)")
	opponent = flag.String("opponent", "", "Opponent bitboard, hex (default: standard opening)")

	threads   = flag.Int("threads", 1, "Number of worker goroutines")
	timeLimit = flag.Duration("time-limit", 0, "Wall-clock search budget (0 for unlimited)")
	ttSizeMB  = flag.Uint64("tt-mb", 256, "Transposition table size, in MB")

	spawnMaxGen   = flag.Int("spawn-max-generation", 1, "Base cap on subtask spawn generation")
	spawnMinDepth = flag.Int("spawn-min-depth", 5, "Don't spawn subtasks below this empty-square count")
	spawnLimit    = flag.Int("spawn-limit-per-node", 0, "Max subtasks spawned per node (0 for unbounded)")

	useEval = flag.Bool("use-eval", true, "Use the static evaluator for move ordering")
	seed    = flag.Int64("zobrist-seed", 1, "Zobrist hash table seed")

	showVersion = flag.Bool("version", false, "Print version and exit")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: othellodfpn [options]

OTHELLODFPN exhaustively solves Othello endgame positions with a parallel
df-pn+ search and reports WIN/LOSE/DRAW plus a best move for the side to
move. Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if *showVersion {
		fmt.Printf("othellodfpn %v\n", version)
		return
	}

	p, o, err := parsePosition(*player, *opponent)
	if err != nil {
		flag.Usage()
		logw.Exitf(ctx, "Invalid position: %v", err)
	}

	logw.Infof(ctx, "Position:\n%v", bitboard.String(p, o))
	logw.Infof(ctx, "empties=%v threads=%v", bitboard.EmptyCount(p, o), *threads)

	opt := solve.Options{
		Threads:            *threads,
		TimeLimit:          timeLimitOption(*timeLimit),
		TTSizeBytes:        *ttSizeMB << 20,
		SpawnMaxGeneration: *spawnMaxGen,
		SpawnMinDepth:      *spawnMinDepth,
		SpawnLimitPerNode:  *spawnLimit,
		UseEvaluation:      *useEval,
		Eval:               eval.DefaultFeature,
		ZobristSeed:        *seed,
	}

	start := time.Now()
	res, err := solve.Solve(ctx, p, o, opt)
	if err != nil {
		logw.Exitf(ctx, "Solve failed: %v", err)
	}
	elapsed := time.Since(start)

	move := "none"
	if res.BestMove != dfpn.NoMove {
		move = bitboard.SquareString(res.BestMove)
	}

	fmt.Printf("result=%v best_move=%v nodes=%v tt_hits=%v tt_stores=%v tt_collisions=%v elapsed=%v nps=%.0f\n",
		res.Result, move, res.Stats.TotalNodes, res.Stats.TTHits, res.Stats.TTStores, res.Stats.TTCollis,
		elapsed, float64(res.Stats.TotalNodes)/elapsed.Seconds())
}

// timeLimitOption converts the -time-limit flag (0 meaning unlimited) into
// the unset/set Optional solve.Options.TimeLimit expects.
func timeLimitOption(d time.Duration) lang.Optional[time.Duration] {
	if d <= 0 {
		return lang.Optional[time.Duration]{}
	}
	return lang.Some(d)
}

// parsePosition resolves the -player/-opponent hex flags, defaulting to
// the standard Othello opening when neither is given.
func parsePosition(playerHex, opponentHex string) (player, opponent uint64, err error) {
	if playerHex == "" && opponentHex == "" {
		p, o := bitboard.Initial()
		return p, o, nil
	}
	if playerHex == "" || opponentHex == "" {
		return 0, 0, fmt.Errorf("both -player and -opponent must be given together")
	}

	p, err := strconv.ParseUint(trimHex(playerHex), 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("-player: %w", err)
	}
	o, err := strconv.ParseUint(trimHex(opponentHex), 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("-opponent: %w", err)
	}
	if p&o != 0 {
		return 0, 0, fmt.Errorf("-player and -opponent overlap")
	}
	return p, o, nil
}

func trimHex(s string) string {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
