package dfpn

import (
	"github.com/herohde/othellodfpn/pkg/bitboard"
	"github.com/herohde/othellodfpn/pkg/eval"
)

// Config holds the spawn parameters and the zobrist table: logically
// immutable after startup, shared by every worker (spec.md §9, "Global
// mutable state" -- these are the pieces that are NOT mutable and so are
// passed as a plain shared config record rather than folded into the
// synchronized engine context).
type Config struct {
	// SpawnMaxGeneration is the base cap on subtask recursion depth
	// (spec.md §6, default 1).
	SpawnMaxGeneration int
	// SpawnMinDepth: don't spawn below this empty-count (default 5).
	SpawnMinDepth int
	// SpawnLimitPerNode bounds how many children a single spawn decision
	// may emit (default: very large, i.e., "as many as qualify").
	SpawnLimitPerNode int

	// LocalHeapCapacity, GlobalChunkCapacity, SharedArrayCapacity size
	// the three work-distribution containers (spec.md §4.3-4.5).
	LocalHeapCapacity   int
	GlobalChunkCapacity int
	SharedArrayCapacity int

	// UseEvaluation selects whether Eval is consulted for move ordering,
	// or every score is treated as zero (spec.md §6).
	UseEvaluation bool
	Eval          eval.Evaluator

	Zobrist *bitboard.ZobristTable
}

// DefaultConfig returns the spec's documented defaults (spec.md §6).
func DefaultConfig() Config {
	return Config{
		SpawnMaxGeneration:  1,
		SpawnMinDepth:       5,
		SpawnLimitPerNode:   1 << 30,
		LocalHeapCapacity:   1024,
		GlobalChunkCapacity: 4096,
		SharedArrayCapacity: 65536,
		UseEvaluation:       true,
		Eval:                eval.DefaultFeature,
		Zobrist:             bitboard.NewZobristTable(0),
	}
}

func (c Config) evaluator() eval.Evaluator {
	if !c.UseEvaluation {
		return eval.Zero{}
	}
	if c.Eval == nil {
		return eval.DefaultFeature
	}
	return c.Eval
}
