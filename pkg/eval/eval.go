// Package eval implements position evaluation for Othello, the static
// collaborator the search core uses only for move ordering -- never for
// correctness. Per spec.md §1/§6, core sees this only through
// eval(player, opponent) -> int32; nothing here may affect the proof.
package eval

import (
	"math/bits"

	"github.com/herohde/othellodfpn/pkg/bitboard"
)

// Evaluator is a static position evaluator, scored from player's
// perspective (positive favors player). Mirrors the single-method shape
// of the teacher's eval.Evaluator, generalized from board.Board to raw
// bitboards since the core never needs a stateful board wrapper.
type Evaluator interface {
	Evaluate(player, opponent uint64) int32
}

// weight is a per-square positional weight table, the standard
// corner-heavy / X-square-averse Othello heuristic. Index 0 is A1 (per
// this package's row-major square numbering).
var weight = [64]int32{
	120, -20, 20, 5, 5, 20, -20, 120,
	-20, -40, -5, -5, -5, -5, -40, -20,
	20, -5, 15, 3, 3, 15, -5, 20,
	5, -5, 3, 3, 3, 3, -5, 5,
	5, -5, 3, 3, 3, 3, -5, 5,
	20, -5, 15, 3, 3, 15, -5, 20,
	-20, -40, -5, -5, -5, -5, -40, -20,
	120, -20, 20, 5, 5, 20, -20, 120,
}

// Feature is the default static evaluator: a weighted sum of positional
// table score, disc-count differential, and mobility differential. It is
// deliberately modest -- spec.md treats the evaluator as an external
// collaborator the core never inspects beyond the single int32 return,
// so there is no loaded weight table or NNUE-style network here, unlike
// heavier engines in the example pack (e.g. hailam-chessplay's sfnnue).
type Feature struct {
	// MobilityWeight scales the (player moves - opponent moves) term.
	// Zero disables it (useful for cheap move ordering in hot loops).
	MobilityWeight int32
}

// DefaultFeature is the zero-config evaluator used when the caller does
// not care to tune weights.
var DefaultFeature = Feature{MobilityWeight: 10}

func (f Feature) Evaluate(player, opponent uint64) int32 {
	var score int32
	for sq := 0; sq < 64; sq++ {
		bit := uint64(1) << uint(sq)
		switch {
		case player&bit != 0:
			score += weight[sq]
		case opponent&bit != 0:
			score -= weight[sq]
		}
	}

	score += int32(bits.OnesCount64(player)) - int32(bits.OnesCount64(opponent))

	if f.MobilityWeight != 0 {
		pm := bits.OnesCount64(bitboard.Moves(player, opponent))
		om := bits.OnesCount64(bitboard.Moves(opponent, player))
		score += f.MobilityWeight * int32(pm-om)
	}
	return score
}

// Zero is a Nop evaluator: always returns 0. Selected when
// Options.UseEvaluation is false (spec.md §6), so move ordering degrades
// to an arbitrary but fixed order rather than an omitted call.
type Zero struct{}

func (Zero) Evaluate(uint64, uint64) int32 { return 0 }
