package bitboard

import "math/rand"

// ZobristHash is a canonical-position hash used as the transposition
// table key. Two positions related by a dihedral symmetry hash identically
// because the hash is always computed from Canonical(player, opponent).
//
// See also: https://research.cs.wisc.edu/techreports/1970/TR88.pdf.
type ZobristHash uint64

// ZobristTable is a pseudo-randomized table for computing a position hash.
// Deterministic only within one run -- the seed value itself carries no
// meaning, only consistency across probes in a single solve matters
// (spec.md §6, "Hash seed").
type ZobristTable struct {
	player, opponent [NumSquares]ZobristHash
}

// NewZobristTable builds a table from the given seed. Seed zero is fine;
// callers that want a fresh table per solve may pass time-derived seeds.
func NewZobristTable(seed int64) *ZobristTable {
	ret := &ZobristTable{}
	r := rand.New(rand.NewSource(seed))

	for sq := 0; sq < NumSquares; sq++ {
		ret.player[sq] = ZobristHash(r.Uint64())
		ret.opponent[sq] = ZobristHash(r.Uint64())
	}
	return ret
}

// Hash computes the zobrist hash for the canonical form of (player, opponent).
func (z *ZobristTable) Hash(player, opponent uint64) ZobristHash {
	cp, co := Canonical(player, opponent)

	var hash ZobristHash
	for sq := 0; sq < NumSquares; sq++ {
		bit := uint64(1) << uint(sq)
		if cp&bit != 0 {
			hash ^= z.player[sq]
		}
		if co&bit != 0 {
			hash ^= z.opponent[sq]
		}
	}
	return hash
}
