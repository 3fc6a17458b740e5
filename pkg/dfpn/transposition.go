package dfpn

import (
	"math/bits"
	"sync"

	"go.uber.org/atomic"
)

// numStripes is the fixed stripe-lock count for the transposition table
// (spec.md §4.1: "1024 reader/writer locks"). Kept a compile-time
// constant -- matches the teacher's preference for compile-time-bounded
// structures (spec.md §5, "Memory").
const numStripes = 1024

// stripe is a single reader/writer lock, padded to its own cache line so
// that 1024 of them do not false-share (spec.md §9, "Stripe-lock
// cache-line padding"). sync.RWMutex is a handful of words; the padding
// below rounds the struct up to (at least) 64 bytes on a 64-bit platform.
type stripe struct {
	mu sync.RWMutex
	_  [48]byte
}

// ttEntry is one slot of the transposition table: 32 bytes, one per
// index, no chaining (spec.md §4.1: "direct index by low hash bits").
type ttEntry struct {
	key    uint64
	pn, dn uint32
	result Result
	depth  int32
	eval   int32
	age    uint32
}

// TranspositionTable is the shared, stripe-locked table keyed by
// canonical zobrist hash. Concurrent-safe: many readers/one writer per
// stripe, stripes decorrelated from the table index (spec.md §4.1).
type TranspositionTable struct {
	table  []ttEntry
	mask   uint64
	stripes [numStripes]stripe

	hits       atomic.Uint64
	stores     atomic.Uint64
	collisions atomic.Uint64
}

// NewTranspositionTable allocates a table sized (in bytes) to at most
// sizeBytes, rounded down to the nearest power-of-two entry count. The
// allocation happens once, up front (spec.md §4.1, "Memory is calloc'd
// once"); a size below one entry still allocates a single entry.
func NewTranspositionTable(sizeBytes uint64) *TranspositionTable {
	const entrySize = 32

	n := sizeBytes / entrySize
	if n == 0 {
		n = 1
	}
	// round down to a power of two
	shift := bits.Len64(n) - 1
	count := uint64(1) << uint(shift)

	return &TranspositionTable{
		table: make([]ttEntry, count),
		mask:  count - 1,
	}
}

func (t *TranspositionTable) stripeFor(key uint64) *stripe {
	idx := (key >> 20) & (numStripes - 1)
	return &t.stripes[idx]
}

// Probe returns the cached (pn, dn, result, eval) for key iff present and
// stored at depth >= the caller's current depth (spec.md §4.1: "hit iff
// entry.key == key && entry.depth >= depth"). A same-key, shallower-depth
// entry is reported as a miss, since it cannot safely bound the current
// search.
func (t *TranspositionTable) Probe(key uint64, depth int) (pn, dn uint32, result Result, evalScore int32, ok bool) {
	if len(t.table) == 0 {
		return 0, 0, Unknown, 0, false
	}
	s := t.stripeFor(key)
	idx := key & t.mask

	s.mu.RLock()
	e := t.table[idx]
	s.mu.RUnlock()

	if e.key != key {
		if e.key != 0 {
			t.collisions.Add(1)
		}
		return 0, 0, Unknown, 0, false
	}
	if int(e.depth) < depth {
		return 0, 0, Unknown, 0, false
	}
	t.hits.Add(1)
	return e.pn, e.dn, e.result, e.eval, true
}

// Store writes an entry for key, replacing the existing slot iff
// entry.depth <= depth (deeper analyses win; equal depth overwrites for
// freshness, spec.md §3 "TT entry").
func (t *TranspositionTable) Store(key uint64, depth int, pn, dn uint32, result Result, evalScore int32) {
	if len(t.table) == 0 {
		return
	}
	s := t.stripeFor(key)
	idx := key & t.mask

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := t.table[idx]
	if int(existing.depth) > depth {
		return // deeper existing analysis wins; no regression.
	}

	t.table[idx] = ttEntry{
		key:    key,
		pn:     pn,
		dn:     dn,
		result: result,
		depth:  int32(depth),
		eval:   evalScore,
		age:    existing.age + 1,
	}
	t.stores.Add(1)
}

func (t *TranspositionTable) Hits() uint64       { return t.hits.Load() }
func (t *TranspositionTable) Stores() uint64     { return t.stores.Load() }
func (t *TranspositionTable) Collisions() uint64 { return t.collisions.Load() }

// Size returns the table size in bytes.
func (t *TranspositionTable) Size() uint64 {
	return uint64(len(t.table)) * 32
}
