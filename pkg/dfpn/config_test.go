package dfpn

import "github.com/herohde/othellodfpn/pkg/bitboard"

// testConfig returns a small, deterministic Config suitable for unit
// tests: a fixed-seed Zobrist table and modest container capacities so
// tests that exhaust a container (e.g. backpressure) stay fast.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Zobrist = bitboard.NewZobristTable(1)
	cfg.SharedArrayCapacity = 64
	cfg.GlobalChunkCapacity = 16
	cfg.LocalHeapCapacity = 64
	return cfg
}
