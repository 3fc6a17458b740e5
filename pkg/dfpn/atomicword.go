package dfpn

import "go.uber.org/atomic"

// atomicWord is a 64-bit word supporting atomic OR/AND, built from
// go.uber.org/atomic.Uint64's CAS primitive -- that package, like
// sync/atomic, has no built-in bitwise OR/AND, so a CAS retry loop
// supplies them, the same shape as the CAS retry loops used throughout
// this package (SharedTaskArray).
type atomicWord struct {
	v atomic.Uint64
}

func (w *atomicWord) load() uint64 {
	return w.v.Load()
}

func (w *atomicWord) or(mask uint64) {
	for {
		old := w.v.Load()
		if w.v.CAS(old, old|mask) {
			return
		}
	}
}

func (w *atomicWord) and(mask uint64) {
	for {
		old := w.v.Load()
		if w.v.CAS(old, old&mask) {
			return
		}
	}
}
