package dfpn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestGlobal(n int) *Global {
	cfg := testConfig()
	return NewGlobal(NewTranspositionTable(1<<16), cfg, n)
}

func TestChildPriorityPrefersLowerPNForOR(t *testing.T) {
	parent := &node{typ: OR}
	cheap := &node{pn: 10, evalScore: 0}
	expensive := &node{pn: 1000, evalScore: 0}
	assert.Greater(t, childPriority(parent, cheap), childPriority(parent, expensive))
}

func TestChildPriorityPrefersLowerDNForAND(t *testing.T) {
	parent := &node{typ: AND}
	cheap := &node{dn: 10, evalScore: 0}
	expensive := &node{dn: 1000, evalScore: 0}
	assert.Greater(t, childPriority(parent, cheap), childPriority(parent, expensive))
}

func TestBestChildIndexPicksHighestPriority(t *testing.T) {
	n := &node{typ: OR}
	n.children = []*node{
		{pn: 100}, {pn: 5}, {pn: 50},
	}
	assert.Equal(t, 1, bestChildIndex(n))
}

func TestSpawnRootSplitPushesAllButBestToShared(t *testing.T) {
	g := newTestGlobal(2)
	w := NewWorker(0, testConfig())

	n := &node{typ: OR, depth: 10}
	n.children = []*node{
		{pn: 0, depth: 9},   // best: already proven win-cheap
		{pn: 500, depth: 9},
		{pn: 600, depth: 9},
	}
	task := Task{RootMove: 3, Priority: 100, Generation: 0}

	spawned := spawnRootSplit(g, testConfig(), w, task, n)
	assert.Equal(t, 2, spawned)
	assert.Equal(t, 2, g.Shared.Len())
}

func TestComputeEffectiveParamsBacksOffUnderSharedBackpressure(t *testing.T) {
	cfg := testConfig()
	g := newTestGlobal(1)
	w := NewWorker(0, cfg)

	for i := 0; i < cfg.SharedArrayCapacity; i++ {
		g.Shared.Push(Task{})
	}

	params := computeEffectiveParams(cfg, g, w)
	assert.True(t, params.abort)
}

func TestComputeEffectiveParamsRelaxesUnderHighIdleRate(t *testing.T) {
	cfg := testConfig()
	g := newTestGlobal(10)
	w := NewWorker(0, cfg)
	for i := 0; i < ChunkSize; i++ {
		w.Local.Push(Task{}) // keep LocalHeap at/above ChunkSize to isolate idle-rate effect
	}

	params := computeEffectiveParams(cfg, g, w)
	assert.Equal(t, cfg.SpawnMaxGeneration+10, params.maxGen)
	assert.Equal(t, cfg.SpawnLimitPerNode*5, params.spawnLimit)
}

func TestExportChunksDrainsToSharedWhenIdleWorkersExist(t *testing.T) {
	cfg := testConfig()
	g := newTestGlobal(4)
	w := NewWorker(0, cfg)
	w.Local.Push(Task{Priority: 10})
	w.Local.Push(Task{Priority: 5})
	w.Local.Push(Task{Priority: 1})

	exportChunks(g, w)

	assert.Equal(t, 1, w.Local.Len())
	assert.Equal(t, 2, g.Shared.Len())
}

func TestExportChunksExportsChunkWhenLocalHeapIsDeepInNormalMode(t *testing.T) {
	cfg := testConfig()
	g := newTestGlobal(1)
	g.Busy.SetBusy(0) // no idle worker -> normal mode
	w := NewWorker(0, cfg)

	for i := 0; i < localExportThreshold; i++ {
		w.Local.Push(Task{Priority: int32(i)})
	}

	exportChunks(g, w)

	assert.Equal(t, 1, g.Chunks.Len())
	assert.Equal(t, localExportThreshold-ChunkSize, w.Local.Len())
}
