package dfpn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newChild(pn, dn uint32, proven bool, result Result) *node {
	return &node{pn: pn, dn: dn, isProven: proven, result: result}
}

func TestUpdateORTakesMinPNAndSumDN(t *testing.T) {
	n := &node{typ: OR}
	n.children = []*node{
		newChild(10, 5, false, Unknown),
		newChild(3, 7, false, Unknown),
		newChild(20, 2, false, Unknown),
	}
	n.update()
	assert.EqualValues(t, 3, n.pn)
	assert.EqualValues(t, 14, n.dn)
	assert.False(t, n.isProven)
}

func TestUpdateORAnyWinProvesWin(t *testing.T) {
	n := &node{typ: OR}
	n.children = []*node{
		newChild(INF, 0, true, Lose),
		newChild(0, INF, true, Win),
	}
	n.update()
	assert.True(t, n.isProven)
	assert.Equal(t, Win, n.result)
	assert.EqualValues(t, 0, n.pn)
	assert.EqualValues(t, INF, n.dn)
}

func TestUpdateORAllProvenLoseProvesLose(t *testing.T) {
	n := &node{typ: OR}
	n.children = []*node{
		newChild(INF, 0, true, Lose),
		newChild(INF, 0, true, Lose),
	}
	n.update()
	assert.True(t, n.isProven)
	assert.Equal(t, Lose, n.result)
}

func TestUpdateORAllProvenWithDrawProvesDraw(t *testing.T) {
	n := &node{typ: OR}
	n.children = []*node{
		newChild(INF, 0, true, Lose),
		newChild(INF, INF, true, Draw),
	}
	n.update()
	assert.True(t, n.isProven)
	assert.Equal(t, Draw, n.result)
}

func TestUpdateANDTakesSumPNAndMinDN(t *testing.T) {
	n := &node{typ: AND}
	n.children = []*node{
		newChild(5, 10, false, Unknown),
		newChild(7, 3, false, Unknown),
		newChild(2, 20, false, Unknown),
	}
	n.update()
	assert.EqualValues(t, 14, n.pn)
	assert.EqualValues(t, 3, n.dn)
	assert.False(t, n.isProven)
}

func TestUpdateANDAnyLoseProvesLose(t *testing.T) {
	n := &node{typ: AND}
	n.children = []*node{
		newChild(0, INF, true, Win),
		newChild(INF, 0, true, Lose),
	}
	n.update()
	assert.True(t, n.isProven)
	assert.Equal(t, Lose, n.result)
}

func TestUpdateANDAllProvenWinProvesWin(t *testing.T) {
	n := &node{typ: AND}
	n.children = []*node{
		newChild(0, INF, true, Win),
		newChild(0, INF, true, Win),
	}
	n.update()
	assert.True(t, n.isProven)
	assert.Equal(t, Win, n.result)
}

func TestAddSaturatedClampsAtINF(t *testing.T) {
	assert.EqualValues(t, INF, addSaturated(INF, 1))
	assert.EqualValues(t, INF, addSaturated(INF/2+1, INF/2+1))
	assert.EqualValues(t, 10, addSaturated(4, 6))
}

func TestSetTerminalAssignsCanonicalPNDN(t *testing.T) {
	n := &node{}
	n.setTerminal(Win)
	assert.EqualValues(t, 0, n.pn)
	assert.EqualValues(t, INF, n.dn)

	n.setTerminal(Lose)
	assert.EqualValues(t, INF, n.pn)
	assert.EqualValues(t, 0, n.dn)

	n.setTerminal(Draw)
	assert.EqualValues(t, INF, n.pn)
	assert.EqualValues(t, INF, n.dn)
}
