package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tis100/asm"
	"tis100/direction"
	"tis100/port"
	"tis100/value"
)

func parseOne(t *testing.T, src string) *asm.Program {
	progs, err := asm.Parse(src)
	assert.NoError(t, err)
	return progs[0]
}

// runTick drives one full three-phase tick across ns, returning
// whether anything progressed.
func runTick(fab *port.Fabric, ns []Node) bool {
	fab.Reset()
	for _, n := range ns {
		n.OfferIntent(fab)
	}
	fab.Resolve()
	for _, n := range ns {
		n.Resolve(fab)
	}
	progressed := false
	for _, n := range ns {
		if n.Retire(fab) {
			progressed = true
		}
	}
	return progressed
}

func TestComputeImmediateMovAndArithmetic(t *testing.T) {
	c := NewCompute(1, parseOne(t, "@0\nMOV 5, ACC\nADD 3\n"))
	fab := port.NewFabric()

	assert.True(t, runTick(fab, []Node{c}))
	assert.Equal(t, 5, c.ACC().Int())
	assert.True(t, runTick(fab, []Node{c}))
	assert.Equal(t, 8, c.ACC().Int())
}

func TestComputeSavSwp(t *testing.T) {
	c := NewCompute(1, parseOne(t, "@0\nMOV 7, ACC\nSAV\nMOV 0, ACC\nSWP\n"))
	fab := port.NewFabric()
	for i := 0; i < 4; i++ {
		runTick(fab, []Node{c})
	}
	assert.Equal(t, 7, c.ACC().Int())
	assert.Equal(t, 0, c.BAK().Int())
}

func TestComputeHcfHalts(t *testing.T) {
	c := NewCompute(1, parseOne(t, "@0\nHCF\n"))
	fab := port.NewFabric()
	assert.True(t, runTick(fab, []Node{c}))
	assert.True(t, c.Halted())
	assert.False(t, c.Faulted())
	assert.False(t, runTick(fab, []Node{c})) // permanently idle afterward
}

func TestComputeEmptyProgramStaysIdle(t *testing.T) {
	c := NewCompute(1, nil)
	fab := port.NewFabric()
	assert.Equal(t, ModeIdle, c.Mode())
	assert.False(t, runTick(fab, []Node{c}))
}

func TestComputeMovThroughPortTakesTwoNodes(t *testing.T) {
	writer := NewCompute(1, parseOne(t, "@0\nMOV 4, RIGHT\n"))
	reader := NewCompute(2, parseOne(t, "@0\nMOV LEFT, ACC\n"))
	fab := port.NewFabric()
	assert.NoError(t, fab.Connect(1, direction.Right, 2))

	assert.True(t, runTick(fab, []Node{writer, reader}))
	assert.Equal(t, 4, reader.ACC().Int())
}

func TestComputeMovBlocksUntilPartnerArrives(t *testing.T) {
	reader := NewCompute(2, parseOne(t, "@0\nMOV LEFT, ACC\n"))
	writer := NewCompute(1, parseOne(t, "@0\nNOP\nMOV 9, RIGHT\n"))
	fab := port.NewFabric()
	assert.NoError(t, fab.Connect(1, direction.Right, 2))

	// tick 1: writer does NOP, reader stalls waiting on LEFT.
	runTick(fab, []Node{writer, reader})
	assert.Equal(t, ModeRead, reader.Mode())
	assert.Equal(t, 0, reader.ACC().Int())

	// tick 2: writer's MOV resolves against reader's still-pending read.
	runTick(fab, []Node{writer, reader})
	assert.Equal(t, 9, reader.ACC().Int())
}

func TestComputeConditionalJumpLoop(t *testing.T) {
	c := NewCompute(1, parseOne(t, "@0\nMOV 3, ACC\nL: MOV ACC, NIL\nSUB 1\nJGZ L\n"))
	fab := port.NewFabric()
	for i := 0; i < 9; i++ {
		runTick(fab, []Node{c})
	}
	assert.Equal(t, 0, c.ACC().Int())
}

func TestComputeJroSkipsInstructions(t *testing.T) {
	c := NewCompute(1, parseOne(t, "@0\nMOV 2, ACC\nJRO ACC\nMOV 9, ACC\nMOV 7, ACC\n"))
	fab := port.NewFabric()
	runTick(fab, []Node{c}) // acc = 2, ip -> 1
	runTick(fab, []Node{c}) // JRO 2: ip -> (1+2)%4 = 3
	assert.Equal(t, 3, c.IP())
	runTick(fab, []Node{c}) // MOV 7, ACC at index 3
	assert.Equal(t, 7, c.ACC().Int())
}

func TestComputeNilIsIdentity(t *testing.T) {
	c := NewCompute(1, parseOne(t, "@0\nMOV 42, ACC\nMOV ACC, NIL\nMOV NIL, ACC\n"))
	fab := port.NewFabric()
	runTick(fab, []Node{c}) // acc = 42
	runTick(fab, []Node{c}) // MOV ACC, NIL: acc unchanged
	assert.Equal(t, 42, c.ACC().Int())
	runTick(fab, []Node{c}) // MOV NIL, ACC: acc = 0
	assert.Equal(t, 0, c.ACC().Int())
}

func TestComputeLastBeforeAnyFaults(t *testing.T) {
	c := NewCompute(1, parseOne(t, "@0\nMOV LAST, ACC\n"))
	fab := port.NewFabric()
	runTick(fab, []Node{c})
	assert.True(t, c.Halted())
	assert.True(t, c.Faulted())
}

func TestInputExhaustsThenStalls(t *testing.T) {
	in := NewInput(1, []value.Value{value.New(1), value.New(2)})
	out := NewOutput(2)
	fab := port.NewFabric()
	assert.NoError(t, fab.Connect(1, direction.Down, 2))

	runTick(fab, []Node{in, out})
	runTick(fab, []Node{in, out})
	assert.Equal(t, []value.Value{value.New(1), value.New(2)}, out.Stream())
	assert.False(t, runTick(fab, []Node{in, out}))
}

func TestStackPushAndPopOrdering(t *testing.T) {
	fab := port.NewFabric()
	s := NewStack(1, fab)
	pusher := NewCompute(2, parseOne(t, "@0\nMOV 5, RIGHT\nMOV 6, RIGHT\nMOV 7, RIGHT\n"))
	assert.NoError(t, fab.Connect(2, direction.Right, 1))

	for i := 0; i < 3; i++ {
		runTick(fab, []Node{pusher, s})
	}
	assert.Equal(t, 3, s.Len())

	popper := NewCompute(3, parseOne(t, "@0\nMOV LEFT, ACC\nMOV ACC, DOWN\n"))
	out := NewOutput(4)
	assert.NoError(t, fab.Connect(1, direction.Right, 3))
	assert.NoError(t, fab.Connect(3, direction.Down, 4))

	for i := 0; i < 6; i++ {
		runTick(fab, []Node{s, popper, out})
	}
	assert.Equal(t, []value.Value{value.New(7), value.New(6), value.New(5)}, out.Stream())
}

func TestStackBlocksWhenEmpty(t *testing.T) {
	fab := port.NewFabric()
	s := NewStack(1, fab)
	popper := NewCompute(2, parseOne(t, "@0\nMOV LEFT, ACC\n"))
	assert.NoError(t, fab.Connect(1, direction.Right, 2))

	assert.False(t, runTick(fab, []Node{s, popper}))
	assert.Equal(t, ModeRead, popper.Mode())
}

func TestStackWinsAnyPriorityOverLowerPriorityOutput(t *testing.T) {
	// Mirrors the maintainer-reported scenario: a Compute has a
	// non-full Stack at its LEFT (highest ANY priority) and a ready
	// Output reachable at its DOWN (lowest ANY priority, and the only
	// direction Output itself ever reads from). MOV ACC, ANY must
	// resolve to the Stack, not fall through to the Output because the
	// Stack never publishes an ordinary PendingAction of its own.
	fab := port.NewFabric()
	s := NewStack(1, fab)
	c := NewCompute(2, parseOne(t, "@0\nMOV 9, ANY\n"))
	out := NewOutput(3)
	assert.NoError(t, fab.Connect(2, direction.Left, 1))
	assert.NoError(t, fab.Connect(2, direction.Down, 3))

	assert.True(t, runTick(fab, []Node{s, c, out}))
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, out.Stream())
}

func TestDamagedNeverResolves(t *testing.T) {
	d := NewDamaged(1)
	writer := NewCompute(2, parseOne(t, "@0\nMOV 1, RIGHT\n"))
	fab := port.NewFabric()
	assert.NoError(t, fab.Connect(2, direction.Right, 1))

	assert.False(t, runTick(fab, []Node{d, writer}))
	assert.Equal(t, ModeWrite, writer.Mode())
}
