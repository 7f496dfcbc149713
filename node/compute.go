package node

import (
	"tis100/asm"
	"tis100/direction"
	"tis100/port"
	"tis100/value"
)

// Mode mirrors spec.md §3's Compute node mode: RUN is ready to decode
// its next instruction, READ/WRITE are stalled on a pending port
// action, and IDLE means the node's program cannot make progress
// (empty program, or a halted/faulted node).
type Mode int

const (
	ModeIdle Mode = iota
	ModeRun
	ModeRead
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeRun:
		return "RUN"
	case ModeRead:
		return "READ"
	case ModeWrite:
		return "WRITE"
	default:
		return "?"
	}
}

// resume names what a Compute node does once a port read it began
// resolves.
type resume int

const (
	resumeNone resume = iota
	resumeArith
	resumeJro
	resumeMovRead
)

// Compute is a T21 node: it runs a fixed Program against acc/bak and
// the port fabric. See spec.md §4.2 for the instruction semantics this
// implements.
type Compute struct {
	id   int
	prog *asm.Program

	acc, bak value.Value
	ip       int
	mode     Mode

	halted           bool
	fault            bool
	haltedBeforeTick bool

	// set by OfferIntent for a purely-local instruction (no port
	// touch); committed by Retire in the same tick.
	completedThisTick bool
	nextIP            int

	// pending port action, valid when mode is ModeRead or ModeWrite.
	pendingDir direction.Direction
	pendingVal value.Value

	// what to do once a pending read resolves.
	resume   resume
	resumeOp asm.Opcode
	movDst   asm.Operand
}

// NewCompute builds a Compute node bound to prog. A nil or empty
// Program leaves the node permanently IDLE, per spec.md §4.2.1.
func NewCompute(id int, prog *asm.Program) *Compute {
	c := &Compute{id: id, prog: prog}
	if prog == nil || prog.Empty() {
		c.mode = ModeIdle
	} else {
		c.mode = ModeRun
	}
	return c
}

func (c *Compute) ID() int { return c.id }

func (c *Compute) Halted() bool { return c.halted }

// Faulted reports whether the node stopped because of a runtime fault
// (LAST read/written before any ANY resolution set it) rather than an
// HCF instruction. Both halt the machine per spec.md §7, but the
// scheduler reports them under different exit statuses.
func (c *Compute) Faulted() bool { return c.fault }

func (c *Compute) ACC() value.Value { return c.acc }
func (c *Compute) BAK() value.Value { return c.bak }
func (c *Compute) IP() int          { return c.ip }
func (c *Compute) Mode() Mode       { return c.mode }

func (c *Compute) OfferIntent(fab *port.Fabric) {
	c.completedThisTick = false
	c.haltedBeforeTick = c.halted
	if c.haltedBeforeTick {
		return
	}
	switch c.mode {
	case ModeIdle:
		return
	case ModeRead:
		fab.SetIntent(c.id, port.Reading(c.pendingDir))
	case ModeWrite:
		fab.SetIntent(c.id, port.Writing(c.pendingDir, c.pendingVal))
	case ModeRun:
		c.execute(fab)
	}
}

// Resolve is a no-op: Compute-to-Compute and Compute-to-Input/Output
// handshakes are fully handled by Fabric.Resolve's generic writer/
// reader matching.
func (c *Compute) Resolve(fab *port.Fabric) {}

func (c *Compute) Retire(fab *port.Fabric) bool {
	if c.haltedBeforeTick {
		return false
	}
	if c.halted {
		// Newly halted this tick (HCF fired, or a LAST-before-set
		// fault): the halt itself is the tick's observable progress.
		return true
	}
	switch c.mode {
	case ModeIdle:
		return false
	case ModeRun:
		if !c.completedThisTick {
			return false
		}
		c.ip = c.nextIP
		c.completedThisTick = false
		return true
	case ModeRead:
		v, ok := fab.ReadResult(c.id)
		if !ok {
			return false
		}
		c.applyResume(fab, v)
		return true
	case ModeWrite:
		if !fab.WriteAccepted(c.id) {
			return false
		}
		c.mode = ModeRun
		c.ip = c.next(c.ip)
		return true
	}
	return false
}

func (c *Compute) execute(fab *port.Fabric) {
	if c.prog.Empty() {
		c.mode = ModeIdle
		return
	}
	instr := c.prog.Instructions[c.ip]
	switch instr.Op {
	case asm.NOP:
		c.finishLocal(c.next(c.ip))
	case asm.HCF:
		c.halted = true
		c.mode = ModeIdle
	case asm.NEG:
		c.acc = c.acc.Neg()
		c.finishLocal(c.next(c.ip))
	case asm.SAV:
		c.bak = c.acc
		c.finishLocal(c.next(c.ip))
	case asm.SWP:
		c.acc, c.bak = c.bak, c.acc
		c.finishLocal(c.next(c.ip))
	case asm.JMP:
		c.finishLocal(instr.Target)
	case asm.JEZ, asm.JNZ, asm.JGZ, asm.JLZ:
		if branchTaken(instr.Op, c.acc) {
			c.finishLocal(instr.Target)
		} else {
			c.finishLocal(c.next(c.ip))
		}
	case asm.ADD, asm.SUB:
		c.beginOperandRead(fab, instr.Src, resumeArith, instr.Op)
	case asm.JRO:
		c.beginOperandRead(fab, instr.Src, resumeJro, instr.Op)
	case asm.MOV:
		c.movDst = instr.Dst
		c.beginOperandRead(fab, instr.Src, resumeMovRead, instr.Op)
	}
}

// finishLocal marks the current instruction as fully executed this
// tick; Retire commits nextIP once the tick's resolve phase passes.
func (c *Compute) finishLocal(nextIP int) {
	c.completedThisTick = true
	c.nextIP = nextIP
}

// beginOperandRead evaluates an instruction's source operand. A
// literal or ACC/NIL read never touches the fabric and completes
// within OfferIntent; a direction register begins a port read that
// Retire finishes once (or if) the fabric resolves it.
func (c *Compute) beginOperandRead(fab *port.Fabric, src asm.Operand, r resume, op asm.Opcode) {
	if src.Literal {
		c.applyResumeWith(fab, r, op, src.Value, true)
		return
	}
	switch src.Reg {
	case asm.RegACC:
		c.applyResumeWith(fab, r, op, c.acc, true)
		return
	case asm.RegNIL:
		c.applyResumeWith(fab, r, op, value.Zero, true)
		return
	}

	dir := regToDirection(src.Reg)
	if dir == direction.Last && !fab.HasLastUsed(c.id) {
		c.fault = true
		c.halted = true
		c.mode = ModeIdle
		return
	}
	c.mode = ModeRead
	c.pendingDir = dir
	c.resume = r
	c.resumeOp = op
	fab.SetIntent(c.id, port.Reading(dir))
}

// applyResume finishes a pending read using the resume/op captured by
// beginOperandRead, from Retire once the fabric has a result.
func (c *Compute) applyResume(fab *port.Fabric, v value.Value) {
	c.applyResumeWith(fab, c.resume, c.resumeOp, v, false)
}

// applyResumeWith applies a source value once known, for either an
// arithmetic/JRO operand or a MOV source.
//
// offerNow is true only when called synchronously from
// beginOperandRead during OfferIntent, with mode still ModeRun: the
// value never touched the fabric this tick, so a completion can be
// deferred to this same tick's Retire(ModeRun) the normal way, and a
// MOV whose destination is a port direction can still publish its
// write intent in this tick's intent phase.
//
// offerNow is false when called from Retire after a pending read just
// resolved (mode is ModeRead going into this call): Retire is already
// running for this node this tick and won't be called again, so a
// completing instruction must commit ip (and mode) directly instead
// of deferring through completedThisTick.
func (c *Compute) applyResumeWith(fab *port.Fabric, r resume, op asm.Opcode, v value.Value, offerNow bool) {
	switch r {
	case resumeArith:
		switch op {
		case asm.ADD:
			c.acc = c.acc.Add(v)
		case asm.SUB:
			c.acc = c.acc.Sub(v)
		}
		c.commitRun(c.next(c.ip), offerNow)
	case resumeJro:
		c.commitRun(c.mod(c.ip+v.Int()), offerNow)
	case resumeMovRead:
		c.finishMovWrite(fab, v, offerNow)
	}
}

// commitRun records the instruction's next ip. With offerNow it
// defers to the ModeRun branch of Retire running later this tick;
// without it, Retire is already in progress and must commit directly.
func (c *Compute) commitRun(nextIP int, offerNow bool) {
	if offerNow {
		c.finishLocal(nextIP)
		return
	}
	c.mode = ModeRun
	c.ip = nextIP
}

// finishMovWrite applies a MOV's destination once its source value is
// known. If the destination is local (ACC or NIL) the whole
// instruction completes in the same pass that produced v. If it is a
// port direction, the node stalls into ModeWrite; when v was just
// read from the fabric this tick (offerNow false), the write's own
// intent can only be offered starting the next tick, since this
// tick's intent phase has already passed.
func (c *Compute) finishMovWrite(fab *port.Fabric, v value.Value, offerNow bool) {
	dst := c.movDst
	switch dst.Reg {
	case asm.RegACC:
		c.acc = v
		c.commitRun(c.next(c.ip), offerNow)
	case asm.RegNIL:
		c.commitRun(c.next(c.ip), offerNow)
	default:
		dir := regToDirection(dst.Reg)
		if dir == direction.Last && !fab.HasLastUsed(c.id) {
			c.fault = true
			c.halted = true
			c.mode = ModeIdle
			return
		}
		c.mode = ModeWrite
		c.pendingDir = dir
		c.pendingVal = v
		if offerNow {
			fab.SetIntent(c.id, port.Writing(dir, v))
		}
	}
}

func (c *Compute) next(ip int) int {
	return c.mod(ip + 1)
}

func (c *Compute) mod(x int) int {
	n := len(c.prog.Instructions)
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

func branchTaken(op asm.Opcode, acc value.Value) bool {
	switch op {
	case asm.JEZ:
		return acc.Int() == 0
	case asm.JNZ:
		return acc.Int() != 0
	case asm.JGZ:
		return acc.Int() > 0
	case asm.JLZ:
		return acc.Int() < 0
	default:
		return false
	}
}

func regToDirection(r asm.Register) direction.Direction {
	switch r {
	case asm.RegUp:
		return direction.Up
	case asm.RegDown:
		return direction.Down
	case asm.RegLeft:
		return direction.Left
	case asm.RegRight:
		return direction.Right
	case asm.RegAny:
		return direction.Any
	case asm.RegLast:
		return direction.Last
	default:
		panic("node: register is not a port direction")
	}
}
