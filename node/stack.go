package node

import (
	"tis100/direction"
	"tis100/port"
	"tis100/value"
)

// DefaultStackCapacity is the soft capacity used when a Stack isn't
// given an explicit one. spec.md §9 leaves the bound implementation-
// defined, only requiring it be at least 15; this is a design choice,
// not a behaviour carried over from the original source, which never
// bounded its stack at all.
const DefaultStackCapacity = 15

// Stack is a T30 memory node: no program, no ip, just a bounded LIFO
// served to its neighbours in fixed priority order each tick. See
// spec.md §4.4.
type Stack struct {
	id       int
	capacity int
	values   []value.Value

	progressed bool
}

// NewStack builds a Stack with the default soft capacity, registered
// with fab as a port.CapacityPeer so ANY/LAST priority arbitration can
// see it as a genuine candidate even though it never calls SetIntent
// on its own behalf.
func NewStack(id int, fab *port.Fabric) *Stack {
	return NewStackWithCapacity(id, DefaultStackCapacity, fab)
}

// NewStackWithCapacity builds a Stack with an explicit soft capacity,
// registered with fab the same way NewStack does.
func NewStackWithCapacity(id int, capacity int, fab *port.Fabric) *Stack {
	s := &Stack{id: id, capacity: capacity}
	fab.RegisterCapacityPeer(id, s)
	return s
}

// CanAcceptWrite reports whether the stack has room for another push,
// satisfying port.CapacityPeer.
func (s *Stack) CanAcceptWrite() bool { return len(s.values) < s.capacity }

// CanServeRead reports whether the stack has a value to pop,
// satisfying port.CapacityPeer.
func (s *Stack) CanServeRead() bool { return len(s.values) > 0 }

func (s *Stack) ID() int { return s.id }

// Halted is always false: a Stack never fires HCF and has no fault
// condition of its own.
func (s *Stack) Halted() bool { return false }

// OfferIntent is a no-op: a Stack never initiates a read or write of
// its own, it only serves its neighbours' intents during Resolve.
func (s *Stack) OfferIntent(fab *port.Fabric) {}

// Resolve serves each neighbour with a pending action addressed at
// this node, in the fixed priority order LEFT, RIGHT, UP, DOWN. A
// neighbour's write pushes (blocked if the stack is at capacity); a
// neighbour's read pops (blocked if the stack is empty). Because
// pushes and pops are applied to s.values in this same priority-
// ordered pass, multiple neighbours touching the stack in one tick
// are fully serialised, matching spec.md §4.4.
func (s *Stack) Resolve(fab *port.Fabric) {
	s.progressed = false
	for _, dir := range direction.Priority {
		neighborID, ok := fab.Neighbor(s.id, dir)
		if !ok {
			continue
		}
		action, ok := fab.PendingOf(neighborID)
		if !ok {
			continue
		}
		back := dir.Opposite()
		if !fab.Accepts(neighborID, action.Dir, back) {
			continue
		}

		switch action.Kind {
		case port.KindWriting:
			if fab.WriteAccepted(neighborID) || len(s.values) >= s.capacity {
				continue
			}
			s.values = append(s.values, action.Value)
			fab.SatisfyWrite(neighborID)
			if action.Dir == direction.Any {
				fab.SetLastUsed(neighborID, back)
			}
			s.progressed = true
		case port.KindReading:
			if _, already := fab.ReadResult(neighborID); already || len(s.values) == 0 {
				continue
			}
			top := s.values[len(s.values)-1]
			s.values = s.values[:len(s.values)-1]
			fab.SatisfyRead(neighborID, top)
			if action.Dir == direction.Any {
				fab.SetLastUsed(neighborID, back)
			}
			s.progressed = true
		}
	}
}

// Retire reports whether this tick pushed or popped a value.
func (s *Stack) Retire(fab *port.Fabric) bool {
	return s.progressed
}

// Len reports the current stack depth, for tests and the debugger.
func (s *Stack) Len() int { return len(s.values) }
