package node

import (
	"tis100/direction"
	"tis100/port"
	"tis100/value"
)

// Input is a source node: it offers a write in the DOWN direction for
// as long as it has data, then stalls forever once exhausted (spec.md
// §4.5), matching the hardware behaviour of a depleted input tape.
type Input struct {
	id     int
	values []value.Value
	cursor int
}

// NewInput builds an Input node that will offer values in order, then
// go permanently silent.
func NewInput(id int, values []value.Value) *Input {
	return &Input{id: id, values: values}
}

func (n *Input) ID() int      { return n.id }
func (n *Input) Halted() bool { return false }

func (n *Input) OfferIntent(fab *port.Fabric) {
	if n.exhausted() {
		return
	}
	fab.SetIntent(n.id, port.Writing(direction.Down, n.values[n.cursor]))
}

func (n *Input) Resolve(fab *port.Fabric) {}

func (n *Input) Retire(fab *port.Fabric) bool {
	if n.exhausted() {
		return false
	}
	if !fab.WriteAccepted(n.id) {
		return false
	}
	n.cursor++
	return true
}

func (n *Input) exhausted() bool { return n.cursor >= len(n.values) }

// Remaining reports how many values are left to offer.
func (n *Input) Remaining() int { return len(n.values) - n.cursor }

// Output is a sink node: it offers a read in the UP direction every
// tick and appends each resolved value to its stream (spec.md §4.5).
type Output struct {
	id     int
	stream []value.Value
}

// NewOutput builds an empty Output node.
func NewOutput(id int) *Output {
	return &Output{id: id}
}

func (n *Output) ID() int      { return n.id }
func (n *Output) Halted() bool { return false }

func (n *Output) OfferIntent(fab *port.Fabric) {
	fab.SetIntent(n.id, port.Reading(direction.Up))
}

func (n *Output) Resolve(fab *port.Fabric) {}

func (n *Output) Retire(fab *port.Fabric) bool {
	v, ok := fab.ReadResult(n.id)
	if !ok {
		return false
	}
	n.stream = append(n.stream, v)
	return true
}

// Stream returns the values received so far, in order.
func (n *Output) Stream() []value.Value { return n.stream }

// inert implements the shared behaviour of Damaged and Null nodes:
// neither ever offers a read or write, so a neighbour aiming at one
// stays stalled for the whole run (spec.md §4.5).
type inert struct {
	id int
}

func (n *inert) ID() int                        { return n.id }
func (n *inert) Halted() bool                    { return false }
func (n *inert) OfferIntent(fab *port.Fabric)    {}
func (n *inert) Resolve(fab *port.Fabric)        {}
func (n *inert) Retire(fab *port.Fabric) bool    { return false }

// Damaged is an interior node that never executes and never offers a
// port action.
type Damaged struct{ inert }

// NewDamaged builds a Damaged node.
func NewDamaged(id int) *Damaged { return &Damaged{inert{id: id}} }

// Null is an edge node standing in for "no input/output here".
type Null struct{ inert }

// NewNull builds a Null node.
func NewNull(id int) *Null { return &Null{inert{id: id}} }
