// Package port implements the value-passing fabric described in
// spec.md §4.3: a rendezvous between a writer and a reader on a shared
// edge, with no buffering. A value moving between two nodes exists
// only as the writer's PendingAction until a matching reader retires
// it in the same tick.
package port

import (
	"tis100/direction"
	"tis100/value"
)

// Kind distinguishes what a node intends to do with one of its ports
// this tick.
type Kind int

const (
	KindNone Kind = iota
	KindReading
	KindWriting
)

// PendingAction is what a node offers to the fabric during the intent
// phase of a tick: either "I want to read from Dir" or "I want to
// write Value to Dir". Dir may be a concrete direction or one of the
// pseudo-directions ANY/LAST.
type PendingAction struct {
	Kind  Kind
	Dir   direction.Direction
	Value value.Value
}

// Reading builds a read intent.
func Reading(dir direction.Direction) PendingAction {
	return PendingAction{Kind: KindReading, Dir: dir}
}

// Writing builds a write intent carrying v.
func Writing(dir direction.Direction, v value.Value) PendingAction {
	return PendingAction{Kind: KindWriting, Dir: dir, Value: v}
}

// None is the action of a node with no instruction pending a port
// this tick (e.g. IDLE, or executing a non-I/O instruction).
var None = PendingAction{Kind: KindNone}
