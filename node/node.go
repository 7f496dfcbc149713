// Package node implements the grid's node variants — Compute, Stack,
// Damaged, Null, Input and Output — behind one shared interface, per
// spec.md §9's note to prefer a small shared surface over the
// original's layered node hierarchy.
package node

import "tis100/port"

// Node is the behaviour every grid cell implements. The scheduler
// drives all nodes through exactly these three calls per tick, in
// this order, across the whole grid.
type Node interface {
	// ID returns the node's fabric identity, used to key Fabric
	// intents and results.
	ID() int

	// OfferIntent runs the node's intent phase: decode and begin a new
	// instruction, or re-assert a still-pending read/write from an
	// earlier tick.
	OfferIntent(fab *port.Fabric)

	// Resolve runs after the fabric's generic writer/reader matching
	// (Fabric.Resolve) for the whole grid. Ordinary nodes (Compute,
	// Input, Output) have nothing further to do here and implement it
	// as a no-op; Stack uses it to serve each of its neighbours in
	// fixed priority order, since its inbound pushes and outbound pops
	// cannot be expressed as a single PendingAction the way a
	// Compute-to-Compute handshake can.
	Resolve(fab *port.Fabric)

	// Retire runs the node's retire phase: react to this tick's
	// fabric resolution and report whether the node made observable
	// progress (an instruction completed, a handshake resolved, or a
	// fault/halt fired).
	Retire(fab *port.Fabric) bool

	// Halted reports whether the node has permanently stopped (HCF,
	// or a LAST-before-set fault).
	Halted() bool
}
