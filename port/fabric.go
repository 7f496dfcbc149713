package port

import (
	"fmt"
	"sort"

	"tis100/direction"
	"tis100/value"
)

// CapacityPeer is implemented by a node, such as Stack, that serves
// its neighbours' reads and writes directly from its own Resolve phase
// instead of ever publishing a PendingAction through SetIntent.
// Without registering one, such a neighbour looks permanently unready
// to writeReady/readReady, so an ANY/LAST declarant on the other side
// would skip straight past it to a lower-priority candidate. A
// registered CapacityPeer is surfaced to the priority scan as ready
// exactly when it could accept a write/serve a read, but the fabric
// never resolves the handshake itself: it leaves the action pending so
// the peer's own Resolve (e.g. Stack.Resolve, via Accepts) is what
// actually serves it, the same as it already does for a concrete
// direction aimed straight at it.
type CapacityPeer interface {
	CanAcceptWrite() bool
	CanServeRead() bool
}

// Fabric is the grid's shared wiring: a set of directed edges between
// node IDs, plus the per-tick bookkeeping needed to resolve reads and
// writes against each other. It holds no values between ticks; only
// lastUsed (for LAST) survives a Reset.
type Fabric struct {
	neighbor map[int]map[direction.Direction]int // nodeID -> dir -> neighbour nodeID

	pending  map[int]PendingAction       // nodeID -> this tick's intent
	lastUsed map[int]direction.Direction // nodeID -> concrete dir last resolved via ANY/LAST
	capacity map[int]CapacityPeer        // nodeID -> registered CapacityPeer, if any

	readValue map[int]value.Value // nodeID -> value delivered to a satisfied reader this tick
	readOK    map[int]bool
	writeOK   map[int]bool // nodeID -> whether this tick's writer was accepted
}

// NewFabric returns an empty Fabric ready for Connect calls.
func NewFabric() *Fabric {
	return &Fabric{
		neighbor: map[int]map[direction.Direction]int{},
		lastUsed: map[int]direction.Direction{},
		capacity: map[int]CapacityPeer{},
	}
}

// RegisterCapacityPeer wires id's CapacityPeer so ANY/LAST priority
// arbitration can see it as a genuine candidate without it ever
// publishing an intent of its own.
func (f *Fabric) RegisterCapacityPeer(id int, p CapacityPeer) {
	f.capacity[id] = p
}

// Connect wires a into dir-of-a and b into the opposite direction, so
// each can reach the other by name. dir must be concrete.
func (f *Fabric) Connect(a int, dir direction.Direction, b int) error {
	if !dir.IsConcrete() {
		return fmt.Errorf("port: Connect requires a concrete direction, got %s", dir)
	}
	f.link(a, dir, b)
	f.link(b, dir.Opposite(), a)
	return nil
}

func (f *Fabric) link(from int, dir direction.Direction, to int) {
	m, ok := f.neighbor[from]
	if !ok {
		m = map[direction.Direction]int{}
		f.neighbor[from] = m
	}
	m[dir] = to
}

// Neighbor reports the node id reachable from id in the given concrete
// direction, if any.
func (f *Fabric) Neighbor(id int, dir direction.Direction) (int, bool) {
	n, ok := f.neighbor[id][dir]
	return n, ok
}

// Reset clears all per-tick intents and results, ahead of a new tick's
// intent phase. lastUsed persists across ticks, per spec.md's LAST
// semantics.
func (f *Fabric) Reset() {
	f.pending = map[int]PendingAction{}
	f.readValue = map[int]value.Value{}
	f.readOK = map[int]bool{}
	f.writeOK = map[int]bool{}
}

// HasLastUsed reports whether id has ever resolved an ANY/LAST action,
// i.e. whether its LAST direction is defined. Reading or writing LAST
// before this is true is a program-level runtime fault (spec.md §7).
func (f *Fabric) HasLastUsed(id int) bool {
	_, ok := f.lastUsed[id]
	return ok
}

// SetIntent records id's pending action for this tick. Calling it more
// than once for the same id in the same tick overwrites the previous
// intent; nodes are expected to call it at most once per tick.
func (f *Fabric) SetIntent(id int, action PendingAction) {
	f.pending[id] = action
}

// PendingOf reports id's intent for this tick, if it has published
// one. Used by nodes that resolve their neighbours directly (Stack)
// instead of publishing an intent of their own.
func (f *Fabric) PendingOf(id int) (PendingAction, bool) {
	a, ok := f.pending[id]
	return a, ok
}

// SatisfyRead grants id's pending read with v directly, bypassing the
// generic writer/reader search in Resolve. The caller is responsible
// for not double-granting: it should check PendingOf/ReadResult first.
func (f *Fabric) SatisfyRead(id int, v value.Value) {
	f.readValue[id] = v
	f.readOK[id] = true
}

// SatisfyWrite grants id's pending write directly, bypassing Resolve's
// generic search.
func (f *Fabric) SatisfyWrite(id int) {
	f.writeOK[id] = true
}

// SetLastUsed records dir as the concrete direction id's ANY/LAST
// intent resolved to. Exported so Stack can update a neighbour's LAST
// state after serving it directly, the same way Resolve does for an
// ordinary writer/reader pair.
func (f *Fabric) SetLastUsed(id int, dir direction.Direction) {
	f.lastUsed[id] = dir
}

// Accepts reports whether a pending action declared as declaredDir
// (a concrete direction, ANY, or LAST) is satisfied by traffic
// arriving from/departing to back. Exported for Stack, which matches
// its neighbours' declared directions against itself directly instead
// of going through Resolve's writer/reader search.
func (f *Fabric) Accepts(id int, declaredDir, back direction.Direction) bool {
	return f.readerAccepts(id, declaredDir, back)
}

// Resolve runs one round of rendezvous matching across every pending
// writer against every pending reader. It is idempotent to call more
// than once in a tick (already-resolved pairs are skipped); the
// scheduler calls it once per tick.
//
// It makes two passes in deterministic (sorted) node-ID order: one
// driven by each pending writer's own candidate list, one driven by
// each pending reader's. A concrete declarant only ever has one
// candidate, so its pass is a no-op for it; an ANY/LAST declarant's
// pass is what lets it pick its partner by its own fixed priority
// instead of whichever side Go's map iteration happened to visit
// first.
func (f *Fabric) Resolve() {
	f.resolveWriters()
	f.resolveReaders()
}

func (f *Fabric) resolveWriters() {
	for _, id := range f.sortedPendingIDs() {
		action := f.pending[id]
		if action.Kind != KindWriting || f.writeOK[id] {
			continue
		}
		f.tryWrite(id, action)
	}
}

func (f *Fabric) resolveReaders() {
	for _, id := range f.sortedPendingIDs() {
		action := f.pending[id]
		if action.Kind != KindReading || f.readOK[id] {
			continue
		}
		f.tryRead(id, action)
	}
}

func (f *Fabric) sortedPendingIDs() []int {
	ids := make([]int, 0, len(f.pending))
	for id := range f.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// transfer commits a resolved rendezvous: writerID's value moves to
// readerID, cd is the direction from writer to reader.
func (f *Fabric) transfer(writerID, readerID int, cd direction.Direction, v value.Value) {
	back := cd.Opposite()
	f.readValue[readerID] = v
	f.readOK[readerID] = true
	f.writeOK[writerID] = true
	if f.pending[writerID].Dir == direction.Any {
		f.lastUsed[writerID] = cd
	}
	if f.pending[readerID].Dir == direction.Any {
		f.lastUsed[readerID] = back
	}
}

func (f *Fabric) tryWrite(writerID int, action PendingAction) {
	if action.Dir == direction.Any {
		cd, ok := direction.FirstReady(direction.ReadyMask(func(d direction.Direction) bool {
			return f.writeReady(writerID, d)
		}))
		if ok {
			f.settleWrite(writerID, cd, action.Value)
		}
		return
	}
	for _, cd := range f.candidateDirs(writerID, action.Dir) {
		if f.writeReady(writerID, cd) {
			f.settleWrite(writerID, cd, action.Value)
			return
		}
	}
}

// settleWrite commits a write whose target direction cd has just been
// found ready. If the neighbour there is a registered CapacityPeer
// (Stack), it serves itself from its own Resolve phase via Accepts,
// so the action is left pending rather than resolved here; otherwise
// this performs the ordinary generic transfer.
func (f *Fabric) settleWrite(writerID int, cd direction.Direction, v value.Value) {
	neighborID := f.neighbor[writerID][cd]
	if _, ok := f.capacity[neighborID]; ok {
		return
	}
	f.transfer(writerID, neighborID, cd, v)
}

// writeReady reports whether writerID's neighbour in direction cd is
// willing to accept a value arriving from there: either a registered
// CapacityPeer with room to take it, or a pending reader. An ANY
// reader is deliberately never ready here, even though readerAccepts
// would say yes: its own priority-ordered pass in resolveReaders is
// what must pick its partner, not whichever writer resolveWriters
// happens to visit first in sorted-ID order.
func (f *Fabric) writeReady(writerID int, cd direction.Direction) bool {
	neighborID, ok := f.neighbor[writerID][cd]
	if !ok {
		return false
	}
	if p, ok := f.capacity[neighborID]; ok {
		return p.CanAcceptWrite()
	}
	reader, ok := f.pending[neighborID]
	if !ok || reader.Kind != KindReading || f.readOK[neighborID] || reader.Dir == direction.Any {
		return false
	}
	return f.readerAccepts(neighborID, reader.Dir, cd.Opposite())
}

// tryRead is resolveReaders' per-node step: it picks the
// highest-priority ready writer among readerID's candidate directions.
// This is what gives a reader declaring ANY its fixed LEFT, RIGHT, UP,
// DOWN priority over several concurrent writers, independent of the
// order resolveWriters happened to visit them in.
func (f *Fabric) tryRead(readerID int, action PendingAction) {
	if action.Dir == direction.Any {
		cd, ok := direction.FirstReady(direction.ReadyMask(func(d direction.Direction) bool {
			return f.readReady(readerID, d)
		}))
		if ok {
			f.settleRead(readerID, cd)
		}
		return
	}
	for _, cd := range f.candidateDirs(readerID, action.Dir) {
		if f.readReady(readerID, cd) {
			f.settleRead(readerID, cd)
			return
		}
	}
}

// settleRead commits a read whose source direction cd has just been
// found ready. If the neighbour there is a registered CapacityPeer
// (Stack), it serves itself from its own Resolve phase via Accepts,
// so the action is left pending rather than resolved here; otherwise
// this performs the ordinary generic transfer.
func (f *Fabric) settleRead(readerID int, cd direction.Direction) {
	writerID := f.neighbor[readerID][cd]
	if _, ok := f.capacity[writerID]; ok {
		return
	}
	f.transfer(writerID, readerID, cd.Opposite(), f.pending[writerID].Value)
}

// readReady reports whether readerID's neighbour in direction cd is
// willing to send a value there: either a registered CapacityPeer
// with a value to give up, or a pending writer. An ANY writer whose
// own priority scan picked a CapacityPeer is not ready here, so a
// lower-priority reader cannot take it ahead of that peer.
func (f *Fabric) readReady(readerID int, cd direction.Direction) bool {
	neighborID, ok := f.neighbor[readerID][cd]
	if !ok {
		return false
	}
	if p, ok := f.capacity[neighborID]; ok {
		return p.CanServeRead()
	}
	writer, ok := f.pending[neighborID]
	if !ok || writer.Kind != KindWriting || f.writeOK[neighborID] {
		return false
	}
	if writer.Dir == direction.Any {
		// Still pending after resolveWriters with a ready target means
		// its own priority scan chose a CapacityPeer: it stays reserved
		// for that peer's Resolve.
		if _, reserved := direction.FirstReady(direction.ReadyMask(func(d direction.Direction) bool {
			return f.writeReady(neighborID, d)
		})); reserved {
			return false
		}
	}
	return f.readerAccepts(neighborID, writer.Dir, cd.Opposite())
}

// readerAccepts reports whether a reader whose declared direction is
// readerDir will accept a value arriving from back (the direction
// pointing at the writer, from the reader's perspective).
func (f *Fabric) readerAccepts(readerID int, readerDir, back direction.Direction) bool {
	switch readerDir {
	case back:
		return true
	case direction.Any:
		return true
	case direction.Last:
		last, ok := f.lastUsed[readerID]
		return ok && last == back
	default:
		return false
	}
}

// candidateDirs expands a pending direction into the concrete
// directions to try, in fixed priority order for ANY, or the single
// remembered direction for LAST.
func (f *Fabric) candidateDirs(id int, dir direction.Direction) []direction.Direction {
	switch dir {
	case direction.Any:
		return direction.Priority[:]
	case direction.Last:
		if last, ok := f.lastUsed[id]; ok {
			return []direction.Direction{last}
		}
		return nil
	default:
		return []direction.Direction{dir}
	}
}

// ReadResult reports the value delivered to id's pending read this
// tick, if its intent was satisfied.
func (f *Fabric) ReadResult(id int) (value.Value, bool) {
	if !f.readOK[id] {
		return value.Zero, false
	}
	return f.readValue[id], true
}

// WriteAccepted reports whether id's pending write was consumed by a
// matching reader this tick.
func (f *Fabric) WriteAccepted(id int) bool {
	return f.writeOK[id]
}
