// Package scheduler drives a grid of nodes forward in lockstep ticks,
// implementing the three-phase model of spec.md §4.3/§4.6: intent,
// resolve, retire, repeated until the program halts or the grid goes
// quiescent.
package scheduler

import (
	"context"

	"tis100/node"
	"tis100/port"
)

// Reason names how a Run call ended.
type Reason int

const (
	// ReasonQuiescent: two consecutive ticks produced no progress.
	ReasonQuiescent Reason = iota
	// ReasonHalted: a Compute node executed HCF.
	ReasonHalted
	// ReasonFault: a Compute node hit a runtime fault (LAST read or
	// written before any ANY resolution set it).
	ReasonFault
	// ReasonShutdown: the caller's context was cancelled.
	ReasonShutdown
	// ReasonTickBudget: MaxTicks was reached without the grid settling.
	ReasonTickBudget
)

func (r Reason) String() string {
	switch r {
	case ReasonQuiescent:
		return "quiescent"
	case ReasonHalted:
		return "halted"
	case ReasonFault:
		return "fault"
	case ReasonShutdown:
		return "shutdown"
	case ReasonTickBudget:
		return "tick budget exceeded"
	default:
		return "?"
	}
}

// Result summarises how a run ended.
type Result struct {
	Ticks  int
	Reason Reason
}

// ExitCode maps a Result onto the process exit status described by
// spec.md §6: 0 on quiescence or a successful HCF, non-zero otherwise.
func (res Result) ExitCode() int {
	switch res.Reason {
	case ReasonQuiescent, ReasonHalted:
		return 0
	default:
		return 1
	}
}

// faulter is implemented by node.Compute; checked via a type
// assertion in the retire loop so Scheduler doesn't need to import
// the concrete type for every node kind.
type faulter interface {
	Faulted() bool
}

// Scheduler drives nodes against a shared Fabric.
type Scheduler struct {
	nodes []node.Node
	fab   *port.Fabric

	// MaxTicks bounds a run; zero means unbounded (governed only by
	// quiescence, a halt, or context cancellation).
	MaxTicks int
}

// New builds a Scheduler over nodes sharing fab.
func New(nodes []node.Node, fab *port.Fabric) *Scheduler {
	return &Scheduler{nodes: nodes, fab: fab}
}

// Run drives ticks until termination. See spec.md §4.6 for the
// termination conditions and §5 for the cancellation contract: on
// context cancellation no further tick begins, and the last completed
// tick's state stands as final.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	noProgressStreak := 0
	for tick := 0; ; tick++ {
		if err := ctx.Err(); err != nil {
			return Result{Ticks: tick, Reason: ReasonShutdown}, nil
		}
		if s.MaxTicks > 0 && tick >= s.MaxTicks {
			return Result{Ticks: tick, Reason: ReasonTickBudget}, nil
		}

		progressed, halted, faulted := s.Step()

		if halted {
			reason := ReasonHalted
			if faulted {
				reason = ReasonFault
			}
			return Result{Ticks: tick + 1, Reason: reason}, nil
		}
		if !progressed {
			noProgressStreak++
			if noProgressStreak >= 2 {
				return Result{Ticks: tick + 1, Reason: ReasonQuiescent}, nil
			}
			continue
		}
		noProgressStreak = 0
	}
}

// Step runs a single intent/resolve/retire pass over every node and
// reports what happened, without deciding termination itself. Run
// calls this in a loop; the debugger calls it directly to single-step.
func (s *Scheduler) Step() (progressed, halted, faulted bool) {
	s.fab.Reset()
	for _, n := range s.nodes {
		n.OfferIntent(s.fab)
	}
	s.fab.Resolve()
	for _, n := range s.nodes {
		n.Resolve(s.fab)
	}
	for _, n := range s.nodes {
		if n.Retire(s.fab) {
			progressed = true
		}
		if n.Halted() {
			halted = true
			if f, ok := n.(faulter); ok && f.Faulted() {
				faulted = true
			}
		}
	}
	return progressed, halted, faulted
}
