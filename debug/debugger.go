// Package debug provides an interactive, single-step TUI over a
// running grid, in place of printf-driven tracing.
package debug

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"tis100/grid"
	"tis100/node"
	"tis100/scheduler"
)

type model struct {
	grid  *grid.Grid
	sched *scheduler.Scheduler

	tick   int
	streak int
	done   bool
	reason scheduler.Reason
	err    error
}

// Init is the first function called. No initial command is needed;
// the grid and scheduler already exist by the time Run is called.
func (m model) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Space or "j" advances
// one tick; "q" quits.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case " ", "j":
			if m.done {
				return m, nil
			}
			progressed, halted, faulted := m.sched.Step()
			m.tick++
			if progressed {
				m.streak = 0
			} else {
				m.streak++
			}
			switch {
			case halted && faulted:
				m.done, m.reason = true, scheduler.ReasonFault
			case halted:
				m.done, m.reason = true, scheduler.ReasonHalted
			case m.streak >= 2:
				m.done, m.reason = true, scheduler.ReasonQuiescent
			}
		}
	}
	return m, nil
}

// renderNode formats a single node's status, switching on its
// concrete type the way a status panel needs per-kind fields.
func renderNode(n node.Node) string {
	switch v := n.(type) {
	case *node.Compute:
		return fmt.Sprintf("[C%-2d %-4s acc=%-4d bak=%-4d ip=%-2d]",
			v.ID(), v.Mode(), v.ACC().Int(), v.BAK().Int(), v.IP())
	case *node.Stack:
		return fmt.Sprintf("[S%-2d len=%d]", v.ID(), v.Len())
	case *node.Input:
		return fmt.Sprintf("[I%-2d left=%d]", v.ID(), v.Remaining())
	case *node.Output:
		return fmt.Sprintf("[O%-2d out=%v]", v.ID(), v.Stream())
	case *node.Damaged:
		return fmt.Sprintf("[D%-2d]", v.ID())
	case *node.Null:
		return fmt.Sprintf("[N%-2d]", v.ID())
	default:
		return fmt.Sprintf("[?%d]", n.ID())
	}
}

// gridView renders every node in row-major order, wrapping at g.Cols.
func (m model) gridView() string {
	cols := m.grid.Cols
	var rows []string
	var row []string
	for i, n := range m.grid.Nodes {
		row = append(row, renderNode(n))
		if (i+1)%cols == 0 {
			rows = append(rows, strings.Join(row, " "))
			row = nil
		}
	}
	return strings.Join(rows, "\n")
}

func (m model) status() string {
	s := fmt.Sprintf("tick %d", m.tick)
	if m.done {
		s += fmt.Sprintf(" — halted: %s", m.reason)
	}
	return s
}

// View renders the program's UI: a string, redrawn after every
// Update.
func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.gridView(),
		"",
		m.status(),
		"",
		spew.Sdump(m.grid.Outputs()),
	)
}

// Run loads g and sched into a TUI and blocks until the user quits.
func Run(g *grid.Grid, sched *scheduler.Scheduler) error {
	p, err := tea.NewProgram(model{grid: g, sched: sched}).Run()
	if err != nil {
		return err
	}
	return p.(model).err
}
