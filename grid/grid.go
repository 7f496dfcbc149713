// Package grid builds the fixed rectangular arrangement of nodes
// described by spec.md §3/§6: a top Input row, a bottom Output row,
// and rows×cols of interior Compute/Stack/Damaged nodes in between,
// wired together through a port.Fabric.
package grid

import (
	"fmt"

	"tis100/asm"
	"tis100/direction"
	"tis100/node"
	"tis100/port"
	"tis100/value"
)

// ConfigError reports a grid description that doesn't parse: a
// dimension mismatch or an unknown layout character.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "grid: " + e.Msg }

// Grid is the constructed node arrangement plus the fabric wiring
// every node together.
type Grid struct {
	Rows, Cols int // interior body dimensions; the full grid has Rows+2 rows

	Fabric *port.Fabric
	Nodes  []node.Node // row-major over the full (Rows+2) x Cols grid

	// ComputeOrder maps a compute-node index (as named by asm.Parse's
	// @N sections) to its node id in Nodes/Fabric.
	ComputeOrder []int
}

// Build constructs a Grid from a body layout (length rows*cols,
// characters 'c' compute / 'm' stack memory / 'd' damaged), an input
// layout and output layout (each length cols, characters '-' stdin-
// fed / stdout-drained, or 'x' null), the decoded per-compute-node
// programs (keyed by the @N index described in spec.md §6), and the
// input values to feed each '-' input column in left-to-right order.
func Build(rows, cols int, body, inputLayout, outputLayout string, programs map[int]*asm.Program, inputValues [][]value.Value) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("rows and cols must be positive, got %d x %d", rows, cols)}
	}
	if len(body) != rows*cols {
		return nil, &ConfigError{Msg: fmt.Sprintf("body layout length %d does not match %d x %d", len(body), rows, cols)}
	}
	if len(inputLayout) != cols {
		return nil, &ConfigError{Msg: fmt.Sprintf("input layout length %d does not match cols %d", len(inputLayout), cols)}
	}
	if len(outputLayout) != cols {
		return nil, &ConfigError{Msg: fmt.Sprintf("output layout length %d does not match cols %d", len(outputLayout), cols)}
	}

	totalRows := rows + 2
	fab := port.NewFabric()
	nodes := make([]node.Node, totalRows*cols)

	id := func(r, c int) int { return r*cols + c }

	computeOrder := []int{}
	nextInputCol := 0

	for c := 0; c < cols; c++ {
		nid := id(0, c)
		switch inputLayout[c] {
		case 'x':
			nodes[nid] = node.NewNull(nid)
		case '-':
			var values []value.Value
			if nextInputCol < len(inputValues) {
				values = inputValues[nextInputCol]
			}
			nextInputCol++
			nodes[nid] = node.NewInput(nid, values)
		default:
			return nil, &ConfigError{Msg: fmt.Sprintf("unknown input layout character %q at column %d", inputLayout[c], c)}
		}
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			nid := id(r+1, c)
			switch body[r*cols+c] {
			case 'c':
				idx := len(computeOrder)
				computeOrder = append(computeOrder, nid)
				nodes[nid] = node.NewCompute(nid, programs[idx])
			case 'm':
				nodes[nid] = node.NewStack(nid, fab)
			case 'd':
				nodes[nid] = node.NewDamaged(nid)
			default:
				return nil, &ConfigError{Msg: fmt.Sprintf("unknown body layout character %q at row %d, col %d", body[r*cols+c], r, c)}
			}
		}
	}

	for c := 0; c < cols; c++ {
		nid := id(totalRows-1, c)
		switch outputLayout[c] {
		case 'x':
			nodes[nid] = node.NewNull(nid)
		case '-':
			nodes[nid] = node.NewOutput(nid)
		default:
			return nil, &ConfigError{Msg: fmt.Sprintf("unknown output layout character %q at column %d", outputLayout[c], c)}
		}
	}

	for r := 0; r < totalRows; r++ {
		for c := 0; c < cols; c++ {
			a := id(r, c)
			if r+1 < totalRows {
				b := id(r+1, c)
				if err := fab.Connect(a, direction.Down, b); err != nil {
					return nil, err
				}
			}
			if c+1 < cols {
				b := id(r, c+1)
				if err := fab.Connect(a, direction.Right, b); err != nil {
					return nil, err
				}
			}
		}
	}

	return &Grid{
		Rows: rows, Cols: cols,
		Fabric:       fab,
		Nodes:        nodes,
		ComputeOrder: computeOrder,
	}, nil
}

// Outputs returns every Output node in the grid, in row-major order.
func (g *Grid) Outputs() []*node.Output {
	var out []*node.Output
	for _, n := range g.Nodes {
		if o, ok := n.(*node.Output); ok {
			out = append(out, o)
		}
	}
	return out
}
