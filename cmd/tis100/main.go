// Command tis100 is the front-end the core engine is deliberately
// agnostic to (spec.md §1): it parses CLI flags for grid dimensions
// and layout, tokenises a program file through package asm, wires
// stdin/stdout to the grid's Input/Output nodes, and drives the
// scheduler to completion.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"gopkg.in/urfave/cli.v2"

	"tis100/asm"
	"tis100/debug"
	"tis100/grid"
	"tis100/node"
	"tis100/scheduler"
	"tis100/value"
)

func main() {
	app := &cli.App{
		Name:    "tis100",
		Usage:   "run a TIS-100 assembly program against a node grid",
		Version: "v0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "program",
				Aliases:  []string{"p"},
				Usage:    "path to the program source file",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "rows",
				Usage: "interior body rows",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "cols",
				Usage: "interior body columns",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "body",
				Usage: "rows*cols layout: c=compute, m=stack memory, d=damaged",
				Value: "c",
			},
			&cli.StringFlag{
				Name:  "in",
				Usage: "cols-length input edge layout: -=stdin, x=null",
				Value: "-",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "cols-length output edge layout: -=stdout, x=null",
				Value: "-",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "stdin/stdout Value encoding: decimal or byte",
				Value: "decimal",
			},
			&cli.IntFlag{
				Name:  "max-ticks",
				Usage: "abort with a tick-budget error after this many ticks (0 = unbounded)",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "launch the interactive single-step debugger instead of free-running",
			},
		},
		Action: run,
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	app.Run(os.Args)
}

func run(c *cli.Context) error {
	defer glog.Flush()

	byteFormat, err := parseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	src, err := os.ReadFile(c.String("program"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	programs, err := asm.Parse(string(src))
	if err != nil {
		glog.Errorf("decode error: %v", err)
		return cli.Exit(err.Error(), 1)
	}

	inLayout := c.String("in")
	inputValues, err := readInputColumns(os.Stdin, inLayout, byteFormat)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	g, err := grid.Build(c.Int("rows"), c.Int("cols"), c.String("body"), inLayout, c.String("out"), programs, inputValues)
	if err != nil {
		glog.Errorf("configuration error: %v", err)
		return cli.Exit(err.Error(), 1)
	}

	sched := scheduler.New(g.Nodes, g.Fabric)
	sched.MaxTicks = c.Int("max-ticks")

	if c.Bool("debug") {
		if err := debug.Run(g, sched); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		return nil
	}

	res, err := sched.Run(context.Background())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	glog.Infof("run finished after %d ticks: %s", res.Ticks, res.Reason)

	writeOutputs(os.Stdout, g.Outputs(), byteFormat)

	if code := res.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

func parseFormat(s string) (byteMode bool, err error) {
	switch strings.ToLower(s) {
	case "decimal", "":
		return false, nil
	case "byte":
		return true, nil
	default:
		return false, fmt.Errorf("unknown --format %q, want decimal or byte", s)
	}
}

// readInputColumns reads r once, in full, decoding it into Values per
// --format, and hands the resulting stream to the first '-' column of
// layout. Any further '-' columns receive no data and behave exactly
// like spec.md §4.5's exhausted-input case from tick zero: this
// front-end choice is recorded in DESIGN.md, since spec.md leaves
// multi-column stdin fan-out unspecified.
func readInputColumns(r io.Reader, layout string, byteMode bool) ([][]value.Value, error) {
	firstStdinCol := strings.IndexByte(layout, '-')
	if firstStdinCol < 0 {
		return nil, nil
	}

	values, err := readValues(r, byteMode)
	if err != nil {
		return nil, err
	}

	// grid.Build feeds inputValues[k] to the k-th '-' column.
	return [][]value.Value{values}, nil
}

func readValues(r io.Reader, byteMode bool) ([]value.Value, error) {
	if byteMode {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		vs := make([]value.Value, len(raw))
		for i, b := range raw {
			vs[i] = value.New(int(b))
		}
		return vs, nil
	}

	var vs []value.Value
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		n, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("invalid decimal input %q: %w", scanner.Text(), err)
		}
		vs = append(vs, value.New(n))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vs, nil
}

func writeOutputs(w io.Writer, outputs []*node.Output, byteMode bool) {
	for _, o := range outputs {
		for _, v := range o.Stream() {
			if byteMode {
				fmt.Fprintf(w, "%c", byte(v.Int()))
			} else {
				fmt.Fprintln(w, v.Int())
			}
		}
	}
}
