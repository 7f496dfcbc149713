package asm

import "fmt"

// DecodeError reports a program text problem found before any tick
// runs: unknown opcode, wrong arity, bad label reference, a disallowed
// operand, or a malformed @N section header.
type DecodeError struct {
	Node int // compute-node index the error belongs to, -1 if not yet known
	Line int
	Msg  string
}

func (e *DecodeError) Error() string {
	if e.Node < 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("node %d, line %d: %s", e.Node, e.Line, e.Msg)
}

var errBadSectionHeader = fmt.Errorf("malformed @N section header")

func errInvalidLabel(s string) error {
	return fmt.Errorf("invalid label %q", s)
}
