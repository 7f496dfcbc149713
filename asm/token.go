package asm

import (
	"strings"
)

// rawLine is one decoded instruction line prior to opcode/operand
// validation: a (label, op, args, comment) tuple plus its source line
// number, for error reporting.
type rawLine struct {
	line    int
	label   string // lower-cased, empty if none
	op      string // upper-cased, empty if the line was label-only
	args    []string
	comment string
}

// section is the instruction-line stream assigned to one "@N" block.
type section struct {
	node  int
	lines []rawLine
}

// splitSections walks the program text and groups instruction lines by
// the @N section they fall under. Lines outside any @ section are
// dropped, per spec: the text-level tokeniser/front-end decides what
// is fed to the core, and here the core's own parser mirrors that by
// simply ignoring orphan lines rather than erroring on them.
func splitSections(source string) ([]section, error) {
	var sections []section
	cur := -1

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		line := stripComment(raw)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed[0] == '@' {
			n, err := parseSectionHeader(trimmed)
			if err != nil {
				return nil, &DecodeError{Node: -1, Line: lineNo, Msg: err.Error()}
			}
			sections = append(sections, section{node: n})
			cur = len(sections) - 1
			continue
		}
		if cur < 0 {
			continue // instruction line outside any @ section: dropped
		}
		rl, err := parseInstructionLine(trimmed, lineNo)
		if err != nil {
			return nil, &DecodeError{Node: sections[cur].node, Line: lineNo, Msg: err.Error()}
		}
		sections[cur].lines = append(sections[cur].lines, rl)
	}
	return sections, nil
}

// stripComment removes a trailing '#'-started comment, if any.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func parseSectionHeader(trimmed string) (int, error) {
	body := strings.TrimSpace(trimmed[1:])
	if body == "" {
		return 0, errBadSectionHeader
	}
	n := 0
	for _, r := range body {
		if r < '0' || r > '9' {
			return 0, errBadSectionHeader
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// parseInstructionLine splits "[label:] [op [arg[, arg]...]]" into its
// parts. Operand separators are whitespace and optional commas.
func parseInstructionLine(trimmed string, lineNo int) (rawLine, error) {
	rl := rawLine{line: lineNo}

	rest := trimmed
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		label := strings.TrimSpace(rest[:i])
		if !isValidLabel(label) {
			return rawLine{}, errInvalidLabel(label)
		}
		rl.label = strings.ToLower(label)
		rest = rest[i+1:]
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return rl, nil // label-only line; attaches to the next emitted instruction
	}

	fields := splitArgs(rest)
	rl.op = strings.ToUpper(fields[0])
	rl.args = fields[1:]
	return rl, nil
}

// splitArgs splits "OP arg1, arg2" into ["OP", "arg1", "arg2"] using
// whitespace and commas as separators.
func splitArgs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return fields
}

func isValidLabel(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
