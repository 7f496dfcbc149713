package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEcho(t *testing.T) {
	progs, err := Parse("@0\nMOV UP, DOWN\n")
	assert.NoError(t, err)
	p := progs[0]
	assert.Len(t, p.Instructions, 1)
	assert.Equal(t, MOV, p.Instructions[0].Op)
	assert.Equal(t, RegUp, p.Instructions[0].Src.Reg)
	assert.Equal(t, RegDown, p.Instructions[0].Dst.Reg)
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	src := "# a comment\n\n@0\n# another\nNOP # trailing\n\n"
	progs, err := Parse(src)
	assert.NoError(t, err)
	assert.Len(t, progs[0].Instructions, 1)
	assert.Equal(t, NOP, progs[0].Instructions[0].Op)
}

func TestParseLabelAndLoop(t *testing.T) {
	src := "@0\nMOV 3, ACC\nL: MOV ACC, DOWN\nSUB 1\nJGZ L\n"
	progs, err := Parse(src)
	assert.NoError(t, err)
	p := progs[0]
	assert.Len(t, p.Instructions, 4)
	assert.Equal(t, 1, p.Labels["l"])
	assert.Equal(t, JGZ, p.Instructions[3].Op)
	assert.Equal(t, 1, p.Instructions[3].Target)
}

func TestParseLabelAtEndOfProgramAttachesSyntheticNOP(t *testing.T) {
	src := "@0\nMOV UP, DOWN\nL:\n"
	progs, err := Parse(src)
	assert.NoError(t, err)
	p := progs[0]
	assert.Len(t, p.Instructions, 2)
	assert.Equal(t, NOP, p.Instructions[1].Op)
	assert.Equal(t, 1, p.Labels["l"])
}

func TestParseOutsideSectionDropped(t *testing.T) {
	src := "MOV UP, DOWN\n@0\nNOP\n"
	progs, err := Parse(src)
	assert.NoError(t, err)
	assert.Len(t, progs[0].Instructions, 1)
}

func TestParseCaseInsensitiveOpsAndLabels(t *testing.T) {
	src := "@0\nloop: mov up, down\njmp LOOP\n"
	progs, err := Parse(src)
	assert.NoError(t, err)
	p := progs[0]
	assert.Equal(t, JMP, p.Instructions[1].Op)
	assert.Equal(t, 0, p.Instructions[1].Target)
}

func TestParseUnknownOpcode(t *testing.T) {
	_, err := Parse("@0\nFROB ACC\n")
	assert.Error(t, err)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestParseWrongArity(t *testing.T) {
	_, err := Parse("@0\nADD\n")
	assert.Error(t, err)
}

func TestParseUndefinedLabel(t *testing.T) {
	_, err := Parse("@0\nJMP NOWHERE\n")
	assert.Error(t, err)
}

func TestParseBakOperandRejected(t *testing.T) {
	_, err := Parse("@0\nMOV BAK, ACC\n")
	assert.Error(t, err)
}

func TestParseTooManyInstructions(t *testing.T) {
	src := "@0\n"
	for i := 0; i < 16; i++ {
		src += "NOP\n"
	}
	_, err := Parse(src)
	assert.Error(t, err)
}

func TestParseImmediateOperand(t *testing.T) {
	progs, err := Parse("@0\nMOV 999, ACC\nADD 999\n")
	assert.NoError(t, err)
	p := progs[0]
	assert.True(t, p.Instructions[0].Src.Literal)
	assert.Equal(t, 999, p.Instructions[0].Src.Value.Int())
}

func TestParseMovLiteralDestinationRejected(t *testing.T) {
	_, err := Parse("@0\nMOV ACC, 5\n")
	assert.Error(t, err)
}

func TestEmptyProgramIsEmpty(t *testing.T) {
	progs, err := Parse("@0\n")
	assert.NoError(t, err)
	assert.True(t, progs[0].Empty())
}
