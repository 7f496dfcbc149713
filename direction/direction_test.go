package direction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpposite(t *testing.T) {
	assert.Equal(t, Down, Up.Opposite())
	assert.Equal(t, Up, Down.Opposite())
	assert.Equal(t, Right, Left.Opposite())
	assert.Equal(t, Left, Right.Opposite())
}

func TestOppositeOfPseudoPanics(t *testing.T) {
	assert.Panics(t, func() { Any.Opposite() })
	assert.Panics(t, func() { Last.Opposite() })
}

func TestPriorityOrder(t *testing.T) {
	assert.Equal(t, [4]Direction{Left, Right, Up, Down}, Priority)
}

func TestPriorityIndex(t *testing.T) {
	i, ok := PriorityIndex(Up)
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = PriorityIndex(Any)
	assert.False(t, ok)
}

func TestReadyMaskAndFirstReady(t *testing.T) {
	ready := map[Direction]bool{Up: true, Right: true}
	m := ReadyMask(func(d Direction) bool { return ready[d] })

	d, ok := FirstReady(m)
	assert.True(t, ok)
	assert.Equal(t, Right, d, "RIGHT outranks UP")
}

func TestFirstReadyNoneSet(t *testing.T) {
	_, ok := FirstReady(ReadyMask(func(Direction) bool { return false }))
	assert.False(t, ok)
}

func TestIsConcrete(t *testing.T) {
	assert.True(t, Up.IsConcrete())
	assert.False(t, Any.IsConcrete())
	assert.False(t, Last.IsConcrete())
}
