package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClamps(t *testing.T) {
	assert.Equal(t, Value(999), New(999))
	assert.Equal(t, Value(999), New(1000))
	assert.Equal(t, Value(999), New(1_000_000))
	assert.Equal(t, Value(-999), New(-999))
	assert.Equal(t, Value(-999), New(-1000))
	assert.Equal(t, Value(0), New(0))
}

func TestAddSaturates(t *testing.T) {
	assert.Equal(t, Value(999), New(999).Add(New(999)))
	assert.Equal(t, Value(-999), New(-999).Add(New(-999)))
	assert.Equal(t, Value(42), New(40).Add(New(2)))
}

func TestSubSaturates(t *testing.T) {
	assert.Equal(t, Value(-999), New(-999).Sub(New(999)))
	assert.Equal(t, Value(999), New(999).Sub(New(-999)))
	assert.Equal(t, Value(3), New(5).Sub(New(2)))
}

func TestNeg(t *testing.T) {
	assert.Equal(t, Value(-5), New(5).Neg())
	assert.Equal(t, Value(5), New(-5).Neg())
	assert.Equal(t, Value(0), New(0).Neg())
}
