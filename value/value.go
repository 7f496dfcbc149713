// Package value implements the TIS-100 Value type: a signed integer
// clamped to a fixed closed range. All arithmetic saturates instead of
// overflowing.
package value

// Min and Max bound every Value. Construction and arithmetic both
// saturate to this range rather than wrapping.
const (
	Min = -999
	Max = 999
)

// A Value is always in [Min, Max].
type Value int

// New clamps x into range.
func New(x int) Value {
	switch {
	case x < Min:
		return Min
	case x > Max:
		return Max
	default:
		return Value(x)
	}
}

// Int returns the plain integer value.
func (v Value) Int() int { return int(v) }

// Add returns sat(v + other).
func (v Value) Add(other Value) Value { return New(int(v) + int(other)) }

// Sub returns sat(v - other).
func (v Value) Sub(other Value) Value { return New(int(v) - int(other)) }

// Neg returns -v. Already in range since range is symmetric.
func (v Value) Neg() Value { return Value(-int(v)) }

// Zero is NIL's constant read value.
const Zero Value = 0
