package tir

import (
	"fmt"
	"math/big"
)

// ConstantExpr represents an arbitrary precision integer tagged with the
// signedness and bit width it was declared with. It is both the IR's integer
// literal and the value produced by evaluation. The Value must not be
// modified once the expression has been constructed.
type ConstantExpr struct {
	Value  *big.Int
	Width  uint
	Signed bool
}

// NewConstantExpr returns a new instance of ConstantExpr.
func NewConstantExpr(value int64, width uint, signed bool) *ConstantExpr {
	assert(IsValidWidth(width), "constant: non-standard width: %d", width)
	return &ConstantExpr{Value: big.NewInt(value), Width: width, Signed: signed}
}

// NewBigConstantExpr returns a new instance of ConstantExpr holding a copy of value.
func NewBigConstantExpr(value *big.Int, width uint, signed bool) *ConstantExpr {
	assert(IsValidWidth(width), "constant: non-standard width: %d", width)
	return &ConstantExpr{Value: new(big.Int).Set(value), Width: width, Signed: signed}
}

// NewInt8 returns a signed 8-bit constant expression.
func NewInt8(v int64) *ConstantExpr { return NewConstantExpr(v, Width8, true) }

// NewInt16 returns a signed 16-bit constant expression.
func NewInt16(v int64) *ConstantExpr { return NewConstantExpr(v, Width16, true) }

// NewInt32 returns a signed 32-bit constant expression.
func NewInt32(v int64) *ConstantExpr { return NewConstantExpr(v, Width32, true) }

// NewInt64 returns a signed 64-bit constant expression.
func NewInt64(v int64) *ConstantExpr { return NewConstantExpr(v, Width64, true) }

// NewUint8 returns an unsigned 8-bit constant expression.
func NewUint8(v uint64) *ConstantExpr { return newUintExpr(v, Width8) }

// NewUint16 returns an unsigned 16-bit constant expression.
func NewUint16(v uint64) *ConstantExpr { return newUintExpr(v, Width16) }

// NewUint32 returns an unsigned 32-bit constant expression.
func NewUint32(v uint64) *ConstantExpr { return newUintExpr(v, Width32) }

// NewUint64 returns an unsigned 64-bit constant expression.
func NewUint64(v uint64) *ConstantExpr { return newUintExpr(v, Width64) }

func newUintExpr(v uint64, width uint) *ConstantExpr {
	return &ConstantExpr{Value: new(big.Int).SetUint64(v), Width: width}
}

// String returns the string representation of the expression.
func (e *ConstantExpr) String() string {
	return fmt.Sprintf("(%s %s)", e.Type(), e.Value)
}

// Type returns the integer type of the constant.
func (e *ConstantExpr) Type() Type {
	typ, err := IntType(e.Width, e.Signed)
	assert(err == nil, "constant: %s", err)
	return typ
}

// IsZero returns true if the value is zero.
func (e *ConstantExpr) IsZero() bool { return e.Value.Sign() == 0 }

// Bool returns the truthiness of the value: any nonzero value is true.
func (e *ConstantExpr) Bool() bool { return !e.IsZero() }

// Int64 returns the value as an int64 and whether it fits.
func (e *ConstantExpr) Int64() (int64, bool) {
	if !e.Value.IsInt64() {
		return 0, false
	}
	return e.Value.Int64(), true
}

// Bits returns the value reduced modulo 2^64, the register image a native
// caller would observe.
func (e *ConstantExpr) Bits() uint64 {
	return reduce(e.Value, Width64).Uint64()
}

// Wrap returns the value reduced to its declared width: modulo 2^width for
// unsigned constants and into the two's complement range for signed ones.
func (e *ConstantExpr) Wrap() *ConstantExpr {
	v := reduce(e.Value, e.Width)
	if e.Signed && v.Bit(int(e.Width)-1) == 1 {
		v.Sub(v, modulus(e.Width))
	}
	return &ConstantExpr{Value: v, Width: e.Width, Signed: e.Signed}
}

// InRange returns true if the value is representable in its declared type.
func (e *ConstantExpr) InRange() bool {
	return e.Value.Cmp(e.Wrap().Value) == 0
}

// sameType returns true if both constants have equal signedness and width.
func (e *ConstantExpr) sameType(other *ConstantExpr) bool {
	return e.Signed == other.Signed && e.Width == other.Width
}

// modulus returns 2^width.
func modulus(width uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), width)
}

// reduce returns x modulo 2^width as a non-negative integer.
func reduce(x *big.Int, width uint) *big.Int {
	return new(big.Int).Mod(x, modulus(width))
}
