package tir

import (
	"fmt"
	"math/big"
	"sort"
)

// Type represents a primitive IR type. Only fixed-width integers and the
// two IEEE floating-point widths are defined.
type Type int

// Primitive types.
const (
	TypeInvalid = Type(iota)
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
)

var typeNames = [...]string{
	I8:  "i8",
	I16: "i16",
	I32: "i32",
	I64: "i64",
	U8:  "u8",
	U16: "u16",
	U32: "u32",
	U64: "u64",
	F32: "f32",
	F64: "f64",
}

// ParseType returns the type for a name such as "i32" or "f64".
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name != "" && name == s {
			return Type(i), nil
		}
	}
	return TypeInvalid, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// IntType returns the integer type with the given width and signedness.
func IntType(width uint, signed bool) (Type, error) {
	switch width {
	case Width8:
		return pick(signed, I8, U8), nil
	case Width16:
		return pick(signed, I16, U16), nil
	case Width32:
		return pick(signed, I32, U32), nil
	case Width64:
		return pick(signed, I64, U64), nil
	default:
		return TypeInvalid, fmt.Errorf("%w: integer width %d", ErrUnsupportedType, width)
	}
}

// FloatType returns the floating-point type with the given width.
func FloatType(width uint) (Type, error) {
	switch width {
	case Width32:
		return F32, nil
	case Width64:
		return F64, nil
	default:
		return TypeInvalid, fmt.Errorf("%w: float width %d", ErrUnsupportedType, width)
	}
}

func pick(signed bool, s, u Type) Type {
	if signed {
		return s
	}
	return u
}

// String returns the name of the type.
func (t Type) String() string {
	if t > TypeInvalid && t < Type(len(typeNames)) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type<%d>", t)
}

// IsValid returns true if t is a defined type.
func (t Type) IsValid() bool { return t > TypeInvalid && t <= F64 }

// IsFloat returns true for f32 and f64.
func (t Type) IsFloat() bool { return t == F32 || t == F64 }

// IsInteger returns true for the signed and unsigned integer types.
func (t Type) IsInteger() bool { return t >= I8 && t <= U64 }

// Signed returns true for signed integers and floats.
func (t Type) Signed() bool {
	return (t >= I8 && t <= I64) || t.IsFloat()
}

// Width returns the bit width of the type.
func (t Type) Width() uint {
	switch t {
	case I8, U8:
		return Width8
	case I16, U16:
		return Width16
	case I32, U32, F32:
		return Width32
	case I64, U64, F64:
		return Width64
	default:
		return 0
	}
}

// Const returns a literal of type t. Panic if t is not an integer type.
func (t Type) Const(v int64) *ConstantExpr {
	assert(t.IsInteger(), "const: non-integer type: %s", t)
	return NewConstantExpr(v, t.Width(), t.Signed())
}

// BigConst returns a literal of type t holding v. Panic if t is not an integer type.
func (t Type) BigConst(v *big.Int) *ConstantExpr {
	assert(t.IsInteger(), "const: non-integer type: %s", t)
	return NewBigConstantExpr(v, t.Width(), t.Signed())
}

// Decls maps variable names to their declared types.
type Decls map[string]Type

// Names returns the declared names in sorted order.
func (d Decls) Names() []string {
	a := make([]string, 0, len(d))
	for name := range d {
		a = append(a, name)
	}
	sort.Strings(a)
	return a
}
