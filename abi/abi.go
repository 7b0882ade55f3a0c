// Package abi describes how IR functions cross a native calling boundary:
// the mapping of IR types onto C primitives, per-function signatures, raw
// register values, and the Linker/Library interfaces a native backend
// implements.
package abi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/benbjohnson/tir"
)

// ErrNotLinked is returned when calling into a library that is not linked.
var ErrNotLinked = errors.New("abi: library not linked")

var ctypes = [...]string{
	tir.I8:  "int8_t",
	tir.I16: "int16_t",
	tir.I32: "int32_t",
	tir.I64: "int64_t",
	tir.U8:  "uint8_t",
	tir.U16: "uint16_t",
	tir.U32: "uint32_t",
	tir.U64: "uint64_t",
	tir.F32: "float",
	tir.F64: "double",
}

// CType returns the C primitive type name for t.
func CType(t tir.Type) (string, error) {
	if !t.IsValid() {
		return "", fmt.Errorf("abi: %w: %s", tir.ErrUnsupportedType, t)
	}
	return ctypes[t], nil
}

// Signature is the native calling signature of a function.
type Signature struct {
	Name   string
	Params []tir.Type
	Result tir.Type
}

// SignatureOf returns the signature of fn. Returns an error if any parameter
// or the result has a type outside the native vocabulary.
func SignatureOf(fn *tir.Function) (Signature, error) {
	sig := Signature{Name: fn.Name, Result: fn.Result.Type}
	if !sig.Result.IsValid() {
		return Signature{}, fmt.Errorf("abi: %s: result: %w: %s", fn.Name, tir.ErrUnsupportedType, sig.Result)
	}

	for _, p := range fn.Params {
		if !p.Type.IsValid() {
			return Signature{}, fmt.Errorf("abi: %s: param %s: %w: %s", fn.Name, p.Name, tir.ErrUnsupportedType, p.Type)
		}
		sig.Params = append(sig.Params, p.Type)
	}
	return sig, nil
}

// String returns the signature as a C prototype, e.g. "int64_t max(int64_t, int64_t)".
func (sig Signature) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s(", ctypes[sig.Result], sig.Name)
	for i, typ := range sig.Params {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(ctypes[typ])
	}
	if len(sig.Params) == 0 {
		buf.WriteString("void")
	}
	buf.WriteByte(')')
	return buf.String()
}

// Value is a raw argument or result as passed through a native register.
// Integers narrower than 64 bits occupy the low bits; floats hold their
// IEEE 754 encoding.
type Value struct {
	Type tir.Type
	Bits uint64
}

// FromConstant returns the native value of c, wrapped to its width.
func FromConstant(c *tir.ConstantExpr) Value {
	return Value{Type: c.Type(), Bits: mask(c.Wrap().Bits(), c.Width)}
}

// FromFloat64 returns a float value of type t.
func FromFloat64(t tir.Type, f float64) (Value, error) {
	switch t {
	case tir.F32:
		return Value{Type: t, Bits: uint64(math.Float32bits(float32(f)))}, nil
	case tir.F64:
		return Value{Type: t, Bits: math.Float64bits(f)}, nil
	default:
		return Value{}, fmt.Errorf("abi: %w: %s is not a float type", tir.ErrUnsupportedType, t)
	}
}

// Constant returns v as an integer constant. Signed values are sign-extended
// from their width.
func (v Value) Constant() (*tir.ConstantExpr, error) {
	if !v.Type.IsInteger() {
		return nil, fmt.Errorf("abi: %w: %s is not an integer type", tir.ErrUnsupportedType, v.Type)
	}

	width := v.Type.Width()
	bits := mask(v.Bits, width)
	if !v.Type.Signed() {
		return v.Type.BigConst(new(big.Int).SetUint64(bits)), nil
	}

	shift := 64 - width
	return v.Type.Const(int64(bits<<shift) >> shift), nil
}

// Float64 returns v as a float64.
func (v Value) Float64() (float64, error) {
	switch v.Type {
	case tir.F32:
		return float64(math.Float32frombits(uint32(v.Bits))), nil
	case tir.F64:
		return math.Float64frombits(v.Bits), nil
	default:
		return 0, fmt.Errorf("abi: %w: %s is not a float type", tir.ErrUnsupportedType, v.Type)
	}
}

// String returns the value in the form of its type's literal.
func (v Value) String() string {
	if f, err := v.Float64(); err == nil {
		return fmt.Sprintf("(%s %g)", v.Type, f)
	} else if c, err := v.Constant(); err == nil {
		return c.String()
	}
	return fmt.Sprintf("(%s %#x)", v.Type, v.Bits)
}

// mask returns the low width bits of x.
func mask(x uint64, width uint) uint64 {
	if width >= 64 {
		return x
	}
	return x & (1<<width - 1)
}

// Linker compiles an IR program into a loadable library.
type Linker interface {
	Link(ctx context.Context, prog *tir.Program) (Library, error)
}

// Library is a linked program whose functions can be invoked by name.
type Library interface {
	// Signature returns the calling signature of the named function.
	Signature(name string) (Signature, error)

	// Call invokes the named function with positional arguments.
	Call(ctx context.Context, name string, args ...Value) (Value, error)

	Close() error
}
