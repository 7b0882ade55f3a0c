package tir

import (
	"fmt"
	"math/big"
)

// BinaryOp represents a binary expression operation.
type BinaryOp int

// BinaryExpr operations.
const (
	arithmetic_op_begin = BinaryOp(iota)
	ADD
	SUB
	MUL
	UDIV
	SDIV
	UREM
	SREM
	SHL
	ASHR
	OR
	AND
	XOR
	arithmetic_op_end

	compare_op_begin
	EQ
	NE
	UGT
	UGE
	ULT
	ULE
	SGT
	SGE
	SLT
	SLE
	compare_op_end
)

var binaryOps = [...]string{
	ADD:  "iadd",
	SUB:  "isub",
	MUL:  "imul",
	UDIV: "iudiv",
	SDIV: "isdiv",
	UREM: "iurem",
	SREM: "isrem",
	SHL:  "ishl",
	ASHR: "iashr",
	OR:   "ior",
	AND:  "iand",
	XOR:  "ixor",
	EQ:   "ieq",
	NE:   "ine",
	UGT:  "iugt",
	UGE:  "iuge",
	ULT:  "iult",
	ULE:  "iule",
	SGT:  "isgt",
	SGE:  "isge",
	SLT:  "islt",
	SLE:  "isle",
}

// ParseBinaryOp returns the operation for an operator tag such as "iadd".
func ParseBinaryOp(tag string) (BinaryOp, bool) {
	for i, s := range binaryOps {
		if s != "" && s == tag {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

// String returns the operator tag of the operation.
func (op BinaryOp) String() string {
	if op >= 0 && op < BinaryOp(len(binaryOps)) && binaryOps[op] != "" {
		return binaryOps[op]
	}
	return fmt.Sprintf("BinaryOp<%d>", op)
}

// IsArithmetic returns true if op is an arithmetic or bitwise operator.
func (op BinaryOp) IsArithmetic() bool {
	return op > arithmetic_op_begin && op < arithmetic_op_end
}

// IsCompare returns true if op is a comparison operator.
func (op BinaryOp) IsCompare() bool {
	return op > compare_op_begin && op < compare_op_end
}

// IsValid returns true if op is a known operation.
func (op BinaryOp) IsValid() bool {
	return op.IsArithmetic() || op.IsCompare()
}

// unsignedCompareWidth is the width both operands of an unsigned comparison
// are reduced to. It is 64 for every operand width; see iult.
const unsignedCompareWidth = Width64

// binaryOpFunc computes an operation over raw operand values of the given
// width. Arithmetic functions return the new raw value; comparisons return
// 0 or 1.
type binaryOpFunc func(x, y *big.Int, width uint) (*big.Int, error)

// binaryOpFuncs is the operator table.
var binaryOpFuncs = [...]binaryOpFunc{
	ADD:  iadd,
	SUB:  isub,
	MUL:  imul,
	UDIV: iudiv,
	SDIV: isdiv,
	UREM: iurem,
	SREM: isrem,
	SHL:  ishl,
	ASHR: iashr,
	OR:   ior,
	AND:  iand,
	XOR:  ixor,
	EQ:   compare(func(c int) bool { return c == 0 }, false),
	NE:   compare(func(c int) bool { return c != 0 }, false),
	UGT:  compare(func(c int) bool { return c > 0 }, true),
	UGE:  compare(func(c int) bool { return c >= 0 }, true),
	ULT:  compare(func(c int) bool { return c < 0 }, true),
	ULE:  compare(func(c int) bool { return c <= 0 }, true),
	SGT:  compare(func(c int) bool { return c > 0 }, false),
	SGE:  compare(func(c int) bool { return c >= 0 }, false),
	SLT:  compare(func(c int) bool { return c < 0 }, false),
	SLE:  compare(func(c int) bool { return c <= 0 }, false),
}

// Apply applies op to lhs and rhs and returns a new constant with the
// operands' signedness and width. Operands must agree in signedness and
// width; a mismatch is never coerced.
func Apply(op BinaryOp, lhs, rhs *ConstantExpr) (*ConstantExpr, error) {
	assert(op.IsValid(), "apply: invalid op: %s", op)

	if !lhs.sameType(rhs) {
		return nil, &OpError{Op: op, LHS: lhs, RHS: rhs, Err: ErrMismatch}
	}

	v, err := binaryOpFuncs[op](lhs.Value, rhs.Value, lhs.Width)
	if err != nil {
		return nil, &OpError{Op: op, LHS: lhs, RHS: rhs, Err: err}
	}
	return &ConstantExpr{Value: v, Width: lhs.Width, Signed: lhs.Signed}, nil
}

func iadd(x, y *big.Int, width uint) (*big.Int, error) {
	return new(big.Int).Add(x, y), nil
}

func isub(x, y *big.Int, width uint) (*big.Int, error) {
	return new(big.Int).Sub(x, y), nil
}

func imul(x, y *big.Int, width uint) (*big.Int, error) {
	return new(big.Int).Mul(x, y), nil
}

func iudiv(x, y *big.Int, width uint) (*big.Int, error) {
	x, y = reduce(x, width), reduce(y, width)
	if y.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	return reduce(new(big.Int).Quo(x, y), width), nil
}

func iurem(x, y *big.Int, width uint) (*big.Int, error) {
	x, y = reduce(x, width), reduce(y, width)
	if y.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	return reduce(new(big.Int).Rem(x, y), width), nil
}

// isdiv truncates toward zero.
func isdiv(x, y *big.Int, width uint) (*big.Int, error) {
	if y.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	return new(big.Int).Quo(x, y), nil
}

// isrem takes the sign of the dividend.
func isrem(x, y *big.Int, width uint) (*big.Int, error) {
	if y.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	return new(big.Int).Rem(x, y), nil
}

// MaxShift is the largest left shift amount Apply accepts. Exact results
// grow with the amount, so larger shifts fail with ErrShiftTooLarge.
const MaxShift = 1 << 20

// ishl shifts left without truncation. A negative amount is a domain error;
// an amount above MaxShift returns ErrShiftTooLarge.
func ishl(x, y *big.Int, width uint) (*big.Int, error) {
	if y.Sign() < 0 {
		return nil, ErrDomain
	} else if !y.IsInt64() || y.Int64() > MaxShift {
		return nil, ErrShiftTooLarge
	}
	return new(big.Int).Lsh(x, uint(y.Int64())), nil
}

// iashr shifts right, filling with the sign of x.
func iashr(x, y *big.Int, width uint) (*big.Int, error) {
	if y.Sign() < 0 {
		return nil, ErrDomain
	} else if !y.IsInt64() {
		if x.Sign() < 0 {
			return big.NewInt(-1), nil
		}
		return big.NewInt(0), nil
	}
	return new(big.Int).Rsh(x, uint(y.Int64())), nil
}

func ior(x, y *big.Int, width uint) (*big.Int, error) {
	return new(big.Int).Or(x, y), nil
}

func iand(x, y *big.Int, width uint) (*big.Int, error) {
	return new(big.Int).And(x, y), nil
}

func ixor(x, y *big.Int, width uint) (*big.Int, error) {
	return new(big.Int).Xor(x, y), nil
}

// compare returns a comparison operator. Unsigned comparisons reduce both
// operands modulo 2^unsignedCompareWidth first, not 2^width.
func compare(fn func(c int) bool, unsigned bool) binaryOpFunc {
	return func(x, y *big.Int, width uint) (*big.Int, error) {
		if unsigned {
			x, y = reduce(x, unsignedCompareWidth), reduce(y, unsignedCompareWidth)
		}
		if fn(x.Cmp(y)) {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	}
}
