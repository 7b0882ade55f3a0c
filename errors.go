package tir

import (
	"errors"
	"fmt"
)

var (
	ErrMismatch          = errors.New("tir: operand signedness/width mismatch")
	ErrUnboundVariable   = errors.New("tir: unbound variable")
	ErrDomain            = errors.New("tir: shift amount out of domain")
	ErrShiftTooLarge     = errors.New("tir: shift amount too large")
	ErrDivideByZero      = errors.New("tir: division by zero")
	ErrUnsupportedType   = errors.New("tir: unsupported type")
	ErrStepLimit         = errors.New("tir: step limit exceeded")
	ErrInvariantViolated = errors.New("tir: loop invariant violated")
	ErrArgumentCount     = errors.New("tir: argument count mismatch")
	ErrFunctionNotFound  = errors.New("tir: function not found")
)

// OpError is returned when a binary operation cannot be applied to its operands.
type OpError struct {
	Op  BinaryOp
	LHS *ConstantExpr
	RHS *ConstantExpr
	Err error
}

// Error returns the error as a string.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s %s: %s", e.Op, e.LHS, e.RHS, e.Err)
}

// Unwrap returns the underlying error kind.
func (e *OpError) Unwrap() error { return e.Err }

// VarError is returned when a variable cannot be resolved or bound.
type VarError struct {
	Name string
	Err  error
}

// Error returns the error as a string.
func (e *VarError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Name)
}

// Unwrap returns the underlying error kind.
func (e *VarError) Unwrap() error { return e.Err }
