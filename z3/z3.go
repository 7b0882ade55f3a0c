package z3

import (
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"
	"unsafe"

	"github.com/benbjohnson/tir"
)

/*
#cgo LDFLAGS: -lz3
#include <z3.h>
#include <stdlib.h>
#include <stdio.h>
*/
import "C"

// Ensure solver implements interface.
var _ tir.Prover = (*Solver)(nil)

// Solver errors.
var (
	ErrSolverTimeout       = errors.New("z3: solver timeout")
	ErrSolverCanceled      = errors.New("z3: solver canceled")
	ErrSolverResourceLimit = errors.New("z3: solver resource limit reached")
	ErrSolverUnknown       = errors.New("z3: solver returned unknown")
)

// Solver proves assertions using an embedded Z3 solver. Variables range
// over the values of their declared type. A guard counts as proven only
// where its expression evaluates without error and without leaving its
// type's range, so a valid result also holds under exact evaluation.
type Solver struct {
	ctx     *Context
	timeout time.Duration
	stats   Stats
}

// NewSolver returns a new instance of Solver.
func NewSolver() *Solver {
	return &Solver{
		ctx: NewContext(),
	}
}

// Close deletes the underlying Z3 context.
func (s *Solver) Close() error {
	return s.ctx.Close()
}

// SetTimeout sets the maximum time spent on a single proof. Zero disables
// the timeout.
func (s *Solver) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Stats returns statistics for the solver.
func (s *Solver) Stats() Stats {
	return s.stats
}

// Prove returns true if a holds for every value of its variables. Each
// variable must be declared in decls. If a does not hold, a store holding
// a counterexample assignment for every variable of a is returned.
func (s *Solver) Prove(decls tir.Decls, a tir.Assertion) (valid bool, counterexample *tir.Store, err error) {
	t := time.Now()
	defer func() {
		s.stats.ProveN++
		s.stats.ProveTime += time.Since(t)
	}()

	tr := &translator{ctx: s.ctx, decls: decls}
	formula, err := tr.toBoolAST(a, true)
	if err != nil {
		return false, nil, err
	}
	negated := C.Z3_mk_not(s.ctx.raw, formula)
	if err := s.ctx.err("Z3_mk_not"); err != nil {
		return false, nil, err
	}

	solver := C.Z3_mk_solver(s.ctx.raw)
	if err := s.ctx.err("Z3_mk_solver"); err != nil {
		return false, nil, err
	}
	C.Z3_solver_inc_ref(s.ctx.raw, solver)
	defer C.Z3_solver_dec_ref(s.ctx.raw, solver)

	if s.timeout > 0 {
		if err := s.setTimeout(solver); err != nil {
			return false, nil, err
		}
	}

	C.Z3_solver_assert(s.ctx.raw, solver, negated)
	if err := s.ctx.err("Z3_solver_assert"); err != nil {
		return false, nil, err
	}

	// The assertion is valid if its negation is unsatisfiable.
	ret := C.Z3_solver_check(s.ctx.raw, solver)
	if err := s.ctx.err("Z3_solver_check"); err != nil {
		return false, nil, err
	} else if ret == C.Z3_L_FALSE {
		return true, nil, nil
	} else if ret == C.Z3_L_UNDEF {
		return false, nil, s.reasonUnknown(solver)
	}

	model := C.Z3_solver_get_model(s.ctx.raw, solver)
	if err := s.ctx.err("Z3_solver_get_model"); err != nil {
		return false, nil, err
	}
	log.Printf("[z3] counterexample model:\n%s", s.ctx.modelToString(model))

	if counterexample, err = tr.eval(model); err != nil {
		return false, nil, err
	}
	return false, counterexample, nil
}

// Formula returns the SMT-LIB text of the negation of a, the formula whose
// unsatisfiability Prove checks.
func (s *Solver) Formula(decls tir.Decls, a tir.Assertion) (string, error) {
	tr := &translator{ctx: s.ctx, decls: decls}
	formula, err := tr.toBoolAST(a, true)
	if err != nil {
		return "", err
	}
	negated := C.Z3_mk_not(s.ctx.raw, formula)
	if err := s.ctx.err("Z3_mk_not"); err != nil {
		return "", err
	}
	return s.ctx.astToString(negated), nil
}

func (s *Solver) setTimeout(solver C.Z3_solver) error {
	params := C.Z3_mk_params(s.ctx.raw)
	if err := s.ctx.err("Z3_mk_params"); err != nil {
		return err
	}
	C.Z3_params_inc_ref(s.ctx.raw, params)
	defer C.Z3_params_dec_ref(s.ctx.raw, params)

	key := C.CString("timeout")
	defer C.free(unsafe.Pointer(key))

	ms := s.timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	C.Z3_params_set_uint(s.ctx.raw, params, C.Z3_mk_string_symbol(s.ctx.raw, key), C.uint(ms))
	if err := s.ctx.err("Z3_params_set_uint"); err != nil {
		return err
	}
	C.Z3_solver_set_params(s.ctx.raw, solver, params)
	return s.ctx.err("Z3_solver_set_params")
}

func (s *Solver) reasonUnknown(solver C.Z3_solver) error {
	reason := C.GoString(C.Z3_solver_get_reason_unknown(s.ctx.raw, solver))
	switch {
	case strings.Contains(reason, "timeout"):
		return ErrSolverTimeout
	case strings.Contains(reason, "canceled"):
		return ErrSolverCanceled
	case strings.Contains(reason, "(resource limits reached)"):
		return ErrSolverResourceLimit
	case strings.Contains(reason, "unknown"):
		return ErrSolverUnknown
	default:
		return fmt.Errorf("z3: %s", reason)
	}
}

// Context represents a Z3 context object that is used for constructing expressions.
type Context struct {
	raw C.Z3_context
}

// NewContext returns a new instance of Context.
func NewContext() *Context {
	config := C.Z3_mk_config()
	defer C.Z3_del_config(config)

	raw := C.Z3_mk_context(config)
	C.Z3_set_error_handler(raw, nil)
	C.Z3_set_ast_print_mode(raw, C.Z3_PRINT_SMTLIB2_COMPLIANT)
	return &Context{raw: raw}
}

// Close deletes the underlying Z3 context.
func (ctx *Context) Close() error {
	C.Z3_del_context(ctx.raw)
	return nil
}

// err returns the error for the last API call. Returns nil if last call was successful.
func (ctx *Context) err(op string) error {
	if code := C.Z3_get_error_code(ctx.raw); code != C.Z3_OK {
		return &Error{Code: int(code), Op: op, Message: C.GoString(C.Z3_get_error_msg(ctx.raw, code))}
	}
	return nil
}

// translator converts tir assertions into Z3 terms. Variables are created
// once per name and reused for the model lookup.
//
// Bit-vector terms agree with the exact evaluator only while every
// operation is defined and its result fits the operand type. Each guard
// is therefore paired with the conjunction of those conditions for its
// expression: a guard in positive position must also be defined, and one
// in negative position holds whenever it is undefined. A valid formula
// then holds under exact evaluation for every in-range assignment.
type translator struct {
	ctx   *Context
	decls tir.Decls
	vars  map[string]C.Z3_ast
	defs  []C.Z3_ast // definedness of the expression being translated
}

// toBoolAST returns a term implying a if positive and implied by a if not.
func (tr *translator) toBoolAST(a tir.Assertion, positive bool) (C.Z3_ast, error) {
	ctx := tr.ctx
	switch a := a.(type) {
	case *tir.BoolAssertion:
		if a.Value {
			return C.Z3_mk_true(ctx.raw), ctx.err("Z3_mk_true")
		}
		return C.Z3_mk_false(ctx.raw), ctx.err("Z3_mk_false")

	case *tir.ExprAssertion:
		return tr.toGuardAST(a.Expr, positive)

	case *tir.NotAssertion:
		x, err := tr.toBoolAST(a.X, !positive)
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_not(ctx.raw, x), ctx.err("Z3_mk_not")

	case *tir.AndAssertion:
		lhs, rhs, err := tr.toBoolASTPair(a.LHS, a.RHS, positive, positive)
		if err != nil {
			return nil, err
		}
		return tr.and(lhs, rhs)

	case *tir.OrAssertion:
		lhs, rhs, err := tr.toBoolASTPair(a.LHS, a.RHS, positive, positive)
		if err != nil {
			return nil, err
		}
		args := [2]C.Z3_ast{lhs, rhs}
		return C.Z3_mk_or(ctx.raw, 2, &args[0]), ctx.err("Z3_mk_or")

	case *tir.ImpliesAssertion:
		lhs, rhs, err := tr.toBoolASTPair(a.LHS, a.RHS, !positive, positive)
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_implies(ctx.raw, lhs, rhs), ctx.err("Z3_mk_implies")

	default:
		return nil, fmt.Errorf("z3: invalid assertion type: %T", a)
	}
}

func (tr *translator) toBoolASTPair(lhs, rhs tir.Assertion, lpos, rpos bool) (C.Z3_ast, C.Z3_ast, error) {
	x, err := tr.toBoolAST(lhs, lpos)
	if err != nil {
		return nil, nil, err
	}
	y, err := tr.toBoolAST(rhs, rpos)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// toGuardAST returns def && expr != 0 if positive and def => expr != 0
// otherwise, where def is the definedness of expr.
func (tr *translator) toGuardAST(expr tir.Expr, positive bool) (C.Z3_ast, error) {
	tr.defs = nil
	v, typ, err := tr.toAST(expr)
	if err != nil {
		return nil, err
	}
	guard, err := tr.nonzero(v, typ)
	if err != nil {
		return nil, err
	} else if len(tr.defs) == 0 {
		return guard, nil
	}

	def, err := tr.and(tr.defs...)
	if err != nil {
		return nil, err
	} else if positive {
		return tr.and(def, guard)
	}
	return C.Z3_mk_implies(tr.ctx.raw, def, guard), tr.ctx.err("Z3_mk_implies")
}

// toAST returns a bit-vector term for expr and its type.
func (tr *translator) toAST(expr tir.Expr) (C.Z3_ast, tir.Type, error) {
	switch expr := expr.(type) {
	case *tir.ConstantExpr:
		return tr.toConstantAST(expr)
	case *tir.VarExpr:
		return tr.toVarAST(expr)
	case *tir.BinaryExpr:
		return tr.toBinaryAST(expr)
	default:
		return nil, tir.TypeInvalid, fmt.Errorf("z3: invalid expression type: %T", expr)
	}
}

// toConstantAST returns the numeral of expr. A literal outside its type's
// range has no bit-vector image and is never defined.
func (tr *translator) toConstantAST(expr *tir.ConstantExpr) (C.Z3_ast, tir.Type, error) {
	typ := expr.Type()
	if !expr.InRange() {
		if err := tr.push(C.Z3_mk_false(tr.ctx.raw), "Z3_mk_false"); err != nil {
			return nil, typ, err
		}
	}

	bits := expr.Bits()
	if expr.Width < tir.Width64 {
		bits &= (1 << expr.Width) - 1
	}
	v, err := tr.ctx.makeUint64(expr.Width, bits)
	return v, typ, err
}

func (tr *translator) toVarAST(expr *tir.VarExpr) (C.Z3_ast, tir.Type, error) {
	typ, ok := tr.decls[expr.Name]
	if !ok {
		return nil, typ, fmt.Errorf("z3: %w", &tir.VarError{Name: expr.Name, Err: tir.ErrUnboundVariable})
	} else if !typ.IsInteger() {
		return nil, typ, fmt.Errorf("z3: %s: %w: %s", expr.Name, tir.ErrUnsupportedType, typ)
	}

	if v, ok := tr.vars[expr.Name]; ok {
		return v, typ, nil
	}

	v, err := tr.ctx.makeConst(expr.Name, typ.Width())
	if err != nil {
		return nil, typ, err
	}
	if tr.vars == nil {
		tr.vars = make(map[string]C.Z3_ast)
	}
	tr.vars[expr.Name] = v
	return v, typ, nil
}

func (tr *translator) toBinaryAST(expr *tir.BinaryExpr) (C.Z3_ast, tir.Type, error) {
	lhs, typ, err := tr.toAST(expr.LHS)
	if err != nil {
		return nil, typ, err
	}
	rhs, rtyp, err := tr.toAST(expr.RHS)
	if err != nil {
		return nil, typ, err
	} else if typ != rtyp {
		return nil, typ, fmt.Errorf("z3: %s: %w: %s and %s", expr, tir.ErrMismatch, typ, rtyp)
	}

	if expr.Op.IsCompare() {
		cond, err := tr.toCompareAST(expr.Op, typ.Signed(), lhs, rhs)
		if err != nil {
			return nil, typ, err
		}
		v, err := tr.boolToBV(cond, typ.Width())
		return v, typ, err
	}

	if err := tr.define(expr.Op, typ, lhs, rhs); err != nil {
		return nil, typ, err
	}
	v, err := tr.toArithAST(expr.Op, typ.Signed(), lhs, rhs)
	if err != nil {
		return nil, typ, err
	}

	// Unsigned quotients of signed operands keep the unsigned value, which
	// only fits the signed type when its sign bit is clear.
	if typ.Signed() && (expr.Op == tir.UDIV || expr.Op == tir.UREM) {
		zero, err := tr.ctx.makeUint64(typ.Width(), 0)
		if err != nil {
			return nil, typ, err
		}
		if err := tr.push(C.Z3_mk_bvsge(tr.ctx.raw, v, zero), "Z3_mk_bvsge"); err != nil {
			return nil, typ, err
		}
	}
	return v, typ, nil
}

// toArithAST returns the bit-vector term for an arithmetic operator. Signed
// division, remainder and right shift of unsigned operands act on
// nonnegative values, so they use the unsigned forms.
func (tr *translator) toArithAST(op tir.BinaryOp, signed bool, lhs, rhs C.Z3_ast) (C.Z3_ast, error) {
	ctx := tr.ctx
	switch op {
	case tir.ADD:
		return C.Z3_mk_bvadd(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvadd")
	case tir.SUB:
		return C.Z3_mk_bvsub(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsub")
	case tir.MUL:
		return C.Z3_mk_bvmul(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvmul")
	case tir.UDIV:
		return C.Z3_mk_bvudiv(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvudiv")
	case tir.UREM:
		return C.Z3_mk_bvurem(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvurem")
	case tir.SDIV:
		if !signed {
			return C.Z3_mk_bvudiv(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvudiv")
		}
		return C.Z3_mk_bvsdiv(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsdiv")
	case tir.SREM:
		if !signed {
			return C.Z3_mk_bvurem(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvurem")
		}
		return C.Z3_mk_bvsrem(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsrem")
	case tir.SHL:
		return C.Z3_mk_bvshl(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvshl")
	case tir.ASHR:
		if !signed {
			return C.Z3_mk_bvlshr(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvlshr")
		}
		return C.Z3_mk_bvashr(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvashr")
	case tir.OR:
		return C.Z3_mk_bvor(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvor")
	case tir.AND:
		return C.Z3_mk_bvand(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvand")
	case tir.XOR:
		return C.Z3_mk_bvxor(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvxor")
	default:
		return nil, fmt.Errorf("z3: unexpected operation: %s", op)
	}
}

// define appends the conditions under which op evaluates without error to
// a result inside typ's range. Bitwise operators on in-range operands are
// always defined.
func (tr *translator) define(op tir.BinaryOp, typ tir.Type, lhs, rhs C.Z3_ast) error {
	raw, signed := tr.ctx.raw, typ.Signed()
	switch op {
	case tir.ADD:
		if err := tr.push(C.Z3_mk_bvadd_no_overflow(raw, lhs, rhs, C.bool(signed)), "Z3_mk_bvadd_no_overflow"); err != nil {
			return err
		} else if signed {
			return tr.push(C.Z3_mk_bvadd_no_underflow(raw, lhs, rhs), "Z3_mk_bvadd_no_underflow")
		}
	case tir.SUB:
		if err := tr.push(C.Z3_mk_bvsub_no_underflow(raw, lhs, rhs, C.bool(signed)), "Z3_mk_bvsub_no_underflow"); err != nil {
			return err
		} else if signed {
			return tr.push(C.Z3_mk_bvsub_no_overflow(raw, lhs, rhs), "Z3_mk_bvsub_no_overflow")
		}
	case tir.MUL:
		if err := tr.push(C.Z3_mk_bvmul_no_overflow(raw, lhs, rhs, C.bool(signed)), "Z3_mk_bvmul_no_overflow"); err != nil {
			return err
		} else if signed {
			return tr.push(C.Z3_mk_bvmul_no_underflow(raw, lhs, rhs), "Z3_mk_bvmul_no_underflow")
		}
	case tir.UDIV, tir.UREM, tir.SREM, tir.SDIV:
		def, err := tr.nonzero(rhs, typ)
		if err != nil {
			return err
		}
		tr.defs = append(tr.defs, def)
		if op == tir.SDIV && signed {
			return tr.push(C.Z3_mk_bvsdiv_no_overflow(raw, lhs, rhs), "Z3_mk_bvsdiv_no_overflow")
		}
	case tir.SHL, tir.ASHR:
		return tr.defineShift(op, typ, lhs, rhs)
	}
	return nil
}

// defineShift requires a nonnegative amount. Left shifts must also stay
// within tir.MaxShift and shift no significant bits out, which holds iff
// shifting the result back restores lhs.
func (tr *translator) defineShift(op tir.BinaryOp, typ tir.Type, lhs, rhs C.Z3_ast) error {
	ctx := tr.ctx
	if typ.Signed() {
		zero, err := ctx.makeUint64(typ.Width(), 0)
		if err != nil {
			return err
		} else if err := tr.push(C.Z3_mk_bvsge(ctx.raw, rhs, zero), "Z3_mk_bvsge"); err != nil {
			return err
		}
	}
	if op != tir.SHL {
		return nil
	}

	// Smaller types cannot hold an amount above the limit.
	if typ.Width() > tir.Width16 {
		limit, err := ctx.makeUint64(typ.Width(), tir.MaxShift)
		if err != nil {
			return err
		} else if err := tr.push(C.Z3_mk_bvule(ctx.raw, rhs, limit), "Z3_mk_bvule"); err != nil {
			return err
		}
	}

	shifted := C.Z3_mk_bvshl(ctx.raw, lhs, rhs)
	if err := ctx.err("Z3_mk_bvshl"); err != nil {
		return err
	}
	var back C.Z3_ast
	if typ.Signed() {
		back = C.Z3_mk_bvashr(ctx.raw, shifted, rhs)
	} else {
		back = C.Z3_mk_bvlshr(ctx.raw, shifted, rhs)
	}
	if err := ctx.err("shift back"); err != nil {
		return err
	}
	return tr.push(C.Z3_mk_eq(ctx.raw, back, lhs), "Z3_mk_eq")
}

// push appends def to the definedness conditions if the call building it
// succeeded.
func (tr *translator) push(def C.Z3_ast, op string) error {
	if err := tr.ctx.err(op); err != nil {
		return err
	}
	tr.defs = append(tr.defs, def)
	return nil
}

// toCompareAST returns a boolean term for a comparison operator. Signed
// comparisons of unsigned operands compare nonnegative values. Unsigned
// comparisons reduce modulo 2^64, which orders in-range operands of every
// width the same way as their bit-vector images.
func (tr *translator) toCompareAST(op tir.BinaryOp, signed bool, lhs, rhs C.Z3_ast) (C.Z3_ast, error) {
	ctx := tr.ctx
	switch op {
	case tir.EQ:
		return C.Z3_mk_eq(ctx.raw, lhs, rhs), ctx.err("Z3_mk_eq")
	case tir.NE:
		eq := C.Z3_mk_eq(ctx.raw, lhs, rhs)
		if err := ctx.err("Z3_mk_eq"); err != nil {
			return nil, err
		}
		return C.Z3_mk_not(ctx.raw, eq), ctx.err("Z3_mk_not")
	case tir.UGT:
		return C.Z3_mk_bvugt(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvugt")
	case tir.UGE:
		return C.Z3_mk_bvuge(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvuge")
	case tir.ULT:
		return C.Z3_mk_bvult(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvult")
	case tir.ULE:
		return C.Z3_mk_bvule(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvule")
	}

	if !signed {
		switch op {
		case tir.SGT:
			return C.Z3_mk_bvugt(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvugt")
		case tir.SGE:
			return C.Z3_mk_bvuge(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvuge")
		case tir.SLT:
			return C.Z3_mk_bvult(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvult")
		case tir.SLE:
			return C.Z3_mk_bvule(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvule")
		}
	}

	switch op {
	case tir.SGT:
		return C.Z3_mk_bvsgt(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsgt")
	case tir.SGE:
		return C.Z3_mk_bvsge(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsge")
	case tir.SLT:
		return C.Z3_mk_bvslt(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvslt")
	case tir.SLE:
		return C.Z3_mk_bvsle(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsle")
	default:
		return nil, fmt.Errorf("z3: unexpected operation: %s", op)
	}
}

// boolToBV converts a boolean term to a bit-vector holding 1 or 0.
func (tr *translator) boolToBV(cond C.Z3_ast, width uint) (C.Z3_ast, error) {
	whenTrue, err := tr.ctx.makeUint64(width, 1)
	if err != nil {
		return nil, err
	}
	whenFalse, err := tr.ctx.makeUint64(width, 0)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_ite(tr.ctx.raw, cond, whenTrue, whenFalse), tr.ctx.err("Z3_mk_ite")
}

// nonzero returns v != 0.
func (tr *translator) nonzero(v C.Z3_ast, typ tir.Type) (C.Z3_ast, error) {
	zero, err := tr.ctx.makeUint64(typ.Width(), 0)
	if err != nil {
		return nil, err
	}
	eq := C.Z3_mk_eq(tr.ctx.raw, v, zero)
	if err := tr.ctx.err("Z3_mk_eq"); err != nil {
		return nil, err
	}
	return C.Z3_mk_not(tr.ctx.raw, eq), tr.ctx.err("Z3_mk_not")
}

// and returns the conjunction of args.
func (tr *translator) and(args ...C.Z3_ast) (C.Z3_ast, error) {
	return C.Z3_mk_and(tr.ctx.raw, C.uint(len(args)), &args[0]), tr.ctx.err("Z3_mk_and")
}

// eval returns a store with the model's value for every translated variable.
func (tr *translator) eval(model C.Z3_model) (*tir.Store, error) {
	store := tir.NewStore()
	for name, v := range tr.vars {
		typ := tr.decls[name]

		var out C.Z3_ast
		C.Z3_model_eval(tr.ctx.raw, model, v, C.bool(true), &out)
		if err := tr.ctx.err("Z3_model_eval"); err != nil {
			return nil, err
		}

		s := C.GoString(C.Z3_get_numeral_string(tr.ctx.raw, out))
		if err := tr.ctx.err("Z3_get_numeral_string"); err != nil {
			return nil, err
		}
		value, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("z3: invalid numeral for %s: %q", name, s)
		}

		// Bit-vector numerals are unsigned.
		if typ.Signed() && value.Bit(int(typ.Width())-1) == 1 {
			value.Sub(value, new(big.Int).Lsh(big.NewInt(1), typ.Width()))
		}
		store = store.Set(name, typ.BigConst(value))
	}
	return store, nil
}

func (ctx *Context) makeBVSort(width uint) (C.Z3_sort, error) {
	return C.Z3_mk_bv_sort(ctx.raw, C.uint(width)), ctx.err("Z3_mk_bv_sort")
}

func (ctx *Context) makeUint64(width uint, value uint64) (C.Z3_ast, error) {
	t, err := ctx.makeBVSort(width)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_unsigned_int64(ctx.raw, C.uint64_t(value), t), ctx.err("Z3_mk_unsigned_int64")
}

// makeConst returns a named bit-vector constant.
func (ctx *Context) makeConst(name string, width uint) (C.Z3_ast, error) {
	t, err := ctx.makeBVSort(width)
	if err != nil {
		return nil, err
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	nameSymbol := C.Z3_mk_string_symbol(ctx.raw, cname)

	return C.Z3_mk_const(ctx.raw, nameSymbol, t), ctx.err("Z3_mk_const")
}

func (ctx *Context) astToString(ast C.Z3_ast) string {
	return C.GoString(C.Z3_ast_to_string(ctx.raw, ast))
}

func (ctx *Context) modelToString(model C.Z3_model) string {
	return C.GoString(C.Z3_model_to_string(ctx.raw, model))
}

// Error represents an error from the Z3 API.
type Error struct {
	Code    int
	Op      string
	Message string
}

// Error returns the error as a string.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Message, e.Code)
}

// Possible error codes.
const (
	ErrorCodeOK = iota
	ErrorCodeSortError
	ErrorCodeIOB
	ErrorCodeInvalidArg
	ErrorCodeParserError
	ErrorCodeNoParser
	ErrorCodeInvalidPattern
	ErrorCodeMemoutFail
	ErrorCodeFileAccessError
	ErrorCodeInternalFatal
	ErrorCodeInvalidUsage
	ErrorCodeDecRefError
	ErrorCodeException
)

// Stats holds cumulative solver statistics.
type Stats struct {
	ProveN    int
	ProveTime time.Duration
}
