package tir

import (
	"fmt"
	"sort"
)

// Expr represents an IR expression. Expressions are immutable trees that
// may share subtrees.
type Expr interface {
	fmt.Stringer
	expr()
}

func (*VarExpr) expr()      {}
func (*ConstantExpr) expr() {}
func (*BinaryExpr) expr()   {}

// VarExpr represents a reference to a variable in the store.
type VarExpr struct {
	Name string
}

// NewVarExpr returns a new instance of VarExpr.
func NewVarExpr(name string) *VarExpr {
	return &VarExpr{Name: name}
}

// String returns the variable name.
func (e *VarExpr) String() string { return e.Name }

// BinaryExpr represents an operation on two expressions.
type BinaryExpr struct {
	Op  BinaryOp
	LHS Expr
	RHS Expr
}

// NewBinaryExpr returns a new instance of BinaryExpr. No folding or
// reordering is performed.
func NewBinaryExpr(op BinaryOp, lhs, rhs Expr) *BinaryExpr {
	assert(op.IsValid(), "binary expr: invalid op: %s", op)
	assert(lhs != nil && rhs != nil, "binary expr: nil operand: op=%s", op)
	return &BinaryExpr{Op: op, LHS: lhs, RHS: rhs}
}

// String returns the string representation of the expression.
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.LHS, e.RHS)
}

// ExprType returns the type of expr given the declared variable types.
// Binary operations take the type of whichever operand can be typed first,
// left to right. Returns false if no operand can be typed.
func ExprType(expr Expr, decls Decls) (Type, bool) {
	switch expr := expr.(type) {
	case *ConstantExpr:
		return expr.Type(), true
	case *VarExpr:
		typ, ok := decls[expr.Name]
		return typ, ok
	case *BinaryExpr:
		if typ, ok := ExprType(expr.LHS, decls); ok {
			return typ, true
		}
		return ExprType(expr.RHS, decls)
	default:
		panic("unreachable")
	}
}

// FreeVars returns the sorted, de-duplicated names of all variables in exprs.
func FreeVars(exprs ...Expr) []string {
	m := make(map[string]struct{})
	for _, expr := range exprs {
		collectVars(expr, m)
	}
	return sortedKeys(m)
}

func collectVars(expr Expr, m map[string]struct{}) {
	switch expr := expr.(type) {
	case *VarExpr:
		m[expr.Name] = struct{}{}
	case *ConstantExpr:
		// nop
	case *BinaryExpr:
		collectVars(expr.LHS, m)
		collectVars(expr.RHS, m)
	default:
		panic("unreachable")
	}
}

func sortedKeys(m map[string]struct{}) []string {
	a := make([]string, 0, len(m))
	for k := range m {
		a = append(a, k)
	}
	sort.Strings(a)
	return a
}

// ExprEqual returns true if a and b are structurally equal.
func ExprEqual(a, b Expr) bool {
	return CompareExpr(a, b) == 0
}

// CompareExpr returns an integer comparing two expressions.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareExpr(a, b Expr) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := exprKind(a), exprKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *ConstantExpr:
		return compareConstantExpr(a, b.(*ConstantExpr))
	case *VarExpr:
		return compareVarExpr(a, b.(*VarExpr))
	case *BinaryExpr:
		return compareBinaryExpr(a, b.(*BinaryExpr))
	default:
		panic("unreachable")
	}
}

func compareConstantExpr(a, b *ConstantExpr) int {
	if a.Signed && !b.Signed {
		return -1
	} else if !a.Signed && b.Signed {
		return 1
	}

	if a.Width < b.Width {
		return -1
	} else if a.Width > b.Width {
		return 1
	}
	return a.Value.Cmp(b.Value)
}

func compareVarExpr(a, b *VarExpr) int {
	if a.Name < b.Name {
		return -1
	} else if a.Name > b.Name {
		return 1
	}
	return 0
}

func compareBinaryExpr(a, b *BinaryExpr) int {
	if a.Op < b.Op {
		return -1
	} else if a.Op > b.Op {
		return 1
	}
	if cmp := CompareExpr(a.LHS, b.LHS); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.RHS, b.RHS)
}

// exprKind returns a numeric value for the type of expression.
// Only used internally for equality checks and sorting.
func exprKind(expr Expr) int {
	switch expr.(type) {
	case *ConstantExpr:
		return 1
	case *VarExpr:
		return 2
	case *BinaryExpr:
		return 3
	default:
		panic("unreachable")
	}
}

// ExprRewriter is called for every node visited by RewriteExpr, parents
// before children. Returning ok stops descent and replaces the node.
type ExprRewriter func(expr Expr) (other Expr, ok bool)

// RewriteExpr returns a copy of expr with nodes replaced by fn. Subtrees that
// are not replaced are shared with the original rather than copied.
func RewriteExpr(expr Expr, fn ExprRewriter) Expr {
	if other, ok := fn(expr); ok {
		return other
	}

	switch expr := expr.(type) {
	case *VarExpr, *ConstantExpr:
		return expr
	case *BinaryExpr:
		lhs, rhs := RewriteExpr(expr.LHS, fn), RewriteExpr(expr.RHS, fn)
		if lhs == expr.LHS && rhs == expr.RHS {
			return expr
		}
		return &BinaryExpr{Op: expr.Op, LHS: lhs, RHS: rhs}
	default:
		panic("unreachable")
	}
}
