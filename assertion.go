package tir

import (
	"fmt"
)

// Assertion represents a logical formula over the program state. Assertions
// are never executed; they are produced and consumed by WP and checked by
// Holds or an external prover.
type Assertion interface {
	fmt.Stringer
	assertion()
}

func (*BoolAssertion) assertion()    {}
func (*ExprAssertion) assertion()    {}
func (*NotAssertion) assertion()     {}
func (*AndAssertion) assertion()     {}
func (*OrAssertion) assertion()      {}
func (*ImpliesAssertion) assertion() {}

// Common assertions.
var (
	True  Assertion = &BoolAssertion{Value: true}
	False Assertion = &BoolAssertion{Value: false}
)

// BoolAssertion is a constant true or false.
type BoolAssertion struct {
	Value bool
}

// String returns "true" or "false".
func (a *BoolAssertion) String() string {
	if a.Value {
		return "true"
	}
	return "false"
}

// ExprAssertion holds when its expression evaluates to a nonzero value.
type ExprAssertion struct {
	Expr Expr
}

// Guard returns an assertion that holds when expr is nonzero.
func Guard(expr Expr) *ExprAssertion {
	assert(expr != nil, "guard: nil expression")
	return &ExprAssertion{Expr: expr}
}

// String returns the string representation of the guard expression.
func (a *ExprAssertion) String() string { return a.Expr.String() }

// NotAssertion is the negation of an assertion.
type NotAssertion struct {
	X Assertion
}

// Not returns the negation of x.
func Not(x Assertion) *NotAssertion { return &NotAssertion{X: x} }

// String returns the string representation of the assertion.
func (a *NotAssertion) String() string { return fmt.Sprintf("(not %s)", a.X) }

// AndAssertion is the conjunction of two assertions.
type AndAssertion struct {
	LHS Assertion
	RHS Assertion
}

// And returns the conjunction of lhs and rhs.
func And(lhs, rhs Assertion) *AndAssertion { return &AndAssertion{LHS: lhs, RHS: rhs} }

// String returns the string representation of the assertion.
func (a *AndAssertion) String() string { return fmt.Sprintf("(and %s %s)", a.LHS, a.RHS) }

// OrAssertion is the disjunction of two assertions.
type OrAssertion struct {
	LHS Assertion
	RHS Assertion
}

// Or returns the disjunction of lhs and rhs.
func Or(lhs, rhs Assertion) *OrAssertion { return &OrAssertion{LHS: lhs, RHS: rhs} }

// String returns the string representation of the assertion.
func (a *OrAssertion) String() string { return fmt.Sprintf("(or %s %s)", a.LHS, a.RHS) }

// ImpliesAssertion holds unless LHS holds and RHS does not.
type ImpliesAssertion struct {
	LHS Assertion
	RHS Assertion
}

// Implies returns the implication lhs => rhs.
func Implies(lhs, rhs Assertion) *ImpliesAssertion {
	return &ImpliesAssertion{LHS: lhs, RHS: rhs}
}

// String returns the string representation of the assertion.
func (a *ImpliesAssertion) String() string {
	return fmt.Sprintf("(implies %s %s)", a.LHS, a.RHS)
}

// Conjoin returns the right-nested conjunction of all assertions.
// Returns True if none are given.
func Conjoin(a ...Assertion) Assertion {
	switch len(a) {
	case 0:
		return True
	case 1:
		return a[0]
	default:
		return And(a[0], Conjoin(a[1:]...))
	}
}

// Conjuncts flattens nested conjunctions into a list of assertions.
func Conjuncts(a Assertion) []Assertion {
	if and, ok := a.(*AndAssertion); ok {
		return append(Conjuncts(and.LHS), Conjuncts(and.RHS)...)
	}
	return []Assertion{a}
}

// AssertionVars returns the sorted names of all variables in the assertions.
func AssertionVars(a ...Assertion) []string {
	m := make(map[string]struct{})
	for _, x := range a {
		walkAssertionExprs(x, func(expr Expr) { collectVars(expr, m) })
	}
	return sortedKeys(m)
}

// walkAssertionExprs calls fn for every embedded guard expression.
func walkAssertionExprs(a Assertion, fn func(Expr)) {
	switch a := a.(type) {
	case *BoolAssertion:
		// nop
	case *ExprAssertion:
		fn(a.Expr)
	case *NotAssertion:
		walkAssertionExprs(a.X, fn)
	case *AndAssertion:
		walkAssertionExprs(a.LHS, fn)
		walkAssertionExprs(a.RHS, fn)
	case *OrAssertion:
		walkAssertionExprs(a.LHS, fn)
		walkAssertionExprs(a.RHS, fn)
	case *ImpliesAssertion:
		walkAssertionExprs(a.LHS, fn)
		walkAssertionExprs(a.RHS, fn)
	default:
		panic("unreachable")
	}
}

// AssertionEqual returns true if a and b are structurally equal.
func AssertionEqual(a, b Assertion) bool {
	return CompareAssertion(a, b) == 0
}

// CompareAssertion returns an integer comparing two assertions.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareAssertion(a, b Assertion) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := assertionKind(a), assertionKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *BoolAssertion:
		if b := b.(*BoolAssertion); a.Value == b.Value {
			return 0
		} else if !a.Value {
			return -1
		}
		return 1
	case *ExprAssertion:
		return CompareExpr(a.Expr, b.(*ExprAssertion).Expr)
	case *NotAssertion:
		return CompareAssertion(a.X, b.(*NotAssertion).X)
	case *AndAssertion:
		b := b.(*AndAssertion)
		return compareAssertionPair(a.LHS, a.RHS, b.LHS, b.RHS)
	case *OrAssertion:
		b := b.(*OrAssertion)
		return compareAssertionPair(a.LHS, a.RHS, b.LHS, b.RHS)
	case *ImpliesAssertion:
		b := b.(*ImpliesAssertion)
		return compareAssertionPair(a.LHS, a.RHS, b.LHS, b.RHS)
	default:
		panic("unreachable")
	}
}

func compareAssertionPair(alhs, arhs, blhs, brhs Assertion) int {
	if cmp := CompareAssertion(alhs, blhs); cmp != 0 {
		return cmp
	}
	return CompareAssertion(arhs, brhs)
}

func assertionKind(a Assertion) int {
	switch a.(type) {
	case *BoolAssertion:
		return 1
	case *ExprAssertion:
		return 2
	case *NotAssertion:
		return 3
	case *AndAssertion:
		return 4
	case *OrAssertion:
		return 5
	case *ImpliesAssertion:
		return 6
	default:
		panic("unreachable")
	}
}
