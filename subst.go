package tir

// Substitute returns expr with every subexpression structurally equal to
// target replaced by replacement. Nodes that contain no match are shared
// with expr.
//
// Replacement is purely syntactic: no attempt is made to avoid capturing
// variables of replacement that are rebound within expr.
func Substitute(expr, target, replacement Expr) Expr {
	return RewriteExpr(expr, func(e Expr) (Expr, bool) {
		if CompareExpr(e, target) == 0 {
			return replacement, true
		}
		return nil, false
	})
}

// SubstituteAssertion applies Substitute to every guard expression in a.
// Subassertions without a match are shared with a.
func SubstituteAssertion(a Assertion, target, replacement Expr) Assertion {
	switch a := a.(type) {
	case *BoolAssertion:
		return a
	case *ExprAssertion:
		if expr := Substitute(a.Expr, target, replacement); expr != a.Expr {
			return &ExprAssertion{Expr: expr}
		}
		return a
	case *NotAssertion:
		if x := SubstituteAssertion(a.X, target, replacement); x != a.X {
			return &NotAssertion{X: x}
		}
		return a
	case *AndAssertion:
		lhs, rhs := substitutePair(a.LHS, a.RHS, target, replacement)
		if lhs != a.LHS || rhs != a.RHS {
			return &AndAssertion{LHS: lhs, RHS: rhs}
		}
		return a
	case *OrAssertion:
		lhs, rhs := substitutePair(a.LHS, a.RHS, target, replacement)
		if lhs != a.LHS || rhs != a.RHS {
			return &OrAssertion{LHS: lhs, RHS: rhs}
		}
		return a
	case *ImpliesAssertion:
		lhs, rhs := substitutePair(a.LHS, a.RHS, target, replacement)
		if lhs != a.LHS || rhs != a.RHS {
			return &ImpliesAssertion{LHS: lhs, RHS: rhs}
		}
		return a
	default:
		panic("unreachable")
	}
}

func substitutePair(lhs, rhs Assertion, target, replacement Expr) (Assertion, Assertion) {
	return SubstituteAssertion(lhs, target, replacement), SubstituteAssertion(rhs, target, replacement)
}
