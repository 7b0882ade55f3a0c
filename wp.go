package tir

// WP returns the weakest liberal precondition of stmt with respect to post:
// an assertion that, if it holds before stmt executes and stmt terminates,
// guarantees post holds afterward. Termination is never asserted.
//
// Loops are handled with their supplied invariant, which is trusted to be
// strong enough. An invariant that is too weak yields a precondition that
// cannot be proven, not an error.
func WP(stmt Stmt, post Assertion) Assertion {
	switch stmt := stmt.(type) {
	case *SkipStmt:
		return post
	case *AssignStmt:
		return wpAssign(stmt, post)
	case *SeqStmt:
		return WP(stmt.First, WP(stmt.Second, post))
	case *IfStmt:
		return wpIf(stmt, post)
	case *WhileStmt:
		return wpWhile(stmt, post)
	default:
		panic("unreachable")
	}
}

// wpAssign is the assignment axiom: post[expr/name].
func wpAssign(stmt *AssignStmt, post Assertion) Assertion {
	return SubstituteAssertion(post, NewVarExpr(stmt.Name), stmt.Expr)
}

// wpIf returns (not cond => wp(else)) and (cond => wp(then)).
func wpIf(stmt *IfStmt, post Assertion) Assertion {
	cond := Guard(stmt.Cond)
	return And(
		Implies(Not(cond), WP(stmt.Else, post)),
		Implies(cond, WP(stmt.Then, post)),
	)
}

// wpWhile returns the conjunction of three obligations:
//
//	inv
//	(cond and inv) => wp(body, inv)
//	(not cond and inv) => post
func wpWhile(stmt *WhileStmt, post Assertion) Assertion {
	cond, inv := Guard(stmt.Cond), stmt.Invariant
	return And(
		inv,
		And(
			Implies(And(cond, inv), WP(stmt.Body, inv)),
			Implies(And(Not(cond), inv), post),
		),
	)
}
