package tir

// Evaluate evaluates expr to a constant under the bindings in store.
// Returns an error if a variable is unbound or an operation fails.
func Evaluate(store *Store, expr Expr) (*ConstantExpr, error) {
	switch expr := expr.(type) {
	case *ConstantExpr:
		return expr, nil
	case *VarExpr:
		return store.Lookup(expr.Name)
	case *BinaryExpr:
		lhs, err := Evaluate(store, expr.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := Evaluate(store, expr.RHS)
		if err != nil {
			return nil, err
		}
		return Apply(expr.Op, lhs, rhs)
	default:
		panic("unreachable")
	}
}

// Holds evaluates assertion a against a concrete store. Guards hold when
// their expression is nonzero. Connectives short-circuit, so an error in an
// operand that does not decide the result is not reported.
func Holds(store *Store, a Assertion) (bool, error) {
	switch a := a.(type) {
	case *BoolAssertion:
		return a.Value, nil
	case *ExprAssertion:
		v, err := Evaluate(store, a.Expr)
		if err != nil {
			return false, err
		}
		return v.Bool(), nil
	case *NotAssertion:
		ok, err := Holds(store, a.X)
		return !ok && err == nil, err
	case *AndAssertion:
		if ok, err := Holds(store, a.LHS); err != nil || !ok {
			return false, err
		}
		return Holds(store, a.RHS)
	case *OrAssertion:
		if ok, err := Holds(store, a.LHS); err != nil || ok {
			return ok, err
		}
		return Holds(store, a.RHS)
	case *ImpliesAssertion:
		if ok, err := Holds(store, a.LHS); err != nil || !ok {
			return err == nil, err
		}
		return Holds(store, a.RHS)
	default:
		panic("unreachable")
	}
}
