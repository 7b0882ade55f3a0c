package tir

import (
	"context"
	"fmt"
)

// Param is a named, typed function parameter or result.
type Param struct {
	Name string
	Type Type
}

// String returns the parameter as "name type".
func (p Param) String() string {
	return fmt.Sprintf("%s %s", p.Name, p.Type)
}

// Function represents a function with a contract. The body reads its
// parameters from the store and leaves its result in the variable named
// by Result. A nil Requires or Ensures is treated as true.
type Function struct {
	Name     string
	Params   []Param
	Result   Param
	Body     Stmt
	Requires Assertion
	Ensures  Assertion
}

// Precondition returns Requires, or true if unset.
func (f *Function) Precondition() Assertion {
	if f.Requires == nil {
		return True
	}
	return f.Requires
}

// Postcondition returns Ensures, or true if unset.
func (f *Function) Postcondition() Assertion {
	if f.Ensures == nil {
		return True
	}
	return f.Ensures
}

// VC returns the verification condition of the function:
// requires => wp(body, ensures). The function is correct, ignoring
// termination, iff the condition is valid.
func (f *Function) VC() Assertion {
	return Implies(f.Precondition(), WP(f.body(), f.Postcondition()))
}

func (f *Function) body() Stmt {
	if f.Body == nil {
		return Skip()
	}
	return f.Body
}

// Decls returns the types of the parameters, the result and every local
// assigned in the body.
func (f *Function) Decls() Decls {
	decls := make(Decls, len(f.Params)+1)
	for _, p := range f.Params {
		decls[p.Name] = p.Type
	}
	if f.Result.Name != "" {
		decls[f.Result.Name] = f.Result.Type
	}
	InferTypes(decls, f.body())
	return decls
}

// Bind returns a store binding each parameter to the matching argument.
func (f *Function) Bind(args []*ConstantExpr) (*Store, error) {
	if len(args) != len(f.Params) {
		return nil, fmt.Errorf("%s: %w: got %d, expected %d", f.Name, ErrArgumentCount, len(args), len(f.Params))
	}

	store := NewStore()
	for i, p := range f.Params {
		arg := args[i]
		if arg == nil || arg.Type() != p.Type {
			return nil, fmt.Errorf("%s: %w", f.Name, &VarError{Name: p.Name, Err: ErrMismatch})
		}
		store = store.Set(p.Name, arg)
	}
	return store, nil
}

// Call binds args to the parameters, executes the body with exec and
// returns the value of the result variable. A nil exec uses the default
// executor.
func (f *Function) Call(ctx context.Context, exec *Executor, args []*ConstantExpr) (*ConstantExpr, error) {
	if exec == nil {
		exec = NewExecutor()
	}

	store, err := f.Bind(args)
	if err != nil {
		return nil, err
	}

	if store, err = exec.Execute(ctx, store, f.body()); err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	result, err := store.Lookup(f.Result.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: result: %w", f.Name, err)
	}
	return result, nil
}

// InferTypes adds a type to decls for every variable assigned in stmt whose
// type is not already declared. A variable takes the type of the first
// typeable expression assigned to it. Assignments are revisited until no
// new type can be inferred, so order within the body does not matter.
func InferTypes(decls Decls, stmt Stmt) {
	var pending int
	for _, name := range AssignedVars(stmt) {
		if _, ok := decls[name]; !ok {
			pending++
		}
	}

	for pending > 0 {
		changed := false
		walkStmt(stmt, func(s Stmt) {
			assign, ok := s.(*AssignStmt)
			if !ok {
				return
			} else if _, ok := decls[assign.Name]; ok {
				return
			}
			if typ, ok := ExprType(assign.Expr, decls); ok {
				decls[assign.Name] = typ
				changed = true
				pending--
			}
		})
		if !changed {
			return
		}
	}
}

// Program is a collection of functions.
type Program struct {
	Functions []*Function
}

// Lookup returns the function with the given name.
func (p *Program) Lookup(name string) (*Function, error) {
	for _, f := range p.Functions {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
}
