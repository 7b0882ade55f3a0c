package tir

import (
	"context"
	"fmt"
	"log"
)

// Executor executes statements against a store. The zero value executes
// with no step limit and ignores loop invariants, which is exactly the
// behaviour of the package-level Execute function.
type Executor struct {
	// Maximum number of statements executed by a single call to Execute.
	// Each loop iteration counts as one step. Zero means no limit.
	MaxSteps int

	// If true, loop invariants are evaluated before every evaluation of the
	// loop condition and a violation aborts execution.
	CheckInvariants bool
}

// NewExecutor returns a new instance of Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute executes stmt against store with the default executor and returns
// the resulting store. Execution of a loop that never terminates does not
// return.
func Execute(store *Store, stmt Stmt) (*Store, error) {
	return NewExecutor().Execute(context.Background(), store, stmt)
}

// Execute executes stmt against store and returns the resulting store. The
// input store is never modified. Cancellation of ctx is observed between
// loop iterations.
func (e *Executor) Execute(ctx context.Context, store *Store, stmt Stmt) (*Store, error) {
	if store == nil {
		store = NewStore()
	}
	x := &execution{executor: e, ctx: ctx}
	return x.execute(store, stmt)
}

// execution holds the state of a single call to Executor.Execute.
type execution struct {
	executor *Executor
	ctx      context.Context
	steps    int
}

// step counts an executed statement against the step limit.
func (x *execution) step() error {
	x.steps++
	if limit := x.executor.MaxSteps; limit > 0 && x.steps > limit {
		return fmt.Errorf("%w: %d", ErrStepLimit, limit)
	}
	return nil
}

func (x *execution) execute(store *Store, stmt Stmt) (*Store, error) {
	if err := x.step(); err != nil {
		return nil, err
	}

	switch stmt := stmt.(type) {
	case *SkipStmt:
		return store, nil
	case *AssignStmt:
		return x.executeAssignStmt(store, stmt)
	case *SeqStmt:
		return x.executeSeqStmt(store, stmt)
	case *IfStmt:
		return x.executeIfStmt(store, stmt)
	case *WhileStmt:
		return x.executeWhileStmt(store, stmt)
	default:
		panic("unreachable")
	}
}

func (x *execution) executeAssignStmt(store *Store, stmt *AssignStmt) (*Store, error) {
	value, err := Evaluate(store, stmt.Expr)
	if err != nil {
		return nil, err
	}
	log.Printf("[exec] %s = %s", stmt.Name, value)
	return store.Set(stmt.Name, value), nil
}

func (x *execution) executeSeqStmt(store *Store, stmt *SeqStmt) (*Store, error) {
	store, err := x.execute(store, stmt.First)
	if err != nil {
		return nil, err
	}
	return x.execute(store, stmt.Second)
}

func (x *execution) executeIfStmt(store *Store, stmt *IfStmt) (*Store, error) {
	cond, err := Evaluate(store, stmt.Cond)
	if err != nil {
		return nil, err
	}
	log.Printf("[exec] if %s: %t", stmt.Cond, cond.Bool())

	if cond.Bool() {
		return x.execute(store, stmt.Then)
	}
	return x.execute(store, stmt.Else)
}

// executeWhileStmt iterates in place. The loop node is never re-entered
// recursively.
func (x *execution) executeWhileStmt(store *Store, stmt *WhileStmt) (*Store, error) {
	for i := 0; ; i++ {
		if err := x.ctx.Err(); err != nil {
			return nil, err
		}

		if x.executor.CheckInvariants {
			if err := checkInvariant(store, stmt); err != nil {
				return nil, err
			}
		}

		cond, err := Evaluate(store, stmt.Cond)
		if err != nil {
			return nil, err
		} else if !cond.Bool() {
			return store, nil
		}
		log.Printf("[loop] iteration %d: %s", i, stmt.Cond)

		if store, err = x.execute(store, stmt.Body); err != nil {
			return nil, err
		} else if err := x.step(); err != nil {
			return nil, err
		}
	}
}

func checkInvariant(store *Store, stmt *WhileStmt) error {
	ok, err := Holds(store, stmt.Invariant)
	if err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s in %s", ErrInvariantViolated, stmt.Invariant, store)
	}
	return nil
}

// Prover checks the validity of assertions, typically by asking a solver
// whether the negation is satisfiable.
type Prover interface {
	// Returns true if a holds for every assignment of the declared
	// variables. Otherwise returns a counterexample store.
	Prove(decls Decls, a Assertion) (valid bool, counterexample *Store, err error)
}
