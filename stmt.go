package tir

import (
	"fmt"
)

// Stmt represents an IR statement.
type Stmt interface {
	fmt.Stringer
	stmt()
}

func (*SkipStmt) stmt()   {}
func (*AssignStmt) stmt() {}
func (*SeqStmt) stmt()    {}
func (*IfStmt) stmt()     {}
func (*WhileStmt) stmt()  {}

// SkipStmt does nothing.
type SkipStmt struct{}

// Skip returns a statement that leaves the store unchanged.
func Skip() *SkipStmt { return &SkipStmt{} }

// String returns the string representation of the statement.
func (s *SkipStmt) String() string { return "(skip)" }

// AssignStmt binds Name to the value of Expr.
type AssignStmt struct {
	Name string
	Expr Expr
}

// Assign returns a new assignment statement.
func Assign(name string, expr Expr) *AssignStmt {
	assert(expr != nil, "assign: nil expression: %s", name)
	return &AssignStmt{Name: name, Expr: expr}
}

// String returns the string representation of the statement.
func (s *AssignStmt) String() string { return fmt.Sprintf("(assign %s %s)", s.Name, s.Expr) }

// SeqStmt executes First and then Second against First's resulting store.
type SeqStmt struct {
	First  Stmt
	Second Stmt
}

// Seq returns the right-nested sequence of stmts. Returns a skip statement
// if stmts is empty.
func Seq(stmts ...Stmt) Stmt {
	switch len(stmts) {
	case 0:
		return Skip()
	case 1:
		return stmts[0]
	default:
		return &SeqStmt{First: stmts[0], Second: Seq(stmts[1:]...)}
	}
}

// String returns the string representation of the statement.
func (s *SeqStmt) String() string { return fmt.Sprintf("(seq %s %s)", s.First, s.Second) }

// IfStmt executes Then if Cond is nonzero and Else otherwise.
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// If returns a new conditional statement.
func If(cond Expr, then, els Stmt) *IfStmt {
	assert(cond != nil, "if: nil condition")
	assert(then != nil && els != nil, "if: nil branch: %s", cond)
	return &IfStmt{Cond: cond, Then: then, Else: els}
}

// String returns the string representation of the statement.
func (s *IfStmt) String() string {
	return fmt.Sprintf("(if %s %s %s)", s.Cond, s.Then, s.Else)
}

// WhileStmt executes Body while Cond is nonzero. Invariant is only used for
// axiomatic reasoning and optional runtime checking.
type WhileStmt struct {
	Cond      Expr
	Invariant Assertion
	Body      Stmt
}

// While returns a new loop statement. A nil invariant defaults to True.
func While(cond Expr, invariant Assertion, body Stmt) *WhileStmt {
	assert(cond != nil, "while: nil condition")
	assert(body != nil, "while: nil body: %s", cond)
	if invariant == nil {
		invariant = True
	}
	return &WhileStmt{Cond: cond, Invariant: invariant, Body: body}
}

// String returns the string representation of the statement.
func (s *WhileStmt) String() string {
	return fmt.Sprintf("(while %s %s %s)", s.Cond, s.Invariant, s.Body)
}

// AssignedVars returns the sorted names of all variables assigned within stmt.
func AssignedVars(stmt Stmt) []string {
	m := make(map[string]struct{})
	walkStmt(stmt, func(stmt Stmt) {
		if stmt, ok := stmt.(*AssignStmt); ok {
			m[stmt.Name] = struct{}{}
		}
	})
	return sortedKeys(m)
}

// walkStmt calls fn for stmt and every nested statement, in program order.
func walkStmt(stmt Stmt, fn func(Stmt)) {
	fn(stmt)
	switch stmt := stmt.(type) {
	case *SkipStmt, *AssignStmt:
		// nop
	case *SeqStmt:
		walkStmt(stmt.First, fn)
		walkStmt(stmt.Second, fn)
	case *IfStmt:
		walkStmt(stmt.Then, fn)
		walkStmt(stmt.Else, fn)
	case *WhileStmt:
		walkStmt(stmt.Body, fn)
	default:
		panic("unreachable")
	}
}

// CompareStmt returns an integer comparing two statements.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareStmt(a, b Stmt) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := stmtKind(a), stmtKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *SkipStmt:
		return 0
	case *AssignStmt:
		b := b.(*AssignStmt)
		if a.Name < b.Name {
			return -1
		} else if a.Name > b.Name {
			return 1
		}
		return CompareExpr(a.Expr, b.Expr)
	case *SeqStmt:
		b := b.(*SeqStmt)
		if cmp := CompareStmt(a.First, b.First); cmp != 0 {
			return cmp
		}
		return CompareStmt(a.Second, b.Second)
	case *IfStmt:
		b := b.(*IfStmt)
		if cmp := CompareExpr(a.Cond, b.Cond); cmp != 0 {
			return cmp
		} else if cmp := CompareStmt(a.Then, b.Then); cmp != 0 {
			return cmp
		}
		return CompareStmt(a.Else, b.Else)
	case *WhileStmt:
		b := b.(*WhileStmt)
		if cmp := CompareExpr(a.Cond, b.Cond); cmp != 0 {
			return cmp
		} else if cmp := CompareAssertion(a.Invariant, b.Invariant); cmp != 0 {
			return cmp
		}
		return CompareStmt(a.Body, b.Body)
	default:
		panic("unreachable")
	}
}

func stmtKind(stmt Stmt) int {
	switch stmt.(type) {
	case *SkipStmt:
		return 1
	case *AssignStmt:
		return 2
	case *SeqStmt:
		return 3
	case *IfStmt:
		return 4
	case *WhileStmt:
		return 5
	default:
		panic("unreachable")
	}
}
