// Package tirfile decodes programs, stores and assertions from a YAML tree
// encoding of the IR.
//
// Expressions are encoded as:
//
//	x              variable
//	5              literal of the document's default type
//	{i32: 7}       typed literal
//	{iadd: [l, r]} binary operation by operator tag
//
// Assertions are true, false, {and: [...]}, {or: [...]}, {implies: [a, b]},
// {not: a}, or any expression used as a guard. Statements are skip,
// {assign: {name, expr}}, {seq: [...]} (or a plain list),
// {if: {cond, then, else}} and {while: {cond, invariant, body}}.
package tirfile

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/benbjohnson/tir"
)

// DefaultType is the type of untyped integer literals unless a document
// declares otherwise.
const DefaultType = tir.I64

// Error is a decoding error at a position in the YAML source.
type Error struct {
	Line   int
	Column int
	Err    error
}

// Error returns the error as a string prefixed by its position.
func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

func errorf(node *yaml.Node, format string, args ...interface{}) error {
	return &Error{Line: node.Line, Column: node.Column, Err: fmt.Errorf(format, args...)}
}

type programDoc struct {
	Type      string        `yaml:"type"`
	Functions []functionDoc `yaml:"functions"`
}

type functionDoc struct {
	Name     string     `yaml:"name"`
	Params   []paramDoc `yaml:"params"`
	Result   paramDoc   `yaml:"result"`
	Requires yaml.Node  `yaml:"requires"`
	Ensures  yaml.Node  `yaml:"ensures"`
	Body     yaml.Node  `yaml:"body"`
}

type paramDoc struct {
	Name string    `yaml:"name"`
	Type yaml.Node `yaml:"type"`
}

// ReadProgramFile reads and decodes a program file.
func ReadProgramFile(path string) (*tir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program file: %w", err)
	}

	prog, err := ParseProgram(data)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	return prog, nil
}

// ParseProgram decodes a program document.
func ParseProgram(data []byte) (*tir.Program, error) {
	var doc programDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	typ := DefaultType
	if doc.Type != "" {
		var err error
		if typ, err = parseIntType(doc.Type); err != nil {
			return nil, err
		}
	}
	d := &decoder{typ: typ}

	prog := &tir.Program{}
	seen := make(map[string]bool)
	for i := range doc.Functions {
		fn, err := d.function(&doc.Functions[i])
		if err != nil {
			return nil, err
		} else if seen[fn.Name] {
			return nil, fmt.Errorf("duplicate function: %s", fn.Name)
		}
		seen[fn.Name] = true
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

// ParseStore decodes a mapping of variable names to literals. Untyped
// literals take type typ.
func ParseStore(data []byte, typ tir.Type) (*tir.Store, error) {
	node, err := parseNode(data)
	if err != nil {
		return nil, err
	}
	return (&decoder{typ: typ}).store(node)
}

// ParseAssertion decodes a single assertion. Untyped literals take type typ.
func ParseAssertion(data []byte, typ tir.Type) (tir.Assertion, error) {
	node, err := parseNode(data)
	if err != nil {
		return nil, err
	}
	return (&decoder{typ: typ}).assertion(node)
}

// ParseExpr decodes a single expression. Untyped literals take type typ.
func ParseExpr(data []byte, typ tir.Type) (tir.Expr, error) {
	node, err := parseNode(data)
	if err != nil {
		return nil, err
	}
	return (&decoder{typ: typ}).expr(node)
}

// ParseStmt decodes a single statement. Untyped literals take type typ.
func ParseStmt(data []byte, typ tir.Type) (tir.Stmt, error) {
	node, err := parseNode(data)
	if err != nil {
		return nil, err
	}
	return (&decoder{typ: typ}).stmt(node)
}

// parseNode returns the root content node of a single-document YAML source.
func parseNode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	} else if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("parse yaml: empty document")
	}
	return doc.Content[0], nil
}

func parseIntType(s string) (tir.Type, error) {
	typ, err := tir.ParseType(s)
	if err != nil {
		return tir.TypeInvalid, err
	} else if !typ.IsInteger() {
		return tir.TypeInvalid, fmt.Errorf("%w: %s is not an integer type", tir.ErrUnsupportedType, typ)
	}
	return typ, nil
}

// decoder converts YAML nodes into IR nodes.
type decoder struct {
	typ tir.Type // type of untyped literals
}

func (d *decoder) function(doc *functionDoc) (*tir.Function, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("function name required")
	}

	fn := &tir.Function{Name: doc.Name}
	for _, p := range doc.Params {
		param, err := d.param(doc.Name, p)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, param)
	}

	if doc.Result.Name == "" {
		return nil, fmt.Errorf("%s: result name required", doc.Name)
	}
	result, err := d.param(doc.Name, doc.Result)
	if err != nil {
		return nil, err
	}
	fn.Result = result

	fn.Body = tir.Skip()
	if !isZero(&doc.Body) {
		if fn.Body, err = d.stmt(&doc.Body); err != nil {
			return nil, err
		}
	}
	if !isZero(&doc.Requires) {
		if fn.Requires, err = d.assertion(&doc.Requires); err != nil {
			return nil, err
		}
	}
	if !isZero(&doc.Ensures) {
		if fn.Ensures, err = d.assertion(&doc.Ensures); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

func (d *decoder) param(fn string, doc paramDoc) (tir.Param, error) {
	if doc.Name == "" {
		return tir.Param{}, fmt.Errorf("%s: parameter name required", fn)
	} else if isZero(&doc.Type) {
		return tir.Param{Name: doc.Name, Type: d.typ}, nil
	}

	typ, err := tir.ParseType(doc.Type.Value)
	if err != nil {
		return tir.Param{}, &Error{Line: doc.Type.Line, Column: doc.Type.Column, Err: err}
	}
	return tir.Param{Name: doc.Name, Type: typ}, nil
}

func (d *decoder) store(node *yaml.Node) (*tir.Store, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errorf(node, "store must be a mapping")
	}

	store := tir.NewStore()
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		expr, err := d.expr(value)
		if err != nil {
			return nil, err
		}
		c, ok := expr.(*tir.ConstantExpr)
		if !ok {
			return nil, errorf(value, "%s: value must be a literal", key.Value)
		}
		store = store.Set(key.Value, c)
	}
	return store, nil
}

func (d *decoder) expr(node *yaml.Node) (tir.Expr, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!int":
			v, err := d.integer(node)
			if err != nil {
				return nil, err
			}
			return d.typ.BigConst(v), nil
		case "!!str":
			if node.Value == "" {
				return nil, errorf(node, "empty variable name")
			}
			return tir.NewVarExpr(node.Value), nil
		default:
			return nil, errorf(node, "invalid expression: %s", node.Value)
		}

	case yaml.MappingNode:
		tag, value, err := single(node)
		if err != nil {
			return nil, err
		}

		if typ, err := tir.ParseType(tag.Value); err == nil {
			if !typ.IsInteger() {
				return nil, &Error{Line: tag.Line, Column: tag.Column, Err: fmt.Errorf("%w: %s literal", tir.ErrUnsupportedType, typ)}
			} else if value.Kind != yaml.ScalarNode || value.ShortTag() != "!!int" {
				return nil, errorf(value, "%s literal must be an integer", typ)
			}
			v, err := d.integer(value)
			if err != nil {
				return nil, err
			}
			return typ.BigConst(v), nil
		}

		op, ok := tir.ParseBinaryOp(tag.Value)
		if !ok {
			return nil, errorf(tag, "unknown operator: %s", tag.Value)
		}
		operands, err := d.exprs(value, 2)
		if err != nil {
			return nil, err
		}
		return tir.NewBinaryExpr(op, operands[0], operands[1]), nil

	default:
		return nil, errorf(node, "invalid expression")
	}
}

// exprs decodes a sequence of exactly n expressions.
func (d *decoder) exprs(node *yaml.Node, n int) ([]tir.Expr, error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) != n {
		return nil, errorf(node, "expected %d operands", n)
	}
	a := make([]tir.Expr, n)
	for i, child := range node.Content {
		expr, err := d.expr(child)
		if err != nil {
			return nil, err
		}
		a[i] = expr
	}
	return a, nil
}

func (d *decoder) integer(node *yaml.Node) (*big.Int, error) {
	v, ok := new(big.Int).SetString(node.Value, 0)
	if !ok {
		return nil, errorf(node, "invalid integer: %s", node.Value)
	}
	return v, nil
}

func (d *decoder) assertion(node *yaml.Node) (tir.Assertion, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, errorf(node, "%s", err)
		} else if b {
			return tir.True, nil
		}
		return tir.False, nil
	}

	if node.Kind == yaml.MappingNode && len(node.Content) == 2 {
		tag, value := node.Content[0], node.Content[1]
		switch tag.Value {
		case "and", "or":
			a, err := d.assertions(value)
			if err != nil {
				return nil, err
			}
			if tag.Value == "and" {
				return tir.Conjoin(a...), nil
			}
			return disjoin(a), nil
		case "implies":
			a, err := d.assertions(value)
			if err != nil {
				return nil, err
			} else if len(a) != 2 {
				return nil, errorf(value, "implies expects 2 operands")
			}
			return tir.Implies(a[0], a[1]), nil
		case "not":
			x, err := d.assertion(value)
			if err != nil {
				return nil, err
			}
			return tir.Not(x), nil
		}
	}

	expr, err := d.expr(node)
	if err != nil {
		return nil, err
	}
	return tir.Guard(expr), nil
}

func (d *decoder) assertions(node *yaml.Node) ([]tir.Assertion, error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return nil, errorf(node, "expected a non-empty list of assertions")
	}
	a := make([]tir.Assertion, len(node.Content))
	for i, child := range node.Content {
		x, err := d.assertion(child)
		if err != nil {
			return nil, err
		}
		a[i] = x
	}
	return a, nil
}

// disjoin returns the right-nested disjunction of a.
func disjoin(a []tir.Assertion) tir.Assertion {
	if len(a) == 1 {
		return a[0]
	}
	return tir.Or(a[0], disjoin(a[1:]))
}

func (d *decoder) stmt(node *yaml.Node) (tir.Stmt, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "skip" {
			return tir.Skip(), nil
		}
		return nil, errorf(node, "invalid statement: %s", node.Value)
	case yaml.SequenceNode:
		return d.seq(node)
	case yaml.MappingNode:
	default:
		return nil, errorf(node, "invalid statement")
	}

	tag, value, err := single(node)
	if err != nil {
		return nil, err
	}

	switch tag.Value {
	case "skip":
		return tir.Skip(), nil
	case "assign":
		return d.assign(value)
	case "seq":
		if value.Kind != yaml.SequenceNode {
			return nil, errorf(value, "seq expects a list of statements")
		}
		return d.seq(value)
	case "if":
		return d.ifStmt(value)
	case "while":
		return d.while(value)
	default:
		return nil, errorf(tag, "unknown statement: %s", tag.Value)
	}
}

func (d *decoder) seq(node *yaml.Node) (tir.Stmt, error) {
	stmts := make([]tir.Stmt, len(node.Content))
	for i, child := range node.Content {
		stmt, err := d.stmt(child)
		if err != nil {
			return nil, err
		}
		stmts[i] = stmt
	}
	return tir.Seq(stmts...), nil
}

func (d *decoder) assign(node *yaml.Node) (tir.Stmt, error) {
	m, err := fields(node, "name", "expr")
	if err != nil {
		return nil, err
	}

	name, err := required(node, m, "name")
	if err != nil {
		return nil, err
	} else if name.Kind != yaml.ScalarNode || name.Value == "" {
		return nil, errorf(name, "assign name must be a variable name")
	}

	exprNode, err := required(node, m, "expr")
	if err != nil {
		return nil, err
	}
	expr, err := d.expr(exprNode)
	if err != nil {
		return nil, err
	}
	return tir.Assign(name.Value, expr), nil
}

func (d *decoder) ifStmt(node *yaml.Node) (tir.Stmt, error) {
	m, err := fields(node, "cond", "then", "else")
	if err != nil {
		return nil, err
	}

	condNode, err := required(node, m, "cond")
	if err != nil {
		return nil, err
	}
	cond, err := d.expr(condNode)
	if err != nil {
		return nil, err
	}

	thenNode, err := required(node, m, "then")
	if err != nil {
		return nil, err
	}
	then, err := d.stmt(thenNode)
	if err != nil {
		return nil, err
	}

	els := tir.Stmt(tir.Skip())
	if elseNode := m["else"]; elseNode != nil {
		if els, err = d.stmt(elseNode); err != nil {
			return nil, err
		}
	}
	return tir.If(cond, then, els), nil
}

func (d *decoder) while(node *yaml.Node) (tir.Stmt, error) {
	m, err := fields(node, "cond", "invariant", "body")
	if err != nil {
		return nil, err
	}

	condNode, err := required(node, m, "cond")
	if err != nil {
		return nil, err
	}
	cond, err := d.expr(condNode)
	if err != nil {
		return nil, err
	}

	var inv tir.Assertion
	if invNode := m["invariant"]; invNode != nil {
		if inv, err = d.assertion(invNode); err != nil {
			return nil, err
		}
	}

	bodyNode, err := required(node, m, "body")
	if err != nil {
		return nil, err
	}
	body, err := d.stmt(bodyNode)
	if err != nil {
		return nil, err
	}
	return tir.While(cond, inv, body), nil
}

// single returns the key and value of a mapping with exactly one entry.
func single(node *yaml.Node) (key, value *yaml.Node, err error) {
	if len(node.Content) != 2 {
		return nil, nil, errorf(node, "expected a single-key mapping")
	}
	return node.Content[0], node.Content[1], nil
}

// fields returns the values of a mapping by key. Keys not in allowed are
// rejected.
func fields(node *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errorf(node, "expected a mapping with keys %v", allowed)
	}

	sort.Strings(allowed)
	m := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if j := sort.SearchStrings(allowed, key.Value); j == len(allowed) || allowed[j] != key.Value {
			return nil, errorf(key, "unknown field: %s", key.Value)
		} else if _, ok := m[key.Value]; ok {
			return nil, errorf(key, "duplicate field: %s", key.Value)
		}
		m[key.Value] = node.Content[i+1]
	}
	return m, nil
}

func required(node *yaml.Node, m map[string]*yaml.Node, key string) (*yaml.Node, error) {
	if v := m[key]; v != nil {
		return v, nil
	}
	return nil, errorf(node, "missing field: %s", key)
}

// isZero returns true if node was not present in the source.
func isZero(node *yaml.Node) bool {
	return node.Kind == 0
}
