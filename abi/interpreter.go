package abi

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/benbjohnson/tir"
)

// Ensure types implement interfaces.
var (
	_ Linker  = (*Interpreter)(nil)
	_ Library = (*InterpretedLibrary)(nil)
)

// Interpreter is an in-process Linker that "compiles" a program by
// validating every signature and "invokes" functions by executing their
// bodies. It is the reference behaviour native linkers are checked against.
type Interpreter struct {
	// Executor used for every call. Defaults to tir.NewExecutor().
	Executor *tir.Executor
}

// NewInterpreter returns a new instance of Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{Executor: tir.NewExecutor()}
}

// Link validates prog and returns a library exposing its functions.
// Floating-point signatures are rejected since the interpreter only
// executes integer code.
func (i *Interpreter) Link(ctx context.Context, prog *tir.Program) (Library, error) {
	lib := &InterpretedLibrary{
		executor: i.Executor,
		funcs:    make(map[string]*tir.Function),
		sigs:     make(map[string]Signature),
	}

	for _, fn := range prog.Functions {
		if _, ok := lib.funcs[fn.Name]; ok {
			return nil, fmt.Errorf("abi: duplicate function: %s", fn.Name)
		}

		sig, err := SignatureOf(fn)
		if err != nil {
			return nil, err
		} else if err := checkIntegerSignature(sig); err != nil {
			return nil, err
		}

		lib.funcs[fn.Name], lib.sigs[fn.Name] = fn, sig
		log.Printf("[link] %s", sig)
	}

	lib.linked = true
	return lib, nil
}

func checkIntegerSignature(sig Signature) error {
	if !sig.Result.IsInteger() {
		return fmt.Errorf("abi: %s: result: %w: %s", sig.Name, tir.ErrUnsupportedType, sig.Result)
	}
	for i, typ := range sig.Params {
		if !typ.IsInteger() {
			return fmt.Errorf("abi: %s: param #%d: %w: %s", sig.Name, i, tir.ErrUnsupportedType, typ)
		}
	}
	return nil
}

// InterpretedLibrary is a Library produced by Interpreter. It is safe for
// concurrent use; each call executes against its own store.
type InterpretedLibrary struct {
	mu     sync.RWMutex
	linked bool

	executor *tir.Executor
	funcs    map[string]*tir.Function
	sigs     map[string]Signature
}

// Signature returns the calling signature of the named function.
func (lib *InterpretedLibrary) Signature(name string) (Signature, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	if !lib.linked {
		return Signature{}, ErrNotLinked
	}
	sig, ok := lib.sigs[name]
	if !ok {
		return Signature{}, fmt.Errorf("abi: %w: %q", tir.ErrFunctionNotFound, name)
	}
	return sig, nil
}

// Call invokes the named function. Arguments must match the signature
// exactly; the result is wrapped to the result width as a native caller
// would observe it.
func (lib *InterpretedLibrary) Call(ctx context.Context, name string, args ...Value) (Value, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	if !lib.linked {
		return Value{}, ErrNotLinked
	}

	fn, ok := lib.funcs[name]
	if !ok {
		return Value{}, fmt.Errorf("abi: %w: %q", tir.ErrFunctionNotFound, name)
	}
	sig := lib.sigs[name]

	if len(args) != len(sig.Params) {
		return Value{}, fmt.Errorf("abi: %s: %w: got %d, expected %d", name, tir.ErrArgumentCount, len(args), len(sig.Params))
	}

	consts := make([]*tir.ConstantExpr, len(args))
	for i, arg := range args {
		if arg.Type != sig.Params[i] {
			return Value{}, fmt.Errorf("abi: %s: arg #%d: %w: %s, expected %s", name, i, tir.ErrMismatch, arg.Type, sig.Params[i])
		}

		c, err := arg.Constant()
		if err != nil {
			return Value{}, err
		}
		consts[i] = c
	}

	result, err := fn.Call(ctx, lib.executor, consts)
	if err != nil {
		return Value{}, fmt.Errorf("abi: %w", err)
	} else if result.Type() != sig.Result {
		return Value{}, fmt.Errorf("abi: %s: result: %w: %s, expected %s", name, tir.ErrMismatch, result.Type(), sig.Result)
	}
	return FromConstant(result), nil
}

// Close unlinks the library. Subsequent calls fail with ErrNotLinked.
func (lib *InterpretedLibrary) Close() error {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	lib.linked = false
	return nil
}
