package z3_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/tir"
	"github.com/benbjohnson/tir/z3"
	"github.com/google/go-cmp/cmp"
)

func TestSolver_Prove(t *testing.T) {
	x, y := tir.NewVarExpr("x"), tir.NewVarExpr("y")

	t.Run("Constant", func(t *testing.T) {
		t.Run("True", func(t *testing.T) {
			s := z3.NewSolver()
			defer MustCloseSolver(s)
			if valid, _, err := s.Prove(nil, tir.True); err != nil {
				t.Fatal(err)
			} else if !valid {
				t.Fatal("expected valid")
			}
		})
		t.Run("False", func(t *testing.T) {
			s := z3.NewSolver()
			defer MustCloseSolver(s)
			if valid, store, err := s.Prove(nil, tir.False); err != nil {
				t.Fatal(err)
			} else if valid {
				t.Fatal("expected invalid")
			} else if store.Len() != 0 {
				t.Fatalf("unexpected counterexample: %s", store)
			}
		})
	})

	t.Run("Tautology", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// x > y => y < x
		a := tir.Implies(
			tir.Guard(tir.NewBinaryExpr(tir.SGT, x, y)),
			tir.Guard(tir.NewBinaryExpr(tir.SLT, y, x)),
		)
		if valid, _, err := s.Prove(tir.Decls{"x": tir.I32, "y": tir.I32}, a); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatal("expected valid")
		}
	})

	t.Run("Counterexample", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// x != 7
		a := tir.Guard(tir.NewBinaryExpr(tir.NE, x, tir.NewInt8(7)))
		valid, store, err := s.Prove(tir.Decls{"x": tir.I8}, a)
		if err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		} else if diff := cmp.Diff([]string{"x"}, store.Names()); diff != "" {
			t.Fatal(diff)
		} else if v, _ := store.Get("x"); v.Value.Int64() != 7 || v.Type() != tir.I8 {
			t.Fatalf("x=%s, expected (i8 7)", v)
		}
	})

	t.Run("SignedCounterexample", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// x >= 0 is falsified only by negative values.
		a := tir.Guard(tir.NewBinaryExpr(tir.SGE, x, tir.NewInt16(0)))
		valid, store, err := s.Prove(tir.Decls{"x": tir.I16}, a)
		if err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		} else if v, _ := store.Get("x"); v.Value.Sign() >= 0 {
			t.Fatalf("x=%s, expected negative value", v)
		}
	})

	t.Run("Unsigned", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// Every u8 is at most 255.
		a := tir.Guard(tir.NewBinaryExpr(tir.ULE, x, tir.NewUint8(255)))
		if valid, _, err := s.Prove(tir.Decls{"x": tir.U8}, a); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatal("expected valid")
		}
	})

	t.Run("Arithmetic", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// (x udiv 4) * 4 + (x urem 4) == x
		four := tir.NewUint32(4)
		a := tir.Guard(tir.NewBinaryExpr(tir.EQ,
			tir.NewBinaryExpr(tir.ADD,
				tir.NewBinaryExpr(tir.MUL, tir.NewBinaryExpr(tir.UDIV, x, four), four),
				tir.NewBinaryExpr(tir.UREM, x, four),
			),
			x,
		))
		if valid, _, err := s.Prove(tir.Decls{"x": tir.U32}, a); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatal("expected valid")
		}
	})

	t.Run("VC", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		a, b, r := tir.NewVarExpr("a"), tir.NewVarExpr("b"), tir.NewVarExpr("r")
		fn := &tir.Function{
			Name:   "max",
			Params: []tir.Param{{Name: "a", Type: tir.I64}, {Name: "b", Type: tir.I64}},
			Result: tir.Param{Name: "r", Type: tir.I64},
			Body:   tir.If(tir.NewBinaryExpr(tir.SGT, a, b), tir.Assign("r", a), tir.Assign("r", b)),
			Ensures: tir.And(
				tir.Guard(tir.NewBinaryExpr(tir.SGE, r, a)),
				tir.Guard(tir.NewBinaryExpr(tir.SGE, r, b)),
			),
		}
		if valid, store, err := s.Prove(fn.Decls(), fn.VC()); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatalf("expected valid, counterexample: %s", store)
		}

		// Swapping the branches breaks the postcondition.
		fn.Body = tir.If(tir.NewBinaryExpr(tir.SGT, a, b), tir.Assign("r", b), tir.Assign("r", a))
		if valid, _, err := s.Prove(fn.Decls(), fn.VC()); err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		}

		if got, exp := s.Stats().ProveN, 2; got != exp {
			t.Fatalf("ProveN=%d, expected %d", got, exp)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)
		s.SetTimeout(time.Second)

		if valid, _, err := s.Prove(tir.Decls{"x": tir.I64}, tir.Guard(tir.NewBinaryExpr(tir.EQ, x, x))); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatal("expected valid")
		}
	})

	// Ensure a contract broken by exact evaluation is not proven through
	// bit-vector wraparound.
	t.Run("Overflow", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		r := tir.NewVarExpr("r")
		fn := &tir.Function{
			Name:     "inc",
			Params:   []tir.Param{{Name: "x", Type: tir.I8}},
			Result:   tir.Param{Name: "r", Type: tir.I8},
			Requires: tir.Guard(tir.NewBinaryExpr(tir.EQ, x, tir.NewInt8(127))),
			Body:     tir.Assign("r", tir.NewBinaryExpr(tir.ADD, x, tir.NewInt8(1))),
			Ensures:  tir.Guard(tir.NewBinaryExpr(tir.EQ, r, tir.NewInt8(-128))),
		}

		result, err := fn.Call(context.Background(), nil, []*tir.ConstantExpr{tir.NewInt8(127)})
		if err != nil {
			t.Fatal(err)
		} else if ok, err := tir.Holds(tir.NewStore().Set("r", result), fn.Ensures); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Fatalf("r=%s, expected ensures to fail", result)
		}

		valid, store, err := s.Prove(fn.Decls(), fn.VC())
		if err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		} else if v, _ := store.Get("x"); v.Value.Int64() != 127 {
			t.Fatalf("x=%s, expected (i8 127)", v)
		}

		// Bounding the input keeps the sum in range.
		fn.Requires = tir.Guard(tir.NewBinaryExpr(tir.SLT, x, tir.NewInt8(127)))
		fn.Ensures = tir.Guard(tir.NewBinaryExpr(tir.SGT, r, x))
		if valid, store, err := s.Prove(fn.Decls(), fn.VC()); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatalf("expected valid, counterexample: %s", store)
		}
	})

	t.Run("UnsignedUnderflow", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// x - 1 < x fails concretely only at zero, where the result is -1.
		a := tir.Guard(tir.NewBinaryExpr(tir.ULT, tir.NewBinaryExpr(tir.SUB, x, tir.NewUint16(1)), x))
		valid, store, err := s.Prove(tir.Decls{"x": tir.U16}, a)
		if err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		} else if v, _ := store.Get("x"); v.Value.Sign() != 0 {
			t.Fatalf("x=%s, expected (u16 0)", v)
		}
	})

	t.Run("DivideByZero", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		q := tir.NewBinaryExpr(tir.UDIV, x, y)
		a := tir.Guard(tir.NewBinaryExpr(tir.EQ, q, q))
		decls := tir.Decls{"x": tir.U32, "y": tir.U32}

		valid, store, err := s.Prove(decls, a)
		if err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		} else if v, _ := store.Get("y"); v.Value.Sign() != 0 {
			t.Fatalf("y=%s, expected (u32 0)", v)
		}

		nonzero := tir.Guard(tir.NewBinaryExpr(tir.NE, y, tir.NewUint32(0)))
		if valid, store, err := s.Prove(decls, tir.Implies(nonzero, a)); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatalf("expected valid, counterexample: %s", store)
		}
	})

	t.Run("NegativeShift", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		shr := tir.NewBinaryExpr(tir.ASHR, x, y)
		valid, store, err := s.Prove(tir.Decls{"x": tir.I8, "y": tir.I8}, tir.Guard(tir.NewBinaryExpr(tir.EQ, shr, shr)))
		if err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		} else if v, _ := store.Get("y"); v.Value.Sign() >= 0 {
			t.Fatalf("y=%s, expected negative value", v)
		}
	})

	t.Run("ShiftOverflow", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// x << 1 >= x holds exactly, but not once the top bit is shifted out.
		a := tir.Guard(tir.NewBinaryExpr(tir.UGE, tir.NewBinaryExpr(tir.SHL, x, tir.NewUint8(1)), x))
		if valid, _, err := s.Prove(tir.Decls{"x": tir.U8}, a); err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		}

		small := tir.Guard(tir.NewBinaryExpr(tir.ULT, x, tir.NewUint8(128)))
		if valid, store, err := s.Prove(tir.Decls{"x": tir.U8}, tir.Implies(small, a)); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatalf("expected valid, counterexample: %s", store)
		}
	})

	t.Run("SignedCompareOfUnsigned", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// isgt compares exact values, which are never negative for u8.
		a := tir.Implies(
			tir.Guard(tir.NewBinaryExpr(tir.UGT, x, tir.NewUint8(127))),
			tir.Guard(tir.NewBinaryExpr(tir.SGT, x, tir.NewUint8(127))),
		)
		if valid, store, err := s.Prove(tir.Decls{"x": tir.U8}, a); err != nil {
			t.Fatal(err)
		} else if !valid {
			t.Fatalf("expected valid, counterexample: %s", store)
		}
	})

	t.Run("OutOfRangeLiteral", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)

		// (i8 128) is not -128 under exact evaluation.
		a := tir.Guard(tir.NewBinaryExpr(tir.EQ, tir.NewConstantExpr(128, 8, true), tir.NewInt8(-128)))
		if valid, _, err := s.Prove(nil, a); err != nil {
			t.Fatal(err)
		} else if valid {
			t.Fatal("expected invalid")
		}
	})

	t.Run("ErrUnboundVariable", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)
		if _, _, err := s.Prove(tir.Decls{}, tir.Guard(x)); !errors.Is(err, tir.ErrUnboundVariable) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ErrUnsupportedType", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)
		if _, _, err := s.Prove(tir.Decls{"x": tir.F64}, tir.Guard(x)); !errors.Is(err, tir.ErrUnsupportedType) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ErrMismatch", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)
		a := tir.Guard(tir.NewBinaryExpr(tir.ADD, x, tir.NewInt64(1)))
		if _, _, err := s.Prove(tir.Decls{"x": tir.I32}, a); !errors.Is(err, tir.ErrMismatch) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ErrSignednessMismatch", func(t *testing.T) {
		s := z3.NewSolver()
		defer MustCloseSolver(s)
		a := tir.Guard(tir.NewBinaryExpr(tir.EQ, x, tir.NewUint32(1)))
		if _, _, err := s.Prove(tir.Decls{"x": tir.I32}, a); !errors.Is(err, tir.ErrMismatch) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestSolver_Formula(t *testing.T) {
	s := z3.NewSolver()
	defer MustCloseSolver(s)

	x := tir.NewVarExpr("x")
	formula, err := s.Formula(tir.Decls{"x": tir.U8}, tir.Guard(tir.NewBinaryExpr(tir.ULT, x, tir.NewUint8(10))))
	if err != nil {
		t.Fatal(err)
	} else if !strings.Contains(formula, "bvult") {
		t.Fatalf("unexpected formula: %s", formula)
	}
}

func MustCloseSolver(s *z3.Solver) {
	if err := s.Close(); err != nil {
		panic(err)
	}
}
