package tir_test

import (
	"testing"

	"github.com/benbjohnson/tir"
	"github.com/davecgh/go-spew/spew"
	"github.com/sebdah/goldie/v2"
)

func TestWP(t *testing.T) {
	x := tir.NewVarExpr("x")
	post := tir.Guard(tir.NewBinaryExpr(tir.EQ, x, tir.NewInt64(1)))

	t.Run("Skip", func(t *testing.T) {
		if a := tir.WP(tir.Skip(), post); a != tir.Assertion(post) {
			t.Fatalf("unexpected precondition: %s", a)
		}
	})

	t.Run("Assign", func(t *testing.T) {
		e := tir.NewBinaryExpr(tir.ADD, tir.NewVarExpr("y"), tir.NewInt64(1))
		a := tir.WP(tir.Assign("x", e), post)
		if exp := tir.SubstituteAssertion(post, tir.NewVarExpr("x"), e); !tir.AssertionEqual(a, exp) {
			t.Fatalf("got=%s, expected %s", a, exp)
		} else if s := a.String(); s != "(ieq (iadd y (i64 1)) (i64 1))" {
			t.Fatalf("unexpected string: %s", s)
		}
	})

	t.Run("Seq", func(t *testing.T) {
		stmt := tir.Seq(
			tir.Assign("x", tir.NewVarExpr("y")),
			tir.Assign("y", tir.NewInt64(5)),
		)
		q := tir.Guard(tir.NewBinaryExpr(tir.SLT, x, tir.NewVarExpr("y")))
		if s := tir.WP(stmt, q).String(); s != "(islt y (i64 5))" {
			t.Fatalf("unexpected string: %s", s)
		}
	})

	t.Run("If", func(t *testing.T) {
		c := tir.NewVarExpr("c")
		stmt := tir.If(c, tir.Assign("x", tir.NewInt64(1)), tir.Assign("x", tir.NewInt64(2)))

		exp := "(and (implies (not c) (ieq (i64 2) (i64 1))) (implies c (ieq (i64 1) (i64 1))))"
		if s := tir.WP(stmt, post).String(); s != exp {
			t.Fatalf("got=%s, expected %s", s, exp)
		}
	})

	t.Run("While", func(t *testing.T) {
		inv := tir.Guard(tir.NewBinaryExpr(tir.SGE, x, tir.NewInt64(0)))
		stmt := tir.While(x, inv, tir.Assign("x", tir.NewBinaryExpr(tir.SUB, x, tir.NewInt64(1))))

		a := tir.WP(stmt, post)
		conjuncts := tir.Conjuncts(a)
		if len(conjuncts) != 3 {
			t.Fatalf("unexpected conjuncts: %s", spew.Sdump(conjuncts))
		} else if conjuncts[0] != inv {
			t.Fatalf("entry obligation=%s, expected %s", conjuncts[0], inv)
		} else if s := conjuncts[1].String(); s != "(implies (and x (isge x (i64 0))) (isge (isub x (i64 1)) (i64 0)))" {
			t.Fatalf("preservation obligation=%s", s)
		} else if s := conjuncts[2].String(); s != "(implies (and (not x) (isge x (i64 0))) (ieq x (i64 1)))" {
			t.Fatalf("exit obligation=%s", s)
		}
	})
}

// Ensure WP output for larger programs is stable.
func TestWP_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("Max", func(t *testing.T) {
		fn := MaxFunction()
		g.Assert(t, "wp_max", []byte(tir.WP(fn.Body, fn.Ensures).String()+"\n"))
	})

	t.Run("Loop", func(t *testing.T) {
		i, n := tir.NewVarExpr("i"), tir.NewVarExpr("n")
		stmt := tir.While(
			tir.NewBinaryExpr(tir.SLT, i, n),
			tir.Guard(tir.NewBinaryExpr(tir.SLE, i, n)),
			tir.Assign("i", tir.NewBinaryExpr(tir.ADD, i, tir.NewInt64(1))),
		)
		post := tir.Guard(tir.NewBinaryExpr(tir.EQ, i, n))
		g.Assert(t, "wp_loop", []byte(tir.WP(stmt, post).String()+"\n"))
	})
}

// Ensure that for loop-free statements, a store satisfies the precondition
// exactly when executing from it establishes the postcondition.
func TestWP_Soundness(t *testing.T) {
	x, y, z := tir.NewVarExpr("x"), tir.NewVarExpr("y"), tir.NewVarExpr("z")
	stmt := tir.Seq(
		tir.Assign("y", tir.NewBinaryExpr(tir.MUL, x, tir.NewInt64(2))),
		tir.If(
			tir.NewBinaryExpr(tir.SLT, y, tir.NewInt64(10)),
			tir.Assign("z", tir.NewBinaryExpr(tir.ADD, y, tir.NewInt64(1))),
			tir.Assign("z", tir.NewInt64(0)),
		),
	)
	post := tir.Guard(tir.NewBinaryExpr(tir.SLE, z, tir.NewInt64(5)))
	pre := tir.WP(stmt, post)

	for v := int64(-10); v <= 10; v++ {
		store := tir.NewStore().Set("x", tir.NewInt64(v))

		before, err := tir.Holds(store, pre)
		if err != nil {
			t.Fatal(err)
		}
		after, err := tir.Holds(MustExecute(t, store, stmt), post)
		if err != nil {
			t.Fatal(err)
		}

		if before != after {
			t.Fatalf("x=%d: pre=%v, post=%v", v, before, after)
		}
	}
}
