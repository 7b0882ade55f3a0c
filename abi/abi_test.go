package abi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbjohnson/tir"
	"github.com/benbjohnson/tir/abi"
)

func TestCType(t *testing.T) {
	for typ, exp := range map[tir.Type]string{
		tir.I8:  "int8_t",
		tir.I64: "int64_t",
		tir.U16: "uint16_t",
		tir.U32: "uint32_t",
		tir.F32: "float",
		tir.F64: "double",
	} {
		s, err := abi.CType(typ)
		require.NoError(t, err)
		assert.Equal(t, exp, s, typ.String())
	}

	_, err := abi.CType(tir.TypeInvalid)
	assert.ErrorIs(t, err, tir.ErrUnsupportedType)
}

func TestSignatureOf(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		sig, err := abi.SignatureOf(maxFunction())
		require.NoError(t, err)
		assert.Equal(t, "int64_t max(int64_t, int64_t)", sig.String())
	})

	t.Run("NoParams", func(t *testing.T) {
		fn := &tir.Function{Name: "zero", Result: tir.Param{Name: "r", Type: tir.U8}}
		sig, err := abi.SignatureOf(fn)
		require.NoError(t, err)
		assert.Equal(t, "uint8_t zero(void)", sig.String())
	})

	t.Run("ErrUnsupportedType", func(t *testing.T) {
		fn := maxFunction()
		fn.Params[1].Type = tir.TypeInvalid
		_, err := abi.SignatureOf(fn)
		assert.ErrorIs(t, err, tir.ErrUnsupportedType)
	})
}

func TestValue(t *testing.T) {
	t.Run("Signed", func(t *testing.T) {
		v := abi.FromConstant(tir.NewInt8(-1))
		assert.Equal(t, uint64(0xFF), v.Bits)

		c, err := v.Constant()
		require.NoError(t, err)
		assert.Equal(t, "(i8 -1)", c.String())
	})

	t.Run("Unsigned", func(t *testing.T) {
		v := abi.FromConstant(tir.NewUint64(1 << 63))
		c, err := v.Constant()
		require.NoError(t, err)
		assert.Equal(t, "(u64 9223372036854775808)", c.String())
	})

	t.Run("Wrap", func(t *testing.T) {
		v := abi.FromConstant(tir.NewConstantExpr(300, 8, false))
		assert.Equal(t, uint64(44), v.Bits)
	})

	t.Run("Float", func(t *testing.T) {
		v, err := abi.FromFloat64(tir.F32, 1.5)
		require.NoError(t, err)
		f, err := v.Float64()
		require.NoError(t, err)
		assert.Equal(t, 1.5, f)
		assert.Equal(t, "(f32 1.5)", v.String())

		_, err = v.Constant()
		assert.ErrorIs(t, err, tir.ErrUnsupportedType)
	})

	t.Run("ErrUnsupportedType", func(t *testing.T) {
		_, err := abi.FromFloat64(tir.I32, 1)
		assert.ErrorIs(t, err, tir.ErrUnsupportedType)
	})
}

func TestInterpreter(t *testing.T) {
	prog := &tir.Program{Functions: []*tir.Function{maxFunction()}}

	t.Run("Call", func(t *testing.T) {
		lib, err := abi.NewInterpreter().Link(context.Background(), prog)
		require.NoError(t, err)
		defer lib.Close()

		result, err := lib.Call(context.Background(), "max",
			abi.FromConstant(tir.NewInt64(-4)),
			abi.FromConstant(tir.NewInt64(3)),
		)
		require.NoError(t, err)
		assert.Equal(t, "(i64 3)", result.String())

		sig, err := lib.Signature("max")
		require.NoError(t, err)
		assert.Equal(t, []tir.Type{tir.I64, tir.I64}, sig.Params)
	})

	t.Run("ErrFunctionNotFound", func(t *testing.T) {
		lib, err := abi.NewInterpreter().Link(context.Background(), prog)
		require.NoError(t, err)
		defer lib.Close()

		_, err = lib.Call(context.Background(), "min")
		assert.ErrorIs(t, err, tir.ErrFunctionNotFound)
	})

	t.Run("ErrArgumentCount", func(t *testing.T) {
		lib, err := abi.NewInterpreter().Link(context.Background(), prog)
		require.NoError(t, err)
		defer lib.Close()

		_, err = lib.Call(context.Background(), "max", abi.FromConstant(tir.NewInt64(1)))
		assert.ErrorIs(t, err, tir.ErrArgumentCount)
	})

	t.Run("ErrMismatch", func(t *testing.T) {
		lib, err := abi.NewInterpreter().Link(context.Background(), prog)
		require.NoError(t, err)
		defer lib.Close()

		_, err = lib.Call(context.Background(), "max",
			abi.FromConstant(tir.NewInt64(1)),
			abi.FromConstant(tir.NewUint64(1)),
		)
		assert.ErrorIs(t, err, tir.ErrMismatch)
	})

	t.Run("ErrNotLinked", func(t *testing.T) {
		lib, err := abi.NewInterpreter().Link(context.Background(), prog)
		require.NoError(t, err)
		require.NoError(t, lib.Close())

		_, err = lib.Call(context.Background(), "max",
			abi.FromConstant(tir.NewInt64(1)),
			abi.FromConstant(tir.NewInt64(2)),
		)
		assert.ErrorIs(t, err, abi.ErrNotLinked)
	})

	t.Run("RejectFloat", func(t *testing.T) {
		fn := &tir.Function{
			Name:   "half",
			Params: []tir.Param{{Name: "x", Type: tir.F64}},
			Result: tir.Param{Name: "r", Type: tir.F64},
			Body:   tir.Skip(),
		}
		_, err := abi.NewInterpreter().Link(context.Background(), &tir.Program{Functions: []*tir.Function{fn}})
		assert.ErrorIs(t, err, tir.ErrUnsupportedType)
	})

	t.Run("RejectDuplicate", func(t *testing.T) {
		dup := &tir.Program{Functions: []*tir.Function{maxFunction(), maxFunction()}}
		_, err := abi.NewInterpreter().Link(context.Background(), dup)
		assert.Error(t, err)
	})
}

func maxFunction() *tir.Function {
	a, b := tir.NewVarExpr("a"), tir.NewVarExpr("b")
	return &tir.Function{
		Name:   "max",
		Params: []tir.Param{{Name: "a", Type: tir.I64}, {Name: "b", Type: tir.I64}},
		Result: tir.Param{Name: "r", Type: tir.I64},
		Body:   tir.If(tir.NewBinaryExpr(tir.SGT, a, b), tir.Assign("r", a), tir.Assign("r", b)),
	}
}
