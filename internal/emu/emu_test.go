/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package emu

import (
    `errors`
    `testing`

    `github.com/cloudwego/ssac/ir`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func noCalls(callee string, _ []Value) (Value, bool, error) {
    return nil, false, errors.New("unexpected call to " + callee)
}

func TestEmu_Arithmetic(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "arith", ir.TypeInt)
    x := b.Param("x", ir.TypeInt)
    y := b.Local("y", ir.TypeInt)
    b.Label("entry")
    b.BinOp(y, ir.OpMul, x, ir.IntConst(3))
    b.BinOp(y, ir.OpSub, y, ir.IntConst(1))
    b.UnOp(y, ir.OpNeg, y)
    b.Return(y)
    ret, err := Run(b.Build(), EnvFunc(noCalls), ir.IntConst(4))
    require.NoError(t, err)
    assert.Equal(t, ir.IntConst(-11), ret.Value)
    assert.Equal(t, "return -11", ret.String())
}

func TestEmu_Memory(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "memory", ir.TypeInt)
    o := b.Local("o", "Point")
    a := b.Local("a", "int[]")
    v := b.Local("v", ir.TypeInt)
    w := b.Local("w", ir.TypeInt)
    b.Label("entry")
    b.New(o, "Point")
    b.Store(ir.Field { Obj: o, Name: "x" }, ir.IntConst(7))
    b.NewArray(a, ir.TypeInt, ir.IntConst(2))
    b.Load(v, ir.Field { Obj: o, Name: "x" })
    b.Store(ir.Elem { Arr: a, Index: ir.IntConst(1) }, v)
    b.Load(w, ir.Elem { Arr: a, Index: ir.IntConst(1) })
    b.Load(v, ir.Field { Obj: o, Name: "y" })
    b.BinOp(w, ir.OpAdd, w, v)
    b.Return(w)
    ret, err := Run(b.Build(), EnvFunc(noCalls))
    require.NoError(t, err)
    assert.Equal(t, "return 7", ret.String())
}

func TestEmu_OutOfRange(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "oob", ir.TypeInt)
    a := b.Local("a", "int[]")
    v := b.Local("v", ir.TypeInt)
    b.Label("entry")
    b.NewArray(a, ir.TypeInt, ir.IntConst(1))
    b.Load(v, ir.Elem { Arr: a, Index: ir.IntConst(1) })
    b.Return(v)
    _, err := Run(b.Build(), EnvFunc(noCalls))
    require.Error(t, err)
    assert.ErrorIs(t, err, ErrRuntime)
}

func TestEmu_Calls(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "calls", ir.TypeInt)
    p := b.Param("p", ir.TypeInt)
    r := b.Local("r", ir.TypeInt)
    b.Label("entry")
    b.Move(r, ir.IntConst(-1))
    b.Call(r, "risky", []ir.Operand { p }, "done", "handler")
    b.Label("handler")
    b.Call(nil, "log", []ir.Operand { r, ir.StrConst("failed") }, "done", "")
    b.Label("done")
    b.Return(r)
    fn := b.Build()

    /* risky throws on negative arguments */
    env := EnvFunc(func(callee string, args []Value) (Value, bool, error) {
        if callee == "risky" {
            n := args[0].(ir.IntConst)
            return n * 10, n < 0, nil
        } else {
            return nil, false, nil
        }
    })

    /* normal return */
    ret, err := Run(fn, env, ir.IntConst(2))
    require.NoError(t, err)
    assert.Equal(t, "risky(2)\nreturn 20", ret.String())

    /* the handler sees the old value */
    ret, err = Run(fn, env, ir.IntConst(-2))
    require.NoError(t, err)
    assert.Equal(t, "risky(-2) throws\nlog(-1, \"failed\")\nreturn -1", ret.String())
    require.Len(t, ret.Trace, 2)
    assert.True(t, ret.Trace[0].Thrown)
}

func TestEmu_Uncaught(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "uncaught", ir.TypeVoid)
    b.Label("entry")
    b.Call(nil, "boom", nil, "done", "")
    b.Label("done")
    b.Throw()
    fn := b.Build()

    /* the exception escapes */
    ret, err := Run(fn, EnvFunc(func(string, []Value) (Value, bool, error) { return nil, true, nil }))
    require.NoError(t, err)
    assert.True(t, ret.Thrown)
    assert.Equal(t, "boom() throws\nthrow", ret.String())

    /* or the function throws by itself */
    ret, err = Run(fn, EnvFunc(func(string, []Value) (Value, bool, error) { return nil, false, nil }))
    require.NoError(t, err)
    assert.Equal(t, "boom()\nthrow", ret.String())
}

func TestEmu_Phi(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "swap", ir.TypeInt)
    n := b.Param("n", ir.TypeInt)
    x := b.Local("x", ir.TypeInt)
    y := b.Local("y", ir.TypeInt)
    i := b.Local("i", ir.TypeInt)
    c := b.Local("c", ir.TypeInt)
    b.Label("entry")
    b.Jump("head")
    b.Label("head")
    b.Phi(x, b.Arg(ir.IntConst(1), "entry"), b.Arg(y, "head"))
    b.Phi(y, b.Arg(ir.IntConst(2), "entry"), b.Arg(x, "head"))
    b.Phi(i, b.Arg(n, "entry"), b.Arg(c, "head"))
    b.BinOp(c, ir.OpSub, i, ir.IntConst(1))
    b.If(c, "head", "done")
    b.Label("done")
    b.Return(x)
    fn := b.Build()
    require.NoError(t, ir.Validate(fn, true))

    /* Phi nodes are evaluated simultaneously, so x and y swap every round */
    for k, want := range []string { "return 1", "return 2", "return 1" } {
        ret, err := Run(fn, EnvFunc(noCalls), ir.IntConst(k + 1))
        require.NoError(t, err)
        assert.Equal(t, want, ret.String())
    }
}

func TestEmu_StepLimit(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "spin", ir.TypeVoid)
    v := b.Local("v", ir.TypeInt)
    b.Label("entry")
    b.Move(v, ir.IntConst(0))
    b.Label("loop")
    b.BinOp(v, ir.OpAdd, v, ir.IntConst(1))
    b.Jump("loop")
    em := New(b.Build(), EnvFunc(noCalls))
    em.Limit = 100
    _, err := em.Run()
    assert.ErrorIs(t, err, ErrStepLimit)
}

func TestEmu_StepLimitEmptyBlocks(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "spin", ir.TypeVoid)
    p := b.Param("p", ir.TypeInt)
    b.Exit("out")
    b.Label("entry")
    b.If(p, "entry", "out")
    b.Label("out")
    b.Return(nil)
    em := New(b.Build(), EnvFunc(noCalls))
    em.Limit = 100
    _, err := em.Run(ir.IntConst(1))
    assert.ErrorIs(t, err, ErrStepLimit)

    /* the same function terminates when the loop is not taken */
    ret, err := em.Run(ir.IntConst(0))
    require.NoError(t, err)
    assert.Equal(t, "return", ret.String())
}

func TestEmu_Arguments(t *testing.T) {
    b := ir.CreateBuilder(ir.NewArena(), "args", ir.TypeInt)
    p := b.Param("p", ir.TypeInt)
    b.Label("entry")
    b.Return(p)
    _, err := Run(b.Build(), EnvFunc(noCalls))
    assert.ErrorIs(t, err, ErrRuntime)
}
