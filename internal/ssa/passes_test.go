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

package ssa

import (
    `testing`

    `github.com/cloudwego/ssac/ir`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

const _ConstBranchSrc = `
func pick() int {
    locals %x.0 int, %y.1 int
    result %y.1
    entry entry.0
    exit join.3
entry.0:
    %x.0 = 1
    if %x.0 then a.1 else b.2
a.1:
    %y.1 = 10
    goto join.3
b.2:
    %y.1 = 20
    goto join.3
join.3:
    return %y.1
}
`

func TestConstProp_BranchNotFolded(t *testing.T) {
    fn := Build(parse(t, _ConstBranchSrc))
    ret := ConstProp{}.Apply(fn)
    require.NotSame(t, fn, ret)
    require.NoError(t, Verify(ret))

    /* the condition becomes a literal, the branch stays */
    br, ok := ret.Blocks[0].Term.(*ir.If)
    require.True(t, ok)
    assert.Equal(t, ir.Operand(ir.IntConst(1)), br.Cond)
    assert.Len(t, ret.Blocks, 4)

    /* both arms survive the cleanup passes */
    ret = DeadBlockElim{}.Apply(DCE{}.Apply(ret))
    assert.Len(t, ret.Blocks, 4)
    assert.Equal(t, "return 10", run(t, ret))
}

func TestConstProp_Folding(t *testing.T) {
    fn := Build(parse(t, `
func fold(%p.0 int) int {
    locals %a.1 int, %b.2 int, %c.3 int
    result %c.3
    entry entry.0
    exit entry.0
entry.0:
    %a.1 = 6
    %b.2 = mul %a.1, 7
    %c.3 = add %b.2, %p.0
    return %c.3
}
`))
    ret := ConstProp{}.Apply(fn)
    require.NoError(t, Verify(ret))
    add := ret.Blocks[0].Stmts[2].(*ir.BinOp)
    assert.Equal(t, ir.Operand(ir.IntConst(42)), add.X)
    assert.Equal(t, ir.Operand(fn.Params[0]), add.Y)

    /* unused definitions are left for DCE */
    assert.Equal(t, 3, ret.NumStmts())
    ret = DCE{}.Apply(ret)
    assert.Equal(t, 1, ret.NumStmts())
    assert.Equal(t, "return 43", run(t, ret, ir.IntConst(1)))
}

func TestConstProp_PhiAgreement(t *testing.T) {
    fn := Build(parse(t, `
func same(%c.0 int) int {
    locals %x.1 int, %y.2 int
    result %y.2
    entry entry.0
    exit join.3
entry.0:
    if %c.0 then a.1 else b.2
a.1:
    %x.1 = 3
    goto join.3
b.2:
    %x.1 = 3
    goto join.3
join.3:
    %y.2 = add %x.1, 1
    return %y.2
}
`))
    ret := ConstProp{}.Apply(fn)
    require.NoError(t, Verify(ret))
    assert.Equal(t, ir.Operand(ir.IntConst(4)), ret.Blocks[3].Term.(*ir.Return).Value)
}

func TestConstProp_DivisionByZero(t *testing.T) {
    fn := Build(parse(t, `
func div() int {
    locals %x.0 int
    result %x.0
    entry entry.0
    exit entry.0
entry.0:
    %x.0 = div 1, 0
    return %x.0
}
`))
    assert.Same(t, fn, ConstProp{}.Apply(fn))
}

func TestDCE_Cascade(t *testing.T) {
    fn := Build(parse(t, `
func cascade(%p.0 int) int {
    locals %a.1 int, %b.2 int, %o.3 Box
    result %p.0
    entry entry.0
    exit entry.0
entry.0:
    %a.1 = add %p.0, 1
    %b.2 = mul %a.1, 2
    %o.3 = new Box
    store %o.3 field v, %p.0
    %a.1 = call log(%p.0) next done.1
done.1:
    return %p.0
}
`))
    ret := DCE{}.Apply(fn)
    require.NoError(t, Verify(ret))

    /* the arithmetic chain is gone, the store keeps the object alive */
    require.Len(t, ret.Blocks[0].Stmts, 2)
    assert.IsType(t, (*ir.NewObject)(nil), ret.Blocks[0].Stmts[0])
    assert.IsType(t, (*ir.Store)(nil), ret.Blocks[0].Stmts[1])

    /* the call stays, its unused result does not */
    call := ret.Blocks[0].Term.(*ir.Call)
    assert.Nil(t, call.Dst)
    assert.Equal(t, "log", call.Callee)
    assert.Len(t, ret.Locals, 1)
}

func TestDCE_CycleSurvives(t *testing.T) {
    src := parse(t, `
func churn(%n.0 int) int {
    locals %i.1 int, %k.2 int, %c.3 int
    result %n.0
    entry entry.0
    exit done.3
entry.0:
    %i.1 = 0
    %k.2 = 0
    goto head.1
head.1:
    %c.3 = lt %i.1, %n.0
    if %c.3 then body.2 else done.3
body.2:
    %k.2 = add %k.2, 1
    %i.1 = add %i.1, 1
    goto head.1
done.3:
    return %n.0
}
`)
    ret := DCE{}.Apply(Build(src))
    require.NoError(t, Verify(ret))

    /* the counter is never read outside the loop, but keeps itself alive */
    assert.NotNil(t, phiOf(ret.Blocks[1], src.Locals[1]))
    assert.Len(t, ret.Blocks[2].Stmts, 2)
}

func TestDeadBlockElim(t *testing.T) {
    fn := parse(t, `
func orphan(%p.0 int) int {
    locals
    result none
    entry entry.0
    exit dead.1
entry.0:
    goto live.2
dead.1:
    goto live.2
live.2:
    return %p.0
}
`)
    ret := DeadBlockElim{}.Apply(fn)
    require.Len(t, ret.Blocks, 2)
    assert.Same(t, fn.Entry, ret.Exit)
    assert.Equal(t, "live", ret.Blocks[1].Label.Name())
    assert.Same(t, ret, DeadBlockElim{}.Apply(ret))
}

func TestDeadBlockElim_PrunesPhis(t *testing.T) {
    fn := parse(t, `
func prune(%p.0 int) int {
    locals %x.1 int
    result %x.1
    entry entry.0
    exit join.2
entry.0:
    goto join.2
dead.1:
    goto join.2
join.2:
    %x.1 = phi 1 (entry.0), 2 (dead.1)
    return %x.1
}
`)
    ret := DeadBlockElim{}.Apply(fn)
    require.NoError(t, ir.Validate(ret, true))
    phi := ret.Blocks[1].Phis()
    require.Len(t, phi, 1)
    assert.Equal(t, []ir.PhiArg { { Value: ir.IntConst(1), Pred: fn.Entry } }, phi[0].Args)
}

func TestTrivialBlockElim(t *testing.T) {
    fn := parse(t, `
func hops(%c.0 int) int {
    locals
    result none
    entry entry.0
    exit end.4
entry.0:
    if %c.0 then t1.1 else t2.2
t1.1:
    goto t2.2
t2.2:
    goto t3.3
t3.3:
    goto end.4
end.4:
    return %c.0
}
`)
    ret := TrivialBlockElim{}.Apply(fn)
    require.NoError(t, ir.Validate(ret, false))
    require.Len(t, ret.Blocks, 2)
    br := ret.Blocks[0].Term.(*ir.If)
    assert.Same(t, fn.Exit, br.Then)
    assert.Same(t, fn.Exit, br.Else)
    assert.Same(t, ret, TrivialBlockElim{}.Apply(ret))
}

func TestTrivialBlockElim_Cycle(t *testing.T) {
    fn := parse(t, `
func forever() void {
    locals
    result none
    entry entry.0
    exit entry.0
entry.0:
    goto a.1
a.1:
    goto b.2
b.2:
    goto a.1
}
`)
    ret := TrivialBlockElim{}.Apply(fn)
    require.NoError(t, ir.Validate(ret, false))
    assert.NotEmpty(t, ret.Blocks)
    assert.Same(t, ret, TrivialBlockElim{}.Apply(ret))
}

func TestTrivialBlockElim_Entry(t *testing.T) {
    fn := parse(t, `
func spin(%c.0 int) int {
    locals
    result none
    entry entry.0
    exit out.2
entry.0:
    goto body.1
body.1:
    if %c.0 then body.1 else out.2
out.2:
    return %c.0
}
`)
    ret := TrivialBlockElim{}.Apply(fn)
    require.NoError(t, ir.Validate(ret, false))
    require.Len(t, ret.Blocks, 2)
    assert.Equal(t, "body", ret.Entry.Name())
    assert.Same(t, ret.Blocks[0].Label, ret.Entry)
    assert.Same(t, ret, TrivialBlockElim{}.Apply(ret))
}

func TestTrivialBlockElim_KeepsPhiTargets(t *testing.T) {
    fn := Build(parse(t, `
func skip(%c.0 int) int {
    locals %x.1 int
    result %x.1
    entry entry.0
    exit join.3
entry.0:
    %x.1 = 1
    if %c.0 then b1.1 else b2.2
b1.1:
    goto join.3
b2.2:
    %x.1 = 2
    goto join.3
join.3:
    return %x.1
}
`))
    require.Equal(t, 1, fn.NumPhis())
    assert.Same(t, fn, TrivialBlockElim{}.Apply(fn))
}

func TestBlockMerge_Coalesce(t *testing.T) {
    fn := parse(t, `
func chain(%p.0 int) int {
    locals %x.1 int
    result %x.1
    entry a.0
    exit b.1
a.0:
    %x.1 = add %p.0, 1
    goto b.1
b.1:
    %x.1 = mul %x.1, 2
    return %x.1
}
`)
    ret := BlockMerge{}.Apply(fn)
    require.Len(t, ret.Blocks, 1)

    /* A keeps its label and takes the contents and transfer of B */
    bb := ret.Blocks[0]
    assert.Same(t, fn.Entry, bb.Label)
    assert.Same(t, bb.Label, ret.Exit)
    require.Len(t, bb.Stmts, 2)
    assert.Same(t, fn.Blocks[0].Stmts[0], bb.Stmts[0])
    assert.Same(t, fn.Blocks[1].Stmts[0], bb.Stmts[1])
    assert.Same(t, fn.Blocks[1].Term, bb.Term)
    assert.Equal(t, run(t, fn, ir.IntConst(4)), run(t, ret, ir.IntConst(4)))
}

func TestBlockMerge_Restrictions(t *testing.T) {
    fn := parse(t, `
func guarded(%p.0 int) int {
    locals
    result none
    entry entry.0
    exit done.3
entry.0:
    try.enter handler.2
    goto body.1
body.1:
    try.exit handler.2
    goto handler.2
handler.2:
    goto head.4
head.4:
    if %p.0 then head.4 else done.3
done.3:
    return %p.0
}
`)
    ret := BlockMerge{}.Apply(fn)
    require.NoError(t, ir.Validate(ret, false))

    /* body merges into the entry, the handler keeps its label */
    require.Len(t, ret.Blocks, 4)
    assert.Same(t, fn.Entry, ret.Blocks[0].Label)
    assert.Len(t, ret.Blocks[0].Stmts, 2)
    assert.Equal(t, "handler", ret.Blocks[1].Label.Name())
    assert.Same(t, ret, BlockMerge{}.Apply(ret))
}

func TestBlockMerge_PhiBecomesMove(t *testing.T) {
    fn := parse(t, `
func single(%p.0 int) int {
    locals %x.1 int
    result %x.1
    entry a.0
    exit b.1
a.0:
    goto b.1
b.1:
    %x.1 = phi %p.0 (a.0)
    return %x.1
}
`)
    ret := BlockMerge{}.Apply(fn)
    require.Len(t, ret.Blocks, 1)
    assert.Equal(t, &ir.Move { Dst: fn.Locals[0], Src: fn.Params[0] }, ret.Blocks[0].Stmts[0])
}

func TestPasses_Idempotent(t *testing.T) {
    passes := []Pass {
        new(ConstProp),
        new(DCE),
        new(DeadBlockElim),
        new(TrivialBlockElim),
        new(BlockMerge),
    }
    for _, src := range []string { _DiamondSrc, _LoopSrc, _ConstBranchSrc } {
        fn := Build(parse(t, src))
        for _, p := range passes {
            once := p.Apply(fn)
            require.NoError(t, Verify(once), "%T", p)
            assert.Same(t, once, p.Apply(once), "%T is not idempotent", p)
        }
    }
}
