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
    `github.com/cloudwego/ssac/ir`
)

// ConstProp propagates and folds constants in a single pass. Defining
// statements are left in place for DCE to clean up. Branch conditions are
// substituted but never turned into unconditional jumps.
type ConstProp struct{}

type _ConstTab []ir.Operand

func (self _ConstTab) value(v ir.Operand) ir.Operand {
    if p, ok := v.(*ir.Variable); !ok {
        return v
    } else if p.Id() < len(self) && self[p.Id()] != nil {
        return self[p.Id()]
    } else {
        return nil
    }
}

func (self _ConstTab) eval(ins ir.Stmt) (ir.Operand, bool) {
    switch v := ins.(type) {
        case *ir.Move  : return self.move(v)
        case *ir.UnOp  : return self.unop(v)
        case *ir.BinOp : return self.binop(v)
        case *ir.Phi   : return self.phi(v)
        default        : return nil, false
    }
}

func (self _ConstTab) move(v *ir.Move) (ir.Operand, bool) {
    if x := self.value(v.Src); x == nil {
        return nil, false
    } else {
        return x, true
    }
}

func (self _ConstTab) unop(v *ir.UnOp) (ir.Operand, bool) {
    if x := self.value(v.X); x == nil {
        return nil, false
    } else {
        return ir.FoldUnary(v.Op, x)
    }
}

func (self _ConstTab) binop(v *ir.BinOp) (ir.Operand, bool) {
    if x, y := self.value(v.X), self.value(v.Y); x == nil || y == nil {
        return nil, false
    } else {
        return ir.FoldBinary(v.Op, x, y)
    }
}

func (self _ConstTab) phi(v *ir.Phi) (ir.Operand, bool) {
    var ret ir.Operand
    for _, a := range v.Args {
        if x := self.value(a.Value); x == nil {
            return nil, false
        } else if ret == nil {
            ret = x
        } else if ret != x {
            return nil, false
        }
    }
    return ret, ret != nil
}

func (self _ConstTab) substitute(uses []ir.Operand) ([]ir.Operand, int) {
    n := 0
    ret := uses

    /* only copy on write */
    for i, v := range uses {
        if _, ok := v.(*ir.Variable); ok {
            if x := self.value(v); x != nil {
                if n++; n == 1 {
                    ret = append([]ir.Operand(nil), uses...)
                }
                ret[i] = x
            }
        }
    }

    /* all done */
    return ret, n
}

func (ConstProp) analyze(fn *ir.Function) _ConstTab {
    ret := make(_ConstTab, fn.Arena.NumVariables())

    /* iterate until no more constants can be found */
    for changed := true; changed; {
        changed = false

        /* evaluate every definition not known to be constant yet */
        for _, bb := range fn.Blocks {
            for _, v := range bb.Stmts {
                if d := v.Def(); d != nil && ret[d.Id()] == nil {
                    if x, ok := ret.eval(v); ok {
                        ret[d.Id()] = x
                        changed = true
                    }
                }
            }
        }
    }

    /* all done */
    return ret
}

func (self ConstProp) Apply(fn *ir.Function) *ir.Function {
    nb := 0
    ct := self.analyze(fn)
    bbs := make([]*ir.Block, len(fn.Blocks))

    /* rewrite every block */
    for i, bb := range fn.Blocks {
        var n int
        var m int
        var uses []ir.Operand

        /* substitute the statements */
        ins := bb.Stmts
        for j, v := range bb.Stmts {
            if uses, n = ct.substitute(v.Uses()); n != 0 {
                if m += n; m == n {
                    ins = append([]ir.Stmt(nil), bb.Stmts...)
                }
                ins[j] = v.Replace(v.Def(), uses)
            }
        }

        /* substitute the terminator */
        term := bb.Term
        if uses, n = ct.substitute(term.Uses()); n != 0 {
            m += n
            term = term.Replace(term.Def(), uses)
        }

        /* keep the block if nothing changed */
        if nb += m; m == 0 {
            bbs[i] = bb
        } else {
            bbs[i] = bb.With(ins, term)
        }
    }

    /* nothing has been folded */
    if nb == 0 {
        return fn
    }

    /* build the new function */
    count(&FoldCount, nb)
    return fn.WithBlocks(bbs)
}
