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
    `fmt`

    `github.com/cloudwego/ssac/ir`
)

type _DefPos struct {
    bb  int
    pos int
}

// edgepos is the position at which values flow along the edge from bb to
// succ. The exception edge of a call leaves before the call result is defined.
func edgepos(bb *ir.Block, succ *ir.Label) int {
    if call, ok := bb.Term.(*ir.Call); ok && call.Catch == succ && call.Next != succ {
        return len(bb.Stmts)
    } else {
        return len(bb.Stmts) + 1
    }
}

// Verify checks that fn is in SSA form: every variable is defined exactly
// once, every ordinary use is dominated by its definition, and every Phi
// argument is available at the end of its predecessor.
func Verify(fn *ir.Function) error {
    if err := ir.Validate(fn, true); err != nil {
        return err
    }

    /* build the dominator tree */
    cfg := NewCFG(fn)
    dt := cfg.Dominators()

    /* every block must be reachable */
    for i, ok := range cfg.Reachable() {
        if !ok {
            return fmt.Errorf("ssa: block %s of function %s is unreachable", fn.Blocks[i].Label, fn.Name)
        }
    }

    /* parameters are defined before the entry block */
    defs := make(map[*ir.Variable]_DefPos)
    for _, v := range fn.Params {
        defs[v] = _DefPos { bb: cfg.Entry(), pos: -1 }
    }

    /* find all the definitions, the transfer is at position len(Stmts) */
    for i, bb := range fn.Blocks {
        for j, v := range bb.Stmts {
            if d := v.Def(); d != nil {
                if _, ok := defs[d]; ok {
                    return fmt.Errorf("ssa: variable %s is defined more than once in function %s", d, fn.Name)
                }
                defs[d] = _DefPos { bb: i, pos: j }
            }
        }
        if d := bb.Term.Def(); d != nil {
            if _, ok := defs[d]; ok {
                return fmt.Errorf("ssa: variable %s is defined more than once in function %s", d, fn.Name)
            }
            defs[d] = _DefPos { bb: i, pos: len(bb.Stmts) }
        }
    }

    /* checks a use at the given position */
    check := func(v ir.Operand, bb int, pos int) error {
        p, ok := v.(*ir.Variable)
        if !ok {
            return nil
        }

        /* must be defined somewhere */
        d, ok := defs[p]
        if !ok {
            return fmt.Errorf("ssa: variable %s is never defined in function %s", p, fn.Name)
        }

        /* same block, the definition must come first */
        if d.bb == bb {
            if d.pos < pos {
                return nil
            } else {
                return fmt.Errorf("ssa: variable %s is used before its definition in block %s of function %s", p, fn.Blocks[bb].Label, fn.Name)
            }
        }

        /* otherwise the definition must dominate the use */
        if !dt.DominatesAt(d.bb, bb) {
            return fmt.Errorf("ssa: definition of %s does not dominate its use in block %s of function %s", p, fn.Blocks[bb].Label, fn.Name)
        }
        return nil
    }

    /* check all the uses */
    for i, bb := range fn.Blocks {
        for j, v := range bb.Stmts {
            if phi, ok := v.(*ir.Phi); ok {
                for _, a := range phi.Args {
                    pred := cfg.IndexOf(a.Pred)
                    if err := check(a.Value, pred, edgepos(fn.Blocks[pred], bb.Label)); err != nil {
                        return err
                    }
                }
                continue
            }
            for _, u := range v.Uses() {
                if err := check(u, i, j); err != nil {
                    return err
                }
            }
        }
        for _, u := range bb.Term.Uses() {
            if err := check(u, i, len(bb.Stmts)); err != nil {
                return err
            }
        }
    }

    /* all checked */
    return nil
}
