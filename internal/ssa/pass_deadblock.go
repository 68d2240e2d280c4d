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

// DeadBlockElim removes blocks unreachable from the entry, together with
// the Phi arguments flowing out of them.
type DeadBlockElim struct{}

func (DeadBlockElim) prune(bb *ir.Block, live map[*ir.Label]bool) *ir.Block {
    var ok bool
    var phi *ir.Phi
    var ins []ir.Stmt

    /* scan the Phi nodes */
    for i, v := range bb.Stmts {
        if phi, ok = v.(*ir.Phi); !ok {
            break
        }

        /* keep arguments from live predecessors */
        args := make([]ir.PhiArg, 0, len(phi.Args))
        for _, a := range phi.Args {
            if live[a.Pred] {
                args = append(args, a)
            }
        }

        /* nothing removed */
        if len(args) == len(phi.Args) {
            continue
        }

        /* copy on write */
        if ins == nil {
            ins = append([]ir.Stmt(nil), bb.Stmts...)
        }

        /* replace the Phi node */
        ins[i] = &ir.Phi {
            Dst  : phi.Dst,
            Args : args,
        }
    }

    /* check for modifications */
    if ins == nil {
        return bb
    } else {
        return bb.With(ins, bb.Term)
    }
}

func (self DeadBlockElim) Apply(fn *ir.Function) *ir.Function {
    rs := NewCFG(fn).Reachable()
    bbs := make([]*ir.Block, 0, len(fn.Blocks))
    live := make(map[*ir.Label]bool, len(fn.Blocks))

    /* find all the reachable blocks */
    for i, bb := range fn.Blocks {
        if rs[i] {
            live[bb.Label] = true
            bbs = append(bbs, bb)
        }
    }

    /* every block is reachable */
    if len(bbs) == len(fn.Blocks) {
        return fn
    }

    /* remove the Phi arguments coming from dead blocks */
    for i, bb := range bbs {
        bbs[i] = self.prune(bb, live)
    }

    /* a function that never leaves has no reachable exit */
    ret := fn.WithBlocks(bbs)
    if !live[fn.Exit] {
        ret.Exit = fn.Entry
    }

    /* all done */
    count(&BlockRemoveCount, len(fn.Blocks) - len(bbs))
    return ret
}
