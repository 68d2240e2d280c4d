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

// TrivialBlockElim redirects every reference to an empty block that only
// jumps elsewhere onto the final destination, then sweeps the blocks that
// became unreachable. An empty entry block hands the entry over to its
// destination.
type TrivialBlockElim struct{}

// redirects maps every trivial block to the block it jumps to. A block whose
// target has Phi nodes is not trivial, since bypassing it would change the
// predecessors seen by those Phi nodes.
func (TrivialBlockElim) redirects(fn *ir.Function) map[*ir.Label]*ir.Label {
    ret := make(map[*ir.Label]*ir.Label)
    phi := make(map[*ir.Label]bool, len(fn.Blocks))

    /* find all blocks with Phi nodes */
    for _, bb := range fn.Blocks {
        if len(bb.Phis()) != 0 {
            phi[bb.Label] = true
        }
    }

    /* find all the trivial blocks */
    for _, bb := range fn.Blocks {
        if sw, ok := bb.Term.(*ir.Jump); ok && len(bb.Stmts) == 0 && sw.To != bb.Label && !phi[sw.To] {
            ret[bb.Label] = sw.To
        }
    }

    /* all done */
    return ret
}

// resolve follows a chain of redirections to its end. A cycle of trivial
// blocks resolves to the block where the cycle was detected.
func resolve(rd map[*ir.Label]*ir.Label, p *ir.Label) *ir.Label {
    seen := make(map[*ir.Label]bool)
    for {
        if to, ok := rd[p]; !ok || seen[p] {
            return p
        } else {
            seen[p] = true
            p = to
        }
    }
}

func (self TrivialBlockElim) retarget(bb *ir.Block, fn func(*ir.Label) *ir.Label) *ir.Block {
    var ins []ir.Stmt
    var term = bb.Term.Retarget(fn)

    /* exception scope markers reference their handlers */
    for i, v := range bb.Stmts {
        var p *ir.Label
        var r ir.Stmt

        /* check for scope markers */
        switch s := v.(type) {
            case *ir.TryEnter : if p = fn(s.Handler); p != s.Handler { r = &ir.TryEnter { Handler: p } }
            case *ir.TryExit  : if p = fn(s.Handler); p != s.Handler { r = &ir.TryExit { Handler: p } }
        }

        /* copy on write */
        if r != nil {
            if ins == nil {
                ins = append([]ir.Stmt(nil), bb.Stmts...)
            }
            ins[i] = r
        }
    }

    /* check for modifications */
    if ins == nil && term == bb.Term {
        return bb
    } else if ins == nil {
        return bb.With(bb.Stmts, term)
    } else {
        return bb.With(ins, term)
    }
}

func (self TrivialBlockElim) Apply(fn *ir.Function) *ir.Function {
    rd := self.redirects(fn)
    fw := func(p *ir.Label) *ir.Label { return resolve(rd, p) }

    /* no trivial blocks */
    if len(rd) == 0 {
        return fn
    }

    /* rewrite all the references */
    nb := 0
    bbs := make([]*ir.Block, len(fn.Blocks))

    /* retarget every block */
    for i, bb := range fn.Blocks {
        if bbs[i] = self.retarget(bb, fw); bbs[i] != bb {
            nb++
        }
    }

    /* the entry and exit labels follow the redirection */
    ret := fn
    exit := fw(fn.Exit)
    entry := fw(fn.Entry)

    /* build a new function if anything changed */
    if nb != 0 || exit != fn.Exit || entry != fn.Entry {
        ret = fn.WithBlocks(bbs)
        ret.Exit = exit
        ret.Entry = entry
    }

    /* sweep the blocks that are no longer referenced */
    return DeadBlockElim{}.Apply(ret)
}
