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
    `github.com/cloudwego/ssac/internal/utils`
    `github.com/cloudwego/ssac/ir`
)

// BlockMerge merges redundant intermediate blocks (a block ending with an
// unconditional jump to another block with a single incoming edge).
type BlockMerge struct{}

// handlers collects labels referenced by exception scope markers, those
// blocks must keep their labels.
func (BlockMerge) handlers(fn *ir.Function) map[*ir.Label]bool {
    ret := make(map[*ir.Label]bool)
    for _, bb := range fn.Blocks {
        for _, v := range bb.Stmts {
            switch s := v.(type) {
                case *ir.TryEnter : ret[s.Handler] = true
                case *ir.TryExit  : ret[s.Handler] = true
            }
        }
    }
    return ret
}

// splice appends the contents of bb to the block p. Phi nodes of bb have a
// single argument, so they become ordinary moves.
func (BlockMerge) splice(fn *ir.Function, p *ir.Block, bb *ir.Block) *ir.Block {
    ins := make([]ir.Stmt, 0, len(p.Stmts) + len(bb.Stmts))
    ins = append(ins, p.Stmts...)

    /* convert the Phi nodes */
    for _, v := range bb.Stmts {
        if phi, ok := v.(*ir.Phi); !ok {
            ins = append(ins, v)
        } else {
            utils.Assert(len(phi.Args) == 1, "blockmerge", "phi with %d arguments in single-predecessor block %s of function %s", len(phi.Args), bb.Label, fn.Name)
            ins = append(ins, &ir.Move { Dst: phi.Dst, Src: phi.Args[0].Value })
        }
    }

    /* the merged block takes the transfer of bb */
    return p.With(ins, bb.Term)
}

// relabel rewrites Phi arguments arriving from old as arriving from to.
func relabel(bb *ir.Block, old *ir.Label, to *ir.Label) *ir.Block {
    var ins []ir.Stmt
    var phi []*ir.Phi

    /* nothing to do if there are no Phi nodes */
    if phi = bb.Phis(); len(phi) == 0 {
        return bb
    }

    /* rewrite the Phi nodes */
    for i, v := range phi {
        args := make([]ir.PhiArg, len(v.Args))
        copy(args, v.Args)

        /* update the predecessor labels */
        for j := range args {
            if args[j].Pred == old {
                args[j].Pred = to
            }
        }

        /* copy on write */
        if ins == nil {
            ins = append([]ir.Stmt(nil), bb.Stmts...)
        }

        /* replace the Phi node */
        ins[i] = &ir.Phi {
            Dst  : v.Dst,
            Args : args,
        }
    }

    /* build the new block */
    return bb.With(ins, bb.Term)
}

// merge performs one sweep over the function, returning the number of
// blocks merged away.
func (self BlockMerge) merge(fn *ir.Function) (*ir.Function, int) {
    cfg := NewCFG(fn)
    exc := self.handlers(fn)
    nbb := len(fn.Blocks)

    /* working copies of the blocks */
    bbs := append([]*ir.Block(nil), fn.Blocks...)
    del := make([]bool, nbb)
    ret := fn.Exit
    ent := cfg.Entry()

    /* merge every block with its successors as long as possible */
    nm := 0
    for i := range bbs {
        for !del[i] {
            sw, ok := bbs[i].Term.(*ir.Jump)
            if !ok {
                break
            }

            /* check for the merging conditions */
            j := cfg.IndexOf(sw.To)
            if j == i || j == ent || del[j] || exc[sw.To] || len(cfg.PredecessorsAt(j)) != 1 {
                break
            }

            /* splice the successor */
            bb := bbs[j]
            bbs[i] = self.splice(fn, bbs[i], bb)
            del[j] = true
            nm++

            /* the successors of bb now come from the merged block */
            for _, s := range bb.Term.Successors() {
                k := cfg.IndexOf(s)
                bbs[k] = relabel(bbs[k], bb.Label, bbs[i].Label)
            }

            /* the exit label follows */
            if ret == bb.Label {
                ret = bbs[i].Label
            }
        }
    }

    /* nothing merged */
    if nm == 0 {
        return fn, 0
    }

    /* collect the remaining blocks */
    out := make([]*ir.Block, 0, nbb - nm)
    for i, bb := range bbs {
        if !del[i] {
            out = append(out, bb)
        }
    }

    /* build the new function */
    fn = fn.WithBlocks(out)
    fn.Exit = ret
    return fn, nm
}

func (self BlockMerge) Apply(fn *ir.Function) *ir.Function {
    for {
        var nm int
        if fn, nm = self.merge(fn); nm == 0 {
            return fn
        }
        count(&BlockMergeCount, nm)
    }
}
