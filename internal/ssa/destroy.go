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

type _Edge struct {
    from *ir.Label
    to   *ir.Label
}

type _Destroyer struct {
    fn    *ir.Function
    head  map[*ir.Label][]ir.Stmt
    tail  map[*ir.Label][]ir.Stmt
    split map[_Edge][]ir.Stmt
    edges []_Edge
    decl  []*ir.Variable
}

func newDestroyer(fn *ir.Function) *_Destroyer {
    return &_Destroyer {
        fn    : fn,
        head  : make(map[*ir.Label][]ir.Stmt),
        tail  : make(map[*ir.Label][]ir.Stmt),
        split : make(map[_Edge][]ir.Stmt),
    }
}

// defines reports whether the transfer of bb defines v. A copy of v can not
// be placed before such a transfer, the edge has to be split.
func defines(bb *ir.Block, v ir.Operand) bool {
    d := bb.Term.Def()
    return d != nil && v == ir.Operand(d)
}

func (self *_Destroyer) resolve(bb *ir.Block, phi *ir.Phi, idx map[*ir.Label]int) {
    bridge := self.fn.Arena.Derive(phi.Dst)
    self.decl = append(self.decl, bridge)
    self.head[bb.Label] = append(self.head[bb.Label], &ir.Move { Dst: phi.Dst, Src: bridge })

    /* copy the argument at the end of each predecessor */
    for _, a := range phi.Args {
        i, ok := idx[a.Pred]
        utils.Assert(ok, "destroy", "phi argument from undefined block %s in function %s", a.Pred, self.fn.Name)

        /* place the copy on the edge itself if needed */
        mv := &ir.Move { Dst: bridge, Src: a.Value }
        pred := self.fn.Blocks[i]

        /* split the edge when the transfer defines the argument */
        if !defines(pred, a.Value) {
            self.tail[a.Pred] = append(self.tail[a.Pred], mv)
            continue
        }

        /* remember the edge order */
        e := _Edge { from: a.Pred, to: bb.Label }
        if _, ok = self.split[e]; !ok {
            self.edges = append(self.edges, e)
        }

        /* add to the edge */
        self.split[e] = append(self.split[e], mv)
    }

    /* one bridge per Phi node */
    count(&BridgeCount, 1)
}

func (self *_Destroyer) destroy() *ir.Function {
    idx := self.fn.BlockIndex()
    bbs := make([]*ir.Block, 0, len(self.fn.Blocks))

    /* resolve every Phi node */
    for _, bb := range self.fn.Blocks {
        for _, v := range bb.Phis() {
            self.resolve(bb, v, idx)
        }
    }

    /* no Phi nodes at all */
    if len(self.decl) == 0 {
        return self.fn
    }

    /* labels of the blocks on split edges */
    sl := make(map[_Edge]*ir.Label, len(self.edges))
    for _, e := range self.edges {
        sl[e] = self.fn.Arena.NewLabel(e.from.Name() + "." + e.to.Name())
    }

    /* rebuild every block */
    for _, bb := range self.fn.Blocks {
        body := bb.Body()
        head := self.head[bb.Label]
        tail := self.tail[bb.Label]

        /* nothing to do */
        if len(head) == 0 && len(tail) == 0 && !self.splits(bb.Label) {
            bbs = append(bbs, bb)
            continue
        }

        /* head copies, body, then tail copies */
        ins := make([]ir.Stmt, 0, len(head) + len(body) + len(tail))
        ins = append(ins, head...)
        ins = append(ins, body...)
        ins = append(ins, tail...)

        /* redirect the split edges */
        from := bb.Label
        term := bb.Term.Retarget(func(p *ir.Label) *ir.Label {
            if s, ok := sl[_Edge { from: from, to: p }]; ok {
                return s
            } else {
                return p
            }
        })

        /* build the new block */
        bbs = append(bbs, bb.With(ins, term))
    }

    /* append the edge blocks */
    for _, e := range self.edges {
        ins := self.split[e]
        bbs = append(bbs, &ir.Block { Label: sl[e], Stmts: ins, Term: &ir.Jump { To: e.to } })
    }

    /* build the new function */
    ret := self.fn.WithBlocks(bbs)
    ret.Locals = append(append([]*ir.Variable(nil), self.fn.Locals...), self.decl...)
    count(&EdgeSplitCount, len(self.edges))
    return ret
}

func (self *_Destroyer) splits(p *ir.Label) bool {
    for _, e := range self.edges {
        if e.from == p {
            return true
        }
    }
    return false
}

// Destroy replaces every Phi node with copies through a fresh bridge
// variable: the Phi destination is assigned from the bridge at the head of
// its block, and each predecessor assigns its argument to the bridge right
// before its transfer. Simultaneous Phi assignments are not sequentialized.
func Destroy(fn *ir.Function) *ir.Function {
    return newDestroyer(fn).destroy()
}
