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
    `github.com/cloudwego/ssac/internal/graph`
    `github.com/cloudwego/ssac/internal/utils`
    `github.com/cloudwego/ssac/ir`
)

// CFG is the control flow graph of a function, the i-th vertex holds the
// i-th block of the function.
type CFG struct {
    *graph.Graph[*ir.Block]
    Func  *ir.Function
    index map[*ir.Label]int
}

func sameBlock(a *ir.Block, b *ir.Block) bool {
    return a.Label == b.Label
}

func NewCFG(fn *ir.Function) *CFG {
    ret := &CFG {
        Graph : graph.New(sameBlock),
        Func  : fn,
        index : fn.BlockIndex(),
    }

    /* add all the blocks */
    for _, bb := range fn.Blocks {
        ret.InsertVertex(bb)
    }

    /* connect every block to its successors */
    for i, bb := range fn.Blocks {
        for _, p := range bb.Term.Successors() {
            ret.InsertEdgeAt(i, ret.IndexOf(p))
        }
    }

    /* all done */
    return ret
}

// IndexOf returns the vertex index of the block labelled p.
func (self *CFG) IndexOf(p *ir.Label) int {
    i, ok := self.index[p]
    utils.Assert(ok, "cfg", "block %s does not exist in function %s", p, self.Func.Name)
    return i
}

// Entry returns the vertex index of the entry block.
func (self *CFG) Entry() int {
    return self.IndexOf(self.Func.Entry)
}

func (self *CFG) Dominators() *graph.DominatorTree[*ir.Block] {
    return graph.BuildDominatorTree(self.Graph, self.Func.Blocks[self.Entry()])
}

// Reachable marks every block reachable from the entry.
func (self *CFG) Reachable() []bool {
    return self.Graph.Reachable(self.Func.Blocks[self.Entry()])
}
