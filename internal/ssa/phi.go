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
    `github.com/cloudwego/ssac/ir`
    `github.com/oleiade/lane`
)

// _PhiSlot is a Phi node under construction. The destination and the
// arguments are filled in while renaming.
type _PhiSlot struct {
    v    *ir.Variable
    dst  *ir.Variable
    args []ir.PhiArg
}

func (self *_PhiSlot) set(pred *ir.Label, v ir.Operand) {
    for i := range self.args {
        if self.args[i].Pred == pred {
            self.args[i].Value = v
        }
    }
}

func (self *_PhiSlot) build() *ir.Phi {
    return &ir.Phi {
        Dst  : self.dst,
        Args : self.args,
    }
}

// _DefSites records, per variable, the blocks that define it.
type _DefSites struct {
    vars  []*ir.Variable
    sites [][]int
}

func (self *_DefSites) add(v *ir.Variable, bb int) {
    id := v.Id()
    rem := self.sites[id]

    /* first definition of this variable */
    if len(rem) == 0 {
        self.vars = append(self.vars, v)
    }

    /* blocks are visited in order, so only the last one may duplicate */
    if len(rem) == 0 || rem[len(rem) - 1] != bb {
        self.sites[id] = append(rem, bb)
    }
}

func (self *_DefSites) defines(v *ir.Variable, bb int) bool {
    for _, i := range self.sites[v.Id()] {
        if i == bb {
            return true
        }
    }
    return false
}

func collectDefSites(cfg *CFG) *_DefSites {
    fn := cfg.Func
    ret := &_DefSites { sites: make([][]int, fn.Arena.NumVariables()) }

    /* parameters are defined on entry */
    for _, v := range fn.Params {
        ret.add(v, cfg.Entry())
    }

    /* ordinary statements and call results */
    for i, bb := range fn.Blocks {
        for _, v := range bb.Body() {
            if d := v.Def(); d != nil {
                ret.add(d, i)
            }
        }
        if d := bb.Term.Def(); d != nil && !guarded(bb.Term) {
            ret.add(d, i)
        }
    }

    /* all done */
    return ret
}

// insertPhis places Phi nodes on the iterated dominance frontier of the
// definition sites of every variable.
func insertPhis(cfg *CFG, df *graph.DominanceFrontier[*ir.Block], ds *_DefSites) [][]*_PhiSlot {
    nb := cfg.Len()
    ret := make([][]*_PhiSlot, nb)

    /* place Phi nodes for every variable */
    for _, v := range ds.vars {
        q := lane.NewQueue()
        mark := make([]bool, nb)

        /* start from all the definition sites */
        for _, bb := range ds.sites[v.Id()] {
            q.Enqueue(bb)
        }

        /* a Phi node is also a definition, so the worklist grows */
        for !q.Empty() {
            n := q.Dequeue().(int)
            for _, y := range df.FrontierAt(n) {
                if !mark[y] {
                    mark[y] = true
                    ret[y] = append(ret[y], newPhiSlot(cfg, y, v))

                    /* blocks already defining v are in the worklist */
                    if !ds.defines(v, y) {
                        q.Enqueue(y)
                    }
                }
            }
        }
    }

    /* all done */
    return ret
}

func newPhiSlot(cfg *CFG, bb int, v *ir.Variable) *_PhiSlot {
    pred := cfg.PredecessorsAt(bb)
    args := make([]ir.PhiArg, len(pred))

    /* one argument per predecessor, all referencing v for now */
    for i, p := range pred {
        args[i] = ir.PhiArg {
            Value : v,
            Pred  : cfg.At(p).Label,
        }
    }

    /* build the slot */
    count(&PhiCount, 1)
    return &_PhiSlot { v: v, args: args }
}
