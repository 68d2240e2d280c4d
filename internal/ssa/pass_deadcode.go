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
    `github.com/oleiade/lane`
)

// DCE removes definitions whose values are never used. Calls are never
// removed, only their unused results are dropped.
type DCE struct{}

type _UseTab struct {
    uses []int
    dead []bool
    refs []bool
    defs [][]ir.Operand
    call []bool
}

func newUseTab(n int) *_UseTab {
    return &_UseTab {
        uses : make([]int, n),
        dead : make([]bool, n),
        refs : make([]bool, n),
        defs : make([][]ir.Operand, n),
        call : make([]bool, n),
    }
}

func (self *_UseTab) use(ops []ir.Operand) {
    for _, v := range ops {
        if p, ok := v.(*ir.Variable); ok {
            self.uses[p.Id()]++
            self.refs[p.Id()] = true
        }
    }
}

func (self *_UseTab) define(fn *ir.Function, d *ir.Variable, uses []ir.Operand, call bool) {
    id := d.Id()
    utils.Assert(!self.call[id] && self.defs[id] == nil, "dce", "variable %s is defined more than once in function %s", d, fn.Name)

    /* Calls keep their arguments alive */
    if self.refs[id] = true; call {
        self.call[id] = true
    } else {
        self.defs[id] = append(make([]ir.Operand, 0, len(uses)), uses...)
    }
}

func (self *_UseTab) defined(id int) bool {
    return self.call[id] || self.defs[id] != nil
}

func (DCE) count(fn *ir.Function) *_UseTab {
    ret := newUseTab(fn.Arena.NumVariables())

    /* the result variable is always live */
    if fn.Result != nil {
        ret.use([]ir.Operand { fn.Result })
    }

    /* count every use and record every definition */
    for _, bb := range fn.Blocks {
        for _, v := range bb.Stmts {
            ret.use(v.Uses())
            if d := v.Def(); d != nil {
                ret.define(fn, d, v.Uses(), false)
            }
        }

        /* the terminator */
        ret.use(bb.Term.Uses())
        if d := bb.Term.Def(); d != nil {
            ret.define(fn, d, nil, true)
        }
    }

    /* all done */
    return ret
}

// mark marks unused definitions as dead, cascading into their operands.
func (DCE) mark(ut *_UseTab) int {
    n := 0
    q := lane.NewQueue()

    /* every unused definition is a candidate */
    for id, v := range ut.uses {
        if v == 0 && ut.defined(id) {
            q.Enqueue(id)
        }
    }

    /* marking a definition dead releases its operands */
    for !q.Empty() {
        id := q.Dequeue().(int)
        if ut.dead[id] {
            continue
        }

        /* mark as dead */
        n++
        ut.dead[id] = true

        /* decrease the use counts */
        for _, v := range ut.defs[id] {
            if p, ok := v.(*ir.Variable); ok {
                if ut.uses[p.Id()]--; ut.uses[p.Id()] == 0 && ut.defined(p.Id()) {
                    q.Enqueue(p.Id())
                }
            }
        }
    }

    /* all done */
    return n
}

func (self DCE) Apply(fn *ir.Function) *ir.Function {
    ut := self.count(fn)
    nd := self.mark(ut)
    nr := 0

    /* filter the declarations */
    decl := make([]*ir.Variable, 0, len(fn.Locals))
    for _, v := range fn.Locals {
        if id := v.Id(); ut.refs[id] && !ut.dead[id] {
            decl = append(decl, v)
        }
    }

    /* nothing to remove */
    if nd == 0 && len(decl) == len(fn.Locals) {
        return fn
    }

    /* rewrite every block */
    bbs := make([]*ir.Block, len(fn.Blocks))
    for i, bb := range fn.Blocks {
        ins := make([]ir.Stmt, 0, len(bb.Stmts))
        term := bb.Term

        /* drop statements defining dead variables */
        for _, v := range bb.Stmts {
            if d := v.Def(); d == nil || !ut.dead[d.Id()] {
                ins = append(ins, v)
            }
        }

        /* keep the call, drop the result */
        if d := term.Def(); d != nil && ut.dead[d.Id()] {
            term = term.Replace(nil, term.Uses())
        }

        /* keep the block if nothing changed */
        if nr += len(bb.Stmts) - len(ins); len(ins) == len(bb.Stmts) && term == bb.Term {
            bbs[i] = bb
        } else {
            bbs[i] = bb.With(ins, term)
        }
    }

    /* build the new function */
    ret := fn.WithBlocks(bbs)
    ret.Locals = decl
    count(&StmtRemoveCount, nr)
    return ret
}
