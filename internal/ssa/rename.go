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

type _Renamer struct {
    cfg    *CFG
    dt     *graph.DominatorTree[*ir.Block]
    phis   [][]*_PhiSlot
    stack  [][]*ir.Variable
    decls  []*ir.Variable
    stmts  [][]ir.Stmt
    terms  []ir.Transfer
    result *ir.Variable
}

func newRenamer(cfg *CFG, dt *graph.DominatorTree[*ir.Block], phis [][]*_PhiSlot) *_Renamer {
    return &_Renamer {
        cfg   : cfg,
        dt    : dt,
        phis  : phis,
        stack : make([][]*ir.Variable, cfg.Func.Arena.NumVariables()),
        stmts : make([][]ir.Stmt, cfg.Len()),
        terms : make([]ir.Transfer, cfg.Len()),
    }
}

func (self *_Renamer) peek(v *ir.Variable) (*ir.Variable, bool) {
    if id := v.Id(); id >= len(self.stack) {
        return nil, false
    } else if n := len(self.stack[id]); n == 0 {
        return nil, false
    } else {
        return self.stack[id][n - 1], true
    }
}

func (self *_Renamer) top(v *ir.Variable) *ir.Variable {
    p, ok := self.peek(v)
    utils.Assert(ok, "ssa", "variable %s is used before definition in function %s", v, self.cfg.Func.Name)
    return p
}

func (self *_Renamer) push(v *ir.Variable) *ir.Variable {
    p := self.cfg.Func.Arena.Derive(v)
    self.decls = append(self.decls, p)
    self.stack[v.Id()] = append(self.stack[v.Id()], p)
    return p
}

// bind makes v its own current name.
func (self *_Renamer) bind(v *ir.Variable) *ir.Variable {
    self.decls = append(self.decls, v)
    self.stack[v.Id()] = append(self.stack[v.Id()], v)
    return v
}

func (self *_Renamer) pop(v *ir.Variable) {
    n := len(self.stack[v.Id()])
    self.stack[v.Id()] = self.stack[v.Id()][:n - 1]
}

func (self *_Renamer) operands(ops []ir.Operand) []ir.Operand {
    ret := make([]ir.Operand, len(ops))
    for i, v := range ops {
        if p, ok := v.(*ir.Variable); ok {
            ret[i] = self.top(p)
        } else {
            ret[i] = v
        }
    }
    return ret
}

// zero is the value a Phi receives on an edge along which the variable was
// never assigned. Well-formed programs never observe it.
func zero(v *ir.Variable) ir.Operand {
    if v.Type() == ir.TypeString {
        return ir.StrConst("")
    } else {
        return ir.IntConst(0)
    }
}

// fillPhis sets the arguments of the Phi nodes of bb arriving from pred to
// the names currently live.
func (self *_Renamer) fillPhis(pred *ir.Label, bb int) {
    for _, p := range self.phis[bb] {
        if v, ok := self.peek(p.v); ok {
            p.set(pred, v)
        } else {
            p.set(pred, zero(p.v))
        }
    }
}

func (self *_Renamer) renameblock(n int) {
    var def *ir.Variable
    var buf []*ir.Variable

    /* rename Phi nodes */
    bb := self.cfg.At(n)
    ins := make([]ir.Stmt, 0, len(self.phis[n]) + len(bb.Stmts))

    /* Phi nodes define new names before anything else */
    for _, p := range self.phis[n] {
        buf = append(buf, p.v)
        p.dst = self.push(p.v)
    }

    /* rename body, uses before definitions */
    for _, v := range bb.Stmts {
        _, isphi := v.(*ir.Phi)
        utils.Assert(!isphi, "ssa", "function %s is already in SSA form", self.cfg.Func.Name)

        /* rename the statement */
        uses := self.operands(v.Uses())
        if def = v.Def(); def != nil {
            buf = append(buf, def)
            def = self.push(def)
        }

        /* add to the new body */
        ins = append(ins, v.Replace(def, uses))
    }

    /* rename the terminator, results of guarded calls are unique already */
    uses := self.operands(bb.Term.Uses())
    if def = bb.Term.Def(); def != nil {
        buf = append(buf, def)
        if guarded(bb.Term) {
            def = self.bind(def)
        } else {
            def = self.push(def)
        }
    }

    /* save the new block contents */
    self.stmts[n] = ins
    self.terms[n] = bb.Term.Replace(def, uses)

    /* rename all the Phi nodes of its successors */
    for _, y := range self.cfg.SuccessorsAt(n) {
        self.fillPhis(bb.Label, y)
    }

    /* the result is whatever is live at the end of the exit block */
    if bb.Label == self.cfg.Func.Exit && self.cfg.Func.Result != nil {
        self.result, _ = self.peek(self.cfg.Func.Result)
    }

    /* rename all its children in the dominator tree */
    for _, c := range self.dt.ChildrenAt(n) {
        self.renameblock(c)
    }

    /* pop the definitions */
    for _, v := range buf {
        self.pop(v)
    }
}

func (self *_Renamer) rename() *ir.Function {
    fn := self.cfg.Func.Clone()
    fn.Blocks = make([]*ir.Block, self.cfg.Len())

    /* parameters keep their identity, they are the initial names */
    for _, v := range fn.Params {
        self.stack[v.Id()] = append(self.stack[v.Id()], v)
    }

    /* rename from the root of the dominator tree */
    self.renameblock(self.dt.Root())

    /* assemble the new blocks */
    for i, bb := range self.cfg.Func.Blocks {
        ins := make([]ir.Stmt, 0, len(self.phis[i]) + len(self.stmts[i]))
        for _, p := range self.phis[i] { ins = append(ins, p.build()) }
        fn.Blocks[i] = bb.With(append(ins, self.stmts[i]...), self.terms[i])
    }

    /* one declaration per fresh name */
    fn.Locals = self.decls
    fn.Result = self.result
    return fn
}

// preheader gives the function a fresh entry block when the original entry
// is the target of some jump, so that Phi nodes placed at the old entry have
// an incoming edge carrying the parameters.
func preheader(fn *ir.Function) *ir.Function {
    for _, bb := range fn.Blocks {
        for _, p := range bb.Term.Successors() {
            if p == fn.Entry {
                ret := fn.Clone()
                ret.Entry = fn.Arena.NewLabel(fn.Entry.Name() + ".pre")
                ret.Blocks = append([]*ir.Block { { Label: ret.Entry, Term: &ir.Jump { To: fn.Entry } } }, fn.Blocks...)
                return ret
            }
        }
    }
    return fn
}

// guarded reports whether t is a call with an exception handler.
func guarded(t ir.Transfer) bool {
    call, ok := t.(*ir.Call)
    return ok && call.Catch != nil
}

// landing gives every guarded call with a result a fresh block on its normal
// edge. The call writes a temporary which is copied into the result there, so
// the handler never observes a value the call did not produce. The temporary
// is only read by the landing block, so it never needs a Phi node.
func landing(fn *ir.Function) *ir.Function {
    var ret []*ir.Block
    for i, bb := range fn.Blocks {
        call, ok := bb.Term.(*ir.Call)

        /* only guarded calls with a result, even if both edges coincide */
        if !ok || call.Dst == nil || !guarded(call) {
            if ret != nil {
                ret = append(ret, bb)
            }
            continue
        }

        /* copy on write */
        if ret == nil {
            ret = append([]*ir.Block(nil), fn.Blocks[:i]...)
        }

        /* the temporary and the landing block */
        tmp := fn.Arena.NewVariable(call.Dst.Name(), call.Dst.Type())
        pad := fn.Arena.NewLabel(bb.Label.Name() + "." + call.Next.Name())
        ins := []ir.Stmt { &ir.Move { Dst: call.Dst, Src: tmp } }

        /* redirect the normal edge */
        ret = append(ret, bb.With(bb.Stmts, &ir.Call {
            Dst    : tmp,
            Callee : call.Callee,
            Args   : call.Args,
            Catch  : call.Catch,
            Next   : pad,
        }))

        /* add the landing block right after the call */
        ret = append(ret, &ir.Block {
            Label : pad,
            Stmts : ins,
            Term  : &ir.Jump { To: call.Next },
        })
    }

    /* no such calls */
    if ret == nil {
        return fn
    } else {
        return fn.WithBlocks(ret)
    }
}

// Build converts a function into SSA form. Every block must be reachable
// from the entry and no Phi node may be present.
func Build(fn *ir.Function) *ir.Function {
    fn = landing(preheader(fn))
    cfg := NewCFG(fn)
    dt := cfg.Dominators()

    /* unreachable blocks have no dominators */
    for i, ok := range cfg.Reachable() {
        utils.Assert(ok, "ssa", "block %s of function %s is unreachable", fn.Blocks[i].Label, fn.Name)
    }

    /* insert Phi nodes, then rename everything */
    df := graph.BuildDominanceFrontier(cfg.Graph, dt)
    rr := newRenamer(cfg, dt, insertPhis(cfg, df, collectDefSites(cfg)))
    return rr.rename()
}
