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

package ir

// Builder assembles a function block by block. Labels are referenced by name
// and may be used before they are placed.
type Builder struct {
    fn    *Function
    bb    *Block
    refs  map[string]*Label
    pends map[string]bool
}

func CreateBuilder(arena *Arena, name string, ret Type) *Builder {
    return &Builder {
        fn    : &Function { Name: name, Return: ret, Arena: arena },
        refs  : make(map[string]*Label),
        pends : make(map[string]bool),
    }
}

func (self *Builder) ref(name string) *Label {
    if p, ok := self.refs[name]; ok {
        return p
    } else {
        p = self.fn.Arena.NewLabel(name)
        self.refs[name] = p
        self.pends[name] = true
        return p
    }
}

func (self *Builder) add(v Stmt) {
    if self.bb == nil {
        panic("statement outside of a block: " + v.String())
    } else {
        self.bb.Stmts = append(self.bb.Stmts, v)
    }
}

func (self *Builder) term(v Transfer) {
    if self.bb == nil {
        panic("transfer outside of a block: " + v.String())
    } else {
        self.bb.Term = v
        self.fn.Blocks = append(self.fn.Blocks, self.bb)
        self.bb = nil
    }
}

// Param declares a new parameter.
func (self *Builder) Param(name string, vt Type) *Variable {
    v := self.fn.Arena.NewVariable(name, vt)
    self.fn.Params = append(self.fn.Params, v)
    return v
}

// Local declares a new local variable.
func (self *Builder) Local(name string, vt Type) *Variable {
    v := self.fn.Arena.NewVariable(name, vt)
    self.fn.Locals = append(self.fn.Locals, v)
    return v
}

// Result designates the variable holding the return value.
func (self *Builder) Result(v *Variable) {
    self.fn.Result = v
}

// Exit designates the exit block.
func (self *Builder) Exit(name string) {
    self.fn.Exit = self.ref(name)
}

// Label starts a new block. An unterminated block falls through into it.
func (self *Builder) Label(name string) *Label {
    p := self.ref(name)

    /* check for duplications */
    if !self.pends[name] {
        panic("label " + name + " has already been placed")
    }

    /* fall through from the previous block */
    if self.bb != nil {
        self.term(&Jump { To: p })
    }

    /* the first block is the entry */
    if self.fn.Entry == nil {
        self.fn.Entry = p
    }

    /* start the new block */
    delete(self.pends, name)
    self.bb = &Block { Label: p }
    return p
}

func (self *Builder) Move(dst *Variable, src Operand) {
    self.add(&Move { Dst: dst, Src: src })
}

func (self *Builder) BinOp(dst *Variable, op BinaryOp, x Operand, y Operand) {
    self.add(&BinOp { Dst: dst, Op: op, X: x, Y: y })
}

func (self *Builder) UnOp(dst *Variable, op UnaryOp, x Operand) {
    self.add(&UnOp { Dst: dst, Op: op, X: x })
}

func (self *Builder) Load(dst *Variable, mem Mem) {
    self.add(&Load { Dst: dst, Mem: mem })
}

func (self *Builder) Store(mem Mem, src Operand) {
    self.add(&Store { Mem: mem, Src: src })
}

func (self *Builder) New(dst *Variable, class string) {
    self.add(&NewObject { Dst: dst, Class: class })
}

func (self *Builder) NewArray(dst *Variable, elem Type, size Operand) {
    self.add(&NewArray { Dst: dst, Elem: elem, Size: size })
}

func (self *Builder) TryEnter(handler string) {
    self.add(&TryEnter { Handler: self.ref(handler) })
}

func (self *Builder) TryExit(handler string) {
    self.add(&TryExit { Handler: self.ref(handler) })
}

func (self *Builder) Phi(dst *Variable, args ...PhiArg) {
    self.add(&Phi { Dst: dst, Args: args })
}

// Arg builds a Phi argument arriving from the block named pred.
func (self *Builder) Arg(v Operand, pred string) PhiArg {
    return PhiArg { Value: v, Pred: self.ref(pred) }
}

func (self *Builder) Jump(to string) {
    self.term(&Jump { To: self.ref(to) })
}

func (self *Builder) If(cond Operand, then string, els string) {
    self.term(&If { Cond: cond, Then: self.ref(then), Else: self.ref(els) })
}

func (self *Builder) Return(v Operand) {
    self.term(&Return { Value: v })
}

func (self *Builder) Throw() {
    self.term(&Throw{})
}

// Call terminates the block with a call continuing at next. Catch may be
// empty when the call has no exception handler.
func (self *Builder) Call(dst *Variable, callee string, args []Operand, next string, catch string) {
    var exc *Label
    if catch != "" {
        exc = self.ref(catch)
    }

    /* build the call */
    self.term(&Call {
        Dst    : dst,
        Callee : callee,
        Args   : args,
        Catch  : exc,
        Next   : self.ref(next),
    })
}

// Build returns the function. Every referenced label must have been placed
// and the last block must be terminated.
func (self *Builder) Build() *Function {
    for key := range self.pends {
        panic("labels are not fully resolved: " + key)
    }

    /* the last block must be terminated */
    if self.bb != nil {
        panic("block " + self.bb.Label.Name() + " is not terminated")
    }

    /* the exit defaults to the last block */
    if self.fn.Exit == nil && len(self.fn.Blocks) != 0 {
        self.fn.Exit = self.fn.Blocks[len(self.fn.Blocks) - 1].Label
    }

    /* return the function */
    return self.fn
}
