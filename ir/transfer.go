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

import (
    `fmt`
)

// Transfer terminates a block, every block has exactly one.
type Transfer interface {
    fmt.Stringer
    Def() *Variable
    Uses() []Operand
    Successors() []*Label
    Replace(def *Variable, uses []Operand) Transfer
    Retarget(fn func(*Label) *Label) Transfer
    Format(n Namer) string
    transfer()
}

func (*If)     transfer() {}
func (*Jump)   transfer() {}
func (*Return) transfer() {}
func (*Throw)  transfer() {}
func (*Call)   transfer() {}

type If struct {
    Cond Operand
    Then *Label
    Else *Label
}

func (self *If) String() string         { return self.Format(_RawNamer{}) }
func (self *If) Def() *Variable         { return nil }
func (self *If) Uses() []Operand        { return []Operand { self.Cond } }
func (self *If) Successors() []*Label   { return []*Label { self.Then, self.Else } }

func (self *If) Format(n Namer) string {
    return fmt.Sprintf("if %s then %s else %s", fmtop(n, self.Cond), n.Label(self.Then), n.Label(self.Else))
}

func (self *If) Replace(_ *Variable, uses []Operand) Transfer {
    checkuses(uses, 1, "if")
    return &If { Cond: uses[0], Then: self.Then, Else: self.Else }
}

func (self *If) Retarget(fn func(*Label) *Label) Transfer {
    if t, e := fn(self.Then), fn(self.Else); t == self.Then && e == self.Else {
        return self
    } else {
        return &If { Cond: self.Cond, Then: t, Else: e }
    }
}

type Jump struct {
    To *Label
}

func (self *Jump) String() string         { return self.Format(_RawNamer{}) }
func (self *Jump) Def() *Variable         { return nil }
func (self *Jump) Uses() []Operand        { return nil }
func (self *Jump) Successors() []*Label   { return []*Label { self.To } }
func (self *Jump) Format(n Namer) string  { return "goto " + n.Label(self.To) }

func (self *Jump) Replace(_ *Variable, uses []Operand) Transfer {
    checkuses(uses, 0, "goto")
    return self
}

func (self *Jump) Retarget(fn func(*Label) *Label) Transfer {
    if to := fn(self.To); to == self.To {
        return self
    } else {
        return &Jump { To: to }
    }
}

// Return leaves the function, Value is nil for functions returning void.
type Return struct {
    Value Operand
}

func (self *Return) String() string        { return self.Format(_RawNamer{}) }
func (self *Return) Def() *Variable        { return nil }
func (self *Return) Successors() []*Label  { return nil }

func (self *Return) Uses() []Operand {
    if self.Value == nil {
        return nil
    } else {
        return []Operand { self.Value }
    }
}

func (self *Return) Format(n Namer) string {
    if self.Value == nil {
        return "return"
    } else {
        return "return " + fmtop(n, self.Value)
    }
}

func (self *Return) Replace(_ *Variable, uses []Operand) Transfer {
    if self.Value == nil {
        checkuses(uses, 0, "return")
        return self
    } else {
        checkuses(uses, 1, "return")
        return &Return { Value: uses[0] }
    }
}

func (self *Return) Retarget(func(*Label) *Label) Transfer {
    return self
}

// Throw raises the pending exception out of the function.
type Throw struct{}

func (self *Throw) String() string                          { return "throw" }
func (self *Throw) Def() *Variable                          { return nil }
func (self *Throw) Uses() []Operand                         { return nil }
func (self *Throw) Successors() []*Label                    { return nil }
func (self *Throw) Format(Namer) string                     { return "throw" }
func (self *Throw) Retarget(func(*Label) *Label) Transfer   { return self }

func (self *Throw) Replace(_ *Variable, uses []Operand) Transfer {
    checkuses(uses, 0, "throw")
    return self
}

// Call invokes Callee and continues at Next, or at Catch when the callee
// throws and Catch is not nil.
type Call struct {
    Dst    *Variable
    Callee string
    Args   []Operand
    Catch  *Label
    Next   *Label
}

func (self *Call) String() string   { return self.Format(_RawNamer{}) }
func (self *Call) Def() *Variable   { return self.Dst }
func (self *Call) Uses() []Operand  { return self.Args }

func (self *Call) Successors() []*Label {
    if self.Catch == nil {
        return []*Label { self.Next }
    } else {
        return []*Label { self.Next, self.Catch }
    }
}

func (self *Call) Format(n Namer) string {
    var dst string
    var exc string

    /* optional destination */
    if self.Dst != nil {
        dst = n.Var(self.Dst) + " = "
    }

    /* optional exception handler */
    if self.Catch != nil {
        exc = " catch " + n.Label(self.Catch)
    }

    /* join them together */
    return fmt.Sprintf(
        "%scall %s(%s) next %s%s",
        dst,
        self.Callee,
        fmtops(n, self.Args),
        n.Label(self.Next),
        exc,
    )
}

func (self *Call) Replace(def *Variable, uses []Operand) Transfer {
    checkuses(uses, len(self.Args), "call")
    return &Call {
        Dst    : def,
        Callee : self.Callee,
        Args   : append([]Operand(nil), uses...),
        Catch  : self.Catch,
        Next   : self.Next,
    }
}

func (self *Call) Retarget(fn func(*Label) *Label) Transfer {
    var exc *Label
    var nxt = fn(self.Next)

    /* the exception edge is optional */
    if self.Catch != nil {
        exc = fn(self.Catch)
    }

    /* nothing changed */
    if nxt == self.Next && exc == self.Catch {
        return self
    }

    /* build a new call */
    return &Call {
        Dst    : self.Dst,
        Callee : self.Callee,
        Args   : self.Args,
        Catch  : exc,
        Next   : nxt,
    }
}
