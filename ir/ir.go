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
    `strconv`
    `strings`
)

// Namer spells variables and labels for textual dumps.
type Namer interface {
    Var(v *Variable) string
    Label(p *Label) string
}

type _RawNamer struct{}
func (_RawNamer) Var(v *Variable) string { return v.String() }
func (_RawNamer) Label(p *Label) string  { return p.String() }

type Operand interface {
    fmt.Stringer
    operand()
}

type (
    IntConst int64
    StrConst string
)

func (IntConst) operand() {}
func (StrConst) operand() {}

func (self IntConst) String() string {
    return strconv.FormatInt(int64(self), 10)
}

func (self StrConst) String() string {
    return strconv.Quote(string(self))
}

func fmtop(n Namer, v Operand) string {
    if p, ok := v.(*Variable); ok {
        return n.Var(p)
    } else {
        return v.String()
    }
}

func fmtops(n Namer, v []Operand) string {
    ret := make([]string, 0, len(v))
    for _, p := range v { ret = append(ret, fmtop(n, p)) }
    return strings.Join(ret, ", ")
}

// Mem is a memory reference read by Load or written by Store.
type Mem interface {
    Uses() []Operand
    replace(uses []Operand) Mem
    format(n Namer) string
}

type Field struct {
    Obj  Operand
    Name string
}

func (self Field) Uses() []Operand {
    return []Operand { self.Obj }
}

func (self Field) replace(uses []Operand) Mem {
    return Field { Obj: uses[0], Name: self.Name }
}

func (self Field) format(n Namer) string {
    return fmt.Sprintf("%s field %s", fmtop(n, self.Obj), self.Name)
}

type Elem struct {
    Arr   Operand
    Index Operand
}

func (self Elem) Uses() []Operand {
    return []Operand { self.Arr, self.Index }
}

func (self Elem) replace(uses []Operand) Mem {
    return Elem { Arr: uses[0], Index: uses[1] }
}

func (self Elem) format(n Namer) string {
    return fmt.Sprintf("%s elem %s", fmtop(n, self.Arr), fmtop(n, self.Index))
}

// Stmt is a non-terminating statement. Statements are values: passes never
// modify one in place, Replace returns a new statement.
type Stmt interface {
    fmt.Stringer
    Def() *Variable
    Uses() []Operand
    Replace(def *Variable, uses []Operand) Stmt
    Format(n Namer) string
    stmt()
}

func (*Move)      stmt() {}
func (*BinOp)     stmt() {}
func (*UnOp)      stmt() {}
func (*Load)      stmt() {}
func (*Store)     stmt() {}
func (*NewObject) stmt() {}
func (*NewArray)  stmt() {}
func (*TryEnter)  stmt() {}
func (*TryExit)   stmt() {}
func (*Phi)       stmt() {}

func checkuses(uses []Operand, n int, who string) {
    if len(uses) != n {
        panic(fmt.Sprintf("%s: expected %d operands, got %d", who, n, len(uses)))
    }
}

type Move struct {
    Dst *Variable
    Src Operand
}

func (self *Move) String() string         { return self.Format(_RawNamer{}) }
func (self *Move) Def() *Variable         { return self.Dst }
func (self *Move) Uses() []Operand        { return []Operand { self.Src } }
func (self *Move) Format(n Namer) string  { return fmt.Sprintf("%s = %s", n.Var(self.Dst), fmtop(n, self.Src)) }

func (self *Move) Replace(def *Variable, uses []Operand) Stmt {
    checkuses(uses, 1, "move")
    return &Move { Dst: def, Src: uses[0] }
}

type BinOp struct {
    Dst *Variable
    Op  BinaryOp
    X   Operand
    Y   Operand
}

func (self *BinOp) String() string  { return self.Format(_RawNamer{}) }
func (self *BinOp) Def() *Variable  { return self.Dst }
func (self *BinOp) Uses() []Operand { return []Operand { self.X, self.Y } }

func (self *BinOp) Format(n Namer) string {
    return fmt.Sprintf("%s = %s %s, %s", n.Var(self.Dst), self.Op, fmtop(n, self.X), fmtop(n, self.Y))
}

func (self *BinOp) Replace(def *Variable, uses []Operand) Stmt {
    checkuses(uses, 2, "binop")
    return &BinOp { Dst: def, Op: self.Op, X: uses[0], Y: uses[1] }
}

type UnOp struct {
    Dst *Variable
    Op  UnaryOp
    X   Operand
}

func (self *UnOp) String() string         { return self.Format(_RawNamer{}) }
func (self *UnOp) Def() *Variable         { return self.Dst }
func (self *UnOp) Uses() []Operand        { return []Operand { self.X } }
func (self *UnOp) Format(n Namer) string  { return fmt.Sprintf("%s = %s %s", n.Var(self.Dst), self.Op, fmtop(n, self.X)) }

func (self *UnOp) Replace(def *Variable, uses []Operand) Stmt {
    checkuses(uses, 1, "unop")
    return &UnOp { Dst: def, Op: self.Op, X: uses[0] }
}

type Load struct {
    Dst *Variable
    Mem Mem
}

func (self *Load) String() string         { return self.Format(_RawNamer{}) }
func (self *Load) Def() *Variable         { return self.Dst }
func (self *Load) Uses() []Operand        { return self.Mem.Uses() }
func (self *Load) Format(n Namer) string  { return fmt.Sprintf("%s = load %s", n.Var(self.Dst), self.Mem.format(n)) }

func (self *Load) Replace(def *Variable, uses []Operand) Stmt {
    checkuses(uses, len(self.Mem.Uses()), "load")
    return &Load { Dst: def, Mem: self.Mem.replace(uses) }
}

type Store struct {
    Mem Mem
    Src Operand
}

func (self *Store) String() string  { return self.Format(_RawNamer{}) }
func (self *Store) Def() *Variable  { return nil }
func (self *Store) Uses() []Operand { return append(self.Mem.Uses(), self.Src) }

func (self *Store) Format(n Namer) string {
    return fmt.Sprintf("store %s, %s", self.Mem.format(n), fmtop(n, self.Src))
}

func (self *Store) Replace(_ *Variable, uses []Operand) Stmt {
    nb := len(self.Mem.Uses())
    checkuses(uses, nb + 1, "store")
    return &Store { Mem: self.Mem.replace(uses[:nb]), Src: uses[nb] }
}

type NewObject struct {
    Dst   *Variable
    Class string
}

func (self *NewObject) String() string         { return self.Format(_RawNamer{}) }
func (self *NewObject) Def() *Variable         { return self.Dst }
func (self *NewObject) Uses() []Operand        { return nil }
func (self *NewObject) Format(n Namer) string  { return fmt.Sprintf("%s = new %s", n.Var(self.Dst), self.Class) }

func (self *NewObject) Replace(def *Variable, uses []Operand) Stmt {
    checkuses(uses, 0, "new")
    return &NewObject { Dst: def, Class: self.Class }
}

type NewArray struct {
    Dst  *Variable
    Elem Type
    Size Operand
}

func (self *NewArray) String() string  { return self.Format(_RawNamer{}) }
func (self *NewArray) Def() *Variable  { return self.Dst }
func (self *NewArray) Uses() []Operand { return []Operand { self.Size } }

func (self *NewArray) Format(n Namer) string {
    return fmt.Sprintf("%s = newarray %s, %s", n.Var(self.Dst), self.Elem, fmtop(n, self.Size))
}

func (self *NewArray) Replace(def *Variable, uses []Operand) Stmt {
    checkuses(uses, 1, "newarray")
    return &NewArray { Dst: def, Elem: self.Elem, Size: uses[0] }
}

// TryEnter marks the start of an exception scope handled at Handler.
type TryEnter struct {
    Handler *Label
}

func (self *TryEnter) String() string         { return self.Format(_RawNamer{}) }
func (self *TryEnter) Def() *Variable         { return nil }
func (self *TryEnter) Uses() []Operand        { return nil }
func (self *TryEnter) Format(n Namer) string  { return "try.enter " + n.Label(self.Handler) }

func (self *TryEnter) Replace(_ *Variable, uses []Operand) Stmt {
    checkuses(uses, 0, "try.enter")
    return self
}

// TryExit marks the end of the exception scope handled at Handler.
type TryExit struct {
    Handler *Label
}

func (self *TryExit) String() string         { return self.Format(_RawNamer{}) }
func (self *TryExit) Def() *Variable         { return nil }
func (self *TryExit) Uses() []Operand        { return nil }
func (self *TryExit) Format(n Namer) string  { return "try.exit " + n.Label(self.Handler) }

func (self *TryExit) Replace(_ *Variable, uses []Operand) Stmt {
    checkuses(uses, 0, "try.exit")
    return self
}

// PhiArg is the value a Phi selects when control arrives from Pred.
type PhiArg struct {
    Value Operand
    Pred  *Label
}

type Phi struct {
    Dst  *Variable
    Args []PhiArg
}

func (self *Phi) String() string { return self.Format(_RawNamer{}) }
func (self *Phi) Def() *Variable { return self.Dst }

func (self *Phi) Uses() []Operand {
    ret := make([]Operand, len(self.Args))
    for i, a := range self.Args { ret[i] = a.Value }
    return ret
}

func (self *Phi) Format(n Namer) string {
    ret := make([]string, 0, len(self.Args))
    for _, a := range self.Args {
        ret = append(ret, fmt.Sprintf("%s (%s)", fmtop(n, a.Value), n.Label(a.Pred)))
    }
    return fmt.Sprintf("%s = phi %s", n.Var(self.Dst), strings.Join(ret, ", "))
}

func (self *Phi) Replace(def *Variable, uses []Operand) Stmt {
    checkuses(uses, len(self.Args), "phi")
    ret := &Phi { Dst: def, Args: make([]PhiArg, len(self.Args)) }
    for i, a := range self.Args { ret.Args[i] = PhiArg { Value: uses[i], Pred: a.Pred } }
    return ret
}

// Arg returns the value selected when arriving from pred.
func (self *Phi) Arg(pred *Label) (Operand, bool) {
    for _, a := range self.Args {
        if a.Pred == pred {
            return a.Value, true
        }
    }
    return nil, false
}
