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

type Block struct {
    Label *Label
    Stmts []Stmt
    Term  Transfer
}

// Phis returns the Phi statements heading the block.
func (self *Block) Phis() (r []*Phi) {
    for _, v := range self.Stmts {
        if p, ok := v.(*Phi); ok {
            r = append(r, p)
        } else {
            break
        }
    }
    return
}

// Body returns the statements following the leading Phi statements.
func (self *Block) Body() []Stmt {
    for i, v := range self.Stmts {
        if _, ok := v.(*Phi); !ok {
            return self.Stmts[i:]
        }
    }
    return nil
}

// With returns a copy of the block carrying new contents.
func (self *Block) With(stmts []Stmt, term Transfer) *Block {
    return &Block {
        Label : self.Label,
        Stmts : stmts,
        Term  : term,
    }
}

type Function struct {
    Name   string
    Return Type
    Params []*Variable
    Locals []*Variable
    Blocks []*Block
    Entry  *Label
    Exit   *Label
    Result *Variable
    Arena  *Arena
}

// Clone returns a shallow copy of the function. The block and declaration
// slices are shared until replaced.
func (self *Function) Clone() *Function {
    ret := new(Function)
    *ret = *self
    return ret
}

// WithBlocks returns a copy of the function carrying a new block list.
func (self *Function) WithBlocks(bb []*Block) *Function {
    ret := self.Clone()
    ret.Blocks = bb
    return ret
}

// Block returns the block labelled p, or nil if there is none.
func (self *Function) Block(p *Label) *Block {
    for _, bb := range self.Blocks {
        if bb.Label == p {
            return bb
        }
    }
    return nil
}

// BlockIndex maps every label to the position of its block.
func (self *Function) BlockIndex() map[*Label]int {
    ret := make(map[*Label]int, len(self.Blocks))
    for i, bb := range self.Blocks { ret[bb.Label] = i }
    return ret
}

// NumStmts counts statements of all blocks, transfers excluded.
func (self *Function) NumStmts() (n int) {
    for _, bb := range self.Blocks { n += len(bb.Stmts) }
    return
}

// NumPhis counts Phi statements of all blocks.
func (self *Function) NumPhis() (n int) {
    for _, bb := range self.Blocks { n += len(bb.Phis()) }
    return
}

func (self *Function) String() string {
    return Print(self)
}
