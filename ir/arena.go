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

    `fortio.org/safecast`
    `github.com/bytedance/gopkg/util/xxhash3`
)

// Type is the elaborated type of a variable, as spelled by the front end
// (e.g. "int", "string", "Point", "int[]").
type Type string

const (
    TypeVoid   Type = "void"
    TypeInt    Type = "int"
    TypeBool   Type = "bool"
    TypeString Type = "string"
)

// Variable is an opaque identity. Two variables are the same iff they are
// the same pointer, regardless of their spelling.
type Variable struct {
    id     uint32
    name   string
    vt     Type
    origin *Variable
}

// Id returns the dense index of the variable inside its arena, suitable for
// indexing side tables.
func (self *Variable) Id() int {
    return int(self.id)
}

func (self *Variable) Name() string {
    return self.name
}

func (self *Variable) Type() Type {
    return self.vt
}

// Origin returns the variable this one was derived from by renaming, or the
// variable itself when it was created directly.
func (self *Variable) Origin() *Variable {
    if self.origin == nil {
        return self
    } else {
        return self.origin
    }
}

// Hash returns a stable hash of the variable identity.
func (self *Variable) Hash() uint64 {
    return xxhash3.HashString(self.name + "#" + strconv.FormatUint(uint64(self.id), 10))
}

func (self *Variable) String() string {
    return fmt.Sprintf("%%%s#%d", self.name, self.id)
}

func (self *Variable) operand() {}

// Label is an opaque identity of a basic block.
type Label struct {
    id   uint32
    name string
}

func (self *Label) Id() int {
    return int(self.id)
}

func (self *Label) Name() string {
    return self.name
}

func (self *Label) Hash() uint64 {
    return xxhash3.HashString(self.name + "@" + strconv.FormatUint(uint64(self.id), 10))
}

func (self *Label) String() string {
    return fmt.Sprintf("%s#%d", self.name, self.id)
}

// Arena owns every variable and label of a compilation. Identities are
// allocated densely, so analysis passes keep their side tables in slices
// indexed by Id instead of attaching data to the IR values.
type Arena struct {
    vars   []*Variable
    labels []*Label
}

func NewArena() *Arena {
    return new(Arena)
}

func nextId(n int) uint32 {
    id, err := safecast.Conv[uint32](n)
    if err != nil {
        panic(fmt.Errorf("ir: arena overflow: %w", err))
    }
    return id
}

// NewVariable allocates a new variable identity.
func (self *Arena) NewVariable(name string, vt Type) *Variable {
    v := &Variable {
        id   : nextId(len(self.vars)),
        name : name,
        vt   : vt,
    }
    self.vars = append(self.vars, v)
    return v
}

// Derive allocates a fresh variable with the same spelling and type as v,
// remembering v's origin.
func (self *Arena) Derive(v *Variable) *Variable {
    p := &Variable {
        id     : nextId(len(self.vars)),
        name   : v.name,
        vt     : v.vt,
        origin : v.Origin(),
    }
    self.vars = append(self.vars, p)
    return p
}

// NewLabel allocates a new label identity.
func (self *Arena) NewLabel(name string) *Label {
    p := &Label {
        id   : nextId(len(self.labels)),
        name : name,
    }
    self.labels = append(self.labels, p)
    return p
}

func (self *Arena) NumVariables() int {
    return len(self.vars)
}

func (self *Arena) NumLabels() int {
    return len(self.labels)
}

func (self *Arena) Variable(id int) *Variable {
    return self.vars[id]
}

func (self *Arena) Label(id int) *Label {
    return self.labels[id]
}
