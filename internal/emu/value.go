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

package emu

import (
    `fmt`
    `strings`

    `github.com/cloudwego/ssac/ir`
)

// Value is a runtime value: ir.IntConst, ir.StrConst, *Object or *Array.
type Value interface {
    fmt.Stringer
}

type Object struct {
    Class  string
    Fields map[string]Value
}

func (self *Object) String() string {
    return "&" + self.Class
}

type Array struct {
    Elem ir.Type
    Data []Value
}

func (self *Array) String() string {
    return fmt.Sprintf("[%d]%s", len(self.Data), self.Elem)
}

func zero(vt ir.Type) Value {
    if vt == ir.TypeString {
        return ir.StrConst("")
    } else {
        return ir.IntConst(0)
    }
}

// Call is one call made to the environment.
type Call struct {
    Callee string
    Args   []string
    Thrown bool
}

func (self Call) String() string {
    ret := fmt.Sprintf("%s(%s)", self.Callee, strings.Join(self.Args, ", "))
    if self.Thrown {
        ret += " throws"
    }
    return ret
}

// Outcome is the observable behavior of one execution.
type Outcome struct {
    Value  Value
    Thrown bool
    Trace  []Call
}

func (self *Outcome) String() string {
    var sb strings.Builder
    for _, c := range self.Trace {
        sb.WriteString(c.String())
        sb.WriteByte('\n')
    }
    switch {
        case self.Thrown      : sb.WriteString("throw")
        case self.Value == nil: sb.WriteString("return")
        default               : sb.WriteString("return " + self.Value.String())
    }
    return sb.String()
}

// Env performs the calls a function makes to the outside world.
type Env interface {
    Call(callee string, args []Value) (ret Value, thrown bool, err error)
}

// EnvFunc adapts a plain function to an Env.
type EnvFunc func(callee string, args []Value) (Value, bool, error)

func (self EnvFunc) Call(callee string, args []Value) (Value, bool, error) {
    return self(callee, args)
}
