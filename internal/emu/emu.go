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
    `errors`
    `fmt`

    `github.com/cloudwego/ssac/ir`
)

const (
    _DefaultStepLimit = 1000000
)

var (
    ErrStepLimit = errors.New("emu: step limit exceeded")
    ErrRuntime   = errors.New("emu: runtime error")
)

// Emulator interprets a function in any form: before SSA construction, in
// SSA form, or after SSA destruction.
type Emulator struct {
    Limit int
    fn    *ir.Function
    env   Env
    idx   map[*ir.Label]int
    regs  []Value
    trace []Call
    steps int
}

func New(fn *ir.Function, env Env) *Emulator {
    return &Emulator {
        Limit : _DefaultStepLimit,
        fn    : fn,
        env   : env,
        idx   : fn.BlockIndex(),
    }
}

func (self *Emulator) fault(bb *ir.Block, format string, args ...interface{}) error {
    return fmt.Errorf("%w in %s at block %s: %s", ErrRuntime, self.fn.Name, bb.Label.Name(), fmt.Sprintf(format, args...))
}

func (self *Emulator) value(bb *ir.Block, v ir.Operand) (Value, error) {
    switch p := v.(type) {
        case ir.IntConst     : return p, nil
        case ir.StrConst     : return p, nil
        case *ir.Variable    : {
            if id := p.Id(); id < len(self.regs) && self.regs[id] != nil {
                return self.regs[id], nil
            } else {
                return nil, self.fault(bb, "variable %s is not assigned", p)
            }
        }
        default: {
            return nil, self.fault(bb, "invalid operand %v", v)
        }
    }
}

func (self *Emulator) values(bb *ir.Block, vv []ir.Operand) ([]Value, error) {
    ret := make([]Value, len(vv))
    for i, v := range vv {
        if x, err := self.value(bb, v); err != nil {
            return nil, err
        } else {
            ret[i] = x
        }
    }
    return ret, nil
}

func (self *Emulator) set(v *ir.Variable, x Value) {
    self.regs[v.Id()] = x
}

func (self *Emulator) constant(bb *ir.Block, v ir.Operand) (ir.Operand, error) {
    if x, err := self.value(bb, v); err != nil {
        return nil, err
    } else if c, ok := x.(ir.Operand); !ok {
        return nil, self.fault(bb, "%s is not a scalar", x)
    } else {
        return c, nil
    }
}

func (self *Emulator) block(p *ir.Label) *ir.Block {
    if i, ok := self.idx[p]; ok {
        return self.fn.Blocks[i]
    } else {
        return nil
    }
}

// enter evaluates the Phi nodes of bb simultaneously.
func (self *Emulator) enter(bb *ir.Block, pred *ir.Label) error {
    phi := bb.Phis()
    val := make([]Value, len(phi))

    /* read all the arguments first */
    for i, p := range phi {
        if v, ok := p.Arg(pred); !ok {
            return self.fault(bb, "no phi argument for predecessor %v", pred)
        } else if x, err := self.value(bb, v); err != nil {
            return err
        } else {
            val[i] = x
        }
    }

    /* then assign them */
    for i, p := range phi {
        self.set(p.Dst, val[i])
    }
    return nil
}

func (self *Emulator) exec(bb *ir.Block, ins ir.Stmt) error {
    switch v := ins.(type) {
        case *ir.Move      : return self.move(bb, v)
        case *ir.UnOp      : return self.unop(bb, v)
        case *ir.BinOp     : return self.binop(bb, v)
        case *ir.Load      : return self.load(bb, v)
        case *ir.Store     : return self.store(bb, v)
        case *ir.NewObject : self.set(v.Dst, &Object { Class: v.Class, Fields: make(map[string]Value) }); return nil
        case *ir.NewArray  : return self.newarray(bb, v)
        case *ir.TryEnter  : return nil
        case *ir.TryExit   : return nil
        case *ir.Phi       : return nil
        default            : return self.fault(bb, "invalid statement %s", ins)
    }
}

func (self *Emulator) move(bb *ir.Block, v *ir.Move) error {
    if x, err := self.value(bb, v.Src); err != nil {
        return err
    } else {
        self.set(v.Dst, x)
        return nil
    }
}

func (self *Emulator) unop(bb *ir.Block, v *ir.UnOp) error {
    if x, err := self.constant(bb, v.X); err != nil {
        return err
    } else if r, ok := ir.FoldUnary(v.Op, x); !ok {
        return self.fault(bb, "cannot evaluate %s %s", v.Op, x)
    } else {
        self.set(v.Dst, r)
        return nil
    }
}

func (self *Emulator) binop(bb *ir.Block, v *ir.BinOp) error {
    if x, err := self.constant(bb, v.X); err != nil {
        return err
    } else if y, err := self.constant(bb, v.Y); err != nil {
        return err
    } else if r, ok := ir.FoldBinary(v.Op, x, y); !ok {
        return self.fault(bb, "cannot evaluate %s %s, %s", v.Op, x, y)
    } else {
        self.set(v.Dst, r)
        return nil
    }
}

// slot returns a getter and a setter for the memory cell referenced by mem.
func (self *Emulator) slot(bb *ir.Block, mem ir.Mem) (func() Value, func(Value), error) {
    switch m := mem.(type) {
        case ir.Field: {
            x, err := self.value(bb, m.Obj)
            if err != nil {
                return nil, nil, err
            }

            /* must be an object */
            obj, ok := x.(*Object)
            if !ok {
                return nil, nil, self.fault(bb, "%s is not an object", x)
            }

            /* unset fields read as zero */
            get := func() Value {
                if r, ok := obj.Fields[m.Name]; ok {
                    return r
                } else {
                    return ir.IntConst(0)
                }
            }

            /* build the accessors */
            return get, func(r Value) { obj.Fields[m.Name] = r }, nil
        }

        case ir.Elem: {
            x, err := self.value(bb, m.Arr)
            if err != nil {
                return nil, nil, err
            }

            /* must be an array */
            arr, ok := x.(*Array)
            if !ok {
                return nil, nil, self.fault(bb, "%s is not an array", x)
            }

            /* index must be in range */
            i, err := self.value(bb, m.Index)
            if err != nil {
                return nil, nil, err
            } else if n, ok := i.(ir.IntConst); !ok || n < 0 || int64(n) >= int64(len(arr.Data)) {
                return nil, nil, self.fault(bb, "index %s out of range [0, %d)", i, len(arr.Data))
            } else {
                return func() Value { return arr.Data[n] }, func(r Value) { arr.Data[n] = r }, nil
            }
        }

        default: {
            return nil, nil, self.fault(bb, "invalid memory reference %v", mem)
        }
    }
}

func (self *Emulator) load(bb *ir.Block, v *ir.Load) error {
    if get, _, err := self.slot(bb, v.Mem); err != nil {
        return err
    } else {
        self.set(v.Dst, get())
        return nil
    }
}

func (self *Emulator) store(bb *ir.Block, v *ir.Store) error {
    if _, put, err := self.slot(bb, v.Mem); err != nil {
        return err
    } else if x, err := self.value(bb, v.Src); err != nil {
        return err
    } else {
        put(x)
        return nil
    }
}

func (self *Emulator) newarray(bb *ir.Block, v *ir.NewArray) error {
    x, err := self.value(bb, v.Size)
    if err != nil {
        return err
    }

    /* size must be a non-negative integer */
    n, ok := x.(ir.IntConst)
    if !ok || n < 0 {
        return self.fault(bb, "invalid array size %s", x)
    }

    /* initialize with zero values */
    arr := &Array { Elem: v.Elem, Data: make([]Value, n) }
    for i := range arr.Data { arr.Data[i] = zero(v.Elem) }

    /* save the array */
    self.set(v.Dst, arr)
    return nil
}

func (self *Emulator) call(bb *ir.Block, v *ir.Call) (*ir.Label, bool, error) {
    args, err := self.values(bb, v.Args)
    if err != nil {
        return nil, false, err
    }

    /* record the call */
    ret, thrown, err := self.env.Call(v.Callee, args)
    rec := Call { Callee: v.Callee, Args: make([]string, len(args)), Thrown: thrown }

    /* stringify the arguments */
    for i, x := range args {
        rec.Args[i] = x.String()
    }

    /* the environment failed */
    if self.trace = append(self.trace, rec); err != nil {
        return nil, false, err
    }

    /* the callee throws */
    if thrown {
        return v.Catch, v.Catch == nil, nil
    }

    /* save the result */
    if v.Dst != nil {
        if ret == nil {
            ret = zero(v.Dst.Type())
        }
        self.set(v.Dst, ret)
    }

    /* continue with the next block */
    return v.Next, false, nil
}

// Run executes the function with the given arguments.
func (self *Emulator) Run(args ...Value) (*Outcome, error) {
    fn := self.fn
    self.regs = make([]Value, fn.Arena.NumVariables())
    self.trace, self.steps = nil, 0

    /* bind the parameters */
    if len(args) != len(fn.Params) {
        return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrRuntime, fn.Name, len(fn.Params), len(args))
    }
    for i, v := range fn.Params {
        self.set(v, args[i])
    }

    /* start from the entry block */
    var pred *ir.Label
    var next *ir.Label
    var bb = self.block(fn.Entry)

    /* execute block by block */
    for bb != nil {
        if err := self.enter(bb, pred); err != nil {
            return nil, err
        }

        /* execute the statements */
        for _, v := range bb.Stmts {
            if self.steps++; self.Limit > 0 && self.steps > self.Limit {
                return nil, ErrStepLimit
            } else if err := self.exec(bb, v); err != nil {
                return nil, err
            }
        }

        /* the terminator counts as a step as well */
        if self.steps++; self.Limit > 0 && self.steps > self.Limit {
            return nil, ErrStepLimit
        }

        /* execute the terminator */
        switch t := bb.Term.(type) {
            case *ir.Jump: {
                next = t.To
            }

            case *ir.If: {
                c, err := self.value(bb, t.Cond)
                if err != nil {
                    return nil, err
                }

                /* condition must be an integer */
                if n, ok := c.(ir.IntConst); !ok {
                    return nil, self.fault(bb, "condition %s is not an integer", c)
                } else if n != 0 {
                    next = t.Then
                } else {
                    next = t.Else
                }
            }

            case *ir.Return: {
                var err error
                var ret Value

                /* void functions return nothing */
                if t.Value != nil {
                    if ret, err = self.value(bb, t.Value); err != nil {
                        return nil, err
                    }
                }

                /* all done */
                return &Outcome { Value: ret, Trace: self.trace }, nil
            }

            case *ir.Throw: {
                return &Outcome { Thrown: true, Trace: self.trace }, nil
            }

            case *ir.Call: {
                var err error
                var exc bool

                /* uncaught exceptions leave the function */
                if next, exc, err = self.call(bb, t); err != nil {
                    return nil, err
                } else if exc {
                    return &Outcome { Thrown: true, Trace: self.trace }, nil
                }
            }

            default: {
                return nil, self.fault(bb, "invalid terminator %v", bb.Term)
            }
        }

        /* move to the next block */
        pred = bb.Label
        if bb = self.block(next); bb == nil {
            return nil, fmt.Errorf("%w: %s jumps to undefined block %s", ErrRuntime, fn.Name, next)
        }
    }

    /* entry block does not exist */
    return nil, fmt.Errorf("%w: %s has no entry block", ErrRuntime, fn.Name)
}

// Run executes fn with the given arguments.
func Run(fn *ir.Function, env Env, args ...Value) (*Outcome, error) {
    return New(fn, env).Run(args...)
}
