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
    `github.com/cloudwego/ssac/internal/opts`
    `github.com/cloudwego/ssac/internal/utils`
    `github.com/cloudwego/ssac/ir`
    `go.uber.org/zap`
)

// Pass transforms a function into a new one, returning the very same
// function if nothing changed.
type Pass interface {
    Apply(fn *ir.Function) *ir.Function
}

// PassFunc adapts a plain function to a Pass.
type PassFunc func(fn *ir.Function) *ir.Function

func (self PassFunc) Apply(fn *ir.Function) *ir.Function {
    return self(fn)
}

type PassDescriptor struct {
    Pass Pass
    Name string
    SSA  bool
}

var Prepare = [...]PassDescriptor {
    { Name: "Dead Block Elimination"    , Pass: new(DeadBlockElim) },
    { Name: "Trivial Block Elimination" , Pass: new(TrivialBlockElim) },
    { Name: "Block Merging"             , Pass: new(BlockMerge) },
    { Name: "SSA Construction"          , Pass: PassFunc(Build), SSA: true },
}

var Optimize = [...]PassDescriptor {
    { Name: "Constant Propagation"  , Pass: new(ConstProp), SSA: true },
    { Name: "Dead Code Elimination" , Pass: new(DCE), SSA: true },
}

// Finalize cleans up the blocks once more, landing blocks and preheaders
// added by SSA construction may be left empty by the optimizations.
var Finalize = [...]PassDescriptor {
    { Name: "SSA Destruction"           , Pass: PassFunc(Destroy) },
    { Name: "Trivial Block Elimination" , Pass: new(TrivialBlockElim) },
    { Name: "Block Merging"             , Pass: new(BlockMerge) },
}

type _Compiler struct {
    o   opts.Options
    log *zap.Logger
}

func (self _Compiler) verify(p PassDescriptor, fn *ir.Function) {
    var err error
    if p.SSA {
        err = Verify(fn)
    } else {
        err = ir.Validate(fn, false)
    }
    if err != nil {
        utils.Fatalf("verify", "after %s: %v", p.Name, err)
    }
}

func (self _Compiler) run(p PassDescriptor, fn *ir.Function) *ir.Function {
    ret := p.Pass.Apply(fn)

    /* the fingerprint prints the whole function, only compute it when logged */
    if ce := self.log.Check(zap.DebugLevel, p.Name); ce != nil {
        ce.Write(
            zap.String("func", fn.Name),
            zap.Bool("changed", ret != fn),
            zap.Int("blocks", len(ret.Blocks)),
            zap.Int("stmts", ret.NumStmts()),
            zap.Int("phis", ret.NumPhis()),
            zap.Uint64("fingerprint", ir.Fingerprint(ret)),
        )
    }

    /* verify the result if needed */
    if self.o.Verify {
        self.verify(p, ret)
    }
    return ret
}

// Compile runs the whole pipeline on a single function: block level cleanup,
// SSA construction, constant propagation and dead code elimination until
// neither changes anything, then SSA destruction and a final block cleanup.
func Compile(fn *ir.Function, o opts.Options) *ir.Function {
    cc := _Compiler { o: o, log: o.Log() }

    /* clean up the blocks and build the SSA form */
    for _, p := range Prepare {
        fn = cc.run(p, fn)
    }

    /* optimize until the fixed point */
    for round := 0; o.CanIterate(round); round++ {
        old := fn
        for _, p := range Optimize {
            fn = cc.run(p, fn)
        }
        if fn == old {
            cc.log.Debug("fixed point", zap.String("func", fn.Name), zap.Int("rounds", round + 1))
            break
        }
    }

    /* destroy the SSA form */
    for _, p := range Finalize {
        fn = cc.run(p, fn)
    }
    return fn
}
