/*
 * Copyright 2022 CloudWeGo Authors
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

// Package ssac is the middle end of the compiler: it takes flat functions
// produced by the front end, converts them into SSA form, optimizes them and
// converts them back into flat functions for the code generators.
package ssac

import (
	"fmt"

	"github.com/cloudwego/ssac/internal/opts"
	"github.com/cloudwego/ssac/internal/ssa"
	"github.com/cloudwego/ssac/ir"
	"go.uber.org/zap"
)

// Compile optimizes every function in order, one function at a time.
//
// Functions violating the input contract (unresolved labels, missing
// terminators, Phi nodes) are rejected with an error wrapping ir.ErrInvalid.
// Violations of internal invariants panic with an *InternalError.
func Compile(fns []*ir.Function, options ...Option) ([]*ir.Function, error) {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}

	/* validate all the input first */
	for _, fn := range fns {
		if err := ir.Validate(fn, false); err != nil {
			return nil, fmt.Errorf("ssac: %w", err)
		}
	}

	/* compile each function */
	ret := make([]*ir.Function, len(fns))
	for i, fn := range fns {
		o.Log().Debug("compile", zap.String("func", fn.Name), zap.Int("blocks", len(fn.Blocks)))
		ret[i] = ssa.Compile(fn, o)
	}
	return ret, nil
}

// CompileFunc is Compile for a single function.
func CompileFunc(fn *ir.Function, options ...Option) (*ir.Function, error) {
	if ret, err := Compile([]*ir.Function{fn}, options...); err != nil {
		return nil, err
	} else {
		return ret[0], nil
	}
}
