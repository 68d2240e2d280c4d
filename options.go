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

package ssac

import (
	"fmt"

	"github.com/cloudwego/ssac/internal/opts"
	"go.uber.org/zap"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithMaxRounds limits the number of constant propagation and dead code
// elimination rounds.
//
// Set this option to "0" disables this limit, which means iterating until
// neither pass changes the function any more.
//
// The default value of this option is "0".
func WithMaxRounds(rounds int) Option {
	if rounds < 0 {
		panic(fmt.Sprintf("ssac: invalid number of rounds: %d", rounds))
	} else {
		return func(o *opts.Options) { o.MaxRounds = rounds }
	}
}

// WithVerify checks the structural invariants of the function after every
// pass, and the SSA property after every pass working on SSA form.
//
// The default value of this option is "false".
func WithVerify(verify bool) Option {
	return func(o *opts.Options) { o.Verify = verify }
}

// WithLogger sets the logger receiving one debug entry per pass.
//
// The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	if logger == nil {
		panic("ssac: nil logger")
	} else {
		return func(o *opts.Options) { o.Logger = logger }
	}
}

// SetMaxRounds sets the default maximum rounds for all compilations from now
// on.
//
// This value can also be configured with the `SSAC_MAX_ROUNDS` environment
// variable.
//
// Returns the old opts.MaxRounds value.
func SetMaxRounds(rounds int) int {
	rounds, opts.MaxRounds = opts.MaxRounds, rounds
	return rounds
}

// SetVerify sets the default verification mode for all compilations from now
// on.
//
// This value can also be configured with the `SSAC_VERIFY` environment
// variable.
//
// Returns the old opts.Verify value.
func SetVerify(verify bool) bool {
	verify, opts.Verify = opts.Verify, verify
	return verify
}
