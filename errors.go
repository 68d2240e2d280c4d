/*
 * Copyright 2021 ByteDance Inc.
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
    `github.com/cloudwego/ssac/internal/utils`
    `github.com/cloudwego/ssac/ir`
)

// InternalError occures when an invariant of the compiler itself is violated.
// It is raised with panic, never returned.
type InternalError = utils.InternalError

// SyntaxError occures when failed to parse a textual IR dump.
type SyntaxError = ir.SyntaxError

// ErrInvalid is wrapped by errors reporting functions that violate the input
// contract.
var ErrInvalid = ir.ErrInvalid

// Recover converts a panic raised by an internal invariant violation into an
// error. Other panics propagate.
func Recover(err *error) {
    if v := recover(); v == nil {
        return
    } else if e, ok := v.(*InternalError); ok {
        *err = e
    } else {
        panic(v)
    }
}
