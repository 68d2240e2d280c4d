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

package utils

import (
    `fmt`
    `path/filepath`
    `runtime`
)

// InternalError occures when a compiler pass finds one of its invariants
// violated. It is never returned, only raised with panic.
type InternalError struct {
    File   string
    Line   int
    Pass   string
    Reason string
}

func (self *InternalError) Error() string {
    return fmt.Sprintf("internal error at %s:%d (%s): %s", self.File, self.Line, self.Pass, self.Reason)
}

func einternal(skip int, pass string, reason string) *InternalError {
    _, file, line, ok := runtime.Caller(skip)
    if !ok {
        file, line = "???", 0
    }
    return &InternalError {
        File   : filepath.Base(file),
        Line   : line,
        Pass   : pass,
        Reason : reason,
    }
}

// Fatalf aborts the compilation, recording the location of its caller.
func Fatalf(pass string, format string, args ...interface{}) {
    panic(einternal(2, pass, fmt.Sprintf(format, args...)))
}

// Assert aborts the compilation if cond does not hold.
func Assert(cond bool, pass string, format string, args ...interface{}) {
    if !cond {
        panic(einternal(2, pass, fmt.Sprintf(format, args...)))
    }
}
