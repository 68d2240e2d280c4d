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
    `errors`
    `fmt`
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("ir: invalid function")

func invalid(fn *Function, format string, args ...interface{}) error {
    return fmt.Errorf("%w %s: %s", ErrInvalid, fn.Name, fmt.Sprintf(format, args...))
}

// Validate checks the structural invariants of a function: entry and exit
// labels resolve, labels are unique, every block is terminated and every
// transfer reaches blocks of this function. Phi statements are rejected
// unless allowPhi is set, in which case they must head their blocks and carry
// exactly one argument per distinct predecessor.
func Validate(fn *Function, allowPhi bool) error {
    if fn.Arena == nil {
        return invalid(fn, "missing arena")
    }

    /* index the blocks */
    idx := make(map[*Label]*Block, len(fn.Blocks))
    for _, bb := range fn.Blocks {
        if bb.Label == nil {
            return invalid(fn, "block without label")
        } else if _, ok := idx[bb.Label]; ok {
            return invalid(fn, "duplicated block %s", bb.Label)
        } else if bb.Term == nil {
            return invalid(fn, "block %s is not terminated", bb.Label)
        } else {
            idx[bb.Label] = bb
        }
    }

    /* entry and exit must resolve */
    if fn.Entry == nil || idx[fn.Entry] == nil {
        return invalid(fn, "entry block does not exist")
    } else if fn.Exit == nil || idx[fn.Exit] == nil {
        return invalid(fn, "exit block does not exist")
    }

    /* collect the predecessors */
    pred := make(map[*Label]map[*Label]bool, len(fn.Blocks))
    for _, bb := range fn.Blocks {
        for _, p := range bb.Term.Successors() {
            if idx[p] == nil {
                return invalid(fn, "block %s jumps to undefined block %s", bb.Label, p)
            } else if pred[p] == nil {
                pred[p] = map[*Label]bool { bb.Label: true }
            } else {
                pred[p][bb.Label] = true
            }
        }
    }

    /* check every statement */
    for _, bb := range fn.Blocks {
        head := true
        for _, v := range bb.Stmts {
            p, ok := v.(*Phi)

            /* ordinary statements */
            if !ok {
                head = false
                continue
            }

            /* Phi nodes must head the block */
            if !allowPhi {
                return invalid(fn, "unexpected phi in block %s: %s", bb.Label, p)
            } else if !head {
                return invalid(fn, "phi after ordinary statements in block %s: %s", bb.Label, p)
            } else if len(p.Args) != len(pred[bb.Label]) {
                return invalid(fn, "phi arity %d does not match in-degree %d of block %s: %s", len(p.Args), len(pred[bb.Label]), bb.Label, p)
            }

            /* each argument must come from a distinct predecessor */
            seen := make(map[*Label]bool, len(p.Args))
            for _, a := range p.Args {
                if !pred[bb.Label][a.Pred] || seen[a.Pred] {
                    return invalid(fn, "phi argument from non-predecessor %s in block %s: %s", a.Pred, bb.Label, p)
                } else {
                    seen[a.Pred] = true
                }
            }
        }
    }

    /* all checked */
    return nil
}
