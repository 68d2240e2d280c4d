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

package graph

import (
    `math/bits`
)

// _BitSet is a fixed-width set of vertex indices.
type _BitSet []uint64

func newBitSet(n int) _BitSet {
    return make(_BitSet, (n + 63) / 64)
}

// fullBitSet returns a set holding every index in [0, n).
func fullBitSet(n int) _BitSet {
    ret := newBitSet(n)
    for i := range ret { ret[i] = ^uint64(0) }

    /* clear the tail bits */
    if r := n % 64; r != 0 {
        ret[len(ret) - 1] = (1 << r) - 1
    }
    return ret
}

func (self _BitSet) add(i int) {
    self[i / 64] |= 1 << (i % 64)
}

func (self _BitSet) del(i int) {
    self[i / 64] &^= 1 << (i % 64)
}

func (self _BitSet) has(i int) bool {
    return self[i / 64] & (1 << (i % 64)) != 0
}

func (self _BitSet) clone() _BitSet {
    return append(_BitSet(nil), self...)
}

func (self _BitSet) and(other _BitSet) {
    for i := range self {
        self[i] &= other[i]
    }
}

func (self _BitSet) equal(other _BitSet) bool {
    for i := range self {
        if self[i] != other[i] {
            return false
        }
    }
    return true
}

func (self _BitSet) count() (n int) {
    for _, w := range self { n += bits.OnesCount64(w) }
    return
}

// each calls fn for every index in ascending order.
func (self _BitSet) each(fn func(i int)) {
    for k, w := range self {
        for w != 0 {
            fn(k * 64 + bits.TrailingZeros64(w))
            w &= w - 1
        }
    }
}

func (self _BitSet) slice() []int {
    ret := make([]int, 0, self.count())
    self.each(func(i int) { ret = append(ret, i) })
    return ret
}
