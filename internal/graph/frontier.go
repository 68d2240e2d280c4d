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

// DominanceFrontier maps every reachable vertex to its dominance frontier.
type DominanceFrontier[T any] struct {
    g  *Graph[T]
    dt *DominatorTree[T]
    df [][]int
    ok []bool
}

// BuildDominanceFrontier computes the frontiers bottom-up over the
// dominator tree, children before their parent.
func BuildDominanceFrontier[T any](g *Graph[T], dt *DominatorTree[T]) *DominanceFrontier[T] {
    ret := &DominanceFrontier[T] {
        g  : g,
        dt : dt,
        df : make([][]int, g.Len()),
        ok : make([]bool, g.Len()),
    }

    /* compute from the root */
    ret.compute(dt.root)
    return ret
}

func (self *DominanceFrontier[T]) compute(n int) {
    if self.ok[n] {
        return
    }

    /* children first */
    fs := newBitSet(self.g.Len())
    for _, c := range self.dt.kids[n] {
        self.compute(c)
    }

    /* DF_local: successors not immediately dominated by n */
    for _, y := range self.g.vs[n].succ {
        if self.dt.idom[y] != n {
            fs.add(y)
        }
    }

    /* DF_up: frontiers of the children that n does not immediately dominate */
    for _, c := range self.dt.kids[n] {
        for _, w := range self.df[c] {
            if self.dt.idom[w] != n || w == n {
                fs.add(w)
            }
        }
    }

    /* memoize the result */
    self.ok[n] = true
    self.df[n] = fs.slice()
}

// FrontierAt returns the indices of the frontier of the i-th vertex in
// ascending order.
func (self *DominanceFrontier[T]) FrontierAt(i int) []int {
    self.dt.check(i)
    return self.df[i]
}

// Frontier returns the dominance frontier of p.
func (self *DominanceFrontier[T]) Frontier(p T) []T {
    return self.g.items(self.FrontierAt(self.g.Index(p)))
}
