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
    `github.com/cloudwego/ssac/internal/utils`
)

// DominatorTree holds the dominator sets of a graph and the tree formed by
// immediate dominance. Vertices unreachable from the root are not part of
// the tree.
type DominatorTree[T any] struct {
    g     *Graph[T]
    root  int
    dom   []_BitSet
    idom  []int
    kids  [][]int
    reach []bool
    tree  *Graph[T]
}

// BuildDominatorTree computes dominators of g with the iterative data-flow
// formulation: every dominator set starts full and shrinks to the
// intersection of its predecessors' sets until nothing changes.
func BuildDominatorTree[T any](g *Graph[T], root T) *DominatorTree[T] {
    n := g.Len()
    r := g.Index(root)

    /* the root dominates only itself, everything else starts full */
    dom := make([]_BitSet, n)
    for i := range dom {
        if i != r {
            dom[i] = fullBitSet(n)
        } else {
            dom[i] = newBitSet(n)
            dom[i].add(r)
        }
    }

    /* iterate to the fixed point */
    for changed := true; changed; {
        changed = false

        /* dom[i] = {i} ∪ (∩ dom[p] for p in preds(i)) */
        for i := 0; i < n; i++ {
            if i == r || len(g.vs[i].pred) == 0 {
                continue
            }

            /* intersect all predecessors */
            ds := fullBitSet(n)
            for _, p := range g.vs[i].pred {
                ds.and(dom[p])
            }

            /* update if changed */
            if ds.add(i); !ds.equal(dom[i]) {
                dom[i] = ds
                changed = true
            }
        }
    }

    /* construct the tree */
    ret := &DominatorTree[T] {
        g     : g,
        root  : r,
        dom   : dom,
        idom  : make([]int, n),
        kids  : make([][]int, n),
        reach : g.Reachable(root),
        tree  : New[T](g.eq),
    }

    /* extract the immediate dominators */
    for i := range ret.idom {
        if ret.idom[i] = -1; i != r && ret.reach[i] {
            ret.idom[i] = ret.immediate(i)
        }
    }

    /* vertices of the tree keep the order of the graph */
    for i := 0; i < n; i++ {
        if ret.reach[i] {
            ret.tree.InsertVertex(g.At(i))
        }
    }

    /* edges point from the immediate dominator to the dominated vertex */
    for i, p := range ret.idom {
        if p >= 0 {
            ret.kids[p] = append(ret.kids[p], i)
            ret.tree.InsertEdge(g.At(p), g.At(i))
        }
    }

    /* all done */
    return ret
}

// immediate selects the strict dominator of i that is dominated by every
// other strict dominator of i.
func (self *DominatorTree[T]) immediate(i int) int {
    ds := self.dom[i].clone()
    ds.del(i)

    /* a candidate dominating another candidate is not immediate */
    for _, d := range ds.slice() {
        for _, e := range ds.slice() {
            if d != e && self.dom[e].has(d) {
                ds.del(d)
                break
            }
        }
    }

    /* exactly one must survive */
    rem := ds.slice()
    utils.Assert(len(rem) == 1, "dominator", "vertex %v has %d immediate dominator candidates", self.g.At(i), len(rem))
    return rem[0]
}

func (self *DominatorTree[T]) check(i int) {
    utils.Assert(self.reach[i], "dominator", "vertex %v is unreachable from the root", self.g.At(i))
}

// Root returns the index of the root vertex.
func (self *DominatorTree[T]) Root() int {
    return self.root
}

// IdomAt returns the index of the immediate dominator of the i-th vertex, or
// -1 for the root.
func (self *DominatorTree[T]) IdomAt(i int) int {
    self.check(i)
    return self.idom[i]
}

// ChildrenAt returns the indices of the vertices immediately dominated by
// the i-th vertex, in graph order.
func (self *DominatorTree[T]) ChildrenAt(i int) []int {
    return self.kids[i]
}

// DominatesAt reports whether the a-th vertex dominates the b-th vertex.
func (self *DominatorTree[T]) DominatesAt(a int, b int) bool {
    self.check(b)
    return self.dom[b].has(a)
}

// Idom returns the immediate dominator of p. The root has none, and
// querying it is an internal error, as is querying an unreachable vertex.
func (self *DominatorTree[T]) Idom(p T) T {
    i := self.IdomAt(self.g.Index(p))
    utils.Assert(i >= 0, "dominator", "root vertex %v has no immediate dominator", p)
    return self.g.At(i)
}

func (self *DominatorTree[T]) Children(p T) []T {
    return self.g.items(self.kids[self.g.Index(p)])
}

// Dominates reports whether a dominates b. Every vertex dominates itself.
func (self *DominatorTree[T]) Dominates(a T, b T) bool {
    return self.DominatesAt(self.g.Index(a), self.g.Index(b))
}

// StrictlyDominates reports whether a dominates b and a is not b.
func (self *DominatorTree[T]) StrictlyDominates(a T, b T) bool {
    i, j := self.g.Index(a), self.g.Index(b)
    return i != j && self.DominatesAt(i, j)
}

// Reachable reports whether p is reachable from the root.
func (self *DominatorTree[T]) Reachable(p T) bool {
    return self.reach[self.g.Index(p)]
}

// Dom returns every dominator of p, including p itself.
func (self *DominatorTree[T]) Dom(p T) []T {
    i := self.g.Index(p)
    self.check(i)
    return self.g.items(self.dom[i].slice())
}

// Tree returns the dominator tree as a graph with edges pointing from
// immediate dominators to the vertices they dominate.
func (self *DominatorTree[T]) Tree() *Graph[T] {
    return self.tree
}
