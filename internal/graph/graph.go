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
    `github.com/oleiade/lane`
)

type _Vertex[T any] struct {
    item T
    succ []int
    pred []int
}

// Edge is a directed edge between two payloads.
type Edge[T any] struct {
    From T
    To   T
}

// Graph is a payload-agnostic directed graph. Vertices are identified by the
// equality function given at construction, and numbered densely in insertion
// order so analyses can keep their results in slices.
type Graph[T any] struct {
    eq func(a T, b T) bool
    vs []*_Vertex[T]
}

func New[T any](eq func(a T, b T) bool) *Graph[T] {
    return &Graph[T] { eq: eq }
}

func (self *Graph[T]) find(p T) int {
    for i, v := range self.vs {
        if self.eq(v.item, p) {
            return i
        }
    }
    return -1
}

// Index returns the dense index of the vertex holding p. Looking up a
// payload that was never inserted is an internal error.
func (self *Graph[T]) Index(p T) int {
    i := self.find(p)
    utils.Assert(i >= 0, "graph", "vertex not found: %v", p)
    return i
}

// Has reports whether p has been inserted.
func (self *Graph[T]) Has(p T) bool {
    return self.find(p) >= 0
}

// InsertVertex adds p to the graph if not present yet, and returns its index.
func (self *Graph[T]) InsertVertex(p T) int {
    if i := self.find(p); i >= 0 {
        return i
    } else {
        self.vs = append(self.vs, &_Vertex[T] { item: p })
        return len(self.vs) - 1
    }
}

func containsInt(v []int, x int) bool {
    for _, p := range v {
        if p == x {
            return true
        }
    }
    return false
}

// InsertEdge adds an edge between two inserted vertices. Parallel edges
// collapse into one.
func (self *Graph[T]) InsertEdge(from T, to T) {
    self.link(self.Index(from), self.Index(to))
}

// InsertEdgeAt adds an edge between the i-th and the j-th vertices.
func (self *Graph[T]) InsertEdgeAt(i int, j int) {
    utils.Assert(i >= 0 && i < len(self.vs) && j >= 0 && j < len(self.vs), "graph", "edge %d -> %d out of range", i, j)
    self.link(i, j)
}

func (self *Graph[T]) link(i int, j int) {
    if !containsInt(self.vs[i].succ, j) {
        self.vs[i].succ = append(self.vs[i].succ, j)
        self.vs[j].pred = append(self.vs[j].pred, i)
    }
}

func (self *Graph[T]) items(idx []int) []T {
    ret := make([]T, len(idx))
    for i, v := range idx { ret[i] = self.vs[v].item }
    return ret
}

func (self *Graph[T]) Successors(p T) []T {
    return self.items(self.vs[self.Index(p)].succ)
}

func (self *Graph[T]) Predecessors(p T) []T {
    return self.items(self.vs[self.Index(p)].pred)
}

// SuccessorsAt returns the indices of the successors of the i-th vertex.
func (self *Graph[T]) SuccessorsAt(i int) []int {
    return self.vs[i].succ
}

// PredecessorsAt returns the indices of the predecessors of the i-th vertex.
func (self *Graph[T]) PredecessorsAt(i int) []int {
    return self.vs[i].pred
}

// Len returns the number of vertices.
func (self *Graph[T]) Len() int {
    return len(self.vs)
}

// At returns the payload of the i-th vertex.
func (self *Graph[T]) At(i int) T {
    return self.vs[i].item
}

func (self *Graph[T]) Vertices() []T {
    ret := make([]T, len(self.vs))
    for i, v := range self.vs { ret[i] = v.item }
    return ret
}

func (self *Graph[T]) Edges() (r []Edge[T]) {
    for _, v := range self.vs {
        for _, s := range v.succ {
            r = append(r, Edge[T] { From: v.item, To: self.vs[s].item })
        }
    }
    return
}

// DFS visits every vertex reachable from start in depth-first pre-order,
// successors in insertion order.
func (self *Graph[T]) DFS(start T, visit func(p T)) {
    self.dfs(self.Index(start), func(i int) { visit(self.vs[i].item) })
}

func (self *Graph[T]) dfs(root int, visit func(i int)) {
    s := lane.NewStack()
    m := make([]bool, len(self.vs))

    /* traverse the graph with an explicit stack */
    for s.Push(root); !s.Empty(); {
        i := s.Pop().(int)
        if m[i] {
            continue
        }

        /* visit the vertex */
        m[i] = true
        visit(i)

        /* push successors in reverse order, so the first one pops first */
        for k := len(self.vs[i].succ) - 1; k >= 0; k-- {
            if j := self.vs[i].succ[k]; !m[j] {
                s.Push(j)
            }
        }
    }
}

// Reachable marks every vertex reachable from start.
func (self *Graph[T]) Reachable(start T) []bool {
    ret := make([]bool, len(self.vs))
    self.dfs(self.Index(start), func(i int) { ret[i] = true })
    return ret
}
