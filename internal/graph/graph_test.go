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
    `testing`

    `github.com/cloudwego/ssac/internal/utils`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func eqstr(a string, b string) bool {
    return a == b
}

func buildGraph(vs []string, es [][2]string) *Graph[string] {
    g := New[string](eqstr)
    for _, v := range vs { g.InsertVertex(v) }
    for _, e := range es { g.InsertEdge(e[0], e[1]) }
    return g
}

func TestGraph_Basic(t *testing.T) {
    g := buildGraph(
        []string { "a", "b", "c", "d" },
        [][2]string { { "a", "b" }, { "a", "c" }, { "b", "d" }, { "c", "d" }, { "a", "b" } },
    )
    require.Equal(t, 4, g.Len())
    require.Equal(t, 1, g.InsertVertex("b"))
    assert.Equal(t, []string { "b", "c" }, g.Successors("a"))
    assert.Equal(t, []string { "b", "c" }, g.Predecessors("d"))
    assert.Empty(t, g.Predecessors("a"))
    assert.Len(t, g.Edges(), 4)
    assert.Equal(t, []string { "a", "b", "c", "d" }, g.Vertices())
}

func TestGraph_DFS(t *testing.T) {
    var order []string
    g := buildGraph(
        []string { "a", "b", "c", "d", "e" },
        [][2]string { { "a", "b" }, { "a", "c" }, { "b", "d" }, { "d", "a" }, { "c", "d" } },
    )
    g.DFS("a", func(p string) { order = append(order, p) })
    assert.Equal(t, []string { "a", "b", "d", "c" }, order)
    assert.Equal(t, []bool { true, true, true, true, false }, g.Reachable("a"))
}

func catchInternal(fn func()) (ret *utils.InternalError) {
    defer func() {
        ret, _ = recover().(*utils.InternalError)
    }()
    fn()
    return
}

func TestGraph_MissingVertex(t *testing.T) {
    g := buildGraph([]string { "a" }, nil)
    require.False(t, g.Has("x"))
    err := catchInternal(func() { g.InsertEdge("a", "x") })
    require.NotNil(t, err)
    assert.Equal(t, "graph", err.Pass)
    assert.Equal(t, "graph.go", err.File)
    assert.Equal(t, "vertex not found: x", err.Reason)
    require.NotNil(t, catchInternal(func() { g.Successors("y") }))
}
