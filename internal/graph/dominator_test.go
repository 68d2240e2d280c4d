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

    `github.com/brianvoe/gofakeit/v6`
    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `gonum.org/v1/gonum/graph/flow`
    `gonum.org/v1/gonum/graph/simple`
)

func TestDominator_Diamond(t *testing.T) {
    g := buildGraph(
        []string { "entry", "b1", "b2", "b3" },
        [][2]string { { "entry", "b1" }, { "entry", "b2" }, { "b1", "b3" }, { "b2", "b3" } },
    )
    dt := BuildDominatorTree(g, "entry")
    df := BuildDominanceFrontier(g, dt)
    assert.Equal(t, "entry", dt.Idom("b1"))
    assert.Equal(t, "entry", dt.Idom("b2"))
    assert.Equal(t, "entry", dt.Idom("b3"))
    assert.Equal(t, []string { "b1", "b2", "b3" }, dt.Children("entry"))
    assert.Empty(t, df.Frontier("entry"))
    assert.Equal(t, []string { "b3" }, df.Frontier("b1"))
    assert.Equal(t, []string { "b3" }, df.Frontier("b2"))
    assert.Empty(t, df.Frontier("b3"))
    assert.Equal(t, []string { "entry", "b3" }, dt.Dom("b3"))
}

func TestDominator_Loop(t *testing.T) {
    g := buildGraph(
        []string { "entry", "h", "body", "exit" },
        [][2]string { { "entry", "h" }, { "h", "body" }, { "body", "h" }, { "h", "exit" } },
    )
    dt := BuildDominatorTree(g, "entry")
    df := BuildDominanceFrontier(g, dt)
    assert.Equal(t, "entry", dt.Idom("h"))
    assert.Equal(t, "h", dt.Idom("body"))
    assert.Equal(t, "h", dt.Idom("exit"))
    assert.Equal(t, []string { "h" }, df.Frontier("body"))
    assert.Equal(t, []string { "h" }, df.Frontier("h"))
    assert.Empty(t, df.Frontier("exit"))
    assert.True(t, dt.Dominates("h", "h"))
    assert.False(t, dt.StrictlyDominates("h", "h"))
    assert.True(t, dt.StrictlyDominates("entry", "body"))
    assert.False(t, dt.Dominates("body", "exit"))
}

func TestDominator_Tree(t *testing.T) {
    g := buildGraph(
        []string { "entry", "a", "b", "c" },
        [][2]string { { "entry", "a" }, { "a", "b" }, { "a", "c" }, { "b", "c" } },
    )
    tr := BuildDominatorTree(g, "entry").Tree()
    require.Equal(t, 4, tr.Len())
    assert.Empty(t, tr.Predecessors("entry"))
    assert.Equal(t, []string { "a" }, tr.Successors("entry"))
    assert.Equal(t, []string { "b", "c" }, tr.Successors("a"))
    assert.Len(t, tr.Edges(), 3)
}

func TestDominator_Unreachable(t *testing.T) {
    g := buildGraph(
        []string { "entry", "a", "dead", "b" },
        [][2]string { { "entry", "a" }, { "a", "b" }, { "dead", "b" }, { "dead", "dead" } },
    )
    dt := BuildDominatorTree(g, "entry")
    assert.False(t, dt.Reachable("dead"))
    assert.True(t, dt.Reachable("b"))
    assert.Equal(t, "a", dt.Idom("b"))
    assert.Equal(t, 3, dt.Tree().Len())
    assert.False(t, dt.Tree().Has("dead"))
    require.NotNil(t, catchInternal(func() { dt.Idom("dead") }))
    require.NotNil(t, catchInternal(func() { dt.Idom("entry") }))
}

func randomGraph(f *gofakeit.Faker, n int) *Graph[int] {
    g := New[int](func(a int, b int) bool { return a == b })
    for i := 0; i < n; i++ {
        g.InsertVertex(i)
    }

    /* a spanning tree keeps every vertex reachable */
    for i := 1; i < n; i++ {
        g.InsertEdge(f.IntRange(0, i - 1), i)
    }

    /* random extra edges, back edges and self loops included */
    for i := f.IntRange(0, n * 2); i > 0; i-- {
        g.InsertEdge(f.IntRange(0, n - 1), f.IntRange(0, n - 1))
    }
    return g
}

// reachableWithout marks vertices reachable from 0 when x is removed.
func reachableWithout(g *Graph[int], x int) []bool {
    ret := make([]bool, g.Len())
    if x == 0 {
        return ret
    }
    var walk func(i int)
    walk = func(i int) {
        if i != x && !ret[i] {
            ret[i] = true
            for _, j := range g.vs[i].succ { walk(j) }
        }
    }
    walk(0)
    return ret
}

func TestDominator_Oracle(t *testing.T) {
    f := gofakeit.New(20221010)
    for round := 0; round < 200; round++ {
        g := randomGraph(f, f.IntRange(1, 24))
        dt := BuildDominatorTree(g, 0)

        /* build the same graph with gonum */
        sg := simple.NewDirectedGraph()
        for i := 0; i < g.Len(); i++ {
            sg.AddNode(simple.Node(i))
        }
        for _, e := range g.Edges() {
            if e.From != e.To {
                sg.SetEdge(sg.NewEdge(simple.Node(e.From), simple.Node(e.To)))
            }
        }

        /* immediate dominators must agree */
        ref := flow.Dominators(simple.Node(0), sg)
        for i := 1; i < g.Len(); i++ {
            require.Equal(t, ref.DominatorOf(int64(i)).ID(), int64(dt.IdomAt(i)), "round %d vertex %d\n%s", round, i, spew.Sdump(g.Edges()))
        }

        /* a dominates b iff b cannot be reached without passing a */
        for a := 0; a < g.Len(); a++ {
            rs := reachableWithout(g, a)
            for b := 0; b < g.Len(); b++ {
                require.Equal(t, a == b || !rs[b], dt.DominatesAt(a, b), "round %d: %d dom %d", round, a, b)
            }
        }
    }
}

func TestFrontier_Definition(t *testing.T) {
    f := gofakeit.New(7)
    for round := 0; round < 200; round++ {
        g := randomGraph(f, f.IntRange(1, 20))
        dt := BuildDominatorTree(g, 0)
        df := BuildDominanceFrontier(g, dt)

        /* y ∈ DF(n) iff n dominates a predecessor of y but does not strictly dominate y */
        for n := 0; n < g.Len(); n++ {
            var exp []int
            for y := 0; y < g.Len(); y++ {
                hit := false
                for _, p := range g.vs[y].pred {
                    hit = hit || dt.DominatesAt(n, p)
                }
                if hit && !(n != y && dt.DominatesAt(n, y)) {
                    exp = append(exp, y)
                }
            }
            if exp == nil {
                require.Empty(t, df.FrontierAt(n), "round %d vertex %d", round, n)
            } else {
                require.Equal(t, exp, df.FrontierAt(n), "round %d vertex %d\n%s", round, n, spew.Sdump(g.Edges()))
            }
        }
    }
}
