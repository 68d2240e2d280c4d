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

package debug

import (
	"fmt"
	"html"
	"strings"

	"github.com/cloudwego/ssac/internal/graph"
	"github.com/cloudwego/ssac/internal/ssa"
	"github.com/cloudwego/ssac/ir"
	"github.com/oleiade/lane"
)

func row(s string) string {
	return fmt.Sprintf(`<tr><td align="left">%s</td></tr>`, strings.ReplaceAll(html.EscapeString(s), " ", "&nbsp;"))
}

func names(cfg *ssa.CFG, idx []int) string {
	ret := make([]string, len(idx))
	for i, v := range idx {
		ret[i] = cfg.At(v).Label.Name()
	}
	return "{" + strings.Join(ret, ", ") + "}"
}

type _Dumper struct {
	cfg *ssa.CFG
	dt  *graph.DominatorTree[*ir.Block]
	df  *graph.DominanceFrontier[*ir.Block]
}

func (self _Dumper) block(i int) string {
	bb := self.cfg.At(i)
	buf := []string{
		`<table border="1" cellborder="0" cellspacing="0">`,
		fmt.Sprintf(`<tr><td>%s</td></tr>`, html.EscapeString(bb.Label.Name())),
		`<hr/>`,
		row("# pred = " + names(self.cfg, self.cfg.PredecessorsAt(i))),
	}

	/* dominance information of reachable blocks */
	if idom := self.dt.IdomAt(i); idom >= 0 {
		buf = append(buf, row("# idom = "+self.cfg.At(idom).Label.Name()))
	} else {
		buf = append(buf, row("# idom = ∅"))
	}

	/* immediately dominated blocks and the frontier */
	buf = append(buf, row("# idom_of = "+names(self.cfg, self.dt.ChildrenAt(i))))
	buf = append(buf, row("# df = "+names(self.cfg, self.df.FrontierAt(i))))

	/* statements */
	if len(bb.Stmts) != 0 {
		buf = append(buf, `<hr/>`)
		for _, v := range bb.Stmts {
			buf = append(buf, row(v.String()))
		}
	}

	/* terminator */
	buf = append(buf, `<hr/>`, row(bb.Term.String()), `</table>`)
	return strings.Join(buf, "")
}

// Dot renders the control flow graph of fn in Graphviz format, annotating
// every block reachable from the entry with its predecessors, immediate
// dominator, dominated blocks and dominance frontier.
func Dot(fn *ir.Function) string {
	cfg := ssa.NewCFG(fn)
	dt := cfg.Dominators()
	dd := _Dumper{cfg: cfg, dt: dt, df: graph.BuildDominanceFrontier(cfg.Graph, dt)}

	/* graph header */
	q := lane.NewQueue()
	n := make([]bool, cfg.Len())
	buf := []string{
		fmt.Sprintf("digraph %q {", fn.Name),
		`    graph [ fontname = "Fira Code" ]`,
		`    node [ fontname = "Fira Code" fontsize = "16" shape = "plaintext" ]`,
		`    edge [ fontname = "Fira Code" ]`,
		`    START [ shape = "circle" ]`,
		fmt.Sprintf(`    START -> bb_%d`, cfg.Entry()),
	}

	/* breadth-first from the entry */
	n[cfg.Entry()] = true
	for q.Enqueue(cfg.Entry()); !q.Empty(); {
		p := q.Dequeue().(int)
		buf = append(buf, fmt.Sprintf(`    bb_%d [ label = < %s > ]`, p, dd.block(p)))

		/* add every edge */
		for _, s := range cfg.SuccessorsAt(p) {
			buf = append(buf, fmt.Sprintf(`    bb_%d -> bb_%d`, p, s))
			if !n[s] {
				n[s] = true
				q.Enqueue(s)
			}
		}
	}

	/* the exit block */
	buf = append(buf, `    END [ shape = "doublecircle" ]`)
	buf = append(buf, fmt.Sprintf(`    bb_%d -> END [ style = "dashed" ]`, cfg.IndexOf(fn.Exit)))
	buf = append(buf, "}")
	return strings.Join(buf, "\n")
}
