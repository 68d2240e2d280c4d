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
	"strings"
	"testing"

	"github.com/cloudwego/ssac/internal/ssa"
	"github.com/cloudwego/ssac/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopFunc() *ir.Function {
	b := ir.CreateBuilder(ir.NewArena(), "loop", ir.TypeInt)
	n := b.Param("n", ir.TypeInt)
	i := b.Local("i", ir.TypeInt)
	b.Result(i)
	b.Label("entry")
	b.Move(i, ir.IntConst(0))
	b.Label("head")
	b.BinOp(i, ir.OpAdd, i, ir.IntConst(1))
	b.If(i, "head", "done")
	b.Label("done")
	b.Return(n)
	return b.Build()
}

func TestDot(t *testing.T) {
	src := strings.ReplaceAll(Dot(loopFunc()), "&nbsp;", " ")
	assert.True(t, strings.HasPrefix(src, `digraph "loop" {`))
	assert.True(t, strings.HasSuffix(src, "}"))
	assert.Contains(t, src, "START -> bb_0")
	assert.Contains(t, src, "bb_1 -> bb_1")
	assert.Contains(t, src, "bb_1 -> bb_2")
	assert.Contains(t, src, `bb_2 -> END [ style = "dashed" ]`)
	assert.Contains(t, src, "# idom = entry")
	assert.Contains(t, src, "# df = {head}")
	assert.Contains(t, src, "# idom = ∅")
}

func TestDot_SSA(t *testing.T) {
	src := Dot(ssa.Build(loopFunc()))
	assert.Contains(t, src, "phi")
}

func TestGetStats(t *testing.T) {
	before := GetStats()
	fn := ssa.Build(loopFunc())
	require.NotZero(t, fn.NumPhis())
	after := GetStats()
	assert.Equal(t, before.SSA.Phis+fn.NumPhis(), after.SSA.Phis)
}
