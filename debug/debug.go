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
	"sync/atomic"

	"github.com/cloudwego/ssac/internal/ssa"
)

// A Stats records statistics about the optimizer.
type Stats struct {
	SSA    SSAStats
	Blocks BlockStats
	Values ValueStats
}

// A SSAStats records statistics about SSA construction and destruction.
type SSAStats struct {
	Phis    int
	Bridges int
	Splits  int
}

// A BlockStats records statistics about block level cleanups.
type BlockStats struct {
	Removed int
	Merged  int
}

// A ValueStats records statistics about value level optimizations.
type ValueStats struct {
	Folded  int
	Removed int
}

// GetStats returns statistics of the optimizer since the process started.
func GetStats() Stats {
	return Stats{
		SSA: SSAStats{
			Phis:    int(atomic.LoadUint64(&ssa.PhiCount)),
			Bridges: int(atomic.LoadUint64(&ssa.BridgeCount)),
			Splits:  int(atomic.LoadUint64(&ssa.EdgeSplitCount)),
		},
		Blocks: BlockStats{
			Removed: int(atomic.LoadUint64(&ssa.BlockRemoveCount)),
			Merged:  int(atomic.LoadUint64(&ssa.BlockMergeCount)),
		},
		Values: ValueStats{
			Folded:  int(atomic.LoadUint64(&ssa.FoldCount)),
			Removed: int(atomic.LoadUint64(&ssa.StmtRemoveCount)),
		},
	}
}
