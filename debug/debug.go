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

	"github.com/cloudwego/midend/internal/opt"
)

// A Stats records statistics about the optimization passes.
type Stats struct {
	LVN        LVNStats
	DCE        DCEStats
	SSA        SSAStats
	Iterations int
}

// A LVNStats records statistics about local value numbering.
type LVNStats struct {
	Eliminated int
}

// A DCEStats records statistics about dead code elimination.
type DCEStats struct {
	Removed       int
	BlocksDropped int
}

// A SSAStats records statistics about the SSA conversion.
type SSAStats struct {
	PhiInserted   int
	PhiEliminated int
}

// GetStats returns statistics of the optimization passes since the start of
// the process or the last ResetStats.
func GetStats() Stats {
	return Stats{
		Iterations: load(&opt.FixpointIterations),
		LVN: LVNStats{
			Eliminated: load(&opt.LvnEliminated),
		},
		DCE: DCEStats{
			Removed:       load(&opt.DceRemoved),
			BlocksDropped: load(&opt.BlocksDropped),
		},
		SSA: SSAStats{
			PhiInserted:   load(&opt.PhiInserted),
			PhiEliminated: load(&opt.PhiEliminated),
		},
	}
}

// ResetStats clears all the counters.
func ResetStats() {
	opt.ResetStats()
}

func load(p *int64) int {
	return int(atomic.LoadInt64(p))
}
