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

package opt

import (
    `sync/atomic`
)

var (
    LvnEliminated      int64
    DceRemoved         int64
    BlocksDropped      int64
    FixpointIterations int64
    PhiInserted        int64
    PhiEliminated      int64
)

func count(p *int64, n int) {
    if n != 0 {
        atomic.AddInt64(p, int64(n))
    }
}

// ResetStats clears all the pass counters.
func ResetStats() {
    for _, p := range []*int64 {
        &LvnEliminated,
        &DceRemoved,
        &BlocksDropped,
        &FixpointIterations,
        &PhiInserted,
        &PhiEliminated,
    } {
        atomic.StoreInt64(p, 0)
    }
}
