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
    `github.com/oleiade/lane`
)

type _DfsFrame struct {
    id BlockID
    nx int
}

// PostOrder returns all the blocks reachable from the entry in depth-first
// post-order, successors are visited in their CFG order.
func (self *CFG) PostOrder() []BlockID {
    if self.Entry == "" {
        return nil
    }

    /* initialize the traversal */
    st := lane.NewStack()
    ret := make([]BlockID, 0, len(self.Order))
    vis := map[BlockID]bool { self.Entry: true }

    /* start from the entry */
    for st.Push(&_DfsFrame { id: self.Entry }); !st.Empty(); {
        p := st.Head().(*_DfsFrame)
        s := self.nodes[p.id].Succ

        /* find the next unvisited successor */
        for p.nx < len(s) && vis[s[p.nx]] {
            p.nx++
        }

        /* all the successors are visited, emit the current node */
        if p.nx == len(s) {
            ret = append(ret, p.id)
            st.Pop()
            continue
        }

        /* descend into the successor */
        vis[s[p.nx]] = true
        st.Push(&_DfsFrame { id: s[p.nx] })
    }

    return ret
}

// ReversePostOrder returns the reachable blocks in reverse post-order.
func (self *CFG) ReversePostOrder() []BlockID {
    ret := self.PostOrder()
    blockreverse(ret)
    return ret
}

// Reachable returns the set of blocks reachable from the entry.
func (self *CFG) Reachable() map[BlockID]bool {
    ret := make(map[BlockID]bool, len(self.Order))
    for _, id := range self.PostOrder() { ret[id] = true }
    return ret
}

// VisitOrder lists the reachable blocks in reverse post-order followed by the
// unreachable ones in program order, so every block is visited exactly once.
func (self *CFG) VisitOrder() []BlockID {
    ret := self.ReversePostOrder()
    vis := make(map[BlockID]bool, len(ret))

    /* mark the reachable blocks */
    for _, id := range ret {
        vis[id] = true
    }

    /* append the rest */
    for _, id := range self.Order {
        if !vis[id] {
            ret = append(ret, id)
        }
    }

    return ret
}

func blockreverse(v []BlockID) {
    for i, j := 0, len(v) - 1; i < j; i, j = i + 1, j - 1 {
        v[i], v[j] = v[j], v[i]
    }
}
