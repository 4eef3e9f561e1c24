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
    `fmt`
    `sort`
    `strings`

    `github.com/deckarep/golang-set/v2`

    `github.com/cloudwego/midend/internal/utils`
)

type DominatorSet = mapset.Set[BlockID]

// Dominance holds the result of the dominance analysis of one function.
type Dominance struct {
    Func        string
    Entry       BlockID
    Order       []BlockID
    Dominators  map[BlockID]DominatorSet
    DominatedBy map[BlockID]BlockID
    DominatorOf map[BlockID][]BlockID
    Frontier    map[BlockID][]BlockID
    reachable   map[BlockID]bool
}

// Dominates tells if every path from the entry to b passes through a.
func (self *Dominance) Dominates(a BlockID, b BlockID) bool {
    if s, ok := self.Dominators[b]; !ok {
        return false
    } else {
        return s.Contains(a)
    }
}

func (self *Dominance) StrictlyDominates(a BlockID, b BlockID) bool {
    return a != b && self.Dominates(a, b)
}

// Idom returns the immediate dominator of the block, if it has one.
func (self *Dominance) Idom(id BlockID) (BlockID, bool) {
    p, ok := self.DominatedBy[id]
    return p, ok
}

func (self *Dominance) Reachable(id BlockID) bool {
    return self.reachable[id]
}

func (self *Dominance) String() string {
    var buf []string
    buf = append(buf, "dominators:")

    /* dominator sets */
    for _, id := range self.Order {
        buf = append(buf, fmt.Sprintf("%s:\t\t%s", id, joinBlocks(self.sorted(self.Dominators[id].ToSlice()))))
    }

    /* dominator tree */
    buf = append(buf, "", "dominance tree:")
    for _, id := range self.Order {
        if p, ok := self.DominatedBy[id]; ok {
            buf = append(buf, fmt.Sprintf("%s:\t\t%s", id, p))
        } else {
            buf = append(buf, fmt.Sprintf("%s:\t\t-", id))
        }
    }

    /* dominance frontier */
    buf = append(buf, "", "dominance frontier:")
    for _, id := range self.Order {
        buf = append(buf, fmt.Sprintf("%s:\t\t[%s]", id, joinBlocks(self.Frontier[id])))
    }

    return strings.Join(buf, "\n")
}

func (self *Dominance) sorted(v []BlockID) []BlockID {
    idx := make(map[BlockID]int, len(self.Order))
    for i, id := range self.Order { idx[id] = i }
    sort.Slice(v, func(i int, j int) bool { return idx[v[i]] < idx[v[j]] })
    return v
}

// Dominators computes the dominator sets, the dominator tree and the
// dominance frontiers of the CFG with the iterative data-flow algorithm.
func Dominators(cfg *CFG) (*Dominance, error) {
    nb := cfg.Len()
    all := mapset.NewThreadUnsafeSet[BlockID](cfg.Order...)

    /* initialize the result */
    ret := &Dominance {
        Func        : cfg.Func,
        Entry       : cfg.Entry,
        Order       : cfg.Order,
        Dominators  : make(map[BlockID]DominatorSet, nb),
        DominatedBy : make(map[BlockID]BlockID, nb),
        DominatorOf : make(map[BlockID][]BlockID, nb),
        Frontier    : make(map[BlockID][]BlockID, nb),
        reachable   : cfg.Reachable(),
    }

    /* every block starts dominated by all the blocks */
    for _, id := range cfg.Order {
        ret.Dominators[id] = all.Clone()
    }

    /* each pass shrinks at least one set until the fixpoint, so n^2 + 1 passes suffice */
    if err := ret.fixpoint(cfg, nb * nb + 2); err != nil {
        return nil, err
    }

    /* build the tree and the frontiers */
    ret.buildTree(cfg)
    ret.buildFrontier(cfg)
    return ret, nil
}

func (self *Dominance) fixpoint(cfg *CFG, limit int) error {
    order := cfg.VisitOrder()

    /* iterate until nothing changes */
    for i := 0; i < limit; i++ {
        done := true

        /* recompute every dominator set */
        for _, id := range order {
            var dom DominatorSet
            pred := self.predecessors(cfg, id)

            /* the entry and the blocks without predecessors only dominate themselves */
            if id == cfg.Entry || len(pred) == 0 {
                dom = mapset.NewThreadUnsafeSet[BlockID]()
            } else {
                dom = self.Dominators[pred[0]].Clone()
                for _, p := range pred[1:] {
                    dom = dom.Intersect(self.Dominators[p])
                }
            }

            /* a block always dominates itself */
            dom.Add(id)

            /* check for changes */
            if !dom.Equal(self.Dominators[id]) {
                done = false
                self.Dominators[id] = dom
            }
        }

        /* no more modifications */
        if done {
            return nil
        }
    }

    /* should never happen */
    return utils.ENonConvergence("dominance", cfg.Func, limit)
}

// predecessors returns the predecessors that take part in the dominator set
// of the block, paths from unreachable blocks never start at the entry.
func (self *Dominance) predecessors(cfg *CFG, id BlockID) []BlockID {
    pred := cfg.Node(id).Pred
    if !self.reachable[id] {
        return pred
    }

    /* only the reachable ones */
    ret := make([]BlockID, 0, len(pred))
    for _, p := range pred {
        if self.reachable[p] {
            ret = append(ret, p)
        }
    }
    return ret
}

func (self *Dominance) buildTree(cfg *CFG) {
    for _, id := range cfg.Order {
        sdom := self.Dominators[id].Clone()
        sdom.Remove(id)

        /* the immediate dominator is the strict dominator that is dominated by
         * all the other strict dominators, so its dominator set equals sdom */
        for _, d := range self.sorted(sdom.ToSlice()) {
            if self.Dominators[d].Equal(sdom) {
                self.DominatedBy[id] = d
                self.DominatorOf[d] = append(self.DominatorOf[d], id)
                break
            }
        }
    }
}

func (self *Dominance) buildFrontier(cfg *CFG) {
    df := make(map[BlockID]map[BlockID]bool)

    /* walk up the dominator tree from each edge source until the edge target
     * becomes strictly dominated, everything on the way has it in its frontier */
    for _, id := range cfg.Order {
        if !self.reachable[id] {
            continue
        }

        /* check every edge */
        for _, s := range cfg.Node(id).Succ {
            seen := make(map[BlockID]bool)
            for p, ok := id, true; ok && !seen[p] && !self.StrictlyDominates(p, s); p, ok = self.DominatedBy[p] {
                if seen[p] = true; df[p] == nil {
                    df[p] = map[BlockID]bool { s: true }
                } else {
                    df[p][s] = true
                }
            }
        }
    }

    /* dump the frontiers in program order */
    for _, id := range cfg.Order {
        v := make([]BlockID, 0, len(df[id]))
        for s := range df[id] { v = append(v, s) }
        self.Frontier[id] = self.sorted(v)
    }
}
