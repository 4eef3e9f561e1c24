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
    `github.com/oleiade/lane`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/utils`
)

type LiveSet = mapset.Set[string]

// Liveness holds the variables live on entry to and exit from every block.
type Liveness struct {
    Func  string
    Order []BlockID
    In    map[BlockID]LiveSet
    Out   map[BlockID]LiveSet
}

func livesorted(s LiveSet) string {
    v := s.ToSlice()
    sort.Strings(v)
    return strings.Join(v, ", ")
}

func (self *Liveness) String() string {
    buf := make([]string, 0, len(self.Order))
    for _, id := range self.Order {
        buf = append(buf, fmt.Sprintf("%s:\n  in:  [%s]\n  out: [%s]", id, livesorted(self.In[id]), livesorted(self.Out[id])))
    }
    return strings.Join(buf, "\n")
}

type _LiveBlock struct {
    use LiveSet
    def LiveSet
}

func liveblock(bb *BasicBlock) _LiveBlock {
    ret := _LiveBlock {
        use: mapset.NewThreadUnsafeSet[string](),
        def: mapset.NewThreadUnsafeSet[string](),
    }

    /* upward exposed uses and definitions */
    if bb != nil {
        for _, ins := range bb.Ins {
            for _, a := range ir.Args(ins) {
                if !ret.def.Contains(a) {
                    ret.use.Add(a)
                }
            }
            if d, ok := ir.Dest(ins); ok {
                ret.def.Add(d)
            }
        }
    }

    return ret
}

// AnalyzeLiveness computes the live variables of every block with the backward
// data-flow equations over the CFG without fallthrough edges.
func AnalyzeLiveness(fn *ir.Function) (*Liveness, error) {
    if bbs, err := Blockify(fn.Name, fn.Instrs); err != nil {
        return nil, err
    } else {
        return computeLiveness(BuildCFG(bbs, ExplicitOnly))
    }
}

func computeLiveness(cfg *CFG) (*Liveness, error) {
    bbs := cfg.Blocks
    blk := make(map[BlockID]_LiveBlock, cfg.Len())
    vars := mapset.NewThreadUnsafeSet[string]()

    /* initialize the result */
    ret := &Liveness {
        Func  : cfg.Func,
        Order : cfg.Order,
        In    : make(map[BlockID]LiveSet, cfg.Len()),
        Out   : make(map[BlockID]LiveSet, cfg.Len()),
    }

    /* every block starts with nothing live */
    for _, id := range cfg.Order {
        bb, _ := bbs.Get(id)
        blk[id] = liveblock(bb)
        ret.In[id] = blk[id].use.Clone()
        ret.Out[id] = mapset.NewThreadUnsafeSet[string]()
        vars = vars.Union(blk[id].use).Union(blk[id].def)
    }

    /* every change adds at least one variable to a live-in set */
    q := lane.NewQueue()
    nc := 0
    limit := cfg.Len() * (vars.Cardinality() + 1)
    pending := make(map[BlockID]bool, cfg.Len())

    /* later blocks first, the information flows backwards */
    for i := len(cfg.Order) - 1; i >= 0; i-- {
        q.Enqueue(cfg.Order[i])
        pending[cfg.Order[i]] = true
    }

    /* iterate until nothing changes */
    for !q.Empty() {
        id := q.Dequeue().(BlockID)
        pending[id] = false
        out := mapset.NewThreadUnsafeSet[string]()

        /* out = ∪ in(succ) */
        for _, s := range cfg.Node(id).Succ {
            if in, ok := ret.In[s]; !ok {
                return nil, utils.EMissingSuccessor("liveness", cfg.Func, id.String(), s.String())
            } else {
                out = out.Union(in)
            }
        }

        /* in = use ∪ (out - def) */
        in := blk[id].use.Union(out.Difference(blk[id].def))
        ret.Out[id] = out

        /* nothing changed */
        if in.Equal(ret.In[id]) {
            continue
        }

        /* check for convergence */
        if nc++; nc > limit {
            return nil, utils.ENonConvergence("liveness", cfg.Func, limit)
        }

        /* the predecessors have to be updated */
        ret.In[id] = in
        for _, p := range cfg.Node(id).Pred {
            if !pending[p] {
                q.Enqueue(p)
                pending[p] = true
            }
        }
    }

    return ret, nil
}
