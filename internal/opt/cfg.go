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
    `strings`
)

type SuccessorPolicy uint8

const (
    // ExplicitOnly derives successors from jumps and branches only, a block
    // that does not end with one of them has no successors.
    ExplicitOnly SuccessorPolicy = iota

    // ImplicitFallthrough additionally lets a block without a terminator flow
    // into the next block in program order.
    ImplicitFallthrough
)

func (self SuccessorPolicy) String() string {
    switch self {
        case ExplicitOnly        : return "explicit-only"
        case ImplicitFallthrough : return "implicit-fallthrough"
        default                  : return fmt.Sprintf("SuccessorPolicy(%d)", uint8(self))
    }
}

type Node struct {
    Id      BlockID
    Pred    []BlockID
    Succ    []BlockID
    Virtual bool
    pred    map[BlockID]bool
    succ    map[BlockID]bool
}

func newNode(id BlockID, virtual bool) *Node {
    return &Node {
        Id      : id,
        Virtual : virtual,
        pred    : make(map[BlockID]bool),
        succ    : make(map[BlockID]bool),
    }
}

func (self *Node) HasPred(id BlockID) bool {
    return self.pred[id]
}

type CFG struct {
    Func   string
    Entry  BlockID
    Order  []BlockID
    Blocks *Blocks
    Policy SuccessorPolicy
    nodes  map[BlockID]*Node
}

// Node returns the node of a block, or nil if the block was never seen.
func (self *CFG) Node(id BlockID) *Node {
    return self.nodes[id]
}

func (self *CFG) Len() int {
    return len(self.Order)
}

// Index returns the position of the block in program order.
func (self *CFG) Index() map[BlockID]int {
    ret := make(map[BlockID]int, len(self.Order))
    for i, id := range self.Order { ret[id] = i }
    return ret
}

func (self *CFG) node(id BlockID) *Node {
    if p, ok := self.nodes[id]; ok {
        return p
    }

    /* targets that were never defined still get a node */
    p := newNode(id, true)
    self.nodes[id] = p
    self.Order = append(self.Order, id)
    return p
}

func (self *CFG) addEdge(from BlockID, to BlockID) {
    p := self.node(from)
    q := self.node(to)

    /* edges are unique */
    if !p.succ[to] {
        p.succ[to] = true
        p.Succ = append(p.Succ, to)
    }

    /* keep the reverse edge in sync */
    if !q.pred[from] {
        q.pred[from] = true
        q.Pred = append(q.Pred, from)
    }
}

func (self *CFG) String() string {
    buf := make([]string, 0, len(self.Order))
    for _, id := range self.Order {
        p := self.nodes[id]
        buf = append(buf, fmt.Sprintf("%s  <- (%s) -> (%s)", id, joinBlocks(p.Pred), joinBlocks(p.Succ)))
    }
    return strings.Join(buf, "\n")
}

// BuildCFG derives the control-flow graph of the blocks with the given policy.
func BuildCFG(bbs *Blocks, policy SuccessorPolicy) *CFG {
    ret := &CFG {
        Func   : bbs.Func,
        Blocks : bbs,
        Policy : policy,
        Order  : make([]BlockID, 0, bbs.Len()),
        nodes  : make(map[BlockID]*Node, bbs.Len()),
    }

    /* create all the real nodes first to keep the program order */
    for _, bb := range bbs.List {
        ret.nodes[bb.Id] = newNode(bb.Id, false)
        ret.Order = append(ret.Order, bb.Id)
    }

    /* the first block is the entry */
    if bbs.Len() != 0 {
        ret.Entry = bbs.List[0].Id
    }

    /* add all the edges */
    for i, bb := range bbs.List {
        if t, ok := bb.Term(); ok {
            for _, lb := range t.Targets() {
                ret.addEdge(bb.Id, LabelBlock(lb))
            }
        } else if policy == ImplicitFallthrough && i + 1 < bbs.Len() {
            ret.addEdge(bb.Id, bbs.List[i + 1].Id)
        }
    }

    return ret
}

func joinBlocks(v []BlockID) string {
    buf := make([]string, len(v))
    for i, id := range v { buf[i] = id.String() }
    return strings.Join(buf, ", ")
}
