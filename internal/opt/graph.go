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
    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/encoding/dot`
    `gonum.org/v1/gonum/graph/multi`
)

// GraphNode is a block in the exported graphs, node IDs follow the program order.
type GraphNode struct {
    Id    int64
    Block BlockID
}

func (self GraphNode) ID() int64 {
    return self.Id
}

func (self GraphNode) DOTID() string {
    return self.Block.String()
}

func newGraph(order []BlockID, edges func(id BlockID) []BlockID) *multi.DirectedGraph {
    g := multi.NewDirectedGraph()
    idx := make(map[BlockID]int64, len(order))

    /* add all the blocks */
    for i, id := range order {
        idx[id] = int64(i)
        g.AddNode(GraphNode { Id: int64(i), Block: id })
    }

    /* add all the edges, self loops included */
    for _, id := range order {
        for _, s := range edges(id) {
            g.SetLine(g.NewLine(g.Node(idx[id]), g.Node(idx[s])))
        }
    }

    return g
}

// Graph exports the CFG as a gonum directed graph.
func (self *CFG) Graph() *multi.DirectedGraph {
    return newGraph(self.Order, func(id BlockID) []BlockID { return self.nodes[id].Succ })
}

// NodeOf returns the graph node of the block.
func (self *CFG) NodeOf(g graph.Graph, id BlockID) graph.Node {
    for i, v := range self.Order {
        if v == id {
            return g.Node(int64(i))
        }
    }
    return nil
}

// DOT renders the CFG in the Graphviz format.
func (self *CFG) DOT() (string, error) {
    buf, err := dot.MarshalMulti(self.Graph(), self.Func, "", "    ")
    return string(buf), err
}

// Graph exports the dominator tree, edges go from a block to the blocks it
// immediately dominates.
func (self *Dominance) Graph() *multi.DirectedGraph {
    return newGraph(self.Order, func(id BlockID) []BlockID { return self.DominatorOf[id] })
}

// DOT renders the dominator tree in the Graphviz format.
func (self *Dominance) DOT() (string, error) {
    buf, err := dot.MarshalMulti(self.Graph(), self.Func + "_dom", "", "    ")
    return string(buf), err
}
