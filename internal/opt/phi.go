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
    `sort`

    `github.com/oleiade/lane`

    `github.com/cloudwego/midend/internal/ir`
)

// _Phi is a phi placeholder for one source variable at the head of a join block.
type _Phi struct {
    name string
    dead bool
    ins  *ir.ValueOp
    args map[BlockID]string
}

func (self *_Phi) arg(pred BlockID) string {
    if v, ok := self.args[pred]; ok {
        return v
    } else {
        return undefinedName
    }
}

func appendVar(buf map[string]bool, v string) map[string]bool {
    if buf == nil {
        return map[string]bool { v: true }
    } else {
        buf[v] = true
        return buf
    }
}

func insertPhiNodes(sf *_SSAFunc) {
    orig := make(map[BlockID]map[string]bool)
    defs := make(map[string][]BlockID)

    /* parameters are defined on function entry */
    for _, a := range sf.fn.Args {
        orig[sf.cfg.Entry] = appendVar(orig[sf.cfg.Entry], a.Name)
    }

    /* mark all the definition sites of the reachable blocks */
    for _, bb := range sf.bbs.List {
        if sf.dom.Reachable(bb.Id) {
            for _, ins := range bb.Ins {
                if def, ok := ins.(ir.Definitions); ok {
                    for _, d := range def.Definitions() {
                        orig[bb.Id] = appendVar(orig[bb.Id], *d)
                    }
                }
            }
        }
    }

    /* group the definition sites by variable, in program order */
    for _, id := range sf.cfg.Order {
        for v := range orig[id] {
            defs[v] = append(defs[v], id)
        }
    }

    /* sort the variables to keep the phi order stable */
    vars := make([]string, 0, len(defs))
    for v := range defs { vars = append(vars, v) }
    sort.Strings(vars)

    /* insert Phi node for every variable with the iterated dominance frontier */
    for _, v := range vars {
        q := lane.NewQueue()
        rem := make(map[BlockID]bool)

        /* start from all the definition sites */
        for _, id := range defs[v] {
            q.Enqueue(id)
        }

        /* propagate along the frontiers */
        for !q.Empty() {
            for _, y := range sf.dom.Frontier[q.Dequeue().(BlockID)] {
                if rem[y] {
                    continue
                }

                /* virtual blocks can not hold instructions, and dead
                 * variables do not need to be merged */
                if rem[y] = true; sf.cfg.Node(y).Virtual || !sf.live.In[y].Contains(v) {
                    continue
                }

                /* insert a new Phi node */
                sf.phi[y] = append(sf.phi[y], &_Phi {
                    name : v,
                    args : make(map[BlockID]string),
                    ins  : &ir.ValueOp { Dest: v, Type: sf.types[v], Op: ir.OpPhi },
                })

                /* a block may contain both an ordinary definition and a
                 * Phi node for the same variable */
                count(&PhiInserted, 1)
                if !orig[y][v] {
                    q.Enqueue(y)
                }
            }
        }
    }
}
