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
    `github.com/deckarep/golang-set/v2`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/utils`
)

// DCE removes dead code (unused definitions, unreachable fallthrough
// fragments) from the function.
type DCE struct{}

func (DCE) reachable(fn *ir.Function) ([]ir.Instr, error) {
    bbs, err := Blockify(fn.Name, fn.Instrs)
    if err != nil {
        return nil, err
    }

    /* fragments that follow a terminator can not be entered */
    ret := bbs.Filter(func(bb *BasicBlock) bool { return !bb.Id.IsSynthetic() })
    count(&BlocksDropped, bbs.Len() - ret.Len())
    return ret.Flatten(), nil
}

func (DCE) sweep(ins []ir.Instr) []ir.Instr {
    ret := ins[:0:0]
    use := mapset.NewThreadUnsafeSet[string]()

    /* Phase 1: Find all variable usages */
    for _, v := range ins {
        use.Append(ir.Args(v)...)
    }

    /* Phase 2: Remove all unused definitions */
    for _, v := range ins {
        if d, ok := v.(*ir.ValueOp); !ok || use.Contains(d.Dest) {
            ret = append(ret, v)
        }
    }

    return ret
}

func (self DCE) Apply(fn *ir.Function) (*ir.Function, error) {
    if err := fn.Validate(); err != nil {
        return nil, err
    }

    /* disambiguate the definitions first */
    ins, err := self.reachable(Renumber(fn.Clone()))
    if err != nil {
        return nil, err
    }

    /* every sweep removes at least one instruction until the fixpoint */
    limit := len(ins) + 1
    for i := 0; i < limit; i++ {
        n := len(ins)
        ins = self.sweep(ins)
        count(&DceRemoved, n - len(ins))

        /* no more modifications */
        if len(ins) == n {
            return fn.WithInstrs(ins), nil
        }
    }

    /* should never happen */
    return nil, utils.ENonConvergence("dce", fn.Name, limit)
}
