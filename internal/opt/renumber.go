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
    `strconv`

    `github.com/cloudwego/midend/internal/ir`
)

type _Renumberer struct {
    count map[string]int
    names map[string]bool
    alias map[string]string
    types map[string]ir.Type
}

func (self *_Renumberer) define(v string) string {
    n := self.count[v]
    self.count[v] = n + 1

    /* the first definition keeps the name */
    if n == 0 {
        self.alias[v] = v
        return v
    }

    /* find a free suffix */
    r := v + "_" + strconv.Itoa(n)
    for self.names[r] {
        n++
        r = v + "_" + strconv.Itoa(n)
    }

    /* claim the name */
    self.names[r] = true
    self.count[v] = n + 1
    self.alias[v] = r
    return r
}

// Renumber gives every redefinition of a variable a new name "v_N", so that
// each name in the function is defined at most once. The first definition
// keeps the bare name, parameters are never renamed, and the uses refer to
// the most recent definition in program order. The function is modified
// in place.
func Renumber(fn *ir.Function) *ir.Function {
    rr := &_Renumberer {
        count: make(map[string]int),
        names: make(map[string]bool),
        alias: make(map[string]string),
        types: make(map[string]ir.Type),
    }

    /* parameters count as the first definition */
    for _, a := range fn.Args {
        rr.count[a.Name] = 1
        rr.names[a.Name] = true
        rr.alias[a.Name] = a.Name
        rr.types[a.Name] = a.Type
    }

    /* collect every name in use */
    for _, ins := range fn.Instrs {
        for _, a := range ir.Args(ins) {
            rr.names[a] = true
        }
        if d, ok := ir.Dest(ins); ok {
            rr.names[d] = true
        }
    }

    /* rename in program order */
    for _, ins := range fn.Instrs {
        if u, ok := ins.(ir.Usages); ok {
            for _, a := range u.Usages() {
                if r, ok := rr.alias[*a]; ok {
                    *a = r
                }
            }
        }

        /* untyped definitions inherit the last type of the variable */
        if v, ok := ins.(*ir.ValueOp); ok {
            if v.Type != ir.Untyped {
                rr.types[v.Dest] = v.Type
            } else {
                v.Type = rr.types[v.Dest]
            }
            v.Dest = rr.define(v.Dest)
        }
    }

    return fn
}
