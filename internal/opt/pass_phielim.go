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
    `github.com/cloudwego/midend/internal/ir`
)

// PhiElim removes the phi nodes that merge only one distinct defined version,
// the uses of such a phi are replaced by that version directly.
type PhiElim struct {
    subst map[string]string
}

func (self *PhiElim) resolve(v string) string {
    for {
        if r, ok := self.subst[v]; ok {
            v = r
        } else {
            return v
        }
    }
}

func (self *PhiElim) source(sf *_SSAFunc, id BlockID, phi *_Phi) (string, bool) {
    src := ""
    dst := phi.ins.Dest
    buf := make(map[string]bool)

    /* collect all the distinct defined versions, self references excluded */
    for _, p := range sf.cfg.Node(id).Pred {
        if v := self.resolve(phi.arg(p)); v != dst && v != undefinedName && !buf[v] {
            src = v
            buf[v] = true
        }
    }

    /* paths without a definition may take any value, so a single defined
     * version is enough */
    if len(buf) != 1 {
        return "", false
    } else {
        return src, true
    }
}

func (self *PhiElim) Apply(sf *_SSAFunc) {
    self.subst = make(map[string]string)

    /* eliminating one Phi may turn others trivial */
    for done := false; !done; {
        done = true

        /* check every live Phi node */
        for _, id := range sf.cfg.Order {
            for _, phi := range sf.phi[id] {
                if !phi.dead {
                    if src, ok := self.source(sf, id, phi); ok {
                        done = false
                        phi.dead = true
                        self.subst[phi.ins.Dest] = src
                        count(&PhiEliminated, 1)
                    }
                }
            }
        }
    }

    /* replace all the usages */
    for _, bb := range sf.bbs.List {
        for _, ins := range bb.Ins {
            if u, ok := ins.(ir.Usages); ok {
                for _, a := range u.Usages() {
                    *a = self.resolve(*a)
                }
            }
        }
    }

    /* replace the Phi arguments */
    for _, v := range sf.phi {
        for _, phi := range v {
            for p, a := range phi.args {
                phi.args[p] = self.resolve(a)
            }
        }
    }
}
