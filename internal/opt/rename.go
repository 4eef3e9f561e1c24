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

const (
    undefinedName = "__undefined"
)

type _Renamer struct {
    count map[string]int
    stack map[string][]string
    names map[string]bool
}

func newRenamer(names map[string]bool) _Renamer {
    return _Renamer {
        names: names,
        count: make(map[string]int),
        stack: make(map[string][]string),
    }
}

func (self _Renamer) popr(v string) {
    if n := len(self.stack[v]); n != 0 {
        self.stack[v] = self.stack[v][:n - 1]
    }
}

func (self _Renamer) topr(v string) (string, bool) {
    if n := len(self.stack[v]); n == 0 {
        return "", false
    } else {
        return self.stack[v][n - 1], true
    }
}

func (self _Renamer) pushr(v string) (r string) {
    for {
        i := self.count[v]
        self.count[v] = i + 1

        /* skip versions that clash with an existing variable */
        if r = v + "_" + strconv.Itoa(i); !self.names[r] {
            break
        }
    }

    /* claim the name */
    self.names[r] = true
    self.stack[v] = append(self.stack[v], r)
    return
}

func (self _Renamer) renameuses(ins ir.Instr) {
    if u, ok := ins.(ir.Usages); ok {
        for _, a := range u.Usages() {
            if r, ok := self.topr(*a); ok {
                *a = r
            }
        }
    }
}

func (self _Renamer) renamedefs(ins ir.Instr, buf *[]string) {
    if s, ok := ins.(ir.Definitions); ok {
        for _, def := range s.Definitions() {
            *buf = append(*buf, *def)
            *def = self.pushr(*def)
        }
    }
}

func (self _Renamer) renameblock(sf *_SSAFunc, id BlockID, vis map[BlockID]bool, rec bool) {
    var d []string
    vis[id] = true

    /* rename Phi nodes */
    for _, phi := range sf.phi[id] {
        d = append(d, phi.name)
        phi.ins.Dest = self.pushr(phi.name)
    }

    /* rename body */
    if bb, ok := sf.bbs.Get(id); ok {
        for _, ins := range bb.Ins {
            self.renameuses(ins)
            self.renamedefs(ins, &d)
        }
    }

    /* rename all the Phi node of it's successors */
    for _, s := range sf.cfg.Node(id).Succ {
        for _, phi := range sf.phi[s] {
            if r, ok := self.topr(phi.name); ok {
                phi.args[id] = r
            } else {
                phi.args[id] = undefinedName
            }
        }
    }

    /* rename all it's reachable children in the dominator tree */
    if rec {
        for _, p := range sf.dom.DominatorOf[id] {
            if sf.dom.Reachable(p) {
                self.renameblock(sf, p, vis, true)
            }
        }
    }

    /* pop the definitions */
    for _, v := range d {
        self.popr(v)
    }
}

func renameVariables(sf *_SSAFunc) {
    vis := make(map[BlockID]bool)
    rr := newRenamer(sf.names)

    /* parameters keep their names */
    for _, a := range sf.fn.Args {
        rr.stack[a.Name] = []string { a.Name }
    }

    /* walk the dominator tree from the entry */
    if sf.cfg.Entry != "" {
        rr.renameblock(sf, sf.cfg.Entry, vis, true)
    }

    /* unreachable blocks are renamed one by one in program order */
    for _, id := range sf.cfg.Order {
        if !vis[id] {
            rr.renameblock(sf, id, vis, false)
        }
    }
}
