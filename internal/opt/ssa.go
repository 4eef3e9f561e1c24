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

    `github.com/cloudwego/midend/internal/ir`
)

type _SSAFunc struct {
    fn    *ir.Function
    bbs   *Blocks
    cfg   *CFG
    dom   *Dominance
    live  *Liveness
    gen   *_LabelGen
    names map[string]bool
    types map[string]ir.Type
    phi   map[BlockID][]*_Phi
}

type _LabelGen struct {
    fn   string
    nb   int
    used map[string]bool
}

func (self *_LabelGen) next() string {
    for {
        self.nb++
        if s := fmt.Sprintf("%s.b%d", self.fn, self.nb); !self.used[s] {
            self.used[s] = true
            return s
        }
    }
}

func newSSAFunc(fn *ir.Function) *_SSAFunc {
    ret := &_SSAFunc {
        fn    : fn,
        names : make(map[string]bool),
        types : make(map[string]ir.Type),
        phi   : make(map[BlockID][]*_Phi),
        gen   : &_LabelGen { fn: fn.Name, used: make(map[string]bool) },
    }

    /* parameters are typed variables */
    for _, a := range fn.Args {
        ret.names[a.Name] = true
        ret.types[a.Name] = a.Type
    }

    /* collect all the names in use, the last declared type wins */
    for _, ins := range fn.Instrs {
        if lb, ok := ins.(*ir.Label); ok {
            ret.gen.used[lb.Name] = true
        }

        /* all the arguments */
        for _, a := range ir.Args(ins) {
            ret.names[a] = true
        }

        /* and all the definitions */
        if v, ok := ins.(*ir.ValueOp); ok {
            if ret.names[v.Dest] = true; v.Type != ir.Untyped {
                ret.types[v.Dest] = v.Type
            }
        }
    }

    return ret
}

// preheader gives the function a fresh entry block when the first block is
// also the target of a jump, so phi nodes there can name the entry edge.
func (self *_SSAFunc) preheader() {
    if len(self.fn.Instrs) == 0 {
        return
    }

    /* the function must start with a label */
    lb, ok := self.fn.Instrs[0].(*ir.Label)
    if !ok {
        return
    }

    /* check for jumps to it */
    for _, ins := range self.fn.Instrs {
        if t, ok := ins.(*ir.Terminator); ok {
            for _, v := range t.Targets() {
                if v == lb.Name {
                    self.fn.Instrs = append([]ir.Instr { &ir.Label { Name: self.gen.next() } }, self.fn.Instrs...)
                    return
                }
            }
        }
    }
}

// label returns the label of the block, one is generated if it has none.
func (self *_SSAFunc) label(id BlockID) string {
    bb, ok := self.bbs.Get(id)
    if !ok {
        return id.Name()
    }

    /* use the existing label if possible */
    if lb, ok := bb.Label(); ok {
        return lb
    }

    /* prepend a new label */
    lb := self.gen.next()
    bb.Ins = append([]ir.Instr { &ir.Label { Name: lb } }, bb.Ins...)
    return lb
}

func (self *_SSAFunc) materialize() {
    for _, bb := range self.bbs.List {
        var buf []ir.Instr
        pred := self.cfg.Node(bb.Id).Pred

        /* build all the live Phi nodes */
        for _, phi := range self.phi[bb.Id] {
            if !phi.dead {
                for _, p := range pred {
                    phi.ins.Args = append(phi.ins.Args, phi.arg(p))
                    phi.ins.Labels = append(phi.ins.Labels, self.label(p))
                }
                buf = append(buf, phi.ins)
            }
        }

        /* Phi nodes go right after the block label */
        if len(buf) != 0 {
            if _, ok := bb.Label(); !ok {
                panic("phi nodes in a block without label: " + bb.Id.String())
            }
            ins := make([]ir.Instr, 0, len(bb.Ins) + len(buf))
            ins = append(ins, bb.Ins[0])
            ins = append(ins, buf...)
            bb.Ins = append(ins, bb.Ins[1:]...)
        }
    }
}

// ConvertSSA converts the function into SSA form. Every definition gets a
// fresh version named "v_N", and join points merge versions with phi nodes
// placed on the iterated dominance frontier where the variable is live. Phis
// that merge a single defined version are eliminated afterwards.
func ConvertSSA(fn *ir.Function) (*ir.Function, error) {
    var err error
    if err = fn.Validate(); err != nil {
        return nil, err
    }

    /* never modify the input */
    sf := newSSAFunc(fn.Clone())
    sf.preheader()

    /* partition the instructions */
    if sf.bbs, err = Blockify(fn.Name, sf.fn.Instrs); err != nil {
        return nil, err
    }

    /* build the dominator tree */
    sf.cfg = BuildCFG(sf.bbs, ImplicitFallthrough)
    if sf.dom, err = Dominators(sf.cfg); err != nil {
        return nil, err
    }

    /* variables that are dead on entry never need a Phi node */
    if sf.live, err = computeLiveness(sf.cfg); err != nil {
        return nil, err
    }

    /* place, rename and simplify the Phi nodes */
    insertPhiNodes(sf)
    renameVariables(sf)
    new(PhiElim).Apply(sf)

    /* assemble the result */
    sf.materialize()
    return sf.fn.WithInstrs(sf.bbs.Flatten()), nil
}
