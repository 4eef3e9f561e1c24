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
    `strings`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/utils`
)

const (
    _P_entry = "f."
    _P_label = "o."
    _P_synth = "r."
)

// BlockID names a basic block. Function entries, real labels and synthetic
// fallthrough fragments live in different namespaces and never collide.
type BlockID string

func EntryBlock(fn string) BlockID    { return BlockID(_P_entry + fn) }
func LabelBlock(name string) BlockID  { return BlockID(_P_label + name) }
func synthBlock(i int) BlockID        { return BlockID(_P_synth + strconv.Itoa(i)) }

func (self BlockID) IsEntry() bool     { return strings.HasPrefix(string(self), _P_entry) }
func (self BlockID) IsLabel() bool     { return strings.HasPrefix(string(self), _P_label) }
func (self BlockID) IsSynthetic() bool { return strings.HasPrefix(string(self), _P_synth) }

// Name returns the label or function name without the namespace.
func (self BlockID) Name() string {
    if len(self) < 2 {
        return string(self)
    } else {
        return string(self[2:])
    }
}

func (self BlockID) String() string {
    if self.IsSynthetic() {
        return "_r" + self.Name()
    } else {
        return self.Name()
    }
}

type BasicBlock struct {
    Id  BlockID
    Ins []ir.Instr
}

// Term returns the terminator of the block if it ends with one.
func (self *BasicBlock) Term() (*ir.Terminator, bool) {
    if n := len(self.Ins); n == 0 {
        return nil, false
    } else {
        t, ok := self.Ins[n - 1].(*ir.Terminator)
        return t, ok
    }
}

// Label returns the label the block starts with, if any.
func (self *BasicBlock) Label() (string, bool) {
    if len(self.Ins) == 0 {
        return "", false
    } else if lb, ok := self.Ins[0].(*ir.Label); ok {
        return lb.Name, true
    } else {
        return "", false
    }
}

// Blocks is an ordered mapping from block names to basic blocks.
type Blocks struct {
    Func  string
    List  []*BasicBlock
    index map[BlockID]int
}

func newBlocks(fn string) *Blocks {
    return &Blocks {
        Func  : fn,
        index : make(map[BlockID]int),
    }
}

func (self *Blocks) add(bb *BasicBlock) {
    self.index[bb.Id] = len(self.List)
    self.List = append(self.List, bb)
}

func (self *Blocks) Len() int {
    return len(self.List)
}

func (self *Blocks) Get(id BlockID) (*BasicBlock, bool) {
    if i, ok := self.index[id]; !ok {
        return nil, false
    } else {
        return self.List[i], true
    }
}

// Filter returns a new mapping holding only the blocks accepted by keep.
func (self *Blocks) Filter(keep func(bb *BasicBlock) bool) *Blocks {
    ret := newBlocks(self.Func)
    for _, bb := range self.List {
        if keep(bb) {
            ret.add(bb)
        }
    }
    return ret
}

// Flatten concatenates all the blocks in order, it is the inverse of Blockify.
func (self *Blocks) Flatten() []ir.Instr {
    n := 0
    for _, bb := range self.List { n += len(bb.Ins) }

    /* concatenate the blocks */
    ret := make([]ir.Instr, 0, n)
    for _, bb := range self.List { ret = append(ret, bb.Ins...) }
    return ret
}

// Blockify partitions the instruction stream of function fn into basic blocks.
func Blockify(fn string, ins []ir.Instr) (*Blocks, error) {
    nb := 0
    ret := newBlocks(fn)
    seen := make(map[string]bool)
    cur := &BasicBlock { Id: EntryBlock(fn) }

    /* scan every instruction */
    for i, v := range ins {
        if err := ir.Check(fn, i, v); err != nil {
            return nil, err
        }

        /* check for block boundaries */
        switch p := v.(type) {
            default: {
                cur.Ins = append(cur.Ins, v)
            }

            /* labels start a new block */
            case *ir.Label: {
                if seen[p.Name] {
                    return nil, utils.EDuplicateLabel(fn, i, p.Name)
                }

                /* close the current block if any */
                if len(cur.Ins) != 0 {
                    ret.add(cur)
                }

                /* the label is the first instruction of the new block */
                seen[p.Name] = true
                cur = &BasicBlock { Id: LabelBlock(p.Name), Ins: []ir.Instr { v } }
            }

            /* terminators end the current block */
            case *ir.Terminator: {
                nb++
                ret.add(&BasicBlock { Id: cur.Id, Ins: append(cur.Ins, v) })
                cur = &BasicBlock { Id: synthBlock(nb) }
            }
        }
    }

    /* add the last block */
    if len(cur.Ins) != 0 {
        ret.add(cur)
    }

    return ret, nil
}
