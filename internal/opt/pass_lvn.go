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
    `strconv`
    `strings`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/utils`
)

type _ValueEntry struct {
    vid  string
    name string
}

// _ValueTable is the value numbering state of one function, it is shared by
// all the blocks of that function.
type _ValueTable struct {
    fn    string
    ents  []_ValueEntry
    index map[string]int
    env   map[string]int
    multi map[string]bool
}

func newValueTable(fn *ir.Function) *_ValueTable {
    ret := &_ValueTable {
        fn    : fn.Name,
        index : make(map[string]int),
        env   : make(map[string]int),
        multi : make(map[string]bool),
    }

    /* parameters count as definitions */
    defs := make(map[string]bool)
    for _, a := range fn.Args {
        defs[a.Name] = true
    }

    /* find the names that are defined more than once */
    for _, ins := range fn.Instrs {
        if d, ok := ir.Dest(ins); ok {
            ret.multi[d] = defs[d]
            defs[d] = true
        }
    }

    return ret
}

func (self *_ValueTable) insert(vid string, name string) (int, error) {
    id := len(self.ents)
    if _, ok := self.index[vid]; ok {
        return -1, utils.EDuplicateEntry(self.fn, vid, 2)
    }

    /* add to the table */
    self.index[vid] = id
    self.ents = append(self.ents, _ValueEntry { vid: vid, name: name })
    return id, nil
}

func (self *_ValueTable) opaque(name string) (int, error) {
    return self.insert("?" + strconv.Itoa(len(self.ents)), name)
}

func (self *_ValueTable) lookup(vid string) (int, bool) {
    id, ok := self.index[vid]
    return id, ok
}

// stable tells if the representative of the value is never redefined, only
// those names can stand in for other variables.
func (self *_ValueTable) stable(id int) bool {
    return !self.multi[self.ents[id].name]
}

// value returns the value identity of an argument. A name that is not bound
// gets a fresh opaque value which is never bound in the environment.
func (self *_ValueTable) value(name string) (int, error) {
    if id, ok := self.env[name]; ok {
        return id, nil
    } else {
        return self.opaque(name)
    }
}

// resolve returns the name that represents the current value of a variable.
func (self *_ValueTable) resolve(name string) string {
    if id, ok := self.env[name]; ok && self.stable(id) {
        return self.ents[id].name
    } else {
        return name
    }
}

func (self *_ValueTable) rewrite(ins ir.Instr) {
    if u, ok := ins.(ir.Usages); ok {
        for _, a := range u.Usages() {
            *a = self.resolve(*a)
        }
    }
}

func (self *_ValueTable) vid(ins *ir.ValueOp) (string, bool, error) {
    switch ins.Op {
        default: {
            return "", false, nil
        }

        /* constants are identified by their literal */
        case ir.OpConst: {
            return fmt.Sprintf("$%d:%s", ins.Value.Kind, ins.Value), true, nil
        }

        /* arithmetic operations are identified by the values they consume */
        case ir.OpAdd, ir.OpMul, ir.OpSub, ir.OpDiv: {
            ids := make([]int, len(ins.Args))
            for i, a := range ins.Args {
                if id, err := self.value(a); err != nil {
                    return "", false, err
                } else {
                    ids[i] = id
                }
            }

            /* commutative operations, sort the operands */
            if ins.Op == ir.OpAdd || ins.Op == ir.OpMul {
                sort.Ints(ids)
            }

            /* build the value ID */
            buf := make([]string, 0, len(ids) + 1)
            buf = append(buf, ins.Op)
            for _, id := range ids { buf = append(buf, strconv.Itoa(id)) }
            return "(" + strings.Join(buf, " ") + ")", true, nil
        }
    }
}

func (self *_ValueTable) number(ins *ir.ValueOp) (bool, error) {
    var id  int
    var ok  bool
    var vid string
    var err error

    /* copies alias their destination to the value of the source */
    if ins.Op == ir.OpId && len(ins.Args) == 1 {
        if id, ok = self.env[ins.Args[0]]; ok && self.stable(id) {
            self.env[ins.Dest] = id
            return false, nil
        }
    }

    /* calculate the VID */
    if vid, ok, err = self.vid(ins); err != nil {
        return false, err
    }

    /* every other operation is opaque */
    if !ok {
        self.rewrite(ins)
        id, err = self.opaque(ins.Dest)
        self.env[ins.Dest] = id
        return true, err
    }

    /* a new value, this instruction represents it */
    if id, ok = self.lookup(vid); !ok {
        self.rewrite(ins)
        id, err = self.insert(vid, ins.Dest)
        self.env[ins.Dest] = id
        return true, err
    }

    /* the value is already computed by a variable that never changes */
    if self.stable(id) {
        self.env[ins.Dest] = id
        return false, nil
    }

    /* the representative is unreliable, take it over if possible */
    self.rewrite(ins)
    self.env[ins.Dest] = id

    /* only a single definition can represent the value */
    if !self.multi[ins.Dest] {
        self.ents[id].name = ins.Dest
    }

    return true, nil
}

// LVN performs the Local Value Numbering optimization, redundant
// computations are removed and their uses refer to the first occurrence.
type LVN struct{}

func (LVN) Apply(fn *ir.Function) (*ir.Function, error) {
    if err := fn.Validate(); err != nil {
        return nil, err
    }

    /* the value table is shared by all the blocks */
    vt := newValueTable(fn)
    bbs, err := Blockify(fn.Name, ir.CloneInstrs(fn.Instrs))
    if err != nil {
        return nil, err
    }

    /* parameters are external values */
    for _, a := range fn.Args {
        if id, err := vt.insert("#" + a.Name, a.Name); err != nil {
            return nil, err
        } else {
            vt.env[a.Name] = id
        }
    }

    /* number every block in order */
    for _, bb := range bbs.List {
        ins := bb.Ins[:0]
        for _, v := range bb.Ins {
            if p, ok := v.(*ir.ValueOp); !ok {
                vt.rewrite(v)
                ins = append(ins, v)
            } else if keep, err := vt.number(p); err != nil {
                return nil, err
            } else if keep {
                ins = append(ins, v)
            } else {
                count(&LvnEliminated, 1)
            }
        }
        bb.Ins = ins
    }

    /* assemble the result */
    return fn.WithInstrs(bbs.Flatten()), nil
}
