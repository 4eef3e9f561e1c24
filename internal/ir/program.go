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

package ir

import (
    `fmt`
    `strings`
)

type Arg struct {
    Name string
    Type Type
}

type Function struct {
    Name   string
    Args   []Arg
    Type   Type
    Instrs []Instr
}

// Params returns the parameter names in declaration order.
func (self *Function) Params() []string {
    ret := make([]string, len(self.Args))
    for i, a := range self.Args { ret[i] = a.Name }
    return ret
}

// Clone performs a deep copy of the function, passes never modify their input.
func (self *Function) Clone() *Function {
    return &Function {
        Name   : self.Name,
        Args   : append([]Arg(nil), self.Args...),
        Type   : self.Type,
        Instrs : CloneInstrs(self.Instrs),
    }
}

// WithInstrs returns a copy of the function header holding the new body.
func (self *Function) WithInstrs(ins []Instr) *Function {
    return &Function {
        Name   : self.Name,
        Args   : append([]Arg(nil), self.Args...),
        Type   : self.Type,
        Instrs : ins,
    }
}

func (self *Function) String() string {
    args := make([]string, len(self.Args))
    body := make([]string, 0, len(self.Instrs))

    /* format the signature */
    for i, a := range self.Args {
        args[i] = fmt.Sprintf("%s: %s", a.Name, a.Type)
    }

    /* labels are not indented */
    for _, ins := range self.Instrs {
        if _, ok := ins.(*Label); ok {
            body = append(body, ins.String())
        } else {
            body = append(body, "    " + ins.String())
        }
    }

    /* add the return type if any */
    sig := fmt.Sprintf("@%s(%s)", self.Name, strings.Join(args, ", "))
    if self.Type != Untyped {
        sig += ": " + string(self.Type)
    }

    /* join them together */
    return fmt.Sprintf("%s {\n%s\n}", sig, strings.Join(body, "\n"))
}

type Program struct {
    Functions []*Function
}

func (self *Program) Clone() *Program {
    ret := &Program { Functions: make([]*Function, len(self.Functions)) }
    for i, fn := range self.Functions { ret.Functions[i] = fn.Clone() }
    return ret
}

// Len returns the total number of instructions in the program.
func (self *Program) Len() (n int) {
    for _, fn := range self.Functions { n += len(fn.Instrs) }
    return
}

func (self *Program) String() string {
    buf := make([]string, len(self.Functions))
    for i, fn := range self.Functions { buf[i] = fn.String() }
    return strings.Join(buf, "\n")
}

// CloneInstrs deep copies the instructions, nil entries are kept for the
// validation that comes later.
func CloneInstrs(ins []Instr) []Instr {
    ret := make([]Instr, len(ins))
    for i, v := range ins {
        if v != nil {
            ret[i] = v.Clone()
        }
    }
    return ret
}
