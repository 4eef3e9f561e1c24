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

// Builder assembles a function instruction by instruction.
type Builder struct {
    fn *Function
}

func CreateBuilder(name string, args ...Arg) *Builder {
    return &Builder {
        fn: &Function {
            Name: name,
            Args: args,
        },
    }
}

func (self *Builder) add(ins Instr) *Builder {
    self.fn.Instrs = append(self.fn.Instrs, ins)
    return self
}

func (self *Builder) Returns(t Type) *Builder {
    self.fn.Type = t
    return self
}

func (self *Builder) Label(name string) *Builder {
    return self.add(&Label { Name: name })
}

func (self *Builder) Const(dest string, t Type, v Literal) *Builder {
    return self.add(&ValueOp { Dest: dest, Type: t, Op: OpConst, Value: &v })
}

func (self *Builder) Op(dest string, t Type, op string, args ...string) *Builder {
    return self.add(&ValueOp { Dest: dest, Type: t, Op: op, Args: args })
}

func (self *Builder) Id(dest string, t Type, src string) *Builder { return self.Op(dest, t, OpId, src) }
func (self *Builder) Add(dest string, x string, y string) *Builder { return self.Op(dest, "int", OpAdd, x, y) }
func (self *Builder) Mul(dest string, x string, y string) *Builder { return self.Op(dest, "int", OpMul, x, y) }
func (self *Builder) Sub(dest string, x string, y string) *Builder { return self.Op(dest, "int", OpSub, x, y) }
func (self *Builder) Div(dest string, x string, y string) *Builder { return self.Op(dest, "int", OpDiv, x, y) }

func (self *Builder) Call(dest string, t Type, fn string, args ...string) *Builder {
    return self.add(&ValueOp { Dest: dest, Type: t, Op: "call", Funcs: []string { fn }, Args: args })
}

func (self *Builder) Effect(op string, args ...string) *Builder {
    return self.add(&EffectOp { Op: op, Args: args })
}

func (self *Builder) Print(args ...string) *Builder {
    return self.Effect("print", args...)
}

func (self *Builder) Jmp(to string) *Builder {
    return self.add(&Terminator { Op: OpJmp, Labels: []string { to } })
}

func (self *Builder) Br(cond string, t string, f string) *Builder {
    return self.add(&Terminator { Op: OpBr, Args: []string { cond }, Labels: []string { t, f } })
}

func (self *Builder) Ret(args ...string) *Builder {
    return self.add(&Terminator { Op: OpRet, Args: args })
}

func (self *Builder) Build() *Function {
    return self.fn
}
