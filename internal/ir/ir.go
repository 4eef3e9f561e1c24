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
    `strconv`
    `strings`
)

const (
    OpJmp   = "jmp"
    OpBr    = "br"
    OpRet   = "ret"
    OpConst = "const"
    OpId    = "id"
    OpAdd   = "add"
    OpMul   = "mul"
    OpSub   = "sub"
    OpDiv   = "div"
    OpPhi   = "phi"
)

// IsTerminatorOp tells if the operation ends a basic block.
func IsTerminatorOp(op string) bool {
    return op == OpJmp || op == OpBr || op == OpRet
}

// Type is a Bril type, pointer types are spelled as "ptr<T>".
type Type string

const (
    Untyped Type = ""
)

func PtrTo(t Type) Type {
    return Type("ptr<" + string(t) + ">")
}

// Elem returns the pointee of a pointer type.
func (self Type) Elem() (Type, bool) {
    s := string(self)
    if !strings.HasPrefix(s, "ptr<") || !strings.HasSuffix(s, ">") {
        return Untyped, false
    } else {
        return Type(s[4:len(s) - 1]), true
    }
}

type LiteralKind uint8

const (
    LitInt LiteralKind = iota
    LitBool
    LitFloat
    LitChar
)

// Literal is a comparable constant value, so it can take part in value descriptors.
type Literal struct {
    Kind  LiteralKind
    Int   int64
    Bool  bool
    Float float64
    Char  rune
}

func Int(v int64) Literal     { return Literal { Kind: LitInt, Int: v } }
func Bool(v bool) Literal     { return Literal { Kind: LitBool, Bool: v } }
func Float(v float64) Literal { return Literal { Kind: LitFloat, Float: v } }
func Char(v rune) Literal     { return Literal { Kind: LitChar, Char: v } }

func (self Literal) String() string {
    switch self.Kind {
        case LitInt   : return strconv.FormatInt(self.Int, 10)
        case LitBool  : return strconv.FormatBool(self.Bool)
        case LitFloat : return strconv.FormatFloat(self.Float, 'g', -1, 64)
        case LitChar  : return strconv.QuoteRune(self.Char)
        default       : panic("unreachable")
    }
}

type Instr interface {
    fmt.Stringer
    Clone() Instr
    instr()
}

func (*Label)      instr() {}
func (*Terminator) instr() {}
func (*ValueOp)    instr() {}
func (*EffectOp)   instr() {}

// Usages is implemented by every instruction that reads variables.
type Usages interface {
    Instr
    Usages() []*string
}

// Definitions is implemented by every instruction that binds a variable.
type Definitions interface {
    Instr
    Definitions() []*string
}

type Label struct {
    Name string
}

func (self *Label) Clone() Instr {
    return &Label { Name: self.Name }
}

func (self *Label) String() string {
    return "." + self.Name + ":"
}

type Terminator struct {
    Op     string
    Args   []string
    Labels []string
}

func (self *Terminator) Clone() Instr {
    return &Terminator {
        Op     : self.Op,
        Args   : strclone(self.Args),
        Labels : strclone(self.Labels),
    }
}

func (self *Terminator) Usages() []*string {
    return strsliceref(self.Args)
}

func (self *Terminator) String() string {
    return formatOp(self.Op, self.Args, nil, self.Labels) + ";"
}

// Targets returns the labels this terminator may jump to, a return has none.
func (self *Terminator) Targets() []string {
    if self.Op == OpRet {
        return nil
    } else {
        return self.Labels
    }
}

type ValueOp struct {
    Dest   string
    Type   Type
    Op     string
    Args   []string
    Funcs  []string
    Labels []string
    Value  *Literal
}

func (self *ValueOp) Clone() Instr {
    ret := &ValueOp {
        Dest   : self.Dest,
        Type   : self.Type,
        Op     : self.Op,
        Args   : strclone(self.Args),
        Funcs  : strclone(self.Funcs),
        Labels : strclone(self.Labels),
    }

    /* literals are values, but the pointer must not be shared */
    if self.Value != nil {
        v := *self.Value
        ret.Value = &v
    }

    return ret
}

func (self *ValueOp) Usages() []*string {
    return strsliceref(self.Args)
}

func (self *ValueOp) Definitions() []*string {
    return []*string { &self.Dest }
}

func (self *ValueOp) String() string {
    dst := self.Dest
    if self.Type != Untyped {
        dst += ": " + string(self.Type)
    }

    /* constants carry the literal instead of arguments */
    if self.Value != nil {
        return fmt.Sprintf("%s = %s %s;", dst, self.Op, self.Value)
    } else {
        return fmt.Sprintf("%s = %s;", dst, formatOp(self.Op, self.Args, self.Funcs, self.Labels))
    }
}

type EffectOp struct {
    Op     string
    Args   []string
    Funcs  []string
    Labels []string
}

func (self *EffectOp) Clone() Instr {
    return &EffectOp {
        Op     : self.Op,
        Args   : strclone(self.Args),
        Funcs  : strclone(self.Funcs),
        Labels : strclone(self.Labels),
    }
}

func (self *EffectOp) Usages() []*string {
    return strsliceref(self.Args)
}

func (self *EffectOp) String() string {
    return formatOp(self.Op, self.Args, self.Funcs, self.Labels) + ";"
}

// Args returns the argument list of any instruction, labels have none.
func Args(ins Instr) []string {
    switch v := ins.(type) {
        case *Terminator : return v.Args
        case *ValueOp    : return v.Args
        case *EffectOp   : return v.Args
        default          : return nil
    }
}

// Dest returns the variable defined by the instruction, if any.
func Dest(ins Instr) (string, bool) {
    if v, ok := ins.(*ValueOp); ok {
        return v.Dest, true
    } else {
        return "", false
    }
}

func formatOp(op string, args []string, funcs []string, labels []string) string {
    buf := []string { op }
    for _, f := range funcs  { buf = append(buf, "@" + f) }
    for _, a := range args   { buf = append(buf, a) }
    for _, l := range labels { buf = append(buf, "." + l) }
    return strings.Join(buf, " ")
}

func strclone(v []string) []string {
    if v == nil {
        return nil
    } else {
        return append(make([]string, 0, len(v)), v...)
    }
}

func strsliceref(v []string) (r []*string) {
    r = make([]*string, len(v))
    for i := range v { r[i] = &v[i] }
    return
}
